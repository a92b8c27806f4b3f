package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudconduit/internal/identity"
)

// NewWhoamiCommand reports the principal derived from the OS account.
func NewWhoamiCommand(app *App) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the derived default principal",
		Long:  "Show the principal derived from the current OS account, as used when no explicit username or environment variable supplies one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			principal := app.Conduit().DefaultPrincipal()

			if !verbose {
				fmt.Fprintln(cmd.OutOrStdout(), principal)
				return nil
			}

			sys := identity.CurrentSystem()
			fmt.Fprintf(cmd.OutOrStdout(), "Principal:  %s\n", principal)
			fmt.Fprintf(cmd.OutOrStdout(), "OS account: %s\n", sys.Username)
			fmt.Fprintf(cmd.OutOrStdout(), "Hostname:   %s\n", sys.Hostname)
			fmt.Fprintf(cmd.OutOrStdout(), "Platform:   %s/%s\n", sys.OS, sys.Arch)
			if app.DomainSuffix != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Suffix:     %s\n", app.DomainSuffix)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the OS account and platform details")

	return cmd
}
