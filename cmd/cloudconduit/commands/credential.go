package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	ccerrors "github.com/systmms/cloudconduit/internal/errors"
	"github.com/systmms/cloudconduit/internal/secure"
)

// NewCredentialCommand creates the parent 'credential' command
func NewCredentialCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage credentials in the platform secure store",
		Long: `Store, read, and remove credentials in the OS secure store
(macOS Keychain, Linux Secret Service, Windows Credential Manager).

Credentials stored here are picked up automatically during resolution,
after environment variables and before nothing at all.

Examples:
  cloudconduit credential set snowflake password
  cloudconduit credential set databricks access_token --stdin < token.txt
  cloudconduit credential get snowflake password
  cloudconduit credential delete snowflake password --username jane.doe`,
	}

	cmd.AddCommand(
		newCredentialSetCommand(app),
		newCredentialGetCommand(app),
		newCredentialDeleteCommand(app),
	)

	return cmd
}

func newCredentialSetCommand(app *App) *cobra.Command {
	var (
		username  string
		fromStdin bool
	)

	cmd := &cobra.Command{
		Use:   "set <profile> <key>",
		Short: "Store a credential in the secure store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := app.Conduit()
			p, err := parseProfileArg(args[0])
			if err != nil {
				return err
			}

			value, err := readSecret(cmd, app, fromStdin, fmt.Sprintf("Value for %s/%s: ", p, args[1]))
			if err != nil {
				return err
			}
			// Keep the secret in protected memory until the keyring
			// write; the keyring API needs the plaintext string.
			buf := secure.NewBuffer(value)
			defer buf.Destroy()

			locked, err := buf.Open()
			if err != nil {
				return fmt.Errorf("failed to open secret buffer: %w", err)
			}
			defer locked.Destroy()

			if err := cc.SetCredential(p, args[1], username, locked.String()); err != nil {
				if ccerrors.IsRetryable(err) {
					app.Logger.Warn("The secure store looks busy or locked; retrying may succeed")
				}
				return err
			}
			app.Logger.Info("Stored credential %s/%s", p, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Scope the entry to a specific principal")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the value from stdin instead of prompting")

	return cmd
}

func newCredentialGetCommand(app *App) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "get <profile> <key>",
		Short: "Read a credential from the secure store",
		Long: `Read a credential and print its raw value to stdout.

Only the secure store is consulted; use 'cloudconduit resolve' to see a
field's value across all sources.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := app.Conduit()
			p, err := parseProfileArg(args[0])
			if err != nil {
				return err
			}
			value, ok := cc.GetCredential(p, args[1], username)
			if !ok {
				return ccerrors.UserError{
					Message:    fmt.Sprintf("No stored credential for %s/%s", p, args[1]),
					Suggestion: fmt.Sprintf("Store one with 'cloudconduit credential set %s %s'", p, args[1]),
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Read the entry scoped to a specific principal")

	return cmd
}

func newCredentialDeleteCommand(app *App) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "delete <profile> <key>",
		Short: "Remove a credential from the secure store",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := app.Conduit()
			p, err := parseProfileArg(args[0])
			if err != nil {
				return err
			}
			if err := cc.DeleteCredential(p, args[1], username); err != nil {
				if ccerrors.IsRetryable(err) {
					app.Logger.Warn("The secure store looks busy or locked; retrying may succeed")
				}
				return err
			}
			app.Logger.Info("Removed credential %s/%s", p, args[1])
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Delete the entry scoped to a specific principal")

	return cmd
}

// readSecret obtains the secret value without echoing it. In
// non-interactive mode stdin is the only accepted source.
func readSecret(cmd *cobra.Command, app *App, fromStdin bool, prompt string) ([]byte, error) {
	if fromStdin || app.NonInteractive {
		reader := bufio.NewReader(cmd.InOrStdin())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, ccerrors.UserError{
				Message:    "Failed to read credential from stdin",
				Details:    err.Error(),
				Suggestion: "Pipe the value in, e.g. 'cat token.txt | cloudconduit credential set ... --stdin'",
			}
		}
		return []byte(strings.TrimRight(line, "\r\n")), nil
	}

	fmt.Fprint(os.Stderr, prompt)
	value, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, ccerrors.UserError{
			Message:    "Failed to read credential from terminal",
			Details:    err.Error(),
			Suggestion: "Use --stdin when no terminal is attached",
		}
	}
	return value, nil
}
