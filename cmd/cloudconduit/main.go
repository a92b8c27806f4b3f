package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/cloudconduit/cmd/cloudconduit/commands"
	"github.com/systmms/cloudconduit/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		defaultsPath   string
		noColor        bool
		debug          bool
		nonInteractive bool
		domainSuffix   string
	)

	app := &commands.App{}

	rootCmd := &cobra.Command{
		Use:   "cloudconduit",
		Short: "Resolve cloud service configuration from layered sources",
		Long: `cloudconduit merges explicit overrides, environment variables, the
platform secure store, and a defaults file into ready-to-use service
configuration for Snowflake, Databricks, and S3.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			app.Logger = logging.New(debug, noColor)
			app.DefaultsPath = defaultsPath
			app.NonInteractive = nonInteractive
			app.DomainSuffix = domainSuffix
		},
	}

	rootCmd.PersistentFlags().StringVar(&defaultsPath, "config", "", "Defaults file path (default: CLOUDCONDUIT_CONFIG or ~/.config/cloudconduit/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")
	rootCmd.PersistentFlags().StringVar(&domainSuffix, "domain-suffix", "", "Domain suffix appended to the derived principal")

	rootCmd.AddCommand(
		commands.NewResolveCommand(app),
		commands.NewCredentialCommand(app),
		commands.NewConfigCommand(app),
		commands.NewWhoamiCommand(app),
		commands.NewDoctorCommand(app),
		commands.NewCompletionCommand(),
	)

	return rootCmd.Execute()
}
