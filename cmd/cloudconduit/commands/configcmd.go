package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudconduit/internal/defaults"
	"github.com/systmms/cloudconduit/internal/profile"
)

const starterConfig = `# cloudconduit configuration
# Copy and modify this file to customize your default parameters.
# Only non-credential parameters are read from this file.
# Credentials (passwords, tokens) belong in environment variables or
# the platform secure store ('cloudconduit credential set').

snowflake:
  account: "your-account"     # Required: account identifier (without .snowflakecomputing.com)
  warehouse: "COMPUTE_WH"     # Required: warehouse for compute resources
  database: "ANALYTICS"       # Optional: default database
  schema: "PUBLIC"            # Optional: default schema

databricks:
  server_hostname: ""         # your-workspace.cloud.databricks.com
  http_path: ""               # /sql/1.0/warehouses/your-warehouse-id
  catalog: "main"
  schema: "default"

s3:
  region: "us-east-1"
`

// NewConfigCommand groups the defaults-file subcommands.
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the defaults file",
	}

	cmd.AddCommand(newConfigShowCommand(app))
	cmd.AddCommand(newConfigInitCommand(app))

	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the defaults file contents",
		Long:  "Display the non-credential defaults file, its location, and the environment variable each key maps to.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := app.Conduit()
			path := cc.DefaultsFile()

			fmt.Fprintf(cmd.OutOrStdout(), "Defaults file: %s\n", path)
			if cc.DefaultsDisabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "Defaults are disabled (CLOUDCONDUIT_DISABLE_AUTO_CONFIG is set)")
				return nil
			}

			doc, err := defaults.Load(path)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROFILE\tKEY\tVALUE\tENV VAR")
			for _, p := range profile.All() {
				keys, err := profile.Keys(p)
				if err != nil {
					return err
				}
				for _, def := range keys {
					if def.Credential {
						continue
					}
					value, ok := doc.Get(p, def.Name)
					if !ok {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p, def.Name, value, profile.EnvVar(p, def.Name))
				}
			}
			return w.Flush()
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter defaults file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Conduit().DefaultsFile()

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists. Use --force to overwrite", path)
			}

			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("failed to create config directory: %w", err)
				}
			}
			if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
				return fmt.Errorf("failed to write defaults file: %w", err)
			}

			app.Logger.Info("Created %s", path)
			app.Logger.Info("Next steps:")
			app.Logger.Info("  1. Edit %s with your non-credential defaults", path)
			app.Logger.Info("  2. Store credentials with 'cloudconduit credential set <profile> <key>'")
			app.Logger.Info("  3. Run 'cloudconduit resolve <profile>' to see the merged configuration")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing defaults file")

	return cmd
}
