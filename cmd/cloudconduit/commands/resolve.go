package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/systmms/cloudconduit/internal/logging"
	"github.com/systmms/cloudconduit/internal/profile"
	"github.com/systmms/cloudconduit/internal/resolve"
)

func NewResolveCommand(app *App) *cobra.Command {
	var (
		username    string
		jsonOutput  bool
		showSecrets bool
		overrides   []string
	)

	cmd := &cobra.Command{
		Use:   "resolve <profile>",
		Short: "Show the resolved configuration for a profile",
		Long: `Resolve every configuration field for a profile and show which
source supplied each value.

Sources are consulted strictly in priority order: explicit override,
environment variable, secure store (credentials only), defaults file
(non-credentials only), derived principal, absence. Credential values
are masked unless --show-secrets is given.

Examples:
  cloudconduit resolve snowflake
  cloudconduit resolve databricks --json
  cloudconduit resolve snowflake --set warehouse=LOAD_WH --user jane.doe`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := app.Conduit()
			p, err := parseProfileArg(args[0])
			if err != nil {
				return err
			}

			overrideMap, err := parseOverrides(overrides)
			if err != nil {
				return err
			}

			resolved, err := cc.ResolveAllAs(p, username, overrideMap)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printResolvedJSON(cmd, p, resolved, showSecrets)
			}
			return printResolvedTable(cmd, p, resolved, showSecrets)
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Explicit principal (used verbatim, scopes secure-store lookups)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "Print credential values instead of masking them")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "Explicit override as key=value (repeatable)")

	return cmd
}

func parseOverrides(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	overrides := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid --set value '%s': expected key=value", pair)
		}
		overrides[key] = value
	}
	return overrides, nil
}

func displayValue(p profile.ServiceProfile, key, value string, showSecrets bool) string {
	if def, ok := profile.Lookup(p, key); ok && def.Credential && !showSecrets {
		return logging.Mask(value)
	}
	return value
}

func printResolvedTable(cmd *cobra.Command, p profile.ServiceProfile, resolved *resolve.Resolved, showSecrets bool) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tORIGIN")
	for _, key := range resolved.Keys() {
		sv := resolved.Get(key)
		value := ""
		if sv.Present() {
			value = displayValue(p, key, sv.Value, showSecrets)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", key, value, sv.Origin)
	}
	return w.Flush()
}

type resolvedField struct {
	Value  string `json:"value,omitempty"`
	Origin string `json:"origin"`
}

func printResolvedJSON(cmd *cobra.Command, p profile.ServiceProfile, resolved *resolve.Resolved, showSecrets bool) error {
	out := make(map[string]resolvedField, len(resolved.Keys()))
	for _, key := range resolved.Keys() {
		sv := resolved.Get(key)
		field := resolvedField{Origin: string(sv.Origin)}
		if sv.Present() {
			field.Value = displayValue(p, key, sv.Value, showSecrets)
		}
		out[key] = field
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
