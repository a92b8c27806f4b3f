package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/systmms/cloudconduit/internal/defaults"
	"github.com/systmms/cloudconduit/internal/envsource"
	"github.com/systmms/cloudconduit/internal/identity"
	"github.com/systmms/cloudconduit/internal/profile"
)

type checkResult struct {
	Name    string
	Status  string // ok, warn, error
	Message string
}

// NewDoctorCommand verifies the local resolution environment.
func NewDoctorCommand(app *App) *cobra.Command {
	var awsProfile string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the local configuration environment",
		Long: `Verify the machinery the resolver depends on.

This command checks:
- Defaults file presence and validity
- Platform secure store availability
- Which profile environment variables are currently set
- The AWS shared config profile, if one exists`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := app.Conduit()
			sys := identity.CurrentSystem()
			app.Logger.Info("Checking environment for %s on %s (%s/%s)", sys.Username, sys.Hostname, sys.OS, sys.Arch)

			results := make([]checkResult, 0, 8)
			results = append(results, checkDefaultsFile(cc.DefaultsFile(), cc.DefaultsDisabled()))
			results = append(results, checkSecureStore(cc.SecureStoreAvailable()))
			results = append(results, checkEnvVars()...)
			results = append(results, checkAWSSharedProfile(cmd.Context(), awsProfile))

			printCheckResults(cmd, results)

			failed := 0
			for _, r := range results {
				if r.Status == "error" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d check(s) failed", failed)
			}

			app.Logger.Info("✓ Environment looks healthy")
			return nil
		},
	}

	cmd.Flags().StringVar(&awsProfile, "aws-profile", "", "AWS shared config profile to check (default: AWS_PROFILE or 'default')")

	return cmd
}

func checkDefaultsFile(path string, disabled bool) checkResult {
	result := checkResult{Name: "defaults file"}

	if disabled {
		result.Status = "warn"
		result.Message = "disabled via CLOUDCONDUIT_DISABLE_AUTO_CONFIG"
		return result
	}
	if _, err := os.Stat(path); err != nil {
		result.Status = "warn"
		result.Message = fmt.Sprintf("%s not found. Run 'cloudconduit config init' to create one", path)
		return result
	}
	if _, err := defaults.Load(path); err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}

	result.Status = "ok"
	result.Message = path
	return result
}

func checkSecureStore(available bool) checkResult {
	if !available {
		return checkResult{
			Name:    "secure store",
			Status:  "warn",
			Message: "platform secure store unavailable. Credentials fall back to environment variables",
		}
	}
	return checkResult{Name: "secure store", Status: "ok", Message: "available"}
}

func checkEnvVars() []checkResult {
	results := make([]checkResult, 0, len(profile.All()))
	for _, p := range profile.All() {
		keys, err := profile.Keys(p)
		if err != nil {
			continue
		}
		set := 0
		for _, def := range keys {
			if _, ok := envsource.Lookup(p, def.Name); ok {
				set++
			}
		}
		status := "ok"
		if set == 0 {
			status = "warn"
		}
		results = append(results, checkResult{
			Name:    fmt.Sprintf("env (%s)", p),
			Status:  status,
			Message: fmt.Sprintf("%d of %d variables set", set, len(keys)),
		})
	}
	return results
}

// checkAWSSharedProfile reads the local AWS shared config files without
// touching the network, so static credentials stored there can be
// cross-checked against what the s3 profile resolves.
func checkAWSSharedProfile(ctx context.Context, name string) checkResult {
	if name == "" {
		name = os.Getenv("AWS_PROFILE")
	}
	if name == "" {
		name = "default"
	}
	result := checkResult{Name: fmt.Sprintf("aws shared profile (%s)", name)}

	shared, err := awsconfig.LoadSharedConfigProfile(ctx, name)
	if err != nil {
		result.Status = "warn"
		result.Message = fmt.Sprintf("not readable: %v", err)
		return result
	}

	result.Status = "ok"
	switch {
	case shared.Credentials.HasKeys() && shared.Region != "":
		result.Message = fmt.Sprintf("static credentials present, region %s", shared.Region)
	case shared.Credentials.HasKeys():
		result.Message = "static credentials present, no region"
	case shared.Region != "":
		result.Message = fmt.Sprintf("no static credentials, region %s", shared.Region)
	default:
		result.Message = "profile exists but sets no credentials or region"
	}
	return result
}

func printCheckResults(cmd *cobra.Command, results []checkResult) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
	for _, r := range results {
		status := r.Status
		switch r.Status {
		case "ok":
			status = "✓ " + status
		case "warn":
			status = "⚠ " + status
		case "error":
			status = "✗ " + status
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, status, r.Message)
	}
	_ = w.Flush()
}
