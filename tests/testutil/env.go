// Package testutil holds helpers shared by the package test suites.
package testutil

import (
	"os"
	"testing"
)

// SetupTestEnv sets environment variables for the duration of a test.
//
// The original environment is restored automatically when the test
// completes, via t.Cleanup. Tests using this helper must not call
// t.Parallel: the process environment is shared state.
//
// Example:
//
//	SetupTestEnv(t, map[string]string{
//	    "SNOWFLAKE_ACCOUNT": "acme-prod",
//	    "AWS_DEFAULT_REGION": "eu-west-1",
//	})
func SetupTestEnv(t *testing.T, vars map[string]string) {
	t.Helper()

	original := make(map[string]string)
	unset := make([]string, 0)

	for key, value := range vars {
		if orig, ok := os.LookupEnv(key); ok {
			original[key] = orig
		} else {
			unset = append(unset, key)
		}
		if err := os.Setenv(key, value); err != nil {
			t.Fatalf("Failed to set environment variable %s: %v", key, err)
		}
	}

	t.Cleanup(func() {
		for key, value := range original {
			if err := os.Setenv(key, value); err != nil {
				t.Errorf("Failed to restore environment variable %s: %v", key, err)
			}
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Errorf("Failed to unset environment variable %s: %v", key, err)
			}
		}
	})
}

// ClearTestEnv unsets environment variables for the duration of a test,
// restoring any original values on cleanup.
func ClearTestEnv(t *testing.T, keys ...string) {
	t.Helper()

	original := make(map[string]string)
	for _, key := range keys {
		if orig, ok := os.LookupEnv(key); ok {
			original[key] = orig
		}
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("Failed to unset environment variable %s: %v", key, err)
		}
	}

	t.Cleanup(func() {
		for key, value := range original {
			if err := os.Setenv(key, value); err != nil {
				t.Errorf("Failed to restore environment variable %s: %v", key, err)
			}
		}
	})
}
