// Package envsource reads configuration from the process environment.
package envsource

import (
	"os"

	"github.com/systmms/cloudconduit/internal/profile"
)

// Lookup returns the environment value for a canonical key at call
// time. Results are never cached so changes made between two resolution
// calls are observed. Empty values are treated as unset.
func Lookup(p profile.ServiceProfile, key string) (string, bool) {
	value, ok := os.LookupEnv(profile.EnvVar(p, key))
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
