// Package profile defines the supported service profiles and the
// canonical key space used by the resolution engine.
//
// A canonical key is the normalized, lower-case snake_case identifier of
// one configuration field (e.g. "account", "access_token"), independent
// of how a source spells it. Each profile registers a fixed, enumerated
// key set; every translation between canonical keys, environment
// variable names, and secure-store account names happens here so the
// rest of the engine never touches raw key strings.
package profile

import (
	"fmt"
	"sort"
	"strings"

	ccerrors "github.com/systmms/cloudconduit/internal/errors"
)

// ServiceProfile identifies one of the supported external services.
type ServiceProfile string

const (
	// Snowflake is the data warehouse profile.
	Snowflake ServiceProfile = "snowflake"
	// Databricks is the lakehouse compute profile.
	Databricks ServiceProfile = "databricks"
	// S3 is the object storage profile.
	S3 ServiceProfile = "s3"
)

// All returns the supported profiles in stable order.
func All() []ServiceProfile {
	return []ServiceProfile{Snowflake, Databricks, S3}
}

// Parse validates a profile name supplied by a caller.
func Parse(name string) (ServiceProfile, error) {
	p := ServiceProfile(strings.ToLower(strings.TrimSpace(name)))
	if p.Valid() {
		return p, nil
	}
	return "", ccerrors.ConfigError{
		Field:      "profile",
		Value:      name,
		Message:    "unknown service profile",
		Suggestion: fmt.Sprintf("Supported profiles: %s", joinProfiles(All())),
	}
}

// Valid reports whether p is a registered profile.
func (p ServiceProfile) Valid() bool {
	_, ok := registry[p]
	return ok
}

// EnvPrefix returns the environment variable prefix for the profile.
// S3 uses the conventional AWS variable family rather than an S3_ prefix.
func (p ServiceProfile) EnvPrefix() string {
	if p == S3 {
		return "AWS"
	}
	return strings.ToUpper(string(p))
}

func joinProfiles(ps []ServiceProfile) string {
	names := make([]string, len(ps))
	for i, p := range ps {
		names[i] = string(p)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
