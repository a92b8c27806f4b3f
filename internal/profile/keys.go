package profile

import (
	"fmt"
	"strings"

	ccerrors "github.com/systmms/cloudconduit/internal/errors"
)

// Key describes one registered canonical configuration field.
type Key struct {
	Name       string
	Credential bool // resolved via the secure store, never via defaults
	Principal  bool // falls back to the derived default principal
	Required   bool // enforced by the typed config validators, not the resolver
}

// registry is the fixed field set per profile. Canonical names are
// lower-case snake_case and unique per profile.
var registry = map[ServiceProfile][]Key{
	Snowflake: {
		{Name: "account", Required: true},
		{Name: "user", Principal: true, Required: true},
		{Name: "warehouse", Required: true},
		{Name: "database"},
		{Name: "schema"},
		{Name: "password", Credential: true},
		{Name: "private_key_path"},
		{Name: "private_key_passphrase", Credential: true},
		{Name: "authenticator"},
	},
	Databricks: {
		{Name: "server_hostname", Required: true},
		{Name: "http_path", Required: true},
		{Name: "access_token", Credential: true, Required: true},
		{Name: "catalog"},
		{Name: "schema"},
	},
	S3: {
		{Name: "access_key_id", Credential: true},
		{Name: "secret_access_key", Credential: true},
		{Name: "session_token", Credential: true},
		{Name: "region"},
	},
}

// aliases maps accepted alternate spellings to canonical names.
// Aliases are intentional; distinct credentials never alias each other.
var aliases = map[ServiceProfile]map[string]string{
	Snowflake: {
		"username": "user",
	},
	Databricks: {
		"hostname": "server_hostname",
	},
	S3: {
		"aws_access_key_id":     "access_key_id",
		"aws_secret_access_key": "secret_access_key",
		"aws_session_token":     "session_token",
		"region_name":           "region",
		"default_region":        "region",
	},
}

// envOverrides lists keys whose environment variable does not follow the
// <PREFIX>_<KEY> pattern.
var envOverrides = map[ServiceProfile]map[string]string{
	S3: {
		"region": "AWS_DEFAULT_REGION",
	},
}

// Keys returns the registered canonical keys for a profile.
func Keys(p ServiceProfile) ([]Key, error) {
	keys, ok := registry[p]
	if !ok {
		return nil, ccerrors.ConfigError{
			Field:      "profile",
			Value:      string(p),
			Message:    "unknown service profile",
			Suggestion: fmt.Sprintf("Supported profiles: %s", joinProfiles(All())),
		}
	}
	out := make([]Key, len(keys))
	copy(out, keys)
	return out, nil
}

// Lookup returns the key definition for a canonical name.
func Lookup(p ServiceProfile, name string) (Key, bool) {
	for _, k := range registry[p] {
		if k.Name == name {
			return k, true
		}
	}
	return Key{}, false
}

// Canonical normalizes a raw key into its canonical form for the given
// profile. It accepts any case, dash/space separators, the profile's
// environment prefix, and registered aliases. Unknown keys are a caller
// programming error and fail immediately.
func Canonical(p ServiceProfile, raw string) (string, error) {
	if !p.Valid() {
		return "", ccerrors.ConfigError{
			Field:      "profile",
			Value:      string(p),
			Message:    "unknown service profile",
			Suggestion: fmt.Sprintf("Supported profiles: %s", joinProfiles(All())),
		}
	}

	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, "-", "_")
	name = strings.ReplaceAll(name, " ", "_")

	if canonical, ok := resolveName(p, name); ok {
		return canonical, nil
	}

	// Tolerate env-var style input (SNOWFLAKE_PRIVATE_KEY_PATH → private_key_path).
	prefix := strings.ToLower(p.EnvPrefix()) + "_"
	if trimmed, found := strings.CutPrefix(name, prefix); found {
		if canonical, ok := resolveName(p, trimmed); ok {
			return canonical, nil
		}
	}

	return "", ccerrors.ConfigError{
		Field:      "key",
		Value:      raw,
		Message:    fmt.Sprintf("unknown configuration key for profile '%s'", p),
		Suggestion: fmt.Sprintf("Known keys: %s", strings.Join(keyNames(p), ", ")),
	}
}

func resolveName(p ServiceProfile, name string) (string, bool) {
	if alias, ok := aliases[p][name]; ok {
		name = alias
	}
	if _, ok := Lookup(p, name); ok {
		return name, true
	}
	return "", false
}

// EnvVar returns the environment variable name for a canonical key,
// following the <PREFIX>_<KEY_UPPER> pattern with per-key overrides.
func EnvVar(p ServiceProfile, key string) string {
	if override, ok := envOverrides[p][key]; ok {
		return override
	}
	return p.EnvPrefix() + "_" + strings.ToUpper(key)
}

// StoreAccount builds the secure-store account name for a canonical key.
// The base form is the lower-cased environment variable name; when a
// username is supplied the cleaned username is appended so multiple
// principals stay distinguishable.
func StoreAccount(p ServiceProfile, key, username string) string {
	account := strings.ToLower(EnvVar(p, key))
	if username == "" {
		return account
	}
	return account + "." + CleanUsername(username)
}

// CleanUsername normalizes a username for use in store account names:
// lower-case, spaces and @ become dots.
func CleanUsername(username string) string {
	u := strings.ToLower(strings.TrimSpace(username))
	u = strings.ReplaceAll(u, " ", ".")
	u = strings.ReplaceAll(u, "@", ".")
	return u
}

func keyNames(p ServiceProfile) []string {
	keys := registry[p]
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.Name
	}
	return names
}
