// Package defaults loads the optional, non-secret defaults file.
//
// The file is YAML, keyed by service profile name, and carries only
// plain configuration fields (account identifiers, hostnames, catalog
// and schema names, region). It is loaded at most once per process and
// is read-only afterwards. Credential fields are accepted by the loader
// but the resolution engine never reads credentials from this source.
package defaults

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	ccerrors "github.com/systmms/cloudconduit/internal/errors"
	"github.com/systmms/cloudconduit/internal/profile"
)

// Defaults maps profile → canonical key → value.
type Defaults map[profile.ServiceProfile]map[string]string

// Get returns the default value for a canonical key, if present.
func (d Defaults) Get(p profile.ServiceProfile, key string) (string, bool) {
	section, ok := d[p]
	if !ok {
		return "", false
	}
	value, ok := section[key]
	return value, ok
}

// Load reads and validates a defaults file.
//
// An absent file is not an error: defaults are optional and Load returns
// an empty mapping. A file that exists but cannot be read or parsed is a
// load error the caller must decide about.
func Load(path string) (Defaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults{}, nil
		}
		return nil, ccerrors.UserError{
			Message:    fmt.Sprintf("Failed to read defaults file %s", path),
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ccerrors.ConfigError{
			Field:      "defaults",
			Value:      path,
			Message:    "invalid YAML syntax in defaults file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}
	if doc == nil {
		return Defaults{}, nil
	}

	if err := validateDocument(doc); err != nil {
		return nil, err
	}

	result := Defaults{}
	for section, raw := range doc {
		p, err := profile.Parse(section)
		if err != nil {
			return nil, err
		}
		fields, ok := raw.(map[string]interface{})
		if !ok {
			// The schema rejects this already; kept as a guard for
			// documents that bypass validation in tests.
			return nil, ccerrors.ConfigError{
				Field:   section,
				Message: "profile section must be a mapping of fields to scalar values",
			}
		}
		values := make(map[string]string, len(fields))
		for rawKey, rawValue := range fields {
			key, err := profile.Canonical(p, rawKey)
			if err != nil {
				return nil, err
			}
			if rawValue == nil {
				continue
			}
			values[key] = fmt.Sprint(rawValue)
		}
		result[p] = values
	}

	return result, nil
}

// Store serves defaults with a single initialization guard: the file is
// loaded exactly once, then published immutable for concurrent reads.
type Store struct {
	path string

	once sync.Once
	data Defaults
	err  error
}

// NewStore creates a defaults store for the given path. Nothing is read
// until first use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the configured defaults file path.
func (s *Store) Path() string {
	return s.path
}

// Load loads the file on first call and returns the cached result
// afterwards. The error is sticky: a malformed file reports the same
// failure on every call.
func (s *Store) Load() (Defaults, error) {
	s.once.Do(func() {
		s.data, s.err = Load(s.path)
		if s.err != nil {
			s.data = Defaults{}
		}
	})
	return s.data, s.err
}

// Get returns the default value for a canonical key. A store whose file
// failed to load behaves as empty; the load error is reported by Load,
// not here.
func (s *Store) Get(p profile.ServiceProfile, key string) (string, bool) {
	data, _ := s.Load()
	return data.Get(p, key)
}
