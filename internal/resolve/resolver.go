// Package resolve implements the credential and configuration
// resolution engine.
//
// A value for one (profile, canonical key) pair is looked up across the
// configuration sources strictly in priority order, first match wins:
//
//  1. explicit caller override
//  2. process environment
//  3. secure credential store (credential fields only)
//  4. defaults file (non-credential fields only)
//  5. derived default principal (principal field only)
//  6. absence
//
// Credential fields never fall through to the plain-text defaults file,
// and non-credential fields are never read from the secure store.
package resolve

import (
	"sync"
	"sync/atomic"

	"github.com/systmms/cloudconduit/internal/defaults"
	"github.com/systmms/cloudconduit/internal/envsource"
	ccerrors "github.com/systmms/cloudconduit/internal/errors"
	"github.com/systmms/cloudconduit/internal/identity"
	"github.com/systmms/cloudconduit/internal/keystore"
	"github.com/systmms/cloudconduit/internal/logging"
	"github.com/systmms/cloudconduit/internal/profile"
)

// Origin identifies which source supplied a resolved value.
type Origin string

const (
	OriginExplicit    Origin = "explicit"
	OriginEnvironment Origin = "environment"
	OriginSecureStore Origin = "secure_store"
	OriginDefault     Origin = "default"
	OriginIdentity    Origin = "identity"
	OriginNone        Origin = "none"
)

// SourceValue is a resolved (value, origin) pair. It exists for
// diagnostics and is never persisted.
type SourceValue struct {
	Value  string
	Origin Origin
}

// Present reports whether any source supplied a value.
func (v SourceValue) Present() bool {
	return v.Origin != OriginNone
}

func absent() SourceValue {
	return SourceValue{Origin: OriginNone}
}

// Options carries per-call resolution inputs.
type Options struct {
	// Overrides are explicit caller-supplied values keyed by raw or
	// canonical key name. An explicit value always wins. Empty strings
	// are treated as absent.
	Overrides map[string]string

	// Username scopes secure-store lookups to a specific principal's
	// entries. For the principal field itself it acts as an explicit
	// value, used verbatim.
	Username string
}

// Manager orchestrates the configuration sources. It owns no secret
// material; it only coordinates lookups. Safe for concurrent use: all
// mutable state is behind the defaults store's load-once guard.
type Manager struct {
	defaults *defaults.Store
	store    *keystore.Store
	rule     identity.Rule
	logger   *logging.Logger

	defaultsDisabled atomic.Bool
	warnDefaultsOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithIdentityRule sets the derivation rule applied when the principal
// field falls through to the derived default.
func WithIdentityRule(rule identity.Rule) Option {
	return func(m *Manager) {
		m.rule = rule
	}
}

// New creates a resolution manager.
func New(defaultsStore *defaults.Store, credStore *keystore.Store, logger *logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		defaults: defaultsStore,
		store:    credStore,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CheckDefaults surfaces a defaults file load error to callers that
// want to treat it as fatal. Resolution itself proceeds with empty
// defaults either way.
func (m *Manager) CheckDefaults() error {
	_, err := m.defaults.Load()
	return err
}

// DisableDefaults makes every defaults lookup report absence. Used by
// the explicit-opt-out flag; environment, secure store, and identity
// sources keep working.
func (m *Manager) DisableDefaults() {
	m.defaultsDisabled.Store(true)
}

// SecureStoreAvailable reports whether the platform credential store is
// usable.
func (m *Manager) SecureStoreAvailable() bool {
	return m.store.IsAvailable()
}

// IdentityRule returns the configured principal derivation rule.
func (m *Manager) IdentityRule() identity.Rule {
	return m.rule
}

// Resolve resolves one field. The key may be given in any accepted
// spelling; an unknown key or profile fails immediately. An unset
// optional field is not an error: it resolves to an absent SourceValue.
func (m *Manager) Resolve(p profile.ServiceProfile, key string, opts Options) (SourceValue, error) {
	canonical, err := profile.Canonical(p, key)
	if err != nil {
		return absent(), err
	}
	overrides, err := m.normalizeOverrides(p, opts.Overrides)
	if err != nil {
		return absent(), err
	}
	return m.resolveKey(p, canonical, overrides, opts.Username), nil
}

// ResolveAll resolves every registered key for a profile and returns
// the aggregate. The result is built fresh per call, since environment
// and secure-store contents may change between calls, and is immutable
// once returned.
func (m *Manager) ResolveAll(p profile.ServiceProfile, opts Options) (*Resolved, error) {
	keys, err := profile.Keys(p)
	if err != nil {
		return nil, err
	}
	overrides, err := m.normalizeOverrides(p, opts.Overrides)
	if err != nil {
		return nil, err
	}

	values := make(map[string]SourceValue, len(keys))
	for _, k := range keys {
		values[k.Name] = m.resolveKey(p, k.Name, overrides, opts.Username)
	}
	return &Resolved{profile: p, values: values}, nil
}

// resolveKey runs the priority chain for one canonical key.
func (m *Manager) resolveKey(p profile.ServiceProfile, canonical string, overrides map[string]string, username string) SourceValue {
	def, _ := profile.Lookup(p, canonical)

	if value, ok := overrides[canonical]; ok && value != "" {
		return SourceValue{Value: value, Origin: OriginExplicit}
	}
	if def.Principal && username != "" {
		// An explicit username is used verbatim; derivation rules do
		// not touch it.
		return SourceValue{Value: username, Origin: OriginExplicit}
	}

	if value, ok := envsource.Lookup(p, canonical); ok {
		return SourceValue{Value: value, Origin: OriginEnvironment}
	}

	if def.Credential {
		if value, ok := m.store.Get(p, canonical, username); ok {
			return SourceValue{Value: value, Origin: OriginSecureStore}
		}
	} else if !m.defaultsDisabled.Load() {
		if _, err := m.defaults.Load(); err != nil {
			m.warnDefaultsOnce.Do(func() {
				m.logger.Warn("Defaults file ignored: %v", err)
			})
		}
		if value, ok := m.defaults.Get(p, canonical); ok {
			return SourceValue{Value: value, Origin: OriginDefault}
		}
	}

	if def.Principal {
		return SourceValue{Value: identity.DefaultPrincipal(m.rule), Origin: OriginIdentity}
	}

	return absent()
}

// normalizeOverrides canonicalizes override keys. An override for an
// unknown key is a caller programming error and fails the whole call.
func (m *Manager) normalizeOverrides(p profile.ServiceProfile, overrides map[string]string) (map[string]string, error) {
	if len(overrides) == 0 {
		return nil, nil
	}
	normalized := make(map[string]string, len(overrides))
	for raw, value := range overrides {
		canonical, err := profile.Canonical(p, raw)
		if err != nil {
			return nil, ccerrors.UserError{
				Message:    "Invalid explicit override",
				Details:    err.Error(),
				Suggestion: "Override keys must be registered configuration fields",
				Err:        err,
			}
		}
		normalized[canonical] = value
	}
	return normalized, nil
}
