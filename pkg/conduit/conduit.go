// Package conduit is the public entry point for resolving connection
// configuration and credentials for the supported service profiles
// (Snowflake, Databricks, S3).
//
// A Conduit merges four configuration sources with a strict precedence
// order: explicit caller values, process environment, the platform
// secure credential store (credentials only), and a YAML defaults file
// (non-credentials only). When nothing else supplies one, a default
// principal is derived from the invoking OS account.
//
// Basic usage:
//
//	cc := conduit.New()
//	if err := cc.Initialize(); err != nil {
//	    // malformed defaults file; resolution continues with empty
//	    // defaults if you choose to ignore this
//	}
//
//	cfg, err := cc.Snowflake("", nil)
//	if err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err // lists every missing required field
//	}
//
// The engine performs no network I/O and never validates credentials
// against a live service; it only decides which values to hand to
// whatever connector the caller builds.
package conduit

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/systmms/cloudconduit/internal/defaults"
	"github.com/systmms/cloudconduit/internal/identity"
	"github.com/systmms/cloudconduit/internal/keystore"
	"github.com/systmms/cloudconduit/internal/logging"
	"github.com/systmms/cloudconduit/internal/profile"
	"github.com/systmms/cloudconduit/internal/resolve"
)

// Service profiles, re-exported so callers need only this package.
type ServiceProfile = profile.ServiceProfile

const (
	Snowflake  = profile.Snowflake
	Databricks = profile.Databricks
	S3         = profile.S3
)

// ResolvedConfig is the per-profile aggregate resolution result.
type ResolvedConfig = resolve.Resolved

// SourceValue is a resolved (value, origin) pair.
type SourceValue = resolve.SourceValue

// Origin identifies which source supplied a value.
type Origin = resolve.Origin

const (
	// EnvDisableAutoConfig suppresses defaults loading during
	// Initialize when set to any non-empty value.
	EnvDisableAutoConfig = "CLOUDCONDUIT_DISABLE_AUTO_CONFIG"

	// EnvConfigPath overrides the defaults file location.
	EnvConfigPath = "CLOUDCONDUIT_CONFIG"
)

// DefaultsPath returns the defaults file location: the EnvConfigPath
// override when set, otherwise ~/.config/cloudconduit/config.yaml.
func DefaultsPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "cloudconduit", "config.yaml")
}

// ParseProfile validates a profile name supplied by a caller.
func ParseProfile(name string) (ServiceProfile, error) {
	return profile.Parse(name)
}

// Conduit coordinates the resolution engine and the credential store.
// Safe for concurrent use.
type Conduit struct {
	manager *resolve.Manager
	store   *keystore.Store
	logger  *logging.Logger

	defaultsPath string
	disabled     bool

	initOnce sync.Once
	initErr  error
}

// Option configures a Conduit.
type Option func(*settings)

type settings struct {
	defaultsPath string
	logger       *logging.Logger
	keyring      keystore.Keyring
	rule         identity.Rule
}

// WithDefaultsPath overrides the defaults file path.
func WithDefaultsPath(path string) Option {
	return func(s *settings) { s.defaultsPath = path }
}

// WithLogger overrides the logger. The default logs warnings and errors
// without color control.
func WithLogger(logger *logging.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithKeyring overrides the secure-store backend. Primarily for tests.
func WithKeyring(ring keystore.Keyring) Option {
	return func(s *settings) { s.keyring = ring }
}

// WithIdentityRule sets the principal derivation rule.
func WithIdentityRule(rule identity.Rule) Option {
	return func(s *settings) { s.rule = rule }
}

// New creates a Conduit. Nothing is loaded until Initialize or the
// first resolution call.
func New(opts ...Option) *Conduit {
	s := &settings{
		defaultsPath: DefaultsPath(),
		logger:       logging.New(false, false),
	}
	for _, opt := range opts {
		opt(s)
	}

	var store *keystore.Store
	if s.keyring != nil {
		store = keystore.NewWithKeyring(s.keyring, s.logger)
	} else {
		store = keystore.New(s.logger)
	}

	defaultsStore := defaults.NewStore(s.defaultsPath)

	return &Conduit{
		manager:      resolve.New(defaultsStore, store, s.logger, resolve.WithIdentityRule(s.rule)),
		store:        store,
		logger:       s.logger,
		defaultsPath: s.defaultsPath,
	}
}

// Initialize loads the defaults file. It is idempotent and safe to call
// from multiple goroutines; repeated calls return the first outcome.
//
// When EnvDisableAutoConfig is set the defaults file is skipped
// entirely and every later defaults lookup reports absence. A malformed
// defaults file is returned as an error, but the Conduit stays usable:
// resolution proceeds with empty defaults.
func (c *Conduit) Initialize() error {
	c.initOnce.Do(func() {
		if os.Getenv(EnvDisableAutoConfig) != "" {
			c.disabled = true
			c.manager.DisableDefaults()
			c.logger.Debug("Defaults loading disabled via %s", EnvDisableAutoConfig)
			return
		}
		c.initErr = c.manager.CheckDefaults()
	})
	return c.initErr
}

// ensureInit runs Initialize for implicit entry points, downgrading a
// defaults load failure to a warning (the manager logs it once).
func (c *Conduit) ensureInit() {
	_ = c.Initialize()
}

// Resolve resolves a single field. See ResolveAll for the source
// precedence.
func (c *Conduit) Resolve(p ServiceProfile, key string, overrides map[string]string) (SourceValue, error) {
	c.ensureInit()
	return c.manager.Resolve(p, key, resolve.Options{Overrides: overrides})
}

// ResolveAll resolves every registered field for a profile:
// explicit override > environment > secure store (credentials) >
// defaults (non-credentials) > derived principal > absent.
func (c *Conduit) ResolveAll(p ServiceProfile, overrides map[string]string) (*ResolvedConfig, error) {
	return c.ResolveAllAs(p, "", overrides)
}

// ResolveAllAs is ResolveAll with an explicit username: the username is
// used verbatim for the principal field and scopes secure-store
// lookups.
func (c *Conduit) ResolveAllAs(p ServiceProfile, username string, overrides map[string]string) (*ResolvedConfig, error) {
	c.ensureInit()
	return c.manager.ResolveAll(p, resolve.Options{
		Overrides: overrides,
		Username:  username,
	})
}

// SetCredential stores a credential in the platform secure store.
func (c *Conduit) SetCredential(p ServiceProfile, key, username, value string) error {
	return c.store.Set(p, key, username, value)
}

// GetCredential reads a credential from the platform secure store.
// Absence is not an error.
func (c *Conduit) GetCredential(p ServiceProfile, key, username string) (string, bool) {
	return c.store.Get(p, key, username)
}

// DeleteCredential removes a credential from the platform secure store.
// Deleting a credential that was never stored succeeds.
func (c *Conduit) DeleteCredential(p ServiceProfile, key, username string) error {
	return c.store.Delete(p, key, username)
}

// SecureStoreAvailable reports whether this platform has a usable
// secure storage backend.
func (c *Conduit) SecureStoreAvailable() bool {
	return c.store.IsAvailable()
}

// DefaultsDisabled reports whether defaults loading was suppressed via
// EnvDisableAutoConfig.
func (c *Conduit) DefaultsDisabled() bool {
	c.ensureInit()
	return c.disabled
}

// DefaultsFile returns the defaults file path in use.
func (c *Conduit) DefaultsFile() string {
	return c.defaultsPath
}

// DefaultPrincipal returns the principal derived from the invoking
// account under the configured rule.
func (c *Conduit) DefaultPrincipal() string {
	return identity.DefaultPrincipal(c.manager.IdentityRule())
}
