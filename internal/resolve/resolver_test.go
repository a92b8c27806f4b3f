package resolve_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/cloudconduit/internal/defaults"
	ccerrors "github.com/systmms/cloudconduit/internal/errors"
	"github.com/systmms/cloudconduit/internal/identity"
	"github.com/systmms/cloudconduit/internal/keystore"
	"github.com/systmms/cloudconduit/internal/logging"
	"github.com/systmms/cloudconduit/internal/profile"
	"github.com/systmms/cloudconduit/internal/resolve"
	"github.com/systmms/cloudconduit/tests/testutil"
)

// snowflakeEnvVars lists every variable a snowflake resolution may read,
// so tests can isolate themselves from the developer's shell.
var snowflakeEnvVars = []string{
	"SNOWFLAKE_ACCOUNT", "SNOWFLAKE_USER", "SNOWFLAKE_WAREHOUSE",
	"SNOWFLAKE_DATABASE", "SNOWFLAKE_SCHEMA", "SNOWFLAKE_PASSWORD",
	"SNOWFLAKE_PRIVATE_KEY_PATH", "SNOWFLAKE_PRIVATE_KEY_PASSPHRASE",
	"SNOWFLAKE_AUTHENTICATOR",
}

func newManager(t *testing.T, defaultsContent string, ring *keystore.Memory, opts ...resolve.Option) *resolve.Manager {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if defaultsContent != "" {
		require.NoError(t, os.WriteFile(path, []byte(defaultsContent), 0o600))
	}

	logger := logging.New(false, true)
	if ring == nil {
		ring = keystore.NewMemory()
	}
	return resolve.New(
		defaults.NewStore(path),
		keystore.NewWithKeyring(ring, logger),
		logger,
		opts...,
	)
}

func TestPriorityOrder(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	ring := keystore.NewMemory()
	store := keystore.NewWithKeyring(ring, logging.New(false, true))
	require.NoError(t, store.Set(profile.Snowflake, "password", "", "store-pw"))

	m := newManager(t, `
snowflake:
  account: default-account
  warehouse: default-wh
`, ring)

	// Explicit beats environment.
	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_ACCOUNT": "env-account"})
	v, err := m.Resolve(profile.Snowflake, "account", resolve.Options{
		Overrides: map[string]string{"account": "explicit-account"},
	})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "explicit-account", Origin: resolve.OriginExplicit}, v)

	// Environment beats defaults.
	v, err = m.Resolve(profile.Snowflake, "account", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "env-account", Origin: resolve.OriginEnvironment}, v)

	// Defaults serve non-credential fields with nothing above them.
	v, err = m.Resolve(profile.Snowflake, "warehouse", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "default-wh", Origin: resolve.OriginDefault}, v)

	// Credentials come from the secure store.
	v, err = m.Resolve(profile.Snowflake, "password", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "store-pw", Origin: resolve.OriginSecureStore}, v)

	// Environment beats the secure store for credentials too.
	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_PASSWORD": "env-pw"})
	v, err = m.Resolve(profile.Snowflake, "password", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "env-pw", Origin: resolve.OriginEnvironment}, v)

	// An unset optional field resolves to absence, not an error.
	v, err = m.Resolve(profile.Snowflake, "database", resolve.Options{})
	require.NoError(t, err)
	assert.False(t, v.Present())
	assert.Equal(t, resolve.OriginNone, v.Origin)
}

// A credential present in the defaults file must never be served: the
// plain-text file is not a credential source.
func TestCredentialsNeverReadFromDefaults(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	m := newManager(t, `
snowflake:
  password: plaintext-pw
`, nil)

	v, err := m.Resolve(profile.Snowflake, "password", resolve.Options{})
	require.NoError(t, err)
	assert.False(t, v.Present())
}

// A non-credential field must never be read from the secure store, even
// when an entry with a matching account name exists.
func TestNonCredentialsNeverReadFromStore(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	ring := keystore.NewMemory()
	require.NoError(t, ring.Set(keystore.ServiceName, "snowflake_warehouse", "sneaky"))

	m := newManager(t, "", ring)

	v, err := m.Resolve(profile.Snowflake, "warehouse", resolve.Options{})
	require.NoError(t, err)
	assert.False(t, v.Present())
}

func TestEnvironmentNeverCached(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	m := newManager(t, "", nil)

	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_SCHEMA": "first"})
	v, err := m.Resolve(profile.Snowflake, "schema", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, "first", v.Value)

	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_SCHEMA": "second"})
	v, err = m.Resolve(profile.Snowflake, "schema", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, "second", v.Value)
}

func TestPrincipalResolution(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	rule := identity.Rule{DomainSuffix: "@company.com"}
	m := newManager(t, "", nil, resolve.WithIdentityRule(rule))

	// With nothing configured the principal is derived from the OS
	// account under the rule.
	v, err := m.Resolve(profile.Snowflake, "user", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, resolve.OriginIdentity, v.Origin)
	assert.Equal(t, identity.DefaultPrincipal(rule), v.Value)

	// An explicit username is used verbatim; no derivation applies.
	v, err = m.Resolve(profile.Snowflake, "user", resolve.Options{Username: "SVC_ETL"})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "SVC_ETL", Origin: resolve.OriginExplicit}, v)

	// The environment still beats derivation.
	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_USER": "env-user"})
	v, err = m.Resolve(profile.Snowflake, "user", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "env-user", Origin: resolve.OriginEnvironment}, v)
}

func TestUsernameScopesStoreLookups(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	ring := keystore.NewMemory()
	store := keystore.NewWithKeyring(ring, logging.New(false, true))
	require.NoError(t, store.Set(profile.Snowflake, "password", "alice", "alice-pw"))
	require.NoError(t, store.Set(profile.Snowflake, "password", "bob", "bob-pw"))

	m := newManager(t, "", ring)

	v, err := m.Resolve(profile.Snowflake, "password", resolve.Options{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice-pw", v.Value)

	v, err = m.Resolve(profile.Snowflake, "password", resolve.Options{Username: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob-pw", v.Value)

	// No unscoped entry exists, so no username means absence.
	v, err = m.Resolve(profile.Snowflake, "password", resolve.Options{})
	require.NoError(t, err)
	assert.False(t, v.Present())
}

// An unavailable secure store degrades credentials to the next source
// instead of failing resolution.
func TestUnavailableStoreFallsThrough(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	ring := keystore.NewMemory()
	ring.SetAvailable(false)

	m := newManager(t, "", ring)
	assert.False(t, m.SecureStoreAvailable())

	v, err := m.Resolve(profile.Snowflake, "password", resolve.Options{})
	require.NoError(t, err)
	assert.False(t, v.Present())

	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_PASSWORD": "env-pw"})
	v, err = m.Resolve(profile.Snowflake, "password", resolve.Options{})
	require.NoError(t, err)
	assert.Equal(t, resolve.OriginEnvironment, v.Origin)
}

func TestDisableDefaults(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	m := newManager(t, `
snowflake:
  account: default-account
`, nil)
	m.DisableDefaults()

	v, err := m.Resolve(profile.Snowflake, "account", resolve.Options{})
	require.NoError(t, err)
	assert.False(t, v.Present())
}

// A malformed defaults file degrades to empty defaults; the error is
// reported by CheckDefaults, not by resolution.
func TestMalformedDefaultsDegrade(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	m := newManager(t, "snowflake:\n  account: [broken\n", nil)

	require.Error(t, m.CheckDefaults())

	v, err := m.Resolve(profile.Snowflake, "account", resolve.Options{})
	require.NoError(t, err)
	assert.False(t, v.Present())
}

func TestResolveAcceptsAnySpelling(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)
	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_PRIVATE_KEY_PATH": "/keys/rsa.p8"})

	m := newManager(t, "", nil)

	for _, spelling := range []string{"private_key_path", "PRIVATE-KEY-PATH", "SNOWFLAKE_PRIVATE_KEY_PATH"} {
		v, err := m.Resolve(profile.Snowflake, spelling, resolve.Options{})
		require.NoError(t, err, "spelling %q", spelling)
		assert.Equal(t, "/keys/rsa.p8", v.Value)
	}
}

func TestResolveErrors(t *testing.T) {
	m := newManager(t, "", nil)

	_, err := m.Resolve(profile.Snowflake, "nonexistent", resolve.Options{})
	require.Error(t, err)
	var cfgErr ccerrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)

	_, err = m.Resolve(profile.ServiceProfile("redshift"), "account", resolve.Options{})
	require.Error(t, err)

	// An override for an unknown key fails the whole call.
	_, err = m.Resolve(profile.Snowflake, "account", resolve.Options{
		Overrides: map[string]string{"bogus": "value"},
	})
	require.Error(t, err)
	var userErr ccerrors.UserError
	assert.ErrorAs(t, err, &userErr)
}

func TestEmptyOverrideIsAbsent(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)

	m := newManager(t, `
snowflake:
  account: default-account
`, nil)

	// An empty explicit value does not mask lower sources.
	v, err := m.Resolve(profile.Snowflake, "account", resolve.Options{
		Overrides: map[string]string{"account": ""},
	})
	require.NoError(t, err)
	assert.Equal(t, resolve.SourceValue{Value: "default-account", Origin: resolve.OriginDefault}, v)
}

func TestResolveAll(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)
	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_ACCOUNT": "env-account"})

	ring := keystore.NewMemory()
	store := keystore.NewWithKeyring(ring, logging.New(false, true))
	require.NoError(t, store.Set(profile.Snowflake, "password", "", "store-pw"))

	m := newManager(t, `
snowflake:
  warehouse: default-wh
`, ring)

	r, err := m.ResolveAll(profile.Snowflake, resolve.Options{
		Overrides: map[string]string{"database": "OVERRIDE_DB"},
	})
	require.NoError(t, err)

	assert.Equal(t, profile.Snowflake, r.Profile())
	assert.Equal(t, resolve.OriginExplicit, r.Get("database").Origin)
	assert.Equal(t, resolve.OriginEnvironment, r.Get("account").Origin)
	assert.Equal(t, resolve.OriginDefault, r.Get("warehouse").Origin)
	assert.Equal(t, resolve.OriginSecureStore, r.Get("password").Origin)
	assert.Equal(t, resolve.OriginIdentity, r.Get("user").Origin)
	assert.Equal(t, resolve.OriginNone, r.Get("schema").Origin)

	// Every registered key appears exactly once.
	keys, err := profile.Keys(profile.Snowflake)
	require.NoError(t, err)
	assert.Len(t, r.Keys(), len(keys))

	// Map holds only present values.
	m2 := r.Map()
	assert.Equal(t, "OVERRIDE_DB", m2["database"])
	_, ok := m2["schema"]
	assert.False(t, ok)
}

func TestRequire(t *testing.T) {
	testutil.ClearTestEnv(t, snowflakeEnvVars...)
	testutil.SetupTestEnv(t, map[string]string{"SNOWFLAKE_ACCOUNT": "acct"})

	m := newManager(t, "", nil)

	r, err := m.ResolveAll(profile.Snowflake, resolve.Options{})
	require.NoError(t, err)

	assert.NoError(t, r.Require("account", "user"))

	err = r.Require("account", "warehouse", "database")
	require.Error(t, err)
	var missing ccerrors.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"database", "warehouse"}, missing.Fields)
}
