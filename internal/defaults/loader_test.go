package defaults_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/cloudconduit/internal/defaults"
	"github.com/systmms/cloudconduit/internal/profile"
)

func writeDefaultsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAbsentFile(t *testing.T) {
	t.Parallel()

	doc, err := defaults.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	_, ok := doc.Get(profile.Snowflake, "account")
	assert.False(t, ok)
}

func TestLoadEmptyFile(t *testing.T) {
	t.Parallel()

	doc, err := defaults.Load(writeDefaultsFile(t, ""))
	require.NoError(t, err)
	_, ok := doc.Get(profile.Snowflake, "account")
	assert.False(t, ok)
}

func TestLoadValidDocument(t *testing.T) {
	t.Parallel()

	path := writeDefaultsFile(t, `
snowflake:
  account: acme-prod
  warehouse: COMPUTE_WH
  database: ANALYTICS
databricks:
  server_hostname: dbc.cloud.databricks.com
  catalog: main
s3:
  region: eu-west-1
`)

	doc, err := defaults.Load(path)
	require.NoError(t, err)

	account, ok := doc.Get(profile.Snowflake, "account")
	require.True(t, ok)
	assert.Equal(t, "acme-prod", account)

	catalog, ok := doc.Get(profile.Databricks, "catalog")
	require.True(t, ok)
	assert.Equal(t, "main", catalog)

	region, ok := doc.Get(profile.S3, "region")
	require.True(t, ok)
	assert.Equal(t, "eu-west-1", region)

	_, ok = doc.Get(profile.Snowflake, "schema")
	assert.False(t, ok)
}

// Keys in the file are normalized the same way as every other source, so
// alias spellings land on the canonical key.
func TestLoadNormalizesKeys(t *testing.T) {
	t.Parallel()

	path := writeDefaultsFile(t, `
s3:
  region_name: us-west-2
snowflake:
  username: svc_etl
`)

	doc, err := defaults.Load(path)
	require.NoError(t, err)

	region, ok := doc.Get(profile.S3, "region")
	require.True(t, ok)
	assert.Equal(t, "us-west-2", region)

	user, ok := doc.Get(profile.Snowflake, "user")
	require.True(t, ok)
	assert.Equal(t, "svc_etl", user)
}

func TestLoadScalarCoercion(t *testing.T) {
	t.Parallel()

	path := writeDefaultsFile(t, `
snowflake:
  account: 12345
  database: null
`)

	doc, err := defaults.Load(path)
	require.NoError(t, err)

	account, ok := doc.Get(profile.Snowflake, "account")
	require.True(t, ok)
	assert.Equal(t, "12345", account)

	// Explicit null means unset, not the string "null".
	_, ok = doc.Get(profile.Snowflake, "database")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "invalid_yaml",
			content: "snowflake:\n  account: [unclosed",
		},
		{
			name:    "unknown_profile_section",
			content: "redshift:\n  cluster: main\n",
		},
		{
			name:    "unknown_key",
			content: "snowflake:\n  cluster: main\n",
		},
		{
			name:    "section_not_a_mapping",
			content: "snowflake: just-a-string\n",
		},
		{
			name:    "nested_value",
			content: "snowflake:\n  account:\n    nested: true\n",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := defaults.Load(writeDefaultsFile(t, tt.content))
			require.Error(t, err)
		})
	}
}

// The loader accepts credential-shaped keys; excluding them from
// resolution is the engine's job, not the parser's.
func TestLoadToleratesCredentialKeys(t *testing.T) {
	t.Parallel()

	path := writeDefaultsFile(t, `
snowflake:
  password: should-not-be-here
`)

	doc, err := defaults.Load(path)
	require.NoError(t, err)

	pw, ok := doc.Get(profile.Snowflake, "password")
	require.True(t, ok)
	assert.Equal(t, "should-not-be-here", pw)
}

func TestStoreLoadOnce(t *testing.T) {
	t.Parallel()

	path := writeDefaultsFile(t, "snowflake:\n  account: first\n")
	store := defaults.NewStore(path)

	account, ok := store.Get(profile.Snowflake, "account")
	require.True(t, ok)
	assert.Equal(t, "first", account)

	// Rewriting the file after first load must not change the result.
	require.NoError(t, os.WriteFile(path, []byte("snowflake:\n  account: second\n"), 0o600))

	account, ok = store.Get(profile.Snowflake, "account")
	require.True(t, ok)
	assert.Equal(t, "first", account)
}

func TestStoreStickyError(t *testing.T) {
	t.Parallel()

	path := writeDefaultsFile(t, "snowflake:\n  account: [broken\n")
	store := defaults.NewStore(path)

	_, err := store.Load()
	require.Error(t, err)

	// Fixing the file afterwards does not clear the sticky error.
	require.NoError(t, os.WriteFile(path, []byte("snowflake:\n  account: fixed\n"), 0o600))
	_, err = store.Load()
	require.Error(t, err)

	// A broken store behaves as empty for lookups.
	_, ok := store.Get(profile.Snowflake, "account")
	assert.False(t, ok)
}
