package conduit

import (
	"github.com/systmms/cloudconduit/internal/errors"
)

// SnowflakeConfig is the fully resolved Snowflake connection
// configuration. Fields mirror the profile's canonical keys; empty
// fields resolved to absence.
type SnowflakeConfig struct {
	Account              string
	User                 string
	Warehouse            string
	Database             string
	Schema               string
	Password             string
	PrivateKeyPath       string
	PrivateKeyPassphrase string
	Authenticator        string

	resolved *ResolvedConfig
}

// Snowflake resolves the warehouse profile. An empty username uses the
// derived default principal; a non-empty one is used verbatim and also
// scopes secure-store lookups.
func (c *Conduit) Snowflake(username string, overrides map[string]string) (SnowflakeConfig, error) {
	r, err := c.ResolveAllAs(Snowflake, username, overrides)
	if err != nil {
		return SnowflakeConfig{}, err
	}
	cfg := SnowflakeConfig{resolved: r}
	cfg.Account, _ = r.Value("account")
	cfg.User, _ = r.Value("user")
	cfg.Warehouse, _ = r.Value("warehouse")
	cfg.Database, _ = r.Value("database")
	cfg.Schema, _ = r.Value("schema")
	cfg.Password, _ = r.Value("password")
	cfg.PrivateKeyPath, _ = r.Value("private_key_path")
	cfg.PrivateKeyPassphrase, _ = r.Value("private_key_passphrase")
	cfg.Authenticator, _ = r.Value("authenticator")
	return cfg, nil
}

// Resolved exposes the per-field origins for diagnostics.
func (c SnowflakeConfig) Resolved() *ResolvedConfig {
	return c.resolved
}

// Validate checks the required fields and that at least one
// authentication method is configured. All problems are reported at
// once.
func (c SnowflakeConfig) Validate() error {
	if err := c.resolved.Require("account", "user", "warehouse"); err != nil {
		return err
	}
	if c.Password == "" && c.PrivateKeyPath == "" && c.Authenticator == "" {
		return errors.UserError{
			Message:    "No Snowflake credential of any kind is present",
			Details:    "password, private_key_path, and authenticator all resolved to absence",
			Suggestion: "Store a password with 'cloudconduit credential set snowflake password', set SNOWFLAKE_PRIVATE_KEY_PATH, or configure SNOWFLAKE_AUTHENTICATOR for SSO",
		}
	}
	return nil
}

// DatabricksConfig is the fully resolved Databricks connection
// configuration.
type DatabricksConfig struct {
	ServerHostname string
	HTTPPath       string
	AccessToken    string
	Catalog        string
	Schema         string

	resolved *ResolvedConfig
}

// Databricks resolves the lakehouse profile.
func (c *Conduit) Databricks(overrides map[string]string) (DatabricksConfig, error) {
	r, err := c.ResolveAll(Databricks, overrides)
	if err != nil {
		return DatabricksConfig{}, err
	}
	cfg := DatabricksConfig{resolved: r}
	cfg.ServerHostname, _ = r.Value("server_hostname")
	cfg.HTTPPath, _ = r.Value("http_path")
	cfg.AccessToken, _ = r.Value("access_token")
	cfg.Catalog, _ = r.Value("catalog")
	cfg.Schema, _ = r.Value("schema")
	return cfg, nil
}

// Resolved exposes the per-field origins for diagnostics.
func (c DatabricksConfig) Resolved() *ResolvedConfig {
	return c.resolved
}

// Validate checks the required fields, reporting every absent one.
func (c DatabricksConfig) Validate() error {
	return c.resolved.Require("server_hostname", "http_path", "access_token")
}

// DefaultS3Region is used when no source supplies a region.
const DefaultS3Region = "us-east-1"

// S3Config is the fully resolved object-storage configuration.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string

	resolved *ResolvedConfig
}

// S3 resolves the object-storage profile. Region falls back to
// DefaultS3Region when absent from every source.
func (c *Conduit) S3(overrides map[string]string) (S3Config, error) {
	r, err := c.ResolveAll(S3, overrides)
	if err != nil {
		return S3Config{}, err
	}
	cfg := S3Config{resolved: r}
	cfg.AccessKeyID, _ = r.Value("access_key_id")
	cfg.SecretAccessKey, _ = r.Value("secret_access_key")
	cfg.SessionToken, _ = r.Value("session_token")
	cfg.Region, _ = r.Value("region")
	if cfg.Region == "" {
		cfg.Region = DefaultS3Region
	}
	return cfg, nil
}

// Resolved exposes the per-field origins for diagnostics.
func (c S3Config) Resolved() *ResolvedConfig {
	return c.resolved
}

// Validate rejects partial static credentials: an access key without
// its secret (or the reverse) can only fail downstream. A fully absent
// key pair is fine; the AWS SDK's own chain (shared profile, instance
// role) may still authenticate.
func (c S3Config) Validate() error {
	if c.AccessKeyID != "" && c.SecretAccessKey == "" {
		return errors.MissingFieldsError{Profile: string(S3), Fields: []string{"secret_access_key"}}
	}
	if c.AccessKeyID == "" && c.SecretAccessKey != "" {
		return errors.MissingFieldsError{Profile: string(S3), Fields: []string{"access_key_id"}}
	}
	return nil
}
