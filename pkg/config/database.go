// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/snowflakedb/gosnowflake"
)

// SnowflakeConfig holds Snowflake connection parameters
type SnowflakeConfig struct {
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Account       string `yaml:"account"`
	Warehouse     string `yaml:"warehouse"`
	Database      string `yaml:"database"`
	Schema        string `yaml:"schema"` // Default: PUBLIC
	Role          string `yaml:"role"`
	Authenticator string `yaml:"authenticator"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" split_words:"true"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" split_words:"true"`

	// Query timeout
	QueryTimeout time.Duration `yaml:"query_timeout" split_words:"true"`
	// Rows fetched per LIMIT/OFFSET page when reading a table
	BatchSize int `yaml:"batch_size" split_words:"true"`
}

// PostgresConfig holds PostgreSQL connection parameters
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	// Connection pool settings
	MaxOpenConns    int           `yaml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int           `yaml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" split_words:"true"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" split_words:"true"`

	// Statement timeout
	StatementTimeout time.Duration `yaml:"statement_timeout" split_words:"true"`
}

// DefaultSnowflakeConfig returns pool and timeout defaults; credentials stay empty
func DefaultSnowflakeConfig() SnowflakeConfig {
	return SnowflakeConfig{
		Schema:          "PUBLIC",
		Authenticator:   "snowflake",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: 10 * time.Minute,
		ConnMaxIdleTime: 5 * time.Minute,
		QueryTimeout:    5 * time.Minute,
		BatchSize:       10000,
	}
}

// DefaultPostgresConfig returns a local connection with pool defaults
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:             "localhost",
		Port:             5432,
		SSLMode:          "disable",
		MaxOpenConns:     25,
		MaxIdleConns:     10,
		ConnMaxLifetime:  30 * time.Minute,
		ConnMaxIdleTime:  10 * time.Minute,
		StatementTimeout: 5 * time.Minute,
	}
}

// Validate checks the fields a Snowflake connection cannot do without
func (c *SnowflakeConfig) Validate() error {
	var missing []string
	for name, v := range map[string]string{
		"SNOWFLAKE_USER":      c.User,
		"SNOWFLAKE_ACCOUNT":   c.Account,
		"SNOWFLAKE_WAREHOUSE": c.Warehouse,
		"SNOWFLAKE_DATABASE":  c.Database,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if c.Password == "" && c.AuthType() == gosnowflake.AuthTypeSnowflake {
		missing = append(missing, "SNOWFLAKE_PASSWORD")
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("snowflake configuration incomplete, set %s", strings.Join(missing, ", "))
	}
	return nil
}

// AuthType maps the configured authenticator name to the driver's type.
// Unknown names fall back to username and password.
func (c *SnowflakeConfig) AuthType() gosnowflake.AuthType {
	switch strings.ToLower(c.Authenticator) {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}

// Validate checks the fields a PostgreSQL connection cannot do without
func (c *PostgresConfig) Validate() error {
	if c.User == "" {
		return errors.New("POSTGRES_USER is required")
	}
	if c.Database == "" {
		return errors.New("POSTGRES_DATABASE is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid PostgreSQL port %d", c.Port)
	}
	return nil
}

// ConnectionString returns a formatted PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Database,
		c.SSLMode,
	)
}
