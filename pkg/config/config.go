// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the application configuration.
// Leaf fields carry no envconfig tag, so they are read only under their
// section prefix (STORE_DSN, POSTGRES_USER) and never from bare names like USER.
type Config struct {
	Log   LogConfig   `yaml:"log" envconfig:"LOG"`
	Clean CleanConfig `yaml:"clean" envconfig:"CLEAN"`
	Store StoreConfig `yaml:"store" envconfig:"STORE"`

	// Number of violation codes reported by the violations command
	TopViolationCodes int `yaml:"top_violation_codes" envconfig:"TOP_VIOLATION_CODES"`

	// Source databases for ingest-table
	Postgres  PostgresConfig  `yaml:"postgres" envconfig:"POSTGRES"`
	Snowflake SnowflakeConfig `yaml:"snowflake" envconfig:"SNOWFLAKE"`
}

// LogConfig selects the logger level and encoding
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// CleanConfig controls how the cleaning pipeline runs
type CleanConfig struct {
	Parallel bool `yaml:"parallel"`
}

// StoreConfig points at the document store holding the collections
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite3 or pgx
	DSN    string `yaml:"dsn"`    // empty with pgx means connect through the postgres section
}

// Default returns the configuration used when nothing overrides it
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			Driver: "sqlite3",
			DSN:    "inspections.db",
		},
		TopViolationCodes: 14,
		Postgres:          DefaultPostgresConfig(),
		Snowflake:         DefaultSnowflakeConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file and the environment.
// A .env file in the working directory is loaded first when present.
// When path is empty, INSPECTIONS_CONFIG names the file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv("INSPECTIONS_CONFIG")
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Log.Format)
	}

	switch c.Store.Driver {
	case "sqlite3", "pgx":
	default:
		return fmt.Errorf("store driver must be sqlite3 or pgx, got %q", c.Store.Driver)
	}

	// pgx without a DSN uses the postgres section
	if c.Store.DSN == "" && c.Store.Driver != "pgx" {
		return errors.New("store DSN is required")
	}

	if c.TopViolationCodes < 0 {
		return errors.New("top violation codes cannot be negative")
	}

	return nil
}
