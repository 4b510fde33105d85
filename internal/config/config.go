// Package config loads riverql's CLI/engine configuration, grounded on
// a viper.Viper with defaults
// set up front, a config file read from a conventional path (optional —
// absence is not an error), then environment-variable overrides, then
// an mapstructure unmarshal into a typed struct.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is riverql's CLI/engine configuration.
type Config struct {
	// Engine controls the query engine itself: strategy selection and
	// debug-mode ordering diagnostics (engine.UsePolars/engine.Debug).
	Engine EngineConfig `mapstructure:"engine"`

	// Logging controls the structured query logger's verbosity/format.
	Logging LoggingConfig `mapstructure:"logging"`

	// Adapters holds connection settings for each source adapter. The
	// CLI does not read them: it binds tables from its --sources file.
	Adapters AdaptersConfig `mapstructure:"adapters"`
}

// EngineConfig mirrors engine.Option's constructor flags.
type EngineConfig struct {
	UsePolars bool `mapstructure:"usePolars"`
	Debug     bool `mapstructure:"debug"`
}

// LoggingConfig controls the observability.LogrusLogger.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
}

// AdaptersConfig groups one connection-settings struct per source
// adapter in internal/adapters.
type AdaptersConfig struct {
	DuckDB     DuckDBConfig     `mapstructure:"duckdb"`
	SQLite     SQLiteConfig     `mapstructure:"sqlite"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Snowflake  SnowflakeConfig  `mapstructure:"snowflake"`
	Trino      TrinoConfig      `mapstructure:"trino"`
	BigQuery   BigQueryConfig   `mapstructure:"bigquery"`
}

type DuckDBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Database string `mapstructure:"database"`
}

type SQLiteConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type PostgresConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type SnowflakeConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn"`
}

type TrinoConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	Catalog string `mapstructure:"catalog"`
}

type BigQueryConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"projectId"`
}

// DefaultConfig returns riverql's out-of-the-box configuration: no
// adapters enabled (a caller opts each one in explicitly), debug off,
// LOOKUP/SORT_MERGE/MMAP selection (no forced COLUMNAR), text logging
// at info level.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{UsePolars: false, Debug: false},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Adapters: AdaptersConfig{
			DuckDB:    DuckDBConfig{Database: ":memory:"},
			SQLite:    SQLiteConfig{Path: ":memory:"},
			Trino:     TrinoConfig{Host: "localhost", Port: 8080, Catalog: "hive"},
			BigQuery:  BigQueryConfig{},
			Postgres:  PostgresConfig{},
			Snowflake: SnowflakeConfig{},
		},
	}
}

// Load reads configuration from configPath (if given) or the default
// search path (~/.riverql/config.yaml, then ./config.yaml), applies
// RIVERQL_-prefixed environment overrides, and unmarshals into a
// Config seeded with DefaultConfig's values. A missing config file is
// not an error — riverql runs fine on defaults plus environment
// variables alone.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".riverql"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("RIVERQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: error reading config: %w", err)
		}
	}

	cfg := *DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: error parsing config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("engine.usePolars", d.Engine.UsePolars)
	v.SetDefault("engine.debug", d.Engine.Debug)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("adapters.duckdb.database", d.Adapters.DuckDB.Database)
	v.SetDefault("adapters.sqlite.path", d.Adapters.SQLite.Path)
	v.SetDefault("adapters.trino.host", d.Adapters.Trino.Host)
	v.SetDefault("adapters.trino.port", d.Adapters.Trino.Port)
	v.SetDefault("adapters.trino.catalog", d.Adapters.Trino.Catalog)
}
