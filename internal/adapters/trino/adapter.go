// Package trino registers a table backed by a Trino coordinator as a
// registry.Producer: build a DSN, apply connection-pool defaults, and
// stream rows lazily via adapters.SQLProducer.
package trino

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/trinodb/trino-go-client/trino" // registers the "trino" driver

	"github.com/riverql/riverql/internal/adapters"
	"github.com/riverql/riverql/internal/registry"
)

// Config configures a Trino-backed table.
type Config struct {
	Host    string
	Port    int
	Catalog string
	Schema  string
	User    string
	SSLMode string // "", "disable", "require"

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c Config) withDefaults() Config {
	if c.User == "" {
		c.User = "riverql"
	}
	if c.Catalog == "" {
		c.Catalog = "memory"
	}
	if c.Schema == "" {
		c.Schema = "default"
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	return c
}

func (c Config) dsn() string {
	scheme := "http"
	if c.SSLMode == "require" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s@%s:%d?catalog=%s&schema=%s",
		scheme, c.User, c.Host, c.Port, c.Catalog, c.Schema)
}

// Producer opens a connection described by cfg and returns a
// registry.Producer that streams the result of query for the given
// table each time it's invoked.
func Producer(table string, cfg Config, query string) (registry.Producer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("trino: host is required")
	}
	cfg = cfg.withDefaults()

	db, err := sql.Open("trino", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("trino: open connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return adapters.SQLProducer(table, db, query), nil
}
