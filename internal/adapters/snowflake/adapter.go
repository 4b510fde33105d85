// Package snowflake registers a table backed by a Snowflake warehouse as
// a registry.Producer: build a DSN from account/warehouse/role, open a
// connection, and stream rows lazily via adapters.SQLProducer instead
// of buffering a whole result set per query.
package snowflake

import (
	"database/sql"
	"fmt"

	_ "github.com/snowflakedb/gosnowflake" // registers the "snowflake" driver

	"github.com/riverql/riverql/internal/adapters"
	"github.com/riverql/riverql/internal/registry"
)

// Config configures a Snowflake-backed table.
type Config struct {
	Account   string
	User      string
	Password  string
	Database  string
	Schema    string
	Warehouse string
	Role      string
}

func (c Config) validate() error {
	if c.Account == "" {
		return fmt.Errorf("snowflake: account is required")
	}
	if c.User == "" {
		return fmt.Errorf("snowflake: user is required")
	}
	if c.Warehouse == "" {
		return fmt.Errorf("snowflake: warehouse is required")
	}
	return nil
}

func (c Config) dsn() string {
	dsn := fmt.Sprintf("%s:%s@%s/%s/%s?warehouse=%s",
		c.User, c.Password, c.Account, c.Database, c.Schema, c.Warehouse)
	if c.Role != "" {
		dsn += fmt.Sprintf("&role=%s", c.Role)
	}
	return dsn
}

// Producer opens a connection described by cfg and returns a
// registry.Producer that streams the result of query for the given
// table each time it's invoked.
func Producer(table string, cfg Config, query string) (registry.Producer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("snowflake", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("snowflake: open connection: %w", err)
	}
	return adapters.SQLProducer(table, db, query), nil
}
