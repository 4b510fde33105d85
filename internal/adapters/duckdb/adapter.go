// Package duckdb registers a table backed by an embedded DuckDB database
// as a registry.Producer: open a connection, wrap a query string, and
// stream rows lazily one at a time via adapters.SQLProducer instead of
// buffering the whole result set.
package duckdb

import (
	"database/sql"
	"fmt"

	_ "github.com/marcboeker/go-duckdb" // registers the "duckdb" driver

	"github.com/riverql/riverql/internal/adapters"
	"github.com/riverql/riverql/internal/registry"
)

// Config configures a DuckDB-backed table.
type Config struct {
	// DatabasePath is the path to the DuckDB database file, or
	// ":memory:" for an ephemeral in-process database.
	DatabasePath string
}

// Producer opens cfg.DatabasePath and returns a registry.Producer that
// streams the result of query for the given table each time it's invoked.
func Producer(table string, cfg Config, query string) (registry.Producer, error) {
	path := cfg.DatabasePath
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("duckdb: open %q: %w", path, err)
	}
	return adapters.SQLProducer(table, db, query), nil
}
