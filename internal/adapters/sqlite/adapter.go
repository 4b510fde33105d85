// Package sqlite registers a table backed by a SQLite database file as a
// registry.Producer, following the same adapters.SQLProducer shape as
// internal/adapters/duckdb — the pure-Go modernc.org/sqlite driver needs
// no cgo, which is why this module pulls it in over mattn/go-sqlite3.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/riverql/riverql/internal/adapters"
	"github.com/riverql/riverql/internal/registry"
)

// Config configures a SQLite-backed table.
type Config struct {
	// Path is the filesystem path to the SQLite database file.
	Path string
}

// Producer opens cfg.Path and returns a registry.Producer that streams
// the result of query for the given table each time it's invoked.
func Producer(table string, cfg Config, query string) (registry.Producer, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", cfg.Path, err)
	}
	return adapters.SQLProducer(table, db, query), nil
}
