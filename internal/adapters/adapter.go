// Package adapters turns a live database connection into a
// registry.Producer: each subpackage here (duckdb, sqlite, postgres,
// snowflake, trino, bigquery) opens a connection to its engine and wraps
// a query string, so a table registered against a remote source streams
// rows through the same Scan operator as a table backed by an in-memory
// slice. Adapters are stateless and thin, following the same
// per-engine split used elsewhere in this package (duckdb, trino, etc.):
// connecting retries a transient failure via ExecuteWithRetry/IsRetryable
// (retry.go) before the first query runs, but query execution itself is
// never silently retried — a failed query surfaces as
// errs.ErrProducerFailed immediately, never a partial or silently-empty
// result.
package adapters

import (
	"context"
	"database/sql"

	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/row"
)

// SQLProducer builds a registry.Producer that runs query against db every
// time it's invoked, streaming rows lazily one at a time instead of
// buffering the whole result set — this is what makes a table backed by
// a live database connection restartable (registry.Producer's contract)
// rather than a one-shot cursor. table is only used to label a failed
// query in the error it returns.
//
// Each invocation pings db through ExecuteWithRetry/DefaultRetryConfig
// before issuing query, since sql.Open never actually dials — the first
// real network round trip happens here, and it's the one place a
// transient connection failure (as IsRetryable classifies it) is worth
// retrying rather than failing a query outright.
func SQLProducer(table string, db *sql.DB, query string) registry.Producer {
	return func() (registry.RowIter, error) {
		ctx := context.Background()

		result := ExecuteWithRetry(ctx, DefaultRetryConfig(), func() error {
			return db.PingContext(ctx)
		})
		if !result.Success {
			return nil, errs.NewProducerFailed(table, &RetryableError{Result: result})
		}

		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			return nil, errs.NewProducerFailed(table, err)
		}
		columns, err := rows.Columns()
		if err != nil {
			rows.Close()
			return nil, errs.NewProducerFailed(table, err)
		}
		return &sqlRowIter{table: table, rows: rows, columns: columns}, nil
	}
}

type sqlRowIter struct {
	table   string
	rows    *sql.Rows
	columns []string
}

// Next scans the next row off the open cursor, closing it once exhausted.
func (it *sqlRowIter) Next() (row.Row, error) {
	if !it.rows.Next() {
		if err := it.rows.Err(); err != nil {
			return nil, errs.NewProducerFailed(it.table, err)
		}
		return nil, it.rows.Close()
	}

	values := make([]interface{}, len(it.columns))
	ptrs := make([]interface{}, len(it.columns))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := it.rows.Scan(ptrs...); err != nil {
		return nil, errs.NewProducerFailed(it.table, err)
	}

	out := make(row.Row, len(it.columns))
	for i, col := range it.columns {
		out[col] = normalize(values[i])
	}
	return out, nil
}

// normalize maps a database/sql driver value onto the engine's scalar
// set (row.Scalar): text columns commonly surface as []byte rather than
// string depending on the driver, and row.Compare/expr evaluation only
// know how to handle the latter.
func normalize(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
