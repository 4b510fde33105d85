// Package exec implements the engine's lazy pull operators — Scan,
// Filter, Project, and (via internal/join) the join strategies — over
// the logical plan internal/plan builds. Every operator is a Stream:
// calling Next again after the end of the data keeps returning (nil,
// nil), so callers never need a separate "has more" check.
package exec

import (
	"context"

	"github.com/riverql/riverql/internal/row"
)

// Stream is the engine's pull-based row source, grounded on the
// a prior internal ResultStream interface but narrowed to what a single-
// process streaming engine needs: Next and Close. Schema/EstimatedRows
// aren't meaningful here since rows are dynamically shaped and sources
// are arbitrary restartable producers with no size hint.
type Stream interface {
	// Next returns the next row, or (nil, nil) once the stream is
	// exhausted.
	Next(ctx context.Context) (row.Row, error)
	// Close releases any resources the stream holds open (file
	// handles, mmap regions, in-flight producers).
	Close() error
}

// Warner is the smallest logging capability a Stream needs: surfacing a
// non-fatal condition (e.g. an ordering violation) without depending on
// internal/observability's concrete logger type.
type Warner interface {
	Warnf(format string, args ...interface{})
}

// noopWarner discards every warning; used when the engine runs without
// debug mode enabled.
type noopWarner struct{}

func (noopWarner) Warnf(string, ...interface{}) {}
