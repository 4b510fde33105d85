// Package observability provides structured query logging for riverql.
// A query's log record has fields for its query ID, the tables it
// touched, the join strategies the planner chose, how long it took, and
// its outcome (the CLI fills only the ID, duration, outcome and error) —
// the same fixed field set an earlier internal/observability/logger.go
// requires of every request, narrowed to what an embedded query engine
// (rather than a multi-tenant gateway) actually has to say about a
// query: no user/role/authorization-decision fields, since riverql has
// no caller identity to attribute a query to, and no database-backed
// persistence, since there's no audit store in scope.
package observability

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// QueryLogEntry is one query's log record.
type QueryLogEntry struct {
	QueryID    string
	Tables     []string
	Strategies []string // one entry per join node, e.g. "LOOKUP", "SORT_MERGE"
	Duration   time.Duration
	Outcome    string // "success" or "error"
	Error      string
}

// Logger is the capability riverql needs beyond engine.Logger's bare
// Warnf: a structured record of each completed query. Every Logger
// here also satisfies engine.Logger, so it can be passed straight to
// engine.WithLogger.
type Logger interface {
	LogQuery(entry QueryLogEntry)
	Warnf(format string, args ...interface{})
}

// LogrusLogger is the production Logger, backed by a logrus.Logger.
// Every QueryLogEntry becomes one structured log line via
// logrus.Fields; ordering-violation warnings (engine.Logger's Warnf)
// go out at WarnLevel.
type LogrusLogger struct {
	log *logrus.Logger
}

// NewLogrusLogger wraps l (construct with logrus.New() and configure
// its Formatter/Level/Out the way a caller wants) as a Logger.
func NewLogrusLogger(l *logrus.Logger) *LogrusLogger {
	return &LogrusLogger{log: l}
}

func (l *LogrusLogger) LogQuery(entry QueryLogEntry) {
	fields := logrus.Fields{
		"query_id":        entry.QueryID,
		"tables":          entry.Tables,
		"join_strategies": entry.Strategies,
		"duration_ms":     entry.Duration.Milliseconds(),
		"outcome":         entry.Outcome,
	}
	if entry.Error != "" {
		fields["error"] = entry.Error
		l.log.WithFields(fields).Error("query completed")
		return
	}
	l.log.WithFields(fields).Info("query completed")
}

func (l *LogrusLogger) Warnf(format string, args ...interface{}) {
	l.log.Warnf(format, args...)
}

// NoopLogger discards everything; used when a caller wants a Logger
// without configuring one.
type NoopLogger struct{}

func (NoopLogger) LogQuery(QueryLogEntry)                   {}
func (NoopLogger) Warnf(format string, args ...interface{}) {}

// MemoryLogger accumulates entries in memory instead of writing them
// anywhere — used by tests that need to assert on what got logged
// without parsing stdout.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []QueryLogEntry
	warns   []string
}

func NewMemoryLogger() *MemoryLogger { return &MemoryLogger{} }

func (l *MemoryLogger) LogQuery(entry QueryLogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
}

func (l *MemoryLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

// Entries returns a copy of every logged query, in call order.
func (l *MemoryLogger) Entries() []QueryLogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]QueryLogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Warnings returns every formatted warning recorded so far.
func (l *MemoryLogger) Warnings() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.warns))
	copy(out, l.warns)
	return out
}
