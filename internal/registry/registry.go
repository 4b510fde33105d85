// Package registry implements the engine's source registry: binding a
// table name to a restartable producer plus optional ordered_by/filename
// metadata. Registration is eager; iteration is lazy.
package registry

import (
	"sync"

	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/row"
)

// RowIter is a restartable lazy sequence of unqualified rows, as yielded
// by one invocation of a Producer. Next returns (nil, nil) at end of
// sequence, matching the convention a prior internal ResultStream
// interface used.
type RowIter interface {
	Next() (row.Row, error)
}

// Producer is a nullary factory for a fresh RowIter. Invoking it again
// must start iteration from the beginning, independently of any prior
// partial consumption — this is the only contract the engine relies on.
type Producer func() (RowIter, error)

// SliceIter adapts a pre-built []row.Row into a RowIter, useful for tests
// and for small in-memory fixtures.
type SliceIter struct {
	rows []row.Row
	pos  int
}

func NewSliceIter(rows []row.Row) *SliceIter { return &SliceIter{rows: rows} }

func (s *SliceIter) Next() (row.Row, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

// SliceProducer builds a Producer that replays the same in-memory rows
// every time it's invoked.
func SliceProducer(rows []row.Row) Producer {
	return func() (RowIter, error) {
		return NewSliceIter(rows), nil
	}
}

// Option configures optional metadata on a registered table.
type Option func(*Entry)

// OrderedBy declares that the producer's output is non-descending on the
// given unqualified column, enabling sort-merge join selection.
func OrderedBy(column string) Option {
	return func(e *Entry) { e.OrderedBy = column }
}

// Filename attaches an opaque source locator consumed only by the
// memory-mapped join strategy.
func Filename(path string) Option {
	return func(e *Entry) { e.Filename = path }
}

// Entry is one registered table binding.
type Entry struct {
	Name      string
	Producer  Producer
	OrderedBy string // "" if not declared
	Filename  string // "" if not declared
}

// Registry is the engine's source registry. The zero value is not usable;
// construct with New. Safe for concurrent Register/Lookup calls, but the
// caller must externally serialize registration against concurrent
// Query calls on the same engine.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register associates a name with a restartable producer and optional
// metadata. Registration is idempotent: a second call for the same name
// overwrites the prior binding (last wins).
func (r *Registry) Register(name string, producer Producer, opts ...Option) {
	e := &Entry{Name: name, Producer: producer}
	for _, opt := range opts {
		opt(e)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[name] = e
}

// Lookup returns the registered entry for name, or ErrUnknownTable.
func (r *Registry) Lookup(name string) (*Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return nil, errs.NewUnknownTable(name)
	}
	return e, nil
}

// Names returns every registered table name, for catalog/CLI listing.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}
