// Package engine is riverql's facade: Engine(use_polars, debug) plus
// Register/Query, mirroring the constructor and method names a caller
// driving this engine from end-to-end usage examples would expect.
// Query planning is internal/plan's job; internal/exec and internal/join
// do the actual pulling. This package's only responsibility is wiring
// those three together into a single pull chain per query, following
// the phase structure (plan, then build, then iterate) of a prior
// FederatedExecutor.Execute().
package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/riverql/riverql/internal/caps"
	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/exec"
	"github.com/riverql/riverql/internal/join"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/row"
)

// Logger is the smallest logging capability the engine needs from
// internal/observability: surfacing non-fatal warnings (e.g. ordering
// violations) in debug mode.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// Engine is the entry point a caller registers tables against and runs
// queries through.
type Engine struct {
	registry  *registry.Registry
	planner   *plan.Planner
	usePolars bool
	debug     bool
	logger    Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// UsePolars forces every join strategy selection to COLUMNAR, mirroring
// the Python original's use_polars constructor flag.
func UsePolars(v bool) Option { return func(e *Engine) { e.usePolars = v } }

// Debug enables ordering-violation warnings; Explain output is the same
// with or without it.
func Debug(v bool) Option { return func(e *Engine) { e.debug = v } }

// WithLogger attaches a Logger for debug-mode warnings; without one,
// warnings are silently discarded.
func WithLogger(l Logger) Option { return func(e *Engine) { e.logger = l } }

// allowMmap is always true: MMAP selection is already gated on the
// right table actually declaring Filename metadata, so there's no
// separate engine-level toggle to suppress it beyond that.
const allowMmap = true

// New constructs an Engine over a fresh, empty registry.
func New(opts ...Option) *Engine {
	e := &Engine{registry: registry.New()}
	for _, opt := range opts {
		opt(e)
	}
	e.planner = plan.New(e.registry, e.usePolars, allowMmap)
	return e
}

// Register binds name to producer plus optional ordered_by/filename
// metadata.
func (e *Engine) Register(name string, producer registry.Producer, opts ...registry.Option) {
	e.registry.Register(name, producer, opts...)
}

// Result is a live query's row stream.
type Result struct {
	stream exec.Stream
	ctx    context.Context
}

// Next returns the next output row, or (nil, nil) once exhausted.
func (r *Result) Next() (row.Row, error) { return r.stream.Next(r.ctx) }

// Close releases every resource the query's operator tree opened.
func (r *Result) Close() error { return r.stream.Close() }

// Query plans q and returns a lazily-pulled Result — no row is produced
// until the caller calls Next.
func (e *Engine) Query(q *plan.Query) (*Result, error) {
	node, err := e.planner.Plan(q)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	stream, err := e.build(ctx, node)
	if err != nil {
		return nil, err
	}
	return &Result{stream: stream, ctx: ctx}, nil
}

// Explain plans q and renders its operator tree without running it —
// the engine's EXPLAIN support. The rendered tree is followed by a capabilities
// section (internal/caps) naming, for every scanned table, which
// capability the planner had available when it chose each join's
// strategy.
func (e *Engine) Explain(q *plan.Query) (string, error) {
	node, err := e.planner.Plan(q)
	if err != nil {
		return "", err
	}
	return plan.Explain(node) + e.explainCapabilities(node), nil
}

func (e *Engine) explainCapabilities(node plan.Node) string {
	tables := scannedTables(node)
	if len(tables) == 0 {
		return ""
	}
	sort.Strings(tables)

	var b strings.Builder
	b.WriteString("Capabilities:\n")
	for _, table := range tables {
		entry, err := e.registry.Lookup(table)
		if err != nil {
			continue
		}
		tableCaps := caps.Of(entry).Slice()
		names := make([]string, len(tableCaps))
		for i, c := range tableCaps {
			names[i] = string(c)
		}
		sort.Strings(names)
		fmt.Fprintf(&b, "  %s: %s\n", table, strings.Join(names, ", "))
	}
	return b.String()
}

func scannedTables(node plan.Node) []string {
	var tables []string
	var walk func(plan.Node)
	walk = func(n plan.Node) {
		switch x := n.(type) {
		case *plan.ScanNode:
			tables = append(tables, x.Table)
		case *plan.FilterNode:
			walk(x.Child)
		case *plan.ProjectNode:
			walk(x.Child)
		case *plan.JoinNode:
			walk(x.Left)
			walk(x.Right)
		}
	}
	walk(node)
	return tables
}

func (e *Engine) build(ctx context.Context, node plan.Node) (exec.Stream, error) {
	switch n := node.(type) {
	case *plan.ScanNode:
		entry, err := e.registry.Lookup(n.Table)
		if err != nil {
			return nil, err
		}
		return exec.NewScan(n, entry, e.debug, e.warner())

	case *plan.FilterNode:
		child, err := e.build(ctx, n.Child)
		if err != nil {
			return nil, err
		}
		return exec.NewFilter(child, n.Predicate), nil

	case *plan.ProjectNode:
		child, err := e.build(ctx, n.Child)
		if err != nil {
			return nil, err
		}
		return exec.NewProject(child, n.Items), nil

	case *plan.JoinNode:
		left, err := e.build(ctx, n.Left)
		if err != nil {
			return nil, err
		}
		right, err := e.build(ctx, n.Right)
		if err != nil {
			return nil, err
		}
		return join.Build(ctx, n, left, right)

	default:
		return nil, errs.NewUnsupportedSyntax("unrecognized plan node")
	}
}

func (e *Engine) warner() exec.Warner {
	if !e.debug || e.logger == nil {
		return nil
	}
	return e.logger
}
