package plan

import (
	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/registry"
)

// Planner lowers a Query into an executable plan tree against a fixed
// source Registry, built on a Planner-with-injected-
// dependencies shape (a TableRegistry consulted to resolve and validate
// every table reference before a plan is handed back).
type Planner struct {
	Registry  *registry.Registry
	UsePolars bool // mirrors Engine(use_polars=...): forces every join to COLUMNAR
	AllowMmap bool // gates MMAP selection; false falls through to LOOKUP
}

func New(reg *registry.Registry, usePolars, allowMmap bool) *Planner {
	return &Planner{Registry: reg, UsePolars: usePolars, AllowMmap: allowMmap}
}

type tableRef struct {
	Alias string
	Table string
}

// Plan resolves, pushes down, prunes, and strategy-selects q against the
// planner's registry, returning the root of the executable plan tree
// (always a *ProjectNode).
func (p *Planner) Plan(q *Query) (Node, error) {
	refs := collectTableRefs(q)

	aliasSchemas := make(map[string]map[string]struct{}, len(refs))
	scans := make(map[string]*ScanNode, len(refs))
	cr := &columnResolver{aliasSchemas: aliasSchemas, aliasSet: make(map[string]struct{}, len(refs))}

	for _, ref := range refs {
		cr.aliasSet[ref.Alias] = struct{}{}

		entry, err := p.Registry.Lookup(ref.Table)
		if err != nil {
			return nil, err
		}
		schema, err := p.sampleSchema(entry)
		if err != nil {
			return nil, err
		}
		aliasSchemas[ref.Alias] = schema

		qualified := make(map[string]struct{}, len(schema))
		for col := range schema {
			qualified[ref.Alias+"."+col] = struct{}{}
		}
		scans[ref.Alias] = &ScanNode{
			Table:     ref.Table,
			Alias:     ref.Alias,
			Schema:    qualified,
			OrderedBy: entry.OrderedBy,
			Filename:  entry.Filename,
		}
	}

	root, err := p.buildJoinTree(q, scans, cr)
	if err != nil {
		return nil, err
	}

	if q.Where != nil {
		resolvedWhere, err := resolveExpr(q.Where, cr)
		if err != nil {
			return nil, err
		}
		for _, conjunct := range expr.SplitConjuncts(resolvedWhere) {
			root = push(root, conjunct, expr.ColumnsOf(conjunct))
		}
	}

	items := make([]SelectItem, len(q.Items))
	demand := make(map[string]struct{})
	for i, item := range q.Items {
		alias := item.Alias
		if alias == "" {
			alias = item.Expr.String()
		}
		resolved, err := resolveExpr(item.Expr, cr)
		if err != nil {
			return nil, err
		}
		items[i] = SelectItem{Expr: resolved, Alias: alias}
		for c := range expr.ColumnsOf(resolved) {
			demand[c] = struct{}{}
		}
	}

	prune(root, demand)
	assignStrategies(root, p.UsePolars, p.AllowMmap)

	return &ProjectNode{Child: root, Items: items}, nil
}

// collectTableRefs walks the FROM/JOIN clauses in source order, applying
// the "alias defaults to table name" rule.
func collectTableRefs(q *Query) []tableRef {
	alias := q.Alias
	if alias == "" {
		alias = q.From
	}
	refs := []tableRef{{Alias: alias, Table: q.From}}
	for _, j := range q.Joins {
		a := j.Alias
		if a == "" {
			a = j.Table
		}
		refs = append(refs, tableRef{Alias: a, Table: j.Table})
	}
	return refs
}

// buildJoinTree assembles the left-deep join tree in FROM/JOIN order,
// resolving each ON clause against the full query scope and splitting it
// into equi-join keys plus whatever residual the join strategies will
// check after matching.
func (p *Planner) buildJoinTree(q *Query, scans map[string]*ScanNode, cr *columnResolver) (Node, error) {
	firstAlias := q.Alias
	if firstAlias == "" {
		firstAlias = q.From
	}
	var root Node = scans[firstAlias]

	for _, j := range q.Joins {
		alias := j.Alias
		if alias == "" {
			alias = j.Table
		}
		resolvedOn, err := resolveExpr(j.On, cr)
		if err != nil {
			return nil, err
		}

		right := scans[alias]
		keys, residual := extractEquiJoin(resolvedOn, root.Columns(), right.Columns())

		kind := Inner
		if j.Kind == Left {
			kind = Left
		}
		root = &JoinNode{Kind: kind, Left: root, Right: right, Keys: keys, Residual: residual}
	}

	return root, nil
}

// sampleSchema peeks one row from a fresh instance of entry's producer
// to learn its row shape; it never consumes the iterator the engine will
// later use to actually execute the query (producers are restartable).
func (p *Planner) sampleSchema(entry *registry.Entry) (map[string]struct{}, error) {
	iter, err := entry.Producer()
	if err != nil {
		return nil, errs.NewProducerFailed(entry.Name, err)
	}
	r, err := iter.Next()
	if err != nil {
		return nil, errs.NewProducerFailed(entry.Name, err)
	}

	schema := make(map[string]struct{}, len(r))
	for col := range r {
		schema[col] = struct{}{}
	}

	if entry.OrderedBy != "" {
		if _, ok := schema[entry.OrderedBy]; !ok {
			return nil, errs.NewBadOrderedBy(entry.Name, entry.OrderedBy)
		}
	}

	return schema, nil
}
