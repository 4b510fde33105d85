package plan

import "github.com/riverql/riverql/internal/expr"

// Strategy names a join executor. The planner chooses one per JoinNode;
// internal/join supplies the corresponding operator.
type Strategy int

const (
	Lookup Strategy = iota
	SortMerge
	Columnar
	Mmap
)

func (s Strategy) String() string {
	switch s {
	case SortMerge:
		return "SORT_MERGE"
	case Columnar:
		return "COLUMNAR"
	case Mmap:
		return "MMAP"
	default:
		return "LOOKUP"
	}
}

// Node is the sealed set of logical plan operators: Scan, Join, Filter,
// Project. Columns reports the set of qualified column names the node's
// output rows carry — used during predicate pushdown and column pruning,
// not by the executor (which just streams rows).
type Node interface {
	planNode()
	Columns() map[string]struct{}
}

// ScanNode reads rows from one registered table. PushedPredicate, when
// non-nil, is evaluated against each raw row before it leaves the scan.
// ProjectedCols, filled in during column pruning, is the subset of
// Schema this scan actually needs to emit; nil means "not yet pruned" —
// prune() always sets it before the plan is handed to the executor.
type ScanNode struct {
	Table           string // registered table name
	Alias           string
	Schema          map[string]struct{} // full set of qualified columns this table is known to carry
	PushedPredicate expr.Expr
	ProjectedCols   map[string]struct{}
	OrderedBy       string // "" if the table carries no ordering metadata
	Filename        string // "" if the table carries no file-backed metadata
}

func (*ScanNode) planNode() {}
func (n *ScanNode) Columns() map[string]struct{} { return n.Schema }

// KeyPair is one equi-join column pair extracted from a JOIN's ON
// clause: left.Column = right.Column.
type KeyPair struct {
	Left, Right string // qualified column names
}

// JoinNode combines two children. Keys holds the equi-join column pairs
// extracted from the ON clause (every join algorithm here keys off
// equality); Residual holds whatever part of the ON clause wasn't a
// plain equality (evaluated after key-matching, against the merged row).
type JoinNode struct {
	Kind     JoinKind
	Left     Node
	Right    Node
	Keys     []KeyPair
	Residual expr.Expr // nil if the ON clause was pure equi-join
	Strategy Strategy
}

func (*JoinNode) planNode() {}
func (n *JoinNode) Columns() map[string]struct{} {
	out := make(map[string]struct{}, len(n.Left.Columns())+len(n.Right.Columns()))
	for c := range n.Left.Columns() {
		out[c] = struct{}{}
	}
	for c := range n.Right.Columns() {
		out[c] = struct{}{}
	}
	return out
}

// FilterNode applies a predicate spanning more than one table, or one
// blocked from pushing below a LEFT join's nullable side, to its child's
// output — attached above the join that blocked it.
type FilterNode struct {
	Child     Node
	Predicate expr.Expr
}

func (*FilterNode) planNode() {}
func (n *FilterNode) Columns() map[string]struct{} { return n.Child.Columns() }

// ProjectNode evaluates a list of aliased expressions against its
// child's rows, producing the final output row shape. It is always the
// plan root.
type ProjectNode struct {
	Child Node
	Items []SelectItem
}

func (*ProjectNode) planNode() {}
func (n *ProjectNode) Columns() map[string]struct{} {
	out := make(map[string]struct{}, len(n.Items))
	for _, it := range n.Items {
		out[it.Alias] = struct{}{}
	}
	return out
}
