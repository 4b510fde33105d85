// Package expr defines the engine's expression tree and its pure
// evaluator over a row. Expressions are immutable once built; each
// references only columns resolvable in the scope of the plan node that
// owns it.
package expr

import "github.com/riverql/riverql/internal/row"

// Expr is the sealed set of expression node kinds. A type switch over
// the concrete type is the dispatch mechanism (no virtual Eval method),
// keeping dispatch out of the hot loop beyond the per-pull call — the
// evaluator itself lives in eval.go as a single free function.
type Expr interface {
	exprNode()
	// String renders the expression's canonical text, used as the
	// default output alias when a SELECT item has none.
	String() string
}

// ColumnRef references a column, optionally table-qualified. Table is
// empty for a bare reference; the planner resolves it to a qualified
// name during Plan().
type ColumnRef struct {
	Table  string // "" if bare
	Column string
}

func (ColumnRef) exprNode() {}
func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// Qualified reports whether the reference already carries a table.
func (c ColumnRef) Qualified() bool { return c.Table != "" }

// QualifiedName returns "table.column".
func (c ColumnRef) QualifiedName() string { return c.Table + "." + c.Column }

// Literal is a constant scalar: int64, float64, string, bool, or nil.
type Literal struct {
	Value row.Scalar
}

func (Literal) exprNode() {}
func (l Literal) String() string { return row.String(l.Value) }

// BinaryOp covers both arithmetic and comparison operators as a single
// variant.
type BinaryOp struct {
	Op          string // one of + - * / = <> < <= > >=
	Left, Right Expr
}

func (BinaryOp) exprNode() {}
func (b BinaryOp) String() string { return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")" }

// IsComparison reports whether Op is a comparison operator rather than
// arithmetic.
func (b BinaryOp) IsComparison() bool {
	switch b.Op {
	case "=", "<>", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

// LogicalOp is AND/OR/NOT over one or more children. NOT takes exactly
// one child; AND/OR take two or more (the parser builds binary nodes,
// while expr.And, used by the planner for join residuals, builds n-ary
// ones; the evaluator handles both).
type LogicalOp struct {
	Op       string // AND, OR, NOT
	Children []Expr
}

func (LogicalOp) exprNode() {}
func (l LogicalOp) String() string {
	if l.Op == "NOT" {
		return "NOT " + l.Children[0].String()
	}
	s := "(" + l.Children[0].String()
	for _, c := range l.Children[1:] {
		s += " " + l.Op + " " + c.String()
	}
	return s + ")"
}

// In is the IN (lit, lit, ...) predicate.
type In struct {
	Target   Expr
	Literals []Literal
}

func (In) exprNode() {}
func (i In) String() string {
	s := i.Target.String() + " IN ("
	for idx, l := range i.Literals {
		if idx > 0 {
			s += ", "
		}
		s += l.String()
	}
	return s + ")"
}

// IsNull is IS NULL / IS NOT NULL.
type IsNull struct {
	Target   Expr
	Negated  bool // true for IS NOT NULL
}

func (IsNull) exprNode() {}
func (n IsNull) String() string {
	if n.Negated {
		return n.Target.String() + " IS NOT NULL"
	}
	return n.Target.String() + " IS NULL"
}

// Alias pairs a projection expression with its output name, used by
// Project.
type Alias struct {
	Expr  Expr
	Label string // expression's canonical text if no explicit alias
}

// ColumnsOf returns the set of qualified column names an expression
// references, used for column pruning and predicate-pushdown scope
// checks. Bare ColumnRefs must already be resolved (Table != "") before
// calling this — the planner resolves columns before computing demand
// sets.
func ColumnsOf(e Expr) map[string]struct{} {
	out := make(map[string]struct{})
	collectColumns(e, out)
	return out
}

func collectColumns(e Expr, out map[string]struct{}) {
	switch n := e.(type) {
	case ColumnRef:
		out[n.QualifiedName()] = struct{}{}
	case Literal:
	case BinaryOp:
		collectColumns(n.Left, out)
		collectColumns(n.Right, out)
	case LogicalOp:
		for _, c := range n.Children {
			collectColumns(c, out)
		}
	case In:
		collectColumns(n.Target, out)
	case IsNull:
		collectColumns(n.Target, out)
	}
}

// SplitConjuncts flattens a top-level AND tree into its leaf conjuncts,
// used by predicate pushdown. A non-AND expression returns a
// single-element slice containing itself.
func SplitConjuncts(e Expr) []Expr {
	land, ok := e.(LogicalOp)
	if !ok || land.Op != "AND" {
		return []Expr{e}
	}
	var out []Expr
	for _, c := range land.Children {
		out = append(out, SplitConjuncts(c)...)
	}
	return out
}

// And rebuilds a conjunction from a non-empty slice of conjuncts.
func And(conjuncts []Expr) Expr {
	if len(conjuncts) == 1 {
		return conjuncts[0]
	}
	return LogicalOp{Op: "AND", Children: conjuncts}
}
