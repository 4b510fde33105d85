// Package plan lowers a parsed SQL AST into a logical operator tree —
// left-deep joins, predicate pushdown, and column pruning — and selects
// a join strategy per join node.
package plan

import "github.com/riverql/riverql/internal/expr"

// JoinKind is the join kind a JOIN clause names. The accepted subset is
// INNER and LEFT only.
type JoinKind int

const (
	Inner JoinKind = iota
	Left
)

func (k JoinKind) String() string {
	if k == Left {
		return "LEFT"
	}
	return "INNER"
}

// SelectItem is one SELECT-list entry: an expression and its optional
// alias (empty alias means "use the expression's canonical text").
type SelectItem struct {
	Expr  expr.Expr
	Alias string
}

// JoinClause is one `[INNER|LEFT] JOIN <table> ON <expr>` in the FROM
// clause, in source order.
type JoinClause struct {
	Kind  JoinKind
	Table string
	Alias string // defaults to Table if no AS given
	On    expr.Expr
}

// Query is the parsed SQL AST the planner consumes: a SELECT list, a
// FROM clause with zero or more joins, and an optional WHERE predicate.
// This is the boundary type a SQL front-end (internal/sqlfront) or a
// test fixture produces directly; parsing itself is treated as an
// external concern the planner doesn't need to know about.
type Query struct {
	Items []SelectItem
	From  string
	Alias string // defaults to From if no AS given
	Joins []JoinClause
	Where expr.Expr // nil if no WHERE
}
