// Package sqlfront turns SQL text into the plan-facing query AST
// (plan.Query). It is the thin adapter that sits in front of the
// planner — the planner itself only ever consumes a pre-built Query,
// but a real repository needs something that produces one from SQL a
// caller actually typed.
//
// Grounded on a prior internal/sql/parser.go: same parser
// (dolthub/vitess's sqlparser fork), same shape of rejection (detect
// the unsupported construct up front and return a stable,
// human-readable error rather than a raw parser panic message).
package sqlfront

import (
	"fmt"
	"strings"

	"github.com/dolthub/vitess/go/vt/sqlparser"

	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// Parse parses a single SELECT statement into a plan.Query. Only a
// narrow subset is accepted: one FROM table, zero or
// more INNER/LEFT JOINs whose ON clause is any supported expression
// (its column-equality conjuncts become join keys, the rest a
// residual), a WHERE clause built from the expression grammar
// internal/expr supports, and a SELECT list of such expressions (no
// *). Aggregates, GROUP BY, HAVING, ORDER BY, LIMIT, subqueries, set
// operations, and anything that isn't a SELECT are rejected with errs.ErrUnsupportedSyntax,
// mirroring how that parser rejects DDL/SHOW/SET and vendor
// hints before ever reaching plan construction.
func Parse(sql string) (*plan.Query, error) {
	sql = strings.TrimSpace(sql)
	if sql == "" {
		return nil, errs.NewUnsupportedSyntax("empty query")
	}

	stmts, err := sqlparser.SplitStatementToPieces(sql)
	if err != nil {
		return nil, errs.NewUnsupportedSyntax(fmt.Sprintf("invalid SQL: %v", err))
	}
	if len(stmts) > 1 {
		return nil, errs.NewUnsupportedSyntax("multiple statements in one query")
	}

	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, errs.NewUnsupportedSyntax(fmt.Sprintf("invalid SQL syntax: %v", err))
	}

	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errs.NewUnsupportedSyntax("only SELECT statements are supported")
	}

	return convertSelect(sel)
}

func convertSelect(sel *sqlparser.Select) (*plan.Query, error) {
	if sel.With != nil {
		return nil, errs.NewUnsupportedSyntax("WITH (CTEs)")
	}
	if len(sel.GroupBy) > 0 {
		return nil, errs.NewUnsupportedSyntax("GROUP BY")
	}
	if sel.Having != nil {
		return nil, errs.NewUnsupportedSyntax("HAVING")
	}
	if len(sel.OrderBy) > 0 {
		return nil, errs.NewUnsupportedSyntax("ORDER BY")
	}
	if sel.Limit != nil {
		return nil, errs.NewUnsupportedSyntax("LIMIT")
	}
	if sel.Distinct {
		return nil, errs.NewUnsupportedSyntax("DISTINCT")
	}
	if len(sel.From) != 1 {
		return nil, errs.NewUnsupportedSyntax("exactly one FROM table expression is required")
	}

	q := &plan.Query{}

	from, joins, err := convertTableExpr(sel.From[0])
	if err != nil {
		return nil, err
	}
	q.From = from.table
	q.Alias = from.alias
	q.Joins = joins

	items, err := convertSelectExprs(sel.SelectExprs)
	if err != nil {
		return nil, err
	}
	q.Items = items

	if sel.Where != nil {
		where, err := convertExpr(sel.Where.Expr)
		if err != nil {
			return nil, err
		}
		q.Where = where
	}

	return q, nil
}

type tableRef struct {
	table, alias string
}

// convertTableExpr unwraps a FROM clause's single TableExpr into its
// base table plus the chain of JOINs hung off it. riverql's join tree
// is always left-deep, so nested JoinTableExprs are flattened
// left-to-right into plan.JoinClause's source order.
func convertTableExpr(te sqlparser.TableExpr) (tableRef, []plan.JoinClause, error) {
	switch t := te.(type) {
	case *sqlparser.AliasedTableExpr:
		ref, err := aliasedTable(t)
		return ref, nil, err

	case *sqlparser.JoinTableExpr:
		kind, err := joinKind(t.Join)
		if err != nil {
			return tableRef{}, nil, err
		}
		base, joins, err := convertTableExpr(t.LeftExpr)
		if err != nil {
			return tableRef{}, nil, err
		}
		rightAliased, ok := t.RightExpr.(*sqlparser.AliasedTableExpr)
		if !ok {
			return tableRef{}, nil, errs.NewUnsupportedSyntax("joined table must be a plain table reference, not a subquery or nested join")
		}
		rightRef, err := aliasedTable(rightAliased)
		if err != nil {
			return tableRef{}, nil, err
		}
		if t.Condition.On == nil {
			return tableRef{}, nil, errs.NewUnsupportedSyntax("JOIN without an ON clause")
		}
		on, err := convertExpr(t.Condition.On)
		if err != nil {
			return tableRef{}, nil, err
		}
		joins = append(joins, plan.JoinClause{Kind: kind, Table: rightRef.table, Alias: rightRef.alias, On: on})
		return base, joins, nil

	case *sqlparser.ParenTableExpr:
		return tableRef{}, nil, errs.NewUnsupportedSyntax("parenthesized FROM expressions")

	default:
		return tableRef{}, nil, errs.NewUnsupportedSyntax("subqueries in FROM")
	}
}

func aliasedTable(t *sqlparser.AliasedTableExpr) (tableRef, error) {
	tn, ok := t.Expr.(sqlparser.TableName)
	if !ok {
		return tableRef{}, errs.NewUnsupportedSyntax("subquery in FROM")
	}
	name := tn.Name.String()
	alias := name
	if !t.As.IsEmpty() {
		alias = t.As.String()
	}
	return tableRef{table: name, alias: alias}, nil
}

func joinKind(join string) (plan.JoinKind, error) {
	switch strings.ToLower(join) {
	case sqlparser.JoinStr, sqlparser.StraightJoinStr:
		return plan.Inner, nil
	case sqlparser.LeftJoinStr:
		return plan.Left, nil
	default:
		return 0, errs.NewUnsupportedSyntax(fmt.Sprintf("%s JOIN", join))
	}
}

func convertSelectExprs(exprs sqlparser.SelectExprs) ([]plan.SelectItem, error) {
	var items []plan.SelectItem
	for _, se := range exprs {
		aliased, ok := se.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, errs.NewUnsupportedSyntax("SELECT * / table.*")
		}
		e, err := convertExpr(aliased.Expr)
		if err != nil {
			return nil, err
		}
		alias := e.String()
		if !aliased.As.IsEmpty() {
			alias = aliased.As.String()
		}
		items = append(items, plan.SelectItem{Expr: e, Alias: alias})
	}
	return items, nil
}

// convertExpr translates a vitess expression node into internal/expr's
// tree. Only the operators internal/expr knows about have a translation;
// every other construct (subqueries, function calls, CASE, window functions)
// surfaces errs.ErrUnsupportedSyntax here rather than reaching the
// planner half-converted.
func convertExpr(e sqlparser.Expr) (expr.Expr, error) {
	switch n := e.(type) {
	case *sqlparser.ColName:
		table := ""
		if !n.Qualifier.Name.IsEmpty() {
			table = n.Qualifier.Name.String()
		}
		return expr.ColumnRef{Table: table, Column: n.Name.String()}, nil

	case *sqlparser.SQLVal:
		return convertLiteral(n)

	case sqlparser.BoolVal:
		return expr.Literal{Value: bool(n)}, nil

	case *sqlparser.NullVal:
		return expr.Literal{Value: nil}, nil

	case *sqlparser.ParenExpr:
		return convertExpr(n.Expr)

	case *sqlparser.AndExpr:
		left, err := convertExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return expr.LogicalOp{Op: "AND", Children: []expr.Expr{left, right}}, nil

	case *sqlparser.OrExpr:
		left, err := convertExpr(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := convertExpr(n.Right)
		if err != nil {
			return nil, err
		}
		return expr.LogicalOp{Op: "OR", Children: []expr.Expr{left, right}}, nil

	case *sqlparser.NotExpr:
		inner, err := convertExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		return expr.LogicalOp{Op: "NOT", Children: []expr.Expr{inner}}, nil

	case *sqlparser.ComparisonExpr:
		return convertComparison(n)

	case *sqlparser.IsExpr:
		target, err := convertExpr(n.Expr)
		if err != nil {
			return nil, err
		}
		switch n.Operator {
		case sqlparser.IsNullStr:
			return expr.IsNull{Target: target}, nil
		case sqlparser.IsNotNullStr:
			return expr.IsNull{Target: target, Negated: true}, nil
		default:
			return nil, errs.NewUnsupportedSyntax("IS " + n.Operator)
		}

	case *sqlparser.BinaryExpr:
		return convertArithmetic(n)

	default:
		return nil, errs.NewUnsupportedSyntax(fmt.Sprintf("expression of type %T", e))
	}
}

func convertComparison(n *sqlparser.ComparisonExpr) (expr.Expr, error) {
	if n.Operator == sqlparser.InStr || n.Operator == sqlparser.NotInStr {
		return convertIn(n)
	}

	left, err := convertExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := convertExpr(n.Right)
	if err != nil {
		return nil, err
	}

	op, err := comparisonOp(n.Operator)
	if err != nil {
		return nil, err
	}
	return expr.BinaryOp{Op: op, Left: left, Right: right}, nil
}

func comparisonOp(op string) (string, error) {
	switch op {
	case sqlparser.EqualStr:
		return "=", nil
	case sqlparser.NotEqualStr:
		return "<>", nil
	case sqlparser.LessThanStr:
		return "<", nil
	case sqlparser.LessEqualStr:
		return "<=", nil
	case sqlparser.GreaterThanStr:
		return ">", nil
	case sqlparser.GreaterEqualStr:
		return ">=", nil
	default:
		return "", errs.NewUnsupportedSyntax(op)
	}
}

func convertIn(n *sqlparser.ComparisonExpr) (expr.Expr, error) {
	target, err := convertExpr(n.Left)
	if err != nil {
		return nil, err
	}
	tuple, ok := n.Right.(sqlparser.ValTuple)
	if !ok {
		return nil, errs.NewUnsupportedSyntax("IN with a non-literal list (subquery)")
	}
	var lits []expr.Literal
	for _, v := range tuple {
		e, err := convertExpr(v)
		if err != nil {
			return nil, err
		}
		lit, ok := e.(expr.Literal)
		if !ok {
			return nil, errs.NewUnsupportedSyntax("IN list must contain only literals")
		}
		lits = append(lits, lit)
	}
	in := expr.In{Target: target, Literals: lits}
	if n.Operator == sqlparser.NotInStr {
		return expr.LogicalOp{Op: "NOT", Children: []expr.Expr{in}}, nil
	}
	return in, nil
}

func convertArithmetic(n *sqlparser.BinaryExpr) (expr.Expr, error) {
	left, err := convertExpr(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := convertExpr(n.Right)
	if err != nil {
		return nil, err
	}
	var op string
	switch n.Operator {
	case sqlparser.PlusStr:
		op = "+"
	case sqlparser.MinusStr:
		op = "-"
	case sqlparser.MultStr:
		op = "*"
	case sqlparser.DivStr:
		op = "/"
	default:
		return nil, errs.NewUnsupportedSyntax("arithmetic operator " + n.Operator)
	}
	return expr.BinaryOp{Op: op, Left: left, Right: right}, nil
}

func convertLiteral(v *sqlparser.SQLVal) (expr.Expr, error) {
	var scalar row.Scalar
	switch v.Type {
	case sqlparser.StrVal:
		scalar = string(v.Val)
	case sqlparser.IntVal:
		var i int64
		if _, err := fmt.Sscanf(string(v.Val), "%d", &i); err != nil {
			return nil, errs.NewUnsupportedSyntax("malformed integer literal " + string(v.Val))
		}
		scalar = i
	case sqlparser.FloatVal:
		var f float64
		if _, err := fmt.Sscanf(string(v.Val), "%g", &f); err != nil {
			return nil, errs.NewUnsupportedSyntax("malformed float literal " + string(v.Val))
		}
		scalar = f
	default:
		return nil, errs.NewUnsupportedSyntax("literal of unsupported type")
	}
	return expr.Literal{Value: scalar}, nil
}
