package engine

import (
	"testing"

	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/row"
)

func newFixtureEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(opts...)
	e.Register("users", registry.SliceProducer([]row.Row{
		{"id": int64(1), "name": "Ada"},
		{"id": int64(2), "name": "Lin"},
		{"id": int64(3), "name": "Nia"},
	}))
	e.Register("orders", registry.SliceProducer([]row.Row{
		{"user_id": int64(1), "product": "Widget"},
		{"user_id": int64(1), "product": "Gizmo"},
		{"user_id": int64(2), "product": "Gadget"},
	}))
	return e
}

func drainAll(t *testing.T, res *Result) []row.Row {
	t.Helper()
	var out []row.Row
	for {
		r, err := res.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r == nil {
			return out
		}
		out = append(out, r)
	}
}

func TestEngine_InnerJoinReturnsOnlyMatchedRows(t *testing.T) {
	e := newFixtureEngine(t)

	q := &plan.Query{
		From: "users",
		Joins: []plan.JoinClause{
			{Kind: plan.Inner, Table: "orders", On: expr.BinaryOp{
				Op:    "=",
				Left:  expr.ColumnRef{Table: "users", Column: "id"},
				Right: expr.ColumnRef{Table: "orders", Column: "user_id"},
			}},
		},
		Items: []plan.SelectItem{
			{Expr: expr.ColumnRef{Table: "users", Column: "name"}, Alias: "name"},
			{Expr: expr.ColumnRef{Table: "orders", Column: "product"}, Alias: "product"},
		},
	}

	res, err := e.Query(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer res.Close()

	rows := drainAll(t, res)
	if len(rows) != 3 {
		t.Fatalf("expected 3 matched rows (Ada x2, Lin x1), got %d: %v", len(rows), rows)
	}
	for _, r := range rows {
		if r["name"] == "Nia" {
			t.Fatal("Nia has no orders and must not appear in an INNER join")
		}
	}
}

func TestEngine_LeftJoinPreservesUnmatchedRows(t *testing.T) {
	e := newFixtureEngine(t)

	q := &plan.Query{
		From: "users",
		Joins: []plan.JoinClause{
			{Kind: plan.Left, Table: "orders", On: expr.BinaryOp{
				Op:    "=",
				Left:  expr.ColumnRef{Table: "users", Column: "id"},
				Right: expr.ColumnRef{Table: "orders", Column: "user_id"},
			}},
		},
		Items: []plan.SelectItem{
			{Expr: expr.ColumnRef{Table: "users", Column: "name"}, Alias: "name"},
			{Expr: expr.ColumnRef{Table: "orders", Column: "product"}, Alias: "product"},
		},
	}

	res, err := e.Query(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer res.Close()

	rows := drainAll(t, res)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows (Ada x2, Lin x1, Nia x1 unmatched), got %d: %v", len(rows), rows)
	}

	var sawNia bool
	for _, r := range rows {
		if r["name"] == "Nia" {
			sawNia = true
			if r["product"] != nil {
				t.Fatalf("Nia's unmatched row must have a null product, got %v", r["product"])
			}
		}
	}
	if !sawNia {
		t.Fatal("expected Nia to appear once with a null product")
	}
}

func TestEngine_WhereFiltersAfterJoin(t *testing.T) {
	e := newFixtureEngine(t)

	q := &plan.Query{
		From: "users",
		Joins: []plan.JoinClause{
			{Kind: plan.Inner, Table: "orders", On: expr.BinaryOp{
				Op:    "=",
				Left:  expr.ColumnRef{Table: "users", Column: "id"},
				Right: expr.ColumnRef{Table: "orders", Column: "user_id"},
			}},
		},
		Items: []plan.SelectItem{{Expr: expr.ColumnRef{Table: "orders", Column: "product"}, Alias: "product"}},
		Where: expr.BinaryOp{Op: "=", Left: expr.ColumnRef{Table: "orders", Column: "product"}, Right: expr.Literal{Value: "Gadget"}},
	}

	res, err := e.Query(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer res.Close()

	rows := drainAll(t, res)
	if len(rows) != 1 || rows[0]["product"] != "Gadget" {
		t.Fatalf("expected exactly one Gadget row, got %v", rows)
	}
}

func TestEngine_UnknownTableErrors(t *testing.T) {
	e := New()
	q := &plan.Query{From: "ghost", Items: []plan.SelectItem{{Expr: expr.ColumnRef{Column: "x"}}}}

	if _, err := e.Query(q); err == nil {
		t.Fatal("expected an error querying an unregistered table")
	}
}
