package plan

import (
	"testing"

	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/row"
)

func newTestRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register("users", registry.SliceProducer([]row.Row{
		{"id": int64(1), "name": "Ada"},
		{"id": int64(2), "name": "Lin"},
	}))
	reg.Register("orders", registry.SliceProducer([]row.Row{
		{"user_id": int64(1), "product": "Widget", "price": int64(150)},
		{"user_id": int64(2), "product": "Gadget", "price": int64(50)},
	}))
	return reg
}

func TestPlan_BareColumnResolvesToUniqueTable(t *testing.T) {
	reg := newTestRegistry()
	p := New(reg, false, false)

	q := &Query{
		From: "users",
		Joins: []JoinClause{
			{Kind: Inner, Table: "orders", On: expr.BinaryOp{
				Op:   "=",
				Left: expr.ColumnRef{Table: "users", Column: "id"},
				Right: expr.ColumnRef{Table: "orders", Column: "user_id"},
			}},
		},
		Items: []SelectItem{{Expr: expr.ColumnRef{Column: "name"}}}, // bare: only users has "name"
	}

	plan, err := p.Plan(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	proj, ok := plan.(*ProjectNode)
	if !ok {
		t.Fatalf("expected *ProjectNode root, got %T", plan)
	}
	got := proj.Items[0].Expr.(expr.ColumnRef)
	if got.Table != "users" || got.Column != "name" {
		t.Fatalf("expected users.name, got %s", got.QualifiedName())
	}
}

func TestPlan_AmbiguousColumnErrors(t *testing.T) {
	reg := registry.New()
	reg.Register("a", registry.SliceProducer([]row.Row{{"id": int64(1), "x": int64(1)}}))
	reg.Register("b", registry.SliceProducer([]row.Row{{"id": int64(1), "y": int64(2)}}))
	p := New(reg, false, false)

	q := &Query{
		From:  "a",
		Joins: []JoinClause{{Kind: Inner, Table: "b", On: expr.Literal{Value: true}}},
		Items: []SelectItem{{Expr: expr.ColumnRef{Column: "id"}}},
	}

	_, err := p.Plan(q)
	if err == nil {
		t.Fatal("expected an ambiguous column error, got nil")
	}
}

func TestPlan_SingleTablePredicatePushesIntoScan(t *testing.T) {
	reg := newTestRegistry()
	p := New(reg, false, false)

	q := &Query{
		From:  "orders",
		Items: []SelectItem{{Expr: expr.ColumnRef{Column: "product"}}},
		Where: expr.BinaryOp{Op: ">", Left: expr.ColumnRef{Column: "price"}, Right: expr.Literal{Value: int64(100)}},
	}

	plan, err := p.Plan(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scan := plan.(*ProjectNode).Child.(*ScanNode)
	if scan.PushedPredicate == nil {
		t.Fatal("expected the WHERE predicate to push into the scan")
	}
}

func TestPlan_LeftJoinNullableSidePredicateStaysAboveJoin(t *testing.T) {
	reg := newTestRegistry()
	p := New(reg, false, false)

	q := &Query{
		From: "users",
		Joins: []JoinClause{
			{Kind: Left, Table: "orders", On: expr.BinaryOp{
				Op:   "=",
				Left: expr.ColumnRef{Table: "users", Column: "id"},
				Right: expr.ColumnRef{Table: "orders", Column: "user_id"},
			}},
		},
		Items: []SelectItem{{Expr: expr.ColumnRef{Table: "users", Column: "name"}}},
		Where: expr.BinaryOp{Op: ">", Left: expr.ColumnRef{Table: "orders", Column: "price"}, Right: expr.Literal{Value: int64(100)}},
	}

	plan, err := p.Plan(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filter, ok := plan.(*ProjectNode).Child.(*FilterNode)
	if !ok {
		t.Fatalf("expected a Filter above the LEFT join, got %T", plan.(*ProjectNode).Child)
	}
	join, ok := filter.Child.(*JoinNode)
	if !ok {
		t.Fatalf("expected the LEFT join under the filter, got %T", filter.Child)
	}
	rightScan := join.Right.(*ScanNode)
	if rightScan.PushedPredicate != nil {
		t.Fatal("a predicate on the nullable side of a LEFT join must not push into the scan")
	}
}

func TestPlan_ColumnPruningDropsUnusedScanColumns(t *testing.T) {
	reg := newTestRegistry()
	p := New(reg, false, false)

	q := &Query{
		From:  "orders",
		Items: []SelectItem{{Expr: expr.ColumnRef{Column: "product"}}},
	}

	plan, err := p.Plan(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	scan := plan.(*ProjectNode).Child.(*ScanNode)
	if _, ok := scan.ProjectedCols["orders.product"]; !ok {
		t.Fatal("expected orders.product to be demanded")
	}
	if _, ok := scan.ProjectedCols["orders.price"]; ok {
		t.Fatal("expected orders.price to be pruned away, it's never referenced")
	}
}

func TestPlan_SortMergeSelectedWhenBothSidesOrdered(t *testing.T) {
	reg := registry.New()
	reg.Register("users", registry.SliceProducer([]row.Row{{"id": int64(1), "name": "Ada"}}), registry.OrderedBy("id"))
	reg.Register("orders", registry.SliceProducer([]row.Row{{"user_id": int64(1), "product": "Widget"}}), registry.OrderedBy("user_id"))
	p := New(reg, false, false)

	q := &Query{
		From: "users",
		Joins: []JoinClause{
			{Kind: Inner, Table: "orders", On: expr.BinaryOp{
				Op:   "=",
				Left: expr.ColumnRef{Table: "users", Column: "id"},
				Right: expr.ColumnRef{Table: "orders", Column: "user_id"},
			}},
		},
		Items: []SelectItem{{Expr: expr.ColumnRef{Table: "users", Column: "name"}}},
	}

	plan, err := p.Plan(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	join := plan.(*ProjectNode).Child.(*JoinNode)
	if join.Strategy != SortMerge {
		t.Fatalf("expected SORT_MERGE, got %s", join.Strategy)
	}
}

func TestPlan_UsePolarsForcesColumnar(t *testing.T) {
	reg := newTestRegistry()
	p := New(reg, true, false)

	q := &Query{
		From: "users",
		Joins: []JoinClause{
			{Kind: Inner, Table: "orders", On: expr.BinaryOp{
				Op:   "=",
				Left: expr.ColumnRef{Table: "users", Column: "id"},
				Right: expr.ColumnRef{Table: "orders", Column: "user_id"},
			}},
		},
		Items: []SelectItem{{Expr: expr.ColumnRef{Table: "users", Column: "name"}}},
	}

	plan, err := p.Plan(q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	join := plan.(*ProjectNode).Child.(*JoinNode)
	if join.Strategy != Columnar {
		t.Fatalf("expected COLUMNAR, got %s", join.Strategy)
	}
}
