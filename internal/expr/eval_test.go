package expr

import (
	"testing"

	"github.com/riverql/riverql/internal/row"
)

func TestEval_ArithmeticNullPropagation(t *testing.T) {
	r := row.Row{"t.a": int64(5)}
	e := BinaryOp{Op: "+", Left: ColumnRef{Table: "t", Column: "a"}, Right: ColumnRef{Table: "t", Column: "missing"}}

	got := Eval(e, r)

	if got != nil {
		t.Fatalf("expected nil from arithmetic with a missing operand, got %v", got)
	}
}

func TestEval_DivisionByZeroYieldsNull(t *testing.T) {
	e := BinaryOp{Op: "/", Left: Literal{Value: int64(10)}, Right: Literal{Value: int64(0)}}

	got := Eval(e, row.Row{})

	if got != nil {
		t.Fatalf("division by zero must yield null, got %v", got)
	}
}

func TestEval_AndThreeValuedLogic(t *testing.T) {
	tests := []struct {
		name   string
		left   row.Scalar
		right  row.Scalar
		expect row.Scalar
	}{
		{"false-and-null-is-false", false, nil, false},
		{"true-and-null-is-null", true, nil, nil},
		{"true-and-true-is-true", true, true, true},
		{"null-and-null-is-null", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := row.Row{"t.l": tt.left, "t.r": tt.right}
			e := LogicalOp{Op: "AND", Children: []Expr{
				ColumnRef{Table: "t", Column: "l"},
				ColumnRef{Table: "t", Column: "r"},
			}}

			got := Eval(e, r)

			if got != tt.expect {
				t.Fatalf("AND(%v, %v) = %v, want %v", tt.left, tt.right, got, tt.expect)
			}
		})
	}
}

func TestEval_InMatchesListedLiteral(t *testing.T) {
	r := row.Row{"t.c": "Electronics"}
	e := In{
		Target:   ColumnRef{Table: "t", Column: "c"},
		Literals: []Literal{{Value: "Audio"}, {Value: "Electronics"}},
	}

	got := Eval(e, r)

	if got != true {
		t.Fatalf("expected true, got %v", got)
	}
}

func TestEval_IsNull(t *testing.T) {
	r := row.Row{"t.a": nil}
	e := IsNull{Target: ColumnRef{Table: "t", Column: "a"}}

	if got := Eval(e, r); got != true {
		t.Fatalf("expected IS NULL to be true on a null column, got %v", got)
	}

	e.Negated = true
	if got := Eval(e, r); got != false {
		t.Fatalf("expected IS NOT NULL to be false on a null column, got %v", got)
	}
}

func TestKeep_NullAndFalseBothDropRow(t *testing.T) {
	if Keep(Literal{Value: nil}, row.Row{}) {
		t.Fatal("a null predicate must not keep the row")
	}
	if Keep(Literal{Value: false}, row.Row{}) {
		t.Fatal("a false predicate must not keep the row")
	}
	if !Keep(Literal{Value: true}, row.Row{}) {
		t.Fatal("a true predicate must keep the row")
	}
}

func TestSplitConjuncts(t *testing.T) {
	e := LogicalOp{Op: "AND", Children: []Expr{
		LogicalOp{Op: "AND", Children: []Expr{Literal{Value: true}, Literal{Value: false}}},
		Literal{Value: int64(1)},
	}}

	got := SplitConjuncts(e)

	if len(got) != 3 {
		t.Fatalf("expected 3 flattened conjuncts, got %d", len(got))
	}
}
