package join

import (
	"context"
	"testing"

	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// sliceStream adapts a []row.Row into an exec.Stream for tests, without
// pulling in the registry/producer machinery.
type sliceStream struct {
	rows []row.Row
	pos  int
}

func (s *sliceStream) Next(ctx context.Context) (row.Row, error) {
	if s.pos >= len(s.rows) {
		return nil, nil
	}
	r := s.rows[s.pos]
	s.pos++
	return r, nil
}

func (s *sliceStream) Close() error { return nil }

func usersOrders() (*sliceStream, *sliceStream, []plan.KeyPair) {
	left := &sliceStream{rows: []row.Row{
		{"users.id": int64(1), "users.name": "Ada"},
		{"users.id": int64(2), "users.name": "Lin"},
		{"users.id": int64(3), "users.name": "Nia"},
	}}
	right := &sliceStream{rows: []row.Row{
		{"orders.user_id": int64(1), "orders.product": "Widget"},
		{"orders.user_id": int64(1), "orders.product": "Gizmo"},
		{"orders.user_id": int64(2), "orders.product": "Gadget"},
	}}
	return left, right, []plan.KeyPair{{Left: "users.id", Right: "orders.user_id"}}
}

func TestLookup_InnerJoinDropsUnmatched(t *testing.T) {
	left, right, keys := usersOrders()
	n := &plan.JoinNode{Kind: plan.Inner, Keys: keys}

	s, err := NewLookup(context.Background(), n, left, right, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []row.Row
	for {
		r, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r == nil {
			break
		}
		got = append(got, r)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 joined rows, got %d: %v", len(got), got)
	}
}

func TestLookup_LeftJoinPadsUnmatchedWithNulls(t *testing.T) {
	left, right, keys := usersOrders()
	n := &plan.JoinNode{Kind: plan.Left, Keys: keys}

	s, err := NewLookup(context.Background(), n, left, right, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var niaRows int
	for {
		r, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r == nil {
			break
		}
		if r["users.name"] == "Nia" {
			niaRows++
			if r["orders.product"] != nil {
				t.Fatalf("expected null orders.product for unmatched Nia, got %v", r["orders.product"])
			}
		}
	}
	if niaRows != 1 {
		t.Fatalf("expected Nia to appear exactly once, got %d", niaRows)
	}
}

func TestSortMerge_MatchesLookupOnOrderedInput(t *testing.T) {
	left := &sliceStream{rows: []row.Row{
		{"users.id": int64(1), "users.name": "Ada"},
		{"users.id": int64(2), "users.name": "Lin"},
	}}
	right := &sliceStream{rows: []row.Row{
		{"orders.user_id": int64(1), "orders.product": "Widget"},
		{"orders.user_id": int64(2), "orders.product": "Gadget"},
		{"orders.user_id": int64(2), "orders.product": "Gizmo"},
	}}
	keys := []plan.KeyPair{{Left: "users.id", Right: "orders.user_id"}}
	n := &plan.JoinNode{Kind: plan.Inner, Keys: keys}

	s := NewSortMerge(n, left, right, nil)

	var got []row.Row
	for {
		r, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r == nil {
			break
		}
		got = append(got, r)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 rows (1 for Ada, 2 for Lin), got %d: %v", len(got), got)
	}
}

func TestLookup_LeftJoinWithResidualEmitsUnmatchedRowOnce(t *testing.T) {
	// products LEFT JOIN reviews ON products.id = reviews.product_id AND
	// reviews.rating > 3 — every equi-match for product 1 fails the
	// residual, so product 1 must still surface exactly once, padded
	// with nulls rather than being dropped.
	left := &sliceStream{rows: []row.Row{
		{"products.id": int64(1), "products.name": "Widget"},
		{"products.id": int64(2), "products.name": "Gadget"},
	}}
	right := &sliceStream{rows: []row.Row{
		{"reviews.product_id": int64(1), "reviews.rating": int64(2)},
		{"reviews.product_id": int64(1), "reviews.rating": int64(3)},
		{"reviews.product_id": int64(2), "reviews.rating": int64(5)},
	}}
	keys := []plan.KeyPair{{Left: "products.id", Right: "reviews.product_id"}}
	n := &plan.JoinNode{Kind: plan.Left, Keys: keys}
	residual := func(merged row.Row) bool {
		rating, ok := merged["reviews.rating"].(int64)
		return ok && rating > 3
	}

	s, err := NewLookup(context.Background(), n, left, right, residual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []row.Row
	for {
		r, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r == nil {
			break
		}
		got = append(got, r)
	}

	var widgetRows, gadgetRows int
	for _, r := range got {
		switch r["products.name"] {
		case "Widget":
			widgetRows++
			if r["reviews.rating"] != nil {
				t.Fatalf("expected null reviews.rating for Widget, got %v", r["reviews.rating"])
			}
		case "Gadget":
			gadgetRows++
		}
	}
	if widgetRows != 1 {
		t.Fatalf("expected Widget to appear exactly once despite no residual match, got %d", widgetRows)
	}
	if gadgetRows != 1 {
		t.Fatalf("expected Gadget to appear exactly once, got %d", gadgetRows)
	}
}

func TestKeyOf_PromotesIntAndFloatToTheSameKey(t *testing.T) {
	keys := []plan.KeyPair{{Left: "a.k", Right: "b.k"}}

	intKey, ok := keyOf(row.Row{"a.k": int64(1)}, keys, leftSide)
	if !ok {
		t.Fatal("expected int64 key to encode successfully")
	}
	floatKey, ok := keyOf(row.Row{"b.k": float64(1)}, keys, rightSide)
	if !ok {
		t.Fatal("expected float64 key to encode successfully")
	}
	if intKey != floatKey {
		t.Fatalf("int64(1) and float64(1.0) must hash to the same join key, got %q vs %q", intKey, floatKey)
	}
}

func TestLookup_MatchesAcrossIntAndFloatJoinKeys(t *testing.T) {
	// The left side's key column happens to be int64 and the right
	// side's the same values as float64 - e.g. one producer decoded
	// JSON numbers while the other came from a typed column. row.Compare
	// treats these as equal, so LOOKUP must too.
	left := &sliceStream{rows: []row.Row{
		{"a.id": int64(1)},
	}}
	right := &sliceStream{rows: []row.Row{
		{"b.id": float64(1)},
	}}
	keys := []plan.KeyPair{{Left: "a.id", Right: "b.id"}}
	n := &plan.JoinNode{Kind: plan.Inner, Keys: keys}

	s, err := NewLookup(context.Background(), n, left, right, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, err := s.Next(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected int64(1) and float64(1) join keys to match")
	}
}

func TestSortMerge_NumericKeyOrderingIsNotLexicographic(t *testing.T) {
	// Regression guard: key comparison must use row.Compare on the real
	// scalar, not a string-encoded key — "9" would otherwise sort after
	// "10" lexicographically and break the merge's advance logic.
	left := &sliceStream{rows: []row.Row{
		{"a.k": int64(9)},
		{"a.k": int64(10)},
	}}
	right := &sliceStream{rows: []row.Row{
		{"b.k": int64(9)},
		{"b.k": int64(10)},
	}}
	keys := []plan.KeyPair{{Left: "a.k", Right: "b.k"}}
	n := &plan.JoinNode{Kind: plan.Inner, Keys: keys}

	s := NewSortMerge(n, left, right, nil)

	var got []row.Row
	for {
		r, err := s.Next(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r == nil {
			break
		}
		got = append(got, r)
	}

	if len(got) != 2 {
		t.Fatalf("expected both rows to match (9-9, 10-10), got %d: %v", len(got), got)
	}
}
