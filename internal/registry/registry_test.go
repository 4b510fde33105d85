package registry

import (
	"testing"

	"github.com/riverql/riverql/internal/row"
)

func TestRegister_LookupReturnsBoundProducer(t *testing.T) {
	reg := New()
	reg.Register("users", SliceProducer([]row.Row{{"id": int64(1)}}), OrderedBy("id"), Filename("users.jsonl"))

	entry, err := reg.Lookup("users")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.OrderedBy != "id" || entry.Filename != "users.jsonl" {
		t.Fatalf("expected metadata to round-trip, got %+v", entry)
	}
}

func TestLookup_UnknownTableErrors(t *testing.T) {
	reg := New()
	if _, err := reg.Lookup("ghost"); err == nil {
		t.Fatal("expected an error for an unregistered table")
	}
}

func TestRegister_SecondCallOverwritesFirst(t *testing.T) {
	reg := New()
	reg.Register("t", SliceProducer([]row.Row{{"v": int64(1)}}))
	reg.Register("t", SliceProducer([]row.Row{{"v": int64(2)}}))

	entry, err := reg.Lookup("t")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	iter, err := entry.Producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r, _ := iter.Next()
	if r["v"] != int64(2) {
		t.Fatalf("expected the second registration to win, got %v", r)
	}
}

func TestProducer_IsRestartable(t *testing.T) {
	producer := SliceProducer([]row.Row{{"v": int64(1)}, {"v": int64(2)}})

	first, _ := producer()
	firstRow, _ := first.Next()

	second, _ := producer()
	secondRow, _ := second.Next()

	if firstRow["v"] != secondRow["v"] {
		t.Fatalf("expected two independent invocations to both start from the beginning, got %v and %v", firstRow, secondRow)
	}
}
