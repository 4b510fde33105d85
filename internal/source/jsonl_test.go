package source

import (
	"os"
	"path/filepath"
	"testing"
)

func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	contents := ""
	for _, l := range lines {
		contents += l + "\n"
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestJSONLines_YieldsEachRowInOrder(t *testing.T) {
	path := writeJSONL(t, `{"id":1,"name":"a"}`, `{"id":2,"name":"b"}`)
	producer := JSONLines("users", path)

	iter, err := producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := iter.Next()
	if err != nil || first["id"] != float64(1) {
		t.Fatalf("unexpected first row: %v, %v", first, err)
	}
	second, err := iter.Next()
	if err != nil || second["name"] != "b" {
		t.Fatalf("unexpected second row: %v, %v", second, err)
	}
	end, err := iter.Next()
	if err != nil || end != nil {
		t.Fatalf("expected (nil, nil) at end, got %v, %v", end, err)
	}
}

func TestJSONLines_IsRestartable(t *testing.T) {
	path := writeJSONL(t, `{"id":1}`)
	producer := JSONLines("users", path)

	first, err := producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := first.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, err := producer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row, err := second.Next()
	if err != nil || row["id"] != float64(1) {
		t.Fatalf("expected a fresh iteration to replay from the start, got %v, %v", row, err)
	}
}

func TestJSONLines_MissingFileErrors(t *testing.T) {
	producer := JSONLines("users", "/nonexistent/path.jsonl")
	if _, err := producer(); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestJSONLines_SkipsBlankLines(t *testing.T) {
	path := writeJSONL(t, `{"id":1}`, "", `{"id":2}`)
	producer := JSONLines("users", path)
	iter, _ := producer()

	count := 0
	for {
		r, err := iter.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r == nil {
			break
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 rows, got %d", count)
	}
}
