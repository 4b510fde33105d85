package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/riverql/riverql/internal/engine"
)

func TestBuildProducer_UnknownKind(t *testing.T) {
	_, err := buildProducer(sourceSpec{Table: "t", Kind: "carrier-pigeon"})
	if err == nil {
		t.Fatal("expected an error for an unrecognized source kind")
	}
}

func TestBuildProducer_JSONLRequiresPath(t *testing.T) {
	_, err := buildProducer(sourceSpec{Table: "users", Kind: "jsonl"})
	if err == nil {
		t.Fatal("expected an error when a jsonl source omits path")
	}
}

func TestBuildProducer_JSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.jsonl")
	if err := os.WriteFile(path, []byte(`{"id":1,"name":"ada"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	producer, err := buildProducer(sourceSpec{Table: "users", Kind: "jsonl", Path: path})
	if err != nil {
		t.Fatalf("buildProducer: %v", err)
	}

	iter, err := producer()
	if err != nil {
		t.Fatalf("producer(): %v", err)
	}
	row, err := iter.Next()
	if err != nil {
		t.Fatalf("iter.Next(): %v", err)
	}
	if row["name"] != "ada" {
		t.Fatalf("got row %v, want name=ada", row)
	}
}

func TestLoadSources_MissingTableName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	if err := os.WriteFile(path, []byte("sources:\n  - kind: jsonl\n    path: x.jsonl\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := engine.New()
	if err := loadSources(path, eng); err == nil {
		t.Fatal("expected an error for a sources entry missing a table name")
	}
}

func TestLoadSources_RegistersJSONLSource(t *testing.T) {
	dir := t.TempDir()
	dataPath := filepath.Join(dir, "users.jsonl")
	if err := os.WriteFile(dataPath, []byte(`{"id":1,"name":"ada"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sourcesPath := filepath.Join(dir, "sources.yaml")
	contents := "sources:\n  - table: users\n    kind: jsonl\n    path: " + dataPath + "\n"
	if err := os.WriteFile(sourcesPath, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := engine.New()
	if err := loadSources(sourcesPath, eng); err != nil {
		t.Fatalf("loadSources: %v", err)
	}
}
