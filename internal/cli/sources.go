package cli

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/riverql/riverql/internal/adapters/bigquery"
	"github.com/riverql/riverql/internal/adapters/duckdb"
	"github.com/riverql/riverql/internal/adapters/postgres"
	"github.com/riverql/riverql/internal/adapters/snowflake"
	"github.com/riverql/riverql/internal/adapters/sqlite"
	"github.com/riverql/riverql/internal/adapters/trino"
	"github.com/riverql/riverql/internal/engine"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/source"
)

// sourcesFile is the --sources YAML document: one entry per table the
// engine should know about, naming which producer backs it and any
// registry.Option metadata (ordered_by, filename) the planner can use
// to pick a faster join strategy.
type sourcesFile struct {
	Sources []sourceSpec `yaml:"sources"`
}

type sourceSpec struct {
	Table string `yaml:"table"`
	Kind  string `yaml:"kind"` // jsonl, duckdb, sqlite, postgres, snowflake, trino, bigquery

	// jsonl, sqlite
	Path string `yaml:"path"`

	// every SQL-backed kind
	Query string `yaml:"query"`

	// duckdb, snowflake; bigquery's default dataset
	Database string `yaml:"database"`

	// postgres
	DSN string `yaml:"dsn"`

	// snowflake (Schema also trino)
	Account   string `yaml:"account"`
	User      string `yaml:"user"`
	Password  string `yaml:"password"`
	Warehouse string `yaml:"warehouse"`
	Role      string `yaml:"role"`
	Schema    string `yaml:"schema"`

	// trino
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Catalog string `yaml:"catalog"`

	// bigquery
	ProjectID string `yaml:"projectId"`
	Location  string `yaml:"location"`

	// registry.Option metadata
	OrderedBy string `yaml:"ordered_by"`
	Filename  string `yaml:"filename"`
}

func loadSources(path string, eng *engine.Engine) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var f sourcesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse sources file: %w", err)
	}

	for _, s := range f.Sources {
		if s.Table == "" {
			return fmt.Errorf("sources file: entry missing table name")
		}
		producer, err := buildProducer(s)
		if err != nil {
			return fmt.Errorf("sources file: table %q: %w", s.Table, err)
		}

		var opts []registry.Option
		if s.OrderedBy != "" {
			opts = append(opts, registry.OrderedBy(s.OrderedBy))
		}
		if s.Filename != "" {
			opts = append(opts, registry.Filename(s.Filename))
		}
		eng.Register(s.Table, producer, opts...)
	}
	return nil
}

func buildProducer(s sourceSpec) (registry.Producer, error) {
	switch s.Kind {
	case "jsonl":
		if s.Path == "" {
			return nil, fmt.Errorf("jsonl source requires path")
		}
		return source.JSONLines(s.Table, s.Path), nil

	case "duckdb":
		return duckdb.Producer(s.Table, duckdb.Config{DatabasePath: s.Database}, s.Query)

	case "sqlite":
		return sqlite.Producer(s.Table, sqlite.Config{Path: s.Path}, s.Query)

	case "postgres":
		return postgres.Producer(s.Table, postgres.Config{DSN: s.DSN}, s.Query)

	case "snowflake":
		return snowflake.Producer(s.Table, snowflake.Config{
			Account:   s.Account,
			User:      s.User,
			Password:  s.Password,
			Database:  s.Database,
			Schema:    s.Schema,
			Warehouse: s.Warehouse,
			Role:      s.Role,
		}, s.Query)

	case "trino":
		return trino.Producer(s.Table, trino.Config{
			Host:    s.Host,
			Port:    s.Port,
			Catalog: s.Catalog,
			Schema:  s.Schema,
		}, s.Query)

	case "bigquery":
		return bigquery.Producer(s.Table, bigquery.Config{
			ProjectID:      s.ProjectID,
			Location:       s.Location,
			DefaultDataset: s.Database,
		}, s.Query)

	default:
		return nil, fmt.Errorf("unknown source kind %q", s.Kind)
	}
}
