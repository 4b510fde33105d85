// Package bigquery registers a table backed by a Google BigQuery dataset
// as a registry.Producer. BigQuery's client SDK doesn't speak
// database/sql, so unlike the other adapters this package implements
// registry.RowIter directly over *bigquery.RowIterator rather than going
// through adapters.SQLProducer.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/row"
)

// Config configures a BigQuery-backed table.
type Config struct {
	ProjectID       string
	CredentialsJSON string
	Location        string
	DefaultDataset  string
}

func (c Config) validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("bigquery: project_id is required")
	}
	return nil
}

// Producer opens a client described by cfg and returns a
// registry.Producer that streams the result of query for the given
// table each time it's invoked.
func Producer(table string, cfg Config, query string) (registry.Producer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return func() (registry.RowIter, error) {
		ctx := context.Background()
		var opts []option.ClientOption
		if cfg.CredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		}
		client, err := bigquery.NewClient(ctx, cfg.ProjectID, opts...)
		if err != nil {
			return nil, errs.NewProducerFailed(table, fmt.Errorf("create client: %w", err))
		}

		q := client.Query(query)
		if cfg.DefaultDataset != "" {
			q.DefaultDatasetID = cfg.DefaultDataset
		}
		if cfg.Location != "" {
			q.Location = cfg.Location
		}

		it, err := q.Read(ctx)
		if err != nil {
			client.Close()
			return nil, errs.NewProducerFailed(table, err)
		}

		columns := make([]string, len(it.Schema))
		for i, field := range it.Schema {
			columns[i] = field.Name
		}

		return &rowIter{table: table, client: client, it: it, columns: columns}, nil
	}, nil
}

type rowIter struct {
	table   string
	client  *bigquery.Client
	it      *bigquery.RowIterator
	columns []string
}

func (r *rowIter) Next() (row.Row, error) {
	var values []bigquery.Value
	if err := r.it.Next(&values); err != nil {
		r.client.Close()
		if err == iterator.Done {
			return nil, nil
		}
		return nil, errs.NewProducerFailed(r.table, err)
	}

	out := make(row.Row, len(r.columns))
	for i, col := range r.columns {
		if i < len(values) {
			out[col] = values[i]
		}
	}
	return out, nil
}
