// Package source provides the local-file registry.Producer used by the
// CLI for "jsonl" sources: a newline-delimited
// JSON file where each line is one unqualified row. Grounded on the
// registry's own registry.SliceProducer for the restartable-factory
// shape, generalized here to reopen and re-scan the file instead of
// replaying an in-memory slice.
package source

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/row"
)

// JSONLines builds a registry.Producer over the file at path: every
// invocation reopens the file and scans from the beginning, satisfying
// the Producer contract that repeated calls restart iteration
// independently of any prior partial consumption.
func JSONLines(table, path string) registry.Producer {
	return func() (registry.RowIter, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.NewProducerFailed(table, err)
		}
		return &jsonlIter{table: table, file: f, scanner: bufio.NewScanner(f)}, nil
	}
}

type jsonlIter struct {
	table   string
	file    *os.File
	scanner *bufio.Scanner
	done    bool
}

func (it *jsonlIter) Next() (row.Row, error) {
	if it.done {
		return nil, nil
	}
	for it.scanner.Scan() {
		line := it.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r row.Row
		if err := json.Unmarshal(line, &r); err != nil {
			it.file.Close()
			return nil, errs.NewProducerFailed(it.table, fmt.Errorf("decode line: %w", err))
		}
		return r, nil
	}
	if err := it.scanner.Err(); err != nil {
		it.file.Close()
		return nil, errs.NewProducerFailed(it.table, err)
	}
	it.done = true
	return nil, it.file.Close()
}
