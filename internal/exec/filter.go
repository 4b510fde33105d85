package exec

import (
	"context"

	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/row"
)

// filterStream drops rows for which predicate doesn't evaluate to true
// under three-valued Keep semantics: null and false both drop the row.
type filterStream struct {
	child     Stream
	predicate expr.Expr
}

func NewFilter(child Stream, predicate expr.Expr) Stream {
	return &filterStream{child: child, predicate: predicate}
}

func (f *filterStream) Next(ctx context.Context) (row.Row, error) {
	for {
		r, err := f.child.Next(ctx)
		if err != nil || r == nil {
			return r, err
		}
		if expr.Keep(f.predicate, r) {
			return r, nil
		}
	}
}

func (f *filterStream) Close() error { return f.child.Close() }
