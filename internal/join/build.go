package join

import (
	"context"

	"github.com/riverql/riverql/internal/exec"
	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// Build dispatches to the join strategy internal/plan chose for n,
// wiring n's residual predicate — whatever part of its ON clause wasn't
// a plain equality — into every strategy the same way. left and right
// are already-built Streams for n's two children.
func Build(ctx context.Context, n *plan.JoinNode, left, right exec.Stream) (exec.Stream, error) {
	var residual residualEvaluator
	if n.Residual != nil {
		residual = func(merged row.Row) bool { return expr.Keep(n.Residual, merged) }
	}

	switch n.Strategy {
	case plan.SortMerge:
		return NewSortMerge(n, left, right, residual), nil
	case plan.Columnar:
		return NewColumnar(ctx, n, left, right, residual)
	case plan.Mmap:
		return NewMmap(ctx, n, left, right, residual)
	default:
		return NewLookup(ctx, n, left, right, residual)
	}
}
