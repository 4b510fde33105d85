package exec

import (
	"context"

	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// projectStream evaluates each SELECT-list expression against its
// child's rows, producing the engine's final output shape: a row keyed
// by each item's alias rather than by qualified source column.
type projectStream struct {
	child Stream
	items []plan.SelectItem
}

func NewProject(child Stream, items []plan.SelectItem) Stream {
	return &projectStream{child: child, items: items}
}

func (p *projectStream) Next(ctx context.Context) (row.Row, error) {
	r, err := p.child.Next(ctx)
	if err != nil || r == nil {
		return r, err
	}
	out := make(row.Row, len(p.items))
	for _, item := range p.items {
		out[item.Alias] = expr.Eval(item.Expr, r)
	}
	return out, nil
}

func (p *projectStream) Close() error { return p.child.Close() }
