package exec

import (
	"context"

	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/expr"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/registry"
	"github.com/riverql/riverql/internal/row"
)

// scanStream pulls raw rows from a registered producer, qualifies them
// under the table's alias, applies the pushed-down predicate, and
// narrows the output to ProjectedCols.
type scanStream struct {
	node     *plan.ScanNode
	iter     registry.RowIter
	debug    bool
	warner   Warner
	lastKey  row.Scalar
	haveLast bool
}

// NewScan opens node's producer and returns a Stream over it. debug
// enables ordering-violation warnings for tables declared ordered_by;
// warner receives them (pass nil to discard).
func NewScan(node *plan.ScanNode, entry *registry.Entry, debug bool, warner Warner) (Stream, error) {
	iter, err := entry.Producer()
	if err != nil {
		return nil, errs.NewProducerFailed(node.Table, err)
	}
	if warner == nil {
		warner = noopWarner{}
	}
	return &scanStream{node: node, iter: iter, debug: debug, warner: warner}, nil
}

func (s *scanStream) Next(ctx context.Context) (row.Row, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := s.iter.Next()
		if err != nil {
			return nil, errs.NewProducerFailed(s.node.Table, err)
		}
		if raw == nil {
			return nil, nil
		}

		qualified := row.Qualify(s.node.Alias, raw)

		if s.node.OrderedBy != "" {
			s.checkOrdering(raw[s.node.OrderedBy])
		}

		if s.node.PushedPredicate != nil && !expr.Keep(s.node.PushedPredicate, qualified) {
			continue
		}

		return narrow(qualified, s.node.ProjectedCols), nil
	}
}

// checkOrdering warns (never fails the stream) when a row's ordered_by
// value sorts before the previous row's — a tolerant treatment of
// ordering violations (see internal/errs.ErrOrderingViolation): the
// warning is only issued in debug mode, and the offending row is passed
// on unchanged.
func (s *scanStream) checkOrdering(key row.Scalar) {
	defer func() { s.lastKey, s.haveLast = key, true }()
	if !s.debug || !s.haveLast {
		return
	}
	cmp, defined := row.Compare(key, s.lastKey)
	if defined && cmp < 0 {
		s.warner.Warnf("%v", errs.NewOrderingViolation(s.node.Table, s.node.OrderedBy))
	}
}

func (s *scanStream) Close() error { return nil }

// narrow copies only cols out of r. A nil/empty cols set means "keep
// everything" (e.g. a query that demands no column of the table, or an
// unpruned scan in a test fixture).
func narrow(r row.Row, cols map[string]struct{}) row.Row {
	if len(cols) == 0 {
		return r
	}
	out := make(row.Row, len(cols))
	for c := range cols {
		out[c] = r[c]
	}
	return out
}
