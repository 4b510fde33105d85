package join

import (
	"context"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/riverql/riverql/internal/exec"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// columnarStream is the engine's COLUMNAR join (the use_polars path):
// the right side is drained and laid out as one Arrow array per column,
// and a Go map from join key to row index is built from the drained rows
// with keyOf. The left side is not buffered: it streams through and is
// probed row by row, the same build/probe shape as LOOKUP. The key index
// is not read off the Arrow arrays. No prior analog exists in the
// originating codebase (it delegates columnar work to DuckDB/Trino over
// the wire and never holds Arrow batches itself); built around
// apache/arrow-go/v18.
type columnarStream struct {
	left     exec.Stream
	batch    *arrowBatch
	index    map[string][]int // join key -> row indices into batch
	kind     plan.JoinKind
	keys     []plan.KeyPair
	residual residualEvaluator
	rightNil row.Row

	pendingLeft row.Row
	matchIdx    []int
	matchPos    int
	matchedAny  bool
}

// arrowBatch is a minimal columnar buffer: one arrow.Array per column,
// built once by draining a Stream, with a name->index map so columns
// can be located by their qualified row key.
type arrowBatch struct {
	cols    map[string]arrow.Array
	numRows int
	mem     memory.Allocator
}

// buildArrowBatch drains s and lays its rows out column-by-column. Rows
// may vary in which columns they carry (the engine's row model has no
// fixed schema); missing values are recorded as null in that column's
// builder.
func buildArrowBatch(ctx context.Context, s exec.Stream) (*arrowBatch, []row.Row, error) {
	rows, err := drain(ctx, s)
	if err != nil {
		return nil, nil, err
	}

	mem := memory.NewGoAllocator()
	colNames := columnUnion(rows)
	builders := make(map[string]array.Builder, len(colNames))
	for name, typ := range colNames {
		builders[name] = newBuilder(mem, typ)
	}

	for _, r := range rows {
		for name, b := range builders {
			appendValue(b, r[name])
		}
	}

	cols := make(map[string]arrow.Array, len(builders))
	for name, b := range builders {
		cols[name] = b.NewArray()
	}

	return &arrowBatch{cols: cols, numRows: len(rows), mem: mem}, rows, nil
}

// columnType is the small subset of scalar kinds the engine's row model
// produces; columnUnion infers one per column from whichever row first
// carries a non-null value for it (defaulting to string if every row
// left it null, since an all-null column's type can't be observed).
type columnType int

const (
	typeString columnType = iota
	typeInt64
	typeFloat64
	typeBool
)

func columnUnion(rows []row.Row) map[string]columnType {
	out := make(map[string]columnType)
	observed := make(map[string]bool)
	for _, r := range rows {
		for name, v := range r {
			if observed[name] {
				continue
			}
			if v == nil {
				if _, seen := out[name]; !seen {
					out[name] = typeString
				}
				continue
			}
			observed[name] = true
			switch v.(type) {
			case int64, int:
				out[name] = typeInt64
			case float64, float32:
				out[name] = typeFloat64
			case bool:
				out[name] = typeBool
			default:
				out[name] = typeString
			}
		}
	}
	return out
}

func newBuilder(mem memory.Allocator, t columnType) array.Builder {
	switch t {
	case typeInt64:
		return array.NewInt64Builder(mem)
	case typeFloat64:
		return array.NewFloat64Builder(mem)
	case typeBool:
		return array.NewBooleanBuilder(mem)
	default:
		return array.NewStringBuilder(mem)
	}
}

func appendValue(b array.Builder, v row.Scalar) {
	if v == nil {
		b.AppendNull()
		return
	}
	switch builder := b.(type) {
	case *array.Int64Builder:
		switch n := v.(type) {
		case int64:
			builder.Append(n)
		case int:
			builder.Append(int64(n))
		default:
			builder.AppendNull()
		}
	case *array.Float64Builder:
		switch n := v.(type) {
		case float64:
			builder.Append(n)
		case float32:
			builder.Append(float64(n))
		default:
			builder.AppendNull()
		}
	case *array.BooleanBuilder:
		if n, ok := v.(bool); ok {
			builder.Append(n)
		} else {
			builder.AppendNull()
		}
	case *array.StringBuilder:
		builder.Append(row.String(v))
	}
}

// rowAt materializes batch row i back into a row.Row, for merging into
// the engine's output once a match is found.
func (b *arrowBatch) rowAt(i int) row.Row {
	out := make(row.Row, len(b.cols))
	for name, col := range b.cols {
		out[name] = valueAt(col, i)
	}
	return out
}

func valueAt(col arrow.Array, i int) row.Scalar {
	if col.IsNull(i) {
		return nil
	}
	switch c := col.(type) {
	case *array.Int64:
		return c.Value(i)
	case *array.Float64:
		return c.Value(i)
	case *array.Boolean:
		return c.Value(i)
	case *array.String:
		return c.Value(i)
	default:
		return nil
	}
}

// NewColumnar buffers right into an Arrow batch, indexes it by join
// key, and returns a Stream that probes it with left's rows.
func NewColumnar(ctx context.Context, n *plan.JoinNode, left, right exec.Stream, residual residualEvaluator) (exec.Stream, error) {
	batch, rows, err := buildArrowBatch(ctx, right)
	if err != nil {
		return nil, err
	}

	index := make(map[string][]int, batch.numRows)
	for i, r := range rows {
		k, ok := keyOf(r, n.Keys, rightSide)
		if !ok {
			continue
		}
		index[k] = append(index[k], i)
	}

	return &columnarStream{
		left:     left,
		batch:    batch,
		index:    index,
		kind:     n.Kind,
		keys:     n.Keys,
		residual: residual,
		rightNil: rightNullShell(rows),
	}, nil
}

func (s *columnarStream) Next(ctx context.Context) (row.Row, error) {
	for {
		if s.matchPos < len(s.matchIdx) {
			merged := row.Merge(s.pendingLeft, s.batch.rowAt(s.matchIdx[s.matchPos]))
			s.matchPos++
			if s.residual == nil || s.residual(merged) {
				s.matchedAny = true
				return merged, nil
			}
			continue
		}

		// Every match for pendingLeft has been tried. If the equi-join
		// keys matched but the residual never held for any of them, a
		// LEFT join still surfaces the left row once, padded with nulls.
		if s.pendingLeft != nil {
			pendingLeft := s.pendingLeft
			matchedAny := s.matchedAny
			s.pendingLeft = nil
			if !matchedAny && s.kind == plan.Left {
				return row.Merge(pendingLeft, s.rightNil), nil
			}
		}

		left, err := s.left.Next(ctx)
		if err != nil {
			return nil, err
		}
		if left == nil {
			return nil, nil
		}

		key, ok := keyOf(left, s.keys, leftSide)
		var matches []int
		if ok {
			matches = s.index[key]
		}

		if len(matches) == 0 {
			if s.kind == plan.Left {
				return row.Merge(left, s.rightNil), nil
			}
			continue
		}

		s.pendingLeft = left
		s.matchIdx = matches
		s.matchPos = 0
		s.matchedAny = false
	}
}

func (s *columnarStream) Close() error { return s.left.Close() }
