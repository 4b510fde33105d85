package join

import (
	"context"

	"github.com/riverql/riverql/internal/exec"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// lookupStream is the engine's LOOKUP (hash) join: it builds a hash
// index over the entire right side up front — O(|right|) memory — then
// streams the left side, probing the index for each row. Follows an
// earlier hashJoinStream build/probe state machine
// (internal/federation/join.go), adapted from a single unqualified key
// column to riverql's multi-column KeyPair list and qualified rows.
type lookupStream struct {
	left     exec.Stream
	index    map[string][]row.Row
	kind     plan.JoinKind
	keys     []plan.KeyPair
	residual residualEvaluator
	rightNil row.Row // all-null shell for the right side, built in NewLookup

	pendingLeft row.Row
	matches     []row.Row
	matchIdx    int
	matchedAny  bool
}

// residualEvaluator evaluates a join's residual predicate (the part of
// its ON clause that wasn't a plain equality) against a merged row.
type residualEvaluator func(merged row.Row) bool

// NewLookup builds the hash index over right (consuming it fully) and
// returns a Stream that probes it with left's rows.
func NewLookup(ctx context.Context, n *plan.JoinNode, left, right exec.Stream, residual residualEvaluator) (exec.Stream, error) {
	rows, err := drain(ctx, right)
	if err != nil {
		return nil, err
	}
	return &lookupStream{
		left:     left,
		index:    buildIndex(rows, n.Keys),
		kind:     n.Kind,
		keys:     n.Keys,
		residual: residual,
		rightNil: rightNullShell(rows),
	}, nil
}

// drain consumes every row of s into a slice, closing s when done.
func drain(ctx context.Context, s exec.Stream) ([]row.Row, error) {
	defer s.Close()
	var rows []row.Row
	for {
		r, err := s.Next(ctx)
		if err != nil {
			return nil, err
		}
		if r == nil {
			return rows, nil
		}
		rows = append(rows, r)
	}
}

// rightNullShell returns a row with every column of sample[0] set to
// nil, used to pad unmatched LEFT JOIN rows. An empty right side yields
// an empty shell — there are no column names to null out, which is
// harmless since those columns were never referenced.
func rightNullShell(sample []row.Row) row.Row {
	if len(sample) == 0 {
		return row.Row{}
	}
	return row.NullRow(columnNames(sample[0]))
}

func columnNames(r row.Row) []string {
	names := make([]string, 0, len(r))
	for c := range r {
		names = append(names, c)
	}
	return names
}

func (s *lookupStream) Next(ctx context.Context) (row.Row, error) {
	for {
		if s.matchIdx < len(s.matches) {
			merged := row.Merge(s.pendingLeft, s.matches[s.matchIdx])
			s.matchIdx++
			if s.residual == nil || s.residual(merged) {
				s.matchedAny = true
				return merged, nil
			}
			continue
		}

		// Every match for pendingLeft has been tried. If the equi-join
		// keys matched but the residual never held for any of them, a
		// LEFT join still surfaces the left row once, padded with nulls
		// — the same "no match" treatment sortMergeStream's matchedAny
		// tracking applies.
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
		var matches []row.Row
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
		s.matches = matches
		s.matchIdx = 0
		s.matchedAny = false
	}
}

func (s *lookupStream) Close() error { return s.left.Close() }
