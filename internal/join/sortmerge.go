package join

import (
	"context"

	"github.com/riverql/riverql/internal/exec"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// sortMergeStream is the engine's SORT_MERGE join: both sides are
// already sorted non-descending on the single equi-join key (that's the
// precondition internal/plan's strategy selection checks before
// choosing it), so the join walks two cursors in lockstep instead of
// building a hash index, trading the LOOKUP strategy's O(|right|)
// memory for O(1) beyond one buffered key-group.
//
// An earlier sort-merge path (federation/decomposer.go's
// JoinStrategyMerge) was an unimplemented stub, so this state machine
// is built directly from the two-cursor merge algorithm.
type sortMergeStream struct {
	left, right exec.Stream
	keys        []plan.KeyPair
	kind        plan.JoinKind
	residual    residualEvaluator

	leftRow  row.Row
	rightRow row.Row
	leftDone, rightDone bool

	// pending holds the current matched group awaiting emission: every
	// left row in a key-equal run crossed with every right row in the
	// same run.
	leftGroup, rightGroup []row.Row
	li, ri                int
	groupReady            bool
	matchedAny            bool

	rightNil row.Row
	started  bool
}

func NewSortMerge(n *plan.JoinNode, left, right exec.Stream, residual residualEvaluator) exec.Stream {
	return &sortMergeStream{left: left, right: right, keys: n.Keys, kind: n.Kind, residual: residual}
}

func (s *sortMergeStream) advanceLeft(ctx context.Context) error {
	r, err := s.left.Next(ctx)
	if err != nil {
		return err
	}
	s.leftRow = r
	s.leftDone = r == nil
	return nil
}

func (s *sortMergeStream) advanceRight(ctx context.Context) error {
	r, err := s.right.Next(ctx)
	if err != nil {
		return err
	}
	s.rightRow = r
	s.rightDone = r == nil
	if r != nil && s.rightNil == nil {
		s.rightNil = row.NullRow(columnNames(r))
	}
	return nil
}

func (s *sortMergeStream) ensureStarted(ctx context.Context) error {
	if s.started {
		return nil
	}
	s.started = true
	if err := s.advanceLeft(ctx); err != nil {
		return err
	}
	return s.advanceRight(ctx)
}

func (s *sortMergeStream) Next(ctx context.Context) (row.Row, error) {
	if err := s.ensureStarted(ctx); err != nil {
		return nil, err
	}

	for {
		if s.groupReady {
			if r, ok, err := s.emitFromGroup(); err != nil {
				return nil, err
			} else if ok {
				return r, nil
			}
			s.groupReady = false
		}

		if s.leftDone {
			return nil, nil
		}
		if s.rightDone {
			if s.kind == plan.Left {
				r := row.Merge(s.leftRow, s.rightNilOrEmpty())
				if err := s.advanceLeft(ctx); err != nil {
					return nil, err
				}
				return r, nil
			}
			return nil, nil
		}

		lv, lok := s.leftKey()
		rv, rok := s.rightKey()
		cmp, defined := 0, false
		if lok && rok {
			cmp, defined = row.Compare(lv, rv)
		}

		switch {
		case !lok:
			// Null join key never matches: LEFT emits with nulls, INNER drops.
			if s.kind == plan.Left {
				r := row.Merge(s.leftRow, s.rightNilOrEmpty())
				if err := s.advanceLeft(ctx); err != nil {
					return nil, err
				}
				return r, nil
			}
			if err := s.advanceLeft(ctx); err != nil {
				return nil, err
			}
		case !rok:
			if err := s.advanceRight(ctx); err != nil {
				return nil, err
			}
		case !defined || cmp < 0:
			// Undefined comparisons (mismatched scalar kinds) are treated
			// like "less than": advance left, same as a genuine miss.
			if s.kind == plan.Left {
				r := row.Merge(s.leftRow, s.rightNilOrEmpty())
				if err := s.advanceLeft(ctx); err != nil {
					return nil, err
				}
				return r, nil
			}
			if err := s.advanceLeft(ctx); err != nil {
				return nil, err
			}
		case cmp > 0:
			if err := s.advanceRight(ctx); err != nil {
				return nil, err
			}
		default:
			if err := s.bufferGroup(ctx, lv); err != nil {
				return nil, err
			}
		}
	}
}

func (s *sortMergeStream) rightNilOrEmpty() row.Row {
	if s.rightNil != nil {
		return s.rightNil
	}
	return row.Row{}
}

// leftKey/rightKey read the single equi-join key's scalar value off the
// current cursor row. SORT_MERGE is only ever selected for a single
// KeyPair (internal/plan's strategy gate requires it), so there's
// exactly one column to compare — unlike LOOKUP/MMAP's composite string
// encoding, ordering decisions need the real scalar so numeric values
// compare numerically rather than lexicographically.
func (s *sortMergeStream) leftKey() (row.Scalar, bool) {
	v := s.leftRow[s.keys[0].Left]
	return v, !row.IsNull(v)
}

func (s *sortMergeStream) rightKey() (row.Scalar, bool) {
	v := s.rightRow[s.keys[0].Right]
	return v, !row.IsNull(v)
}

// bufferGroup collects every consecutive row on both sides sharing key
// k (a run, since both sides are sorted), so the full cross product of
// that key can be emitted before either cursor advances past it.
func (s *sortMergeStream) bufferGroup(ctx context.Context, k row.Scalar) error {
	s.leftGroup = s.leftGroup[:0]
	s.rightGroup = s.rightGroup[:0]

	for !s.leftDone {
		lv, ok := s.leftKey()
		if !ok {
			break
		}
		if eq, defined := row.Equal(lv, k); !defined || !eq {
			break
		}
		s.leftGroup = append(s.leftGroup, s.leftRow)
		if err := s.advanceLeft(ctx); err != nil {
			return err
		}
	}
	for !s.rightDone {
		rv, ok := s.rightKey()
		if !ok {
			break
		}
		if eq, defined := row.Equal(rv, k); !defined || !eq {
			break
		}
		s.rightGroup = append(s.rightGroup, s.rightRow)
		if err := s.advanceRight(ctx); err != nil {
			return err
		}
	}

	s.li, s.ri = 0, 0
	s.groupReady = true
	s.matchedAny = false
	return nil
}

// emitFromGroup walks the buffered cross product of the current
// key-equal run, row by row. If every right candidate for a given left
// row fails the residual and the join is LEFT, that left row still
// surfaces once, padded with nulls — the equality matched but the
// residual didn't, which is exactly "no match" for outer-join purposes.
func (s *sortMergeStream) emitFromGroup() (row.Row, bool, error) {
	for s.li < len(s.leftGroup) {
		for s.ri < len(s.rightGroup) {
			merged := row.Merge(s.leftGroup[s.li], s.rightGroup[s.ri])
			s.ri++
			if s.residual == nil || s.residual(merged) {
				s.matchedAny = true
				return merged, true, nil
			}
		}
		unmatched := !s.matchedAny
		left := s.leftGroup[s.li]
		s.ri = 0
		s.li++
		s.matchedAny = false
		if unmatched && s.kind == plan.Left {
			return row.Merge(left, s.rightNilOrEmpty()), true, nil
		}
	}
	return nil, false, nil
}

func (s *sortMergeStream) Close() error {
	lerr := s.left.Close()
	rerr := s.right.Close()
	if lerr != nil {
		return lerr
	}
	return rerr
}
