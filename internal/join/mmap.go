package join

import (
	"bytes"
	"context"
	"encoding/json"

	"golang.org/x/exp/mmap"

	"github.com/riverql/riverql/internal/exec"
	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// mmapStream is the engine's MMAP join: the right side's declared file
// is memory-mapped, every line is decoded into a row, and the rows are
// indexed by join key up front, each time the join is constructed. The
// index holds the decoded rows themselves, not file offsets, and nothing
// is kept between queries. If the file can't be opened — missing, unreadable, or
// the Filename metadata is simply absent — construction falls back to
// LOOKUP's build-from-stream behavior, since the right side is always
// still readable through its registered producer.
type mmapStream struct {
	left     exec.Stream
	index    map[string][]row.Row
	kind     plan.JoinKind
	keys     []plan.KeyPair
	residual residualEvaluator
	rightNil row.Row

	pendingLeft row.Row
	matches     []row.Row
	matchIdx    int
	matchedAny  bool
}

// NewMmap opens the right scan's file, indexes every line by join key,
// and returns a Stream that probes it with left's rows. right is still
// passed in (and drained on the fallback path) even though the happy
// path reads the file directly instead.
func NewMmap(ctx context.Context, n *plan.JoinNode, left, right exec.Stream, residual residualEvaluator) (exec.Stream, error) {
	rightScan, ok := n.Right.(*plan.ScanNode)
	if !ok || rightScan.Filename == "" {
		return NewLookup(ctx, n, left, right, residual)
	}

	rows, err := readJSONLines(rightScan)
	if err != nil {
		return NewLookup(ctx, n, left, right, residual)
	}
	right.Close()

	return &mmapStream{
		left:     left,
		index:    buildIndex(rows, n.Keys),
		kind:     n.Kind,
		keys:     n.Keys,
		residual: residual,
		rightNil: rightNullShell(rows),
	}, nil
}

// readJSONLines memory-maps scan.Filename and decodes one row.Row per
// line, qualified under the scan's alias. The file is expected to hold
// one JSON object per line matching the shape the table's registered
// producer yields.
func readJSONLines(scan *plan.ScanNode) ([]row.Row, error) {
	reader, err := mmap.Open(scan.Filename)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	buf := make([]byte, reader.Len())
	if _, err := reader.ReadAt(buf, 0); err != nil {
		return nil, err
	}

	var rows []row.Row
	for _, line := range bytes.Split(buf, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var raw row.Row
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, err
		}
		rows = append(rows, row.Qualify(scan.Alias, raw))
	}
	return rows, nil
}

func (s *mmapStream) Next(ctx context.Context) (row.Row, error) {
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

func (s *mmapStream) Close() error { return s.left.Close() }
