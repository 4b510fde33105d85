// Package join implements the engine's four pluggable join strategies —
// LOOKUP, SORT_MERGE, COLUMNAR, and MMAP — all operating over the same
// exec.Stream abstraction so the rest of the operator tree never knows
// which one is in play.
package join

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riverql/riverql/internal/plan"
	"github.com/riverql/riverql/internal/row"
)

// side selects which half of a KeyPair to read.
type side int

const (
	leftSide side = iota
	rightSide
)

// keyOf builds the composite join-key string for r, reading the left or
// right column of each pair depending on side. A nil component makes the
// whole key "no match" (SQL join equality never matches null=null);
// ok reports whether every component was non-null.
func keyOf(r row.Row, keys []plan.KeyPair, s side) (string, bool) {
	var b strings.Builder
	for i, k := range keys {
		col := k.Left
		if s == rightSide {
			col = k.Right
		}
		v := r[col]
		if row.IsNull(v) {
			return "", false
		}
		if i > 0 {
			b.WriteByte('\x1f') // unit separator: never appears in scalar values
		}
		b.WriteString(keyComponent(v))
	}
	return b.String(), true
}

// keyComponent renders one join-key column's value as a hash key
// component. Numeric scalars (int, int64, float32, float64) are
// promoted to a common float64-based representation rather than keyed
// by their concrete Go type, so an int64 column joining against a
// float64 column hashes the same way row.Compare treats them as equal
// — otherwise LOOKUP/MMAP's hash-bucket equality would disagree with
// SORT_MERGE's numeric row.Compare on the exact same key pair.
// Non-numeric scalars keep the %T tag so e.g. the string "1" and the
// number 1 never collide.
func keyComponent(v row.Scalar) string {
	switch n := v.(type) {
	case int64:
		return "#num:" + strconv.FormatFloat(float64(n), 'g', -1, 64)
	case int:
		return "#num:" + strconv.FormatFloat(float64(n), 'g', -1, 64)
	case float64:
		return "#num:" + strconv.FormatFloat(n, 'g', -1, 64)
	case float32:
		return "#num:" + strconv.FormatFloat(float64(n), 'g', -1, 64)
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

// buildIndex materializes rows into a hash index keyed by their
// right-side join key, for the LOOKUP and MMAP strategies. Multiple rows may share a key — every join algorithm
// here tolerates duplicate keys on either side.
func buildIndex(rows []row.Row, keys []plan.KeyPair) map[string][]row.Row {
	idx := make(map[string][]row.Row, len(rows))
	for _, r := range rows {
		k, ok := keyOf(r, keys, rightSide)
		if !ok {
			continue
		}
		idx[k] = append(idx[k], r)
	}
	return idx
}
