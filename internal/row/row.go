// Package row defines the engine's dynamic row and scalar model: an
// ordered mapping from fully-qualified column name to an untyped scalar
// value, with the promotion and three-valued comparison rules this
// engine requires. There is no schema object — producers are assumed
// consistent per table, and a column absent from a row simply evaluates
// to null.
package row

import (
	"fmt"
	"strconv"
	"strings"
)

// Scalar is one of: int64, float64, string, bool, or nil (SQL null).
// Kept as interface{} rather than a tagged union because the engine's
// value proposition is schema-less integration — rows arrive from
// callers as plain maps and should round-trip without a conversion
// layer in front of every producer.
type Scalar = interface{}

// Row is an ordered mapping from qualified column name (table.column) to
// scalar. Go maps have no intrinsic order; row order for output purposes
// is carried separately by the Project operator's alias list, not by the
// map itself — the map is purely a lookup structure.
type Row map[string]Scalar

// Qualify returns a copy of an unqualified row (as a producer yields it)
// with every key prefixed "table.".
func Qualify(table string, r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[table+"."+k] = v
	}
	return out
}

// Merge combines a left and right row (already qualified) into one row
// for a join's output. The right side wins on key collision, matching
// the common SQL convention that the later table in a FROM/JOIN list
// shadows an identically-named qualified column — collisions are rare in
// practice since qualification already disambiguates same-named columns
// from different tables.
func Merge(left, right Row) Row {
	out := make(Row, len(left)+len(right))
	for k, v := range left {
		out[k] = v
	}
	for k, v := range right {
		out[k] = v
	}
	return out
}

// NullRow returns a row with every given qualified column set to nil,
// used by LEFT join to pad unmatched left rows with a null right side.
func NullRow(columns []string) Row {
	out := make(Row, len(columns))
	for _, c := range columns {
		out[c] = nil
	}
	return out
}

// Clone makes a shallow copy of a row. Scalars are immutable values, so a
// shallow copy is sufficient to isolate downstream mutation.
func Clone(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IsNull reports whether a scalar is SQL null.
func IsNull(v Scalar) bool { return v == nil }

// asNumeric converts an int64/float64 scalar to float64 for promoted
// arithmetic/comparison. The second return is false for non-numeric or
// null scalars.
func asNumeric(v Scalar) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return float64(n), true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}

// bothInt reports whether both scalars are integral, so arithmetic can
// stay in int64 rather than round-tripping through float64.
func bothInt(a, b Scalar) (int64, int64, bool) {
	ai, aok := a.(int64)
	if !aok {
		if ii, ok := a.(int); ok {
			ai, aok = int64(ii), true
		}
	}
	bi, bok := b.(int64)
	if !bok {
		if ii, ok := b.(int); ok {
			bi, bok = int64(ii), true
		}
	}
	return ai, bi, aok && bok
}

// Compare implements the engine's three-valued comparison: it returns
// (cmp, true) when both operands are comparable scalars of a compatible
// kind (cmp < 0, == 0, > 0 as usual), or (0, false) when the comparison
// is undefined — either operand is null, or the operand kinds can't be
// reconciled (e.g. string vs. number). Callers map an undefined result
// to SQL null.
func Compare(a, b Scalar) (int, bool) {
	if IsNull(a) || IsNull(b) {
		return 0, false
	}

	if ai, bi, ok := bothInt(a, b); ok {
		switch {
		case ai < bi:
			return -1, true
		case ai > bi:
			return 1, true
		default:
			return 0, true
		}
	}

	if an, aok := asNumeric(a); aok {
		if bn, bok := asNumeric(b); bok {
			switch {
			case an < bn:
				return -1, true
			case an > bn:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}

	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			return strings.Compare(as, bs), true
		}
		return 0, false
	}

	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			switch {
			case ab == bb:
				return 0, true
			case !ab && bb:
				return -1, true
			default:
				return 1, true
			}
		}
		return 0, false
	}

	return 0, false
}

// Equal is Compare specialized to equality. It returns (true/false, true)
// when well-defined, or (false, false) when the comparison is undefined
// (caller should treat that as SQL null, not false).
func Equal(a, b Scalar) (bool, bool) {
	c, ok := Compare(a, b)
	if !ok {
		return false, false
	}
	return c == 0, true
}

// Add, Sub, Mul, Div implement null-tolerant arithmetic: null operands
// (or division by zero) yield null rather than erroring, so a filter
// simply drops the row instead of the query aborting mid-stream.
func Add(a, b Scalar) Scalar { return arith(a, b, func(x, y float64) float64 { return x + y }, func(x, y int64) int64 { return x + y }) }
func Sub(a, b Scalar) Scalar { return arith(a, b, func(x, y float64) float64 { return x - y }, func(x, y int64) int64 { return x - y }) }
func Mul(a, b Scalar) Scalar { return arith(a, b, func(x, y float64) float64 { return x * y }, func(x, y int64) int64 { return x * y }) }

func Div(a, b Scalar) Scalar {
	if IsNull(a) || IsNull(b) {
		return nil
	}
	bn, bok := asNumeric(b)
	if !bok || bn == 0 {
		return nil
	}
	an, aok := asNumeric(a)
	if !aok {
		return nil
	}
	return an / bn
}

func arith(a, b Scalar, ff func(float64, float64) float64, fi func(int64, int64) int64) Scalar {
	if IsNull(a) || IsNull(b) {
		return nil
	}
	if ai, bi, ok := bothInt(a, b); ok {
		return fi(ai, bi)
	}
	an, aok := asNumeric(a)
	bn, bok := asNumeric(b)
	if !aok || !bok {
		return nil
	}
	return ff(an, bn)
}

// String renders a scalar for debug/explain output.
func String(v Scalar) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case string:
		return strconv.Quote(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
