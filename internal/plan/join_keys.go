package plan

import "github.com/riverql/riverql/internal/expr"

// extractEquiJoin splits a resolved ON expression into its equi-join
// column pairs (every join strategy here keys off equality) and
// whatever residual conjuncts aren't a plain "left.col = right.col"
// comparison. Residual is nil when the whole ON clause was equi-join.
func extractEquiJoin(on expr.Expr, leftCols, rightCols map[string]struct{}) ([]KeyPair, expr.Expr) {
	var keys []KeyPair
	var residual []expr.Expr

	for _, c := range expr.SplitConjuncts(on) {
		if pair, ok := asEquiJoinPair(c, leftCols, rightCols); ok {
			keys = append(keys, pair)
			continue
		}
		residual = append(residual, c)
	}

	if len(residual) == 0 {
		return keys, nil
	}
	return keys, expr.And(residual)
}

func asEquiJoinPair(c expr.Expr, leftCols, rightCols map[string]struct{}) (KeyPair, bool) {
	b, ok := c.(expr.BinaryOp)
	if !ok || b.Op != "=" {
		return KeyPair{}, false
	}
	lref, lok := b.Left.(expr.ColumnRef)
	rref, rok := b.Right.(expr.ColumnRef)
	if !lok || !rok {
		return KeyPair{}, false
	}
	lq, rq := lref.QualifiedName(), rref.QualifiedName()

	if _, inLeft := leftCols[lq]; inLeft {
		if _, inRight := rightCols[rq]; inRight {
			return KeyPair{Left: lq, Right: rq}, true
		}
	}
	if _, inLeft := leftCols[rq]; inLeft {
		if _, inRight := rightCols[lq]; inRight {
			return KeyPair{Left: rq, Right: lq}, true
		}
	}
	return KeyPair{}, false
}
