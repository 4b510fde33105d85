package expr

import "github.com/riverql/riverql/internal/row"

// Eval is the pure evaluator: given an expression and a row, it returns
// a scalar. For boolean-valued expressions (the
// comparison/logical/IN/IS NULL family) the result is one of true, false,
// or nil — nil stands for SQL's third truth value and is distinct from
// the boolean false a filter ultimately drops a row for.
func Eval(e Expr, r row.Row) row.Scalar {
	switch n := e.(type) {
	case ColumnRef:
		return r[n.QualifiedName()]
	case Literal:
		return n.Value
	case BinaryOp:
		return evalBinary(n, r)
	case LogicalOp:
		return evalLogical(n, r)
	case In:
		return evalIn(n, r)
	case IsNull:
		return evalIsNull(n, r)
	default:
		return nil
	}
}

func evalBinary(n BinaryOp, r row.Row) row.Scalar {
	l := Eval(n.Left, r)
	rv := Eval(n.Right, r)

	if n.IsComparison() {
		switch n.Op {
		case "=":
			ok, defined := row.Equal(l, rv)
			if !defined {
				return nil
			}
			return ok
		case "<>":
			ok, defined := row.Equal(l, rv)
			if !defined {
				return nil
			}
			return !ok
		default:
			cmp, defined := row.Compare(l, rv)
			if !defined {
				return nil
			}
			switch n.Op {
			case "<":
				return cmp < 0
			case "<=":
				return cmp <= 0
			case ">":
				return cmp > 0
			case ">=":
				return cmp >= 0
			}
			return nil
		}
	}

	switch n.Op {
	case "+":
		return row.Add(l, rv)
	case "-":
		return row.Sub(l, rv)
	case "*":
		return row.Mul(l, rv)
	case "/":
		return row.Div(l, rv)
	default:
		return nil
	}
}

// threeState reads a boolean-or-null scalar into true/false/null buckets.
func threeState(v row.Scalar) (b bool, isNull bool) {
	if row.IsNull(v) {
		return false, true
	}
	bv, ok := v.(bool)
	if !ok {
		// Non-boolean operand in a boolean context: undefined, treat as null.
		return false, true
	}
	return bv, false
}

func evalLogical(n LogicalOp, r row.Row) row.Scalar {
	switch n.Op {
	case "NOT":
		v, isNull := threeState(Eval(n.Children[0], r))
		if isNull {
			return nil
		}
		return !v

	case "AND":
		sawNull := false
		for _, c := range n.Children {
			v, isNull := threeState(Eval(c, r))
			if isNull {
				sawNull = true
				continue
			}
			if !v {
				return false
			}
		}
		if sawNull {
			return nil
		}
		return true

	case "OR":
		sawNull := false
		for _, c := range n.Children {
			v, isNull := threeState(Eval(c, r))
			if isNull {
				sawNull = true
				continue
			}
			if v {
				return true
			}
		}
		if sawNull {
			return nil
		}
		return false

	default:
		return nil
	}
}

func evalIn(n In, r row.Row) row.Scalar {
	target := Eval(n.Target, r)
	sawNull := false
	for _, lit := range n.Literals {
		ok, defined := row.Equal(target, lit.Value)
		if !defined {
			sawNull = true
			continue
		}
		if ok {
			return true
		}
	}
	if sawNull {
		return nil
	}
	return false
}

func evalIsNull(n IsNull, r row.Row) row.Scalar {
	isNull := row.IsNull(Eval(n.Target, r))
	if n.Negated {
		return !isNull
	}
	return isNull
}

// Keep reports whether a row survives a WHERE/pushed predicate: it is
// kept iff the predicate evaluates to true (null and false both drop the
// row).
func Keep(predicate Expr, r row.Row) bool {
	v, isNull := threeState(Eval(predicate, r))
	if isNull {
		return false
	}
	return v
}
