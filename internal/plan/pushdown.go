package plan

import "github.com/riverql/riverql/internal/expr"

// isSubset reports whether every key in sub is also a key in set.
func isSubset(sub, set map[string]struct{}) bool {
	for k := range sub {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

func mergeAnd(a, b expr.Expr) expr.Expr {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return expr.LogicalOp{Op: "AND", Children: []expr.Expr{a, b}}
}

// wrapFilter attaches pred above node, merging into an existing
// FilterNode at that exact position instead of stacking a redundant one.
func wrapFilter(node Node, pred expr.Expr) Node {
	if f, ok := node.(*FilterNode); ok {
		f.Predicate = mergeAnd(f.Predicate, pred)
		return f
	}
	return &FilterNode{Child: node, Predicate: pred}
}

// push places a single WHERE conjunct at the deepest operator whose
// output already contains every column it references. A conjunct
// naming only the preserved (left) side of a join always
// pushes through; one naming the nullable (right) side of a LEFT join
// never pushes below it — pushing it into the right scan's predicate
// would filter rows out before matching instead of after, which changes
// which left rows come out unmatched. Such a conjunct is attached as a
// Filter directly above the blocking join instead.
func push(node Node, pred expr.Expr, cols map[string]struct{}) Node {
	switch n := node.(type) {
	case *ScanNode:
		n.PushedPredicate = mergeAnd(n.PushedPredicate, pred)
		return n

	case *JoinNode:
		if isSubset(cols, n.Left.Columns()) {
			n.Left = push(n.Left, pred, cols)
			return n
		}
		if n.Kind == Inner && isSubset(cols, n.Right.Columns()) {
			n.Right = push(n.Right, pred, cols)
			return n
		}
		return wrapFilter(n, pred)

	case *FilterNode:
		inner := push(n.Child, pred, cols)
		if innerFilter, ok := inner.(*FilterNode); ok {
			innerFilter.Predicate = mergeAnd(n.Predicate, innerFilter.Predicate)
			return innerFilter
		}
		n.Child = inner
		return n

	default:
		return wrapFilter(node, pred)
	}
}

// prune computes, top-down, the minimal set of columns each Scan must
// emit: the union of what the query ultimately projects, what pushed
// predicates test, and what join keys/residuals compare — never the
// table's full row shape.
func prune(node Node, demand map[string]struct{}) {
	switch n := node.(type) {
	case *ScanNode:
		need := make(map[string]struct{})
		for c := range demand {
			if _, ok := n.Schema[c]; ok {
				need[c] = struct{}{}
			}
		}
		if n.PushedPredicate != nil {
			for c := range expr.ColumnsOf(n.PushedPredicate) {
				need[c] = struct{}{}
			}
		}
		n.ProjectedCols = need

	case *JoinNode:
		leftDemand := intersect(demand, n.Left.Columns())
		rightDemand := intersect(demand, n.Right.Columns())
		for _, k := range n.Keys {
			leftDemand[k.Left] = struct{}{}
			rightDemand[k.Right] = struct{}{}
		}
		if n.Residual != nil {
			for c := range expr.ColumnsOf(n.Residual) {
				if _, ok := n.Left.Columns()[c]; ok {
					leftDemand[c] = struct{}{}
				}
				if _, ok := n.Right.Columns()[c]; ok {
					rightDemand[c] = struct{}{}
				}
			}
		}
		prune(n.Left, leftDemand)
		prune(n.Right, rightDemand)

	case *FilterNode:
		d := intersect(demand, n.Columns())
		for c := range expr.ColumnsOf(n.Predicate) {
			d[c] = struct{}{}
		}
		prune(n.Child, d)
	}
}

func intersect(demand, cols map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for c := range demand {
		if _, ok := cols[c]; ok {
			out[c] = struct{}{}
		}
	}
	return out
}
