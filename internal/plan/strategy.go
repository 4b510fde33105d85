package plan

import "strings"

// unqualify returns the bare column name from a "table.column" string.
func unqualify(qualified string) string {
	if idx := strings.LastIndex(qualified, "."); idx >= 0 {
		return qualified[idx+1:]
	}
	return qualified
}

// selectStrategy picks a join executor for n: COLUMNAR whenever the
// engine was constructed with use_polars;
// otherwise SORT_MERGE when both sides are base scans declared
// ordered_by the single equi-join key; otherwise MMAP when the right
// side carries file metadata (and the engine allows it); otherwise the
// always-applicable LOOKUP (hash) join.
func selectStrategy(n *JoinNode, usePolars, allowMmap bool) Strategy {
	if usePolars {
		return Columnar
	}
	if len(n.Keys) == 1 {
		left, leftIsScan := n.Left.(*ScanNode)
		right, rightIsScan := n.Right.(*ScanNode)
		if leftIsScan && rightIsScan {
			key := n.Keys[0]
			if left.OrderedBy != "" && left.OrderedBy == unqualify(key.Left) &&
				right.OrderedBy != "" && right.OrderedBy == unqualify(key.Right) {
				return SortMerge
			}
			if allowMmap && right.Filename != "" {
				return Mmap
			}
		}
	}
	return Lookup
}

// assignStrategies walks the plan tree setting Strategy on every join,
// since prune/push rebuild nodes in place and strategy selection only
// needs the final tree shape.
func assignStrategies(n Node, usePolars, allowMmap bool) {
	switch x := n.(type) {
	case *JoinNode:
		x.Strategy = selectStrategy(x, usePolars, allowMmap)
		assignStrategies(x.Left, usePolars, allowMmap)
		assignStrategies(x.Right, usePolars, allowMmap)
	case *FilterNode:
		assignStrategies(x.Child, usePolars, allowMmap)
	case *ProjectNode:
		assignStrategies(x.Child, usePolars, allowMmap)
	}
}
