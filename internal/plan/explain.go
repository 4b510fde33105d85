package plan

import (
	"fmt"
	"sort"
	"strings"
)

// Explain renders a plan tree as indented text, in the same
// planner.Explain() style — one line per operator, children indented
// under their parent, predicates and chosen join strategies inlined so a
// reader can see exactly what pushed down and what didn't.
func Explain(n Node) string {
	var b strings.Builder
	explain(&b, n, 0)
	return b.String()
}

func explain(b *strings.Builder, n Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch x := n.(type) {
	case *ProjectNode:
		fmt.Fprintf(b, "%sProject[%s]\n", indent, formatItems(x.Items))
		explain(b, x.Child, depth+1)

	case *FilterNode:
		fmt.Fprintf(b, "%sFilter(%s)\n", indent, x.Predicate.String())
		explain(b, x.Child, depth+1)

	case *JoinNode:
		fmt.Fprintf(b, "%sJoin[%s, %s](%s)\n", indent, x.Kind, x.Strategy, formatKeys(x.Keys))
		explain(b, x.Left, depth+1)
		explain(b, x.Right, depth+1)

	case *ScanNode:
		pred := "true"
		if x.PushedPredicate != nil {
			pred = x.PushedPredicate.String()
		}
		fmt.Fprintf(b, "%sScan(%s AS %s, cols=%s, pushed=%s)\n", indent, x.Table, x.Alias, formatCols(x.ProjectedCols), pred)
	}
}

func formatItems(items []SelectItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = it.Expr.String() + " AS " + it.Alias
	}
	return strings.Join(parts, ", ")
}

func formatKeys(keys []KeyPair) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.Left + " = " + k.Right
	}
	return strings.Join(parts, " AND ")
}

func formatCols(cols map[string]struct{}) string {
	if len(cols) == 0 {
		return "*"
	}
	names := make([]string, 0, len(cols))
	for c := range cols {
		names = append(names, c)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}
