package plan

import (
	"sort"

	"github.com/riverql/riverql/internal/errs"
	"github.com/riverql/riverql/internal/expr"
)

// columnResolver binds a bare or qualified ColumnRef to a known alias: a
// bare column binds to the unique table whose sampled row shape contains
// it (error if zero or more than one match); a qualified column is
// checked against the query's registered aliases.
type columnResolver struct {
	// aliasSchemas maps alias -> unqualified column names seen on a
	// sampled row from that table.
	aliasSchemas map[string]map[string]struct{}
	aliasSet     map[string]struct{}
}

func (cr *columnResolver) resolve(ref expr.ColumnRef) (expr.ColumnRef, error) {
	if ref.Table != "" {
		if _, ok := cr.aliasSet[ref.Table]; !ok {
			return expr.ColumnRef{}, errs.NewUnresolvedColumn(ref.QualifiedName())
		}
		return ref, nil
	}

	var matches []string
	for alias, schema := range cr.aliasSchemas {
		if _, ok := schema[ref.Column]; ok {
			matches = append(matches, alias)
		}
	}
	switch len(matches) {
	case 0:
		return expr.ColumnRef{}, errs.NewUnresolvedColumn(ref.Column)
	case 1:
		return expr.ColumnRef{Table: matches[0], Column: ref.Column}, nil
	default:
		sort.Strings(matches)
		return expr.ColumnRef{}, errs.NewAmbiguousColumn(ref.Column, matches)
	}
}

// resolveExpr rebuilds e with every ColumnRef qualified, per cr.
func resolveExpr(e expr.Expr, cr *columnResolver) (expr.Expr, error) {
	switch n := e.(type) {
	case expr.ColumnRef:
		return cr.resolve(n)

	case expr.Literal:
		return n, nil

	case expr.BinaryOp:
		l, err := resolveExpr(n.Left, cr)
		if err != nil {
			return nil, err
		}
		r, err := resolveExpr(n.Right, cr)
		if err != nil {
			return nil, err
		}
		return expr.BinaryOp{Op: n.Op, Left: l, Right: r}, nil

	case expr.LogicalOp:
		children := make([]expr.Expr, len(n.Children))
		for i, c := range n.Children {
			rc, err := resolveExpr(c, cr)
			if err != nil {
				return nil, err
			}
			children[i] = rc
		}
		return expr.LogicalOp{Op: n.Op, Children: children}, nil

	case expr.In:
		t, err := resolveExpr(n.Target, cr)
		if err != nil {
			return nil, err
		}
		return expr.In{Target: t, Literals: n.Literals}, nil

	case expr.IsNull:
		t, err := resolveExpr(n.Target, cr)
		if err != nil {
			return nil, err
		}
		return expr.IsNull{Target: t, Negated: n.Negated}, nil

	default:
		return e, nil
	}
}
