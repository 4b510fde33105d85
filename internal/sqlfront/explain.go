package sqlfront

import (
	"fmt"

	xwbparser "github.com/xwb1989/sqlparser"
)

// PrettyPredicate re-renders a pushed-down predicate's textual form
// (expr.Expr.String() output) through a second, more permissive SQL
// tokenizer purely for display in Explain() output. It is never used
// on the query-planning path — only for EXPLAIN's operator tree, the
// same separation-of-concerns kept between a primary
// parser (dolthub/vitess) and its secondary one (xwb1989/sqlparser).
//
// A predicate that the secondary parser can't make sense of (it's a
// small, older fork with a narrower grammar than the primary parser)
// just falls back to the raw text unchanged — Explain output is a
// diagnostic, not something callers parse back.
func PrettyPredicate(text string) string {
	stmt, err := xwbparser.Parse(fmt.Sprintf("select * from t where %s", text))
	if err != nil {
		return text
	}
	sel, ok := stmt.(*xwbparser.Select)
	if !ok || sel.Where == nil {
		return text
	}
	return xwbparser.String(sel.Where.Expr)
}
