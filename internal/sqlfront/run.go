package sqlfront

import (
	"regexp"

	"github.com/riverql/riverql/internal/engine"
)

// QuerySQL is the convenience path cmd/riverql's query command uses:
// parse sql, then hand the resulting plan.Query straight to e.Query.
func QuerySQL(e *engine.Engine, sql string) (*engine.Result, error) {
	q, err := Parse(sql)
	if err != nil {
		return nil, err
	}
	return e.Query(q)
}

// ExplainSQL parses sql and renders its plan, re-rendering every
// predicate snippet in the output through the secondary parser's
// pretty-printer so EXPLAIN output reads as normalized SQL text
// rather than internal/expr's debug String() form.
func ExplainSQL(e *engine.Engine, sql string) (string, error) {
	q, err := Parse(sql)
	if err != nil {
		return "", err
	}
	text, err := e.Explain(q)
	if err != nil {
		return "", err
	}
	return prettyExplainText(text), nil
}

var predicatePattern = regexp.MustCompile(`(?m)(Filter\(|pushed=)(.*)\)$`)

func prettyExplainText(text string) string {
	return predicatePattern.ReplaceAllStringFunc(text, func(match string) string {
		loc := predicatePattern.FindStringSubmatch(match)
		prefix, body := loc[1], loc[2]
		if body == "true" {
			return match
		}
		return prefix + PrettyPredicate(body) + ")"
	})
}
