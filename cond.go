package qext

import "strings"

/*
Combines optional conditions into one predicate. Empty and whitespace-only
entries are treated as absent and dropped. Each remaining entry is
parenthesized, and the results are joined with "AND":

	ComposeConditions(`a.id = b.a_id`, ``, `b.active`)
	-> `(a.id = b.a_id) AND (b.active)`

If every entry is absent, the result is empty.
*/
func ComposeConditions(conds ...string) string {
	var buf strings.Builder
	for _, cond := range conds {
		if isBlank(cond) {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteString(` AND `)
		}
		buf.WriteByte('(')
		buf.WriteString(cond)
		buf.WriteByte(')')
	}
	return buf.String()
}

func isBlank(val string) bool { return strings.TrimSpace(val) == `` }
