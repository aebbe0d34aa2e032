package qext

import "strings"

// Delimiter wrapped around each identifier segment when quoting is on.
const quoteGrave = '`'

/*
Renders a dotted identifier path such as `orders.id`. When `quoted` is true,
each segment is individually wrapped in backticks:

	Quote([]string{`orders`, `id`}, true)
	-> "`orders`.`id`"

Segments are never escaped. Table and column names must not come from
untrusted input.
*/
func Quote(path []string, quoted bool) string {
	var buf strings.Builder
	for ind, seg := range path {
		if ind > 0 {
			buf.WriteByte('.')
		}
		if quoted {
			buf.WriteByte(quoteGrave)
			buf.WriteString(seg)
			buf.WriteByte(quoteGrave)
		} else {
			buf.WriteString(seg)
		}
	}
	return buf.String()
}

// Single-segment variant of `Quote`.
func QuoteIdent(ident string, quoted bool) string {
	return Quote([]string{ident}, quoted)
}

// Splits a dotted identifier into segments. Empty input produces nil.
func SplitPath(src string) []string {
	if src == `` {
		return nil
	}
	return strings.Split(src, `.`)
}

// Shortcut for `Quote(SplitPath(src), quoted)`.
func quotePath(src string, quoted bool) string {
	return Quote(SplitPath(src), quoted)
}
