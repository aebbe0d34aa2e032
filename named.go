package qext

import (
	"fmt"

	"github.com/mitranim/sqlp"
)

/*
Returns the distinct named placeholders, such as `:status`, found in the SQL
text, without the leading colon, in order of first appearance. Postgres-style
casts such as `::text`, string literals, quoted identifiers and comments are
not placeholders.
*/
func Placeholders(src string) (out []string, err error) {
	defer rec(&err)

	seen := map[sqlp.NodeNamedParam]bool{}
	tokenizer := sqlp.Tokenizer{Source: src}

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		param, ok := node.(sqlp.NodeNamedParam)
		if !ok || seen[param] {
			continue
		}
		seen[param] = true
		out = append(out, string(param))
	}
	return
}

/*
Renders the query and verifies that every named placeholder in the text has a
registered parameter and that every registered parameter is referenced. The
first violation is reported as `ErrMissingParameter` or `ErrUnusedParameter`.
*/
func Check(query Query) error {
	const while = `checking parameters`

	text, params, err := Reify(query)
	if err != nil {
		return err
	}

	names, err := Placeholders(text)
	if err != nil {
		return err
	}

	used := make(map[string]bool, len(names))
	for _, name := range names {
		if !params.Has(name) {
			return ErrMissingParameter.while(while).because(
				fmt.Errorf(`no parameter for placeholder %q`, `:`+name),
			)
		}
		used[name] = true
	}

	for _, name := range params.Names() {
		if !used[name] {
			return ErrUnusedParameter.while(while).because(
				fmt.Errorf(`parameter %q is not referenced`, name),
			)
		}
	}
	return nil
}

/*
Renders the query, converting named placeholders into Postgres-style ordinal
placeholders such as `$1`, for drivers that don't bind by name. Ordinals are
assigned in order of first appearance; repeated placeholders reuse the same
ordinal. The returned arguments are the native values of the corresponding
parameters.

For example, a query rendering as:

	SELECT o.id FROM orders AS o WHERE (o.status = :s) AND (o.total > :min OR o.status = :s)

Becomes:

	SELECT o.id FROM orders AS o WHERE (o.status = $1) AND (o.total > $2 OR o.status = $1)

Fails with `ErrMissingParameter` and `ErrUnusedParameter` under the same
conditions as `Check`.
*/
func Positional(query Query) (_ string, _ []any, err error) {
	defer rec(&err)
	const while = `converting to ordinal parameters`

	src, params, err := Reify(query)
	if err != nil {
		return ``, nil, err
	}

	var text []byte
	var args []any
	ords := map[sqlp.NodeNamedParam]sqlp.NodeOrdinalParam{}
	tokenizer := sqlp.Tokenizer{Source: src}

	for {
		node := tokenizer.Next()
		if node == nil {
			break
		}

		switch node := node.(type) {
		case sqlp.NodeNamedParam:
			ord, ok := ords[node]
			if !ok {
				param, found := params.Get(string(node))
				if !found {
					return ``, nil, ErrMissingParameter.while(while).because(
						fmt.Errorf(`no parameter for placeholder %q`, `:`+string(node)),
					)
				}
				args = append(args, param.Value().Native())
				ord = sqlp.NodeOrdinalParam(len(args))
				ords[node] = ord
			}
			ord.Append(&text)

		default:
			node.Append(&text)
		}
	}

	for _, name := range params.Names() {
		if _, ok := ords[sqlp.NodeNamedParam(name)]; !ok {
			return ``, nil, ErrUnusedParameter.while(while).because(
				fmt.Errorf(`parameter %q is not referenced`, name),
			)
		}
	}

	return string(text), args, nil
}
