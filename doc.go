/*
Query extension: accumulating builder for parameterized SQL "select"
statements. Oriented towards writing plain SQL fragments: conditions and
expressions are passed as text, while the builder takes care of clause order,
identifier quoting, condition grouping and the named-parameter set.

Key Features

• Fluent clause accumulation with explicit replace/append pairs, such as
`Select`/`AddSelect` and `Where`/`AndWhere`.

• Fixed clause order on render, regardless of call order.

• Named parameters of the form ":ident", typed by their value: array, boolean,
date, datetime, float, integer, string, time.

• Avoids parameter collisions: registering a name twice fails, including names
contributed by embedded sub-queries.

• Composable: any `Query`, including another `Select`, can be embedded as a
common table expression, copying its text and parameters.

• Optional conversion of named placeholders into ordinals such as $1, and
verification that placeholders and parameters match.

• Declarative YAML definitions and a small CLI, see `cmd/qext`.

Examples

See `Select`, `(*Select).AddWith`, `Positional` and `LoadDefinition`.
*/
package qext
