package qext

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/capitan"
)

/*
Accumulating builder for an SQL "select" statement with named parameters.
The zero value is ready to use. Every mutating method returns the builder for
chaining. Methods come in pairs: the plain form replaces the corresponding
clause with a single entry, the "add" or "and" form appends to it.

Clauses are rendered in a fixed order regardless of call order:

	WITH, SELECT, FROM, JOIN..., WHERE, GROUP BY, HAVING, ORDER BY, LIMIT, OFFSET

Methods that receive invalid input, such as a duplicate parameter name, panic
with `Err`. Use `Catch` to convert such panics into errors. `.Render` returns
errors as values.

Not safe for concurrent use. Build one query per goroutine.
*/
type Select struct {
	quoted  bool
	with    []cte
	sel     []string
	from    string
	join    []string
	where   []string
	groupBy []string
	having  []string
	orderBy []string
	limit   *int64
	offset  *int64
	params  Parameters
}

// Rendered common table expression and the names of the parameters it
// contributed to the enclosing builder.
type cte struct {
	alias  string
	text   string
	params []string
}

// Shortcut for `new(Select)`, convenient for chaining.
func NewSelect() *Select { return new(Select) }

/*
Toggles backtick quoting for identifiers passed to subsequent calls. Already
accumulated clauses are unaffected, which allows quoting to be chosen per call:

	query.Quoted(true).From(`order`, `o`).Quoted(false).Select(`count(*)`, ``)
*/
func (self *Select) Quoted(val bool) *Select {
	self.quoted = val
	return self
}

/*
Replaces all common table expressions with the given one. Parameters that the
replaced expressions contributed are released and may be reused by the new
one. On failure, the builder is left unchanged. See `.AddWith`.
*/
func (self *Select) With(query Query, alias string) *Select {
	return self.addWith(query, alias, true)
}

/*
Renders the query and appends it as a common table expression named by the
alias, which may be a dotted path. The query's parameters are copied into this
builder. If any of them collides with an already registered name, this panics
with `ErrDuplicateParameter` and the builder is left unchanged. If the query
fails to render, its error is propagated as a panic.
*/
func (self *Select) AddWith(query Query, alias string) *Select {
	return self.addWith(query, alias, false)
}

func (self *Select) addWith(query Query, alias string, replace bool) *Select {
	const while = `embedding common table expression`

	if query == nil {
		panic(ErrInvalidInput.while(while).because(errf(`nil query`)))
	}
	if isBlank(alias) {
		panic(ErrInvalidInput.while(while).because(errf(`empty alias`)))
	}

	text := try1(query.Render())
	params := query.Parameters()
	names := params.Names()

	for _, name := range names {
		if isBlank(name) || params[name].Name() != name {
			panic(ErrInvalidInput.while(while).because(fmt.Errorf(
				`parameter keyed %q of %q is named %q`, name, alias, params[name].Name(),
			)))
		}
	}

	var released map[string]bool
	if replace {
		released = self.withParams()
	}

	for _, name := range names {
		if self.params.Has(name) && !released[name] {
			self.rejectParam(name)
			panic(ErrDuplicateParameter.while(while).because(
				fmt.Errorf(`parameter %q of %q is already registered`, name, alias),
			))
		}
	}

	if replace {
		for name := range released {
			delete(self.params, name)
		}
		self.with = nil
	}

	quoted := quotePath(alias, self.quoted)
	self.with = append(self.with, cte{alias: quoted, text: text, params: names})
	for _, name := range names {
		self.AddParam(params[name])
	}

	capitan.Emit(context.Background(), CTEEmbedded,
		KeyAlias.Field(quoted),
		KeySQL.Field(text))
	return self
}

// Names of the parameters contributed by common table expressions.
func (self *Select) withParams() map[string]bool {
	out := map[string]bool{}
	for _, val := range self.with {
		for _, name := range val.params {
			out[name] = true
		}
	}
	return out
}

/*
Replaces the select list with one field. When `alias` is non-empty, it's used
as the table qualifier: `Select("id", "o")` renders `o.id`. For a column alias,
use `.SelectAs`.
*/
func (self *Select) Select(field, alias string) *Select {
	self.sel = nil
	return self.AddSelect(field, alias)
}

// Appending variant of `.Select`.
func (self *Select) AddSelect(field, alias string) *Select {
	self.sel = append(self.sel, self.qualify(field, alias))
	return self
}

// Replaces the select list with `field AS name`.
func (self *Select) SelectAs(field, name string) *Select {
	self.sel = nil
	return self.AddSelectAs(field, name)
}

// Appends `field AS name` to the select list.
func (self *Select) AddSelectAs(field, name string) *Select {
	self.sel = append(self.sel, self.alias(quotePath(field, self.quoted), name))
	return self
}

// Sets the single FROM source. The table may be a dotted path and must not be
// empty.
func (self *Select) From(table, alias string) *Select {
	if isBlank(table) {
		panic(ErrInvalidInput.while(`setting from`).because(errf(`empty table`)))
	}
	self.from = self.alias(quotePath(table, self.quoted), alias)
	return self
}

// Appends an INNER JOIN. See `ComposeConditions` for the handling of `conds`.
func (self *Select) InnerJoin(table, alias string, conds ...string) *Select {
	return self.addJoin(`INNER JOIN`, table, alias, conds)
}

// Appends a LEFT JOIN. See `ComposeConditions` for the handling of `conds`.
func (self *Select) LeftJoin(table, alias string, conds ...string) *Select {
	return self.addJoin(`LEFT JOIN`, table, alias, conds)
}

func (self *Select) addJoin(kind, table, alias string, conds []string) *Select {
	cond := ComposeConditions(conds...)
	if cond == `` {
		panic(ErrEmptyCondition.while(`adding join`).because(
			fmt.Errorf(`no conditions for %v %q`, strings.ToLower(kind), table),
		))
	}
	self.join = append(self.join, kind+` `+self.alias(quotePath(table, self.quoted), alias)+` ON `+cond)
	return self
}

// Replaces the WHERE conditions with the given one.
func (self *Select) Where(cond string) *Select {
	self.where = nil
	return self.AndWhere(cond)
}

// Appends a parenthesized condition. Conditions are AND-joined.
func (self *Select) AndWhere(cond string) *Select {
	self.where = append(self.where, `(`+cond+`)`)
	return self
}

// Replaces the GROUP BY list. `alias` is an optional table qualifier.
func (self *Select) GroupBy(field, alias string) *Select {
	self.groupBy = nil
	return self.AddGroupBy(field, alias)
}

func (self *Select) AddGroupBy(field, alias string) *Select {
	self.groupBy = append(self.groupBy, self.qualify(field, alias))
	return self
}

// Replaces the HAVING list. `alias` is an optional table qualifier, as for
// `.GroupBy`.
func (self *Select) Having(field, alias string) *Select {
	self.having = nil
	return self.AndHaving(field, alias)
}

// Appends to the HAVING list. Entries are rendered comma-separated.
func (self *Select) AndHaving(field, alias string) *Select {
	self.having = append(self.having, self.qualify(field, alias))
	return self
}

// Replaces the ORDER BY list.
func (self *Select) OrderBy(field string, dir Dir) *Select {
	self.orderBy = nil
	return self.AddOrderBy(field, dir)
}

func (self *Select) AddOrderBy(field string, dir Dir) *Select {
	self.orderBy = append(self.orderBy, dir.append(quotePath(field, self.quoted)))
	return self
}

// Sets LIMIT. The value is not validated; negative values render as-is.
func (self *Select) SetLimit(val int64) *Select {
	self.limit = &val
	return self
}

func (self *Select) ClearLimit() *Select {
	self.limit = nil
	return self
}

// Sets OFFSET. The value is not validated; negative values render as-is.
func (self *Select) SetOffset(val int64) *Select {
	self.offset = &val
	return self
}

func (self *Select) ClearOffset() *Select {
	self.offset = nil
	return self
}

/*
Registers a named parameter. The placeholder `:name` is expected to appear in
some condition or expression. Panics with `ErrDuplicateParameter` if the name
is already registered, including names copied from common table expressions.
*/
func (self *Select) AddParameter(name string, val Value) *Select {
	return self.AddParam(NewParam(name, val))
}

// Variant of `.AddParameter` that takes a ready-made `Param`.
func (self *Select) AddParam(val Param) *Select {
	const while = `adding parameter`
	name := val.Name()

	if isBlank(name) {
		panic(ErrInvalidInput.while(while).because(errf(`empty parameter name`)))
	}
	if self.params.Has(name) {
		self.rejectParam(name)
		panic(ErrDuplicateParameter.while(while).because(
			fmt.Errorf(`parameter %q is already registered`, name),
		))
	}

	if self.params == nil {
		self.params = Parameters{}
	}
	self.params[name] = val

	capitan.Emit(context.Background(), ParameterAdded,
		KeyParameter.Field(name),
		KeyType.Field(val.Type().String()))
	return self
}

func (self *Select) rejectParam(name string) {
	capitan.Emit(context.Background(), ParameterRejected,
		KeyParameter.Field(name))
}

// Implement `Query`. Returns a copy; mutating it doesn't affect the builder.
func (self *Select) Parameters() Parameters { return self.params.clone() }

/*
Implement `Query`. Renders the accumulated clauses into a single statement.
Empty clauses are omitted. Fails with `ErrMissingSelect` when nothing is
selected and with `ErrMissingFrom` when no source was set. Rendering doesn't
mutate the builder; repeated calls produce identical output.
*/
func (self *Select) Render() (string, error) {
	text, err := self.render()
	if err != nil {
		capitan.Emit(context.Background(), RenderFailed,
			KeyError.Field(err.Error()))
		return ``, err
	}

	capitan.Emit(context.Background(), QueryRendered,
		KeySQL.Field(text))
	return text, nil
}

// Shortcut for `Reify(self)`.
func (self *Select) Reify() (string, Parameters, error) { return Reify(self) }

func (self *Select) render() (string, error) {
	const while = `rendering select`

	if len(self.sel) == 0 {
		return ``, ErrMissingSelect.while(while)
	}
	if self.from == `` {
		return ``, ErrMissingFrom.while(while)
	}

	parts := make([]string, 0, 10+len(self.join))

	if len(self.with) > 0 {
		ctes := make([]string, len(self.with))
		for ind, val := range self.with {
			ctes[ind] = val.alias + ` AS (` + val.text + `)`
		}
		parts = append(parts, `WITH `+strings.Join(ctes, `, `))
	}

	parts = append(parts, `SELECT `+strings.Join(self.sel, `, `))
	parts = append(parts, `FROM `+self.from)
	parts = append(parts, self.join...)

	if len(self.where) > 0 {
		parts = append(parts, `WHERE `+strings.Join(self.where, ` AND `))
	}
	if len(self.groupBy) > 0 {
		parts = append(parts, `GROUP BY `+strings.Join(self.groupBy, `, `))
	}
	if len(self.having) > 0 {
		parts = append(parts, `HAVING `+strings.Join(self.having, `, `))
	}
	if len(self.orderBy) > 0 {
		parts = append(parts, `ORDER BY `+strings.Join(self.orderBy, `, `))
	}
	if self.limit != nil {
		parts = append(parts, `LIMIT `+strconv.FormatInt(*self.limit, 10))
	}
	if self.offset != nil {
		parts = append(parts, `OFFSET `+strconv.FormatInt(*self.offset, 10))
	}

	return strings.Join(parts, ` `), nil
}

// Renders `alias.field`, or just the field when there's no qualifier.
func (self *Select) qualify(field, alias string) string {
	if alias == `` {
		return quotePath(field, self.quoted)
	}
	return Quote(append(SplitPath(alias), SplitPath(field)...), self.quoted)
}

// Renders `expr AS alias`, or just the expression when there's no alias.
func (self *Select) alias(expr, alias string) string {
	if alias == `` {
		return expr
	}
	return expr + ` AS ` + quotePath(alias, self.quoted)
}
