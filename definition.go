package qext

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

/*
Declarative description of a select, decodable from YAML. `.Build` replays it
through the fluent `Select` API, so a definition and the equivalent chain of
method calls render identically. Example document:

	with:
	  - alias: paid
	    query:
	      select: [{field: id}]
	      from: {table: orders}
	      where: ["status = :status"]
	      parameters:
	        - {name: status, type: string, value: paid}
	select:
	  - {field: id, table: p}
	from: {table: paid, alias: p}
	order_by:
	  - {field: p.id, dir: desc}
	limit: 10
*/
type Definition struct {
	Quoted     bool              `yaml:"quoted"`
	With       []CTEDefinition   `yaml:"with"`
	Select     []FieldDefinition `yaml:"select"`
	From       SourceDefinition  `yaml:"from"`
	Join       []JoinDefinition  `yaml:"join"`
	Where      []string          `yaml:"where"`
	GroupBy    []FieldDefinition `yaml:"group_by"`
	Having     []string          `yaml:"having"`
	OrderBy    []OrderDefinition `yaml:"order_by"`
	Limit      *int64            `yaml:"limit"`
	Offset     *int64            `yaml:"offset"`
	Parameters []ParamDefinition `yaml:"parameters"`
}

/*
Common table expression. Exactly one of `Query` (a nested definition) or `SQL`
(literal text) must be set. `Parameters` apply to `SQL` only; nested
definitions declare their own, and setting both is an error.
*/
type CTEDefinition struct {
	Alias      string            `yaml:"alias"`
	Query      *Definition       `yaml:"query"`
	SQL        string            `yaml:"sql"`
	Parameters []ParamDefinition `yaml:"parameters"`
}

// Selected or grouped field. `Table` is an optional qualifier, `As` an
// optional column alias.
type FieldDefinition struct {
	Field string `yaml:"field"`
	Table string `yaml:"table"`
	As    string `yaml:"as"`
}

type SourceDefinition struct {
	Table string `yaml:"table"`
	Alias string `yaml:"alias"`
}

// Join clause. `Kind` is "inner" (default) or "left".
type JoinDefinition struct {
	Kind  string   `yaml:"kind"`
	Table string   `yaml:"table"`
	Alias string   `yaml:"alias"`
	On    []string `yaml:"on"`
}

type OrderDefinition struct {
	Field string `yaml:"field"`
	Dir   Dir    `yaml:"dir"`
}

// Parameter whose raw value is converted via `ParseValue`.
type ParamDefinition struct {
	Name  string `yaml:"name"`
	Type  Type   `yaml:"type"`
	Value any    `yaml:"value"`
}

/*
Decodes a YAML definition. Unknown keys are rejected so that typos don't
silently drop clauses.
*/
func LoadDefinition(src io.Reader) (Definition, error) {
	var out Definition
	dec := yaml.NewDecoder(src)
	dec.KnownFields(true)

	err := dec.Decode(&out)
	if err != nil {
		return Definition{}, ErrInvalidInput.while(`decoding definition`).because(err)
	}
	return out, nil
}

// Replays the definition through a new `Select`, converting builder panics into
// errors.
func (self Definition) Build() (*Select, error) {
	var out *Select
	err := Catch(func() { out = self.build() })
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (self Definition) build() *Select {
	query := NewSelect().Quoted(self.Quoted)

	for _, val := range self.With {
		query.AddWith(val.query(), val.Alias)
	}

	for _, val := range self.Select {
		if val.As == `` {
			query.AddSelect(val.Field, val.Table)
		} else {
			query.AddSelectAs(val.path(), val.As)
		}
	}

	if self.From.Table != `` {
		query.From(self.From.Table, self.From.Alias)
	}

	for _, val := range self.Join {
		switch val.Kind {
		case ``, `inner`:
			query.InnerJoin(val.Table, val.Alias, val.On...)
		case `left`:
			query.LeftJoin(val.Table, val.Alias, val.On...)
		default:
			panic(ErrInvalidInput.while(`building join`).because(
				fmt.Errorf(`unrecognized join kind %q`, val.Kind),
			))
		}
	}

	for _, val := range self.Where {
		query.AndWhere(val)
	}
	for _, val := range self.GroupBy {
		query.AddGroupBy(val.Field, val.Table)
	}
	for _, val := range self.Having {
		query.AndHaving(val, ``)
	}
	for _, val := range self.OrderBy {
		query.AddOrderBy(val.Field, val.Dir)
	}

	if self.Limit != nil {
		query.SetLimit(*self.Limit)
	}
	if self.Offset != nil {
		query.SetOffset(*self.Offset)
	}

	for _, val := range self.Parameters {
		query.AddParam(val.param())
	}
	return query
}

func (self CTEDefinition) query() Query {
	switch {
	case self.Query != nil && self.SQL == ``:
		if len(self.Parameters) > 0 {
			panic(ErrInvalidInput.while(`building common table expression`).because(
				fmt.Errorf(`%q declares "parameters" next to "query"; declare them inside the query`, self.Alias),
			))
		}
		return self.Query.build()
	case self.Query == nil && self.SQL != ``:
		params := Parameters{}
		for _, val := range self.Parameters {
			param := val.param()
			if params.Has(param.Name()) {
				panic(ErrDuplicateParameter.while(`building common table expression`).because(
					fmt.Errorf(`parameter %q is declared twice in %q`, param.Name(), self.Alias),
				))
			}
			params[param.Name()] = param
		}
		return Raw{Text: self.SQL, Params: params}
	default:
		panic(ErrInvalidInput.while(`building common table expression`).because(
			fmt.Errorf(`%q must have exactly one of "query" or "sql"`, self.Alias),
		))
	}
}

func (self FieldDefinition) path() string {
	if self.Table == `` {
		return self.Field
	}
	return self.Table + `.` + self.Field
}

func (self ParamDefinition) param() Param {
	return NewParam(self.Name, try1(ParseValue(self.Type, self.Value)))
}
