package qext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect_example(t *testing.T) {
	query := NewSelect().
		From(`orders`, `o`).
		Select(`id`, `o`).
		Where(`o.status = :s`).
		AddParameter(`s`, String(`paid`)).
		SetLimit(10)

	assert.Equal(t, `SELECT o.id FROM orders AS o WHERE (o.status = :s) LIMIT 10`, render(t, query))

	params := query.Parameters()
	require.Equal(t, []string{`s`}, params.Names())
	assert.Equal(t, String(`paid`), params[`s`].Value())
	assert.Equal(t, TypeString, params[`s`].Type())
}

func TestSelect_minimal(t *testing.T) {
	assert.Equal(t, `SELECT id FROM orders`, render(t, ordersQuery()))
	assert.Equal(t, `SELECT * FROM orders AS o`, render(t, NewSelect().Select(`*`, ``).From(`orders`, `o`)))
}

func TestSelect_clauseOrder(t *testing.T) {
	const want = `WITH recent AS (SELECT id FROM orders) ` +
		`SELECT o.customer_id, count(*) AS total ` +
		`FROM orders AS o ` +
		`INNER JOIN customers AS c ON (c.id = o.customer_id) ` +
		`LEFT JOIN refunds AS r ON (r.order_id = o.id) AND (r.state = :state) ` +
		`WHERE (o.status = :status) AND (o.id IN (SELECT id FROM recent)) ` +
		`GROUP BY o.customer_id ` +
		`HAVING count(*) > :min ` +
		`ORDER BY o.customer_id DESC, total ` +
		`LIMIT 20 ` +
		`OFFSET 40`

	// Deliberately out of clause order.
	query := NewSelect().
		SetOffset(40).
		OrderBy(`o.customer_id`, DirDesc).
		AddOrderBy(`total`, DirNone).
		Having(`count(*) > :min`, ``).
		GroupBy(`customer_id`, `o`).
		AndWhere(`o.status = :status`).
		AndWhere(`o.id IN (SELECT id FROM recent)`).
		LeftJoin(`refunds`, `r`, `r.order_id = o.id`, ``, `r.state = :state`).
		SetLimit(20).
		Select(`customer_id`, `o`).
		AddSelectAs(`count(*)`, `total`).
		InnerJoin(`customers`, `c`, `c.id = o.customer_id`).
		From(`orders`, `o`).
		With(ordersQuery(), `recent`).
		AddParameter(`status`, String(`paid`)).
		AddParameter(`state`, String(`open`)).
		AddParameter(`min`, Int(2))

	assert.Equal(t, want, render(t, query))
	assert.Equal(t, want, render(t, query), `rendering must be idempotent`)
}

func TestSelect_replaceAndAppend(t *testing.T) {
	query := ordersQuery().
		AddSelect(`status`, ``).
		Where(`a`).
		AndWhere(`b`).
		GroupBy(`status`, ``).
		AddGroupBy(`id`, ``).
		Having(`x`, ``).
		AndHaving(`y`, ``).
		OrderBy(`status`, DirAsc).
		AddOrderBy(`id`, DirDesc)

	assert.Equal(t,
		`SELECT id, status FROM orders WHERE (a) AND (b) GROUP BY status, id HAVING x, y ORDER BY status ASC, id DESC`,
		render(t, query),
	)

	query.
		Select(`total`, ``).
		Where(`c`).
		GroupBy(`total`, ``).
		Having(`z`, ``).
		OrderBy(`total`, DirNone).
		From(`archive`, `a`)

	assert.Equal(t,
		`SELECT total FROM archive AS a WHERE (c) GROUP BY total HAVING z ORDER BY total`,
		render(t, query),
	)
}

func TestSelect_selectAs(t *testing.T) {
	query := NewSelect().
		SelectAs(`o.id`, `order_id`).
		AddSelect(`name`, `c`).
		From(`orders`, `o`)
	assert.Equal(t, `SELECT o.id AS order_id, c.name FROM orders AS o`, render(t, query))

	query.SelectAs(`count(*)`, ``)
	assert.Equal(t, `SELECT count(*) FROM orders AS o`, render(t, query))
}

func TestSelect_limitOffset(t *testing.T) {
	query := ordersQuery().SetLimit(-1).SetOffset(-5)
	assert.Equal(t, `SELECT id FROM orders LIMIT -1 OFFSET -5`, render(t, query))

	query.SetLimit(0)
	assert.Equal(t, `SELECT id FROM orders LIMIT 0 OFFSET -5`, render(t, query))

	query.ClearLimit()
	assert.Equal(t, `SELECT id FROM orders OFFSET -5`, render(t, query))

	query.ClearOffset()
	assert.Equal(t, `SELECT id FROM orders`, render(t, query))
}

func TestSelect_quoted(t *testing.T) {
	query := NewSelect().
		Quoted(true).
		Select(`id`, `o`).
		AddSelectAs(`total`, `sum`).
		From(`shop.order`, `o`).
		InnerJoin(`customers`, `c`, `c.id = o.customer_id`).
		GroupBy(`id`, `o`).
		OrderBy(`o.id`, DirAsc)

	assert.Equal(t,
		"SELECT `o`.`id`, `total` AS `sum` FROM `shop`.`order` AS `o` "+
			"INNER JOIN `customers` AS `c` ON (c.id = o.customer_id) "+
			"GROUP BY `o`.`id` ORDER BY `o`.`id` ASC",
		render(t, query),
	)
}

func TestSelect_quotedPerCall(t *testing.T) {
	query := NewSelect().
		Quoted(true).From(`order`, `o`).
		Quoted(false).Select(`count(*)`, ``)

	assert.Equal(t, "SELECT count(*) FROM `order` AS `o`", render(t, query))
}

func TestSelect_join(t *testing.T) {
	query := ordersQuery().
		InnerJoin(`customers`, `c`, ``, `c.id = customer_id`, "  ").
		LeftJoin(`shop.refunds`, ``, `refunds.order_id = orders.id`)

	assert.Equal(t,
		`SELECT id FROM orders INNER JOIN customers AS c ON (c.id = customer_id) LEFT JOIN shop.refunds ON (refunds.order_id = orders.id)`,
		render(t, query),
	)
}

func TestSelect_joinWithoutConditions(t *testing.T) {
	query := ordersQuery()

	err := Catch(func() { query.InnerJoin(`customers`, `c`) })
	assert.ErrorIs(t, err, ErrEmptyCondition)

	err = Catch(func() { query.LeftJoin(`customers`, `c`, ``, " \t") })
	assert.ErrorIs(t, err, ErrEmptyCondition)

	assert.Equal(t, `SELECT id FROM orders`, render(t, query), `failed joins must not be recorded`)
}

func TestSelect_fromBlank(t *testing.T) {
	query := ordersQuery()

	err := Catch(func() { query.From(``, `o`) })
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = Catch(func() { query.From(" \t", ``) })
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, `SELECT id FROM orders`, render(t, query))

	_, err = NewSelect().Select(`id`, ``).Render()
	assert.ErrorIs(t, err, ErrMissingFrom)
}

func TestSelect_havingQualified(t *testing.T) {
	query := NewSelect().
		Select(`customer_id`, `o`).
		From(`orders`, `o`).
		GroupBy(`customer_id`, `o`).
		Having(`total`, `o`).
		AndHaving(`count(*) > 1`, ``)

	assert.Equal(t,
		`SELECT o.customer_id FROM orders AS o GROUP BY o.customer_id HAVING o.total, count(*) > 1`,
		render(t, query),
	)

	query.Quoted(true).Having(`total`, `o`)
	assert.Equal(t,
		"SELECT o.customer_id FROM orders AS o GROUP BY o.customer_id HAVING `o`.`total`",
		render(t, query),
	)
}

func TestSelect_missingClauses(t *testing.T) {
	_, err := NewSelect().Select(`id`, ``).Render()
	assert.ErrorIs(t, err, ErrMissingFrom)

	_, err = NewSelect().From(`orders`, ``).Render()
	assert.ErrorIs(t, err, ErrMissingSelect)

	var query Select
	_, err = query.Render()
	assert.ErrorIs(t, err, ErrMissingSelect)
}

func TestSelect_zeroValue(t *testing.T) {
	var query Select
	query.Select(`id`, ``).From(`orders`, ``).AddParameter(`one`, Int(1))

	assert.Equal(t, `SELECT id FROM orders`, render(t, &query))
	assert.Equal(t, []string{`one`}, query.Parameters().Names())
}

func TestSelect_parameters(t *testing.T) {
	query := ordersQuery().
		AddParameter(`status`, String(`paid`)).
		AddParameter(`since`, MakeDate(2024, time.January, 1)).
		AddParameter(`ids`, Array{Int(1), Int(2)}).
		AddParam(NewParam(`deleted`, nil))

	params := query.Parameters()
	assert.Equal(t, []string{`deleted`, `ids`, `since`, `status`}, params.Names())
	assert.Equal(t, TypeDate, params[`since`].Type())
	assert.Equal(t, TypeArray, params[`ids`].Type())
	assert.Equal(t, Null{}, params[`deleted`].Value())

	delete(params, `status`)
	assert.True(t, query.Parameters().Has(`status`), `parameters must be returned as a copy`)

	assert.NotNil(t, NewSelect().Parameters())
	assert.Empty(t, NewSelect().Parameters())
}

func TestSelect_duplicateParameter(t *testing.T) {
	query := ordersQuery().AddParameter(`s`, String(`paid`))

	err := Catch(func() { query.AddParameter(`s`, String(`open`)) })
	require.ErrorIs(t, err, ErrDuplicateParameter)
	assert.Contains(t, err.Error(), `"s"`)

	assert.Equal(t, String(`paid`), query.Parameters()[`s`].Value(), `first registration must survive`)

	require.NoError(t, Catch(func() { query.AddParameter(`t`, String(`open`)) }))
	assert.Equal(t, []string{`s`, `t`}, query.Parameters().Names())
}

func TestSelect_invalidParameterName(t *testing.T) {
	err := Catch(func() { ordersQuery().AddParameter(``, Int(1)) })
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = Catch(func() { ordersQuery().AddParameter(`  `, Int(1)) })
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSelect_with(t *testing.T) {
	inner := NewSelect().
		Select(`id`, ``).
		From(`orders`, ``).
		Where(`status = :p1`).
		AddParameter(`p1`, String(`paid`))

	outer := NewSelect().
		AddWith(inner, `cte1`).
		Select(`id`, ``).
		From(`cte1`, ``)

	assert.Equal(t,
		`WITH cte1 AS (SELECT id FROM orders WHERE (status = :p1)) SELECT id FROM cte1`,
		render(t, outer),
	)

	param, ok := outer.Parameters().Get(`p1`)
	require.True(t, ok)
	assert.Equal(t, String(`paid`), param.Value())
	assert.Equal(t, TypeString, param.Type())
}

func TestSelect_withCopiesState(t *testing.T) {
	inner := ordersQuery().Where(`id > :min`).AddParameter(`min`, Int(10))
	outer := NewSelect().AddWith(inner, `cte1`).Select(`id`, ``).From(`cte1`, ``)

	inner.AndWhere(`id < :max`).AddParameter(`max`, Int(20))

	assert.Equal(t,
		`WITH cte1 AS (SELECT id FROM orders WHERE (id > :min)) SELECT id FROM cte1`,
		render(t, outer),
	)
	assert.Equal(t, []string{`min`}, outer.Parameters().Names())
	assert.Equal(t, []string{`max`, `min`}, inner.Parameters().Names())
}

func TestSelect_withMultiple(t *testing.T) {
	query := NewSelect().
		Quoted(true).
		AddWith(ordersQuery(), `first`).
		AddWith(Raw{Text: `SELECT 1`}, `app.second`).
		Quoted(false).
		Select(`id`, ``).
		From(`first`, ``)

	assert.Equal(t,
		"WITH `first` AS (SELECT id FROM orders), `app`.`second` AS (SELECT 1) SELECT id FROM first",
		render(t, query),
	)
}

func TestSelect_withReplaceReleasesParameters(t *testing.T) {
	query := NewSelect().
		AddWith(ordersQuery().Where(`id = :id`).AddParameter(`id`, Int(1)), `one`).
		AddWith(ordersQuery().Where(`id = :other`).AddParameter(`other`, Int(2)), `two`).
		AddParameter(`own`, Int(3)).
		Select(`id`, ``).
		From(`one`, ``)

	assert.Equal(t, []string{`id`, `other`, `own`}, query.Parameters().Names())

	query.With(ordersQuery().Where(`id = :id`).AddParameter(`id`, Int(4)), `three`)

	assert.Equal(t,
		`WITH three AS (SELECT id FROM orders WHERE (id = :id)) SELECT id FROM one`,
		render(t, query),
	)
	assert.Equal(t, []string{`id`, `own`}, query.Parameters().Names())
	assert.Equal(t, Int(4), query.Parameters()[`id`].Value())
}

func TestSelect_withDuplicateParameter(t *testing.T) {
	t.Run(`direct then embedded`, func(t *testing.T) {
		query := NewSelect().AddParameter(`p1`, Int(1))
		inner := ordersQuery().AddParameter(`p1`, Int(2)).AddParameter(`p0`, Int(0))

		err := Catch(func() { query.AddWith(inner, `cte1`) })
		require.ErrorIs(t, err, ErrDuplicateParameter)

		query.Select(`id`, ``).From(`orders`, ``)
		assert.Equal(t, `SELECT id FROM orders`, render(t, query), `rejected expression must not be recorded`)
		assert.Equal(t, []string{`p1`}, query.Parameters().Names(), `no parameters must be copied`)
		assert.Equal(t, Int(1), query.Parameters()[`p1`].Value())
	})

	t.Run(`embedded then direct`, func(t *testing.T) {
		query := NewSelect().AddWith(ordersQuery().AddParameter(`p1`, Int(1)), `cte1`)

		err := Catch(func() { query.AddParameter(`p1`, Int(2)) })
		assert.ErrorIs(t, err, ErrDuplicateParameter)
	})

	t.Run(`between embedded`, func(t *testing.T) {
		query := NewSelect().AddWith(ordersQuery().AddParameter(`p1`, Int(1)), `cte1`)

		err := Catch(func() { query.AddWith(ordersQuery().AddParameter(`p1`, Int(2)), `cte2`) })
		assert.ErrorIs(t, err, ErrDuplicateParameter)
	})

	t.Run(`different names`, func(t *testing.T) {
		query := NewSelect().
			AddParameter(`p1`, Int(1)).
			AddWith(ordersQuery().AddParameter(`p2`, Int(2)), `cte1`)

		assert.Equal(t, []string{`p1`, `p2`}, query.Parameters().Names())
	})
}

func TestSelect_withReplaceDuplicateParameter(t *testing.T) {
	query := ordersQuery().
		AddWith(ordersQuery().Where(`id = :p1`).AddParameter(`p1`, Int(1)), `one`).
		AddParameter(`own`, Int(2))

	before := render(t, query)

	err := Catch(func() {
		query.With(ordersQuery().Where(`id = :own`).AddParameter(`own`, Int(3)), `two`)
	})
	require.ErrorIs(t, err, ErrDuplicateParameter)

	assert.Equal(t, before, render(t, query), `replaced expressions must survive`)
	assert.Equal(t, []string{`own`, `p1`}, query.Parameters().Names())
	assert.Equal(t, Int(2), query.Parameters()[`own`].Value())
}

func TestSelect_withMismatchedParameterKey(t *testing.T) {
	query := ordersQuery().AddParameter(`b`, Int(1))

	err := Catch(func() {
		query.AddWith(Raw{
			Text:   `SELECT 1`,
			Params: Parameters{`a`: NewParam(`b`, Int(2))},
		}, `cte`)
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, `SELECT id FROM orders`, render(t, query))
	assert.Equal(t, []string{`b`}, query.Parameters().Names())

	err = Catch(func() {
		query.AddWith(Raw{
			Text:   `SELECT 1`,
			Params: Parameters{``: NewParam(``, Int(2))},
		}, `cte`)
	})
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, `SELECT id FROM orders`, render(t, query))
}

func TestSelect_withInvalid(t *testing.T) {
	err := Catch(func() { NewSelect().AddWith(nil, `cte1`) })
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = Catch(func() { NewSelect().AddWith(ordersQuery(), ` `) })
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = Catch(func() { NewSelect().AddWith(NewSelect(), `cte1`) })
	assert.ErrorIs(t, err, ErrMissingSelect)

	err = Catch(func() { NewSelect().AddWith(Raw{}, `cte1`) })
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSelect_nested(t *testing.T) {
	deepest := ordersQuery().Where(`total > :min`).AddParameter(`min`, Float(9.5))
	middle := NewSelect().AddWith(deepest, `big`).Select(`id`, ``).From(`big`, ``)
	outer := NewSelect().AddWith(middle, `wrapped`).Select(`id`, ``).From(`wrapped`, ``)

	assert.Equal(t,
		`WITH wrapped AS (WITH big AS (SELECT id FROM orders WHERE (total > :min)) SELECT id FROM big) SELECT id FROM wrapped`,
		render(t, outer),
	)
	assert.Equal(t, Float(9.5), outer.Parameters()[`min`].Value())
}

func TestSelect_Reify(t *testing.T) {
	text, params, err := ordersQuery().Where(`id = :id`).AddParameter(`id`, Int(7)).Reify()
	require.NoError(t, err)
	assert.Equal(t, `SELECT id FROM orders WHERE (id = :id)`, text)
	assert.Equal(t, int64(7), params[`id`].Value().Native())
}
