package qext

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type (
	B  = testing.B
	T  = testing.T
	TB = testing.TB
)

func render(t TB, query Query) string {
	t.Helper()
	text, err := query.Render()
	require.NoError(t, err)
	return text
}

// Minimal query, used where the content of the sub-query doesn't matter.
func ordersQuery() *Select {
	return NewSelect().Select(`id`, ``).From(`orders`, ``)
}
