package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

func TestProjectKeepsChildOrderAndDropsUnmatched(t *testing.T) {
	schema := tuple.Schema{
		{Name: "t.a", Type: tuple.Int},
		{Name: "t.b", Type: tuple.Int},
		{Name: "t.c", Type: tuple.Int},
	}
	child := newSliceOperator(schema, []tuple.Tuple{
		{tuple.IntDatum(1), tuple.IntDatum(2), tuple.IntDatum(3)},
	})

	// Request c, a, and a nonexistent column, in that order: output must
	// follow the child's schema order (a, c), not the request order, and
	// silently drop "t.nope".
	p := NewProject(child, []string{"t.c", "t.a", "t.nope"})

	assert.Equal(t, tuple.Schema{
		{Name: "t.a", Type: tuple.Int},
		{Name: "t.c", Type: tuple.Int},
	}, p.Schema())

	got, err := drainAll(p)
	require.NoError(t, err)
	assert.Equal(t, []tuple.Tuple{{tuple.IntDatum(1), tuple.IntDatum(3)}}, got)
}

func TestProjectPropagatesChildExhaustion(t *testing.T) {
	child := newSliceOperator(numSchema(), nil)
	p := NewProject(child, []string{"t.a"})
	got, err := drainAll(p)
	require.NoError(t, err)
	assert.Empty(t, got)
}
