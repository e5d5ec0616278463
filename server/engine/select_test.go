package engine

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

func numSchema() tuple.Schema {
	return tuple.Schema{{Name: "t.a", Type: tuple.Int}, {Name: "t.b", Type: tuple.Int}}
}

func drainAll(t interface {
	Next() (tuple.Tuple, error)
}) ([]tuple.Tuple, error) {
	var out []tuple.Tuple
	for {
		tup, err := t.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, tup)
	}
}

func TestSelectFiltersAndKeepsSchema(t *testing.T) {
	child := newSliceOperator(numSchema(), []tuple.Tuple{
		{tuple.IntDatum(1), tuple.IntDatum(2)},
		{tuple.IntDatum(3), tuple.IntDatum(4)},
		{tuple.IntDatum(5), tuple.IntDatum(6)},
	})
	sel := &Select{Child: child, Pred: func(t tuple.Tuple) bool {
		return int32(t[0].(tuple.IntDatum)) > 2
	}}

	assert.Equal(t, child.Schema(), sel.Schema())
	got, err := drainAll(sel)
	require.NoError(t, err)
	assert.Equal(t, []tuple.Tuple{
		{tuple.IntDatum(3), tuple.IntDatum(4)},
		{tuple.IntDatum(5), tuple.IntDatum(6)},
	}, got)
}

func TestSelectYieldsNothingWhenAllFiltered(t *testing.T) {
	child := newSliceOperator(numSchema(), []tuple.Tuple{
		{tuple.IntDatum(1), tuple.IntDatum(2)},
	})
	sel := &Select{Child: child, Pred: func(tuple.Tuple) bool { return false }}
	got, err := drainAll(sel)
	require.NoError(t, err)
	assert.Empty(t, got)
}
