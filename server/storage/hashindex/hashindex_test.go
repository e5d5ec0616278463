package hashindex

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhukovaskychina/reldb/server/storage/bufferpool"
	"github.com/zhukovaskychina/reldb/server/storage/catalog"
	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

func setup(t *testing.T) (*catalog.Catalog, *diskmanager.Manager, *bufferpool.Pool) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, catalog.Create(dir))
	cat, err := catalog.Open(dir)
	require.NoError(t, err)
	disk := diskmanager.New(dir)
	pool := bufferpool.New(disk, 8)
	return cat, disk, pool
}

func schema() tuple.Schema {
	return tuple.Schema{{Name: "k", Type: tuple.Int}, {Name: "v", Type: tuple.Int}}
}

func drain(t *testing.T, it interface {
	Next() (tuple.Tuple, error)
}) []tuple.Tuple {
	t.Helper()
	var out []tuple.Tuple
	for {
		tup, err := it.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, tup)
	}
}

func TestScanOnUnboundKeyIsEmpty(t *testing.T) {
	cat, disk, pool := setup(t)
	idx, err := CreateTemp(cat, disk, schema())
	require.NoError(t, err)

	got := drain(t, idx.Scan(pool, 42))
	assert.Empty(t, got)
}

func TestInsertThenScanExactMultiset(t *testing.T) {
	cat, disk, pool := setup(t)
	idx, err := CreateTemp(cat, disk, schema())
	require.NoError(t, err)

	require.NoError(t, idx.Insert(pool, 7, tuple.Tuple{tuple.IntDatum(1), tuple.IntDatum(100)}))
	require.NoError(t, idx.Insert(pool, 7, tuple.Tuple{tuple.IntDatum(2), tuple.IntDatum(200)}))
	require.NoError(t, idx.Insert(pool, 9, tuple.Tuple{tuple.IntDatum(3), tuple.IntDatum(300)}))

	bucket7 := drain(t, idx.Scan(pool, 7))
	assert.ElementsMatch(t, []tuple.Tuple{
		{tuple.IntDatum(1), tuple.IntDatum(100)},
		{tuple.IntDatum(2), tuple.IntDatum(200)},
	}, bucket7)

	bucket9 := drain(t, idx.Scan(pool, 9))
	assert.Equal(t, []tuple.Tuple{{tuple.IntDatum(3), tuple.IntDatum(300)}}, bucket9)
}

func TestInsertOverflowsChainIntoNewBlock(t *testing.T) {
	cat, disk, pool := setup(t)
	idx, err := CreateTemp(cat, disk, schema())
	require.NoError(t, err)

	const n = 850
	for i := 0; i < n; i++ {
		require.NoError(t, idx.Insert(pool, 3, tuple.Tuple{tuple.IntDatum(int32(i)), tuple.IntDatum(int32(i))}))
	}
	assert.Greater(t, idx.NumBlocks, uint32(1))

	got := drain(t, idx.Scan(pool, 3))
	assert.Len(t, got, n)
}

func TestInsertRejectsWrongArity(t *testing.T) {
	cat, disk, _ := setup(t)
	idx, err := CreateTemp(cat, disk, schema())
	require.NoError(t, err)

	err = idx.Insert(nil, 1, tuple.Tuple{tuple.IntDatum(1)})
	assert.ErrorIs(t, err, ErrInvalidTuple)
}

func TestDrop(t *testing.T) {
	cat, disk, pool := setup(t)
	idx, err := CreateTemp(cat, disk, schema())
	require.NoError(t, err)
	require.NoError(t, idx.Insert(pool, 1, tuple.Tuple{tuple.IntDatum(1), tuple.IntDatum(1)}))
	require.NoError(t, idx.Drop())
}
