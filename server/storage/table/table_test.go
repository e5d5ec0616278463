package table

import (
	"io"
	"testing"

	"github.com/google/go-cmp/cmp"
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

func intSchema() tuple.Schema {
	return tuple.Schema{
		{Name: "a", Type: tuple.Int},
		{Name: "b", Type: tuple.Int},
	}
}

func TestCreateOpenRoundTrip(t *testing.T) {
	cat, disk, _ := setup(t)

	tbl, err := Create(cat, disk, "nums", intSchema())
	require.NoError(t, err)
	assert.Equal(t, tuple.Schema{
		{Name: "nums.a", Type: tuple.Int},
		{Name: "nums.b", Type: tuple.Int},
	}, tbl.Schema)

	reopened, err := Open(cat, disk, "nums")
	require.NoError(t, err)
	assert.Equal(t, tbl.Schema, reopened.Schema)
	assert.Equal(t, tbl.Inode, reopened.Inode)
	assert.Equal(t, tbl.NumBlocks, reopened.NumBlocks)
}

func TestOpenMissing(t *testing.T) {
	cat, disk, _ := setup(t)
	_, err := Open(cat, disk, "nope")
	assert.ErrorIs(t, err, catalog.ErrTableDoesNotExist)
}

func TestAddAndScan(t *testing.T) {
	cat, disk, pool := setup(t)
	tbl, err := Create(cat, disk, "nums", intSchema())
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		err := tbl.Add(pool, tuple.Tuple{tuple.IntDatum(i), tuple.IntDatum(i * 2)})
		require.NoError(t, err)
	}
	assert.Equal(t, uint32(1), tbl.NumBlocks)

	id := diskmanager.PageID{Inode: tbl.Inode.DataIno, Ordinal: 0}
	f, err := pool.Fetch(id)
	require.NoError(t, err)
	f.Mu.RLock()
	payload, err := f.Page().Read(3, uint16(tbl.Schema.Width()))
	f.Mu.RUnlock()
	require.NoError(t, err)
	require.NotNil(t, payload)

	got, err := tuple.Decode(tbl.Schema, payload)
	require.NoError(t, err)
	assert.Equal(t, tuple.Tuple{tuple.IntDatum(3), tuple.IntDatum(6)}, got)
}

func TestAddRejectsWrongArity(t *testing.T) {
	cat, disk, pool := setup(t)
	tbl, err := Create(cat, disk, "nums", intSchema())
	require.NoError(t, err)

	err = tbl.Add(pool, tuple.Tuple{tuple.IntDatum(1)})
	assert.ErrorIs(t, err, ErrInvalidTuple)
}

func TestAddOverflowsIntoNewBlock(t *testing.T) {
	cat, disk, pool := setup(t)
	tbl, err := Create(cat, disk, "nums", intSchema())
	require.NoError(t, err)

	// Each row takes 2(slot)+8(payload)=10 bytes; DataSize/10 ~= 817 fit in
	// one block, so 850 rows (33 more than that) force a second block.
	const n = 850
	for i := 0; i < n; i++ {
		require.NoError(t, tbl.Add(pool, tuple.Tuple{tuple.IntDatum(i), tuple.IntDatum(i)}))
	}
	assert.Equal(t, uint32(2), tbl.NumBlocks)

	reopened, err := Open(cat, disk, "nums")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), reopened.NumBlocks)
}

func TestIterSkipsTombstonesAndOrdersBySlot(t *testing.T) {
	cat, disk, pool := setup(t)
	tbl, err := Create(cat, disk, "nums", intSchema())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, tbl.Add(pool, tuple.Tuple{tuple.IntDatum(i), tuple.IntDatum(i)}))
	}

	id := diskmanager.PageID{Inode: tbl.Inode.DataIno, Ordinal: 0}
	f, err := pool.Fetch(id)
	require.NoError(t, err)
	f.Mu.Lock()
	require.NoError(t, f.Page().Delete(2))
	f.Mu.Unlock()

	it := tbl.Iter(pool)
	var got []int32
	for {
		tup, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, int32(tup[0].(tuple.IntDatum)))
	}
	assert.Equal(t, []int32{0, 1, 3, 4}, got)
}

// TestIterOrdersWholeHeapAcrossBlocks scans a table spanning two blocks
// and checks the full ordered result in one shot, since a positional
// mismatch anywhere in a long sequence is easy to miss with a manual loop.
func TestIterOrdersWholeHeapAcrossBlocks(t *testing.T) {
	cat, disk, pool := setup(t)
	tbl, err := Create(cat, disk, "nums", intSchema())
	require.NoError(t, err)

	const n = 900
	want := make([]tuple.Tuple, 0, n)
	for i := 0; i < n; i++ {
		row := tuple.Tuple{tuple.IntDatum(i), tuple.IntDatum(i * i)}
		require.NoError(t, tbl.Add(pool, row))
		want = append(want, row)
	}
	require.Equal(t, uint32(2), tbl.NumBlocks)

	it := tbl.Iter(pool)
	var got []tuple.Tuple
	for {
		tup, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, tup)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("scan order mismatch (-want +got):\n%s", diff)
	}
}

func TestIterEmptyTableYieldsNothing(t *testing.T) {
	cat, disk, pool := setup(t)
	tbl, err := Create(cat, disk, "nums", intSchema())
	require.NoError(t, err)

	it := tbl.Iter(pool)
	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
}

// S6 — a dirty page evicted from a single-frame pool must still be durable:
// writing table B forces table A's page out, and a fresh pool opened after
// the old one is flushed must still see A's row.
func TestEvictedDirtyPageSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, catalog.Create(dir))
	cat, err := catalog.Open(dir)
	require.NoError(t, err)
	disk := diskmanager.New(dir)
	pool := bufferpool.New(disk, 1)

	a, err := Create(cat, disk, "a", intSchema())
	require.NoError(t, err)
	b, err := Create(cat, disk, "b", intSchema())
	require.NoError(t, err)

	require.NoError(t, a.Add(pool, tuple.Tuple{tuple.IntDatum(7), tuple.IntDatum(8)}))
	// Touching b's page 0 with a one-frame pool forces a's frame out.
	require.NoError(t, b.Add(pool, tuple.Tuple{tuple.IntDatum(1), tuple.IntDatum(2)}))
	require.NoError(t, pool.Flush())

	freshPool := bufferpool.New(disk, 8)
	reopenedA, err := Open(cat, disk, "a")
	require.NoError(t, err)

	it := reopenedA.Iter(freshPool)
	tup, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, tuple.Tuple{tuple.IntDatum(7), tuple.IntDatum(8)}, tup)
	_, err = it.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestCreateTempAndDrop(t *testing.T) {
	cat, disk, pool := setup(t)
	tbl, err := CreateTemp(cat, disk, intSchema())
	require.NoError(t, err)
	assert.True(t, tbl.IsTemp)

	require.NoError(t, tbl.Add(pool, tuple.Tuple{tuple.IntDatum(1), tuple.IntDatum(2)}))

	_, ok := cat.Lookup("")
	assert.False(t, ok, "temp tables must not be registered in the catalog")

	require.NoError(t, tbl.Drop())
}
