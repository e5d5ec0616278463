package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Create(dir))

	c, err := Open(dir)
	require.NoError(t, err)

	inode, err := c.AllocateInodePair()
	require.NoError(t, err)
	assert.NotEqual(t, inode.HeadIno, inode.DataIno)

	require.NoError(t, c.Register("t", inode))
	require.NoError(t, c.Save())

	reopened, err := Open(dir)
	require.NoError(t, err)
	got, ok := reopened.Lookup("t")
	assert.True(t, ok)
	assert.Equal(t, inode, got)
}

func TestRegisterDuplicateName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Create(dir))
	c, err := Open(dir)
	require.NoError(t, err)

	inode, err := c.AllocateInodePair()
	require.NoError(t, err)
	require.NoError(t, c.Register("t", inode))

	inode2, err := c.AllocateInodePair()
	require.NoError(t, err)
	err = c.Register("t", inode2)
	assert.ErrorIs(t, err, ErrTableExists)
}

func TestLookupMissing(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Create(dir))
	c, err := Open(dir)
	require.NoError(t, err)
	_, ok := c.Lookup("nope")
	assert.False(t, ok)
}

func TestAllocateInodePairUnique(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Create(dir))
	c, err := Open(dir)
	require.NoError(t, err)

	a, err := c.AllocateInodePair()
	require.NoError(t, err)
	b, err := c.AllocateInodePair()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}
