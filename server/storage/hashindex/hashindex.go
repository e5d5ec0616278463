// Package hashindex implements the chained hash index: a fixed directory of
// 2^15 buckets, each the head of a chain of blocks linked via their Next
// field. It is used only as a transient, join-scoped build-side structure
// (see server/engine's Join operator) — secondary persistent indexes are
// out of scope.
package hashindex

import (
	"bytes"
	"encoding/binary"
	"path/filepath"

	"github.com/google/renameio"
	"github.com/pkg/errors"

	"github.com/zhukovaskychina/reldb/logger"
	"github.com/zhukovaskychina/reldb/server/storage/bufferpool"
	"github.com/zhukovaskychina/reldb/server/storage/catalog"
	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
	"github.com/zhukovaskychina/reldb/server/storage/page"
	"github.com/zhukovaskychina/reldb/server/storage/tableiter"
	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// NumBuckets is the fixed bucket directory size. Keys are 16 bits wide;
// Insert and Scan reduce a key modulo NumBuckets to pick its bucket.
const NumBuckets = 1 << 15

// noBucket marks an empty directory slot (Option<u32>::None on disk).
const noBucket = ^uint32(0)

// Index is a chained hash index over a fixed-width schema.
type Index struct {
	Inode     catalog.TableInode
	IsTemp    bool
	NumBlocks uint32
	Schema    tuple.Schema
	Buckets   [NumBuckets]uint32

	disk *diskmanager.Manager
}

func fileName(ino uint64) string { return diskmanager.PageID{Inode: ino}.FileName() }

// CreateTemp allocates a fresh, anonymous inode pair and an empty bucket
// directory. The caller is responsible for Drop-ing it once the join that
// owns it completes.
func CreateTemp(cat *catalog.Catalog, disk *diskmanager.Manager, schema tuple.Schema) (*Index, error) {
	inode, err := cat.AllocateInodePair()
	if err != nil {
		return nil, err
	}
	if err := disk.OpenFile(fileName(inode.DataIno)); err != nil {
		return nil, err
	}

	idx := &Index{Inode: inode, IsTemp: true, Schema: schema, disk: disk}
	for i := range idx.Buckets {
		idx.Buckets[i] = noBucket
	}
	if err := idx.writeHeader(); err != nil {
		return nil, err
	}
	logger.Logger.Debugf("hashindex: created temp index inode=%+v", inode)
	return idx, nil
}

func (idx *Index) headPath(dir string) string {
	return filepath.Join(dir, fileName(idx.Inode.HeadIno))
}

func (idx *Index) writeHeader() error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, idx.Inode.HeadIno)
	binary.Write(&buf, binary.LittleEndian, idx.Inode.DataIno)
	var tempByte byte
	if idx.IsTemp {
		tempByte = 1
	}
	buf.WriteByte(tempByte)
	binary.Write(&buf, binary.LittleEndian, idx.NumBlocks)
	for _, b := range idx.Buckets {
		binary.Write(&buf, binary.LittleEndian, b)
	}
	idx.Schema.Marshal(&buf)

	return errors.Wrap(
		renameio.WriteFile(idx.headPath(idx.disk.Dir), buf.Bytes(), 0o644),
		"hashindex: write header",
	)
}

// Insert buckets tup under key, appending overflow blocks and walking the
// chain to its tail as needed.
func (idx *Index) Insert(pool *bufferpool.Pool, key uint16, tup tuple.Tuple) error {
	if len(tup) != len(idx.Schema) {
		return ErrInvalidTuple
	}

	bucket := key % NumBuckets
	head := idx.Buckets[bucket]
	if head == noBucket {
		ord, err := idx.disk.AppendBlock(fileName(idx.Inode.DataIno))
		if err != nil {
			return err
		}
		idx.NumBlocks++
		idx.Buckets[bucket] = ord
		if err := idx.writeHeader(); err != nil {
			return err
		}
		head = ord
	}
	return idx.insertInto(pool, head, tup)
}

func (idx *Index) insertInto(pool *bufferpool.Pool, blockOrd uint32, tup tuple.Tuple) error {
	id := diskmanager.PageID{Inode: idx.Inode.DataIno, Ordinal: blockOrd}
	f, err := pool.Fetch(id)
	if err != nil {
		return err
	}

	f.Mu.Lock()
	addErr := f.Page().Add(tup, idx.Schema)
	f.Mu.Unlock()
	if addErr == nil {
		return nil
	}
	if !errors.Is(addErr, page.ErrOutOfBounds) {
		return addErr
	}

	f.Mu.RLock()
	next, hasNext := f.Page().GetNext()
	f.Mu.RUnlock()
	if hasNext {
		return idx.insertInto(pool, next, tup)
	}

	newOrd, err := idx.disk.AppendBlock(fileName(idx.Inode.DataIno))
	if err != nil {
		return err
	}
	idx.NumBlocks++
	f.Mu.Lock()
	f.Page().SetNext(newOrd)
	f.Mu.Unlock()
	if err := idx.writeHeader(); err != nil {
		return err
	}
	return idx.insertInto(pool, newOrd, tup)
}

// Scan returns every tuple bucketed under key, following the chain's Next
// links. A key with no bucket yields zero tuples.
func (idx *Index) Scan(pool *bufferpool.Pool, key uint16) *tableiter.Iter {
	head := idx.Buckets[key%NumBuckets]
	if head == noBucket {
		return tableiter.Empty(idx.Schema)
	}
	onPageEnd := func(_ uint32, pg *page.Page) tableiter.PageEnd {
		next, ok := pg.GetNext()
		if !ok {
			return tableiter.PageEnd{Done: true}
		}
		return tableiter.PageEnd{NextBlock: next}
	}
	return tableiter.New(pool, idx.Inode.DataIno, idx.Schema, head, onPageEnd)
}

// Drop deletes the index's backing files. Every Index is join-scoped and
// temporary, so this is always the right cleanup once the owning join
// iterator is exhausted or discarded.
func (idx *Index) Drop() error {
	if err := idx.disk.DeleteFile(fileName(idx.Inode.DataIno)); err != nil {
		return err
	}
	return idx.disk.DeleteFile(fileName(idx.Inode.HeadIno))
}
