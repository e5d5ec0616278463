// Package table implements the row table: a heap of linked data blocks
// holding fixed-width tuples under a schema, with append-only insertion and
// a pull-based scan.
package table

import (
	"bytes"
	"encoding/binary"
	"os"
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

// Table is a heap of linked data blocks: tuples are appended into the last
// block, and on overflow a new block is appended and the insert retries.
// There is no in-place reclamation.
type Table struct {
	Inode     catalog.TableInode
	IsTemp    bool
	NumBlocks uint32
	Schema    tuple.Schema

	disk *diskmanager.Manager
}

func fileName(ino uint64) string { return diskmanager.PageID{Inode: ino}.FileName() }

// Create allocates a fresh inode pair via cat (which creates the empty data
// and head files), writes the table header, and registers name in the
// catalog.
func Create(cat *catalog.Catalog, disk *diskmanager.Manager, name string, schema tuple.Schema) (*Table, error) {
	return create(cat, disk, name, schema, false)
}

// CreateTemp is like Create but the table is anonymous and not enrolled in
// the catalog's persistent name->inode list; its files are deleted on Drop.
func CreateTemp(cat *catalog.Catalog, disk *diskmanager.Manager, schema tuple.Schema) (*Table, error) {
	return create(cat, disk, "", schema, true)
}

func create(cat *catalog.Catalog, disk *diskmanager.Manager, name string, schema tuple.Schema, temp bool) (*Table, error) {
	inode, err := cat.AllocateInodePair()
	if err != nil {
		return nil, err
	}
	if err := disk.OpenFile(fileName(inode.DataIno)); err != nil {
		return nil, err
	}

	qualified := schema
	if !temp {
		qualified = schema.Qualify(name)
	}

	t := &Table{Inode: inode, IsTemp: temp, Schema: qualified, disk: disk}
	if err := t.writeHeader(); err != nil {
		return nil, err
	}

	if !temp {
		if err := cat.Register(name, inode); err != nil {
			return nil, err
		}
		if err := cat.Save(); err != nil {
			return nil, err
		}
	}
	logger.Logger.Debugf("table: created %q inode=%+v temp=%v", name, inode, temp)
	return t, nil
}

// Open fetches a table previously created under name.
func Open(cat *catalog.Catalog, disk *diskmanager.Manager, name string) (*Table, error) {
	inode, ok := cat.Lookup(name)
	if !ok {
		return nil, catalog.ErrTableDoesNotExist
	}
	raw, err := os.ReadFile(filepath.Join(cat.Dir(), fileName(inode.HeadIno)))
	if err != nil {
		return nil, errors.Wrap(err, "table: open header")
	}
	t := &Table{Inode: inode, disk: disk}
	if err := t.unmarshalHeader(raw); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) headPath(dir string) string {
	return filepath.Join(dir, fileName(t.Inode.HeadIno))
}

func (t *Table) writeHeader() error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, t.Inode.HeadIno)
	binary.Write(&buf, binary.LittleEndian, t.Inode.DataIno)
	var tempByte byte
	if t.IsTemp {
		tempByte = 1
	}
	buf.WriteByte(tempByte)
	binary.Write(&buf, binary.LittleEndian, t.NumBlocks)
	t.Schema.Marshal(&buf)

	return errors.Wrap(
		renameio.WriteFile(t.headPath(t.disk.Dir), buf.Bytes(), 0o644),
		"table: write header",
	)
}

func (t *Table) unmarshalHeader(raw []byte) error {
	r := bytes.NewReader(raw)
	if err := binary.Read(r, binary.LittleEndian, &t.Inode.HeadIno); err != nil {
		return err
	}
	if err := binary.Read(r, binary.LittleEndian, &t.Inode.DataIno); err != nil {
		return err
	}
	var tempByte [1]byte
	if _, err := r.Read(tempByte[:]); err != nil {
		return err
	}
	t.IsTemp = tempByte[0] != 0
	if err := binary.Read(r, binary.LittleEndian, &t.NumBlocks); err != nil {
		return err
	}
	schema, err := tuple.UnmarshalSchema(r)
	if err != nil {
		return err
	}
	t.Schema = schema
	return nil
}

// Add appends tup into the last block, growing the heap on overflow.
// Fails ErrInvalidTuple on schema mismatch.
func (t *Table) Add(pool *bufferpool.Pool, tup tuple.Tuple) error {
	if len(tup) != len(t.Schema) {
		return ErrInvalidTuple
	}
	if t.NumBlocks == 0 {
		if err := t.appendBlock(); err != nil {
			return err
		}
	}

	id := diskmanager.PageID{Inode: t.Inode.DataIno, Ordinal: t.NumBlocks - 1}
	f, err := pool.Fetch(id)
	if err != nil {
		return err
	}
	f.Mu.Lock()
	err = f.Page().Add(tup, t.Schema)
	f.Mu.Unlock()
	if err == nil {
		return nil
	}
	if !errors.Is(err, page.ErrOutOfBounds) {
		return err
	}
	if err := t.appendBlock(); err != nil {
		return err
	}
	return t.Add(pool, tup)
}

// Iter returns a pull-model cursor over every non-tombstone tuple in the
// heap, in block-ordinal-major, slot-index-minor order. A scan of an empty
// table (NumBlocks == 0) yields zero tuples immediately.
func (t *Table) Iter(pool *bufferpool.Pool) *tableiter.Iter {
	if t.NumBlocks == 0 {
		return tableiter.Empty(t.Schema)
	}
	numBlocks := t.NumBlocks
	onPageEnd := func(blockNum uint32, _ *page.Page) tableiter.PageEnd {
		next := blockNum + 1
		if next >= numBlocks {
			return tableiter.PageEnd{Done: true}
		}
		return tableiter.PageEnd{NextBlock: next}
	}
	return tableiter.New(pool, t.Inode.DataIno, t.Schema, 0, onPageEnd)
}

func (t *Table) appendBlock() error {
	if _, err := t.disk.AppendBlock(fileName(t.Inode.DataIno)); err != nil {
		return err
	}
	t.NumBlocks++
	return t.writeHeader()
}

// Drop deletes the table's files. Intended for temp tables, whose files
// are not referenced by the catalog's persistent name->inode list.
func (t *Table) Drop() error {
	if err := t.disk.DeleteFile(fileName(t.Inode.DataIno)); err != nil {
		return err
	}
	return t.disk.DeleteFile(fileName(t.Inode.HeadIno))
}
