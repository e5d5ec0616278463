// Package tableiter implements the shared pull-model cursor that walks a
// chain of blocks belonging to either a row table's heap or a hash-index
// bucket, yielding non-tombstone tuples in block-ordinal-major,
// slot-index-minor order. The two callers differ only in how they decide
// what block comes after the current one runs out of slots; that decision
// is injected as an OnPageEnd hook.
package tableiter

import (
	"io"

	"github.com/pkg/errors"

	"github.com/zhukovaskychina/reldb/server/storage/bufferpool"
	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
	"github.com/zhukovaskychina/reldb/server/storage/page"
	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// PageEnd is returned by an OnPageEnd hook once the current block's slots
// are exhausted.
type PageEnd struct {
	// NextBlock is the ordinal to continue from. Ignored if Done is true.
	NextBlock uint32
	// Done reports that iteration has reached the end of the chain.
	Done bool
}

// OnPageEnd decides what happens after blockNum's slots run out. It is
// given the just-exhausted page so a hash-index chain can read its Next
// link before the iterator moves on.
type OnPageEnd func(blockNum uint32, pg *page.Page) PageEnd

// Iter walks (inode, block_num, slot_idx) triples through the buffer pool,
// decoding each non-tombstone payload against schema.
type Iter struct {
	pool      *bufferpool.Pool
	inode     uint64
	schema    tuple.Schema
	onPageEnd OnPageEnd

	blockNum uint32
	slotIdx  uint16
	done     bool
}

// New returns an iterator starting at (startBlock, slot 0).
func New(pool *bufferpool.Pool, inode uint64, schema tuple.Schema, startBlock uint32, onPageEnd OnPageEnd) *Iter {
	return &Iter{
		pool:      pool,
		inode:     inode,
		schema:    schema,
		onPageEnd: onPageEnd,
		blockNum:  startBlock,
	}
}

// Empty returns an iterator that yields io.EOF immediately, for a chain
// with no blocks at all (an empty table, or a hash bucket on an unbound
// key).
func Empty(schema tuple.Schema) *Iter {
	return &Iter{schema: schema, done: true}
}

// Next returns the next non-tombstone tuple, decoded against schema, or
// io.EOF once the chain is exhausted.
func (it *Iter) Next() (tuple.Tuple, error) {
	if it.done {
		return nil, io.EOF
	}
	width := uint16(it.schema.Width())
	for {
		id := diskmanager.PageID{Inode: it.inode, Ordinal: it.blockNum}
		f, err := it.pool.Fetch(id)
		if err != nil {
			return nil, errors.Wrap(err, "tableiter: fetch")
		}

		f.Mu.RLock()
		pg := f.Page()
		payload, readErr := pg.Read(it.slotIdx, width)
		f.Mu.RUnlock()

		if readErr != nil {
			if !errors.Is(readErr, page.ErrOutOfBounds) {
				return nil, readErr
			}
			end := it.onPageEnd(it.blockNum, pg)
			if end.Done {
				it.done = true
				return nil, io.EOF
			}
			it.blockNum = end.NextBlock
			it.slotIdx = 0
			continue
		}

		it.slotIdx++
		if payload == nil {
			// Tombstoned slot: skip silently.
			continue
		}
		return tuple.Decode(it.schema, payload)
	}
}

// Schema returns the schema tuples are decoded against.
func (it *Iter) Schema() tuple.Schema { return it.schema }
