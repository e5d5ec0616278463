// Package page implements slotted-page tuple operations layered on top of a
// block.Block: write/read/update/delete of fixed-width tuple payloads
// addressed by slot index, plus the dirty/next-link flag helpers used by
// the buffer pool and table/hash-index heap walkers.
package page

import (
	"encoding/binary"

	"github.com/zhukovaskychina/reldb/server/storage/block"
	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// Page is a Block resident somewhere (a buffer frame, or freshly read from
// disk), addressable by the caller's page_id. Page itself doesn't know its
// own id; the buffer pool tracks that association.
type Page struct {
	Block *block.Block
}

// New wraps a freshly allocated page with no attached block.
func New() *Page {
	return &Page{}
}

// Wrap returns a Page over an existing block.
func Wrap(b *block.Block) *Page {
	return &Page{Block: b}
}

// Write appends a new slot pointing at payload, growing the slot array up
// from offset 0 and the tuple area down from DataSize. Fails ErrOutOfBounds
// if there isn't room for both the new slot pointer and the payload; fails
// ErrNoBlock if no block is attached.
func (p *Page) Write(payload []byte) error {
	b := p.Block
	if b == nil {
		return ErrNoBlock
	}
	writeLen := uint16(len(payload))
	if b.Lower+block.SlotWidth > b.Upper-writeLen {
		return ErrOutOfBounds
	}

	b.Upper -= writeLen
	slotOff := b.Lower
	b.Lower += block.SlotWidth
	binary.LittleEndian.PutUint16(b.Data[slotOff:slotOff+block.SlotWidth], b.Upper)
	copy(b.Data[b.Upper:b.Upper+writeLen], payload)
	b.Flags |= block.FlagDirty
	return nil
}

// Read returns the payload at slotIdx, or nil if the slot is tombstoned.
// payloadLen must be the caller-known fixed width of the stored tuple.
// Fails ErrOutOfBounds once slotIdx has walked past the last occupied slot
// — table and hash-index iterators rely on this to detect "end of page".
func (p *Page) Read(slotIdx uint16, payloadLen uint16) ([]byte, error) {
	b := p.Block
	if b == nil {
		return nil, ErrNoBlock
	}
	start := slotIdx * block.SlotWidth
	if start >= b.Lower {
		return nil, ErrOutOfBounds
	}
	loc := binary.LittleEndian.Uint16(b.Data[start : start+block.SlotWidth])
	if loc == block.Tombstone {
		return nil, nil
	}
	out := make([]byte, payloadLen)
	copy(out, b.Data[loc:loc+payloadLen])
	return out, nil
}

// Update overwrites the tuple pointed to by slotIdx in place, without
// changing the slot pointer or the stored length — payload must be exactly
// the width of the tuple originally written there.
func (p *Page) Update(slotIdx uint16, payload []byte) error {
	b := p.Block
	if b == nil {
		return ErrNoBlock
	}
	start := slotIdx * block.SlotWidth
	if start >= b.Lower {
		return ErrOutOfBounds
	}
	loc := binary.LittleEndian.Uint16(b.Data[start : start+block.SlotWidth])
	if loc == block.Tombstone {
		return nil
	}
	copy(b.Data[loc:loc+uint16(len(payload))], payload)
	b.Flags |= block.FlagDirty
	return nil
}

// Delete tombstones slotIdx. The payload bytes are left in place; space is
// never reclaimed.
func (p *Page) Delete(slotIdx uint16) error {
	b := p.Block
	if b == nil {
		return ErrNoBlock
	}
	start := slotIdx * block.SlotWidth
	if start >= b.Lower {
		return ErrOutOfBounds
	}
	binary.LittleEndian.PutUint16(b.Data[start:start+block.SlotWidth], block.Tombstone)
	b.Flags |= block.FlagDirty
	return nil
}

// Add encodes tuple per schema and writes it as a new slot. Fails
// ErrInvalidTuple if the tuple's arity doesn't match the schema.
func (p *Page) Add(t tuple.Tuple, schema tuple.Schema) error {
	if len(t) != len(schema) {
		return ErrInvalidTuple
	}
	payload, err := t.Encode(schema)
	if err != nil {
		return ErrInvalidTuple
	}
	return p.Write(payload)
}

// IsDirty reports whether the attached block's Dirty flag is set.
func (p *Page) IsDirty() bool {
	if p.Block == nil {
		return false
	}
	return p.Block.IsDirty()
}

// ToggleDirty flips the attached block's Dirty flag.
func (p *Page) ToggleDirty() {
	if p.Block == nil {
		return
	}
	p.Block.ToggleDirty()
}

// HasNext reports whether the attached block continues into another block.
func (p *Page) HasNext() bool {
	if p.Block == nil {
		return false
	}
	return p.Block.HasNext()
}

// GetNext returns the forward-link block ordinal, or (0, false) if none.
func (p *Page) GetNext() (uint32, bool) {
	if p.Block == nil || !p.Block.HasNext() {
		return 0, false
	}
	return p.Block.Next, true
}

// SetNext sets the forward link and marks the Next flag.
func (p *Page) SetNext(ordinal uint32) {
	if p.Block == nil {
		return
	}
	p.Block.SetNext(ordinal)
}
