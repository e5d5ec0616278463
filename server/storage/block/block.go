// Package block implements the on-disk 8192-byte slotted-page record: the
// Block's raw layout, flags and forward link, independent of any buffering
// or tuple semantics layered on top of it in package page.
package block

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	// Size is the fixed on-disk record size, in bytes, of every Block.
	Size = 8192
	// DataSize is the usable slotted-storage area within a Block.
	DataSize = 8171
	// SlotWidth is the width, in bytes, of a single slot pointer.
	SlotWidth = 2
	// Tombstone marks a deleted slot.
	Tombstone = 0xFFFF

	headerSize = Size - DataSize // block_id(4) + next(4) + flags(1) + lower(2) + upper(2) + pad(8) = 21
)

// Flag bits packed into Block.Flags.
const (
	FlagDirty uint8 = 1 << 0
	FlagNext  uint8 = 1 << 1
)

// Block is the in-memory representation of a slotted page's raw bytes.
type Block struct {
	BlockID uint32
	Next    uint32
	Flags   uint8
	Lower   uint16
	Upper   uint16
	Data    [DataSize]byte
}

// New returns a freshly zero-initialized block with the given ordinal,
// ready to accept writes (Lower=0, Upper=DataSize).
func New(blockID uint32) *Block {
	return &Block{
		BlockID: blockID,
		Lower:   0,
		Upper:   DataSize,
	}
}

// IsDirty reports whether the Dirty flag is set.
func (b *Block) IsDirty() bool { return b.Flags&FlagDirty != 0 }

// ToggleDirty flips the Dirty flag.
func (b *Block) ToggleDirty() { b.Flags ^= FlagDirty }

// HasNext reports whether this block continues into another via Next.
func (b *Block) HasNext() bool { return b.Flags&FlagNext != 0 }

// SetNext sets the forward link and the Next flag.
func (b *Block) SetNext(next uint32) {
	b.Next = next
	b.Flags |= FlagNext
}

// Marshal serializes b to exactly Size bytes, little-endian, matching the
// canonical on-disk layout: block_id | next | flags | lower | upper | pad |
// data. The buffer pool depends on this being bit-identical on round trip.
func (b *Block) Marshal() []byte {
	out := make([]byte, Size)
	binary.LittleEndian.PutUint32(out[0:4], b.BlockID)
	binary.LittleEndian.PutUint32(out[4:8], b.Next)
	out[8] = b.Flags
	binary.LittleEndian.PutUint16(out[9:11], b.Lower)
	binary.LittleEndian.PutUint16(out[11:13], b.Upper)
	// out[13:headerSize] is padding, left zero.
	copy(out[headerSize:], b.Data[:])
	return out
}

// Unmarshal deserializes a Size-byte record into a new Block.
func Unmarshal(raw []byte) (*Block, error) {
	if len(raw) != Size {
		return nil, errors.Errorf("block: expected %d bytes, got %d", Size, len(raw))
	}
	b := &Block{
		BlockID: binary.LittleEndian.Uint32(raw[0:4]),
		Next:    binary.LittleEndian.Uint32(raw[4:8]),
		Flags:   raw[8],
		Lower:   binary.LittleEndian.Uint16(raw[9:11]),
		Upper:   binary.LittleEndian.Uint16(raw[11:13]),
	}
	copy(b.Data[:], raw[headerSize:])
	return b, nil
}
