// Package tuple defines the row-level data model: typed Datums, DatumType
// encode/decode, Schema and Tuple.
package tuple

import (
	"encoding/binary"
	"math"

	"github.com/OneOfOne/xxhash"
	"github.com/pkg/errors"
)

// DatumType is the type tag of a column. Every variant has a fixed
// serialized width.
type DatumType uint8

const (
	Int DatumType = iota
	Float
)

// Size returns the fixed serialized width in bytes of the type.
func (t DatumType) Size() int {
	switch t {
	case Int, Float:
		return 4
	default:
		return 0
	}
}

func (t DatumType) String() string {
	switch t {
	case Int:
		return "INT"
	case Float:
		return "FLOAT"
	default:
		return "UNKNOWN"
	}
}

// ParseDatumType maps a SQL type keyword ("INT", "FLOAT") to a DatumType.
func ParseDatumType(s string) (DatumType, error) {
	switch s {
	case "INT", "int":
		return Int, nil
	case "FLOAT", "float":
		return Float, nil
	default:
		return 0, errors.Errorf("unknown column type %q", s)
	}
}

// ErrTypeMismatch is returned when a Datum's variant doesn't match the
// DatumType it is being encoded/decoded against.
var ErrTypeMismatch = errors.New("datum type mismatch")

// Encode serializes d to its fixed-width little-endian byte string.
func (t DatumType) Encode(d Datum) ([]byte, error) {
	buf := make([]byte, t.Size())
	switch t {
	case Int:
		v, ok := d.(IntDatum)
		if !ok {
			return nil, ErrTypeMismatch
		}
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case Float:
		v, ok := d.(FloatDatum)
		if !ok {
			return nil, ErrTypeMismatch
		}
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	default:
		return nil, ErrTypeMismatch
	}
	return buf, nil
}

// Decode deserializes bytes (exactly t.Size() long) back into a Datum.
func (t DatumType) Decode(b []byte) (Datum, error) {
	if len(b) != t.Size() {
		return nil, errors.Errorf("decode %s: expected %d bytes, got %d", t, t.Size(), len(b))
	}
	switch t {
	case Int:
		return IntDatum(int32(binary.LittleEndian.Uint32(b))), nil
	case Float:
		return FloatDatum(math.Float32frombits(binary.LittleEndian.Uint32(b))), nil
	default:
		return nil, ErrTypeMismatch
	}
}

// Hash folds the encoded representation of d to a 16-bit bucket index using
// xxhash, XOR-folding the 64-bit digest down to 16 bits. Hashing the encoded
// bytes rather than taking the low bits of an integer key directly avoids
// clustering every bucket scan into a handful of buckets for sequential keys.
func (t DatumType) Hash(d Datum) (uint16, error) {
	b, err := t.Encode(d)
	if err != nil {
		return 0, err
	}
	sum := xxhash.Checksum64(b)
	return uint16(sum) ^ uint16(sum>>16) ^ uint16(sum>>32) ^ uint16(sum>>48), nil
}

// Datum is a tagged value. The only variants are IntDatum and FloatDatum.
type Datum interface {
	isDatum()
}

// IntDatum is a 32-bit signed integer value.
type IntDatum int32

func (IntDatum) isDatum() {}

// FloatDatum is a 32-bit IEEE-754 value.
type FloatDatum float32

func (FloatDatum) isDatum() {}
