package tuple

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Column is a single (qualified name, type) entry in a Schema.
type Column struct {
	Name string
	Type DatumType
}

// Schema is the ordered list of columns a Tuple's Datums correspond to.
// Order defines both the in-memory field order and the on-disk column
// order of every tuple stored under it.
type Schema []Column

// Width is the fixed serialized length, in bytes, of any Tuple matching
// this schema.
func (s Schema) Width() int {
	w := 0
	for _, c := range s {
		w += c.Type.Size()
	}
	return w
}

// IndexOf returns the position of the column with the given qualified name,
// or -1 if absent.
func (s Schema) IndexOf(name string) int {
	for i, c := range s {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Concat returns a new schema holding s's columns followed by other's.
func (s Schema) Concat(other Schema) Schema {
	out := make(Schema, 0, len(s)+len(other))
	out = append(out, s...)
	out = append(out, other...)
	return out
}

// Qualify returns a copy of s with every column name prefixed
// "<table>.<name>", matching the catalog's convention for tables created
// under a given name.
func (s Schema) Qualify(table string) Schema {
	out := make(Schema, len(s))
	for i, c := range s {
		out[i] = Column{Name: table + "." + c.Name, Type: c.Type}
	}
	return out
}

// Marshal appends s's on-disk encoding (column count, then per-column
// name-length-prefixed name and a type byte) to buf, for use by table and
// hash-index header files.
func (s Schema) Marshal(buf *bytes.Buffer) {
	binary.Write(buf, binary.LittleEndian, uint16(len(s)))
	for _, c := range s {
		binary.Write(buf, binary.LittleEndian, uint16(len(c.Name)))
		buf.WriteString(c.Name)
		buf.WriteByte(byte(c.Type))
	}
}

// UnmarshalSchema reads a Schema written by Marshal.
func UnmarshalSchema(r io.Reader) (Schema, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	out := make(Schema, n)
	for i := range out {
		var nameLen uint16
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, err
		}
		nameBytes := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBytes); err != nil {
			return nil, err
		}
		var typeByte [1]byte
		if _, err := io.ReadFull(r, typeByte[:]); err != nil {
			return nil, err
		}
		out[i] = Column{Name: string(nameBytes), Type: DatumType(typeByte[0])}
	}
	return out, nil
}

// Tuple is an ordered sequence of Datums whose serialized length is fixed
// by its Schema. Tuples are values: the engine never aliases them.
type Tuple []Datum

// Encode concatenates every field's fixed-width encoding, in schema order.
func (t Tuple) Encode(s Schema) ([]byte, error) {
	if len(t) != len(s) {
		return nil, errors.Errorf("tuple has %d fields, schema has %d", len(t), len(s))
	}
	out := make([]byte, 0, s.Width())
	for i, c := range s {
		b, err := c.Type.Encode(t[i])
		if err != nil {
			return nil, errors.Wrapf(err, "encoding field %d (%s)", i, c.Name)
		}
		out = append(out, b...)
	}
	return out, nil
}

// Decode splits bytes into fields per s and decodes each.
func Decode(s Schema, bytes []byte) (Tuple, error) {
	if len(bytes) != s.Width() {
		return nil, errors.Errorf("expected %d bytes for schema, got %d", s.Width(), len(bytes))
	}
	out := make(Tuple, len(s))
	off := 0
	for i, c := range s {
		w := c.Type.Size()
		d, err := c.Type.Decode(bytes[off : off+w])
		if err != nil {
			return nil, errors.Wrapf(err, "decoding field %d (%s)", i, c.Name)
		}
		out[i] = d
		off += w
	}
	return out, nil
}

// Clone returns a shallow copy (Datums are immutable values, so this is a
// full value copy).
func (t Tuple) Clone() Tuple {
	out := make(Tuple, len(t))
	copy(out, t)
	return out
}
