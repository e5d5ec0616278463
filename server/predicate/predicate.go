// Package predicate implements join predicates: an equality condition
// between a field of the left input and a field of the right input,
// resolved against a concrete schema to the indices and hash functions the
// join operator needs.
package predicate

import (
	"github.com/pkg/errors"

	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// Field identifies a column by its qualified name, e.g. "orders.id".
type Field struct {
	Qualified string
}

// Equal is currently the only predicate variant: left.field = right.field.
type Equal struct {
	L Field
	R Field
}

// ErrColumnNotFound is returned when a predicate field doesn't resolve
// against the schema it is checked or compiled against.
var ErrColumnNotFound = errors.New("predicate: column not found")

// ErrTypeMismatch is returned when the two sides of an equality resolve to
// different DatumTypes.
var ErrTypeMismatch = errors.New("predicate: type mismatch")

// Check resolves both sides of e against their respective schemas and
// confirms they share a DatumType.
func (e Equal) Check(leftSchema, rightSchema tuple.Schema) error {
	li := leftSchema.IndexOf(e.L.Qualified)
	if li < 0 {
		return errors.Wrapf(ErrColumnNotFound, "%s", e.L.Qualified)
	}
	ri := rightSchema.IndexOf(e.R.Qualified)
	if ri < 0 {
		return errors.Wrapf(ErrColumnNotFound, "%s", e.R.Qualified)
	}
	if leftSchema[li].Type != rightSchema[ri].Type {
		return ErrTypeMismatch
	}
	return nil
}

// Resolved carries the field indices and shared type computed once at
// operator-construction time, so the hot per-tuple join loop never repeats
// a name lookup.
type Resolved struct {
	LeftIndex  int
	RightIndex int
	Type       tuple.DatumType
}

// GenerateHashes resolves e against schema, the concatenation of the
// left-input schema followed by the right-input schema, and returns the
// field positions and shared type needed to hash either side.
func GenerateHashes(e Equal, leftSchema, rightSchema tuple.Schema) (Resolved, error) {
	combined := leftSchema.Concat(rightSchema)
	li := combined.IndexOf(e.L.Qualified)
	if li < 0 || li >= len(leftSchema) {
		return Resolved{}, errors.Wrapf(ErrColumnNotFound, "left field %s", e.L.Qualified)
	}
	ri := combined.IndexOf(e.R.Qualified)
	if ri < len(leftSchema) {
		return Resolved{}, errors.Wrapf(ErrColumnNotFound, "right field %s", e.R.Qualified)
	}
	if combined[li].Type != combined[ri].Type {
		return Resolved{}, ErrTypeMismatch
	}
	return Resolved{
		LeftIndex:  li,
		RightIndex: ri - len(leftSchema),
		Type:       combined[li].Type,
	}, nil
}

// HashLeft hashes the left-side field of t (a left-schema tuple) to a
// 16-bit bucket key.
func (r Resolved) HashLeft(t tuple.Tuple) (uint16, error) {
	return r.Type.Hash(t[r.LeftIndex])
}

// HashRight hashes the right-side field of t (a right-schema tuple) to a
// 16-bit bucket key.
func (r Resolved) HashRight(t tuple.Tuple) (uint16, error) {
	return r.Type.Hash(t[r.RightIndex])
}

// Equal reports whether left's join field and right's join field are
// actually equal — the post-hash-match filter that closes the 16-bit hash
// collision gap.
func (r Resolved) Equal(left, right tuple.Tuple) bool {
	return left[r.LeftIndex] == right[r.RightIndex]
}
