package table

import "github.com/pkg/errors"

// ErrInvalidTuple is returned when Add is called with a tuple whose arity
// doesn't match the table's schema.
var ErrInvalidTuple = errors.New("table: invalid tuple")
