package hashindex

import "github.com/pkg/errors"

// ErrInvalidTuple is returned when Insert is called with a tuple whose
// arity doesn't match the index's schema.
var ErrInvalidTuple = errors.New("hashindex: invalid tuple")
