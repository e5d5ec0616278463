package page

import "github.com/pkg/errors"

// Sentinel errors for slotted-page operations, mirroring the storage
// layer's convention of grouped sentinel error vars (see
// server/innodb/basic/errors.go in the reference InnoDB implementation this
// package is modeled on).
var (
	// ErrNoBlock is returned when an operation is attempted on a Page with
	// no attached Block.
	ErrNoBlock = errors.New("page: no block attached")
	// ErrOutOfBounds is returned when a slot index or insertion would
	// exceed the block's data area. During iteration this is a normal
	// termination signal, not a real failure; during Write it triggers a
	// retry after appending a new block.
	ErrOutOfBounds = errors.New("page: out of bounds")
	// ErrInvalidTuple is returned when a tuple's arity doesn't match the
	// schema it is being written against.
	ErrInvalidTuple = errors.New("page: invalid tuple")
)
