package catalog

import "github.com/pkg/errors"

var (
	// ErrTableExists is returned when Register is called with a name
	// already present in the catalog.
	ErrTableExists = errors.New("catalog: table already exists")
	// ErrTableDoesNotExist is returned by table.Open when the catalog has
	// no entry for the name.
	ErrTableDoesNotExist = errors.New("catalog: table does not exist")
)
