// Package engine implements the pull-based operator pipeline: Select
// (filter), Project, and Join compose by holding a child Operator, each
// exposing Next/Schema so the root of a query tree can be pulled one tuple
// at a time.
package engine

import (
	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// Operator is a pull-model tuple source. Next returns io.EOF once
// exhausted; every Operator's Schema is fixed at construction time.
type Operator interface {
	Next() (tuple.Tuple, error)
	Schema() tuple.Schema
}
