package engine

import (
	"io"

	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// sliceOperator is a test-only Operator over an in-memory tuple slice, used
// to exercise Select/Project/Join without needing a real table on disk.
type sliceOperator struct {
	schema tuple.Schema
	rows   []tuple.Tuple
	pos    int
}

func newSliceOperator(schema tuple.Schema, rows []tuple.Tuple) *sliceOperator {
	return &sliceOperator{schema: schema, rows: rows}
}

func (s *sliceOperator) Schema() tuple.Schema { return s.schema }

func (s *sliceOperator) Next() (tuple.Tuple, error) {
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	t := s.rows[s.pos]
	s.pos++
	return t, nil
}
