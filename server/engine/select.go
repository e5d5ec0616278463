package engine

import "github.com/zhukovaskychina/reldb/server/storage/tuple"

// Predicate decides whether a tuple passes a Select.
type Predicate func(tuple.Tuple) bool

// Select pulls from child and yields only tuples for which Pred is true.
// Its schema is the child's schema, unchanged.
type Select struct {
	Child Operator
	Pred  Predicate
}

// Schema returns the child's schema.
func (s *Select) Schema() tuple.Schema { return s.Child.Schema() }

// Next pulls from Child until Pred passes or Child is exhausted.
func (s *Select) Next() (tuple.Tuple, error) {
	for {
		t, err := s.Child.Next()
		if err != nil {
			return nil, err
		}
		if s.Pred(t) {
			return t, nil
		}
	}
}
