package engine

import "github.com/zhukovaskychina/reldb/server/storage/tuple"

// Project resolves Columns against the child's schema to an index set,
// preserving the child's column order and retaining only the named
// columns. A name matching no column is silently dropped rather than
// treated as an error.
type Project struct {
	Child   Operator
	Columns []string

	schema  tuple.Schema
	indices []int
}

// NewProject resolves Columns once against Child's schema.
func NewProject(child Operator, columns []string) *Project {
	want := make(map[string]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}

	childSchema := child.Schema()
	p := &Project{Child: child, Columns: columns}
	for i, col := range childSchema {
		if want[col.Name] {
			p.indices = append(p.indices, i)
			p.schema = append(p.schema, col)
		}
	}
	return p
}

// Schema returns the filtered schema.
func (p *Project) Schema() tuple.Schema { return p.schema }

// Next pulls one tuple from Child and projects it down to Schema.
func (p *Project) Next() (tuple.Tuple, error) {
	t, err := p.Child.Next()
	if err != nil {
		return nil, err
	}
	out := make(tuple.Tuple, len(p.indices))
	for i, idx := range p.indices {
		out[i] = t[idx]
	}
	return out, nil
}
