package planner

import (
	"github.com/pkg/errors"

	"github.com/zhukovaskychina/reldb/logger"
	"github.com/zhukovaskychina/reldb/server/engine"
	"github.com/zhukovaskychina/reldb/server/predicate"
	"github.com/zhukovaskychina/reldb/server/storage/bufferpool"
	"github.com/zhukovaskychina/reldb/server/storage/catalog"
	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
	"github.com/zhukovaskychina/reldb/server/storage/table"
	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// ErrArityMismatch is returned when an Insert's VALUES list doesn't match
// its table's column count.
var ErrArityMismatch = errors.New("planner: value count does not match table schema")

// CompileCreateTable creates table.Table per stmt.
func CompileCreateTable(cat *catalog.Catalog, disk *diskmanager.Manager, stmt CreateTable) (*table.Table, error) {
	schema := make(tuple.Schema, len(stmt.Columns))
	for i, c := range stmt.Columns {
		dt, err := tuple.ParseDatumType(c.Type)
		if err != nil {
			return nil, errors.Wrapf(err, "column %s", c.Name)
		}
		schema[i] = tuple.Column{Name: c.Name, Type: dt}
	}
	return table.Create(cat, disk, stmt.Table, schema)
}

// CompileInsert opens stmt.Table and appends one row built from its
// literal values.
func CompileInsert(cat *catalog.Catalog, disk *diskmanager.Manager, pool *bufferpool.Pool, stmt Insert) error {
	tbl, err := table.Open(cat, disk, stmt.Table)
	if err != nil {
		return err
	}
	if len(stmt.Values) != len(tbl.Schema) {
		return ErrArityMismatch
	}

	row := make(tuple.Tuple, len(stmt.Values))
	for i, v := range stmt.Values {
		col := tbl.Schema[i]
		switch col.Type {
		case tuple.Int:
			row[i] = tuple.IntDatum(v.IntVal)
		case tuple.Float:
			row[i] = tuple.FloatDatum(v.FloatVal)
		default:
			return errors.Errorf("column %s: unsupported type", col.Name)
		}
	}
	return tbl.Add(pool, row)
}

// Plan is a compiled, runnable Select: an operator tree plus the cleanup
// every Join along the way needs once the caller is done pulling from it.
type Plan struct {
	Root  engine.Operator
	joins []*engine.Join
}

// Next pulls from the plan's root operator.
func (p *Plan) Next() (tuple.Tuple, error) { return p.Root.Next() }

// Schema returns the root operator's schema.
func (p *Plan) Schema() tuple.Schema { return p.Root.Schema() }

// Close drops every join's temporary build-side hash index. Must be called
// once the plan will no longer be pulled from.
func (p *Plan) Close() error {
	for _, j := range p.joins {
		if err := j.Close(); err != nil {
			return err
		}
	}
	return nil
}

// CompileSelect opens stmt.Table (and every joined table), builds a
// left-deep Join chain per stmt.Joins, and wraps the result in a Project
// unless stmt.Columns selects everything.
func CompileSelect(cat *catalog.Catalog, disk *diskmanager.Manager, pool *bufferpool.Pool, stmt Select) (*Plan, error) {
	tbl, err := table.Open(cat, disk, stmt.Table)
	if err != nil {
		return nil, err
	}
	var root engine.Operator = tbl.Iter(pool)
	plan := &Plan{Root: root}

	for _, j := range stmt.Joins {
		rightTbl, err := table.Open(cat, disk, j.Table)
		if err != nil {
			return nil, err
		}
		var right engine.Operator = rightTbl.Iter(pool)

		pred := predicate.Equal{L: predicate.Field{Qualified: j.Left}, R: predicate.Field{Qualified: j.Right}}
		join, err := engine.NewJoin(cat, disk, pool, plan.Root, right, pred)
		if err != nil {
			return nil, err
		}
		plan.joins = append(plan.joins, join)
		plan.Root = join
	}

	if len(stmt.Columns) > 0 && !(len(stmt.Columns) == 1 && stmt.Columns[0] == "*") {
		plan.Root = engine.NewProject(plan.Root, stmt.Columns)
	}

	logger.Logger.Debugf("planner: compiled select on %q (%d joins)", stmt.Table, len(stmt.Joins))
	return plan, nil
}
