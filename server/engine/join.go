package engine

import (
	"io"

	"github.com/zhukovaskychina/reldb/server/predicate"
	"github.com/zhukovaskychina/reldb/server/storage/bufferpool"
	"github.com/zhukovaskychina/reldb/server/storage/catalog"
	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
	"github.com/zhukovaskychina/reldb/server/storage/hashindex"
	"github.com/zhukovaskychina/reldb/server/storage/tableiter"
	"github.com/zhukovaskychina/reldb/server/storage/tuple"
)

// Join is a hash equi-join. The build phase runs once, at construction:
// every tuple pulled from left is hashed on pred.L and inserted into a
// fresh, join-scoped hash index. The probe phase runs per Next: pull a
// tuple from right, hash it on pred.R, and walk the matching bucket,
// yielding left++right for each match whose join fields are actually equal
// (the hash is only 16 bits wide, so a bucket match is not by itself proof
// of equality).
type Join struct {
	pool     *bufferpool.Pool
	right    Operator
	index    *hashindex.Index
	resolved predicate.Resolved
	schema   tuple.Schema

	curRight   tuple.Tuple
	bucketIter *tableiter.Iter
}

// NewJoin materializes left into a temporary hash index keyed by pred.L,
// then returns a Join ready to probe with right on pred.R.
func NewJoin(cat *catalog.Catalog, disk *diskmanager.Manager, pool *bufferpool.Pool, left, right Operator, pred predicate.Equal) (*Join, error) {
	resolved, err := predicate.GenerateHashes(pred, left.Schema(), right.Schema())
	if err != nil {
		return nil, err
	}

	// A fresh inode pair per join (catalog.AllocateInodePair mints a
	// uuid-named temp file before renaming it to its real inode number),
	// so concurrent joins never collide on a shared build-side name.
	index, err := hashindex.CreateTemp(cat, disk, left.Schema())
	if err != nil {
		return nil, err
	}

	for {
		t, err := left.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		key, err := resolved.HashLeft(t)
		if err != nil {
			return nil, err
		}
		if err := index.Insert(pool, key, t); err != nil {
			return nil, err
		}
	}

	return &Join{
		pool:     pool,
		right:    right,
		index:    index,
		resolved: resolved,
		schema:   left.Schema().Concat(right.Schema()),
	}, nil
}

// Schema returns left.Schema() ++ right.Schema().
func (j *Join) Schema() tuple.Schema { return j.schema }

// Next advances the probe side: pull a right tuple and position the bucket
// iterator, or continue draining the current bucket. Each probed left
// tuple is post-filtered by actual field equality before being emitted.
func (j *Join) Next() (tuple.Tuple, error) {
	for {
		if j.bucketIter == nil {
			rt, err := j.right.Next()
			if err != nil {
				return nil, err
			}
			key, err := j.resolved.HashRight(rt)
			if err != nil {
				return nil, err
			}
			j.curRight = rt
			j.bucketIter = j.index.Scan(j.pool, key)
		}

		lt, err := j.bucketIter.Next()
		if err == io.EOF {
			j.bucketIter = nil
			continue
		}
		if err != nil {
			return nil, err
		}
		if !j.resolved.Equal(lt, j.curRight) {
			continue
		}

		out := make(tuple.Tuple, 0, len(lt)+len(j.curRight))
		out = append(out, lt...)
		out = append(out, j.curRight...)
		return out, nil
	}
}

// Close drops the join's temporary build-side hash index. Callers must
// call this once the join iterator will no longer be pulled from.
func (j *Join) Close() error {
	return j.index.Drop()
}
