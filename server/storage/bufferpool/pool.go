// Package bufferpool implements a bounded, disk-backed page cache: a fixed
// set of frames holding Pages, with a pluggable replacement policy
// (Clock/second-chance by default), fetch-from-disk-on-miss, and
// write-back-on-eviction.
package bufferpool

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/zhukovaskychina/reldb/logger"
	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
	"github.com/zhukovaskychina/reldb/server/storage/page"
)

// Pool is a bounded pool of frames backed by a diskmanager.Manager.
type Pool struct {
	disk   *diskmanager.Manager
	frames []*Frame

	mu     sync.Mutex // guards policy and index
	policy Policy
	index  map[diskmanager.PageID]int

	// group coalesces concurrent faults for the same page_id from
	// multiple query threads into a single disk read.
	group singleflight.Group
}

// New returns a Pool of size frames backed by disk, using Clock replacement.
func New(disk *diskmanager.Manager, size int) *Pool {
	frames := make([]*Frame, size)
	for i := range frames {
		frames[i] = &Frame{}
	}
	return &Pool{
		disk:   disk,
		frames: frames,
		policy: NewClock(size),
		index:  make(map[diskmanager.PageID]int),
	}
}

// Size returns the number of frames in the pool.
func (p *Pool) Size() int { return len(p.frames) }

// Fetch returns the frame holding id, loading it from disk if not already
// resident. On a hit, the frame's reference bit is set. Concurrent Fetch
// calls for the same missing id share a single disk read.
func (p *Pool) Fetch(id diskmanager.PageID) (*Frame, error) {
	if f, ok := p.lookup(id); ok {
		return f, nil
	}

	v, err, _ := p.group.Do(id.String(), func() (interface{}, error) {
		if f, ok := p.lookup(id); ok {
			return f, nil
		}
		b, err := p.disk.ReadBlock(id)
		if err != nil {
			return nil, err
		}
		return p.admit(page.Wrap(b), id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Frame), nil
}

// Admit installs a caller-supplied in-memory page (e.g. one just written
// fresh by AppendBlock) into a frame, without reading it back from disk.
func (p *Pool) Admit(id diskmanager.PageID, pg *page.Page) (*Frame, error) {
	return p.admit(pg, id)
}

func (p *Pool) lookup(id diskmanager.PageID) (*Frame, bool) {
	p.mu.Lock()
	idx, ok := p.index[id]
	if ok {
		p.policy.Touch(idx)
	}
	p.mu.Unlock()
	if !ok {
		return nil, false
	}
	return p.frames[idx], true
}

func (p *Pool) admit(pg *page.Page, id diskmanager.PageID) (*Frame, error) {
	p.mu.Lock()
	idx := p.policy.Evict()
	p.mu.Unlock()

	f := p.frames[idx]
	f.Mu.Lock()
	if f.valid && f.page.IsDirty() {
		if err := p.disk.WriteBlock(f.id, f.page.Block); err != nil {
			f.Mu.Unlock()
			return nil, err
		}
	}
	oldID, wasValid := f.id, f.valid
	f.valid = true
	f.id = id
	f.page = pg
	f.Mu.Unlock()

	p.mu.Lock()
	if wasValid {
		delete(p.index, oldID)
	}
	p.index[id] = idx
	p.policy.Touch(idx)
	p.mu.Unlock()

	logger.Logger.Debugf("bufferpool: admitted page %s into frame %d", id, idx)
	return f, nil
}

// Evict chooses a victim frame via the replacement policy, writes it back
// if dirty, and clears its page_id. Returns the victim's frame index.
// Cannot fail to choose a victim once size >= 1; a write failure during
// write-back is returned.
func (p *Pool) Evict() (int, error) {
	p.mu.Lock()
	idx := p.policy.Evict()
	p.mu.Unlock()

	f := p.frames[idx]
	f.Mu.Lock()
	defer f.Mu.Unlock()
	if !f.valid {
		return idx, nil
	}
	if f.page.IsDirty() {
		if err := p.disk.WriteBlock(f.id, f.page.Block); err != nil {
			return idx, err
		}
	}
	p.mu.Lock()
	delete(p.index, f.id)
	p.mu.Unlock()
	f.valid = false
	f.page = nil
	return idx, nil
}

// Flush evict-writes every dirty frame. Afterwards all frames are empty.
func (p *Pool) Flush() error {
	for _, f := range p.frames {
		f.Mu.Lock()
		if f.valid && f.page.IsDirty() {
			if err := p.disk.WriteBlock(f.id, f.page.Block); err != nil {
				f.Mu.Unlock()
				return err
			}
		}
		f.valid = false
		f.page = nil
		f.Mu.Unlock()
	}
	p.mu.Lock()
	p.index = make(map[diskmanager.PageID]int)
	p.policy = NewClock(len(p.frames))
	p.mu.Unlock()
	return nil
}

// Resident reports how many distinct pages are currently cached, for tests
// and diagnostics.
func (p *Pool) Resident() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.index)
}
