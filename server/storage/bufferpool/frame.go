package bufferpool

import (
	"sync"

	"github.com/zhukovaskychina/reldb/server/storage/diskmanager"
	"github.com/zhukovaskychina/reldb/server/storage/page"
)

// Frame is one buffer-pool slot holding exactly one Page. Frames are
// reader/writer locked independently of the pool's replacement metadata: a
// caller reading or mutating the held page takes Mu directly. A holder of
// Mu must release it before calling Pool.Fetch for a *different* page_id,
// since that call may need to evict this very frame.
type Frame struct {
	Mu    sync.RWMutex
	valid bool
	id    diskmanager.PageID
	page  *page.Page
}

// Page returns the frame's current page. Caller must hold Mu.
func (f *Frame) Page() *page.Page { return f.page }

// PageID returns the frame's current page id. Caller must hold Mu.
func (f *Frame) PageID() diskmanager.PageID { return f.id }

// Valid reports whether the frame currently holds a page. Caller must hold Mu.
func (f *Frame) Valid() bool { return f.valid }
