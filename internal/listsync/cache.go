package listsync

import (
	"context"
	"sync"
)

// Status is the derived state of one page sequence.
type Status struct {
	IsLoading          bool
	IsFetchingNextPage bool
	HasNextPage        bool
	IsError            bool
	Err                error
	Pages              int
}

// entry is the page sequence of one identity. ended is set only by a fetch
// that returned zero records; a mutation that empties a cached page leaves
// it alone.
type entry[R Record] struct {
	pages    [][]R
	gen      uint64
	version  uint64
	fetching bool
	ended    bool
	err      error
	cancel   context.CancelFunc
}

func (e *entry[R]) locate(targetID string) (page, index int, ok bool) {
	for p, records := range e.pages {
		for i, r := range records {
			if r.RecordID() == targetID {
				return p, i, true
			}
		}
	}
	return 0, 0, false
}

// replacePage swaps in a new page slice and a new outer slice. Stored pages
// are never written in place, so snapshots and readers keep a stable view.
func (e *entry[R]) replacePage(p int, records []R) {
	next := make([][]R, len(e.pages))
	copy(next, e.pages)
	next[p] = records
	e.pages = next
	e.version++
}

// Cache maps identities to page sequences. Readers may call it from any
// goroutine; only Pager and Mutator write to it.
type Cache[R Record] struct {
	mu      sync.RWMutex
	entries map[Identity]*entry[R]
}

func NewCache[R Record]() *Cache[R] {
	return &Cache[R]{
		entries: make(map[Identity]*entry[R]),
	}
}

func (c *Cache[R]) entryLocked(id Identity) *entry[R] {
	e, ok := c.entries[id]
	if !ok {
		e = &entry[R]{}
		c.entries[id] = e
	}
	return e
}

// Pages returns the page sequence for id in fetch order.
func (c *Cache[R]) Pages(id Identity) [][]R {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	out := make([][]R, len(e.pages))
	copy(out, e.pages)
	return out
}

// Records concatenates every cached page of id.
func (c *Cache[R]) Records(id Identity) []R {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return nil
	}
	var out []R
	for _, p := range e.pages {
		out = append(out, p...)
	}
	return out
}

func (c *Cache[R]) Find(id Identity, targetID string) (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero R
	e, ok := c.entries[id]
	if !ok {
		return zero, false
	}
	p, i, ok := e.locate(targetID)
	if !ok {
		return zero, false
	}
	return e.pages[p][i], true
}

func (c *Cache[R]) Status(id Identity) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return Status{HasNextPage: true}
	}
	return Status{
		IsLoading:          e.fetching && len(e.pages) == 0,
		IsFetchingNextPage: e.fetching && len(e.pages) > 0,
		HasNextPage:        !e.ended,
		IsError:            e.err != nil,
		Err:                e.err,
		Pages:              len(e.pages),
	}
}

// Identities lists every identity with cached state.
func (c *Cache[R]) Identities() []Identity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]Identity, 0, len(c.entries))
	for id := range c.entries {
		ids = append(ids, id)
	}
	return ids
}

// Invalidate discards the pages of id and abandons any fetch in flight for
// it. Responses to requests issued before the call are dropped as stale.
func (c *Cache[R]) Invalidate(id Identity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[id]
	if !ok {
		return
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.pages = nil
	e.ended = false
	e.err = nil
	e.fetching = false
	e.cancel = nil
	e.gen++
	e.version++
}

// InvalidateCollection invalidates every identity of the named collection.
func (c *Cache[R]) InvalidateCollection(collection string) {
	for _, id := range c.Identities() {
		if id.Collection == collection {
			c.Invalidate(id)
		}
	}
}
