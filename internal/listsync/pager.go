package listsync

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"
)

// PageMsg carries the outcome of one page fetch back to the event loop.
type PageMsg[R Record] struct {
	ID      Identity
	Index   int
	Gen     uint64
	Records []R
	Err     error
}

// Pager extends page sequences on demand.
type Pager[R Record] struct {
	cache  *Cache[R]
	source Source[R]
	logger *log.Logger
}

func NewPager[R Record](cache *Cache[R], source Source[R], opts ...Option) *Pager[R] {
	o := buildOptions(opts)
	return &Pager[R]{
		cache:  cache,
		source: source,
		logger: o.logger,
	}
}

func (p *Pager[R]) Cache() *Cache[R] {
	return p.cache
}

// RequestNextPage returns a command fetching the page after the last cached
// one. It returns nil while a fetch for id is in flight and once a fetch for
// id came back empty.
func (p *Pager[R]) RequestNextPage(ctx context.Context, id Identity) tea.Cmd {
	p.cache.mu.Lock()
	e := p.cache.entryLocked(id)
	if e.fetching || e.ended {
		p.cache.mu.Unlock()
		return nil
	}

	index := len(e.pages)
	gen := e.gen
	fetchCtx, cancel := context.WithCancel(ctx)
	e.fetching = true
	e.cancel = cancel
	p.cache.mu.Unlock()

	return func() tea.Msg {
		defer cancel()
		records, err := p.source.FetchPage(fetchCtx, id, index)
		return PageMsg[R]{
			ID:      id,
			Index:   index,
			Gen:     gen,
			Records: records,
			Err:     err,
		}
	}
}

// Apply stores a fetched page. Responses for an invalidated identity or an
// index that is no longer next return ErrStale and change nothing. A failed
// fetch leaves the pages as they were and keeps the error until the next
// successful fetch.
func (p *Pager[R]) Apply(msg PageMsg[R]) error {
	p.cache.mu.Lock()
	defer p.cache.mu.Unlock()

	e, ok := p.cache.entries[msg.ID]
	if !ok || msg.Gen != e.gen || msg.Index != len(e.pages) {
		p.logger.Printf("[listsync] discarding stale page %d for %s", msg.Index, msg.ID)
		return ErrStale
	}

	e.fetching = false
	e.cancel = nil

	if msg.Err != nil {
		e.err = msg.Err
		p.logger.Printf("[listsync] page %d for %s failed: %v", msg.Index, msg.ID, msg.Err)
		return msg.Err
	}

	page := msg.Records
	if page == nil {
		page = []R{}
	}
	next := make([][]R, len(e.pages), len(e.pages)+1)
	copy(next, e.pages)
	e.pages = append(next, page)
	e.ended = len(page) == 0
	e.err = nil
	e.version++
	return nil
}

// Refetch drops the cached pages of id and requests page 0 again.
func (p *Pager[R]) Refetch(ctx context.Context, id Identity) tea.Cmd {
	p.cache.Invalidate(id)
	return p.RequestNextPage(ctx, id)
}

// LoadNextPage runs RequestNextPage synchronously. It reports false when no
// fetch was issued.
func (p *Pager[R]) LoadNextPage(ctx context.Context, id Identity) (bool, error) {
	cmd := p.RequestNextPage(ctx, id)
	if cmd == nil {
		return false, nil
	}
	msg, _ := cmd().(PageMsg[R])
	return true, p.Apply(msg)
}

// LoadAll fetches pages until the source returns an empty one or maxPages
// pages are cached. maxPages <= 0 means no limit.
func (p *Pager[R]) LoadAll(ctx context.Context, id Identity, maxPages int) error {
	for maxPages <= 0 || p.cache.Status(id).Pages < maxPages {
		fetched, err := p.LoadNextPage(ctx, id)
		if err != nil {
			return err
		}
		if !fetched {
			return nil
		}
	}
	return nil
}
