package listsync

import (
	"context"
	"log"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Mutation describes one optimistic change to a cached record.
type Mutation[R Record] struct {
	ID       Identity
	TargetID string
	// Transform returns the optimistic replacement for the record, or
	// keep=false to drop it from the list.
	Transform func(R) (next R, keep bool)
	// Send performs the request. A non-nil record is the server's copy and
	// replaces the optimistic one.
	Send func(ctx context.Context) (*R, error)
	// Overlay, when set, receives the same optimistic change if the record
	// is among its results.
	Overlay *Search[R]
}

// MutationMsg carries the outcome of Send back to the event loop. Removed
// reports that the change dropped the record from a cached page: once it
// succeeds, offsets of pages not yet fetched have shifted and the identity
// should be refetched.
type MutationMsg[R Record] struct {
	ID       Identity
	TargetID string
	Record   *R
	Removed  bool
	Err      error
}

type pendingMutation[R Record] struct {
	cached   bool
	snapshot [][]R
	gen      uint64
	version  uint64
	original R
	page     int
	index    int
	overlay  *Search[R]
	restore  func()
}

// Mutator applies optimistic changes and settles them. At most one mutation
// per record is in flight.
type Mutator[R Record] struct {
	cache  *Cache[R]
	logger *log.Logger

	mu       sync.Mutex
	inflight map[string]*pendingMutation[R]
}

func NewMutator[R Record](cache *Cache[R], opts ...Option) *Mutator[R] {
	o := buildOptions(opts)
	return &Mutator[R]{
		cache:    cache,
		logger:   o.logger,
		inflight: make(map[string]*pendingMutation[R]),
	}
}

func mutationKey(id Identity, targetID string) string {
	return id.String() + "#" + targetID
}

func (m *Mutator[R]) InFlight(id Identity, targetID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.inflight[mutationKey(id, targetID)]
	return ok
}

// Mutate applies the optimistic change at once and returns the command that
// sends it. A second mutation for a record that is still in flight is
// rejected with ErrMutationInFlight.
func (m *Mutator[R]) Mutate(ctx context.Context, mut Mutation[R]) (tea.Cmd, error) {
	key := mutationKey(mut.ID, mut.TargetID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.inflight[key]; busy {
		return nil, ErrMutationInFlight
	}

	pending := &pendingMutation[R]{overlay: mut.Overlay}
	removed := false

	m.cache.mu.Lock()
	if e, ok := m.cache.entries[mut.ID]; ok {
		if p, i, found := e.locate(mut.TargetID); found {
			pending.cached = true
			pending.snapshot = make([][]R, len(e.pages))
			copy(pending.snapshot, e.pages)
			pending.original = e.pages[p][i]
			pending.page = p
			pending.index = i

			page := spliceRecord(e.pages[p], i, mut.Transform)
			removed = len(page) < len(e.pages[p])
			e.replacePage(p, page)
			pending.gen = e.gen
			pending.version = e.version
		}
	}
	m.cache.mu.Unlock()

	if mut.Overlay != nil {
		if restore, ok := mut.Overlay.patch(mut.TargetID, mut.Transform); ok {
			pending.restore = restore
		}
	}

	if !pending.cached && pending.restore == nil {
		return nil, ErrRecordNotFound
	}

	m.inflight[key] = pending

	return func() tea.Msg {
		record, err := mut.Send(ctx)
		return MutationMsg[R]{
			ID:       mut.ID,
			TargetID: mut.TargetID,
			Record:   record,
			Removed:  removed,
			Err:      err,
		}
	}, nil
}

// Apply settles a mutation. On success an authoritative record replaces the
// optimistic one. On failure the cache is rolled back: verbatim to the
// snapshot when nothing else has written the identity since, otherwise only
// the target record is restored. Nothing is rolled back for an identity that
// was invalidated in the meantime. The send error is returned.
func (m *Mutator[R]) Apply(msg MutationMsg[R]) error {
	key := mutationKey(msg.ID, msg.TargetID)

	m.mu.Lock()
	pending, ok := m.inflight[key]
	delete(m.inflight, key)
	m.mu.Unlock()

	if !ok {
		m.logger.Printf("[listsync] no pending mutation for %s", key)
		return ErrStale
	}

	if msg.Err == nil {
		if msg.Record != nil {
			m.settle(msg.ID, pending, *msg.Record)
		}
		return nil
	}

	m.logger.Printf("[listsync] mutation of %s failed, rolling back: %v", key, msg.Err)
	m.rollback(msg.ID, msg.TargetID, pending)
	return msg.Err
}

func (m *Mutator[R]) settle(id Identity, pending *pendingMutation[R], record R) {
	if pending.cached {
		m.cache.mu.Lock()
		if e, ok := m.cache.entries[id]; ok && e.gen == pending.gen {
			if p, i, found := e.locate(record.RecordID()); found {
				e.replacePage(p, spliceRecord(e.pages[p], i, func(R) (R, bool) { return record, true }))
			}
		}
		m.cache.mu.Unlock()
	}
	if pending.overlay != nil && pending.restore != nil {
		pending.overlay.replace(record)
	}
}

func (m *Mutator[R]) rollback(id Identity, targetID string, pending *pendingMutation[R]) {
	if pending.restore != nil {
		pending.restore()
	}
	if !pending.cached {
		return
	}

	m.cache.mu.Lock()
	defer m.cache.mu.Unlock()

	e, ok := m.cache.entries[id]
	if !ok || e.gen != pending.gen {
		return
	}

	if e.version == pending.version {
		e.pages = pending.snapshot
		e.version++
		return
	}

	if pending.page >= len(e.pages) {
		return
	}
	e.replacePage(pending.page, restoreRecord(e.pages[pending.page], targetID, pending.index, pending.original))
}
