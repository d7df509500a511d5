package listsync

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// SearchMode says what a view over a Search should render.
type SearchMode int

const (
	// ModePaged falls through to the page sequence: no term is committed or
	// no result has arrived for it yet.
	ModePaged SearchMode = iota
	ModeResults
	// ModeNoResults is an active search whose result set is empty.
	ModeNoResults
)

// CommitMsg is produced when the debounce delay elapses without newer input.
type CommitMsg struct {
	Seq  uint64
	Term string
}

// SearchResultMsg carries the outcome of one filtered fetch. Seq and Term tag
// the commit that issued it.
type SearchResultMsg[R Record] struct {
	Seq     uint64
	Term    string
	Records []R
	Err     error
}

// Search is a debounced overlay that replaces the paged view of one identity
// with a flat result list while a term is committed.
type Search[R Record] struct {
	id     Identity
	source Source[R]
	delay  time.Duration
	logger *log.Logger

	mu         sync.Mutex
	inputSeq   uint64
	timer      *time.Timer
	stop       chan struct{}
	committed  string
	reqSeq     uint64
	inflight   bool
	cancel     context.CancelFunc
	results    []R
	resultTerm string
	err        error
}

func NewSearch[R Record](id Identity, source Source[R], opts ...Option) *Search[R] {
	o := buildOptions(opts)
	return &Search[R]{
		id:     id,
		source: source,
		delay:  o.debounce,
		logger: o.logger,
	}
}

func (s *Search[R]) Identity() Identity {
	return s.id
}

// Input records a keystroke. The returned command yields a CommitMsg after
// the debounce delay, or nil when newer input arrives first.
func (s *Search[R]) Input(text string) tea.Cmd {
	s.mu.Lock()
	s.stopTimerLocked()
	s.inputSeq++
	seq := s.inputSeq
	timer := time.NewTimer(s.delay)
	stop := make(chan struct{})
	s.timer = timer
	s.stop = stop
	s.mu.Unlock()

	return func() tea.Msg {
		select {
		case <-timer.C:
			return CommitMsg{Seq: seq, Term: text}
		case <-stop:
			return nil
		}
	}
}

func (s *Search[R]) stopTimerLocked() {
	if s.timer == nil {
		return
	}
	s.timer.Stop()
	close(s.stop)
	s.timer = nil
	s.stop = nil
}

// Commit acts on a debounced value. A superseded commit, or one repeating the
// current term, is ignored. An empty term deactivates the overlay. Otherwise
// one filtered fetch is issued with the whitespace-separated tokens of the
// term.
func (s *Search[R]) Commit(ctx context.Context, msg CommitMsg) tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Seq != s.inputSeq {
		return nil
	}
	s.timer = nil
	s.stop = nil

	term := strings.TrimSpace(msg.Term)
	if term == s.committed {
		return nil
	}
	return s.issueLocked(ctx, term)
}

// Submit commits term immediately, skipping the debounce. Unlike Commit it
// refetches when term is already committed, which is how a failed search is
// retried.
func (s *Search[R]) Submit(ctx context.Context, term string) tea.Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.inputSeq++
	return s.issueLocked(ctx, strings.TrimSpace(term))
}

func (s *Search[R]) issueLocked(ctx context.Context, term string) tea.Cmd {
	s.committed = term
	s.reqSeq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if term == "" {
		s.inflight = false
		s.results = nil
		s.resultTerm = ""
		s.err = nil
		return nil
	}

	seq := s.reqSeq
	tokens := strings.Fields(term)
	fetchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.inflight = true

	return func() tea.Msg {
		defer cancel()
		records, err := s.source.FetchFiltered(fetchCtx, s.id, tokens)
		return SearchResultMsg[R]{
			Seq:     seq,
			Term:    term,
			Records: records,
			Err:     err,
		}
	}
}

// Apply stores a search result. Results for anything but the latest commit
// return ErrStale. A failure is logged and returned, and the previous result
// set stays on screen.
func (s *Search[R]) Apply(msg SearchResultMsg[R]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Seq != s.reqSeq || msg.Term != s.committed {
		s.logger.Printf("[listsync] discarding stale search %q for %s", msg.Term, s.id)
		return ErrStale
	}

	s.inflight = false
	s.cancel = nil

	if msg.Err != nil {
		s.err = msg.Err
		s.logger.Printf("[listsync] search %q for %s failed: %v", msg.Term, s.id, msg.Err)
		return msg.Err
	}

	s.err = nil
	s.results = msg.Records
	s.resultTerm = msg.Term
	if s.results == nil {
		s.results = []R{}
	}
	return nil
}

// Reset abandons pending input and any request in flight and deactivates the
// overlay.
func (s *Search[R]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.inputSeq++
	s.reqSeq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.committed = ""
	s.inflight = false
	s.results = nil
	s.resultTerm = ""
	s.err = nil
}

func (s *Search[R]) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// ResultTerm is the term the current result set answers. It differs from
// Term while a newer search is in flight or after a newer search failed.
func (s *Search[R]) ResultTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultTerm
}

func (s *Search[R]) Active() bool {
	return s.Term() != ""
}

func (s *Search[R]) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight
}

func (s *Search[R]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Search[R]) Mode() SearchMode {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.committed == "" || s.results == nil:
		return ModePaged
	case len(s.results) == 0:
		return ModeNoResults
	default:
		return ModeResults
	}
}

// Results returns the current result set, nil when none has been received.
func (s *Search[R]) Results() []R {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.results == nil {
		return nil
	}
	out := make([]R, len(s.results))
	copy(out, s.results)
	return out
}

// patch applies fn to the result with targetID and returns a function that
// puts the original back. ok is false when no such result is shown.
func (s *Search[R]) patch(targetID string, fn func(R) (R, bool)) (restore func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := -1
	for i, r := range s.results {
		if r.RecordID() == targetID {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, false
	}

	original := s.results[index]
	reqSeq := s.reqSeq
	s.results = spliceRecord(s.results, index, fn)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.reqSeq != reqSeq {
			return
		}
		s.results = restoreRecord(s.results, targetID, index, original)
	}, true
}

// replace swaps in the authoritative copy of a result after a mutation.
func (s *Search[R]) replace(record R) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.results {
		if r.RecordID() == record.RecordID() {
			s.results = spliceRecord(s.results, i, func(R) (R, bool) { return record, true })
			return
		}
	}
}

// spliceRecord returns a copy of records with the element at index
// transformed, or removed when fn reports keep=false.
func spliceRecord[R Record](records []R, index int, fn func(R) (R, bool)) []R {
	next, keep := fn(records[index])
	out := make([]R, 0, len(records))
	out = append(out, records[:index]...)
	if keep {
		out = append(out, next)
	}
	return append(out, records[index+1:]...)
}

// restoreRecord puts original back: over the record with the same id if one
// is present, otherwise at index (clamped to the end).
func restoreRecord[R Record](records []R, targetID string, index int, original R) []R {
	for i, r := range records {
		if r.RecordID() == targetID {
			return spliceRecord(records, i, func(R) (R, bool) { return original, true })
		}
	}
	if index > len(records) {
		index = len(records)
	}
	out := make([]R, 0, len(records)+1)
	out = append(out, records[:index]...)
	out = append(out, original)
	return append(out, records[index:]...)
}
