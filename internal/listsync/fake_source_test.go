package listsync

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
)

type item struct {
	ID       string
	Archived *bool
	Tags     []string
}

func (i item) RecordID() string {
	return i.ID
}

func toggleArchived(i item) (item, bool) {
	next := true
	if i.Archived != nil {
		next = !*i.Archived
	}
	i.Archived = &next
	return i, true
}

func remove(item) (item, bool) {
	return item{}, false
}

func makeItems(prefix string, n int) []item {
	items := make([]item, n)
	for i := range items {
		items[i] = item{ID: fmt.Sprintf("%s%d", prefix, i)}
	}
	return items
}

type fakeSource struct {
	mu       sync.Mutex
	pages    map[int][]item
	pageErr  map[int]error
	filtered map[string][]item
	filtErr  error

	pageCalls     []int
	filteredCalls [][]string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pages:    make(map[int][]item),
		pageErr:  make(map[int]error),
		filtered: make(map[string][]item),
	}
}

func (f *fakeSource) FetchPage(ctx context.Context, id Identity, page int) ([]item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pageCalls = append(f.pageCalls, page)
	if err := f.pageErr[page]; err != nil {
		return nil, err
	}
	return f.pages[page], nil
}

func (f *fakeSource) FetchFiltered(ctx context.Context, id Identity, tokens []string) ([]item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.filteredCalls = append(f.filteredCalls, tokens)
	if f.filtErr != nil {
		return nil, f.filtErr
	}
	return f.filtered[fmt.Sprint(tokens)], nil
}

func quietLogger() Option {
	return WithLogger(log.New(io.Discard, "", 0))
}

var students = Identity{Collection: "students", Owner: "inst-1"}

// offsetSource pages rows by skip/limit like the server does, so deleting a
// row shifts every later page by one.
type offsetSource struct {
	mu       sync.Mutex
	rows     []item
	pageSize int
	calls    []int
}

func (o *offsetSource) FetchPage(ctx context.Context, id Identity, page int) ([]item, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls = append(o.calls, page)
	start := page * o.pageSize
	if start >= len(o.rows) {
		return []item{}, nil
	}
	end := min(start+o.pageSize, len(o.rows))
	out := make([]item, end-start)
	copy(out, o.rows[start:end])
	return out, nil
}

func (o *offsetSource) FetchFiltered(ctx context.Context, id Identity, tokens []string) ([]item, error) {
	return nil, nil
}

func (o *offsetSource) delete(targetID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, r := range o.rows {
		if r.ID == targetID {
			o.rows = append(o.rows[:i:i], o.rows[i+1:]...)
			return
		}
	}
}

func recordIDs(records []item) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
