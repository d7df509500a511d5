// Package listsync keeps paged, searchable, optimistically mutated record lists
// in step with a remote source.
//
// Every network call is returned as a tea.Cmd and its outcome comes back as a
// tea.Msg that the owner of the state applies from its single Update loop.
// Callers outside bubbletea run the command and apply the message directly.
package listsync

import (
	"context"
	"log"
	"time"
)

// Identity scopes one cached page sequence. Requests with equal identities
// share state, different identities never touch each other.
type Identity struct {
	Collection string
	Owner      string
	Extra      string
}

func (id Identity) String() string {
	if id.Extra == "" {
		return id.Collection + "/" + id.Owner
	}
	return id.Collection + "/" + id.Owner + "/" + id.Extra
}

// Record is anything a list can hold. Records are opaque apart from their id.
type Record interface {
	RecordID() string
}

// Source translates page and filter requests into remote calls. It holds no
// caching logic of its own.
type Source[R Record] interface {
	FetchPage(ctx context.Context, id Identity, page int) ([]R, error)
	FetchFiltered(ctx context.Context, id Identity, tokens []string) ([]R, error)
}

const DefaultDebounce = 300 * time.Millisecond

type options struct {
	logger   *log.Logger
	debounce time.Duration
}

type Option func(*options)

// WithLogger sets where stale discards, search failures and rollbacks are
// reported. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithDebounce sets the quiet period before search input is committed.
func WithDebounce(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.debounce = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   log.Default(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
