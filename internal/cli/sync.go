package cli

import (
	"context"

	"classboard/internal/listsync"
)

// runMutation applies mut optimistically, sends it and settles the outcome.
// Outside an event loop the send runs inline.
func runMutation[R listsync.Record](ctx context.Context, m *listsync.Mutator[R], mut listsync.Mutation[R]) error {
	cmd, err := m.Mutate(ctx, mut)
	if err != nil {
		return err
	}
	msg, _ := cmd().(listsync.MutationMsg[R])
	return m.Apply(msg)
}

// runSearch commits term at once and applies the result.
func runSearch[R listsync.Record](ctx context.Context, s *listsync.Search[R], term string) error {
	cmd := s.Submit(ctx, term)
	if cmd == nil {
		return nil
	}
	msg, _ := cmd().(listsync.SearchResultMsg[R])
	return s.Apply(msg)
}
