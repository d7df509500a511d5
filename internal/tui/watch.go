package tui

import (
	"context"

	"classboard/internal/domain"

	tea "github.com/charmbracelet/bubbletea"
)

// Watcher opens the realtime invalidation feed.
type Watcher func(ctx context.Context) (<-chan domain.ChangeEvent, error)

type watchReadyMsg struct {
	events <-chan domain.ChangeEvent
}

type watchFailedMsg struct {
	err error
}

type changeMsg struct {
	event  domain.ChangeEvent
	events <-chan domain.ChangeEvent
}

type watchClosedMsg struct{}

func startWatch(ctx context.Context, w Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		events, err := w(ctx)
		if err != nil {
			return watchFailedMsg{err: err}
		}
		return watchReadyMsg{events: events}
	}
}

func nextChange(events <-chan domain.ChangeEvent) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return changeMsg{event: ev, events: events}
	}
}
