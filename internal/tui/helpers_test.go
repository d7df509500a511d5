package tui

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"classboard/internal/domain"
	"classboard/internal/listsync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

var quiet = log.New(io.Discard, "", 0)

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and returns the messages it produces. Commands that block
// past the deadline (cursor blink, idle watchers) and spinner ticks are
// dropped so the loop below terminates.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	select {
	case msg := <-done:
		switch msg := msg.(type) {
		case nil, spinner.TickMsg:
			return nil
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range msg {
				out = append(out, collect(c)...)
			}
			return out
		default:
			return []tea.Msg{msg}
		}
	case <-time.After(250 * time.Millisecond):
		return nil
	}
}

// drive feeds every message cmd produces back into m until nothing is left.
func drive[M tea.Model](t *testing.T, m M, cmd tea.Cmd) M {
	t.Helper()
	queue := collect(cmd)
	for rounds := 0; len(queue) > 0; rounds++ {
		if rounds > 100 {
			t.Fatal("update loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		next, c := m.Update(msg)
		m = next.(M)
		queue = append(queue, collect(c)...)
	}
	return m
}

// press sends keys one by one and drives each resulting command.
func press[M tea.Model](t *testing.T, m M, keys ...string) M {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(key(k))
		m = drive(t, next.(M), cmd)
	}
	return m
}

type timelineSource struct {
	mu          sync.Mutex
	pages       [][]domain.Timeline
	pageErr     error
	filtered    map[string][]domain.Timeline
	pageCalls   []int
	filterCalls [][]string
}

func (s *timelineSource) FetchPage(ctx context.Context, _ listsync.Identity, page int) ([]domain.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCalls = append(s.pageCalls, page)
	if s.pageErr != nil {
		return nil, s.pageErr
	}
	if page < len(s.pages) {
		return s.pages[page], nil
	}
	return nil, nil
}

func (s *timelineSource) FetchFiltered(ctx context.Context, _ listsync.Identity, tokens []string) ([]domain.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterCalls = append(s.filterCalls, tokens)
	return s.filtered[strings.Join(tokens, " ")], nil
}

func (s *timelineSource) setPages(pages ...[]domain.Timeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
}

func (s *timelineSource) calls() ([]int, [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.pageCalls...), append([][]string(nil), s.filterCalls...)
}

type studentSource struct {
	mu        sync.Mutex
	pages     [][]domain.Student
	pageCalls []int
}

func (s *studentSource) FetchPage(ctx context.Context, _ listsync.Identity, page int) ([]domain.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageCalls = append(s.pageCalls, page)
	if page < len(s.pages) {
		return s.pages[page], nil
	}
	return nil, nil
}

func (s *studentSource) FetchFiltered(ctx context.Context, _ listsync.Identity, tokens []string) ([]domain.Student, error) {
	return nil, nil
}

func (s *studentSource) setPages(pages ...[]domain.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
}

func boolPtr(b bool) *bool { return &b }
