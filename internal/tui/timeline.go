package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"classboard/internal/domain"
	"classboard/internal/listsync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type TimelineOptions struct {
	Identity listsync.Identity
	Source   listsync.Source[domain.Timeline]
	Delete   func(ctx context.Context, id string) error
	Watch    Watcher
	Debounce time.Duration
	Logger   *log.Logger
}

type timelineModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   TimelineOptions

	cache   *listsync.Cache[domain.Timeline]
	pager   *listsync.Pager[domain.Timeline]
	search  *listsync.Search[domain.Timeline]
	mutator *listsync.Mutator[domain.Timeline]

	input     textinput.Model
	spinner   spinner.Model
	searching bool
	cursor    int
	detail    *domain.Timeline
	notice    string
	live      bool
	width     int
}

func newTimelineModel(ctx context.Context, opts TimelineOptions) timelineModel {
	ctx, cancel := context.WithCancel(ctx)
	lopts := []listsync.Option{
		listsync.WithLogger(opts.Logger),
		listsync.WithDebounce(opts.Debounce),
	}

	cache := listsync.NewCache[domain.Timeline]()

	in := textinput.New()
	in.Prompt = "/ "
	in.Placeholder = "search by tags"
	in.CharLimit = 200

	return timelineModel{
		ctx:     ctx,
		cancel:  cancel,
		opts:    opts,
		cache:   cache,
		pager:   listsync.NewPager[domain.Timeline](cache, opts.Source, lopts...),
		search:  listsync.NewSearch[domain.Timeline](opts.Identity, opts.Source, lopts...),
		mutator: listsync.NewMutator[domain.Timeline](cache, lopts...),
		input:   in,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:   80,
	}
}

func (m timelineModel) Init() tea.Cmd {
	return tea.Batch(
		m.pager.RequestNextPage(m.ctx, m.opts.Identity),
		m.spinner.Tick,
		startWatch(m.ctx, m.opts.Watch),
	)
}

func (m timelineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listsync.PageMsg[domain.Timeline]:
		m.pager.Apply(msg)
		return m, nil

	case listsync.CommitMsg:
		return m, m.search.Commit(m.ctx, msg)

	case listsync.SearchResultMsg[domain.Timeline]:
		if err := m.search.Apply(msg); !errors.Is(err, listsync.ErrStale) {
			m.cursor = clampCursor(m.cursor, len(m.visible()))
		}
		return m, nil

	case listsync.MutationMsg[domain.Timeline]:
		err := m.mutator.Apply(msg)
		if err != nil && !errors.Is(err, listsync.ErrStale) {
			m.notice = "Delete failed: " + err.Error()
		}
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		if err == nil && msg.Removed && m.cache.Status(m.opts.Identity).HasNextPage {
			// Server pages are offsets; the next page would skip a record.
			return m, m.refresh()
		}
		return m, nil

	case watchReadyMsg:
		m.live = true
		return m, nextChange(msg.events)

	case watchFailedMsg:
		m.notice = "Live updates unavailable: " + msg.err.Error()
		return m, nil

	case watchClosedMsg:
		m.live = false
		return m, nil

	case changeMsg:
		cmds := []tea.Cmd{nextChange(msg.events)}
		if msg.event.Collection == domain.CollectionTimeline {
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.searching {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refresh drops every cached timeline page and reloads the first page and
// the committed search.
func (m timelineModel) refresh() tea.Cmd {
	m.cache.InvalidateCollection(domain.CollectionTimeline)
	cmds := []tea.Cmd{m.pager.RequestNextPage(m.ctx, m.opts.Identity)}
	if term := m.search.Term(); term != "" {
		cmds = append(cmds, m.search.Submit(m.ctx, term))
	}
	return tea.Batch(cmds...)
}

func (m timelineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	if m.detail != nil {
		switch msg.String() {
		case "esc", "q", "enter", "backspace":
			m.detail = nil
		}
		return m, nil
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.input.Focus()
	case "esc":
		if m.input.Value() != "" || m.search.Active() {
			m.input.SetValue("")
			m.search.Reset()
			m.cursor = 0
		}
	case "n":
		if m.search.Mode() == listsync.ModePaged {
			return m, m.pager.RequestNextPage(m.ctx, m.opts.Identity)
		}
	case "r":
		m.notice = ""
		return m, m.refresh()
	case "j", "down":
		n := len(m.visible())
		if m.cursor >= n-1 && m.search.Mode() == listsync.ModePaged {
			m.cursor = clampCursor(m.cursor, n)
			return m, m.pager.RequestNextPage(m.ctx, m.opts.Identity)
		}
		m.cursor = clampCursor(m.cursor+1, n)
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible()))
	case "enter":
		if entry, ok := m.selected(); ok {
			m.detail = &entry
		}
	case "d":
		return m.deleteSelected()
	}
	return m, nil
}

func (m timelineModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		m.cursor = 0
		return m, m.search.Submit(m.ctx, m.input.Value())
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	m.cursor = 0
	return m, tea.Batch(cmd, m.search.Input(m.input.Value()))
}

func (m timelineModel) deleteSelected() (tea.Model, tea.Cmd) {
	entry, ok := m.selected()
	if !ok || m.opts.Delete == nil {
		return m, nil
	}

	id := entry.ID
	cmd, err := m.mutator.Mutate(m.ctx, listsync.Mutation[domain.Timeline]{
		ID:       m.opts.Identity,
		TargetID: id,
		Transform: func(t domain.Timeline) (domain.Timeline, bool) {
			return t, false
		},
		Send: func(ctx context.Context) (*domain.Timeline, error) {
			return nil, m.opts.Delete(ctx, id)
		},
		Overlay: m.search,
	})
	if err != nil {
		m.notice = "Cannot delete: " + err.Error()
		return m, nil
	}

	m.notice = ""
	m.cursor = clampCursor(m.cursor, len(m.visible()))
	return m, cmd
}

// visible is what the list shows: search results while a search has them,
// the cached pages otherwise.
func (m timelineModel) visible() []domain.Timeline {
	if m.search.Mode() != listsync.ModePaged {
		return m.search.Results()
	}
	return m.cache.Records(m.opts.Identity)
}

func (m timelineModel) selected() (domain.Timeline, bool) {
	entries := m.visible()
	if len(entries) == 0 {
		return domain.Timeline{}, false
	}
	return entries[clampCursor(m.cursor, len(entries))], true
}

func (m timelineModel) View() string {
	if m.detail != nil {
		return m.detailView()
	}

	var b strings.Builder

	header := titleStyle.Render("Timeline")
	if m.live {
		header += mutedStyle.Render("  ● live")
	}
	b.WriteString(header + "\n")

	if m.searching || m.input.Value() != "" {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.body())

	if m.notice != "" {
		b.WriteString("\n" + errorStyle.Render(m.notice))
	}
	b.WriteString(helpStyle.Render("/ search · n more · enter open · d delete · r refresh · q quit"))
	return b.String()
}

func (m timelineModel) body() string {
	var b strings.Builder

	if m.search.Searching() {
		b.WriteString(m.spinner.View() + " Searching…\n")
	}
	if err := m.search.Err(); err != nil {
		b.WriteString(errorStyle.Render("Search failed: "+err.Error()) + mutedStyle.Render(" (/ then enter to retry)") + "\n")
	}

	switch m.search.Mode() {
	case listsync.ModeNoResults:
		b.WriteString(mutedStyle.Render(fmt.Sprintf("No results for %q", m.search.ResultTerm())) + "\n")
		return b.String()
	case listsync.ModeResults:
		b.WriteString(m.rows(m.search.Results()))
		return b.String()
	}

	status := m.cache.Status(m.opts.Identity)
	entries := m.cache.Records(m.opts.Identity)

	if len(entries) == 0 {
		switch {
		case status.IsLoading:
			b.WriteString(m.spinner.View() + " Loading timeline…\n")
		case status.IsError:
			b.WriteString(errorStyle.Render("Could not load timeline: "+status.Err.Error()) + mutedStyle.Render(" (r to retry)") + "\n")
		case !status.HasNextPage:
			b.WriteString(mutedStyle.Render("No entries yet.") + "\n")
		}
		return b.String()
	}

	b.WriteString(m.rows(entries))

	switch {
	case status.IsFetchingNextPage:
		b.WriteString(m.spinner.View() + " Loading more…\n")
	case status.IsError:
		b.WriteString(errorStyle.Render("Could not load more: "+status.Err.Error()) + mutedStyle.Render(" (n to retry)") + "\n")
	case status.HasNextPage:
		b.WriteString(mutedStyle.Render("n: load more") + "\n")
	default:
		b.WriteString(mutedStyle.Render("End of timeline") + "\n")
	}
	return b.String()
}

func (m timelineModel) rows(entries []domain.Timeline) string {
	var b strings.Builder
	cursor := clampCursor(m.cursor, len(entries))
	textWidth := m.width - 36
	if textWidth < 20 {
		textWidth = 20
	}

	for i, e := range entries {
		line := fmt.Sprintf("%s  %-14s %s",
			formatDate(e.CreatedAt),
			truncateToWidth(e.AuthorName, 14),
			truncateToWidth(firstLine(e.MainText), textWidth),
		)
		if tags := renderTags(e.Tags); tags != "" {
			line += "  " + tags
		}
		if i == cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}

func (m timelineModel) detailView() string {
	e := m.detail
	var b strings.Builder

	b.WriteString(titleStyle.Render(e.AuthorName) + mutedStyle.Render("  "+formatDate(e.CreatedAt)) + "\n")
	if e.Length != "" {
		b.WriteString(mutedStyle.Render("Length: "+e.Length) + "\n")
	}
	b.WriteString("\n" + RenderMarkdown(e.MainText, m.width-4) + "\n")

	if e.Photo != "" {
		b.WriteString("\n" + mutedStyle.Render("Photo: ") + e.Photo + "\n")
	}
	for _, link := range e.Links {
		b.WriteString(mutedStyle.Render("Link: ") + link + "\n")
	}
	if tags := renderTags(e.Tags); tags != "" {
		b.WriteString("\n" + tags + "\n")
	}
	b.WriteString(helpStyle.Render("esc back"))
	return b.String()
}
