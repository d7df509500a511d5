package tui

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"classboard/internal/domain"
	"classboard/internal/listsync"
	"classboard/internal/roster"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type RosterOptions struct {
	Identity listsync.Identity
	Source   listsync.Source[domain.Student]
	Toggle   func(ctx context.Context, id string) (*domain.Student, error)
	Delete   func(ctx context.Context, id string) error
	Watch    Watcher
	Logger   *log.Logger
}

type rosterModel struct {
	ctx    context.Context
	cancel context.CancelFunc
	opts   RosterOptions

	cache   *listsync.Cache[domain.Student]
	pager   *listsync.Pager[domain.Student]
	mutator *listsync.Mutator[domain.Student]

	input        textinput.Model
	spinner      spinner.Model
	filtering    bool
	showArchived bool
	tag          string
	cursor       int
	notice       string
	live         bool
	width        int
}

func newRosterModel(ctx context.Context, opts RosterOptions) rosterModel {
	ctx, cancel := context.WithCancel(ctx)
	lopts := []listsync.Option{listsync.WithLogger(opts.Logger)}

	cache := listsync.NewCache[domain.Student]()

	in := textinput.New()
	in.Prompt = "name: "
	in.Placeholder = "filter by name"
	in.CharLimit = 120

	return rosterModel{
		ctx:     ctx,
		cancel:  cancel,
		opts:    opts,
		cache:   cache,
		pager:   listsync.NewPager[domain.Student](cache, opts.Source, lopts...),
		mutator: listsync.NewMutator[domain.Student](cache, lopts...),
		input:   in,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		width:   80,
	}
}

func (m rosterModel) Init() tea.Cmd {
	return tea.Batch(
		m.pager.RequestNextPage(m.ctx, m.opts.Identity),
		m.spinner.Tick,
		startWatch(m.ctx, m.opts.Watch),
	)
}

func (m rosterModel) filter() roster.Filter {
	f := roster.Filter{
		Name:         m.input.Value(),
		ShowArchived: m.showArchived,
	}
	if m.tag != "" {
		f.Tags = []string{m.tag}
	}
	return f
}

func (m rosterModel) visible() []domain.Student {
	return roster.Apply(m.cache.Records(m.opts.Identity), m.filter())
}

func (m rosterModel) selected() (domain.Student, bool) {
	students := m.visible()
	if len(students) == 0 {
		return domain.Student{}, false
	}
	return students[clampCursor(m.cursor, len(students))], true
}

func (m rosterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case listsync.PageMsg[domain.Student]:
		// Filters run over the whole roster, so keep paging until it ends.
		if err := m.pager.Apply(msg); err != nil {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		return m, m.pager.RequestNextPage(m.ctx, m.opts.Identity)

	case listsync.MutationMsg[domain.Student]:
		err := m.mutator.Apply(msg)
		if err != nil && !errors.Is(err, listsync.ErrStale) {
			m.notice = "Update failed: " + err.Error()
		}
		m.cursor = clampCursor(m.cursor, len(m.visible()))
		if err == nil && msg.Removed && m.cache.Status(m.opts.Identity).HasNextPage {
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
		if msg.event.Collection == domain.CollectionStudents {
			cmds = append(cmds, m.refresh())
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.filtering {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m rosterModel) refresh() tea.Cmd {
	m.cache.InvalidateCollection(domain.CollectionStudents)
	return m.pager.RequestNextPage(m.ctx, m.opts.Identity)
}

func (m rosterModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	if m.filtering {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.filtering = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.cursor = 0
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "/":
		m.filtering = true
		return m, m.input.Focus()
	case "esc":
		m.input.SetValue("")
		m.tag = ""
		m.cursor = 0
	case "v":
		m.showArchived = !m.showArchived
		m.cursor = 0
	case "t":
		m.tag = nextTag(roster.Tags(m.cache.Records(m.opts.Identity)), m.tag)
		m.cursor = 0
	case "r":
		m.notice = ""
		return m, m.refresh()
	case "j", "down":
		m.cursor = clampCursor(m.cursor+1, len(m.visible()))
	case "k", "up":
		m.cursor = clampCursor(m.cursor-1, len(m.visible()))
	case "a":
		return m.archiveSelected()
	case "d":
		return m.deleteSelected()
	}
	return m, nil
}

// nextTag cycles through the tag universe and back to no tag.
func nextTag(universe []string, current string) string {
	if len(universe) == 0 {
		return ""
	}
	if current == "" {
		return universe[0]
	}
	for i, t := range universe {
		if t == current {
			if i+1 < len(universe) {
				return universe[i+1]
			}
			return ""
		}
	}
	return universe[0]
}

func (m rosterModel) archiveSelected() (tea.Model, tea.Cmd) {
	student, ok := m.selected()
	if !ok || m.opts.Toggle == nil {
		return m, nil
	}

	id := student.ID
	return m.mutate(listsync.Mutation[domain.Student]{
		ID:       m.opts.Identity,
		TargetID: id,
		Transform: func(s domain.Student) (domain.Student, bool) {
			return domain.ToggleArchived(s), true
		},
		Send: func(ctx context.Context) (*domain.Student, error) {
			return m.opts.Toggle(ctx, id)
		},
	})
}

func (m rosterModel) deleteSelected() (tea.Model, tea.Cmd) {
	student, ok := m.selected()
	if !ok || m.opts.Delete == nil {
		return m, nil
	}

	id := student.ID
	return m.mutate(listsync.Mutation[domain.Student]{
		ID:       m.opts.Identity,
		TargetID: id,
		Transform: func(s domain.Student) (domain.Student, bool) {
			return s, false
		},
		Send: func(ctx context.Context) (*domain.Student, error) {
			return nil, m.opts.Delete(ctx, id)
		},
	})
}

func (m rosterModel) mutate(mut listsync.Mutation[domain.Student]) (tea.Model, tea.Cmd) {
	cmd, err := m.mutator.Mutate(m.ctx, mut)
	if err != nil {
		m.notice = "Cannot update: " + err.Error()
		return m, nil
	}
	m.notice = ""
	m.cursor = clampCursor(m.cursor, len(m.visible()))
	return m, cmd
}

func (m rosterModel) View() string {
	var b strings.Builder

	header := titleStyle.Render("Students")
	if m.showArchived {
		header += mutedStyle.Render("  (archived)")
	}
	if m.tag != "" {
		header += "  " + renderTags([]string{m.tag})
	}
	if m.live {
		header += mutedStyle.Render("  ● live")
	}
	b.WriteString(header + "\n")

	if m.filtering || m.input.Value() != "" {
		b.WriteString(m.input.View() + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.body())

	if m.notice != "" {
		b.WriteString("\n" + errorStyle.Render(m.notice))
	}
	b.WriteString(helpStyle.Render("/ name · t tag · v archived · a archive · d delete · r refresh · q quit"))
	return b.String()
}

func (m rosterModel) body() string {
	status := m.cache.Status(m.opts.Identity)
	all := m.cache.Records(m.opts.Identity)

	if len(all) == 0 {
		switch {
		case status.IsLoading:
			return m.spinner.View() + " Loading students…\n"
		case status.IsError:
			return errorStyle.Render("Could not load students: "+status.Err.Error()) + mutedStyle.Render(" (r to retry)") + "\n"
		default:
			return mutedStyle.Render("No students") + "\n"
		}
	}

	var b strings.Builder
	students := roster.Apply(all, m.filter())
	if len(students) == 0 {
		b.WriteString(mutedStyle.Render("No students match") + "\n")
	}

	cursor := clampCursor(m.cursor, len(students))
	for i, s := range students {
		line := fmt.Sprintf("%-24s %s", truncateToWidth(s.Name, 24), truncateToWidth(s.Email, 28))
		if tags := renderTags(s.Tags); tags != "" {
			line += "  " + tags
		}
		if s.Archived() {
			line = archivedStyle.Render(line + "  [archived]")
		}
		if i == cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	switch {
	case status.IsFetchingNextPage:
		b.WriteString(m.spinner.View() + " Loading more…\n")
	case status.IsError:
		b.WriteString(errorStyle.Render("Could not load more: "+status.Err.Error()) + "\n")
	}
	return b.String()
}
