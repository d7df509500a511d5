package cli

import (
	"fmt"
	"io"
	"strings"

	"classboard/internal/domain"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "243"})
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "203"})
	tagStyle      = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "25", Dark: "75"})
	archivedStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "246", Dark: "240"})
)

func tagList(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "#" + t
	}
	return tagStyle.Render(strings.Join(parts, " "))
}

func printStudent(w io.Writer, s domain.Student) {
	line := fmt.Sprintf("%s  %s", mutedStyle.Render(s.ID[:min(8, len(s.ID))]), titleStyle.Render(s.Name))
	if s.Email != "" {
		line += "  " + s.Email
	}
	if tags := tagList(s.Tags); tags != "" {
		line += "  " + tags
	}
	if s.Archived() {
		line += "  " + archivedStyle.Render("[archived]")
	}
	fmt.Fprintln(w, line)
}

func printTimeline(w io.Writer, e domain.Timeline) {
	text := strings.Join(strings.Fields(e.MainText), " ")
	if len([]rune(text)) > 72 {
		text = string([]rune(text)[:71]) + "…"
	}
	line := fmt.Sprintf("%s  %s  %s  %s",
		mutedStyle.Render(e.ID[:min(8, len(e.ID))]),
		e.CreatedAt.Local().Format("2006-01-02"),
		titleStyle.Render(e.AuthorName),
		text,
	)
	if tags := tagList(e.Tags); tags != "" {
		line += "  " + tags
	}
	fmt.Fprintln(w, line)
}

func printInstructor(w io.Writer, in *domain.Instructor) {
	fmt.Fprintf(w, "%s <%s>\n", titleStyle.Render(in.Name), in.Email)
	fmt.Fprintln(w, mutedStyle.Render("id: "+in.ID))
}
