package tui

import (
	"strings"
	"time"

	xansi "github.com/charmbracelet/x/ansi"
)

func truncateToWidth(s string, w int) string {
	s = strings.Join(strings.Fields(s), " ")
	if w <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= w {
		return s
	}
	if w <= 1 {
		return "…"
	}
	return xansi.Cut(s, 0, w-1) + "…"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "          "
	}
	return t.Local().Format("2006-01-02")
}

func renderTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = "#" + t
	}
	return tagStyle.Render(strings.Join(parts, " "))
}

func clampCursor(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
