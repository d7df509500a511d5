package tui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted    lipgloss.TerminalColor = ac("240", "243")
	colorAccent   lipgloss.TerminalColor = ac("25", "75")
	colorError    lipgloss.TerminalColor = ac("160", "203")
	colorSelected lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorArchived lipgloss.TerminalColor = ac("246", "240")
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	selectedStyle = lipgloss.NewStyle().Background(colorSelected).Bold(true)
	archivedStyle = lipgloss.NewStyle().Foreground(colorArchived).Italic(true)
	tagStyle      = lipgloss.NewStyle().Foreground(colorAccent)
	helpStyle     = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
)

// applyColorProfile honors NO_COLOR and otherwise trusts the terminal.
func applyColorProfile() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()
	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if profile != termenv.Ascii && (strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit")) {
		profile = termenv.TrueColor
	}
	lipgloss.SetColorProfile(profile)
}
