package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// The TUI must stay readable on both light and dark terminal backgrounds,
// so colors are adaptive throughout.

type lipglossStyle = lipgloss.Style

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ac("235", "255"))
	mutedStyle = lipgloss.NewStyle().Foreground(ac("240", "245"))
	errorStyle = lipgloss.NewStyle().Foreground(ac("124", "203"))

	rowStyle         = lipgloss.NewStyle()
	selectedRowStyle = lipgloss.NewStyle().
				Foreground(ac("235", "255")).
				Background(ac("#e9e9e9", "#262626")).
				Bold(true)

	fieldLabelStyle = lipgloss.NewStyle().Bold(true)
)

// renderInputLine keeps a text input on one visual line and never wider
// than the given width, terminating ANSI styling to prevent bleed.
func renderInputLine(width int, inputView string) string {
	if width < 10 {
		width = 10
	}
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := " " + inputView
	if xansi.StringWidth(line) > width {
		line = xansi.Cut(line, 0, width) + "\x1b[0m"
	}
	return line
}
