package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/query"
	"taskdeck-cli/internal/session"
	"taskdeck-cli/internal/store"
)

type Deps struct {
	Sessions *session.Manager
	DB       *store.DB
	Ctrl     *query.Controller
	Pipe     *mutate.Pipeline
}

func Run(d Deps) error {
	// Detect the terminal's capabilities once, up front. Querying lazily
	// mid-render can block on some terminals.
	lipgloss.SetColorProfile(termenv.ColorProfile())

	m := newAppModel(d)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
