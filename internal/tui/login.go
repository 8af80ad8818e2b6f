package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int

	// registering toggles between login and register against the same
	// form; register also authenticates on success.
	registering bool

	err string
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	return loginForm{email: email, password: password}
}

func (f loginForm) init() tea.Cmd { return textinput.Blink }

func (f loginForm) values() (email, password string) {
	return strings.TrimSpace(f.email.Value()), f.password.Value()
}

func (f loginForm) update(msg tea.Msg) (loginForm, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "shift+tab", "up", "down":
			f.focus = (f.focus + 1) % 2
			if f.focus == 0 {
				f.password.Blur()
				return f, f.email.Focus()
			}
			f.email.Blur()
			return f, f.password.Focus()

		case "ctrl+r":
			f.registering = !f.registering
			f.err = ""
			return f, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	f.email, cmd = f.email.Update(msg)
	cmds = append(cmds, cmd)
	f.password, cmd = f.password.Update(msg)
	cmds = append(cmds, cmd)
	return f, tea.Batch(cmds...)
}

func (f loginForm) view(width int) string {
	title := "Log in"
	if f.registering {
		title = "Register"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(renderInputLine(width, f.email.View()))
	b.WriteString("\n")
	b.WriteString(renderInputLine(width, f.password.View()))
	b.WriteString("\n\n")
	if f.err != "" {
		b.WriteString(errorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("enter: submit · tab: next field · ctrl+r: toggle register · ctrl+c: quit"))
	return b.String()
}
