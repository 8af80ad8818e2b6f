package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	xansi "github.com/charmbracelet/x/ansi"

	"taskdeck-cli/internal/model"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }

func (i taskItem) line() string {
	parts := []string{statusGlyph(i.task.Status), i.task.Title}
	if i.task.DueDate != "" {
		parts = append(parts, "due "+i.task.DueDate)
	}
	parts = append(parts, string(i.task.Priority))
	if n := len(i.task.AttachedDocuments); n > 0 {
		parts = append(parts, fmt.Sprintf("[%d doc]", n))
	}
	return strings.Join(parts, "  ")
}

func statusGlyph(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return "✓"
	case model.StatusInProgress:
		return "◐"
	default:
		return "·"
	}
}

// taskDelegate renders one task per row, width-aware so ANSI styling never
// bleeds past the list column.
type taskDelegate struct {
	normal   lipglossStyle
	selected lipglossStyle
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal:   rowStyle,
		selected: selectedRowStyle,
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		fmt.Fprint(w, "")
		return
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}

	it, ok := item.(taskItem)
	if !ok {
		return
	}

	line := it.line()
	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}
	fmt.Fprint(w, style.Render(line))
}
