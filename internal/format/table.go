package format

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskdeck-cli/internal/model"
)

// Human-readable table output for `--format table`. Styling is kept to
// header emphasis and muted metadata so it stays legible on light and
// dark terminals alike.

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
)

func renderRows(w *strings.Builder, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, r := range rows {
		for i, cell := range r {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	for i, h := range headers {
		if i > 0 {
			w.WriteString("  ")
		}
		w.WriteString(headerStyle.Render(pad(h, widths[i])))
	}
	w.WriteString("\n")
	for _, r := range rows {
		for i, cell := range r {
			if i > 0 {
				w.WriteString("  ")
			}
			w.WriteString(pad(cell, widths[i]))
		}
		w.WriteString("\n")
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderTasks renders the current task page plus its pagination line.
func RenderTasks(tasks []model.Task, pg model.Pagination) string {
	var b strings.Builder
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID, t.Title, string(t.Status), string(t.Priority), t.DueDate,
			fmt.Sprintf("%d", len(t.AttachedDocuments)),
		})
	}
	renderRows(&b, []string{"ID", "TITLE", "STATUS", "PRIORITY", "DUE", "DOCS"}, rows)
	b.WriteString(mutedStyle.Render(fmt.Sprintf("page %d/%d (%d tasks)",
		pg.CurrentPage, pg.TotalPages, pg.TotalTasks)))
	b.WriteString("\n")
	return b.String()
}

func RenderUsers(users []model.User) string {
	var b strings.Builder
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.ID, u.Email, string(u.Role)})
	}
	renderRows(&b, []string{"ID", "EMAIL", "ROLE"}, rows)
	return b.String()
}
