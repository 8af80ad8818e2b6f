package tui

import (
	"fmt"
	"strings"
)

func (m appModel) View() string {
	switch m.view {
	case viewLogin:
		return m.login.view(min(m.width, 60)) + "\n"
	case viewDetail:
		return m.detailView()
	default:
		return m.tasksView()
	}
}

func (m appModel) tasksView() string {
	st := m.deps.Ctrl.State()
	_, pg, _ := m.deps.DB.Tasks()

	filters := []string{
		"status: " + orAll(string(st.Status)),
		"priority: " + orAll(string(st.Priority)),
		"sort: " + st.Sort,
		fmt.Sprintf("page %d/%d", st.Page, max(pg.TotalPages, 1)),
	}
	header := mutedStyle.Render(strings.Join(filters, " · "))

	footer := mutedStyle.Render("s/p/o: filters · ←/→: page · t: advance status · r: refresh · enter: detail · L: logout · q: quit")
	if m.status != "" {
		footer = errorStyle.Render(m.status)
	}

	return header + "\n" + m.tasks.View() + "\n" + footer
}

func (m appModel) detailView() string {
	task, ok := m.deps.DB.FindTask(m.detailID)
	if !ok {
		return errorStyle.Render("task no longer on this page") + "\n" +
			mutedStyle.Render("esc: back")
	}

	width := min(max(m.width-2, 20), 100)

	var b strings.Builder
	b.WriteString(titleStyle.Render(task.Title))
	b.WriteString("\n\n")
	b.WriteString(fieldLabelStyle.Render("Status:   "))
	b.WriteString(string(task.Status))
	b.WriteString("\n")
	b.WriteString(fieldLabelStyle.Render("Priority: "))
	b.WriteString(string(task.Priority))
	b.WriteString("\n")
	if task.DueDate != "" {
		b.WriteString(fieldLabelStyle.Render("Due:      "))
		b.WriteString(task.DueDate)
		b.WriteString("\n")
	}
	if task.AssignedTo != "" {
		b.WriteString(fieldLabelStyle.Render("Assignee: "))
		b.WriteString(task.AssignedTo)
		b.WriteString("\n")
	}
	if desc := renderMarkdown(task.Description, width); desc != "" {
		b.WriteString("\n")
		b.WriteString(desc)
		b.WriteString("\n")
	}
	if len(task.AttachedDocuments) > 0 {
		b.WriteString("\n")
		b.WriteString(fieldLabelStyle.Render("Documents"))
		b.WriteString("\n")
		for _, d := range task.AttachedDocuments {
			b.WriteString(mutedStyle.Render("  " + d.OriginalName + "  (" + d.StoredName + ")"))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("esc: back · q: quit"))
	return b.String()
}

func orAll(s string) string {
	if s == "" {
		return "all"
	}
	return s
}
