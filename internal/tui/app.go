package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/query"
)

type view int

const (
	viewLogin view = iota
	viewTasks
	viewDetail
)

// fetchDoneMsg signals that a fetch (issued by a key handler) has settled.
// The result itself already landed in the store through the sequence gate;
// the message only tells the UI to re-read its snapshot.
type fetchDoneMsg struct{ err error }

type authDoneMsg struct{ err error }

type loggedOutMsg struct{}

type appModel struct {
	deps Deps

	width  int
	height int

	view     view
	login    loginForm
	tasks    list.Model
	detailID string

	// status is the one-line footer: last error or hint.
	status string
}

func newAppModel(d Deps) appModel {
	m := appModel{deps: d, login: newLoginForm()}

	m.tasks = list.New(nil, newTaskDelegate(), 0, 0)
	m.tasks.Title = "Tasks"
	m.tasks.SetShowStatusBar(false)
	m.tasks.SetFilteringEnabled(false) // filtering is server-side
	m.tasks.SetShowHelp(false)
	m.tasks.DisableQuitKeybindings()

	if d.Sessions.Current().Authenticated() {
		m.view = viewTasks
	} else {
		m.view = viewLogin
	}
	return m
}

func (m appModel) Init() tea.Cmd {
	if m.view == viewTasks {
		return m.refreshCmd()
	}
	return m.login.init()
}

func (m appModel) refreshCmd() tea.Cmd {
	ctrl := m.deps.Ctrl
	return func() tea.Msg {
		return fetchDoneMsg{err: ctrl.Refresh(context.Background())}
	}
}

func (m appModel) setFilterCmd(p query.Partial) tea.Cmd {
	ctrl := m.deps.Ctrl
	return func() tea.Msg {
		return fetchDoneMsg{err: ctrl.SetFilter(context.Background(), p)}
	}
}

func (m appModel) setPageCmd(n int) tea.Cmd {
	ctrl := m.deps.Ctrl
	return func() tea.Msg {
		return fetchDoneMsg{err: ctrl.SetPage(context.Background(), n)}
	}
}

// advanceStatusCmd moves the task to the next status through the mutation
// pipeline. The pipeline patches the store on the server's ack and then
// refetches, so the completion message only re-reads the snapshot.
func (m appModel) advanceStatusCmd(t model.Task) tea.Cmd {
	next := advanceStatus(t.Status)
	pipe := m.deps.Pipe
	id := t.ID
	return func() tea.Msg {
		return fetchDoneMsg{err: pipe.UpdateTask(context.Background(), id, model.TaskPatch{Status: &next})}
	}
}

func (m appModel) logoutCmd() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		_ = d.Sessions.Logout(context.Background())
		// Responses of fetches still in flight must not land in the
		// now-unauthenticated store.
		d.DB.Fence()
		return loggedOutMsg{}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.tasks.SetSize(msg.Width, msg.Height-3)
		return m, nil

	case fetchDoneMsg:
		if msg.err != nil && api.IsUnauthorized(msg.err) {
			// Stale credential: force the logout locally and return to the
			// login view. The consumer owns this decision, not the gateway.
			_ = m.deps.Sessions.Invalidate(context.Background())
			m.deps.DB.Fence()
			m.view = viewLogin
			m.login = newLoginForm()
			m.status = "session expired, log in again"
			return m, m.login.init()
		}
		m.reloadTasks()
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		return m, nil

	case authDoneMsg:
		if msg.err != nil {
			m.login.err = msg.err.Error()
			return m, nil
		}
		m.view = viewTasks
		m.status = ""
		return m, m.refreshCmd()

	case loggedOutMsg:
		m.view = viewLogin
		m.login = newLoginForm()
		m.status = "logged out"
		return m, m.login.init()

	case tea.KeyMsg:
		switch m.view {
		case viewLogin:
			return m.updateLogin(msg)
		case viewDetail:
			return m.updateDetail(msg)
		default:
			return m.updateTasks(msg)
		}
	}

	if m.view == viewLogin {
		var cmd tea.Cmd
		m.login, cmd = m.login.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m appModel) updateTasks(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.deps.Ctrl.State()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		return m, m.refreshCmd()

	case "s":
		next := cycleStatus(st.Status)
		return m, m.setFilterCmd(query.Partial{Status: &next})

	case "p":
		next := cyclePriority(st.Priority)
		return m, m.setFilterCmd(query.Partial{Priority: &next})

	case "o":
		next := cycleSort(st.Sort)
		return m, m.setFilterCmd(query.Partial{Sort: &next})

	case "right", "n":
		_, pg, _ := m.deps.DB.Tasks()
		if st.Page < pg.TotalPages {
			return m, m.setPageCmd(st.Page + 1)
		}
		return m, nil

	case "left", "b":
		if st.Page > 1 {
			return m, m.setPageCmd(st.Page - 1)
		}
		return m, nil

	case "enter":
		if it, ok := m.tasks.SelectedItem().(taskItem); ok {
			m.detailID = it.task.ID
			m.view = viewDetail
		}
		return m, nil

	case "t":
		if it, ok := m.tasks.SelectedItem().(taskItem); ok {
			return m, m.advanceStatusCmd(it.task)
		}
		return m, nil

	case "L":
		return m, m.logoutCmd()
	}

	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "enter":
		m.view = viewTasks
		return m, nil
	}
	return m, nil
}

func (m appModel) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		email, password := m.login.values()
		register := m.login.registering
		sessions := m.deps.Sessions
		return m, func() tea.Msg {
			var err error
			if register {
				err = sessions.Register(context.Background(), email, password)
			} else {
				err = sessions.Login(context.Background(), email, password)
			}
			return authDoneMsg{err: err}
		}
	}
	var cmd tea.Cmd
	m.login, cmd = m.login.update(msg)
	return m, cmd
}

// reloadTasks rebuilds the list from the store snapshot. The snapshot
// reflects the most recently applied fetch, whatever order completions
// arrived in.
func (m *appModel) reloadTasks() {
	tasks, _, fetchErr := m.deps.DB.Tasks()
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	m.tasks.SetItems(items)
	if fetchErr != "" {
		m.status = fetchErr
	} else {
		m.status = ""
	}
}

func cycleStatus(s model.Status) model.Status {
	switch s {
	case "":
		return model.StatusToDo
	case model.StatusToDo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusCompleted
	default:
		return ""
	}
}

// advanceStatus is the status progression of a task record. Unlike
// cycleStatus it never yields the empty "all" filter value.
func advanceStatus(s model.Status) model.Status {
	switch s {
	case model.StatusToDo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusCompleted
	default:
		return model.StatusToDo
	}
}

func cyclePriority(p model.Priority) model.Priority {
	switch p {
	case "":
		return model.PriorityLow
	case model.PriorityLow:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityHigh
	default:
		return ""
	}
}

func cycleSort(s string) string {
	switch s {
	case query.SortDueDateDesc:
		return query.SortDueDateAsc
	case query.SortDueDateAsc:
		return query.SortPriorityDesc
	case query.SortPriorityDesc:
		return query.SortStatus
	default:
		return query.SortDueDateDesc
	}
}
