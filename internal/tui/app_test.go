package tui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/mutate"
	"taskdeck-cli/internal/query"
	"taskdeck-cli/internal/session"
	"taskdeck-cli/internal/store"
)

func newTestDeps(t *testing.T, handler http.HandlerFunc) (Deps, *url.Values) {
	t.Helper()
	var captured url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	gw := api.New(srv.URL)
	db := store.NewDB()
	ctrl := query.NewController(gw, db)
	return Deps{
		Sessions: session.NewManager(gw, store.NewCredStore(t.TempDir())),
		DB:       db,
		Ctrl:     ctrl,
		Pipe:     mutate.NewPipeline(gw, db, ctrl),
	}, &captured
}

func serveTasks(tasks []model.Task, totalPages int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.TaskPage{
			Tasks:      tasks,
			Pagination: model.Pagination{TotalTasks: len(tasks), CurrentPage: 1, TotalPages: totalPages, PageSize: 10},
		})
	}
}

func key(s string) tea.KeyMsg {
	if len(s) == 1 {
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	panic("unknown key " + s)
}

func TestStartsOnLoginWhenUnauthenticated(t *testing.T) {
	d, _ := newTestDeps(t, serveTasks(nil, 1))
	// Restore against an empty credential dir.
	if _, err := d.Sessions.Restore(context.Background()); err != nil {
		t.Fatalf("restore: %v", err)
	}
	m := newAppModel(d)
	if m.view != viewLogin {
		t.Fatalf("expected the login view, got %v", m.view)
	}
}

func TestFilterKeyResetsPage(t *testing.T) {
	d, captured := newTestDeps(t, serveTasks(nil, 5))
	m := newAppModel(d)
	m.view = viewTasks

	// Seed the pagination so the next-page key has somewhere to go.
	seeded, _ := m.Update(m.refreshCmd()())
	m = seeded.(appModel)

	// Move to page 2, then cycle the status filter.
	next, cmd := m.Update(key("right"))
	if cmd == nil {
		t.Fatalf("expected a page fetch command")
	}
	next, _ = next.(appModel).Update(cmd())
	if captured.Get("page") != "2" {
		t.Fatalf("expected page=2 on the wire, got %q", captured.Get("page"))
	}

	_, cmd = next.(appModel).Update(key("s"))
	if cmd == nil {
		t.Fatalf("expected a filter fetch command")
	}
	cmd()
	if captured.Get("page") != "1" || captured.Get("status") != "To Do" {
		t.Fatalf("filter change must reset to page 1, got %v", *captured)
	}
}

func TestFetchResultLandsInList(t *testing.T) {
	d, _ := newTestDeps(t, serveTasks([]model.Task{
		{ID: "t1", Title: "Ship it", Status: model.StatusToDo, Priority: model.PriorityHigh},
	}, 1))
	m := newAppModel(d)
	m.view = viewTasks

	cmd := m.refreshCmd()
	next, _ := m.Update(cmd())
	if got := len(next.(appModel).tasks.Items()); got != 1 {
		t.Fatalf("expected 1 list item, got %d", got)
	}
}

func TestExpiredSessionDropsToLogin(t *testing.T) {
	d, _ := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "Token has expired"})
	})
	m := newAppModel(d)
	m.view = viewTasks

	cmd := m.refreshCmd()
	next, _ := m.Update(cmd())
	got := next.(appModel)
	if got.view != viewLogin {
		t.Fatalf("expected login view after 401, got %v", got.view)
	}
	if got.status == "" {
		t.Fatalf("expected an expiry notice in the status line")
	}
	if d.Sessions.Current().Authenticated() {
		t.Fatalf("session must be invalidated after 401")
	}
}

func TestDetailNavigation(t *testing.T) {
	d, _ := newTestDeps(t, serveTasks([]model.Task{
		{ID: "t1", Title: "Ship it", Status: model.StatusToDo, Priority: model.PriorityHigh},
	}, 1))
	m := newAppModel(d)
	m.view = viewTasks

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	next, _ = next.(appModel).Update(m.refreshCmd()())
	next, _ = next.(appModel).Update(key("enter"))
	got := next.(appModel)
	if got.view != viewDetail || got.detailID != "t1" {
		t.Fatalf("expected detail view for t1, got view=%v id=%q", got.view, got.detailID)
	}

	next, _ = got.Update(key("esc"))
	if next.(appModel).view != viewTasks {
		t.Fatalf("expected esc to return to the task list")
	}
}

func TestStatusKeyAdvancesSelectedTask(t *testing.T) {
	// The server accepts the PUT and serves the updated record on the
	// follow-up refetch.
	status := model.StatusToDo
	var gotPatch model.TaskPatch
	d, _ := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			_ = json.NewDecoder(r.Body).Decode(&gotPatch)
			if gotPatch.Status != nil {
				status = *gotPatch.Status
			}
			_ = json.NewEncoder(w).Encode(map[string]string{"msg": "Task updated"})
			return
		}
		_ = json.NewEncoder(w).Encode(api.TaskPage{
			Tasks:      []model.Task{{ID: "t1", Title: "Ship it", Status: status, Priority: model.PriorityHigh}},
			Pagination: model.Pagination{TotalTasks: 1, CurrentPage: 1, TotalPages: 1, PageSize: 10},
		})
	})
	m := newAppModel(d)
	m.view = viewTasks

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	next, _ = next.(appModel).Update(m.refreshCmd()())

	nm := next.(appModel)
	_, cmd := nm.Update(key("t"))
	if cmd == nil {
		t.Fatalf("expected a status mutation command")
	}
	next, _ = nm.Update(cmd())

	if gotPatch.Status == nil || *gotPatch.Status != model.StatusInProgress {
		t.Fatalf("expected a status-only patch to In Progress, got %+v", gotPatch)
	}
	got, ok := d.DB.FindTask("t1")
	if !ok || got.Status != model.StatusInProgress {
		t.Fatalf("refetched status not reflected in the store: %+v", got)
	}
	if itms := next.(appModel).tasks.Items(); len(itms) != 1 {
		t.Fatalf("expected the list to re-read the snapshot, got %d items", len(itms))
	}
}

func TestCycleHelpers(t *testing.T) {
	// Status cycles through all values then back to "all".
	s := model.Status("")
	for i := 0; i < 3; i++ {
		s = cycleStatus(s)
	}
	if s != model.StatusCompleted {
		t.Fatalf("unexpected status cycle end: %q", s)
	}
	if cycleStatus(s) != "" {
		t.Fatalf("expected cycle back to all")
	}
	if cycleSort(query.SortStatus) != query.SortDueDateDesc {
		t.Fatalf("expected sort cycle to wrap")
	}
}
