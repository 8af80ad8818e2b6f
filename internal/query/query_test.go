package query

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/store"
)

func newTestController(t *testing.T, tasks []model.Task) (*Controller, *store.DB, *url.Values) {
	t.Helper()
	var captured url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.URL.Query()
		_ = json.NewEncoder(w).Encode(api.TaskPage{
			Tasks:      tasks,
			Pagination: model.Pagination{TotalTasks: len(tasks), CurrentPage: 1, TotalPages: 1, PageSize: 10},
		})
	}))
	t.Cleanup(srv.Close)

	db := store.NewDB()
	return NewController(api.New(srv.URL), db), db, &captured
}

func TestValues_OmitsEmptyFilters(t *testing.T) {
	v := DefaultState().Values()

	for _, key := range []string{"status", "priority", "due_date_max"} {
		if v.Has(key) {
			t.Fatalf("empty filter %q must be omitted, got %q", key, v.Get(key))
		}
	}
	if v.Get("sort") != SortDueDateDesc || v.Get("page") != "1" || v.Get("limit") != "10" {
		t.Fatalf("unexpected defaults: %v", v)
	}
}

func TestValues_EncodesFilters(t *testing.T) {
	st := State{
		Status:    model.StatusInProgress,
		Priority:  model.PriorityHigh,
		Sort:      SortPriorityDesc,
		DueBefore: "2026-12-31",
		Page:      3,
		Limit:     25,
	}
	v := st.Values()

	want := url.Values{
		"status":       {"In Progress"},
		"priority":     {"High"},
		"sort":         {"-priority"},
		"due_date_max": {"2026-12-31"},
		"page":         {"3"},
		"limit":        {"25"},
	}
	if v.Encode() != want.Encode() {
		t.Fatalf("encoded %q, want %q", v.Encode(), want.Encode())
	}
}

func TestSetFilter_ResetsPage(t *testing.T) {
	ctx := context.Background()
	ctrl, _, captured := newTestController(t, nil)

	if err := ctrl.SetPage(ctx, 3); err != nil {
		t.Fatalf("set page: %v", err)
	}
	if captured.Get("page") != "3" {
		t.Fatalf("expected page=3 on the wire, got %q", captured.Get("page"))
	}

	done := model.StatusCompleted
	if err := ctrl.SetFilter(ctx, Partial{Status: &done}); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	if captured.Get("page") != "1" {
		t.Fatalf("filter change must reset to page 1, got %q", captured.Get("page"))
	}
	if captured.Get("status") != "Completed" {
		t.Fatalf("filter not on the wire: %q", captured.Get("status"))
	}
	if st := ctrl.State(); st.Page != 1 || st.Status != model.StatusCompleted {
		t.Fatalf("state not updated: %+v", st)
	}
}

func TestSetPage_PreservesFilters(t *testing.T) {
	ctx := context.Background()
	ctrl, _, captured := newTestController(t, nil)

	high := model.PriorityHigh
	if err := ctrl.SetFilter(ctx, Partial{Priority: &high}); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	if err := ctrl.SetPage(ctx, 2); err != nil {
		t.Fatalf("set page: %v", err)
	}
	if captured.Get("priority") != "High" || captured.Get("page") != "2" {
		t.Fatalf("pagination dropped the filter: %v", *captured)
	}

	if err := ctrl.SetPage(ctx, 0); err == nil {
		t.Fatalf("expected rejection of page 0")
	}
}

func TestSetFilter_ClearsWithEmptyPointer(t *testing.T) {
	ctx := context.Background()
	ctrl, _, captured := newTestController(t, nil)

	high := model.PriorityHigh
	if err := ctrl.SetFilter(ctx, Partial{Priority: &high}); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	none := model.Priority("")
	if err := ctrl.SetFilter(ctx, Partial{Priority: &none}); err != nil {
		t.Fatalf("clear filter: %v", err)
	}
	if captured.Has("priority") {
		t.Fatalf("cleared filter still on the wire: %q", captured.Get("priority"))
	}
}

func TestFetch_PopulatesStore(t *testing.T) {
	ctx := context.Background()
	ctrl, db, _ := newTestController(t, []model.Task{
		{ID: "t1", Title: "first", Status: model.StatusToDo, Priority: model.PriorityLow},
	})

	if err := ctrl.Refresh(ctx); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	tasks, pg, errMsg := db.Tasks()
	if errMsg != "" {
		t.Fatalf("unexpected error state: %q", errMsg)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" || pg.TotalTasks != 1 {
		t.Fatalf("store not populated: %+v %+v", tasks, pg)
	}
}

func TestFetch_FailureLandsInErrorState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"msg": "db down"})
	}))
	defer srv.Close()

	db := store.NewDB()
	ctrl := NewController(api.New(srv.URL), db)

	if err := ctrl.Refresh(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}
	if _, _, errMsg := db.Tasks(); errMsg == "" {
		t.Fatalf("fetch failure must land in the store's error state")
	}
}

// Two concurrent filter changes race both on the state merge and on fetch
// issuance. Whichever merge lands last must also own the winning sequence
// number, so the store ends up holding the response for the state the
// controller actually settled on. The server echoes the priority filter
// back as the task title to make the applied response observable.
func TestConcurrentFilterChangesConvergeOnFinalState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := r.URL.Query().Get("priority")
		_ = json.NewEncoder(w).Encode(api.TaskPage{
			Tasks:      []model.Task{{ID: "t1", Title: p}},
			Pagination: model.Pagination{TotalTasks: 1, CurrentPage: 1, TotalPages: 1, PageSize: 10},
		})
	}))
	defer srv.Close()

	db := store.NewDB()
	ctrl := NewController(api.New(srv.URL), db)
	ctx := context.Background()

	high := model.PriorityHigh
	low := model.PriorityLow
	for i := 0; i < 2000; i++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = ctrl.SetFilter(ctx, Partial{Priority: &high})
		}()
		go func() {
			defer wg.Done()
			_ = ctrl.SetFilter(ctx, Partial{Priority: &low})
		}()
		wg.Wait()

		st := ctrl.State()
		tasks, _, errMsg := db.Tasks()
		if errMsg != "" {
			t.Fatalf("iteration %d: unexpected error state: %q", i, errMsg)
		}
		if len(tasks) != 1 || tasks[0].Title != string(st.Priority) {
			t.Fatalf("iteration %d: controller state priority=%q but store holds the response for priority=%q",
				i, st.Priority, tasks[0].Title)
		}
	}
}

func TestSet_RejectsInvalidSort(t *testing.T) {
	ctrl, _, _ := newTestController(t, nil)
	st := DefaultState()
	st.Sort = "priority" // ascending priority is not a server sort
	if err := ctrl.Set(context.Background(), st); err == nil {
		t.Fatalf("expected invalid sort to be rejected")
	}
}
