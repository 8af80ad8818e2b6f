package query

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"taskdeck-cli/internal/api"
	"taskdeck-cli/internal/model"
	"taskdeck-cli/internal/store"
)

// State is the active filter/sort/page state of the task view.
type State struct {
	Status    model.Status
	Priority  model.Priority
	Sort      string
	DueBefore string // inclusive upper bound on due_date (YYYY-MM-DD)
	Page      int
	Limit     int
}

const (
	SortDueDateDesc  = "-due_date"
	SortDueDateAsc   = "due_date"
	SortPriorityDesc = "-priority"
	SortStatus       = "status"
)

func ValidSort(s string) bool {
	switch s {
	case SortDueDateDesc, SortDueDateAsc, SortPriorityDesc, SortStatus:
		return true
	}
	return false
}

func DefaultState() State {
	return State{Sort: SortDueDateDesc, Page: 1, Limit: 10}
}

// Values encodes the state as the query parameters of a collection
// fetch. Empty filters are omitted entirely (the server treats a missing
// parameter as "all").
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Status != "" {
		v.Set("status", string(s.Status))
	}
	if s.Priority != "" {
		v.Set("priority", string(s.Priority))
	}
	if s.DueBefore != "" {
		v.Set("due_date_max", s.DueBefore)
	}
	v.Set("sort", s.Sort)
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("limit", strconv.Itoa(s.Limit))
	return v
}

// Partial is a filter/sort change to merge into the state. Nil fields are
// left as they are; a pointer to the empty string/status clears that
// filter.
type Partial struct {
	Status    *model.Status
	Priority  *model.Priority
	Sort      *string
	DueBefore *string
	Limit     *int
}

// Controller owns the query state and is the sole trigger for task
// collection fetches. Every state mutation issues exactly one fetch with
// the resulting state, tagged with a sequence number taken under the same
// lock as the mutation itself: seq order equals mutation order. Ordering
// between concurrent fetch completions is then resolved by the store's
// sequence gate, so a rapid burst of changes is safe without debouncing.
type Controller struct {
	gw *api.Client
	db *store.DB

	mu    sync.Mutex
	state State
}

func NewController(gw *api.Client, db *store.DB) *Controller {
	return &Controller{gw: gw, db: db, state: DefaultState()}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetFilter merges the partial into the state, resets the page to 1, and
// fetches. Any filter or sort change invalidates the current page number:
// the old page may not even exist under the new filter.
func (c *Controller) SetFilter(ctx context.Context, p Partial) error {
	c.mu.Lock()
	if p.Status != nil {
		c.state.Status = *p.Status
	}
	if p.Priority != nil {
		c.state.Priority = *p.Priority
	}
	if p.Sort != nil {
		c.state.Sort = *p.Sort
	}
	if p.DueBefore != nil {
		c.state.DueBefore = *p.DueBefore
	}
	if p.Limit != nil && *p.Limit > 0 {
		c.state.Limit = *p.Limit
	}
	c.state.Page = 1
	st := c.state
	seq := c.db.NextSeq()
	c.mu.Unlock()

	return c.fetch(ctx, seq, st)
}

// SetPage moves to page n, leaving every other field untouched, and
// fetches.
func (c *Controller) SetPage(ctx context.Context, n int) error {
	if n < 1 {
		return fmt.Errorf("page must be positive, got %d", n)
	}
	c.mu.Lock()
	c.state.Page = n
	st := c.state
	seq := c.db.NextSeq()
	c.mu.Unlock()

	return c.fetch(ctx, seq, st)
}

// Set replaces the whole state (one-shot CLI invocations build the state
// from flags in a single step). Counts as one state mutation: one fetch.
func (c *Controller) Set(ctx context.Context, st State) error {
	if !ValidSort(st.Sort) {
		return fmt.Errorf("invalid sort %q", st.Sort)
	}
	if st.Page < 1 || st.Limit < 1 {
		return fmt.Errorf("page and limit must be positive")
	}
	c.mu.Lock()
	c.state = st
	seq := c.db.NextSeq()
	c.mu.Unlock()

	return c.fetch(ctx, seq, st)
}

// Refresh re-fetches with the current state. Mutations call this after a
// successful create/update so the canonical server ordering and
// pagination are restored.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	st := c.state
	seq := c.db.NextSeq()
	c.mu.Unlock()

	return c.fetch(ctx, seq, st)
}

// fetch runs the network call for a state snapshot whose seq was already
// taken under c.mu. Taking the seq inside the mutation's critical section
// is what makes seq order equal mutation order: if it were taken here, two
// concurrent mutations could swap places between unlock and issuance, and
// the fetch for a superseded state would carry the higher seq and win.
func (c *Controller) fetch(ctx context.Context, seq uint64, st State) error {
	page, err := c.gw.ListTasks(ctx, st.Values())
	if err != nil {
		c.db.SetTaskError(seq, err.Error())
		return err
	}
	c.db.ReplaceTasks(seq, page.Tasks, page.Pagination)
	return nil
}

// RefreshUsers mirrors the task fetch for the admin user collection,
// through the store's independent user gate.
func (c *Controller) RefreshUsers(ctx context.Context) error {
	seq := c.db.NextSeq()

	users, err := c.gw.ListUsers(ctx)
	if err != nil {
		c.db.SetUserError(seq, err.Error())
		return err
	}
	c.db.ReplaceUsers(seq, users)
	return nil
}
