package store

import (
	"sync"

	"taskdeck-cli/internal/model"
)

// DB is the in-memory mirror of the server-owned task and user collections
// plus the pagination metadata of the last task fetch. It is the single
// source of truth for every read view.
//
// Fetch results arrive in completion order, which can differ from issuance
// order. Every fetch is tagged with a sequence number at issuance
// (NextSeq) and applied through a monotonic gate: a completion whose seq
// is not newer than the last applied one is discarded. Tasks and users
// are gated independently.
type DB struct {
	mu     sync.Mutex
	issued uint64

	tasks        []model.Task
	pagination   model.Pagination
	appliedTasks uint64
	taskErr      string

	users        []model.User
	appliedUsers uint64
	userErr      string
}

func NewDB() *DB { return &DB{} }

// NextSeq issues the sequence number for a fetch about to be started.
func (db *DB) NextSeq() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.issued++
	return db.issued
}

// ReplaceTasks atomically replaces the task collection and pagination with
// the result of the fetch tagged seq. Returns false when the result is
// stale and was discarded.
func (db *DB) ReplaceTasks(seq uint64, tasks []model.Task, pg model.Pagination) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if seq <= db.appliedTasks {
		return false
	}
	db.appliedTasks = seq
	db.tasks = append([]model.Task(nil), tasks...)
	db.pagination = pg
	db.taskErr = ""
	return true
}

// SetTaskError records a failed fetch. The displayed collection is cleared
// rather than leaving a possibly-inconsistent previous page visible.
func (db *DB) SetTaskError(seq uint64, msg string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if seq <= db.appliedTasks {
		return false
	}
	db.appliedTasks = seq
	db.tasks = nil
	db.pagination = model.Pagination{}
	db.taskErr = msg
	return true
}

func (db *DB) ReplaceUsers(seq uint64, users []model.User) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if seq <= db.appliedUsers {
		return false
	}
	db.appliedUsers = seq
	db.users = append([]model.User(nil), users...)
	db.userErr = ""
	return true
}

func (db *DB) SetUserError(seq uint64, msg string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	if seq <= db.appliedUsers {
		return false
	}
	db.appliedUsers = seq
	db.users = nil
	db.userErr = msg
	return true
}

// PatchTask merges non-nil patch fields into the matching record, in
// place. Used after a successful update mutation for immediate feedback,
// before the canonical refetch lands. No-op when the id is absent from the
// current page.
func (db *DB) PatchTask(id string, p model.TaskPatch) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.tasks {
		if db.tasks[i].ID != id {
			continue
		}
		t := &db.tasks[i]
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.DueDate != nil {
			t.DueDate = *p.DueDate
		}
		if p.AssignedTo != nil {
			t.AssignedTo = *p.AssignedTo
		}
		return true
	}
	return false
}

// PatchUser merges a role change into the matching user. Passwords are
// write-only and never touch the read model.
func (db *DB) PatchUser(id string, p model.UserPatch) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.users {
		if db.users[i].ID != id {
			continue
		}
		if p.Role != nil {
			db.users[i].Role = *p.Role
		}
		return true
	}
	return false
}

func (db *DB) RemoveTask(id string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.tasks {
		if db.tasks[i].ID == id {
			db.tasks = append(db.tasks[:i], db.tasks[i+1:]...)
			return true
		}
	}
	return false
}

func (db *DB) RemoveUser(id string) bool {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i := range db.users {
		if db.users[i].ID == id {
			db.users = append(db.users[:i], db.users[i+1:]...)
			return true
		}
	}
	return false
}

// Fence retires every in-flight fetch: any response issued before the
// fence is discarded when it completes. Called on logout so a response
// from the authenticated era can never land in an unauthenticated store.
// The mirrored collections are cleared as well.
func (db *DB) Fence() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.appliedTasks = db.issued
	db.appliedUsers = db.issued
	db.tasks = nil
	db.pagination = model.Pagination{}
	db.taskErr = ""
	db.users = nil
	db.userErr = ""
}

// Tasks returns a copy of the mirrored task page. err is the message of
// the last failed fetch, empty after a successful one.
func (db *DB) Tasks() (tasks []model.Task, pg model.Pagination, err string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]model.Task(nil), db.tasks...), db.pagination, db.taskErr
}

func (db *DB) Users() (users []model.User, err string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]model.User(nil), db.users...), db.userErr
}

func (db *DB) FindTask(id string) (model.Task, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, t := range db.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}
