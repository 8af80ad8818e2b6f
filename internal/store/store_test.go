package store

import (
	"testing"

	"taskdeck-cli/internal/model"
)

func task(id, title string) model.Task {
	return model.Task{ID: id, Title: title, Status: model.StatusToDo, Priority: model.PriorityLow}
}

func TestReplaceTasks_MonotonicApply(t *testing.T) {
	db := NewDB()
	s1 := db.NextSeq()
	s2 := db.NextSeq()

	// The newer fetch completes first.
	if !db.ReplaceTasks(s2, []model.Task{task("t2", "fresh")}, model.Pagination{TotalTasks: 1}) {
		t.Fatalf("expected newer result to apply")
	}
	// The older fetch completes later and must be discarded.
	if db.ReplaceTasks(s1, []model.Task{task("t1", "stale")}, model.Pagination{TotalTasks: 1}) {
		t.Fatalf("expected stale result to be discarded")
	}

	tasks, _, errMsg := db.Tasks()
	if errMsg != "" {
		t.Fatalf("unexpected error state: %q", errMsg)
	}
	if len(tasks) != 1 || tasks[0].ID != "t2" {
		t.Fatalf("store reflects the wrong fetch: %+v", tasks)
	}
}

func TestSetTaskError_ClearsCollectionAndIsGated(t *testing.T) {
	db := NewDB()
	s1 := db.NextSeq()
	db.ReplaceTasks(s1, []model.Task{task("t1", "a")}, model.Pagination{TotalTasks: 1})

	s2 := db.NextSeq()
	if !db.SetTaskError(s2, "boom") {
		t.Fatalf("expected error apply")
	}
	tasks, pg, errMsg := db.Tasks()
	if len(tasks) != 0 || pg.TotalTasks != 0 {
		t.Fatalf("failed fetch must clear the displayed collection")
	}
	if errMsg != "boom" {
		t.Fatalf("expected error state, got %q", errMsg)
	}

	// A stale error must not clobber a fresher success.
	s3 := db.NextSeq()
	s4 := db.NextSeq()
	db.ReplaceTasks(s4, []model.Task{task("t2", "b")}, model.Pagination{TotalTasks: 1})
	if db.SetTaskError(s3, "late failure") {
		t.Fatalf("expected stale error to be discarded")
	}
	if _, _, errMsg := db.Tasks(); errMsg != "" {
		t.Fatalf("stale error leaked into store: %q", errMsg)
	}
}

func TestPatchTask(t *testing.T) {
	db := NewDB()
	db.ReplaceTasks(db.NextSeq(), []model.Task{task("t1", "a"), task("t2", "b")}, model.Pagination{})

	done := model.StatusCompleted
	if !db.PatchTask("t2", model.TaskPatch{Status: &done}) {
		t.Fatalf("expected patch to apply")
	}
	got, ok := db.FindTask("t2")
	if !ok || got.Status != model.StatusCompleted {
		t.Fatalf("patch not reflected: %+v", got)
	}
	// Untouched fields survive.
	if got.Title != "b" || got.Priority != model.PriorityLow {
		t.Fatalf("patch clobbered other fields: %+v", got)
	}

	// Absent id (fell off the current page): no-op, not an error.
	if db.PatchTask("missing", model.TaskPatch{Status: &done}) {
		t.Fatalf("expected no-op for absent id")
	}
}

func TestRemove(t *testing.T) {
	db := NewDB()
	db.ReplaceTasks(db.NextSeq(), []model.Task{task("t1", "a")}, model.Pagination{})
	db.ReplaceUsers(db.NextSeq(), []model.User{{ID: "u1", Email: "a@b.com", Role: model.RoleUser}})

	if !db.RemoveTask("t1") {
		t.Fatalf("expected removal")
	}
	if db.RemoveTask("t1") {
		t.Fatalf("expected second removal to be a no-op")
	}
	if !db.RemoveUser("u1") {
		t.Fatalf("expected user removal")
	}
	if tasks, _, _ := db.Tasks(); len(tasks) != 0 {
		t.Fatalf("task not removed")
	}
}

func TestFence_DiscardsInFlightResponses(t *testing.T) {
	db := NewDB()
	db.ReplaceTasks(db.NextSeq(), []model.Task{task("t1", "a")}, model.Pagination{TotalTasks: 1})

	// A fetch is in flight when the logout happens.
	inflight := db.NextSeq()
	db.Fence()

	if db.ReplaceTasks(inflight, []model.Task{task("t9", "late")}, model.Pagination{TotalTasks: 1}) {
		t.Fatalf("response issued before logout must be discarded")
	}
	tasks, _, _ := db.Tasks()
	if len(tasks) != 0 {
		t.Fatalf("fence must clear the mirrored collections, got %+v", tasks)
	}

	// A fetch issued after the fence applies normally.
	after := db.NextSeq()
	if !db.ReplaceTasks(after, []model.Task{task("t3", "new era")}, model.Pagination{TotalTasks: 1}) {
		t.Fatalf("post-fence fetch must apply")
	}
}

func TestPatchUser_RoleOnly(t *testing.T) {
	db := NewDB()
	db.ReplaceUsers(db.NextSeq(), []model.User{{ID: "u1", Email: "a@b.com", Role: model.RoleUser}})

	admin := model.RoleAdmin
	pw := "secret"
	db.PatchUser("u1", model.UserPatch{Role: &admin, Password: &pw})

	users, _ := db.Users()
	if users[0].Role != model.RoleAdmin {
		t.Fatalf("role change not reflected")
	}
}
