package client

import (
	"errors"
	"testing"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

func mkTask(id, title string) *model.Task {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &model.Task{
		ID:        id,
		OwnerID:   "owner-1",
		Title:     title,
		Priority:  consts.PriorityMedium,
		Tags:      model.TagSet{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func titles(ts []*model.Task) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Title)
	}
	return out
}

func TestOutOfOrderConfirmKeepsNewerState(t *testing.T) {
	r := NewReconciler(nil)
	r.Load([]*model.Task{mkTask("a", "v0")})

	m1, err := r.SubmitUpdate(mkTask("a", "v1"))
	if err != nil {
		t.Fatalf("submit m1: %v", err)
	}
	m2, err := r.SubmitUpdate(mkTask("a", "v2"))
	if err != nil {
		t.Fatalf("submit m2: %v", err)
	}

	// m2 的响应先到。
	r.Confirm(m2, mkTask("a", "v2-server"))
	if got, _ := r.Task("a"); got.Title != "v2-server" {
		t.Fatalf("after m2 confirm title = %q, want v2-server", got.Title)
	}

	// m1 的响应迟到, 不得回退 m2 的结果。
	r.Confirm(m1, mkTask("a", "v1-server"))
	if got, _ := r.Task("a"); got.Title != "v2-server" {
		t.Fatalf("stale confirm regressed view to %q", got.Title)
	}
	if m1.State() != MutationConfirmed || m2.State() != MutationConfirmed {
		t.Fatalf("states = %s/%s, want confirmed/confirmed", m1.State(), m2.State())
	}
}

func TestStaleFailureDoesNotRollBackNewerState(t *testing.T) {
	var notices []Notice
	r := NewReconciler(func(n Notice) { notices = append(notices, n) })
	r.Load([]*model.Task{mkTask("a", "v0")})

	m1, _ := r.SubmitUpdate(mkTask("a", "v1"))
	m2, _ := r.SubmitUpdate(mkTask("a", "v2"))

	r.Fail(m1, errors.New("boom"))
	if got, _ := r.Task("a"); got.Title != "v2" {
		t.Fatalf("superseded failure touched the view: title = %q", got.Title)
	}
	if len(notices) != 0 {
		t.Fatalf("superseded failure raised %d notices", len(notices))
	}
	if m1.State() != MutationFailed {
		t.Fatalf("m1 state = %s, want failed", m1.State())
	}

	r.Confirm(m2, mkTask("a", "v2-server"))
	if got, _ := r.Task("a"); got.Title != "v2-server" {
		t.Fatalf("m2 confirm lost: title = %q", got.Title)
	}
}

func TestFailureRollsBackToExactSnapshot(t *testing.T) {
	var notices []Notice
	r := NewReconciler(func(n Notice) { notices = append(notices, n) })

	due := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	orig := mkTask("a", "before")
	orig.Tags = model.TagSet{"work", "urgent"}
	orig.DueDate = &due
	r.Load([]*model.Task{orig})

	changed := mkTask("a", "after")
	changed.Tags = model.TagSet{"home"}
	m, _ := r.SubmitUpdate(changed)
	if got, _ := r.Task("a"); got.Title != "after" {
		t.Fatalf("optimistic apply missing: title = %q", got.Title)
	}

	r.Fail(m, errors.New("store down"))

	got, ok := r.Task("a")
	if !ok {
		t.Fatalf("task vanished after rollback")
	}
	if got.Title != "before" {
		t.Fatalf("title = %q, want before", got.Title)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "urgent" {
		t.Fatalf("tags not restored: %v", got.Tags)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date not restored: %v", got.DueDate)
	}
	if len(notices) != 1 || notices[0].Action != KindUpdate || notices[0].TaskID != "a" {
		t.Fatalf("unexpected notices: %+v", notices)
	}
}

func TestFailureOnOneTaskLeavesOthersPending(t *testing.T) {
	r := NewReconciler(nil)
	r.Load([]*model.Task{mkTask("a", "a0"), mkTask("b", "b0")})

	ma, _ := r.SubmitUpdate(mkTask("a", "a1"))
	mb, _ := r.SubmitUpdate(mkTask("b", "b1"))

	r.Fail(ma, errors.New("boom"))

	if got, _ := r.Task("a"); got.Title != "a0" {
		t.Fatalf("a not rolled back: %q", got.Title)
	}
	if got, _ := r.Task("b"); got.Title != "b1" {
		t.Fatalf("b lost its optimistic state: %q", got.Title)
	}
	if mb.State() != MutationPending {
		t.Fatalf("mb state = %s, want pending", mb.State())
	}

	r.Confirm(mb, mkTask("b", "b1-server"))
	if got, _ := r.Task("b"); got.Title != "b1-server" {
		t.Fatalf("b confirm lost: %q", got.Title)
	}
}

func TestDeleteRollbackRestoresPosition(t *testing.T) {
	r := NewReconciler(nil)
	r.Load([]*model.Task{mkTask("a", "a"), mkTask("b", "b"), mkTask("c", "c")})

	m, err := r.SubmitDelete("b")
	if err != nil {
		t.Fatalf("submit delete: %v", err)
	}
	if got := titles(r.Snapshot()); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Fatalf("optimistic delete view = %v", got)
	}

	r.Fail(m, errors.New("boom"))
	if got := titles(r.Snapshot()); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("rollback order = %v, want [a b c]", got)
	}
}

func TestDeleteConfirmIsFinal(t *testing.T) {
	r := NewReconciler(nil)
	r.Load([]*model.Task{mkTask("a", "a")})

	m, _ := r.SubmitDelete("a")
	r.Confirm(m, nil)

	if _, ok := r.Task("a"); ok {
		t.Fatalf("task still visible after confirmed delete")
	}
	if m.State() != MutationConfirmed {
		t.Fatalf("state = %s, want confirmed", m.State())
	}
}

func TestCreateConfirmAdoptsServerID(t *testing.T) {
	r := NewReconciler(nil)

	m := r.SubmitCreate(&model.Task{Title: "write report"})
	provisional := m.TaskID()
	if provisional == "" {
		t.Fatalf("no provisional id assigned")
	}
	if _, ok := r.Task(provisional); !ok {
		t.Fatalf("provisional task not in view")
	}

	server := mkTask("server-id-1", "write report")
	r.Confirm(m, server)

	if _, ok := r.Task(provisional); ok {
		t.Fatalf("provisional id still present after confirm")
	}
	got, ok := r.Task("server-id-1")
	if !ok {
		t.Fatalf("server id missing from view")
	}
	if got.Title != "write report" {
		t.Fatalf("title = %q", got.Title)
	}
	if m.TaskID() != "server-id-1" {
		t.Fatalf("mutation id = %q, want server-id-1", m.TaskID())
	}
}

func TestCreateFailureRemovesProvisionalTask(t *testing.T) {
	var notices []Notice
	r := NewReconciler(func(n Notice) { notices = append(notices, n) })

	m := r.SubmitCreate(&model.Task{Title: "draft"})
	r.Fail(m, errors.New("rejected"))

	if got := r.Snapshot(); len(got) != 0 {
		t.Fatalf("view not empty after create rollback: %v", titles(got))
	}
	if len(notices) != 1 || notices[0].Action != KindCreate {
		t.Fatalf("unexpected notices: %+v", notices)
	}
}

func TestLoadDiscardsPendingState(t *testing.T) {
	r := NewReconciler(nil)
	r.Load([]*model.Task{mkTask("a", "v0")})

	m, _ := r.SubmitUpdate(mkTask("a", "optimistic"))

	// 整页刷新: 服务端列表成为权威。
	r.Load([]*model.Task{mkTask("a", "fresh")})

	r.Confirm(m, mkTask("a", "stale-confirm"))
	if got, _ := r.Task("a"); got.Title != "fresh" {
		t.Fatalf("stale confirm applied after reload: %q", got.Title)
	}

	r2 := NewReconciler(nil)
	r2.Load([]*model.Task{mkTask("b", "v0")})
	m2, _ := r2.SubmitToggle("b")
	r2.Load([]*model.Task{mkTask("b", "fresh")})
	r2.Fail(m2, errors.New("late failure"))
	if got, _ := r2.Task("b"); got.Title != "fresh" {
		t.Fatalf("stale failure rolled back after reload: %q", got.Title)
	}
}

func TestToggleFlipsLocallyAndTakesServerResult(t *testing.T) {
	r := NewReconciler(nil)
	r.Load([]*model.Task{mkTask("a", "a")})

	m, err := r.SubmitToggle("a")
	if err != nil {
		t.Fatalf("submit toggle: %v", err)
	}
	if got, _ := r.Task("a"); !got.Completed {
		t.Fatalf("toggle not applied locally")
	}

	server := mkTask("a", "a")
	server.Completed = true
	r.Confirm(m, server)
	if got, _ := r.Task("a"); !got.Completed {
		t.Fatalf("server result lost")
	}
}

func TestSnapshotIsIsolatedFromInternalState(t *testing.T) {
	r := NewReconciler(nil)
	orig := mkTask("a", "a")
	orig.Tags = model.TagSet{"one"}
	r.Load([]*model.Task{orig})

	snap := r.Snapshot()
	snap[0].Title = "mutated"
	snap[0].Tags[0] = "changed"

	got, _ := r.Task("a")
	if got.Title != "a" || got.Tags[0] != "one" {
		t.Fatalf("snapshot mutation leaked into view: %q %v", got.Title, got.Tags)
	}
}

func TestRunDrivesConfirmAndFail(t *testing.T) {
	r := NewReconciler(nil)
	r.Load([]*model.Task{mkTask("a", "v0")})

	m, _ := r.SubmitUpdate(mkTask("a", "v1"))
	got, err := r.Run(m, func() (*model.Task, error) { return mkTask("a", "v1-server"), nil })
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if got.Title != "v1-server" || m.State() != MutationConfirmed {
		t.Fatalf("run confirm: title=%q state=%s", got.Title, m.State())
	}

	m2, _ := r.SubmitUpdate(mkTask("a", "v2"))
	if _, err := r.Run(m2, func() (*model.Task, error) { return nil, errors.New("boom") }); err == nil {
		t.Fatalf("run should surface the call error")
	}
	if m2.State() != MutationFailed {
		t.Fatalf("m2 state = %s, want failed", m2.State())
	}
	if cur, _ := r.Task("a"); cur.Title != "v1-server" {
		t.Fatalf("rollback target = %q, want v1-server", cur.Title)
	}
}
