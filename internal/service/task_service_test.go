package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

// stubDao implements TaskDao in memory for TaskService tests.
type stubDao struct {
	*core.BaseComponent
	tasks     []*model.Task
	listCalls int
	failList  bool
}

func newStubDao() *stubDao {
	return &stubDao{BaseComponent: core.NewBaseComponent(bizConsts.COMP_DAO_TASK)}
}

func (s *stubDao) Create(ctx context.Context, t *model.Task) error {
	s.tasks = append(s.tasks, t.Clone())
	return nil
}

func (s *stubDao) Get(ctx context.Context, ownerID, id string) (*model.Task, error) {
	for _, t := range s.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			return t.Clone(), nil
		}
	}
	return nil, apperr.NewNotFound("task")
}

func (s *stubDao) Update(ctx context.Context, task *model.Task) error {
	for i, t := range s.tasks {
		if t.ID == task.ID && t.OwnerID == task.OwnerID {
			s.tasks[i] = task.Clone()
			return nil
		}
	}
	return apperr.NewNotFound("task")
}

func (s *stubDao) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	for i, t := range s.tasks {
		if t.ID == id && t.OwnerID == ownerID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (s *stubDao) ListFiltered(ctx context.Context, ownerID string, q *model.TaskListQuery) ([]*model.Task, error) {
	s.listCalls++
	if s.failList {
		return nil, apperr.WrapStore("list tasks", errors.New("connection refused"))
	}
	matched := s.match(ownerID, q)
	start := q.Offset
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if q.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	out := make([]*model.Task, 0, end-start)
	for _, t := range matched[start:end] {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *stubDao) CountFiltered(ctx context.Context, ownerID string, q *model.TaskListQuery) (int64, error) {
	return int64(len(s.match(ownerID, q))), nil
}

func (s *stubDao) match(ownerID string, q *model.TaskListQuery) []*model.Task {
	var matched []*model.Task
	for _, t := range s.tasks {
		if t.OwnerID != ownerID {
			continue
		}
		if q.Status == bizConsts.StatusActive && t.Completed {
			continue
		}
		if q.Status == bizConsts.StatusCompleted && !t.Completed {
			continue
		}
		if q.Search != "" &&
			!strings.Contains(strings.ToLower(t.Title), strings.ToLower(q.Search)) &&
			!strings.Contains(strings.ToLower(t.Description), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, t)
	}
	return matched
}

func newTestService(t *testing.T, da *stubDao) *TaskService {
	t.Helper()
	svc := NewTaskService(10, time.Minute)
	svc.TaskDao = da
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	return svc
}

func TestCreateDefaultsAndNormalization(t *testing.T) {
	svc := newTestService(t, newStubDao())

	task, err := svc.Create(context.Background(), "owner-1", &CreateTaskRequest{
		Title: "  Buy milk  ",
		Tags:  []string{"Home", "HOME", " errands "},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" {
		t.Fatalf("id must be generated")
	}
	if task.OwnerID != "owner-1" {
		t.Fatalf("owner = %q, want owner-1", task.OwnerID)
	}
	if task.Title != "Buy milk" {
		t.Fatalf("title = %q, want trimmed", task.Title)
	}
	if task.Priority != bizConsts.PriorityMedium {
		t.Fatalf("priority = %q, want default MEDIUM", task.Priority)
	}
	if len(task.Tags) != 2 || task.Tags[0] != "home" || task.Tags[1] != "errands" {
		t.Fatalf("tags = %v, want [home errands]", task.Tags)
	}
	if task.Completed {
		t.Fatalf("new task must not be completed")
	}
	if task.UpdatedAt.Before(task.CreatedAt) {
		t.Fatalf("updated_at %v before created_at %v", task.UpdatedAt, task.CreatedAt)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, newStubDao())

	_, err := svc.Create(context.Background(), "o", &CreateTaskRequest{Title: "   "})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("blank title: err = %v, want ValidationError on title", err)
	}

	_, err = svc.Create(context.Background(), "o", &CreateTaskRequest{Title: strings.Repeat("x", 256)})
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("long title: err = %v, want ValidationError on title", err)
	}

	_, err = svc.Create(context.Background(), "o", &CreateTaskRequest{Title: "ok", Priority: "URGENT"})
	if !errors.As(err, &ve) || ve.Field != "priority" {
		t.Fatalf("bad priority: err = %v, want ValidationError on priority", err)
	}

	_, err = svc.Create(context.Background(), "o", &CreateTaskRequest{Title: "ok", Description: strings.Repeat("d", 2001)})
	if !errors.As(err, &ve) || ve.Field != "description" {
		t.Fatalf("long description: err = %v, want ValidationError on description", err)
	}
}

func TestUpdatePatchSemantics(t *testing.T) {
	da := newStubDao()
	svc := newTestService(t, da)
	ctx := context.Background()

	due := time.Now().Add(48 * time.Hour)
	task, err := svc.Create(ctx, "owner-1", &CreateTaskRequest{
		Title:       "Write report",
		Description: "quarterly numbers",
		Priority:    bizConsts.PriorityHigh,
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Absent fields stay untouched.
	newTitle := "Write Q2 report"
	got, err := svc.Update(ctx, "owner-1", task.ID, &TaskPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Title != "Write Q2 report" {
		t.Fatalf("title = %q", got.Title)
	}
	if got.Description != "quarterly numbers" || got.Priority != bizConsts.PriorityHigh || got.DueDate == nil {
		t.Fatalf("untouched fields changed: %+v", got)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Fatalf("updated_at went backwards")
	}

	// Explicitly provided null clears due_date.
	got, err = svc.Update(ctx, "owner-1", task.ID, &TaskPatch{DueDateSet: true, DueDate: nil})
	if err != nil {
		t.Fatalf("clear due date: %v", err)
	}
	if got.DueDate != nil {
		t.Fatalf("due_date should be cleared, got %v", got.DueDate)
	}

	// Patch validation mirrors create.
	bad := "  "
	_, err = svc.Update(ctx, "owner-1", task.ID, &TaskPatch{Title: &bad})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" {
		t.Fatalf("blank patch title: err = %v", err)
	}
}

func TestToggleComplete(t *testing.T) {
	svc := newTestService(t, newStubDao())
	ctx := context.Background()

	task, _ := svc.Create(ctx, "o", &CreateTaskRequest{Title: "t"})
	got, err := svc.ToggleComplete(ctx, "o", task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !got.Completed {
		t.Fatalf("first toggle should complete the task")
	}
	got, err = svc.ToggleComplete(ctx, "o", task.ID)
	if err != nil {
		t.Fatalf("toggle back: %v", err)
	}
	if got.Completed {
		t.Fatalf("second toggle should reopen the task")
	}
}

func TestOwnerScoping(t *testing.T) {
	svc := newTestService(t, newStubDao())
	ctx := context.Background()

	task, _ := svc.Create(ctx, "owner-a", &CreateTaskRequest{Title: "private"})

	var nf *apperr.NotFoundError
	if _, err := svc.Get(ctx, "owner-b", task.ID); !errors.As(err, &nf) {
		t.Fatalf("foreign owner get: err = %v, want NotFound", err)
	}
	if _, err := svc.Update(ctx, "owner-b", task.ID, &TaskPatch{}); !errors.As(err, &nf) {
		t.Fatalf("foreign owner update: err = %v, want NotFound", err)
	}
	if err := svc.Delete(ctx, "owner-b", task.ID); !errors.As(err, &nf) {
		t.Fatalf("foreign owner delete: err = %v, want NotFound", err)
	}
	// The task is still there for its owner.
	if _, err := svc.Get(ctx, "owner-a", task.ID); err != nil {
		t.Fatalf("owner get after foreign attempts: %v", err)
	}
}

func TestDeleteMissing(t *testing.T) {
	svc := newTestService(t, newStubDao())

	var nf *apperr.NotFoundError
	if err := svc.Delete(context.Background(), "o", "no-such-id"); !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestListNormalizesQuery(t *testing.T) {
	svc := newTestService(t, newStubDao())
	ctx := context.Background()

	_, _ = svc.Create(ctx, "o", &CreateTaskRequest{Title: "a"})

	res, err := svc.List(ctx, "o", &model.TaskListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if res.Limit != bizConsts.DefaultPageLimit || res.Offset != 0 {
		t.Fatalf("window = (%d,%d), want defaults", res.Limit, res.Offset)
	}
	if res.Total != 1 || len(res.Tasks) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", res.Total, len(res.Tasks))
	}

	var ve *apperr.ValidationError
	if _, err := svc.List(ctx, "o", &model.TaskListQuery{Status: "done"}); !errors.As(err, &ve) || ve.Field != "status" {
		t.Fatalf("invalid status: err = %v, want ValidationError on status", err)
	}
}

func TestSearchServesSecondCallFromCache(t *testing.T) {
	da := newStubDao()
	svc := newTestService(t, da)
	ctx := context.Background()

	_, _ = svc.Create(ctx, "o", &CreateTaskRequest{Title: "groceries list"})

	p1, err := svc.Search(ctx, "o", "Groceries", 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if p1.Total != 1 {
		t.Fatalf("total = %d, want 1", p1.Total)
	}
	calls := da.listCalls

	// Same normalized query and page: no store round trip.
	p2, err := svc.Search(ctx, "o", "  groceries ", 1)
	if err != nil {
		t.Fatalf("search cached: %v", err)
	}
	if da.listCalls != calls {
		t.Fatalf("second search hit the store (%d -> %d calls)", calls, da.listCalls)
	}
	if p2.Total != p1.Total {
		t.Fatalf("cached page differs")
	}

	// Different page is a different key.
	if _, err := svc.Search(ctx, "o", "groceries", 2); err != nil {
		t.Fatalf("search page 2: %v", err)
	}
	if da.listCalls == calls {
		t.Fatalf("page 2 must query the store")
	}
}

func TestSearchCacheIsPerOwner(t *testing.T) {
	da := newStubDao()
	svc := newTestService(t, da)
	ctx := context.Background()

	_, _ = svc.Create(ctx, "owner-a", &CreateTaskRequest{Title: "secret plan"})

	pa, err := svc.Search(ctx, "owner-a", "plan", 1)
	if err != nil {
		t.Fatalf("search a: %v", err)
	}
	if pa.Total != 1 {
		t.Fatalf("owner-a total = %d, want 1", pa.Total)
	}

	// owner-b must not see owner-a's cached page.
	pb, err := svc.Search(ctx, "owner-b", "plan", 1)
	if err != nil {
		t.Fatalf("search b: %v", err)
	}
	if pb.Total != 0 || len(pb.Tasks) != 0 {
		t.Fatalf("owner-b leaked cached results: %+v", pb)
	}
}

func TestSearchStoreErrorPropagates(t *testing.T) {
	da := newStubDao()
	svc := newTestService(t, da)

	da.failList = true
	_, err := svc.Search(context.Background(), "o", "anything", 1)
	var se *apperr.TransientStoreError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want TransientStoreError", err)
	}

	// A failed fill must not poison the cache.
	da.failList = false
	if _, err := svc.Search(context.Background(), "o", "anything", 1); err != nil {
		t.Fatalf("search after recovery: %v", err)
	}
}
