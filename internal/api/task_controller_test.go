package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/auth"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/service"
)

// stubSvc implements TaskServiceIface and records the calls it receives.
type stubSvc struct {
	lastOwner  string
	lastCreate *service.CreateTaskRequest
	lastPatch  *service.TaskPatch
	lastQuery  *model.TaskListQuery
	lastSearch string
	lastPage   int
	err        error
}

func (s *stubSvc) task(ownerID string) *model.Task {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return &model.Task{
		ID: "task-1", OwnerID: ownerID, Title: "stub", Priority: bizConsts.PriorityMedium,
		Tags: model.TagSet{}, CreatedAt: now, UpdatedAt: now,
	}
}

func (s *stubSvc) Create(ctx context.Context, ownerID string, req *service.CreateTaskRequest) (*model.Task, error) {
	s.lastOwner, s.lastCreate = ownerID, req
	if s.err != nil {
		return nil, s.err
	}
	return s.task(ownerID), nil
}

func (s *stubSvc) Get(ctx context.Context, ownerID, id string) (*model.Task, error) {
	s.lastOwner = ownerID
	if s.err != nil {
		return nil, s.err
	}
	return s.task(ownerID), nil
}

func (s *stubSvc) Update(ctx context.Context, ownerID, id string, patch *service.TaskPatch) (*model.Task, error) {
	s.lastOwner, s.lastPatch = ownerID, patch
	if s.err != nil {
		return nil, s.err
	}
	return s.task(ownerID), nil
}

func (s *stubSvc) ToggleComplete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	s.lastOwner = ownerID
	if s.err != nil {
		return nil, s.err
	}
	t := s.task(ownerID)
	t.Completed = true
	return t, nil
}

func (s *stubSvc) Delete(ctx context.Context, ownerID, id string) error {
	s.lastOwner = ownerID
	return s.err
}

func (s *stubSvc) List(ctx context.Context, ownerID string, q *model.TaskListQuery) (*service.ListResult, error) {
	s.lastOwner, s.lastQuery = ownerID, q
	if s.err != nil {
		return nil, s.err
	}
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	return &service.ListResult{Tasks: []*model.Task{}, Total: 0, Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *stubSvc) Search(ctx context.Context, ownerID, query string, page int) (*model.TaskPage, error) {
	s.lastOwner, s.lastSearch, s.lastPage = ownerID, query, page
	if s.err != nil {
		return nil, s.err
	}
	return &model.TaskPage{Tasks: []*model.Task{}, Total: 0}, nil
}

func newTestRouter(svc TaskServiceIface) chi.Router {
	tc := NewTaskController()
	tc.TaskSvc = svc
	r := chi.NewRouter()
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Get("/", tc.listTasks)
		r.Post("/", tc.createTask)
		r.Get("/search", tc.searchTasks)
		r.Get("/{id}", tc.getTask)
		r.Put("/{id}", tc.updateTask)
		r.Delete("/{id}", tc.deleteTask)
		r.Patch("/{id}/complete", tc.toggleComplete)
	})
	return r
}

func doAuthed(r chi.Router, method, target, owner, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if owner != "" {
		req = req.WithContext(auth.WithOwner(req.Context(), owner))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateTaskCreated(t *testing.T) {
	svc := &stubSvc{}
	r := newTestRouter(svc)

	rec := doAuthed(r, http.MethodPost, "/api/v1/tasks", "owner-1",
		`{"title":"Buy milk","priority":"HIGH","tags":["home"],"due_date":"2025-06-03T10:00:00Z"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastOwner != "owner-1" {
		t.Fatalf("owner passed = %q", svc.lastOwner)
	}
	if svc.lastCreate.Title != "Buy milk" || svc.lastCreate.Priority != "HIGH" {
		t.Fatalf("create request = %+v", svc.lastCreate)
	}
	if svc.lastCreate.DueDate == nil {
		t.Fatalf("due_date not parsed")
	}
}

func TestCreateTaskRejectsBodyOwner(t *testing.T) {
	for _, key := range []string{"owner_id", "user_id"} {
		svc := &stubSvc{}
		r := newTestRouter(svc)

		rec := doAuthed(r, http.MethodPost, "/api/v1/tasks", "owner-1",
			`{"title":"x","`+key+`":"someone-else"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s in body: status = %d, want 403", key, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"code":"FORBIDDEN"`) {
			t.Fatalf("body = %s, want FORBIDDEN code", rec.Body.String())
		}
		if svc.lastCreate != nil {
			t.Fatalf("service must not be reached")
		}
	}
}

func TestCreateTaskUnauthenticated(t *testing.T) {
	r := newTestRouter(&stubSvc{})
	rec := doAuthed(r, http.MethodPost, "/api/v1/tasks", "", `{"title":"x"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUpdateTaskPatchParsing(t *testing.T) {
	svc := &stubSvc{}
	r := newTestRouter(svc)

	// due_date explicit null clears, description absent stays nil.
	rec := doAuthed(r, http.MethodPut, "/api/v1/tasks/task-1", "owner-1",
		`{"title":"New title","due_date":null,"tags":null,"completed":true}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	p := svc.lastPatch
	if p.Title == nil || *p.Title != "New title" {
		t.Fatalf("title patch = %v", p.Title)
	}
	if p.Description != nil {
		t.Fatalf("absent description must stay nil")
	}
	if !p.DueDateSet || p.DueDate != nil {
		t.Fatalf("due_date null should mark set+nil, got set=%v val=%v", p.DueDateSet, p.DueDate)
	}
	if !p.TagsSet || p.Tags != nil {
		t.Fatalf("tags null should mark set+nil, got set=%v val=%v", p.TagsSet, p.Tags)
	}
	if p.Completed == nil || !*p.Completed {
		t.Fatalf("completed patch = %v", p.Completed)
	}
}

func TestUpdateTaskBadFieldTypes(t *testing.T) {
	svc := &stubSvc{}
	r := newTestRouter(svc)

	rec := doAuthed(r, http.MethodPut, "/api/v1/tasks/task-1", "owner-1",
		`{"completed":"yes"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"completed"`) {
		t.Fatalf("body = %s, want field completed", rec.Body.String())
	}
}

func TestListTasksParamParsing(t *testing.T) {
	svc := &stubSvc{}
	r := newTestRouter(svc)

	rec := doAuthed(r, http.MethodGet,
		"/api/v1/tasks?status=active&priority=HIGH,MEDIUM&priority=LOW&tags=home,errands&due_date=this_week&search=milk&sort_by=due_date&sort_order=asc&limit=10&offset=5",
		"owner-1", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	q := svc.lastQuery
	if q.Status != bizConsts.StatusActive || q.DueBucket != bizConsts.DueThisWeek {
		t.Fatalf("status/due = %v/%v", q.Status, q.DueBucket)
	}
	if len(q.Priorities) != 3 {
		t.Fatalf("priorities = %v, want 3 entries from comma and repeat", q.Priorities)
	}
	if len(q.Tags) != 2 {
		t.Fatalf("tags = %v", q.Tags)
	}
	if q.Search != "milk" || q.SortBy != bizConsts.SortDueDate || q.SortOrder != bizConsts.OrderAsc {
		t.Fatalf("query = %+v", q)
	}
	if q.Limit != 10 || q.Offset != 5 {
		t.Fatalf("window = (%d,%d)", q.Limit, q.Offset)
	}

	var resp struct {
		Tasks  []*model.Task `json:"tasks"`
		Total  int64         `json:"total"`
		Limit  int           `json:"limit"`
		Offset int           `json:"offset"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Limit != 10 || resp.Offset != 5 {
		t.Fatalf("response window = (%d,%d)", resp.Limit, resp.Offset)
	}
}

func TestListTasksRejectsBadEnumAndInts(t *testing.T) {
	r := newTestRouter(&stubSvc{})

	rec := doAuthed(r, http.MethodGet, "/api/v1/tasks?status=done", "owner-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: code = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"status"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}

	rec = doAuthed(r, http.MethodGet, "/api/v1/tasks?limit=abc", "owner-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: code = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"field":"limit"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestListTasksRejectsOwnerParam(t *testing.T) {
	r := newTestRouter(&stubSvc{})
	rec := doAuthed(r, http.MethodGet, "/api/v1/tasks?owner_id=other", "owner-1", "")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestSearchTasksPaging(t *testing.T) {
	svc := &stubSvc{}
	r := newTestRouter(svc)

	rec := doAuthed(r, http.MethodGet, "/api/v1/tasks/search?q=milk&page=3", "owner-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if svc.lastSearch != "milk" || svc.lastPage != 3 {
		t.Fatalf("search call = (%q,%d)", svc.lastSearch, svc.lastPage)
	}
	if !strings.Contains(rec.Body.String(), `"page_size":50`) {
		t.Fatalf("body = %s, want fixed page_size", rec.Body.String())
	}

	// Default page.
	rec = doAuthed(r, http.MethodGet, "/api/v1/tasks/search?q=milk", "owner-1", "")
	if rec.Code != http.StatusOK || svc.lastPage != 1 {
		t.Fatalf("default page = %d, want 1", svc.lastPage)
	}

	// Non-integer page.
	rec = doAuthed(r, http.MethodGet, "/api/v1/tasks/search?q=milk&page=x", "owner-1", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad page: code = %d, want 400", rec.Code)
	}
}

func TestDeleteTaskOK(t *testing.T) {
	r := newTestRouter(&stubSvc{})
	rec := doAuthed(r, http.MethodDelete, "/api/v1/tasks/task-1", "owner-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("body = %s, want ok true", rec.Body.String())
	}
}
