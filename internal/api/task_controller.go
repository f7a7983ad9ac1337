package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/logging"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/auth"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/events"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/service"
)

type TaskController struct {
	*core.BaseComponent
	TaskSvc TaskServiceIface   `infra:"dep:task_service"`
	Events  *events.TaskEvents `infra:"dep:task_events?"`
}

func NewTaskController() *TaskController {
	return &TaskController{BaseComponent: core.NewBaseComponent(bizConsts.COMP_CTRL_TASK, consts.COMPONENT_LOGGING)}
}

// owner 从认证中间件注入的 context 取, 请求携带的 owner 一律拒绝。
func (tc *TaskController) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	ownerID, ok := auth.OwnerID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated", "code": "UNAUTHORIZED"})
		return "", false
	}
	return ownerID, true
}

func (tc *TaskController) listTasks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	q, err := parseListQuery(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	res, err := tc.TaskSvc.List(r.Context(), ownerID, q)
	if err != nil {
		tc.logFailure(r, "task list failed", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":  res.Tasks,
		"total":  res.Total,
		"limit":  res.Limit,
		"offset": res.Offset,
	})
}

func (tc *TaskController) searchTasks(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	if err := rejectOwnerParams(r); err != nil {
		writeErr(w, err)
		return
	}
	page := 1
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			writeErr(w, apperr.Validationf("page", "page must be an integer, got %q", v))
			return
		}
		page = i
	}
	if page < 1 {
		page = 1
	}
	res, err := tc.TaskSvc.Search(r.Context(), ownerID, r.URL.Query().Get("q"), page)
	if err != nil {
		tc.logFailure(r, "task search failed", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tasks":     res.Tasks,
		"total":     res.Total,
		"page":      page,
		"page_size": bizConsts.DefaultPageLimit,
	})
}

func (tc *TaskController) createTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		Tags        []string   `json:"tags"`
		DueDate     *time.Time `json:"due_date"`
	}
	if err := json.Unmarshal(body, &req); err != nil {
		writeErr(w, apperr.NewValidation("", "malformed request body: "+err.Error()))
		return
	}
	task, err := tc.TaskSvc.Create(r.Context(), ownerID, &service.CreateTaskRequest{
		Title:       req.Title,
		Description: req.Description,
		Priority:    bizConsts.Priority(req.Priority),
		Tags:        req.Tags,
		DueDate:     req.DueDate,
	})
	if err != nil {
		tc.logFailure(r, "task creation failed", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (tc *TaskController) getTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	task, err := tc.TaskSvc.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (tc *TaskController) updateTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeErr(w, err)
		return
	}
	patch, err := parsePatch(body)
	if err != nil {
		writeErr(w, err)
		return
	}
	task, err := tc.TaskSvc.Update(r.Context(), ownerID, chi.URLParam(r, "id"), patch)
	if err != nil {
		tc.logFailure(r, "task update failed", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (tc *TaskController) toggleComplete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	task, err := tc.TaskSvc.ToggleComplete(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		tc.logFailure(r, "task toggle failed", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (tc *TaskController) deleteTask(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	if err := tc.TaskSvc.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		tc.logFailure(r, "task delete failed", err)
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// streamEvents 推送该 owner 的任务变更 (SSE)。events 组件未启用时返回 503。
func (tc *TaskController) streamEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := tc.owner(w, r)
	if !ok {
		return
	}
	if tc.Events == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "task events disabled", "code": "STORE_UNAVAILABLE"})
		return
	}

	sub := tc.Events.Subscribe(r.Context(), ownerID)
	defer sub.Close()

	rc := http.NewResponseController(w)
	// 长连接, 清掉 server 级写超时。
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	ch := sub.Channel()
	for {
		select {
		case <-r.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", msg.Payload); err != nil {
				return
			}
			_ = rc.Flush()
		case <-heartbeat.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
			_ = rc.Flush()
		}
	}
}

func (tc *TaskController) logFailure(r *http.Request, msg string, err error) {
	if apperr.Status(err) >= http.StatusInternalServerError {
		logging.Error(r.Context(), fmt.Sprintf("%s: %v", msg, err))
		return
	}
	logging.Debug(r.Context(), fmt.Sprintf("%s: %v", msg, err))
}

// readBody 读出请求体并拒绝试图携带 owner 的请求。
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, apperr.NewValidation("", "read request body: "+err.Error())
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, apperr.NewValidation("", "request body is required")
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, apperr.NewValidation("", "malformed request body: "+err.Error())
	}
	for _, key := range []string{"owner_id", "user_id"} {
		if _, has := probe[key]; has {
			return nil, apperr.NewForbidden("owner is derived from the session, not the request")
		}
	}
	return body, nil
}

// parsePatch 区分 "字段未提供" 与 "显式置 null"。
func parsePatch(body []byte) (*service.TaskPatch, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperr.NewValidation("", "malformed request body: "+err.Error())
	}
	patch := &service.TaskPatch{}
	nullish := func(raw json.RawMessage) bool { return bytes.Equal(bytes.TrimSpace(raw), []byte("null")) }

	if raw, ok := fields["title"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.NewValidation("title", "title must be a string")
		}
		patch.Title = &s
	}
	if raw, ok := fields["description"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.NewValidation("description", "description must be a string")
		}
		patch.Description = &s
	}
	if raw, ok := fields["completed"]; ok {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, apperr.NewValidation("completed", "completed must be a boolean")
		}
		patch.Completed = &b
	}
	if raw, ok := fields["priority"]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.NewValidation("priority", "priority must be a string")
		}
		p := bizConsts.Priority(s)
		patch.Priority = &p
	}
	if raw, ok := fields["tags"]; ok {
		patch.TagsSet = true
		if !nullish(raw) {
			var tags []string
			if err := json.Unmarshal(raw, &tags); err != nil {
				return nil, apperr.NewValidation("tags", "tags must be an array of strings")
			}
			patch.Tags = tags
		}
	}
	if raw, ok := fields["due_date"]; ok {
		patch.DueDateSet = true
		if !nullish(raw) {
			var t time.Time
			if err := json.Unmarshal(raw, &t); err != nil {
				return nil, apperr.NewValidation("due_date", "due_date must be an RFC3339 timestamp")
			}
			patch.DueDate = &t
		}
	}
	return patch, nil
}

// parseListQuery 把查询参数装入 TaskListQuery, 枚举值交给 Normalize 校验。
func parseListQuery(r *http.Request) (*model.TaskListQuery, error) {
	if err := rejectOwnerParams(r); err != nil {
		return nil, err
	}
	values := r.URL.Query()
	q := &model.TaskListQuery{
		Status:    bizConsts.StatusFilter(strings.TrimSpace(values.Get("status"))),
		DueBucket: bizConsts.DueBucket(strings.TrimSpace(values.Get("due_date"))),
		Search:    values.Get("search"),
		SortBy:    bizConsts.SortField(strings.TrimSpace(values.Get("sort_by"))),
		SortOrder: bizConsts.SortOrder(strings.ToLower(strings.TrimSpace(values.Get("sort_order")))),
	}
	for _, p := range splitMulti(values["priority"]) {
		q.Priorities = append(q.Priorities, bizConsts.Priority(p))
	}
	q.Tags = splitMulti(values["tags"])

	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperr.Validationf("limit", "limit must be an integer, got %q", v)
		}
		q.Limit = i
	}
	if v := strings.TrimSpace(values.Get("offset")); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return nil, apperr.Validationf("offset", "offset must be an integer, got %q", v)
		}
		q.Offset = i
	}
	return q, nil
}

// splitMulti 同时支持重复参数与逗号分隔两种写法。
func splitMulti(raw []string) []string {
	var out []string
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func rejectOwnerParams(r *http.Request) error {
	values := r.URL.Query()
	if values.Has("owner_id") || values.Has("user_id") {
		return apperr.NewForbidden("owner is derived from the session, not the request")
	}
	return nil
}
