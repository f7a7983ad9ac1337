// Package client is the Go SDK for the to-do API: a typed HTTP wrapper plus an
// optimistic-update reconciler for building responsive frontends.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/http_client"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

const tasksBasePath = "/api/v1/tasks"

// TasksClient 包装 http_client 的实例化客户端, 按 owner 的 bearer token 访问任务接口。
// 服务端错误负载会被还原成 apperr 的错误类型, 便于调用方 errors.As 分流。
type TasksClient struct {
	HTTP  *http_client.InstrumentedClient
	Token string
}

func NewTasksClient(ic *http_client.InstrumentedClient, token string) *TasksClient {
	return &TasksClient{HTTP: ic, Token: token}
}

// ListPage is the wire shape of GET /api/v1/tasks.
type ListPage struct {
	Tasks  []*model.Task `json:"tasks"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// SearchPage is the wire shape of GET /api/v1/tasks/search.
type SearchPage struct {
	Tasks    []*model.Task `json:"tasks"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// CreateTaskRequest is the POST body. Owner is never part of it.
type CreateTaskRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    consts.Priority `json:"priority,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

// TaskPatch 部分更新。nil 指针代表字段不改; Tags/DueDate 需要区分
// "不改" 与 "显式清空", 置 TagsSet/DueDateSet 且值为 nil 即发送 null。
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *consts.Priority
	Tags        []string
	TagsSet     bool
	DueDate     *time.Time
	DueDateSet  bool
}

func (p *TaskPatch) body() map[string]any {
	m := map[string]any{}
	if p == nil {
		return m
	}
	if p.Title != nil {
		m["title"] = *p.Title
	}
	if p.Description != nil {
		m["description"] = *p.Description
	}
	if p.Completed != nil {
		m["completed"] = *p.Completed
	}
	if p.Priority != nil {
		m["priority"] = *p.Priority
	}
	if p.TagsSet {
		m["tags"] = p.Tags // nil 编码为 null
	}
	if p.DueDateSet {
		m["due_date"] = p.DueDate
	}
	return m
}

func (c *TasksClient) List(ctx context.Context, q *model.TaskListQuery) (*ListPage, error) {
	var out ListPage
	if err := c.do(ctx, http.MethodGet, tasksBasePath, listValues(q), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TasksClient) Search(ctx context.Context, query string, page int) (*SearchPage, error) {
	v := url.Values{}
	v.Set("q", query)
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	var out SearchPage
	if err := c.do(ctx, http.MethodGet, tasksBasePath+"/search", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TasksClient) Get(ctx context.Context, id string) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodGet, tasksBasePath+"/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TasksClient) Create(ctx context.Context, req *CreateTaskRequest) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPost, tasksBasePath, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TasksClient) Update(ctx context.Context, id string, patch *TaskPatch) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPut, tasksBasePath+"/"+id, nil, patch.body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TasksClient) ToggleComplete(ctx context.Context, id string) (*model.Task, error) {
	var out model.Task
	if err := c.do(ctx, http.MethodPatch, tasksBasePath+"/"+id+"/complete", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *TasksClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, tasksBasePath+"/"+id, nil, nil, nil)
}

func (c *TasksClient) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if c.HTTP == nil || c.HTTP.Client == nil {
		return fmt.Errorf("tasks client: http client not configured")
	}
	target := strings.TrimRight(c.HTTP.BaseURL, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return err
	}
	for k, v := range c.HTTP.DefaultHeaders {
		req.Header.Set(k, v)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	op := method + " " + path
	resp, err := c.HTTP.Client.Do(req)
	if err != nil {
		// 后端不可达按暂时性失败处理, 由上层 (reconciler) 回滚并提示。
		return apperr.WrapStore(op, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return decodeError(op, resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// decodeError 将 {"error","code","field"} 负载还原为 apperr 错误。
func decodeError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var p struct {
		Error string `json:"error"`
		Code  string `json:"code"`
		Field string `json:"field"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Code == "" {
		return fmt.Errorf("%s: http status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	switch p.Code {
	case apperr.CodeValidation:
		return apperr.NewValidation(p.Field, p.Error)
	case apperr.CodeForbidden:
		return apperr.NewForbidden(p.Error)
	case apperr.CodeNotFound:
		resource := strings.TrimSuffix(p.Error, " not found")
		if resource == "" || resource == p.Error {
			resource = "task"
		}
		return apperr.NewNotFound(resource)
	case apperr.CodeTransientStore:
		return apperr.WrapStore(op, errors.New(p.Error))
	case apperr.CodeRateLimited:
		limit, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Limit"), 10, 64)
		return apperr.NewRateLimited(limit)
	default:
		return fmt.Errorf("%s: http status %d (%s): %s", op, resp.StatusCode, p.Code, p.Error)
	}
}

func listValues(q *model.TaskListQuery) url.Values {
	v := url.Values{}
	if q == nil {
		return v
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if len(q.Priorities) > 0 {
		ps := make([]string, 0, len(q.Priorities))
		for _, p := range q.Priorities {
			ps = append(ps, string(p))
		}
		v.Set("priority", strings.Join(ps, ","))
	}
	if len(q.Tags) > 0 {
		v.Set("tags", strings.Join(q.Tags, ","))
	}
	if q.DueBucket != "" {
		v.Set("due_date", string(q.DueBucket))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sort_by", string(q.SortBy))
	}
	if q.SortOrder != "" {
		v.Set("sort_order", string(q.SortOrder))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}
