package service

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/logging"
	prom "github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/prometheus"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/audit"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/cache"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/dao"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/events"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"

	prometheus "github.com/prometheus/client_golang/prometheus"
)

// CreateTaskRequest 创建任务的入参。owner 永远单独传, 不在请求结构里。
type CreateTaskRequest struct {
	Title       string
	Description string
	Priority    bizConsts.Priority
	Tags        []string
	DueDate     *time.Time
}

// TaskPatch 部分更新。指针为 nil 表示该字段未提供; 可置空的字段
// (due_date/tags) 额外带一个 Set 标记以区分 "未提供" 和 "显式清空"。
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *bizConsts.Priority
	Tags        []string
	TagsSet     bool
	DueDate     *time.Time
	DueDateSet  bool
}

// ListResult 一页列表结果, 带与分页无关的总数和实际生效的窗口。
type ListResult struct {
	Tasks  []*model.Task
	Total  int64
	Limit  int
	Offset int
}

// TaskService 任务读写的业务层: 校验入参、生成 ID 与时间戳、
// 维护每个 owner 独立的搜索缓存、发事件、记审计。
// 缓存只做 TTL 内的读优化, 写操作不主动失效 (TTL 之内读到旧页是接受的折衷)。
type TaskService struct {
	*core.BaseComponent
	TaskDao dao.TaskDao        `infra:"dep:task_dao"`
	Events  *events.TaskEvents `infra:"dep:task_events?"`

	auditor  *audit.Recorder
	cacheCap int
	cacheTTL time.Duration

	mu     sync.RWMutex
	caches map[string]*cache.SearchCache // owner -> 独立缓存, 绝不跨用户共享

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	mutations   *prometheus.CounterVec

	nowFn func() time.Time
}

func NewTaskService(cacheCapacity int, cacheTTL time.Duration) *TaskService {
	return &TaskService{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_SVC_TASK),
		auditor:       audit.NewRecorder(),
		cacheCap:      cacheCapacity,
		cacheTTL:      cacheTTL,
		nowFn:         time.Now,
	}
}

func (s *TaskService) Start(ctx context.Context) error {
	if s.IsActive() {
		return nil
	}
	if err := s.BaseComponent.Start(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	s.caches = make(map[string]*cache.SearchCache)
	s.mu.Unlock()
	if mc := prom.C(); mc != nil {
		s.cacheHits = mc.NewCounter("search_cache_hits_total", "search cache hits", nil)
		s.cacheMisses = mc.NewCounter("search_cache_misses_total", "search cache misses", nil)
		s.mutations = mc.NewCounter("task_mutations_total", "task mutations by action and outcome", []string{"action", "outcome"})
	}
	logging.Info(ctx, "task_service started",
		zap.Int("search_cache_capacity", s.cacheCap),
		zap.Duration("search_cache_ttl", s.cacheTTL))
	return nil
}

func (s *TaskService) Stop(ctx context.Context) error {
	return s.BaseComponent.Stop(ctx)
}

// Create 创建任务。标题必填, 优先级缺省 MEDIUM, 标签规范化后落库。
func (s *TaskService) Create(ctx context.Context, ownerID string, req *CreateTaskRequest) (*model.Task, error) {
	started := s.nowFn()

	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(req.Description); err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = bizConsts.PriorityMedium
	}
	priority = bizConsts.Priority(strings.ToUpper(string(priority)))
	if !model.ValidPriority(priority) {
		return nil, apperr.Validationf("priority", "unknown priority %q", string(req.Priority))
	}
	tags, err := model.NormalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	task := &model.Task{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       title,
		Description: req.Description,
		Completed:   false,
		Priority:    priority,
		Tags:        tags,
		DueDate:     req.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.TaskDao.Create(ctx, task)
	s.recordMutation(ctx, "create", ownerID, task.ID, started, err)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ownerID, events.EventTaskCreated, task)
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*model.Task, error) {
	return s.TaskDao.Get(ctx, ownerID, id)
}

// Update 部分更新: 先按 owner 读出, 套用补丁并校验, 再整行落库。
func (s *TaskService) Update(ctx context.Context, ownerID, id string, patch *TaskPatch) (*model.Task, error) {
	started := s.nowFn()

	task, err := s.TaskDao.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := applyPatch(task, patch); err != nil {
		return nil, err
	}
	task.UpdatedAt = s.nowFn()

	err = s.TaskDao.Update(ctx, task)
	s.recordMutation(ctx, "update", ownerID, id, started, err)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ownerID, events.EventTaskUpdated, task)
	return task, nil
}

// ToggleComplete 翻转完成标记。
func (s *TaskService) ToggleComplete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	started := s.nowFn()

	task, err := s.TaskDao.Get(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	task.Completed = !task.Completed
	task.UpdatedAt = s.nowFn()

	err = s.TaskDao.Update(ctx, task)
	s.recordMutation(ctx, "toggle_complete", ownerID, id, started, err)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ownerID, events.EventTaskCompleted, task)
	return task, nil
}

// Delete 物理删除。0 行命中视为 NotFound, 不区分不存在与不属于该 owner。
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	started := s.nowFn()

	affected, err := s.TaskDao.Delete(ctx, ownerID, id)
	if err == nil && affected == 0 {
		err = apperr.NewNotFound("task")
	}
	s.recordMutation(ctx, "delete", ownerID, id, started, err)
	if err != nil {
		return err
	}
	s.publish(ctx, ownerID, events.EventTaskDeleted, &model.Task{ID: id, OwnerID: ownerID})
	return nil
}

// List 过滤+排序+分页列表。总数独立于分页窗口。
func (s *TaskService) List(ctx context.Context, ownerID string, q *model.TaskListQuery) (*ListResult, error) {
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	tasks, err := s.TaskDao.ListFiltered(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	total, err := s.TaskDao.CountFiltered(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	return &ListResult{Tasks: tasks, Total: total, Limit: q.Limit, Offset: q.Offset}, nil
}

// Search 自由文本搜索, 页大小固定 50。结果按 (规范化查询文本, 页码)
// 进入该 owner 的缓存; 命中直接返回, 未命中查库后回填。
func (s *TaskService) Search(ctx context.Context, ownerID, query string, page int) (*model.TaskPage, error) {
	if page <= 0 {
		page = 1
	}
	normalized := strings.ToLower(strings.TrimSpace(query))

	c := s.cacheFor(ownerID)
	if got, ok := c.Get(normalized, page); ok {
		s.incr(s.cacheHits)
		return got, nil
	}
	s.incr(s.cacheMisses)

	q := &model.TaskListQuery{
		Search: normalized,
		Limit:  bizConsts.DefaultPageLimit,
		Offset: (page - 1) * bizConsts.DefaultPageLimit,
	}
	if err := q.Normalize(); err != nil {
		return nil, err
	}
	tasks, err := s.TaskDao.ListFiltered(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	total, err := s.TaskDao.CountFiltered(ctx, ownerID, q)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	result := &model.TaskPage{Tasks: tasks, Total: total}
	c.Put(normalized, page, result)
	return result, nil
}

// cacheFor 返回 owner 的搜索缓存, 不存在则创建。
func (s *TaskService) cacheFor(ownerID string) *cache.SearchCache {
	s.mu.RLock()
	c, ok := s.caches[ownerID]
	s.mu.RUnlock()
	if ok {
		return c
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok = s.caches[ownerID]; ok {
		return c
	}
	c = cache.NewSearchCache(s.cacheCap, s.cacheTTL)
	s.caches[ownerID] = c
	return c
}

func (s *TaskService) publish(ctx context.Context, ownerID string, typ events.EventType, task *model.Task) {
	if s.Events == nil {
		return
	}
	ev := &events.TaskEvent{Type: typ, TaskID: task.ID, At: s.nowFn()}
	if typ != events.EventTaskDeleted {
		ev.Task = task
	}
	s.Events.Publish(ctx, ownerID, ev)
}

func (s *TaskService) recordMutation(ctx context.Context, action, ownerID, taskID string, started time.Time, err error) {
	s.auditor.Record(ctx, action, ownerID, taskID, started, err)
	if s.mutations != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		s.mutations.WithLabelValues(action, outcome).Inc()
	}
}

func (s *TaskService) incr(c *prometheus.CounterVec) {
	if c != nil {
		c.WithLabelValues().Inc()
	}
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", apperr.NewValidation("title", "title is required")
	}
	if utf8.RuneCountInString(title) > bizConsts.MaxTitleLen {
		return "", apperr.Validationf("title", "title exceeds %d characters", bizConsts.MaxTitleLen)
	}
	return title, nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > bizConsts.MaxDescriptionLen {
		return apperr.Validationf("description", "description exceeds %d characters", bizConsts.MaxDescriptionLen)
	}
	return nil
}

// applyPatch 把补丁套到实体上, 校验规则与创建一致。
func applyPatch(task *model.Task, patch *TaskPatch) error {
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return err
		}
		task.Title = title
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			return err
		}
		task.Description = *patch.Description
	}
	if patch.Completed != nil {
		task.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		p := bizConsts.Priority(strings.ToUpper(string(*patch.Priority)))
		if !model.ValidPriority(p) {
			return apperr.Validationf("priority", "unknown priority %q", string(*patch.Priority))
		}
		task.Priority = p
	}
	if patch.TagsSet {
		tags, err := model.NormalizeTags(patch.Tags)
		if err != nil {
			return err
		}
		task.Tags = tags
	}
	if patch.DueDateSet {
		task.DueDate = patch.DueDate
	}
	return nil
}
