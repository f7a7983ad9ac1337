package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	pg "github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/components/postgresgorm"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/application/core"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

type TaskDao interface {
	// Embed component so registry builders can return a TaskDao where core.Component is required
	core.Component
	Create(ctx context.Context, task *model.Task) error
	// Get 按 owner+id 读取；不属于该 owner 的任务与不存在返回同一个 NotFound。
	Get(ctx context.Context, ownerID, id string) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, ownerID, id string) (int64, error)
	ListFiltered(ctx context.Context, ownerID string, q *model.TaskListQuery) ([]*model.Task, error)
	CountFiltered(ctx context.Context, ownerID string, q *model.TaskListQuery) (int64, error)
}

type taskDaoImpl struct {
	db *gorm.DB
	*core.BaseComponent
	GormComp *pg.PostgresGormComponent `infra:"dep:postgres_gorm"`
	dsName   string // 数据源名称
}

func NewTaskDao(dsName string) TaskDao {
	return &taskDaoImpl{
		BaseComponent: core.NewBaseComponent(bizConsts.COMP_DAO_TASK, consts.COMPONENT_LOGGING),
		dsName:        dsName,
	}
}

func (d *taskDaoImpl) Start(ctx context.Context) error {
	if err := d.BaseComponent.Start(ctx); err != nil {
		return err
	}
	db, err := d.GormComp.GetDB(d.dsName)
	if err != nil {
		return fmt.Errorf("get gorm db %s failed: %w", d.dsName, err)
	}
	d.db = db
	return nil
}

func (d *taskDaoImpl) Stop(ctx context.Context) error {
	return d.BaseComponent.Stop(ctx)
}

func (d *taskDaoImpl) Create(ctx context.Context, task *model.Task) error {
	if task.Tags == nil {
		task.Tags = model.TagSet{}
	}
	if err := d.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperr.WrapStore("create task", err)
	}
	return nil
}

func (d *taskDaoImpl) Get(ctx context.Context, ownerID, id string) (*model.Task, error) {
	var task model.Task
	err := d.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFound("task")
		}
		return nil, apperr.WrapStore("get task", err)
	}
	return &task, nil
}

// Update persists the mutable columns of an owner-checked task. A miss on
// (id, owner_id) reports NotFound, never a foreign owner's row.
func (d *taskDaoImpl) Update(ctx context.Context, task *model.Task) error {
	res := d.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND owner_id = ?", task.ID, task.OwnerID).
		Updates(map[string]any{
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
			"priority":    task.Priority,
			"tags":        task.Tags,
			"due_date":    task.DueDate,
			"updated_at":  task.UpdatedAt,
		})
	if res.Error != nil {
		return apperr.WrapStore("update task", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NewNotFound("task")
	}
	return nil
}

func (d *taskDaoImpl) Delete(ctx context.Context, ownerID, id string) (int64, error) {
	res := d.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Task{})
	if res.Error != nil {
		return 0, apperr.WrapStore("delete task", res.Error)
	}
	return res.RowsAffected, nil
}

func (d *taskDaoImpl) ListFiltered(ctx context.Context, ownerID string, f *model.TaskListQuery) ([]*model.Task, error) {
	var list []*model.Task
	q := applyTaskFilters(d.db.WithContext(ctx).Model(&model.Task{}), ownerID, f, time.Now())
	q = q.Order(orderClause(f)).Limit(f.Limit).Offset(f.Offset)
	if err := q.Find(&list).Error; err != nil {
		return nil, apperr.WrapStore("list tasks", err)
	}
	return list, nil
}

func (d *taskDaoImpl) CountFiltered(ctx context.Context, ownerID string, f *model.TaskListQuery) (int64, error) {
	var total int64
	q := applyTaskFilters(d.db.WithContext(ctx).Model(&model.Task{}), ownerID, f, time.Now())
	if err := q.Count(&total).Error; err != nil {
		return 0, apperr.WrapStore("count tasks", err)
	}
	return total, nil
}

// applyTaskFilters 把一次 TaskListQuery 的各个维度拼成 WHERE 子句。
// owner 限定永远在最前且无条件；各维度之间 AND 组合。
// 调用方保证 f 已经 Normalize 过。
func applyTaskFilters(q *gorm.DB, ownerID string, f *model.TaskListQuery, now time.Time) *gorm.DB {
	q = q.Where("owner_id = ?", ownerID)

	switch f.Status {
	case bizConsts.StatusActive:
		q = q.Where("completed = ?", false)
	case bizConsts.StatusCompleted:
		q = q.Where("completed = ?", true)
	}

	if len(f.Priorities) > 0 {
		q = q.Where("priority IN ?", f.Priorities)
	}

	// Tags are superset match: the task must carry ALL requested tags.
	// Priority above is IN (any-of); the asymmetry is intended.
	if len(f.Tags) > 0 {
		b, _ := json.Marshal([]string(f.Tags))
		q = q.Where("tags @> ?::jsonb", string(b))
	}

	switch f.DueBucket {
	case bizConsts.DueToday:
		start, end := model.DueWindowToday(now)
		q = q.Where("due_date >= ? AND due_date < ?", start, end)
	case bizConsts.DueThisWeek:
		start, end := model.DueWindowThisWeek(now)
		q = q.Where("due_date >= ? AND due_date < ?", start, end)
	case bizConsts.DueOverdue:
		q = q.Where("due_date < ? AND completed = ?", now, false)
	}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("(title ILIKE ? OR description ILIKE ?)", pattern, pattern)
	}

	return q
}

// orderClause 把白名单排序字段映射成 ORDER BY 子句，恒定追加 id ASC 打平并列。
// due_date 为空的行排在两个方向的最后；priority 按 HIGH>MEDIUM>LOW 权重排序。
func orderClause(f *model.TaskListQuery) string {
	dir := "DESC"
	if f.SortOrder == bizConsts.OrderAsc {
		dir = "ASC"
	}
	switch f.SortBy {
	case bizConsts.SortDueDate:
		return fmt.Sprintf("due_date %s NULLS LAST, id ASC", dir)
	case bizConsts.SortPriority:
		return fmt.Sprintf("CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END %s, id ASC", dir)
	case bizConsts.SortTitle:
		return fmt.Sprintf("title %s, id ASC", dir)
	default:
		return fmt.Sprintf("created_at %s, id ASC", dir)
	}
}
