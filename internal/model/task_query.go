package model

import (
	"strings"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
)

// TaskListQuery 是一次列表/搜索请求的过滤与排序值对象。
// 零值字段表示对应维度不过滤；Normalize 负责校验与缺省填充。
type TaskListQuery struct {
	Status     consts.StatusFilter
	Priorities []consts.Priority
	Tags       []string
	DueBucket  consts.DueBucket
	Search     string
	SortBy     consts.SortField
	SortOrder  consts.SortOrder
	Limit      int
	Offset     int
}

// Normalize validates enum fields and fills defaults. Invalid enum values fail
// with a ValidationError naming the field; they are never silently ignored.
func (q *TaskListQuery) Normalize() error {
	switch q.Status {
	case "", consts.StatusAll:
		q.Status = consts.StatusAll
	case consts.StatusActive, consts.StatusCompleted:
	default:
		return apperr.Validationf("status", "unknown status %q", string(q.Status))
	}

	for i, p := range q.Priorities {
		up := consts.Priority(strings.ToUpper(strings.TrimSpace(string(p))))
		if !ValidPriority(up) {
			return apperr.Validationf("priority", "unknown priority %q", string(p))
		}
		q.Priorities[i] = up
	}

	if len(q.Tags) > 0 {
		tags, err := NormalizeTags(q.Tags)
		if err != nil {
			return err
		}
		q.Tags = tags
	}

	switch q.DueBucket {
	case "", consts.DueAll:
		q.DueBucket = consts.DueAll
	case consts.DueToday, consts.DueThisWeek, consts.DueOverdue:
	default:
		return apperr.Validationf("due_date", "unknown due bucket %q", string(q.DueBucket))
	}

	q.Search = strings.TrimSpace(q.Search)

	switch q.SortBy {
	case "":
		q.SortBy = consts.SortCreatedAt
	case consts.SortDueDate, consts.SortPriority, consts.SortCreatedAt, consts.SortTitle:
	default:
		return apperr.Validationf("sort_by", "unknown sort field %q", string(q.SortBy))
	}

	switch q.SortOrder {
	case "":
		q.SortOrder = consts.OrderDesc
	case consts.OrderAsc, consts.OrderDesc:
	default:
		return apperr.Validationf("sort_order", "unknown sort order %q", string(q.SortOrder))
	}

	if q.Limit <= 0 {
		q.Limit = consts.DefaultPageLimit
	}
	if q.Limit > consts.MaxPageLimit {
		q.Limit = consts.MaxPageLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return nil
}

// DueWindowToday 返回 now 所在本地自然日的 [start, end) 窗口。
func DueWindowToday(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// DueWindowThisWeek 返回 [now, now+7d) 窗口。
func DueWindowThisWeek(now time.Time) (time.Time, time.Time) {
	return now, now.AddDate(0, 0, 7)
}

// PriorityRank 排序用权重：HIGH=3 MEDIUM=2 LOW=1，未知为 0。
func PriorityRank(p consts.Priority) int {
	switch p {
	case consts.PriorityHigh:
		return 3
	case consts.PriorityMedium:
		return 2
	case consts.PriorityLow:
		return 1
	}
	return 0
}

// TaskPage 一页查询结果以及与分页无关的总数。
type TaskPage struct {
	Tasks []*Task `json:"tasks"`
	Total int64   `json:"total"`
}
