package consts

// Priority 任务优先级
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// StatusFilter 列表过滤的完成状态维度
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"       // 不过滤
	StatusActive    StatusFilter = "active"    // completed = false
	StatusCompleted StatusFilter = "completed" // completed = true
)

// DueBucket 截止日期分桶
type DueBucket string

const (
	DueAll      DueBucket = "all"
	DueToday    DueBucket = "today"     // [本地自然日开始, 次日)
	DueThisWeek DueBucket = "this_week" // [now, now+7d)
	DueOverdue  DueBucket = "overdue"   // due_date < now 且未完成
)

// SortField 排序字段白名单
type SortField string

const (
	SortDueDate   SortField = "due_date"
	SortPriority  SortField = "priority"
	SortCreatedAt SortField = "created_at"
	SortTitle     SortField = "title"
)

// SortOrder 排序方向
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 2000
	MaxTagLen         = 50

	DefaultPageLimit = 50
	MaxPageLimit     = 100
)
