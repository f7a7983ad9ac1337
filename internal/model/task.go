package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
)

// Task 描述单个用户的一条待办事项。owner_id 创建后不可变，所有查询都按它限定。
type Task struct {
	ID          string          `json:"id"`          // UUID 主键，服务端生成
	OwnerID     string          `json:"owner_id"`    // 所属用户 UUID，创建后不可变
	Title       string          `json:"title"`       // 必填，去首尾空白，<=255
	Description string          `json:"description"` // 可选，<=2000
	Completed   bool            `json:"completed"`   // 完成标记，默认 false
	Priority    consts.Priority `json:"priority"`    // HIGH/MEDIUM/LOW，默认 MEDIUM
	Tags        TagSet          `json:"tags"`        // 标签集合，小写去重，JSONB 存储
	DueDate     *time.Time      `json:"due_date"`    // 截止时间，可为空
	CreatedAt   time.Time       `json:"created_at"`  // 创建时间，不可变
	UpdatedAt   time.Time       `json:"updated_at"`  // 每次变更刷新，恒 >= created_at
}

func (Task) TableName() string { return "tasks" }

// Clone returns a deep copy (Tags and DueDate included).
func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	cp := *t
	if t.Tags != nil {
		cp.Tags = append(TagSet(nil), t.Tags...)
	}
	if t.DueDate != nil {
		d := *t.DueDate
		cp.DueDate = &d
	}
	return &cp
}

// TagSet 以 JSONB 数组形式存储的标签集合。
type TagSet []string

// Value implements driver.Valuer; nil serializes as the empty array.
// 返回 string 而不是 []byte, pgx 会把 []byte 当 bytea 发给 jsonb 列。
func (s TagSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb columns.
func (s *TagSet) Scan(src any) error {
	if src == nil {
		*s = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("tags: unsupported scan type %T", src)
	}
	var out []string
	if err := json.Unmarshal(b, &out); err != nil {
		return fmt.Errorf("unmarshal tags: %w", err)
	}
	*s = out
	return nil
}

// Contains 判断标签是否已存在（入参与集合均视为已规范化）。
func (s TagSet) Contains(tag string) bool {
	for _, t := range s {
		if t == tag {
			return true
		}
	}
	return false
}

// NormalizeTags lowercases, trims and deduplicates tags preserving first-seen
// order. Tags longer than the per-tag bound fail validation; empty entries are
// dropped silently.
func NormalizeTags(in []string) (TagSet, error) {
	if len(in) == 0 {
		return TagSet{}, nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make(TagSet, 0, len(in))
	for _, raw := range in {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" {
			continue
		}
		if utf8.RuneCountInString(tag) > consts.MaxTagLen {
			return nil, apperr.Validationf("tags", "tag %q exceeds %d characters", tag, consts.MaxTagLen)
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out, nil
}

// ValidPriority reports whether p is one of the three known priorities.
func ValidPriority(p consts.Priority) bool {
	switch p {
	case consts.PriorityHigh, consts.PriorityMedium, consts.PriorityLow:
		return true
	}
	return false
}
