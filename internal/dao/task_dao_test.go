package dao

import (
	"strings"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	bizConsts "github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

// newDryRunDB opens a gorm handle that builds SQL without touching a server.
func newDryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=todo dbname=todo sslmode=disable",
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open dry-run db: %v", err)
	}
	return db
}

func buildListSQL(t *testing.T, db *gorm.DB, ownerID string, f *model.TaskListQuery, now time.Time) (string, []any) {
	t.Helper()
	if err := f.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	var out []*model.Task
	tx := applyTaskFilters(db.Model(&model.Task{}), ownerID, f, now).
		Order(orderClause(f)).Limit(f.Limit).Offset(f.Offset).
		Find(&out)
	if tx.Error != nil {
		t.Fatalf("build list sql: %v", tx.Error)
	}
	return tx.Statement.SQL.String(), tx.Statement.Vars
}

func TestApplyTaskFiltersComposesAllDimensions(t *testing.T) {
	db := newDryRunDB(t)
	now := time.Date(2025, 6, 2, 15, 4, 5, 0, time.UTC)
	f := &model.TaskListQuery{
		Status:     bizConsts.StatusActive,
		Priorities: []bizConsts.Priority{bizConsts.PriorityHigh, bizConsts.PriorityMedium},
		Tags:       []string{"Work", "urgent"},
		DueBucket:  bizConsts.DueToday,
		Search:     "report",
		SortBy:     bizConsts.SortDueDate,
		SortOrder:  bizConsts.OrderAsc,
	}

	sqlText, vars := buildListSQL(t, db, "owner-1", f, now)

	for _, frag := range []string{
		"owner_id = $1",
		"completed = $",
		"priority IN",
		"tags @> $",
		"::jsonb",
		"due_date >= $",
		"due_date < $",
		"ILIKE",
		"ORDER BY due_date ASC NULLS LAST, id ASC",
	} {
		if !strings.Contains(sqlText, frag) {
			t.Fatalf("sql missing %q:\n%s", frag, sqlText)
		}
	}

	if vars[0] != "owner-1" {
		t.Fatalf("owner scope must bind first, vars[0] = %v", vars[0])
	}
	// Tags were normalized to lowercase before serialization.
	found := false
	for _, v := range vars {
		if s, ok := v.(string); ok && s == `["work","urgent"]` {
			found = true
		}
	}
	if !found {
		t.Fatalf("normalized tags json not bound, vars = %v", vars)
	}
	// Search pattern is wrapped for substring match.
	pat := 0
	for _, v := range vars {
		if s, ok := v.(string); ok && s == "%report%" {
			pat++
		}
	}
	if pat != 2 {
		t.Fatalf("expected %%report%% bound twice (title, description), got %d", pat)
	}
}

func TestApplyTaskFiltersOwnerScopeUnconditional(t *testing.T) {
	db := newDryRunDB(t)
	f := &model.TaskListQuery{}

	sqlText, vars := buildListSQL(t, db, "owner-9", f, time.Now())

	if !strings.Contains(sqlText, "owner_id = $1") {
		t.Fatalf("empty query must still scope by owner:\n%s", sqlText)
	}
	for _, frag := range []string{"completed", "priority IN", "tags", "ILIKE"} {
		if strings.Contains(sqlText, frag) {
			t.Fatalf("empty query must not add %q:\n%s", frag, sqlText)
		}
	}
	if vars[0] != "owner-9" {
		t.Fatalf("vars[0] = %v, want owner-9", vars[0])
	}
	// Defaults from Normalize: created_at DESC plus the id tiebreak.
	if !strings.Contains(sqlText, "ORDER BY created_at DESC, id ASC") {
		t.Fatalf("default sort wrong:\n%s", sqlText)
	}
}

func TestApplyTaskFiltersDueWindows(t *testing.T) {
	db := newDryRunDB(t)
	loc, _ := time.LoadLocation("America/New_York")
	now := time.Date(2025, 6, 2, 22, 30, 0, 0, loc)

	t.Run("today", func(t *testing.T) {
		f := &model.TaskListQuery{DueBucket: bizConsts.DueToday}
		_, vars := buildListSQL(t, db, "o", f, now)
		start, end := model.DueWindowToday(now)
		if !containsTime(vars, start) || !containsTime(vars, end) {
			t.Fatalf("today window [%v, %v) not bound, vars = %v", start, end, vars)
		}
	})

	t.Run("this_week", func(t *testing.T) {
		f := &model.TaskListQuery{DueBucket: bizConsts.DueThisWeek}
		_, vars := buildListSQL(t, db, "o", f, now)
		start, end := model.DueWindowThisWeek(now)
		if !containsTime(vars, start) || !containsTime(vars, end) {
			t.Fatalf("week window [%v, %v) not bound, vars = %v", start, end, vars)
		}
	})

	t.Run("overdue", func(t *testing.T) {
		f := &model.TaskListQuery{DueBucket: bizConsts.DueOverdue}
		sqlText, vars := buildListSQL(t, db, "o", f, now)
		if !strings.Contains(sqlText, "due_date < $") || !strings.Contains(sqlText, "completed = $") {
			t.Fatalf("overdue must bound due_date and exclude completed:\n%s", sqlText)
		}
		if !containsTime(vars, now) {
			t.Fatalf("overdue cutoff not bound, vars = %v", vars)
		}
	})
}

func containsTime(vars []any, want time.Time) bool {
	for _, v := range vars {
		if tm, ok := v.(time.Time); ok && tm.Equal(want) {
			return true
		}
	}
	return false
}

func TestOrderClauseAllowlist(t *testing.T) {
	cases := []struct {
		field bizConsts.SortField
		order bizConsts.SortOrder
		want  string
	}{
		{bizConsts.SortDueDate, bizConsts.OrderAsc, "due_date ASC NULLS LAST, id ASC"},
		{bizConsts.SortDueDate, bizConsts.OrderDesc, "due_date DESC NULLS LAST, id ASC"},
		{bizConsts.SortPriority, bizConsts.OrderDesc, "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END DESC, id ASC"},
		{bizConsts.SortPriority, bizConsts.OrderAsc, "CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 WHEN 'LOW' THEN 1 ELSE 0 END ASC, id ASC"},
		{bizConsts.SortCreatedAt, bizConsts.OrderDesc, "created_at DESC, id ASC"},
		{bizConsts.SortTitle, bizConsts.OrderAsc, "title ASC, id ASC"},
	}
	for _, c := range cases {
		got := orderClause(&model.TaskListQuery{SortBy: c.field, SortOrder: c.order})
		if got != c.want {
			t.Fatalf("orderClause(%s,%s) = %q, want %q", c.field, c.order, got, c.want)
		}
	}
}

func TestCountFilteredSharesPredicates(t *testing.T) {
	db := newDryRunDB(t)
	f := &model.TaskListQuery{Status: bizConsts.StatusCompleted, Search: "milk"}
	if err := f.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}

	var total int64
	tx := applyTaskFilters(db.Model(&model.Task{}), "owner-2", f, time.Now()).Count(&total)
	if tx.Error != nil {
		t.Fatalf("build count sql: %v", tx.Error)
	}
	sqlText := tx.Statement.SQL.String()

	if !strings.Contains(sqlText, "count(") && !strings.Contains(sqlText, "COUNT(") {
		t.Fatalf("not a count query:\n%s", sqlText)
	}
	for _, frag := range []string{"owner_id = $1", "completed = $", "ILIKE"} {
		if !strings.Contains(sqlText, frag) {
			t.Fatalf("count sql missing %q:\n%s", frag, sqlText)
		}
	}
	// Pagination must not leak into the total.
	if strings.Contains(sqlText, "LIMIT") || strings.Contains(sqlText, "OFFSET") {
		t.Fatalf("count sql must ignore pagination:\n%s", sqlText)
	}
}
