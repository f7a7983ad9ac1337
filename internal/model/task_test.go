package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/apperr"
	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/consts"
)

func TestNormalizeTags(t *testing.T) {
	cases := []struct {
		name string
		in   []string
		want []string
	}{
		{"lowercases and trims", []string{" Work ", "URGENT"}, []string{"work", "urgent"}},
		{"dedupes keeping first seen order", []string{"b", "a", "B", "a"}, []string{"b", "a"}},
		{"drops empty entries", []string{"", "  ", "ok"}, []string{"ok"}},
		{"nil input", nil, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeTags(tc.in)
			if err != nil {
				t.Fatalf("NormalizeTags(%v): %v", tc.in, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestNormalizeTagsLengthBoundCountsRunes(t *testing.T) {
	// 50 个多字节字符: 字节数远超 50, 但字符数在界内。
	wide := strings.Repeat("你", consts.MaxTagLen)
	got, err := NormalizeTags([]string{wide})
	if err != nil {
		t.Fatalf("50-rune tag rejected: %v", err)
	}
	if len(got) != 1 || got[0] != wide {
		t.Fatalf("tag mangled: %v", got)
	}

	_, err = NormalizeTags([]string{strings.Repeat("a", consts.MaxTagLen+1)})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("51-rune tag: got %T (%v), want ValidationError", err, err)
	}
	if ve.Field != "tags" {
		t.Fatalf("field = %q, want tags", ve.Field)
	}
}

func TestTagSetValueAndScan(t *testing.T) {
	v, err := TagSet(nil).Value()
	if err != nil {
		t.Fatalf("nil value: %v", err)
	}
	if v != "[]" {
		t.Fatalf("nil TagSet value = %v, want []", v)
	}

	v, err = TagSet{"work", "home"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if v != `["work","home"]` {
		t.Fatalf("value = %v", v)
	}

	var s TagSet
	if err := s.Scan([]byte(`["a","b"]`)); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if len(s) != 2 || s[0] != "a" || s[1] != "b" {
		t.Fatalf("scanned %v", s)
	}
	if err := s.Scan(`["c"]`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if len(s) != 1 || s[0] != "c" {
		t.Fatalf("scanned %v", s)
	}
	if err := s.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if s != nil {
		t.Fatalf("scan nil should reset, got %v", s)
	}
	if err := s.Scan(42); err == nil {
		t.Fatalf("scan int should fail")
	}
}

func TestTaskCloneIsDeep(t *testing.T) {
	due := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	orig := &Task{
		ID:       "t1",
		OwnerID:  "o1",
		Title:    "original",
		Priority: consts.PriorityHigh,
		Tags:     TagSet{"one", "two"},
		DueDate:  &due,
	}

	cp := orig.Clone()
	cp.Title = "changed"
	cp.Tags[0] = "mutated"
	*cp.DueDate = cp.DueDate.Add(time.Hour)

	if orig.Title != "original" {
		t.Fatalf("title leaked: %q", orig.Title)
	}
	if orig.Tags[0] != "one" {
		t.Fatalf("tags leaked: %v", orig.Tags)
	}
	if !orig.DueDate.Equal(due) {
		t.Fatalf("due date leaked: %v", orig.DueDate)
	}

	var nilTask *Task
	if nilTask.Clone() != nil {
		t.Fatalf("nil clone should be nil")
	}
}

func TestValidPriority(t *testing.T) {
	for _, p := range []consts.Priority{consts.PriorityHigh, consts.PriorityMedium, consts.PriorityLow} {
		if !ValidPriority(p) {
			t.Fatalf("%s should be valid", p)
		}
	}
	for _, p := range []consts.Priority{"", "high", "CRITICAL"} {
		if ValidPriority(p) {
			t.Fatalf("%q should be invalid", p)
		}
	}
}
