package ratelimit

import (
	"testing"
	"time"
)

func TestUntilNextUTCMidnight(t *testing.T) {
	cases := []struct {
		now  time.Time
		want time.Duration
	}{
		{time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 24 * time.Hour},
		{time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC), time.Minute},
		{time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC), 12 * time.Hour},
	}
	for _, c := range cases {
		if got := untilNextUTCMidnight(c.now); got != c.want {
			t.Fatalf("untilNextUTCMidnight(%v) = %v, want %v", c.now, got, c.want)
		}
	}
}

func TestNewRateLimiterDefaults(t *testing.T) {
	l := NewRateLimiter(0)
	if l.limit != DefaultDailyLimit {
		t.Fatalf("limit = %d, want %d", l.limit, DefaultDailyLimit)
	}
	l = NewRateLimiter(5)
	if l.limit != 5 {
		t.Fatalf("limit = %d, want 5", l.limit)
	}
}
