package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

func page(total int64) *model.TaskPage {
	return &model.TaskPage{Tasks: []*model.Task{}, Total: total}
}

func TestSearchCacheRoundTrip(t *testing.T) {
	c := NewSearchCache(10, time.Minute)

	if _, ok := c.Get("groceries", 1); ok {
		t.Fatalf("expected miss on empty cache")
	}

	c.Put("groceries", 1, page(7))
	got, ok := c.Get("groceries", 1)
	if !ok {
		t.Fatalf("expected hit after Put")
	}
	if got.Total != 7 {
		t.Fatalf("Total = %d, want 7", got.Total)
	}

	// Same query, different page is a distinct key.
	if _, ok := c.Get("groceries", 2); ok {
		t.Fatalf("page 2 should miss, only page 1 cached")
	}
	// Different query, same page too.
	if _, ok := c.Get("grocery", 1); ok {
		t.Fatalf("different query text should miss")
	}
}

func TestSearchCacheTTLExpiry(t *testing.T) {
	c := NewSearchCache(10, 5*time.Minute)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c.SetNowFunc(func() time.Time { return now })

	c.Put("report", 1, page(3))

	now = now.Add(5*time.Minute - time.Second)
	if _, ok := c.Get("report", 1); !ok {
		t.Fatalf("entry should still be live just under the TTL")
	}

	now = now.Add(2 * time.Second)
	if _, ok := c.Get("report", 1); ok {
		t.Fatalf("entry should have expired past the TTL")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be swept on lookup, Len = %d", c.Len())
	}

	// A fresh Put after expiry is a normal insert.
	c.Put("report", 1, page(4))
	got, ok := c.Get("report", 1)
	if !ok || got.Total != 4 {
		t.Fatalf("re-insert after expiry failed, ok=%v got=%+v", ok, got)
	}
}

func TestSearchCacheCapacityEviction(t *testing.T) {
	c := NewSearchCache(10, time.Minute)

	for i := 0; i < 10; i++ {
		c.Put(fmt.Sprintf("q%d", i), 1, page(int64(i)))
	}
	if c.Len() != 10 {
		t.Fatalf("Len = %d, want 10", c.Len())
	}

	// The 11th insert evicts the oldest-inserted entry (q0), nothing else.
	c.Put("q10", 1, page(10))
	if c.Len() != 10 {
		t.Fatalf("Len after eviction = %d, want 10", c.Len())
	}
	if _, ok := c.Get("q0", 1); ok {
		t.Fatalf("q0 should have been evicted")
	}
	for i := 1; i <= 10; i++ {
		if _, ok := c.Get(fmt.Sprintf("q%d", i), 1); !ok {
			t.Fatalf("q%d should still be cached", i)
		}
	}
}

func TestSearchCacheReplaceRefreshesOrder(t *testing.T) {
	c := NewSearchCache(3, time.Minute)

	c.Put("a", 1, page(1))
	c.Put("b", 1, page(2))
	c.Put("c", 1, page(3))

	// Re-putting "a" moves it to the back of the eviction order and
	// replaces its value in place.
	c.Put("a", 1, page(100))
	if got, ok := c.Get("a", 1); !ok || got.Total != 100 {
		t.Fatalf("replace did not take, ok=%v got=%+v", ok, got)
	}
	if c.Len() != 3 {
		t.Fatalf("replace must not grow the cache, Len = %d", c.Len())
	}

	// Next insert evicts "b", the oldest after the refresh.
	c.Put("d", 1, page(4))
	if _, ok := c.Get("b", 1); ok {
		t.Fatalf("b should have been evicted after a was refreshed")
	}
	if _, ok := c.Get("a", 1); !ok {
		t.Fatalf("a should survive, it was refreshed")
	}
	if _, ok := c.Get("c", 1); !ok {
		t.Fatalf("c should survive")
	}
}

func TestSearchCacheDefaults(t *testing.T) {
	c := NewSearchCache(0, 0)
	if c.capacity != DefaultCapacity {
		t.Fatalf("capacity = %d, want %d", c.capacity, DefaultCapacity)
	}
	if c.ttl != DefaultTTL {
		t.Fatalf("ttl = %v, want %v", c.ttl, DefaultTTL)
	}
}
