package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/saniasajjad/TODO-HACKATHON-2-sub004/internal/model"
)

const (
	DefaultCapacity = 10
	DefaultTTL      = 5 * time.Minute
)

type entry struct {
	key      string
	page     *model.TaskPage
	storedAt time.Time
}

// SearchCache 按 (查询文本, 页码) 缓存搜索结果页。
// 固定容量，按插入顺序淘汰最旧条目（非 LRU），条目超过 TTL 后惰性过期。
// 仅是一层优化：未命中时调用方必须直接查库，缓存永远不是数据源。
type SearchCache struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	entries  map[string]*entry
	order    []string // FIFO 插入顺序，替换会刷新位置
	nowFn    func() time.Time
}

func NewSearchCache(capacity int, ttl time.Duration) *SearchCache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SearchCache{
		capacity: capacity,
		ttl:      ttl,
		entries:  make(map[string]*entry, capacity),
		nowFn:    time.Now,
	}
}

func cacheKey(query string, page int) string {
	return strconv.Itoa(page) + "|" + query
}

// Get returns the cached page for (query, page), or a miss when absent or
// expired. Expired entries are evicted on lookup.
func (c *SearchCache) Get(query string, page int) (*model.TaskPage, bool) {
	key := cacheKey(query, page)
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.nowFn().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return nil, false
	}
	return e.page, true
}

// Put inserts or replaces the entry for (query, page). Replacing refreshes the
// insert order; inserting past capacity evicts the oldest-inserted entry.
func (c *SearchCache) Put(query string, page int, result *model.TaskPage) {
	key := cacheKey(query, page)
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.page = result
		e.storedAt = c.nowFn()
		c.removeFromOrder(key)
		c.order = append(c.order, key)
		return
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = &entry{key: key, page: result, storedAt: c.nowFn()}
	c.order = append(c.order, key)
}

// Len returns the number of resident entries (expired-but-unswept included).
func (c *SearchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *SearchCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

// SetNowFunc 注入测试时钟。
func (c *SearchCache) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.nowFn = fn
	c.mu.Unlock()
}
