// Package cache keeps rendered pages in memory for a bounded time.
package cache

import (
	"time"

	"github.com/siahsang/yatube/internal/utils/collectionutils"
)

type entry struct {
	body      []byte
	expiresAt time.Time
}

// DefaultMaxEntries is used when NewPageCache gets a non-positive bound.
const DefaultMaxEntries = 300

type PageCache struct {
	entries    *collectionutils.SafeMap[string, entry]
	maxEntries int
	now        func() time.Time
}

func NewPageCache(maxEntries int) *PageCache {
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &PageCache{
		entries:    collectionutils.New[string, entry](),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *PageCache) Get(key string) ([]byte, bool) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, false
	}
	if !c.now().Before(e.expiresAt) {
		c.entries.Delete(key)
		return nil, false
	}
	return e.body, true
}

func (c *PageCache) Set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if c.entries.Len() >= c.maxEntries {
		c.cull()
	}
	c.entries.Store(key, entry{body: body, expiresAt: c.now().Add(ttl)})
}

// GetOrRender returns the cached body for key, or calls render and stores its
// result for ttl. The boolean reports a cache hit. Render errors are not cached.
func (c *PageCache) GetOrRender(key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, bool, error) {
	if body, ok := c.Get(key); ok {
		return body, true, nil
	}

	body, err := render()
	if err != nil {
		return nil, false, err
	}
	c.Set(key, body, ttl)

	return body, false, nil
}

// cull drops expired entries. When the cache is still full a third of the
// remaining entries go as well.
func (c *PageCache) cull() {
	now := c.now()
	c.entries.DeleteFunc(func(_ string, e entry) bool {
		return !now.Before(e.expiresAt)
	})

	size := c.entries.Len()
	if size < c.maxEntries {
		return
	}
	target := max(size/3, 1)
	removed := 0
	c.entries.DeleteFunc(func(string, entry) bool {
		if removed >= target {
			return false
		}
		removed++
		return true
	})
}

func (c *PageCache) Invalidate(key string) {
	c.entries.Delete(key)
}

func (c *PageCache) InvalidateAll() {
	c.entries.Clear()
}

func (c *PageCache) Len() int {
	return c.entries.Len()
}
