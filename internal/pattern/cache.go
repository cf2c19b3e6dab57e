package pattern

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jusunglee/hangulize/internal/metrics"
)

// Key identifies a compiled matcher. The same pattern text means different
// things under different variable sets.
type Key struct {
	Pattern  string
	Language string
}

// Cache memoizes compiled matchers. Concurrent misses on one key compile
// once. Failed compilations are not stored.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]*Matcher
	group   singleflight.Group
}

func NewCache() *Cache {
	return &Cache{entries: make(map[Key]*Matcher)}
}

// Matcher returns the compiled matcher for src under vars.
func (c *Cache) Matcher(src string, vars Variables) (*Matcher, error) {
	key := Key{Pattern: src}
	if vars != nil {
		key.Language = vars.ID()
	}

	c.mu.RLock()
	m, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		metrics.PatternCacheLookups.WithLabelValues("hit").Inc()
		return m, nil
	}
	metrics.PatternCacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key.Language+"\x00"+key.Pattern, func() (any, error) {
		c.mu.RLock()
		m, ok := c.entries[key]
		c.mu.RUnlock()
		if ok {
			return m, nil
		}
		m, err := Compile(src, vars)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = m
		c.mu.Unlock()
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Matcher), nil
}

// Len returns the number of stored matchers.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
