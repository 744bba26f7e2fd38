// AngelaMos | 2026
// cache.go

package locale

import (
	"sync"
)

// Cache memoizes formatters by Options.Key. The zero value is ready to use.
type Cache struct {
	mu         sync.RWMutex
	formatters map[string]*Formatter
}

func NewCache() *Cache {
	return &Cache{formatters: make(map[string]*Formatter)}
}

func (c *Cache) Get(o Options) *Formatter {
	key := o.Key()

	c.mu.RLock()
	f, ok := c.formatters[key]
	c.mu.RUnlock()
	if ok {
		return f
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.formatters[key]; ok {
		return f
	}
	if c.formatters == nil {
		c.formatters = make(map[string]*Formatter)
	}

	f = New(o)
	c.formatters[key] = f
	return f
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.formatters)
}
