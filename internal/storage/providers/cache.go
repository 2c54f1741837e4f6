package providers

import (
	"sort"
	"sync"

	"doctemplates/internal/domains"

	"github.com/google/uuid"
)

// Cache holds every template known to the process.
type Cache interface {
	List() []*domains.Template
	Add(template *domains.Template)
	Get(id uuid.UUID) (*domains.Template, bool)
}

// MemoryCache is created once at startup and shared by every provider.
type MemoryCache struct {
	mu        sync.RWMutex
	templates map[uuid.UUID]*domains.Template
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{templates: make(map[uuid.UUID]*domains.Template)}
}

// List returns a snapshot ordered by creation time, oldest first.
func (c *MemoryCache) List() []*domains.Template {
	c.mu.RLock()
	out := make([]*domains.Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	c.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].CreatedAt(), out[j].CreatedAt()
		if ci.Equal(cj) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return ci.Before(cj)
	})
	return out
}

// Add stores template under its id, replacing any previous entry.
func (c *MemoryCache) Add(template *domains.Template) {
	c.mu.Lock()
	c.templates[template.ID()] = template
	c.mu.Unlock()
}

func (c *MemoryCache) Get(id uuid.UUID) (*domains.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	return t, ok
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}
