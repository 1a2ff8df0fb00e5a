package cache

import (
	"context"
	"strings"
	"sync"
	"travel-fare-service/internal/domain"
)

// MemoryGeocodeCache keeps place name -> coordinates for the lifetime of the
// process. It never evicts. Safe for concurrent use.
type MemoryGeocodeCache struct {
	mu sync.RWMutex
	m  map[string]domain.Coordinates
}

func NewMemoryGeocodeCache() *MemoryGeocodeCache {
	return &MemoryGeocodeCache{m: make(map[string]domain.Coordinates)}
}

func (c *MemoryGeocodeCache) GetMany(ctx context.Context, names []string) (map[string]domain.Coordinates, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]domain.Coordinates, len(names))
	for _, n := range uniqueNames(names) {
		if v, ok := c.m[n]; ok {
			out[n] = v
		}
	}
	return out, nil
}

func (c *MemoryGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n, v := range results {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		c.m[n] = v
	}
	return nil
}

// Len is the number of cached names.
func (c *MemoryGeocodeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
