package server

import (
	"sync"
	"time"

	"github.com/mj1618/dump-hierarchy/internal/model"
	"github.com/mj1618/dump-hierarchy/internal/platform"
)

// cacheEntry holds one hierarchy snapshot with its timestamp.
type cacheEntry struct {
	roots     []model.Node
	timestamp time.Time
}

// DumpCache provides a TTL-based cache for hierarchy dumps, one entry per
// compression mode.
type DumpCache struct {
	mu      sync.Mutex
	entries map[bool]cacheEntry
	gen     uint64 // bumped by InvalidateAll
	ttl     time.Duration
	now     func() time.Time
}

// NewDumpCache creates a new cache. A ttl of 0 disables caching.
func NewDumpCache(ttl time.Duration) *DumpCache {
	return &DumpCache{
		entries: make(map[bool]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Dump returns the cached roots if within TTL, otherwise dumps fresh.
// Callers must not modify the returned nodes.
func (c *DumpCache) Dump(tree platform.UITree, compressed bool) ([]model.Node, error) {
	if c.ttl == 0 {
		return tree.Dump(compressed)
	}

	c.mu.Lock()
	if entry, ok := c.entries[compressed]; ok && c.now().Sub(entry.timestamp) < c.ttl {
		roots := entry.roots
		c.mu.Unlock()
		return roots, nil
	}
	gen := c.gen
	c.mu.Unlock()

	roots, err := tree.Dump(compressed)
	if err != nil {
		return nil, err
	}

	// A dump that raced an invalidation may predate it; return it but do
	// not cache it.
	c.mu.Lock()
	if c.gen == gen {
		c.entries[compressed] = cacheEntry{roots: roots, timestamp: c.now()}
	}
	c.mu.Unlock()

	return roots, nil
}

// InvalidateAll clears the entire cache.
func (c *DumpCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[bool]cacheEntry)
	c.gen++
}
