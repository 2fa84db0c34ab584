package cache

import (
	"sync/atomic"
	"time"
)

// LayeredCache checks memory first, then disk, and promotes disk hits
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache

	memoryHits atomic.Int64
	diskHits   atomic.Int64
	misses     atomic.Int64
}

// Stats counts lookups per layer
type Stats struct {
	MemoryHits int64 `json:"memory_hits"`
	DiskHits   int64 `json:"disk_hits"`
	Misses     int64 `json:"misses"`
	Entries    int   `json:"memory_entries"`
}

// NewLayeredCache creates a memory + disk cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get retrieves a value from the cache (checks memory first, then disk)
func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, found := c.memory.Get(key); found {
		c.memoryHits.Add(1)
		return val, true
	}

	if val, found := c.disk.Get(key); found {
		c.diskHits.Add(1)
		_ = c.memory.Set(key, val, 0)
		return val, true
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores a value in both layers. Disk TTL applies on disk; memory
// keeps its own shorter default.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, 0); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(key string) error {
	_ = c.memory.Delete(key)
	return c.disk.Delete(key)
}

// Clear removes all values from both layers
func (c *LayeredCache) Clear() error {
	_ = c.memory.Clear()
	return c.disk.Clear()
}

// Prune drops expired disk entries
func (c *LayeredCache) Prune() (int, error) {
	return c.disk.Prune()
}

// Stats returns the lookup counters
func (c *LayeredCache) Stats() Stats {
	return Stats{
		MemoryHits: c.memoryHits.Load(),
		DiskHits:   c.diskHits.Load(),
		Misses:     c.misses.Load(),
		Entries:    c.memory.Len(),
	}
}
