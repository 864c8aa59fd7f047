package imagecache

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultMemoryBudget is used when Options.MemoryBudget is zero.
const DefaultMemoryBudget = 8 << 20

// Options configure a Cache.
type Options struct {
	// MemoryBudget bounds the memory level in bytes.
	MemoryBudget int

	// DiskDir enables the disk level when non-empty.
	DiskDir string

	// Logger receives disk level failures. A nil Logger discards output.
	Logger *slog.Logger
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries   int
	Size      int
	Budget    int
	Hits      uint64
	Misses    uint64
	DiskHits  uint64
	Evictions uint64
	Disk      bool
}

// Cache is the two-level thumbnail cache. The memory level answers Get on
// the display side; workers use Lookup, which falls back to disk and
// promotes what it finds. Disk failures are logged and treated as misses.
type Cache struct {
	mem    *Memory
	disk   *Disk
	logger *slog.Logger

	closeOnce sync.Once

	hits     atomic.Uint64
	misses   atomic.Uint64
	diskHits atomic.Uint64
}

// New builds a Cache. The disk level is only opened when DiskDir is set.
func New(opts Options) (*Cache, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	budget := opts.MemoryBudget
	if budget == 0 {
		budget = DefaultMemoryBudget
	}
	c := &Cache{mem: NewMemory(budget), logger: logger}
	if dir := strings.TrimSpace(opts.DiskDir); dir != "" {
		disk, err := OpenDisk(dir)
		if err != nil {
			return nil, err
		}
		c.disk = disk
		logger.Info("image disk cache opened", "dir", dir)
	}
	return c, nil
}

// Get consults the memory level only.
func (c *Cache) Get(key string) (Entry, bool) {
	e, ok := c.mem.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return e, ok
}

// Lookup consults memory, then disk. A disk hit is promoted to memory.
func (c *Cache) Lookup(key string) (Entry, bool) {
	if e, ok := c.mem.Get(key); ok {
		return e, true
	}
	if c.disk == nil {
		return Entry{}, false
	}
	img, ok, err := c.disk.Get(key)
	if err != nil {
		c.logger.Warn("image disk cache read failed", "key", key, "error", err)
		return Entry{}, false
	}
	if !ok {
		return Entry{}, false
	}
	c.diskHits.Add(1)
	e := NewEntry(img)
	c.mem.Put(key, e)
	return e, true
}

// Put stores e in memory and writes it through to disk.
func (c *Cache) Put(key string, e Entry) {
	c.mem.Put(key, e)
	if c.disk == nil || e.Image == nil {
		return
	}
	if err := c.disk.Put(key, e.Image); err != nil {
		c.logger.Warn("image disk cache write failed", "key", key, "error", err)
	}
}

// Remove drops key from both levels.
func (c *Cache) Remove(key string) {
	c.mem.Remove(key)
	if c.disk == nil {
		return
	}
	if err := c.disk.Delete(key); err != nil {
		c.logger.Warn("image disk cache delete failed", "key", key, "error", err)
	}
}

// Clear empties both levels.
func (c *Cache) Clear() {
	c.mem.Clear()
	if c.disk == nil {
		return
	}
	if err := c.disk.Clear(); err != nil {
		c.logger.Warn("image disk cache clear failed", "error", err)
	}
}

// Pin protects key in the memory level from eviction.
func (c *Cache) Pin(key string) { c.mem.Pin(key) }

// Unpin releases a pin taken with Pin.
func (c *Cache) Unpin(key string) { c.mem.Unpin(key) }

// Stats reports cache counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:   c.mem.Len(),
		Size:      c.mem.Size(),
		Budget:    c.mem.Budget(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		DiskHits:  c.diskHits.Load(),
		Evictions: c.mem.Evictions(),
		Disk:      c.disk != nil,
	}
}

// Close closes the disk level, if any. Call it after every worker using
// the cache has stopped.
func (c *Cache) Close() error {
	if c.disk == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		err = c.disk.Close()
	})
	return err
}
