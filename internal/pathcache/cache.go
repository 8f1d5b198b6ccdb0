// Package pathcache memoizes discovered article paths keyed by title and
// persists them through a pluggable Store.
package pathcache

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	infralogger "github.com/jonesrussell/north-cloud/philosophy/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

// Cache is the in-memory title → path mapping shared by all traversals of a
// process. It is safe for concurrent use.
type Cache struct {
	store Store
	log   infralogger.Logger

	mu    sync.RWMutex
	paths map[string]domain.Path
	// gen increments on every mutation; saved is the gen last written to the store.
	gen   uint64
	saved uint64

	// saveMu orders store writes so a later snapshot never lands before an earlier one.
	saveMu sync.Mutex
}

// New creates an empty cache backed by store. Call Load before use.
func New(store Store, log infralogger.Logger) *Cache {
	if log == nil {
		log = infralogger.NewNop()
	}
	return &Cache{
		store: store,
		log:   log,
		paths: make(map[string]domain.Path),
	}
}

// Load replaces the in-memory mapping with the store's contents. A missing
// or corrupt store degrades to an empty cache and is only logged. Entries
// that are not valid paths are dropped.
func (c *Cache) Load(ctx context.Context) int {
	loaded, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn("Path cache unreadable, starting cold",
			infralogger.Error(fmt.Errorf("%w: %w", domain.ErrCacheIO, err)),
		)
		loaded = nil
	}

	paths := make(map[string]domain.Path, len(loaded))
	dropped := 0
	for title, path := range loaded {
		if !path.Valid() || path.Head() != title {
			dropped++
			continue
		}
		paths[title] = path
	}
	if dropped > 0 {
		c.log.Warn("Dropped invalid path cache entries", infralogger.Int("dropped", dropped))
	}

	c.mu.Lock()
	c.paths = paths
	c.gen++
	c.saved = c.gen
	c.mu.Unlock()

	c.log.Debug("Path cache loaded", infralogger.Int("entries", len(paths)))
	return len(paths)
}

// Get returns a copy of the path stored under title. Empty paths count as misses.
func (c *Cache) Get(title string) (domain.Path, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	path, ok := c.paths[title]
	if !ok || len(path) == 0 {
		return nil, false
	}
	return path.Clone(), true
}

// Put stores every entry of suffixes in one critical section. Each value
// must be a valid path headed by its key; other entries are rejected.
func (c *Cache) Put(suffixes map[string]domain.Path) int {
	if len(suffixes) == 0 {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := 0
	for title, path := range suffixes {
		if !path.Valid() || path.Head() != title {
			continue
		}
		c.paths[title] = path.Clone()
		stored++
	}
	if stored > 0 {
		c.gen++
	}
	return stored
}

// Flush writes the full mapping to the store if anything changed since the
// last successful write. Failures wrap domain.ErrCacheIO.
func (c *Cache) Flush(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.RLock()
	if c.gen == c.saved {
		c.mu.RUnlock()
		return nil
	}
	gen := c.gen
	snapshot := clonePaths(c.paths)
	c.mu.RUnlock()

	if err := c.store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: save %d entries: %w", domain.ErrCacheIO, len(snapshot), err)
	}

	c.mu.Lock()
	if gen > c.saved {
		c.saved = gen
	}
	c.mu.Unlock()

	c.log.Debug("Path cache flushed", infralogger.Int("entries", len(snapshot)))
	return nil
}

// Clear empties the cache and the store.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.paths = make(map[string]domain.Path)
	c.gen++
	c.mu.Unlock()

	return c.Flush(ctx)
}

// Len returns the number of cached titles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.paths)
}

// Snapshot returns a copy of the mapping.
func (c *Cache) Snapshot() map[string]domain.Path {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clonePaths(c.paths)
}

// Titles returns the cached titles in sorted order.
func (c *Cache) Titles() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Sorted(maps.Keys(c.paths))
}

// Ping checks the store when it is backed by a network service.
func (c *Cache) Ping(ctx context.Context) error {
	if p, ok := c.store.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases the store.
func (c *Cache) Close() error {
	return c.store.Close()
}
