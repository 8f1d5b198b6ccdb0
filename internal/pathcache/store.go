package pathcache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jonesrussell/north-cloud/philosophy/internal/domain"
)

// Store is the durable backing for a Cache. Save replaces the whole mapping;
// a subsequent Load must never observe a partially written mapping.
type Store interface {
	Load(ctx context.Context) (map[string]domain.Path, error)
	Save(ctx context.Context, paths map[string]domain.Path) error
	Close() error
}

// Pinger is implemented by stores backed by a network service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemoryStore keeps the mapping in process memory. It is the store used by
// tests and by the "memory" backend.
type MemoryStore struct {
	mu    sync.Mutex
	paths map[string]domain.Path
	saves int
}

// NewMemoryStore returns a store pre-populated with seed.
func NewMemoryStore(seed map[string]domain.Path) *MemoryStore {
	return &MemoryStore{paths: clonePaths(seed)}
}

// Load returns a copy of the stored mapping.
func (s *MemoryStore) Load(context.Context) (map[string]domain.Path, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePaths(s.paths), nil
}

// Save replaces the stored mapping.
func (s *MemoryStore) Save(_ context.Context, paths map[string]domain.Path) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paths = clonePaths(paths)
	s.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }

func clonePaths(in map[string]domain.Path) map[string]domain.Path {
	out := make(map[string]domain.Path, len(in))
	for title, path := range in {
		out[title] = path.Clone()
	}
	return out
}

// decodePath parses one stored JSON array of titles. An undecodable value
// yields a nil path, which Cache.Load drops as invalid, so one bad entry
// never discards the rest of the mapping.
func decodePath(raw []byte) domain.Path {
	var path domain.Path
	if err := json.Unmarshal(raw, &path); err != nil {
		return nil
	}
	return path
}
