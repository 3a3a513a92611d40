// internal/cache/memory.go
package cache

import (
	"context"
	"sync"

	"github.com/stackpick/stackpick-backend/internal/comparison"
)

// MemoryStore is an in-process key-value store. It backs comparison state
// when Redis is not configured (selections then last only as long as the
// process) and serves as the store in tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, ok := s.data[key]
	if !ok {
		return nil, comparison.ErrNotFound
	}
	copied := make([]byte, len(raw))
	copy(copied, raw)
	return copied, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]byte, len(value))
	copy(copied, value)
	s.data[key] = copied
	return nil
}
