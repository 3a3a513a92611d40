// internal/comparison/manager.go
package comparison

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

const keyPrefix = "comparison:"

// Manager hands out one Store per session. Stores are created lazily on
// first use, loading whatever state the session previously persisted.
type Manager struct {
	mu     sync.Mutex
	stores map[string]*Store
	kv     KeyValue
	log    *logrus.Entry
}

func NewManager(kv KeyValue, log *logrus.Entry) *Manager {
	return &Manager{
		stores: make(map[string]*Store),
		kv:     kv,
		log:    log,
	}
}

// StoreFor returns the session's comparison store, constructing and loading
// it on first access.
func (m *Manager) StoreFor(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[sessionID]; ok {
		return store
	}

	store := NewStore(ctx, m.kv, keyPrefix+sessionID, m.log)
	m.stores[sessionID] = store
	return store
}

// Evict drops a session's in-memory store. Persisted state is untouched; the
// next StoreFor reloads it.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}
