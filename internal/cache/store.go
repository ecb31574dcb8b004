package cache

import (
	"context"
	"sync"
	"time"

	"market-oracle/internal/domain"
)

// Store is the key -> (value, expires_at) table shared by the oracles.
// Put is an upsert where the last write wins. Nothing is ever evicted:
// expired entries stay readable so callers can serve them as stale data.
type Store interface {
	Get(ctx context.Context, key string) (domain.CacheEntry, bool, error)
	Put(ctx context.Context, key string, value []byte, expiresAt time.Time) error
}

// MemoryStore is an in-process Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.CacheEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]domain.CacheEntry)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (domain.CacheEntry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok {
		return domain.CacheEntry{}, false, nil
	}
	e.Value = append([]byte(nil), e.Value...)
	return e, true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, value []byte, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = domain.CacheEntry{
		Key:       key,
		Value:     append([]byte(nil), value...),
		ExpiresAt: expiresAt,
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
