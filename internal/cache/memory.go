package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCache is a process-local PatternCache used in tests and when no
// redis address is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]time.Time)}
}

func (m *MemoryCache) LastCalculated(_ context.Context, userID string) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.entries[userID]
	return at, ok
}

func (m *MemoryCache) SetLastCalculated(_ context.Context, userID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = at
	return nil
}
