package cache

import (
	"context"
	"path"
	"sync"
	"time"

	"quizforge/internal/domain"
	"quizforge/internal/logger"

	"go.uber.org/zap"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryCacheAdapter is an in-process implementation of domain.Cache. It is
// the fallback when Redis cannot be reached at startup, so a single instance
// keeps serving quizzes with no external dependencies. Entries are evicted
// lazily on access and by a periodic sweep.
type MemoryCacheAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemoryCacheAdapter creates a new instance of MemoryCacheAdapter and
// starts its background sweep.
func NewMemoryCacheAdapter() *MemoryCacheAdapter {
	m := &MemoryCacheAdapter{
		entries: make(map[string]memoryEntry),
	}
	go m.sweep()
	return m
}

// Get implements domain.Cache.
func (m *MemoryCacheAdapter) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return "", domain.ErrCacheMiss
	}
	if entry.expired(time.Now()) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", domain.ErrCacheMiss
	}
	return entry.value, nil
}

// Set implements domain.Cache. A zero expiration stores the entry without
// an expiry.
func (m *MemoryCacheAdapter) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	entry := memoryEntry{value: value}
	if expiration > 0 {
		entry.expiresAt = time.Now().Add(expiration)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

// Delete implements domain.Cache. Deleting an absent key is not an error.
func (m *MemoryCacheAdapter) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// DeleteByPattern implements domain.Cache using glob-style matching, the
// same pattern language the Redis adapter's KEYS scan accepts.
func (m *MemoryCacheAdapter) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.entries {
		matched, err := path.Match(pattern, key)
		if err != nil {
			return err
		}
		if matched {
			delete(m.entries, key)
		}
	}
	return nil
}

// Ping implements domain.Cache. The in-memory store is always healthy.
func (m *MemoryCacheAdapter) Ping(ctx context.Context) error {
	return nil
}

// Len reports the number of live entries. Used by tests and health reporting.
func (m *MemoryCacheAdapter) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryCacheAdapter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		removed := 0

		m.mu.Lock()
		for key, entry := range m.entries {
			if entry.expired(now) {
				delete(m.entries, key)
				removed++
			}
		}
		m.mu.Unlock()

		if removed > 0 {
			logger.Get().Debug("memory cache sweep", zap.Int("removed", removed))
		}
	}
}
