package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// memoryStore is the degraded-mode map. Expiry is lazy: expired entries
// are dropped when read or when a write needs room.
type memoryStore struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
}

func newMemoryStore(maxEntries int) *memoryStore {
	return &memoryStore{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
	}
}

func (m *memoryStore) set(key string, value []byte, ttl time.Duration) {
	copied := make([]byte, len(value))
	copy(copied, value)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.sweepLocked()
		if len(m.entries) >= m.maxEntries {
			// Still full after dropping expired entries: evict one entry
			// so the newest challenge always has room.
			for k := range m.entries {
				delete(m.entries, k)
				break
			}
		}
	}

	m.entries[key] = memoryEntry{
		value:     copied,
		expiresAt: time.Now().Add(ttl),
	}
}

func (m *memoryStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false
	}

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, true
}

func (m *memoryStore) mutate(key string, fn func(value []byte, ok bool) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if ok && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		ok = false
	}

	var value []byte
	if ok {
		value = make([]byte, len(entry.value))
		copy(value, entry.value)
	}

	if fn(value, ok) {
		delete(m.entries, key)
	}
}

func (m *memoryStore) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

func (m *memoryStore) sweepLocked() {
	now := time.Now()
	for k, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, k)
		}
	}
}
