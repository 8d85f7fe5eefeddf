package store

import (
	"context"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) live(now time.Time) bool {
	return now.Before(e.expiresAt)
}

// Memory implements Store with an in-process map. Expired entries are
// reaped lazily on access, so TTLs behave like the Redis backend without
// a sweeper goroutine. Per-key atomicity comes from the map's Compute
// primitive, which mirrors the single-round-trip scripts of the remote
// backends.
type Memory struct {
	entries *xsync.MapOf[string, memoryEntry]
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: xsync.NewMapOf[string, memoryEntry]()}
}

// TrySet sets key=value with expiry ttl only if the key is absent or expired.
func (m *Memory) TrySet(_ context.Context, key, value string, ttl time.Duration) (bool, error) {
	now := time.Now()
	var set bool
	m.entries.Compute(key, func(old memoryEntry, loaded bool) (memoryEntry, bool) {
		if loaded && old.live(now) {
			return old, false
		}
		set = true
		return memoryEntry{value: value, expiresAt: now.Add(ttl)}, false
	})
	return set, nil
}

// CompareDelete deletes key iff it is live and holds expected.
func (m *Memory) CompareDelete(_ context.Context, key, expected string) (bool, error) {
	now := time.Now()
	var deleted bool
	m.entries.Compute(key, func(old memoryEntry, loaded bool) (memoryEntry, bool) {
		if !loaded || !old.live(now) {
			return old, true
		}
		if old.value != expected {
			return old, false
		}
		deleted = true
		return memoryEntry{}, true
	})
	return deleted, nil
}

// CompareExpire resets key's expiry to ttl iff it is live and holds expected.
func (m *Memory) CompareExpire(_ context.Context, key, expected string, ttl time.Duration) (bool, error) {
	now := time.Now()
	var reset bool
	m.entries.Compute(key, func(old memoryEntry, loaded bool) (memoryEntry, bool) {
		if !loaded || !old.live(now) {
			return old, true
		}
		if old.value != expected {
			return old, false
		}
		reset = true
		return memoryEntry{value: old.value, expiresAt: now.Add(ttl)}, false
	})
	return reset, nil
}

// Get returns the current value of key, with ok reporting whether the key
// exists and has not expired.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	entry, ok := m.entries.Load(key)
	if !ok || !entry.live(time.Now()) {
		return "", false, nil
	}
	return entry.value, true, nil
}
