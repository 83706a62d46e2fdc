// Package cache is a small byte-oriented TTL cache with an in-process and a
// redis-backed implementation.
package cache

import (
	"context"
	"sync"
	"time"
)

type Cache interface {
	// Get reports ok=false on a miss; err is reserved for backend failures.
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type entry struct {
	val     []byte
	expires time.Time
}

// Memory is a mutex-guarded map. Expired entries are dropped lazily on Get
// and on Set once the map grows past maxEntries.
type Memory struct {
	mu         sync.Mutex
	items      map[string]entry
	now        func() time.Time
	maxEntries int
}

func NewMemory(maxEntries int) *Memory {
	return NewMemoryWithClock(maxEntries, time.Now)
}

func NewMemoryWithClock(maxEntries int, now func() time.Time) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	if now == nil {
		now = time.Now
	}
	return &Memory{items: map[string]entry{}, now: now, maxEntries: maxEntries}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.items, key)
		return nil, false, nil
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if len(m.items) >= m.maxEntries {
		for k, e := range m.items {
			if !e.expires.IsZero() && !now.Before(e.expires) {
				delete(m.items, k)
			}
		}
	}
	if _, exists := m.items[key]; !exists && len(m.items) >= m.maxEntries {
		// still full of live entries: evict the one expiring soonest
		var victim string
		var soonest time.Time
		for k, e := range m.items {
			if victim == "" || (!e.expires.IsZero() && (soonest.IsZero() || e.expires.Before(soonest))) {
				victim, soonest = k, e.expires
			}
		}
		delete(m.items, victim)
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	e := entry{val: cp}
	if ttl > 0 {
		e.expires = now.Add(ttl)
	}
	m.items[key] = e
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
