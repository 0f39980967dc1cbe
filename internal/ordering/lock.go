package ordering

import (
	"sort"
	"sync"
)

// ScopeLock serializes ordering mutations per scope key. SQLite's default
// isolation does not order two read-then-shift transactions touching the
// same scope, so callers hold the scope's lock for the duration of the
// transaction. Locking several keys at once acquires them in sorted order,
// which keeps two cross-scope moves in opposite directions from
// deadlocking.
type ScopeLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewScopeLock() *ScopeLock {
	return &ScopeLock{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutexes for the given keys and returns the matching
// unlock function.
func (l *ScopeLock) Lock(keys ...string) func() {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var held []*sync.Mutex
	for i, key := range sorted {
		if i > 0 && key == sorted[i-1] {
			continue
		}
		held = append(held, l.get(key))
	}
	for _, m := range held {
		m.Lock()
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (l *ScopeLock) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	return m
}
