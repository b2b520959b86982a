// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package cache

import "sync"

// Memo is a bounded memoization table keyed by content fingerprint. When the
// entry count exceeds the capacity the oldest entry is evicted. The lock is
// held across the compute callback, so within one process a given key is
// computed at most once even under concurrent callers.
type Memo struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]string
	order    []string // insertion order, oldest first
}

// NewMemo creates a memo table holding at most capacity entries.
func NewMemo(capacity int) *Memo {
	if capacity <= 0 {
		capacity = 1
	}
	return &Memo{
		capacity: capacity,
		entries:  make(map[string]string, capacity),
	}
}

// GetOrCompute returns the cached value for key, invoking compute only on a
// miss. A failed compute is not cached.
func (m *Memo) GetOrCompute(key string, compute func() (string, error)) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if value, ok := m.entries[key]; ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return "", err
	}

	m.entries[key] = value
	m.order = append(m.order, key)

	for len(m.entries) > m.capacity {
		oldest := m.order[0]
		m.order = m.order[1:]
		delete(m.entries, oldest)
	}

	return value, nil
}

// Get returns the cached value for key without computing.
func (m *Memo) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	return value, ok
}

// Len returns the current entry count.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
