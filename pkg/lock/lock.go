// Package lock provides per-key mutual exclusion for the patient
// reconciliation path. Reconciliation is check-then-act against the store, so
// two concurrent submissions for a brand-new CNIC could both observe "no
// existing rows" and both insert; serializing on the CNIC closes that race.
package lock

import (
	"context"
	"sync"
)

// Locker serializes work per key. Unlock must be called with the value
// returned by Lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// KeyedMutex is the in-process fallback: correct within a single instance
// only. Deployments running more than one replica should use the Redis
// locker.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

func (m *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[key]
	if !ok {
		e = &entry{}
		m.locks[key] = e
	}
	e.refs++
	m.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()
		m.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(m.locks, key)
		}
		m.mu.Unlock()
	}, nil
}
