package locking

import (
	"context"
	"sync"
)

// KeyedMutex serializes work per location code within a single process.
// Suitable when exactly one service instance handles transaction hooks.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex creates a new in-process location locker
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

// Acquire blocks until the lock for the location is held or ctx is done.
// The returned function releases the lock and must be called exactly once.
func (m *KeyedMutex) Acquire(ctx context.Context, location string) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[location]
	if !ok {
		e = &entry{}
		m.locks[location] = e
	}
	e.refs++
	m.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() { m.release(location, e) }, nil
	case <-ctx.Done():
		// The goroutine will still take the mutex eventually; hand it
		// straight back so the entry can be cleaned up.
		go func() {
			<-acquired
			m.release(location, e)
		}()
		return nil, ctx.Err()
	}
}

func (m *KeyedMutex) release(location string, e *entry) {
	e.mu.Unlock()

	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, location)
	}
	m.mu.Unlock()
}
