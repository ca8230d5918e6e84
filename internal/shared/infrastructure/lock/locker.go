// Package lock serializes mutations on a single aggregate. Feedback
// submissions and bookings on the same progression must not interleave;
// operations on different progressions run independently.
package lock

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrLockHeld is returned when an aggregate lock is already held elsewhere.
var ErrLockHeld = errors.New("aggregate lock already held")

// Locker acquires an exclusive lock for one aggregate at a time.
type Locker interface {
	// Acquire blocks until the lock for the given aggregate is held or the
	// context is cancelled. The returned release function must be called
	// exactly once.
	Acquire(ctx context.Context, id uuid.UUID) (release func(), err error)
}

// KeyedMutex is an in-process Locker keyed by aggregate ID. It is the
// default when no Redis endpoint is configured.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewKeyedMutex creates a new in-process keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[uuid.UUID]*entry)}
}

// Acquire blocks until the per-aggregate lock is available.
func (m *KeyedMutex) Acquire(ctx context.Context, id uuid.UUID) (func(), error) {
	m.mu.Lock()
	e, ok := m.locks[id]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		m.locks[id] = e
	}
	e.refs++
	m.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(id, e, false)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { m.release(id, e, true) })
	}, nil
}

func (m *KeyedMutex) release(id uuid.UUID, e *entry, held bool) {
	if held {
		<-e.ch
	}
	m.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(m.locks, id)
	}
	m.mu.Unlock()
}
