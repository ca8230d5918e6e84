package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_AcquireRelease(t *testing.T) {
	m := NewKeyedMutex()
	id := uuid.New()

	release, err := m.Acquire(context.Background(), id)
	require.NoError(t, err)
	release()

	// Lock is reusable after release.
	release, err = m.Acquire(context.Background(), id)
	require.NoError(t, err)
	release()

	// Double release is a no-op.
	release()

	m.mu.Lock()
	assert.Empty(t, m.locks)
	m.mu.Unlock()
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()
	id := uuid.New()

	const workers = 8
	var (
		wg      sync.WaitGroup
		counter int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := m.Acquire(context.Background(), id)
			if err != nil {
				return
			}
			defer release()
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	// Lost updates would leave counter short of the worker count.
	assert.Equal(t, workers, counter)
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	m := NewKeyedMutex()

	releaseA, err := m.Acquire(context.Background(), uuid.New())
	require.NoError(t, err)
	defer releaseA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	releaseB, err := m.Acquire(ctx, uuid.New())
	require.NoError(t, err)
	releaseB()
}

func TestKeyedMutex_CancelledWhileBlocked(t *testing.T) {
	m := NewKeyedMutex()
	id := uuid.New()

	release, err := m.Acquire(context.Background(), id)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = m.Acquire(ctx, id)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	release()

	// A failed acquisition must not leak its refcount.
	m.mu.Lock()
	assert.Empty(t, m.locks)
	m.mu.Unlock()
}
