package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_SerialisesSameKey(t *testing.T) {
	l := NewLocalLocker()

	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "M1")
			if !assert.NoError(t, err) {
				return
			}
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive.Load())
	assertFree(t, l, "M1")
}

func TestLocalLocker_DifferentKeysIndependent(t *testing.T) {
	l := NewLocalLocker()

	unlockA, err := l.Lock(context.Background(), "A")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, "B")
	require.NoError(t, err)
	unlockB()
}

func TestLocalLocker_ContextCancelWhileWaiting(t *testing.T) {
	l := NewLocalLocker()

	unlock, err := l.Lock(context.Background(), "M1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "M1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	assertFree(t, l, "M1")
}

func assertFree(t *testing.T, l *LocalLocker, key string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err, "key %s should be free", key)
	unlock()
}
