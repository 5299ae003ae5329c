package repolock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithLockSerializesConcurrentWriters(t *testing.T) {
	dir := t.TempDir()

	var active int32
	var maxActive int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithLock(dir, func() error {
				n := atomic.AddInt32(&active, 1)
				for {
					old := atomic.LoadInt32(&maxActive)
					if n <= old || atomic.CompareAndSwapInt32(&maxActive, old, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&active, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxActive, "at most one writer should hold the lock at a time")
}

func TestLockSurvivesAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	l1 := New(dir)
	require.NoError(t, l1.Acquire())
	require.NoError(t, l1.Release())

	l2 := New(dir)
	require.NoError(t, l2.Acquire())
	require.NoError(t, l2.Release())
}
