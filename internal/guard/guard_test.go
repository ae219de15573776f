package guard

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReentrantAcquireFails(t *testing.T) {
	var g Guard
	release, err := g.Acquire()
	require.NoError(t, err)
	assert.True(t, g.Held())

	_, err = g.Acquire()
	assert.ErrorIs(t, err, ErrReentrant)

	release()
	release()
	assert.False(t, g.Held())

	release, err = g.Acquire()
	require.NoError(t, err)
	release()
}

func TestOtherGoroutinesWait(t *testing.T) {
	var g Guard
	release, err := g.Acquire()
	require.NoError(t, err)

	var acquired atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r, err := g.Acquire()
		if err == nil {
			acquired.Store(true)
			r()
		}
	}()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, acquired.Load())
	release()
	wg.Wait()
	assert.True(t, acquired.Load())
}

func TestGoroutineIDsDiffer(t *testing.T) {
	main := goroutineID()
	assert.NotZero(t, main)
	ch := make(chan uint64)
	go func() { ch <- goroutineID() }()
	assert.NotEqual(t, main, <-ch)
}
