// Package guard provides exclusive access to a single-owner resource that
// refuses re-entrant acquisition instead of deadlocking.
package guard

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrReentrant is returned when the goroutine that already holds the guard
// tries to acquire it again.
var ErrReentrant = errors.New("guard: re-entrant acquisition")

// Guard serializes access across goroutines. The zero value is ready to use.
type Guard struct {
	mu    sync.Mutex
	owner atomic.Uint64
}

// Acquire blocks until the guard is free and returns its release function.
// Calling Acquire again from the holding goroutine fails fast.
func (g *Guard) Acquire() (release func(), err error) {
	id := goroutineID()
	if g.owner.Load() == id {
		return nil, ErrReentrant
	}
	g.mu.Lock()
	g.owner.Store(id)
	var once sync.Once
	return func() {
		once.Do(func() {
			g.owner.Store(0)
			g.mu.Unlock()
		})
	}, nil
}

// Held reports whether the calling goroutine holds the guard.
func (g *Guard) Held() bool {
	return g.owner.Load() == goroutineID()
}

// goroutineID parses the current goroutine's ID out of its stack header,
// "goroutine 123 [running]:".
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
