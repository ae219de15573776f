package jsbridge

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// ErrPoolClosed is returned by Get after Close.
var ErrPoolClosed = errors.New("jsbridge: pool closed")

// SetupFunc prepares a fresh session before it enters a pool, typically by
// registering host functions and objects.
type SetupFunc func(*Session) error

// Pool is a fixed-size set of pre-warmed sessions. A session is held by one
// caller at a time; a session whose evaluation was interrupted should be
// handed back with Discard rather than Put.
type Pool struct {
	sessions chan *Session
	size     int
	setup    SetupFunc
	opts     []Option
	log      *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool creates size sessions with opts and runs setup on each.
func NewPool(size int, setup SetupFunc, opts ...Option) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("jsbridge: pool size must be positive, got %d", size)
	}
	p := &Pool{
		sessions: make(chan *Session, size),
		size:     size,
		setup:    setup,
		opts:     opts,
		log:      buildOptions(opts).logger,
	}
	for i := 0; i < size; i++ {
		s, err := p.newSession()
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("creating pool session %d: %w", i, err)
		}
		p.sessions <- s
	}
	p.log.Info("session pool started", zap.Int("size", size))
	return p, nil
}

func (p *Pool) newSession() (*Session, error) {
	s, err := New(p.opts...)
	if err != nil {
		return nil, err
	}
	if p.setup != nil {
		if err := p.setup(s); err != nil {
			s.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}
	return s, nil
}

// Size returns the number of sessions the pool was created with.
func (p *Pool) Size() int { return p.size }

// Get acquires a session, blocking until one is free or ctx is done.
func (p *Pool) Get(ctx context.Context) (*Session, error) {
	select {
	case s, ok := <-p.sessions:
		if !ok {
			return nil, ErrPoolClosed
		}
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Put returns a session to the pool after clearing per-use state.
func (p *Pool) Put(s *Session) {
	s.reset()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		s.Close()
		return
	}
	select {
	case p.sessions <- s:
	default:
		s.Close()
	}
}

// Discard closes s and puts a fresh session in its place.
func (p *Pool) Discard(s *Session) error {
	s.Close()
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil
	}
	p.log.Warn("session discarded")
	fresh, err := p.newSession()
	if err != nil {
		p.log.Error("replacing discarded session", zap.Error(err))
		return fmt.Errorf("replacing discarded session: %w", err)
	}
	p.Put(fresh)
	return nil
}

// Run acquires a session, passes it to fn and returns it. A session that
// fn leaves with a context error was interrupted mid-evaluation and is
// discarded.
func (p *Pool) Run(ctx context.Context, fn func(*Session) error) error {
	s, err := p.Get(ctx)
	if err != nil {
		return err
	}
	keep := false
	defer func() {
		if keep {
			p.Put(s)
			return
		}
		_ = p.Discard(s)
	}()
	err = fn(s)
	keep = !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	return err
}

// Close closes every idle session. Sessions still checked out are closed
// when they are returned.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.sessions)
	for s := range p.sessions {
		s.Close()
	}
	p.log.Info("session pool closed")
}
