// Package debounce coalesces bursts of calls into one invocation of the
// underlying function with the most recent value. A submission wins only
// after a quiescence window passes with no newer submission; superseded
// callers are released immediately and told their result is stale.
package debounce

import (
	"context"
	"sync"
	"time"
)

// DefaultDelay matches the pace of interactive typing.
const DefaultDelay = 800 * time.Millisecond

// Debouncer guards one logical input stream. The zero value is not
// usable; construct with New.
type Debouncer[T, R any] struct {
	delay time.Duration
	fn    func(context.Context, T) (R, error)

	mu         sync.Mutex
	superseded chan struct{}
}

func New[T, R any](delay time.Duration, fn func(context.Context, T) (R, error)) *Debouncer[T, R] {
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T, R]{delay: delay, fn: fn}
}

// Submit offers a value. It blocks until the quiescence window elapses,
// then runs the function with this value, unless a newer Submit arrives
// first, in which case it returns immediately with stale=true and the
// function is never invoked for this value. A zero delay disables
// debouncing and invokes the function directly.
func (d *Debouncer[T, R]) Submit(ctx context.Context, value T) (result R, stale bool, err error) {
	if d.delay == 0 {
		result, err = d.fn(ctx, value)
		return result, false, err
	}

	d.mu.Lock()
	if d.superseded != nil {
		close(d.superseded)
	}
	claim := make(chan struct{})
	d.superseded = claim
	d.mu.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-claim:
		return result, true, nil
	case <-ctx.Done():
		d.release(claim)
		return result, false, ctx.Err()
	case <-timer.C:
	}

	// The window may have been lost between the timer firing and this
	// check; the newer submission owns the invocation then.
	d.mu.Lock()
	if d.superseded != claim {
		d.mu.Unlock()
		return result, true, nil
	}
	d.superseded = nil
	d.mu.Unlock()

	result, err = d.fn(ctx, value)
	return result, false, err
}

func (d *Debouncer[T, R]) release(claim chan struct{}) {
	d.mu.Lock()
	if d.superseded == claim {
		d.superseded = nil
	}
	d.mu.Unlock()
}

// Group keys independent debouncers by string, one per session.
type Group[T, R any] struct {
	delay time.Duration
	fn    func(context.Context, T) (R, error)

	mu      sync.Mutex
	members map[string]*Debouncer[T, R]
}

func NewGroup[T, R any](delay time.Duration, fn func(context.Context, T) (R, error)) *Group[T, R] {
	return &Group[T, R]{delay: delay, fn: fn, members: make(map[string]*Debouncer[T, R])}
}

// For returns the debouncer owned by key, creating it on first use.
func (g *Group[T, R]) For(key string) *Debouncer[T, R] {
	g.mu.Lock()
	defer g.mu.Unlock()
	if d, ok := g.members[key]; ok {
		return d
	}
	d := New(g.delay, g.fn)
	g.members[key] = d
	return d
}
