// Package tasks provides debounced execution and cancellable background
// tasks. Supersession is modeled with sentinel errors so callers can
// tell an expected cancellation apart from a real failure.
package tasks

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrDebounced reports that a newer call under the same key
	// superseded this one before its delay elapsed.
	ErrDebounced = errors.New("tasks: debounced by a newer call")

	// ErrCancelled reports an explicit Cancel of the pending call.
	ErrCancelled = errors.New("tasks: cancelled")

	// ErrCleared reports that Clear dropped all pending calls.
	ErrCleared = errors.New("tasks: cleared")

	// ErrDisposed reports use after Dispose.
	ErrDisposed = errors.New("tasks: disposed")
)

// Result delivers the outcome of a debounced call. Exactly one Result
// is sent per Debounce invocation, then the channel is closed.
type Result[T any] struct {
	Value T
	Err   error
}

type pendingCall[T any] struct {
	timer *time.Timer
	ch    chan Result[T]
}

// Debouncer coalesces rapid calls sharing a key: only the latest call
// within the delay window executes, earlier ones resolve with
// ErrDebounced. Last-caller-wins, not queuing. Safe for concurrent use.
type Debouncer[T any] struct {
	mu       sync.Mutex
	pending  map[string]*pendingCall[T]
	disposed bool
}

func NewDebouncer[T any]() *Debouncer[T] {
	return &Debouncer[T]{pending: make(map[string]*pendingCall[T])}
}

// Debounce schedules fn to run after delay unless another call with the
// same key arrives first. The returned channel receives exactly one
// Result: fn's outcome, or ErrDebounced/ErrCancelled/ErrCleared when
// the call never ran. ctx is passed to fn when it fires.
func (d *Debouncer[T]) Debounce(ctx context.Context, key string, delay time.Duration, fn func(context.Context) (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)

	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		ch <- Result[T]{Err: ErrDisposed}
		close(ch)
		return ch
	}

	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
		d.resolve(prev, ErrDebounced)
	}

	p := &pendingCall[T]{ch: ch}
	p.timer = time.AfterFunc(delay, func() {
		d.mu.Lock()
		if d.pending[key] != p {
			// Superseded or cancelled between firing and locking.
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		value, err := fn(ctx)
		p.ch <- Result[T]{Value: value, Err: err}
		close(p.ch)
	})
	d.pending[key] = p
	d.mu.Unlock()

	return ch
}

// Cancel drops the pending call under key, if any. Its channel resolves
// with ErrCancelled. Returns false when nothing was pending.
func (d *Debouncer[T]) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.pending[key]
	if !ok {
		return false
	}
	p.timer.Stop()
	delete(d.pending, key)
	d.resolve(p, ErrCancelled)
	return true
}

// Clear drops every pending call; each resolves with ErrCleared.
// Returns the number of calls dropped.
func (d *Debouncer[T]) Clear() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clearLocked(ErrCleared)
}

// Dispose clears all pending calls and rejects future Debounce calls
// with ErrDisposed.
func (d *Debouncer[T]) Dispose() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearLocked(ErrDisposed)
	d.disposed = true
}

// Pending returns the number of calls currently waiting to fire.
func (d *Debouncer[T]) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer[T]) clearLocked(reason error) int {
	n := len(d.pending)
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
		d.resolve(p, reason)
	}
	return n
}

// resolve delivers a terminal non-execution outcome. Caller holds mu;
// the stopped timer guarantees nobody else writes to the channel.
func (d *Debouncer[T]) resolve(p *pendingCall[T], reason error) {
	p.ch <- Result[T]{Err: reason}
	close(p.ch)
}
