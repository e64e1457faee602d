package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebounceExecutesAfterDelay(t *testing.T) {
	d := NewDebouncer[int]()
	defer d.Dispose()

	ch := d.Debounce(context.Background(), "k", 10*time.Millisecond, func(ctx context.Context) (int, error) {
		return 42, nil
	})

	res := <-ch
	require.NoError(t, res.Err)
	assert.Equal(t, 42, res.Value)
	assert.Equal(t, 0, d.Pending())
}

func TestDebounceLastCallerWins(t *testing.T) {
	d := NewDebouncer[string]()
	defer d.Dispose()
	ctx := context.Background()

	var calls atomic.Int32
	fn := func(v string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) {
			calls.Add(1)
			return v, nil
		}
	}

	first := d.Debounce(ctx, "k", 50*time.Millisecond, fn("first"))
	second := d.Debounce(ctx, "k", 50*time.Millisecond, fn("second"))

	res := <-first
	assert.ErrorIs(t, res.Err, ErrDebounced)

	res = <-second
	require.NoError(t, res.Err)
	assert.Equal(t, "second", res.Value)
	assert.Equal(t, int32(1), calls.Load(), "only the last call executes")
}

func TestDebounceIndependentKeys(t *testing.T) {
	d := NewDebouncer[string]()
	defer d.Dispose()
	ctx := context.Background()

	a := d.Debounce(ctx, "a", 10*time.Millisecond, func(context.Context) (string, error) { return "a", nil })
	b := d.Debounce(ctx, "b", 10*time.Millisecond, func(context.Context) (string, error) { return "b", nil })

	assert.Equal(t, "a", (<-a).Value)
	assert.Equal(t, "b", (<-b).Value)
}

func TestDebounceCancel(t *testing.T) {
	d := NewDebouncer[int]()
	defer d.Dispose()

	ch := d.Debounce(context.Background(), "k", time.Hour, func(context.Context) (int, error) {
		t.Error("cancelled call must not execute")
		return 0, nil
	})

	require.True(t, d.Cancel("k"))
	assert.False(t, d.Cancel("k"), "nothing left to cancel")

	res := <-ch
	assert.ErrorIs(t, res.Err, ErrCancelled)
}

func TestDebounceClear(t *testing.T) {
	d := NewDebouncer[int]()
	defer d.Dispose()
	ctx := context.Background()

	noop := func(context.Context) (int, error) { return 0, nil }
	a := d.Debounce(ctx, "a", time.Hour, noop)
	b := d.Debounce(ctx, "b", time.Hour, noop)

	assert.Equal(t, 2, d.Clear())
	assert.ErrorIs(t, (<-a).Err, ErrCleared)
	assert.ErrorIs(t, (<-b).Err, ErrCleared)
}

func TestDebounceDispose(t *testing.T) {
	d := NewDebouncer[int]()

	pending := d.Debounce(context.Background(), "k", time.Hour, func(context.Context) (int, error) { return 0, nil })
	d.Dispose()
	assert.ErrorIs(t, (<-pending).Err, ErrDisposed)

	after := d.Debounce(context.Background(), "k", time.Millisecond, func(context.Context) (int, error) { return 0, nil })
	assert.ErrorIs(t, (<-after).Err, ErrDisposed)
}

func TestDebouncePropagatesFnError(t *testing.T) {
	d := NewDebouncer[int]()
	defer d.Dispose()

	boom := errors.New("boom")
	ch := d.Debounce(context.Background(), "k", time.Millisecond, func(context.Context) (int, error) {
		return 0, boom
	})

	res := <-ch
	assert.ErrorIs(t, res.Err, boom)
	assert.NotErrorIs(t, res.Err, ErrDebounced, "real failures stay distinguishable")
}
