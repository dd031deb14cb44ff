package debounce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncer(t *testing.T) {
	t.Run("last call in a burst wins", func(t *testing.T) {
		d := New(30 * time.Millisecond)
		defer d.Stop()

		var mu sync.Mutex
		var ran []string
		done := make(chan struct{})

		for _, q := range []string{"c", "ch", "cho"} {
			d.Schedule(context.Background(), func(ctx context.Context, tok Token) {
				mu.Lock()
				ran = append(ran, q)
				mu.Unlock()
				close(done)
			})
		}

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("task never ran")
		}
		time.Sleep(60 * time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		require.Equal(t, []string{"cho"}, ran)
	})

	t.Run("running task is cancelled and stale when superseded", func(t *testing.T) {
		req := require.New(t)
		d := New(time.Millisecond)
		defer d.Stop()

		started := make(chan struct{})
		finished := make(chan bool, 1)
		d.Schedule(context.Background(), func(ctx context.Context, tok Token) {
			close(started)
			<-ctx.Done()
			finished <- tok.Current()
		})

		<-started
		d.Schedule(context.Background(), func(context.Context, Token) {})

		select {
		case current := <-finished:
			req.False(current)
		case <-time.After(time.Second):
			t.Fatal("superseded task was not cancelled")
		}
	})

	t.Run("Supersede drops pending work", func(t *testing.T) {
		d := New(20 * time.Millisecond)
		defer d.Stop()

		var calls atomic.Int32
		tok := d.Schedule(context.Background(), func(context.Context, Token) { calls.Add(1) })
		d.Supersede()

		time.Sleep(50 * time.Millisecond)
		require.Zero(t, calls.Load())
		require.False(t, tok.Current())
	})

	t.Run("Stop refuses new work", func(t *testing.T) {
		d := New(time.Millisecond)
		d.Stop()

		var calls atomic.Int32
		tok := d.Schedule(context.Background(), func(context.Context, Token) { calls.Add(1) })

		time.Sleep(20 * time.Millisecond)
		require.Zero(t, calls.Load())
		require.False(t, tok.Current())
	})

	t.Run("parent cancellation reaches the task", func(t *testing.T) {
		d := New(time.Millisecond)
		defer d.Stop()

		parent, cancel := context.WithCancel(context.Background())
		errs := make(chan error, 1)
		d.Schedule(parent, func(ctx context.Context, _ Token) {
			cancel()
			<-ctx.Done()
			errs <- ctx.Err()
		})

		select {
		case err := <-errs:
			require.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("task never observed cancellation")
		}
	})

	t.Run("zero token is never current", func(t *testing.T) {
		require.False(t, Token{}.Current())
	})
}
