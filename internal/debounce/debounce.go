// Package debounce runs the last of a burst of scheduled tasks after a quiet period.
//
// Each call to [Debouncer.Schedule] cancels the task scheduled before it: a
// pending timer is stopped, and a task that already started has its context
// cancelled and its [Token] invalidated so its results can be dropped on arrival.
package debounce

import (
	"context"
	"sync"
	"time"
)

// Task is the deferred work. Check tok.Current before publishing results.
type Task func(ctx context.Context, tok Token)

// Debouncer schedules at most one live task at a time.
type Debouncer struct {
	delay time.Duration

	mu         sync.Mutex
	generation uint64
	timer      *time.Timer
	cancel     context.CancelFunc
	stopped    bool
}

// Token identifies one scheduled task.
type Token struct {
	d          *Debouncer
	generation uint64
}

// Current reports whether no newer task was scheduled and the debouncer was not superseded or stopped.
func (t Token) Current() bool {
	if t.d == nil {
		return false
	}
	t.d.mu.Lock()
	defer t.d.mu.Unlock()
	return !t.d.stopped && t.d.generation == t.generation
}

// New creates a [Debouncer] that waits delay before running a task.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces any pending or running task with fn, which runs on its own goroutine after the delay.
// The context handed to fn derives from parent and is cancelled when fn is superseded.
// Returns the token of the new task, or an invalid token after [Debouncer.Stop].
func (d *Debouncer) Schedule(parent context.Context, fn Task) Token {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return Token{}
	}

	d.supersedeLocked()

	ctx, cancel := context.WithCancel(parent)
	tok := Token{d: d, generation: d.generation}
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		if !tok.Current() {
			return
		}
		fn(ctx, tok)
	})
	return tok
}

// Supersede invalidates the pending or running task without scheduling a new one.
func (d *Debouncer) Supersede() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()
}

// Stop supersedes everything and refuses further scheduling.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.supersedeLocked()
	d.stopped = true
}

func (d *Debouncer) supersedeLocked() {
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
