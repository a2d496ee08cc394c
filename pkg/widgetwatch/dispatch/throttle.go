// Package dispatch drains the event ledger into batches and delivers them
// to a sink on a trailing-edge throttle.
package dispatch

import (
	"sync"
	"time"

	"github.com/randalmurphal/widgetwatch/pkg/widgetwatch/clock"
)

// Default throttle windows.
const (
	DefaultDispatchInterval = 2 * time.Second
	DefaultResizeInterval   = 500 * time.Millisecond
)

// Throttle coalesces triggers into a single trailing call of fn. The first
// Trigger in a quiet period schedules fn one window later; further triggers
// before it fires are absorbed. fn never runs at call time.
//
// fn runs without the throttle's lock held, so it may call Trigger again.
type Throttle struct {
	clock  clock.Scheduler
	window time.Duration
	fn     func()

	mu      sync.Mutex
	pending clock.Timer
	gen     uint64
	stopped bool
}

// NewThrottle creates a throttle running fn at most once per window.
// If window is 0, DefaultDispatchInterval is used.
func NewThrottle(c clock.Scheduler, window time.Duration, fn func()) *Throttle {
	if c == nil {
		c = clock.Real{}
	}
	if window <= 0 {
		window = DefaultDispatchInterval
	}
	return &Throttle{
		clock:  c,
		window: window,
		fn:     fn,
	}
}

// Trigger schedules fn unless a run is already pending. It reports whether
// a new run was scheduled.
func (t *Throttle) Trigger() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped || t.pending != nil {
		return false
	}
	gen := t.gen
	t.pending = t.clock.AfterFunc(t.window, func() { t.fire(gen) })
	return true
}

func (t *Throttle) fire(gen uint64) {
	t.mu.Lock()
	if t.stopped || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.gen++
	t.mu.Unlock()

	t.fn()
}

// Cancel drops a pending run. Later triggers schedule normally.
func (t *Throttle) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
}

// Stop drops a pending run and ignores every later trigger.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.stopped = true
}

func (t *Throttle) cancelLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	// A timer that already started firing sees a stale generation.
	t.gen++
}

// Pending reports whether a run is scheduled.
func (t *Throttle) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending != nil
}

// Window returns the throttle window.
func (t *Throttle) Window() time.Duration {
	return t.window
}
