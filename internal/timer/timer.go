// Package timer implements the rest countdown between sets: a single
// one-second-resolution countdown where starting a new one always cancels
// the previous one.
package timer

import (
	"sync"
	"time"
)

// State is a snapshot of the timer for API consumers.
type State struct {
	Running   bool `json:"running"`
	Remaining int  `json:"remaining"`
	Duration  int  `json:"duration"`
}

// RestTimer counts down from a configured number of seconds and invokes a
// completion callback when it reaches zero. At most one countdown is live at
// a time: Start always supersedes any in-flight run. The callback is
// resolved at fire time, so SetOnComplete may be called while a countdown is
// already running.
type RestTimer struct {
	mu        sync.Mutex
	duration  int // configured default, seconds
	remaining int
	running   bool
	gen       int // bumped on every Start/Stop; stale runs never tick
	done      chan struct{}
	onDone    func()
	interval  time.Duration
}

// New creates an idle timer with the given default duration in seconds.
func New(durationSeconds int) *RestTimer {
	return &RestTimer{
		duration:  durationSeconds,
		remaining: durationSeconds,
		interval:  time.Second,
	}
}

// SetOnComplete replaces the completion callback. The latest callback wins,
// even for a countdown that was started earlier.
func (t *RestTimer) SetOnComplete(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDone = fn
}

// SetDuration changes the configured default duration. A running countdown
// is unaffected; an idle timer reports the new duration as remaining.
func (t *RestTimer) SetDuration(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.duration = seconds
	if !t.running {
		t.remaining = seconds
	}
}

// Start begins a countdown of the given number of seconds, cancelling any
// countdown already in flight. Last call wins; there is no queuing.
func (t *RestTimer) Start(seconds int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	if seconds <= 0 {
		return
	}
	t.running = true
	t.remaining = seconds
	t.done = make(chan struct{})
	go t.run(t.gen, t.done)
}

// Stop cancels any in-flight countdown without firing the callback.
// Stopping an idle timer is a no-op.
func (t *RestTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.remaining = 0
}

// Reset stops the timer and restores the configured duration without
// starting a countdown.
func (t *RestTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.remaining = t.duration
}

// Close tears the timer down. No callback fires after Close returns.
func (t *RestTimer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked()
	t.onDone = nil
	t.remaining = 0
}

// Snapshot reports the current state.
func (t *RestTimer) Snapshot() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return State{Running: t.running, Remaining: t.remaining, Duration: t.duration}
}

// cancelLocked invalidates the current run. Callers hold t.mu.
func (t *RestTimer) cancelLocked() {
	t.gen++
	if t.done != nil {
		close(t.done)
		t.done = nil
	}
	t.running = false
}

func (t *RestTimer) run(gen int, done <-chan struct{}) {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()
	for {
		select {
		case <-done:
			return
		case <-tick.C:
			if !t.tick(gen) {
				return
			}
		}
	}
}

// tick consumes one elapsed second. It returns false once this run is over,
// either because it was superseded or because it reached zero. The
// completion callback is invoked outside the lock, exactly once per run.
func (t *RestTimer) tick(gen int) bool {
	t.mu.Lock()
	if gen != t.gen || !t.running {
		t.mu.Unlock()
		return false
	}
	t.remaining--
	if t.remaining > 0 {
		t.mu.Unlock()
		return true
	}
	t.remaining = 0
	t.running = false
	t.done = nil
	fn := t.onDone
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
	return false
}
