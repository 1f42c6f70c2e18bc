// Package timer implements the per-pick countdown as a small state
// machine that only emits signals. It never touches draft state; the
// session loop decides what a tick or expiry means.
package timer

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type state int

const (
	stateIdle state = iota
	stateRunning
	statePaused
	stateExpired
	stateStopped
)

// Callbacks receive timer signals. Both carry the generation the
// timer was started with so consumers can drop stale fires after the
// turn has already advanced.
type Callbacks struct {
	Tick   func(gen, remaining int)
	Expire func(gen int)
}

// TurnTimer counts down one pick on a 1-second cadence. Start begins
// a new generation; Pause/Resume toggle without resetting elapsed
// time; expiry fires exactly once per generation; Stop is idempotent.
type TurnTimer struct {
	clock clockwork.Clock
	cb    Callbacks

	mu      sync.Mutex
	st      state
	gen     int
	limit   int
	elapsed int
	cancel  chan struct{}
}

func New(clock clockwork.Clock, cb Callbacks) *TurnTimer {
	return &TurnTimer{clock: clock, cb: cb, st: stateIdle}
}

// Start arms the countdown for limitSec seconds, superseding any
// generation still running.
func (t *TurnTimer) Start(limitSec int) {
	t.mu.Lock()
	if t.cancel != nil && (t.st == stateRunning || t.st == statePaused) {
		close(t.cancel)
	}
	t.gen++
	t.limit = limitSec
	t.elapsed = 0
	t.st = stateRunning
	cancel := make(chan struct{})
	t.cancel = cancel
	gen := t.gen
	t.mu.Unlock()

	go t.run(gen, cancel)
}

func (t *TurnTimer) run(gen int, cancel chan struct{}) {
	ticker := t.clock.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-ticker.Chan():
			t.mu.Lock()
			if t.gen != gen || t.st == stateStopped || t.st == stateExpired {
				t.mu.Unlock()
				return
			}
			if t.st == statePaused {
				t.mu.Unlock()
				continue
			}
			t.elapsed++
			remaining := t.limit - t.elapsed
			expired := remaining <= 0
			if expired {
				t.st = stateExpired
			}
			t.mu.Unlock()

			if remaining >= 0 && t.cb.Tick != nil {
				t.cb.Tick(gen, remaining)
			}
			if expired {
				if t.cb.Expire != nil {
					t.cb.Expire(gen)
				}
				return
			}
		}
	}
}

// Pause freezes the countdown without resetting elapsed time.
func (t *TurnTimer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st == stateRunning {
		t.st = statePaused
	}
}

// Resume continues a paused countdown.
func (t *TurnTimer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st == statePaused {
		t.st = stateRunning
	}
}

// Stop cancels the cadence. Safe to call twice; a stopped generation
// never fires expiry.
func (t *TurnTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.st == stateRunning || t.st == statePaused {
		close(t.cancel)
		t.st = stateStopped
	}
}

// Expired reports whether the current generation fired its expiry.
// An expired timer cannot be resumed; it must be rearmed with Start.
func (t *TurnTimer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.st == stateExpired
}

// Gen is the current generation, for matching signals to turns.
func (t *TurnTimer) Gen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.gen
}

// Remaining is the seconds left in the current generation.
func (t *TurnTimer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.limit - t.elapsed
}
