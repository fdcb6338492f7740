package engine

import (
	"sync"
	"time"
)

// timer is a single-shot, disarmable timeout timer. Disarm is safe to race
// against the timer's own firing: only one of "fire" or "disarm" ever takes
// effect, so double-fire is impossible.
type timer struct {
	mu    sync.Mutex
	t     *time.Timer
	fired bool
}

// newTimer arms a timer that invokes fn after d elapses. If d is not
// positive, newTimer returns nil and fn is never armed.
func newTimer(d time.Duration, fn func()) *timer {
	if d <= 0 {
		return nil
	}
	tm := &timer{}
	tm.t = time.AfterFunc(d, func() {
		tm.mu.Lock()
		if tm.fired {
			tm.mu.Unlock()
			return
		}
		tm.fired = true
		tm.mu.Unlock()
		fn()
	})
	return tm
}

// disarm prevents the timer from firing if it has not already done so. It
// returns true if it won the race (the timer will now never fire).
func (tm *timer) disarm() bool {
	if tm == nil {
		return false
	}
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if tm.fired {
		return false
	}
	tm.fired = true
	tm.t.Stop()
	return true
}
