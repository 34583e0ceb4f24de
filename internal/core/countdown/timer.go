// Package countdown implements the optional auto-exit timer for a
// protection session.
package countdown

import "time"

// WarningThreshold is the remaining duration at which the one-shot warning
// fires.
const WarningThreshold = time.Minute

// State is a snapshot of the countdown.
type State struct {
	Remaining time.Duration
	Warned    bool
	Completed bool
}

// Timer counts a fixed duration down from a start instant. Durations are
// computed with time.Time subtraction, which uses the monotonic clock
// reading, so wall-clock jumps do not affect the countdown.
type Timer struct {
	duration  time.Duration
	start     time.Time
	warned    bool
	completed bool
}

// New starts a countdown of the given duration. Range validation happens at
// config construction, not here.
func New(duration time.Duration, now time.Time) *Timer {
	return &Timer{duration: duration, start: now}
}

// Remaining reports the time left without advancing one-shot state.
func (timer *Timer) Remaining(now time.Time) time.Duration {
	if timer.completed {
		return 0
	}
	remaining := timer.duration - now.Sub(timer.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tick advances the countdown. The warning boolean is true exactly once,
// when remaining first drops to the threshold; the completed boolean is true
// exactly once, when remaining reaches zero. Ticks after completion are
// no-ops.
func (timer *Timer) Tick(now time.Time) (State, bool, bool) {
	if timer.completed {
		return State{Remaining: 0, Warned: timer.warned, Completed: true}, false, false
	}

	remaining := timer.duration - now.Sub(timer.start)
	if remaining <= 0 {
		timer.completed = true
		return State{Remaining: 0, Warned: timer.warned, Completed: true}, false, true
	}

	warning := false
	if remaining <= WarningThreshold && !timer.warned {
		timer.warned = true
		warning = true
	}
	return State{Remaining: remaining, Warned: timer.warned}, warning, false
}
