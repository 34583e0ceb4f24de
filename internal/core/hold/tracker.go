// Package hold tracks the press-and-hold confirmation on the overlay's
// close control. A 3-second continuous hold is unlikely to come from a paw.
package hold

import "time"

// Required is the continuous press duration that completes the gesture.
const Required = 3 * time.Second

// State is the tracker's lifecycle position.
type State string

const (
	StateIdle      State = "idle"
	StateHolding   State = "holding"
	StateCompleted State = "completed"
)

// Progress is a snapshot of an in-flight hold.
type Progress struct {
	Elapsed  time.Duration
	Required time.Duration
	Fraction float64
}

// Tracker models Idle -> Holding -> Completed with early release returning
// to Idle. Completion is terminal and fires exactly once.
type Tracker struct {
	state State
	start time.Time
}

// NewTracker returns an idle tracker.
func NewTracker() *Tracker {
	return &Tracker{state: StateIdle}
}

// State returns the current lifecycle state.
func (tracker *Tracker) State() State {
	return tracker.state
}

// Press begins a hold. Progress always restarts from zero.
func (tracker *Tracker) Press(now time.Time) {
	if tracker.state != StateIdle {
		return
	}
	tracker.state = StateHolding
	tracker.start = now
}

// Release before the required duration discards progress.
func (tracker *Tracker) Release(now time.Time) {
	if tracker.state != StateHolding {
		return
	}
	if now.Sub(tracker.start) < Required {
		tracker.state = StateIdle
		tracker.start = time.Time{}
	}
}

// Tick advances the gesture. While holding it returns the current progress;
// the boolean is true on the single tick that completes the gesture.
func (tracker *Tracker) Tick(now time.Time) (Progress, bool) {
	if tracker.state != StateHolding {
		return Progress{Required: Required}, false
	}
	elapsed := now.Sub(tracker.start)
	if elapsed >= Required {
		tracker.state = StateCompleted
		return Progress{Elapsed: elapsed, Required: Required, Fraction: 1}, true
	}
	fraction := float64(elapsed) / float64(Required)
	if fraction < 0 {
		fraction = 0
	}
	return Progress{Elapsed: elapsed, Required: Required, Fraction: fraction}, false
}
