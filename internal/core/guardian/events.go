package guardian

import "time"

// State represents the protection lifecycle position.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateActive   State = "active"
	StateExiting  State = "exiting"
)

// ExitReason says why a protection session ended.
type ExitReason string

const (
	ReasonUnlockKey    ExitReason = "unlock_key"
	ReasonHoldComplete ExitReason = "hold_complete"
	ReasonTimerExpired ExitReason = "timer_expired"
	ReasonForcedStop   ExitReason = "forced_stop"
	// ReasonCaptureLost means the capture point's event stream closed
	// without a stop request, so protection could no longer be guaranteed.
	ReasonCaptureLost ExitReason = "capture_lost"
)

// EventType defines the type of guardian event.
type EventType string

const (
	EventStateChange      EventType = "state_change"
	EventHoldProgress     EventType = "hold_progress"
	EventCountdown        EventType = "countdown"
	EventCountdownWarning EventType = "countdown_warning"
	EventStartFailed      EventType = "start_failed"
	EventSessionEnded     EventType = "session_ended"
)

// Event represents a guardian update for observers.
type Event struct {
	Type      EventType
	State     State
	Reason    ExitReason
	Remaining time.Duration
	Fraction  float64
	Message   string
	At        time.Time
}
