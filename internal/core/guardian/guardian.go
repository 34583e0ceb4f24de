// Package guardian implements the protection state machine that owns the
// overlay lifecycle, input suppression, the unlock chord, the hold-to-close
// gesture, the optional countdown and the sleep-prevention lease.
package guardian

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"pawlock/internal/core/countdown"
	"pawlock/internal/core/hold"
	"pawlock/internal/core/model"
	"pawlock/internal/platform"
)

// ErrAlreadyActive indicates a session is already running; start requests
// are rejected rather than queued.
var ErrAlreadyActive = errors.New("protection session already active")

const sleepLeaseReason = "PawLock shield active - keeping the display awake"

// Options contains runtime wiring for the Guardian.
type Options struct {
	// TickInterval drives hold and countdown updates. Defaults to 100ms.
	TickInterval time.Duration

	// CloseRegion reports the overlay close control's screen rectangle.
	// Pointer events inside it drive the hold gesture; nil disables the
	// gesture.
	CloseRegion func() model.Rect

	Logger *zap.Logger
}

// session is the live aggregate for one protecting episode. At most one
// exists at a time.
type session struct {
	config     model.ProtectionConfig
	input      <-chan model.InputEvent
	hold       *hold.Tracker
	countdown  *countdown.Timer
	stop       chan struct{}
	stopOnce   sync.Once
	done       chan struct{}
	reason     ExitReason
	buttonDown bool
	inside     bool

	lastCountdownEmit time.Time
}

// Guardian coordinates the capture tap, sleep lease, timers and gesture on
// one serialized timeline: every input event, tick and control call mutates
// session state under a single mutex.
type Guardian struct {
	mu      sync.Mutex
	tap     platform.Tap
	sleep   platform.SleepBlocker
	options Options
	logger  *zap.Logger
	state   State
	session *session
	events  []chan Event
}

// New creates a Guardian around the given capture tap and sleep blocker.
func New(tap platform.Tap, sleep platform.SleepBlocker, options Options) *Guardian {
	if options.TickInterval <= 0 {
		options.TickInterval = 100 * time.Millisecond
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guardian{
		tap:     tap,
		sleep:   sleep,
		options: options,
		logger:  logger,
		state:   StateIdle,
	}
}

// Subscribe registers a new observer channel.
func (guardian *Guardian) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	guardian.mu.Lock()
	guardian.events = append(guardian.events, ch)
	guardian.mu.Unlock()
	return ch
}

// State returns the current lifecycle state.
func (guardian *Guardian) State() State {
	guardian.mu.Lock()
	defer guardian.mu.Unlock()
	return guardian.state
}

// Remaining returns the countdown remaining for the active session, or zero
// when no timer is configured or no session is running.
func (guardian *Guardian) Remaining() time.Duration {
	guardian.mu.Lock()
	defer guardian.mu.Unlock()
	if guardian.session == nil || guardian.session.countdown == nil {
		return 0
	}
	return guardian.session.countdown.Remaining(time.Now())
}

// Start begins a protection session. It acquires the sleep lease and
// installs the capture point before reporting success; on any failure both
// are rolled back and the state returns to Idle with no partial side
// effects. Typed failures: ErrAlreadyActive, platform.ErrPermissionDenied,
// model.InvalidConfigError.
func (guardian *Guardian) Start(config model.ProtectionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	guardian.mu.Lock()
	defer guardian.mu.Unlock()

	if guardian.state != StateIdle {
		return ErrAlreadyActive
	}
	guardian.state = StateStarting
	guardian.emitLocked(Event{Type: EventStateChange, State: StateStarting, At: time.Now()})

	if err := guardian.sleep.Acquire(sleepLeaseReason); err != nil {
		guardian.failStartLocked(fmt.Sprintf("acquire sleep lease: %v", err))
		return fmt.Errorf("acquire sleep lease: %w", err)
	}

	if err := guardian.tap.Install(); err != nil {
		guardian.sleep.Release()
		guardian.failStartLocked(fmt.Sprintf("install capture point: %v", err))
		if errors.Is(err, platform.ErrPermissionDenied) {
			return err
		}
		return fmt.Errorf("install capture point: %w", err)
	}

	now := time.Now()
	sess := &session{
		config: config,
		input:  guardian.tap.Events(),
		hold:   hold.NewTracker(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if config.Timer > 0 {
		sess.countdown = countdown.New(config.Timer, now)
	}
	guardian.session = sess
	guardian.state = StateActive
	guardian.emitLocked(Event{
		Type:      EventStateChange,
		State:     StateActive,
		Remaining: config.Timer,
		At:        now,
	})
	guardian.logger.Info("protection session started",
		zap.String("unlock", config.UnlockCombo.String()),
		zap.Duration("timer", config.Timer))

	go guardian.run(sess)
	return nil
}

// Stop ends the active session. It blocks until the capture point is torn
// down and the sleep lease released, so the system is fully unprotected
// when it returns. No-op when Idle.
func (guardian *Guardian) Stop() {
	guardian.mu.Lock()
	sess := guardian.session
	if sess == nil {
		guardian.state = StateIdle
		guardian.mu.Unlock()
		return
	}
	if guardian.state == StateActive {
		guardian.beginExitLocked(sess, ReasonForcedStop)
	}
	sess.stopOnce.Do(func() { close(sess.stop) })
	guardian.mu.Unlock()

	<-sess.done
}

// Close shuts down observer channels. Call once, after any active session
// has been stopped.
func (guardian *Guardian) Close() {
	guardian.mu.Lock()
	events := guardian.events
	guardian.events = nil
	guardian.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

func (guardian *Guardian) run(sess *session) {
	ticker := time.NewTicker(guardian.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sess.stop:
			guardian.finish(sess)
			return
		case event, ok := <-sess.input:
			if !ok {
				guardian.handleInputClosed(sess)
				guardian.finish(sess)
				return
			}
			if guardian.handleEvent(sess, event) {
				guardian.finish(sess)
				return
			}
		case now := <-ticker.C:
			if guardian.handleTick(sess, now) {
				guardian.finish(sess)
				return
			}
		}
	}
}

// handleInputClosed records why the session is ending when the capture
// point's event stream closes underneath an active session. During an
// orderly stop the exit reason is already set and stays untouched.
func (guardian *Guardian) handleInputClosed(sess *session) {
	guardian.mu.Lock()
	defer guardian.mu.Unlock()

	if guardian.state != StateActive {
		return
	}
	guardian.logger.Warn("capture point event stream closed unexpectedly")
	guardian.beginExitLocked(sess, ReasonCaptureLost)
}

// handleEvent decides the fate of one intercepted event. The tap has
// already suppressed it system-wide; here it can only trigger the unlock
// exit or drive the hold gesture. The return value is true when the event
// ended the session.
func (guardian *Guardian) handleEvent(sess *session, event model.InputEvent) bool {
	guardian.mu.Lock()
	defer guardian.mu.Unlock()

	if guardian.state != StateActive {
		return false
	}

	if event.Kind == model.KindKeyDown && sess.config.UnlockCombo.Matches(event.Mods, event.Key) {
		guardian.logger.Info("unlock combination detected")
		return guardian.beginExitLocked(sess, ReasonUnlockKey)
	}

	if guardian.options.CloseRegion == nil {
		return false
	}
	region := guardian.options.CloseRegion()

	switch event.Kind {
	case model.KindMouseDown:
		if region.Contains(event.X, event.Y) {
			sess.buttonDown = true
			sess.inside = true
			sess.hold.Press(event.At)
		}

	case model.KindMouseDrag, model.KindMouseMove:
		if !sess.buttonDown {
			break
		}
		inside := region.Contains(event.X, event.Y)
		if inside == sess.inside {
			break
		}
		sess.inside = inside
		if inside {
			// Re-entering with the button still down restarts the hold
			// from zero.
			sess.hold.Press(event.At)
		} else {
			sess.hold.Release(event.At)
			guardian.emitLocked(Event{Type: EventHoldProgress, State: StateActive, At: event.At})
		}

	case model.KindMouseUp:
		if sess.buttonDown {
			sess.buttonDown = false
			sess.inside = false
			sess.hold.Release(event.At)
			guardian.emitLocked(Event{Type: EventHoldProgress, State: StateActive, At: event.At})
		}
	}
	return false
}

func (guardian *Guardian) handleTick(sess *session, now time.Time) bool {
	guardian.mu.Lock()
	defer guardian.mu.Unlock()

	if guardian.state != StateActive {
		return false
	}

	progress, holdCompleted := sess.hold.Tick(now)
	if holdCompleted {
		guardian.emitLocked(Event{Type: EventHoldProgress, State: StateActive, Fraction: 1, At: now})
		return guardian.beginExitLocked(sess, ReasonHoldComplete)
	}
	if sess.hold.State() == hold.StateHolding {
		guardian.emitLocked(Event{
			Type:     EventHoldProgress,
			State:    StateActive,
			Fraction: progress.Fraction,
			At:       now,
		})
	}

	if sess.countdown != nil {
		state, warning, completed := sess.countdown.Tick(now)
		if completed {
			return guardian.beginExitLocked(sess, ReasonTimerExpired)
		}
		if warning {
			guardian.emitLocked(Event{
				Type:      EventCountdownWarning,
				State:     StateActive,
				Remaining: state.Remaining,
				At:        now,
			})
		}
		if sess.lastCountdownEmit.IsZero() || now.Sub(sess.lastCountdownEmit) >= time.Second {
			sess.lastCountdownEmit = now
			guardian.emitLocked(Event{
				Type:      EventCountdown,
				State:     StateActive,
				Remaining: state.Remaining,
				At:        now,
			})
		}
	}
	return false
}

func (guardian *Guardian) beginExitLocked(sess *session, reason ExitReason) bool {
	guardian.state = StateExiting
	sess.reason = reason
	guardian.emitLocked(Event{Type: EventStateChange, State: StateExiting, Reason: reason, At: time.Now()})
	return true
}

// finish runs the fixed teardown order: capture point first, then the sleep
// lease, then the session record. Each step tolerates its resource never
// having been acquired, and the end state is always Idle.
func (guardian *Guardian) finish(sess *session) {
	guardian.tap.Teardown()
	guardian.sleep.Release()

	guardian.mu.Lock()
	reason := sess.reason
	guardian.state = StateIdle
	guardian.session = nil
	now := time.Now()
	guardian.emitLocked(Event{Type: EventSessionEnded, State: StateIdle, Reason: reason, At: now})
	guardian.emitLocked(Event{Type: EventStateChange, State: StateIdle, At: now})
	guardian.mu.Unlock()

	guardian.logger.Info("protection session ended", zap.String("reason", string(reason)))
	close(sess.done)
}

func (guardian *Guardian) failStartLocked(message string) {
	guardian.state = StateIdle
	guardian.emitLocked(Event{
		Type:    EventStartFailed,
		State:   StateIdle,
		Message: message,
		At:      time.Now(),
	})
	guardian.logger.Warn("protection start failed", zap.String("cause", message))
}

func (guardian *Guardian) emitLocked(event Event) {
	for _, ch := range guardian.events {
		select {
		case ch <- event:
		default:
		}
	}
}
