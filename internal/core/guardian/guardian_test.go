package guardian

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pawlock/internal/core/countdown"
	"pawlock/internal/core/hold"
	"pawlock/internal/core/keycombo"
	"pawlock/internal/core/model"
	"pawlock/internal/platform"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeTap struct {
	mu         sync.Mutex
	installed  bool
	installErr error
	events     chan model.InputEvent
	installs   int
	teardowns  int
}

func (tap *fakeTap) Install() error {
	tap.mu.Lock()
	defer tap.mu.Unlock()
	if tap.installErr != nil {
		return tap.installErr
	}
	if tap.installed {
		return platform.ErrTapRunning
	}
	tap.installed = true
	tap.installs++
	tap.events = make(chan model.InputEvent, 16)
	return nil
}

func (tap *fakeTap) Events() <-chan model.InputEvent {
	tap.mu.Lock()
	defer tap.mu.Unlock()
	return tap.events
}

func (tap *fakeTap) Teardown() {
	tap.mu.Lock()
	defer tap.mu.Unlock()
	if !tap.installed {
		return
	}
	tap.installed = false
	tap.teardowns++
	close(tap.events)
}

func (tap *fakeTap) Available() (bool, string) { return true, "fake tap" }

func (tap *fakeTap) push(event model.InputEvent) {
	tap.mu.Lock()
	ch := tap.events
	tap.mu.Unlock()
	ch <- event
}

type fakeSleep struct {
	mu       sync.Mutex
	held     bool
	acquires int
	releases int
}

func (sleep *fakeSleep) Acquire(reason string) error {
	sleep.mu.Lock()
	defer sleep.mu.Unlock()
	if !sleep.held {
		sleep.held = true
		sleep.acquires++
	}
	return nil
}

func (sleep *fakeSleep) Release() {
	sleep.mu.Lock()
	defer sleep.mu.Unlock()
	if sleep.held {
		sleep.held = false
		sleep.releases++
	}
}

func (sleep *fakeSleep) Held() bool {
	sleep.mu.Lock()
	defer sleep.mu.Unlock()
	return sleep.held
}

func testConfig() model.ProtectionConfig {
	config := model.DefaultProtectionConfig()
	config.Timer = 90 * time.Second
	return config
}

func testRegion() model.Rect {
	return model.Rect{X: 1000, Y: 20, W: 44, H: 44}
}

func newTestGuardian() (*Guardian, *fakeTap, *fakeSleep) {
	tap := &fakeTap{}
	sleep := &fakeSleep{}
	guardian := New(tap, sleep, Options{
		TickInterval: 5 * time.Millisecond,
		CloseRegion:  func() model.Rect { return testRegion() },
	})
	return guardian, tap, sleep
}

func waitForEvent(t *testing.T, events <-chan Event, eventType EventType) Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case event, ok := <-events:
			require.True(t, ok, "event channel closed while waiting for %s", eventType)
			if event.Type == eventType {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", eventType)
		}
	}
}

func TestSecondStartRejectedWhileActive(t *testing.T) {
	guardian, tap, _ := newTestGuardian()
	defer guardian.Close()

	require.NoError(t, guardian.Start(testConfig()))
	assert.ErrorIs(t, guardian.Start(testConfig()), ErrAlreadyActive)
	assert.Equal(t, 1, tap.installs)

	guardian.Stop()
	assert.Equal(t, StateIdle, guardian.State())
}

func TestStartRejectsInvalidConfig(t *testing.T) {
	guardian, tap, sleep := newTestGuardian()
	defer guardian.Close()

	config := testConfig()
	config.Timer = 30 * time.Second
	err := guardian.Start(config)
	require.Error(t, err)
	var invalid *model.InvalidConfigError
	assert.ErrorAs(t, err, &invalid)
	assert.Equal(t, StateIdle, guardian.State())
	assert.Zero(t, tap.installs)
	assert.Zero(t, sleep.acquires)
}

func TestUnlockChordEndsSession(t *testing.T) {
	guardian, tap, sleep := newTestGuardian()
	defer guardian.Close()
	events := guardian.Subscribe(64)

	require.NoError(t, guardian.Start(testConfig()))
	assert.True(t, sleep.Held())

	// Wrong primary key while modifiers held: no exit.
	tap.push(model.InputEvent{
		Kind: model.KindKeyDown,
		Key:  "I",
		Mods: keycombo.ModCommand | keycombo.ModOption,
		At:   time.Now(),
	})
	// Superset of the configured modifiers: no exit.
	tap.push(model.InputEvent{
		Kind: model.KindKeyDown,
		Key:  "U",
		Mods: keycombo.ModCommand | keycombo.ModOption | keycombo.ModShift,
		At:   time.Now(),
	})
	// The configured chord.
	tap.push(model.InputEvent{
		Kind: model.KindKeyDown,
		Key:  "U",
		Mods: keycombo.ModCommand | keycombo.ModOption,
		At:   time.Now(),
	})

	ended := waitForEvent(t, events, EventSessionEnded)
	assert.Equal(t, ReasonUnlockKey, ended.Reason)
	assert.Equal(t, StateIdle, guardian.State())
	assert.False(t, sleep.Held())
	assert.Equal(t, 1, tap.teardowns)
}

func TestKeyUpNeverUnlocks(t *testing.T) {
	guardian, tap, _ := newTestGuardian()
	defer guardian.Close()

	require.NoError(t, guardian.Start(testConfig()))
	tap.push(model.InputEvent{
		Kind: model.KindKeyUp,
		Key:  "U",
		Mods: keycombo.ModCommand | keycombo.ModOption,
		At:   time.Now(),
	})

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateActive, guardian.State())
	guardian.Stop()
}

func TestPermissionDeniedLeavesNothingBehind(t *testing.T) {
	guardian, tap, sleep := newTestGuardian()
	defer guardian.Close()
	events := guardian.Subscribe(16)
	tap.installErr = platform.ErrPermissionDenied

	err := guardian.Start(testConfig())
	assert.ErrorIs(t, err, platform.ErrPermissionDenied)
	assert.Equal(t, StateIdle, guardian.State())
	assert.False(t, sleep.Held())
	assert.Zero(t, tap.installs)

	failed := waitForEvent(t, events, EventStartFailed)
	assert.Contains(t, failed.Message, "capture point")
}

func TestStopIsSynchronousAndIdempotent(t *testing.T) {
	guardian, tap, sleep := newTestGuardian()
	defer guardian.Close()
	events := guardian.Subscribe(64)

	guardian.Stop() // no-op while idle
	assert.Equal(t, StateIdle, guardian.State())

	require.NoError(t, guardian.Start(testConfig()))
	guardian.Stop()

	// The system is fully unprotected as soon as Stop returns.
	assert.Equal(t, StateIdle, guardian.State())
	assert.Equal(t, 1, tap.teardowns)
	assert.False(t, sleep.Held())
	assert.Equal(t, sleep.acquires, sleep.releases)

	ended := waitForEvent(t, events, EventSessionEnded)
	assert.Equal(t, ReasonForcedStop, ended.Reason)

	guardian.Stop() // second stop is a no-op

	// A fresh session can start once teardown completed.
	require.NoError(t, guardian.Start(testConfig()))
	guardian.Stop()
}

func TestEventStreamClosingEndsSessionAsCaptureLost(t *testing.T) {
	guardian, tap, sleep := newTestGuardian()
	defer guardian.Close()
	events := guardian.Subscribe(64)

	require.NoError(t, guardian.Start(testConfig()))

	// The capture point dying is not an orderly stop; the session must
	// still tear down fully and say why it ended.
	tap.Teardown()

	ended := waitForEvent(t, events, EventSessionEnded)
	assert.Equal(t, ReasonCaptureLost, ended.Reason)
	assert.Equal(t, StateIdle, guardian.State())
	assert.False(t, sleep.Held())
}

func TestCountdownEmitsWarningAndUpdates(t *testing.T) {
	guardian, _, _ := newTestGuardian()
	defer guardian.Close()
	events := guardian.Subscribe(64)

	start := time.Now()
	sess := activateSession(guardian, testConfig(), start)

	assert.False(t, guardian.handleTick(sess, start.Add(10*time.Second)))
	update := waitForEvent(t, events, EventCountdown)
	assert.Equal(t, 80*time.Second, update.Remaining)

	assert.False(t, guardian.handleTick(sess, start.Add(31*time.Second)))
	warning := waitForEvent(t, events, EventCountdownWarning)
	assert.LessOrEqual(t, warning.Remaining, 60*time.Second)
}

func TestCountdownExpiryEndsSession(t *testing.T) {
	guardian, _, sleep := newTestGuardian()
	defer guardian.Close()
	events := guardian.Subscribe(64)

	start := time.Now()
	sess := activateSession(guardian, testConfig(), start)

	assert.True(t, guardian.handleTick(sess, start.Add(91*time.Second)))
	assert.Equal(t, ReasonTimerExpired, sess.reason)

	// The teardown path tolerates a tap that was never installed.
	guardian.finish(sess)
	waitForEvent(t, events, EventSessionEnded)
	assert.Equal(t, StateIdle, guardian.State())
	assert.False(t, sleep.Held())
}

func TestHoldGestureCompletesAfterThreeSeconds(t *testing.T) {
	guardian, _, _ := newTestGuardian()
	defer guardian.Close()

	start := time.Now()
	sess := activateSession(guardian, testConfig(), start)
	region := testRegion()

	guardian.handleEvent(sess, model.InputEvent{
		Kind: model.KindMouseDown, X: region.X + 10, Y: region.Y + 10, At: start,
	})
	assert.False(t, guardian.handleTick(sess, start.Add(time.Second)))
	assert.True(t, guardian.handleTick(sess, start.Add(hold.Required)))
	assert.Equal(t, ReasonHoldComplete, sess.reason)

	guardian.finish(sess)
}

func TestHoldCancelsWhenPointerLeavesRegion(t *testing.T) {
	guardian, _, _ := newTestGuardian()
	defer guardian.Close()

	start := time.Now()
	sess := activateSession(guardian, testConfig(), start)
	region := testRegion()

	guardian.handleEvent(sess, model.InputEvent{
		Kind: model.KindMouseDown, X: region.X + 10, Y: region.Y + 10, At: start,
	})
	// Dragging outside discards progress.
	guardian.handleEvent(sess, model.InputEvent{
		Kind: model.KindMouseDrag, X: region.X - 50, Y: region.Y, At: start.Add(2 * time.Second),
	})
	assert.False(t, guardian.handleTick(sess, start.Add(hold.Required)))
	assert.Equal(t, hold.StateIdle, sess.hold.State())

	// Re-entering with the button still down restarts from zero.
	reenter := start.Add(4 * time.Second)
	guardian.handleEvent(sess, model.InputEvent{
		Kind: model.KindMouseDrag, X: region.X + 5, Y: region.Y + 5, At: reenter,
	})
	assert.False(t, guardian.handleTick(sess, reenter.Add(2990*time.Millisecond)))
	assert.True(t, guardian.handleTick(sess, reenter.Add(hold.Required)))
	assert.Equal(t, ReasonHoldComplete, sess.reason)

	guardian.finish(sess)
}

func TestReleaseBeforeCompletionDiscardsProgress(t *testing.T) {
	guardian, _, _ := newTestGuardian()
	defer guardian.Close()

	start := time.Now()
	sess := activateSession(guardian, testConfig(), start)
	region := testRegion()

	guardian.handleEvent(sess, model.InputEvent{
		Kind: model.KindMouseDown, X: region.X + 10, Y: region.Y + 10, At: start,
	})
	guardian.handleEvent(sess, model.InputEvent{
		Kind: model.KindMouseUp, X: region.X + 10, Y: region.Y + 10, At: start.Add(2990 * time.Millisecond),
	})
	assert.False(t, guardian.handleTick(sess, start.Add(10*time.Second)))
	assert.Equal(t, hold.StateIdle, sess.hold.State())

	guardian.finish(sess)
}

// activateSession wires a session directly onto the guardian so tick and
// event handling can be driven with explicit times instead of the pump.
func activateSession(guardian *Guardian, config model.ProtectionConfig, now time.Time) *session {
	sess := &session{
		config: config,
		hold:   hold.NewTracker(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if config.Timer > 0 {
		sess.countdown = countdown.New(config.Timer, now)
	}
	guardian.mu.Lock()
	guardian.session = sess
	guardian.state = StateActive
	guardian.mu.Unlock()
	return sess
}
