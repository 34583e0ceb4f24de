package hold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHoldCompletesAtRequiredDuration(t *testing.T) {
	start := time.Now()
	tracker := NewTracker()
	tracker.Press(start)

	progress, completed := tracker.Tick(start.Add(1500 * time.Millisecond))
	assert.False(t, completed)
	assert.InDelta(t, 0.5, progress.Fraction, 0.01)

	progress, completed = tracker.Tick(start.Add(Required))
	assert.True(t, completed)
	assert.Equal(t, 1.0, progress.Fraction)
	assert.Equal(t, StateCompleted, tracker.State())
}

func TestReleaseJustBeforeCompletionNeverFires(t *testing.T) {
	start := time.Now()
	tracker := NewTracker()
	tracker.Press(start)

	tracker.Release(start.Add(2990 * time.Millisecond))
	assert.Equal(t, StateIdle, tracker.State())

	_, completed := tracker.Tick(start.Add(4 * time.Second))
	assert.False(t, completed)
}

func TestRePressResetsProgressToZero(t *testing.T) {
	start := time.Now()
	tracker := NewTracker()
	tracker.Press(start)
	tracker.Release(start.Add(2990 * time.Millisecond))

	resume := start.Add(3 * time.Second)
	tracker.Press(resume)
	progress, completed := tracker.Tick(resume.Add(100 * time.Millisecond))
	assert.False(t, completed)
	assert.InDelta(t, 0.033, progress.Fraction, 0.01)
}

func TestCompletionIsOneShot(t *testing.T) {
	start := time.Now()
	tracker := NewTracker()
	tracker.Press(start)

	_, completed := tracker.Tick(start.Add(Required))
	assert.True(t, completed)

	_, completed = tracker.Tick(start.Add(Required + time.Second))
	assert.False(t, completed)

	// Press and release after completion are no-ops.
	tracker.Press(start.Add(5 * time.Second))
	tracker.Release(start.Add(5 * time.Second))
	assert.Equal(t, StateCompleted, tracker.State())
}

func TestTickWhileIdleReportsNoProgress(t *testing.T) {
	tracker := NewTracker()
	progress, completed := tracker.Tick(time.Now())
	assert.False(t, completed)
	assert.Zero(t, progress.Fraction)
	assert.Equal(t, Required, progress.Required)
}
