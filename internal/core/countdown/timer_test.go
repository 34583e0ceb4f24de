package countdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWarningFiresExactlyOnce(t *testing.T) {
	start := time.Now()
	timer := New(90*time.Second, start)

	state, warning, completed := timer.Tick(start.Add(10 * time.Second))
	assert.False(t, warning)
	assert.False(t, completed)
	assert.Equal(t, 80*time.Second, state.Remaining)

	// First tick at remaining <= 60s raises the warning.
	state, warning, completed = timer.Tick(start.Add(30 * time.Second))
	assert.True(t, warning)
	assert.False(t, completed)
	assert.True(t, state.Warned)

	// Never again.
	_, warning, _ = timer.Tick(start.Add(31 * time.Second))
	assert.False(t, warning)
	_, warning, _ = timer.Tick(start.Add(80 * time.Second))
	assert.False(t, warning)
}

func TestCompletionFiresExactlyOnce(t *testing.T) {
	start := time.Now()
	timer := New(90*time.Second, start)
	timer.Tick(start.Add(30 * time.Second))

	state, _, completed := timer.Tick(start.Add(90 * time.Second))
	assert.True(t, completed)
	assert.True(t, state.Completed)
	assert.Zero(t, state.Remaining)

	// Further ticks produce no signals.
	state, warning, completed := timer.Tick(start.Add(2 * time.Minute))
	assert.False(t, warning)
	assert.False(t, completed)
	assert.True(t, state.Completed)
}

func TestShortTimerWarnsOnFirstTick(t *testing.T) {
	start := time.Now()
	timer := New(time.Minute, start)

	_, warning, completed := timer.Tick(start.Add(100 * time.Millisecond))
	assert.True(t, warning)
	assert.False(t, completed)
}

func TestOverdueTickCompletesWithoutWarning(t *testing.T) {
	start := time.Now()
	timer := New(90*time.Second, start)

	// A countdown that jumps straight past zero completes, warning skipped.
	state, warning, completed := timer.Tick(start.Add(2 * time.Minute))
	assert.False(t, warning)
	assert.True(t, completed)
	assert.Zero(t, state.Remaining)
}
