package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawlock/internal/ui/preferences"
)

func TestMergeSettingsKeepsFileValuesWhenFlagsUnset(t *testing.T) {
	settings := preferences.DefaultSettings()
	settings.Timer = "2h"
	settings.Opacity = 0.5

	merged := mergeSettings(rootCmd, settings)

	assert.Equal(t, "2h", merged.Timer)
	assert.Equal(t, 0.5, merged.Opacity)
}

func TestMergeSettingsAppliesChangedFlags(t *testing.T) {
	require.NoError(t, rootCmd.Flags().Set("exit-key", "ctrl+shift+l"))
	require.NoError(t, rootCmd.Flags().Set("timer", "45m"))
	defer func() {
		flags = rootFlags{}
	}()

	merged := mergeSettings(rootCmd, preferences.DefaultSettings())

	assert.Equal(t, "ctrl+shift+l", merged.ExitKey)
	assert.Equal(t, "45m", merged.Timer)
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "00:30", formatRemaining(30*time.Second))
	assert.Equal(t, "29:05", formatRemaining(29*time.Minute+5*time.Second))
	assert.Equal(t, "1:00:00", formatRemaining(time.Hour))
	assert.Equal(t, "00:00", formatRemaining(-time.Second))
}
