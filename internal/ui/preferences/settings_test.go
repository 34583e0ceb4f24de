package preferences

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawlock/internal/core/model"
)

func TestDefaultSettingsConvert(t *testing.T) {
	config, err := DefaultSettings().ProtectionConfig()
	require.NoError(t, err)

	assert.True(t, config.UnlockCombo.Matches(model.DefaultUnlockCombo.Mods, model.DefaultUnlockCombo.Key))
	assert.Zero(t, config.Timer)
	assert.Equal(t, model.DefaultOpacity, config.Opacity)
	assert.True(t, config.Chime)
}

func TestProtectionConfigParsesFields(t *testing.T) {
	settings := DefaultSettings()
	settings.ExitKey = "ctrl+shift+escape"
	settings.Timer = "1h30m"
	settings.HideTimer = true
	settings.Opacity = 0.8

	config, err := settings.ProtectionConfig()
	require.NoError(t, err)

	assert.Equal(t, "Ctrl+Shift+Escape", config.UnlockCombo.String())
	assert.Equal(t, 90*time.Minute, config.Timer)
	assert.True(t, config.HideTimer)
	assert.Equal(t, 0.8, config.Opacity)
}

func TestProtectionConfigBadExitKey(t *testing.T) {
	settings := DefaultSettings()
	settings.ExitKey = "cmd+nosuchkey"

	_, err := settings.ProtectionConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit key")
}

func TestProtectionConfigBadTimer(t *testing.T) {
	settings := DefaultSettings()
	settings.Timer = "ninety minutes"

	_, err := settings.ProtectionConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timer")
}

func TestProtectionConfigTimerOutOfRange(t *testing.T) {
	// "0m" is an explicit zero, not the "no auto-exit" empty value, so it
	// must fail like any other out-of-range duration.
	for _, timer := range []string{"48h", "0m"} {
		settings := DefaultSettings()
		settings.Timer = timer

		_, err := settings.ProtectionConfig()
		require.Error(t, err, timer)

		var invalid *model.InvalidConfigError
		assert.ErrorAs(t, err, &invalid, timer)
	}
}

func TestProtectionConfigOpacityOutOfRange(t *testing.T) {
	settings := DefaultSettings()
	settings.Opacity = 1.5

	_, err := settings.ProtectionConfig()
	require.Error(t, err)

	var invalid *model.InvalidConfigError
	assert.ErrorAs(t, err, &invalid)
}
