package preferences

import (
	"fmt"

	"pawlock/internal/core/keycombo"
	"pawlock/internal/core/model"
)

// Settings defines editable user preferences. Textual fields are parsed
// into a ProtectionConfig when a session starts.
type Settings struct {
	ExitKey   string
	Timer     string // empty means no auto-exit
	HideTimer bool
	Opacity   float64
	Chime     bool
	Autostart bool
}

// DefaultSettings returns default settings for PawLock.
func DefaultSettings() Settings {
	return Settings{
		ExitKey: model.DefaultUnlockCombo.String(),
		Opacity: model.DefaultOpacity,
		Chime:   true,
	}
}

// ProtectionConfig converts settings to a validated ProtectionConfig.
func (settings Settings) ProtectionConfig() (model.ProtectionConfig, error) {
	config := model.DefaultProtectionConfig()

	if settings.ExitKey != "" {
		combo, err := keycombo.Parse(settings.ExitKey)
		if err != nil {
			return model.ProtectionConfig{}, fmt.Errorf("exit key: %w", err)
		}
		config.UnlockCombo = combo
	}
	if settings.Timer != "" {
		timer, err := model.ParseTimer(settings.Timer)
		if err != nil {
			return model.ProtectionConfig{}, fmt.Errorf("timer: %w", err)
		}
		config.Timer = timer
	}
	config.HideTimer = settings.HideTimer
	config.Opacity = settings.Opacity
	config.Chime = settings.Chime

	if err := config.Validate(); err != nil {
		return model.ProtectionConfig{}, err
	}
	return config, nil
}
