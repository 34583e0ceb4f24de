package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
	"pawlock/internal/ui/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	ExitKey   string  `yaml:"exit_key"`
	Timer     string  `yaml:"timer"`
	HideTimer bool    `yaml:"hide_timer"`
	Opacity   float64 `yaml:"opacity"`
	Chime     bool    `yaml:"chime"`
	Autostart bool    `yaml:"autostart"`
}

// LoadSettings reads user preferences from YAML.
// If the config file does not exist, default settings are returned.
func LoadSettings(appName string) (preferences.Settings, error) {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return preferences.DefaultSettings(), err
	}
	return LoadSettingsFrom(configPath)
}

// LoadSettingsFrom reads user preferences from an explicit path.
func LoadSettingsFrom(configPath string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML.
func SaveSettings(appName string, settings preferences.Settings) error {
	configPath, err := SettingsPath(appName)
	if err != nil {
		return err
	}
	return SaveSettingsTo(configPath, settings)
}

// SaveSettingsTo writes user preferences to an explicit path.
func SaveSettingsTo(configPath string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		ExitKey:   settings.ExitKey,
		Timer:     settings.Timer,
		HideTimer: settings.HideTimer,
		Opacity:   settings.Opacity,
		Chime:     settings.Chime,
		Autostart: settings.Autostart,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(configPath, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath resolves the settings file location under the user config
// directory.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.ExitKey != "" {
		settings.ExitKey = fileData.ExitKey
	}
	if fileData.Timer != "" {
		settings.Timer = fileData.Timer
	}
	if fileData.Opacity > 0 && fileData.Opacity <= 1 {
		settings.Opacity = fileData.Opacity
	}

	settings.HideTimer = fileData.HideTimer
	settings.Chime = fileData.Chime
	settings.Autostart = fileData.Autostart
}
