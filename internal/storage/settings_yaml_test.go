package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawlock/internal/ui/preferences"
)

func TestLoadSettingsFromMissingFileReturnsDefaults(t *testing.T) {
	settings, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings(), settings)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pawlock", "settings.yaml")

	saved := preferences.Settings{
		ExitKey:   "Ctrl+Shift+Escape",
		Timer:     "1h30m",
		HideTimer: true,
		Opacity:   0.5,
		Chime:     true,
		Autostart: true,
	}
	require.NoError(t, SaveSettingsTo(path, saved))

	loaded, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestLoadIgnoresOutOfRangeOpacity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("opacity: 3.5\nexit_key: Cmd+U\n"), 0o644))

	loaded, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, preferences.DefaultSettings().Opacity, loaded.Opacity)
	assert.Equal(t, "Cmd+U", loaded.ExitKey)
}

func TestLoadRejectsMalformedYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	_, err := LoadSettingsFrom(path)
	assert.Error(t, err)
}

func TestWatcherDeliversReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, SaveSettingsTo(path, preferences.DefaultSettings()))

	watcher, err := WatchSettings(path, nil)
	require.NoError(t, err)
	defer watcher.Close()

	updated := preferences.DefaultSettings()
	updated.Timer = "45m"
	require.NoError(t, SaveSettingsTo(path, updated))

	select {
	case settings := <-watcher.Updates():
		assert.Equal(t, "45m", settings.Timer)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for settings reload")
	}
}
