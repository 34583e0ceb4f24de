package storage

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"pawlock/internal/ui/preferences"
)

const debounceWindow = 250 * time.Millisecond

// Watcher reloads settings when the file changes on disk, so external edits
// take effect for the next protection session.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	path      string
	logger    *zap.Logger

	updates chan preferences.Settings
	done    chan struct{}
	wg      sync.WaitGroup
}

// WatchSettings begins watching the settings file's directory. The file
// itself may not exist yet.
func WatchSettings(configPath string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(filepath.Dir(configPath)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	watcher := &Watcher{
		fsWatcher: fsWatcher,
		path:      configPath,
		logger:    logger,
		updates:   make(chan preferences.Settings, 4),
		done:      make(chan struct{}),
	}
	watcher.wg.Add(1)
	go watcher.run()
	return watcher, nil
}

// Updates returns the channel of reloaded settings.
func (watcher *Watcher) Updates() <-chan preferences.Settings {
	return watcher.updates
}

// Close stops watching.
func (watcher *Watcher) Close() {
	close(watcher.done)
	watcher.fsWatcher.Close()
	watcher.wg.Wait()
	close(watcher.updates)
}

func (watcher *Watcher) run() {
	defer watcher.wg.Done()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	pending := make(chan time.Time)
	for {
		select {
		case <-watcher.done:
			return

		case event, ok := <-watcher.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != watcher.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			// Editors fire bursts of writes; collapse them.
			if debounce == nil {
				debounce = time.AfterFunc(debounceWindow, func() {
					select {
					case pending <- time.Now():
					case <-watcher.done:
					}
				})
			} else {
				debounce.Reset(debounceWindow)
			}

		case <-pending:
			debounce = nil
			watcher.reload()

		case err, ok := <-watcher.fsWatcher.Errors:
			if !ok {
				return
			}
			watcher.logger.Warn("settings watch error", zap.Error(err))
		}
	}
}

func (watcher *Watcher) reload() {
	settings, err := LoadSettingsFrom(watcher.path)
	if err != nil {
		watcher.logger.Warn("reload settings", zap.Error(err))
		return
	}
	select {
	case watcher.updates <- settings:
	default:
	}
}
