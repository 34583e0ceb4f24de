package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"pawlock/internal/core/guardian"
	"pawlock/internal/ipc"
	"pawlock/internal/logging"
	"pawlock/internal/platform"
	"pawlock/internal/storage"
	"pawlock/internal/ui/chime"
	"pawlock/internal/ui/overlay"
	"pawlock/internal/ui/preferences"
	"pawlock/internal/ui/tray"
	"pawlock/resources"
)

// application bundles the long-lived pieces of the tray app. All fields are
// wired once in runApp; UI mutations afterwards go through fyne.Do.
type application struct {
	logger   *zap.Logger
	fyneApp  fyne.App
	guard    *guardian.Guardian
	overlay  *overlay.Window
	tray     *tray.Manager
	prefs    *preferences.Window
	player   *chime.Player
	server   *ipc.Server
	watcher  *storage.Watcher
	settings preferences.Settings
}

func runApp(cmd *cobra.Command) error {
	logger := logging.New(logging.Config{
		Level:   "info",
		File:    logging.DefaultLogPath(),
		Verbose: flags.verbose,
	})
	defer func() {
		_ = logger.Sync()
	}()
	logger.Info("starting pawlock", zap.String("version", Version))

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		logger.Warn("settings unreadable, using defaults", zap.Error(err))
		settings = preferences.DefaultSettings()
	}
	settings = mergeSettings(cmd, settings)

	fyneApp := app.NewWithID("com.pawlock.app")
	fyneApp.SetIcon(resources.AppIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		return errors.New("system tray unsupported on this platform")
	}

	trayWindow := fyneApp.NewWindow("PawLock")
	trayWindow.SetContent(widget.NewLabel("PawLock is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	pawlock := &application{
		logger:   logger,
		fyneApp:  fyneApp,
		settings: settings,
	}

	pawlock.overlay = overlay.New(fyneApp, overlay.Config{
		Opacity:   settings.Opacity,
		HideTimer: settings.HideTimer,
		Message:   "PawLock is guarding your screen",
	})

	tap := platform.NewTap()
	if available, detail := tap.Available(); !available {
		logger.Warn("input interception unavailable", zap.String("detail", detail))
	}
	pawlock.guard = guardian.New(tap, platform.NewSleepBlocker(), guardian.Options{
		CloseRegion: pawlock.overlay.CloseRegion,
		Logger:      logger.Named("guardian"),
	})

	pawlock.player = chime.NewPlayer()
	if err := pawlock.player.Initialize(); err != nil {
		logger.Warn("audio unavailable", zap.Error(err))
	}
	pawlock.player.SetEnabled(settings.Chime)

	pawlock.server, err = ipc.Listen(appName, ipc.Callbacks{
		OnStatus: func() (string, time.Duration) {
			return string(pawlock.guard.State()), pawlock.guard.Remaining()
		},
		OnStop: func() {
			pawlock.guard.Stop()
		},
	}, logger.Named("ipc"))
	if err != nil {
		return fmt.Errorf("another pawlock instance is already running")
	}

	autostart := platform.NewService()
	pawlock.prefs = preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		previous := pawlock.settings
		pawlock.applySettings(updated)
		if err := storage.SaveSettings(appName, updated); err != nil {
			logger.Error("save settings", zap.Error(err))
		}
		if updated.Autostart != previous.Autostart {
			pawlock.applyAutostart(autostart, updated.Autostart)
		}
	})

	pawlock.tray = tray.New(desktopApp, tray.Callbacks{
		OnStartProtection: func() {
			pawlock.startProtection(0)
		},
		OnProtectFor: func(duration time.Duration) {
			pawlock.startProtection(duration)
		},
		OnStopProtection: func() {
			go pawlock.guard.Stop()
		},
		OnPreferences: func() {
			pawlock.prefs.Show()
		},
		OnQuit: func() {
			go pawlock.shutdown()
		},
	})
	desktopApp.SetSystemTrayIcon(resources.TrayIdle())
	pawlock.tray.SetStatus("idle")

	if configPath, err := storage.SettingsPath(appName); err == nil {
		pawlock.watcher, err = storage.WatchSettings(configPath, logger.Named("watcher"))
		if err != nil {
			logger.Warn("settings watcher unavailable", zap.Error(err))
		} else {
			go pawlock.consumeSettingsUpdates()
		}
	}

	events := pawlock.guard.Subscribe(16)
	go pawlock.consumeGuardianEvents(desktopApp, events)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-signals
		logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
		pawlock.shutdown()
	}()

	if !flags.noProtect {
		pawlock.startProtection(0)
	}

	fyneApp.Run()
	return nil
}

// startProtection builds a session config from the current settings and
// starts the guardian. A non-zero timerOverride replaces the configured
// auto-exit duration.
func (pawlock *application) startProtection(timerOverride time.Duration) {
	config, err := pawlock.settings.ProtectionConfig()
	if err != nil {
		pawlock.logger.Error("invalid protection settings", zap.Error(err))
		pawlock.notify("PawLock", fmt.Sprintf("Cannot start protection: %v", err))
		return
	}
	if timerOverride > 0 {
		config.Timer = timerOverride
	}

	if !platform.CheckAccessibility() {
		platform.PromptAccessibility()
		pawlock.notify("PawLock needs permission",
			"Grant Accessibility access in System Settings, then start protection again.")
		return
	}

	go func() {
		if err := pawlock.guard.Start(config); err != nil {
			pawlock.logger.Error("start protection", zap.Error(err))
			if errors.Is(err, platform.ErrPermissionDenied) {
				pawlock.notify("PawLock needs permission",
					"Grant Accessibility access in System Settings, then start protection again.")
				return
			}
			if !errors.Is(err, guardian.ErrAlreadyActive) {
				pawlock.notify("PawLock", fmt.Sprintf("Cannot start protection: %v", err))
			}
		}
	}()
}

// applySettings installs new settings as the baseline for future sessions
// and refreshes surfaces that show them.
func (pawlock *application) applySettings(updated preferences.Settings) {
	pawlock.settings = updated
	pawlock.player.SetEnabled(updated.Chime)
	pawlock.overlay.UpdateConfig(overlay.Config{
		Opacity:   updated.Opacity,
		HideTimer: updated.HideTimer,
		Message:   "PawLock is guarding your screen",
	})
}

func (pawlock *application) applyAutostart(service platform.Service, enabled bool) {
	if enabled {
		execPath, err := os.Executable()
		if err != nil {
			pawlock.logger.Error("resolve executable for autostart", zap.Error(err))
			return
		}
		if err := service.EnableAutostart(appName, execPath); err != nil {
			pawlock.logger.Error("enable autostart", zap.Error(err))
		}
		return
	}
	if err := service.DisableAutostart(appName); err != nil {
		pawlock.logger.Error("disable autostart", zap.Error(err))
	}
}

// consumeGuardianEvents maps guardian events onto the overlay, tray and
// audio surfaces. It exits when the guardian closes its event channels.
func (pawlock *application) consumeGuardianEvents(desktopApp desktop.App, events <-chan guardian.Event) {
	for event := range events {
		switch event.Type {
		case guardian.EventStateChange:
			pawlock.handleStateChange(desktopApp, event)
		case guardian.EventHoldProgress:
			fraction := event.Fraction
			fyne.Do(func() {
				pawlock.overlay.SetHoldProgress(fraction)
			})
		case guardian.EventCountdown:
			remaining := event.Remaining
			fyne.Do(func() {
				pawlock.overlay.SetRemaining(remaining)
				pawlock.tray.SetStatus("protecting, " + formatRemaining(remaining) + " left")
			})
		case guardian.EventCountdownWarning:
			pawlock.player.PlayWarning()
			pawlock.notify("PawLock", "Protection ends in less than a minute.")
			fyne.Do(func() {
				pawlock.overlay.FlashWarning()
			})
		case guardian.EventStartFailed:
			pawlock.logger.Warn("protection start failed", zap.String("detail", event.Message))
		case guardian.EventSessionEnded:
			if event.Reason != guardian.ReasonForcedStop {
				pawlock.player.PlayUnlock()
			}
		}
	}
}

func (pawlock *application) handleStateChange(desktopApp desktop.App, event guardian.Event) {
	switch event.State {
	case guardian.StateActive:
		remaining := event.Remaining
		fyne.Do(func() {
			pawlock.overlay.Show(remaining)
			pawlock.tray.SetProtecting(true)
			if remaining > 0 {
				pawlock.tray.SetStatus("protecting, " + formatRemaining(remaining) + " left")
			} else {
				pawlock.tray.SetStatus("protecting")
			}
			desktopApp.SetSystemTrayIcon(resources.TrayActive())
		})
	case guardian.StateIdle:
		fyne.Do(func() {
			pawlock.overlay.Hide()
			pawlock.tray.SetProtecting(false)
			pawlock.tray.SetStatus("idle")
			desktopApp.SetSystemTrayIcon(resources.TrayIdle())
		})
	}
}

// consumeSettingsUpdates folds external edits of settings.yaml into the
// session baseline, exactly as a save from the preferences window would.
func (pawlock *application) consumeSettingsUpdates() {
	for updated := range pawlock.watcher.Updates() {
		pawlock.logger.Info("settings file changed, reloading")
		settings := updated
		fyne.Do(func() {
			pawlock.applySettings(settings)
			pawlock.prefs.UpdateSettings(settings)
		})
	}
}

// shutdown tears everything down in dependency order: the session first so
// the capture tap and sleep lease are gone before surfaces disappear.
func (pawlock *application) shutdown() {
	pawlock.guard.Stop()
	pawlock.guard.Close()
	if pawlock.watcher != nil {
		pawlock.watcher.Close()
	}
	if pawlock.server != nil {
		_ = pawlock.server.Close()
	}
	pawlock.player.Cleanup()
	fyne.Do(func() {
		pawlock.fyneApp.Quit()
	})
}

func (pawlock *application) notify(title, message string) {
	pawlock.fyneApp.SendNotification(fyne.NewNotification(title, message))
}

func formatRemaining(remaining time.Duration) string {
	if remaining < 0 {
		remaining = 0
	}
	total := int(remaining.Seconds())
	hours := total / 3600
	minutes := total % 3600 / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
