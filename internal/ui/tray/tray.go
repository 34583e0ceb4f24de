package tray

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStartProtection func()
	OnProtectFor      func(time.Duration)
	OnStopProtection  func()
	OnPreferences     func()
	OnQuit            func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	protectFor  *fyne.MenuItem
	stopItem    *fyne.MenuItem
	callbacks   Callbacks
	protecting  bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.startItem = fyne.NewMenuItem("Start Protection", func() {
		if manager.callbacks.OnStartProtection != nil {
			manager.callbacks.OnStartProtection()
		}
	})

	manager.protectFor = fyne.NewMenuItem("Protect for...", nil)
	manager.protectFor.ChildMenu = fyne.NewMenu("",
		fyne.NewMenuItem("30 minutes", func() {
			if manager.callbacks.OnProtectFor != nil {
				manager.callbacks.OnProtectFor(30 * time.Minute)
			}
		}),
		fyne.NewMenuItem("1 hour", func() {
			if manager.callbacks.OnProtectFor != nil {
				manager.callbacks.OnProtectFor(time.Hour)
			}
		}),
		fyne.NewMenuItem("2 hours", func() {
			if manager.callbacks.OnProtectFor != nil {
				manager.callbacks.OnProtectFor(2 * time.Hour)
			}
		}),
		fyne.NewMenuItem("4 hours", func() {
			if manager.callbacks.OnProtectFor != nil {
				manager.callbacks.OnProtectFor(4 * time.Hour)
			}
		}),
	)

	manager.stopItem = fyne.NewMenuItem("Stop Protection", func() {
		if manager.callbacks.OnStopProtection != nil {
			manager.callbacks.OnStopProtection()
		}
	})
	manager.stopItem.Disabled = true

	app.SetSystemTrayMenu(manager.buildMenu())
	return manager
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

// SetProtecting toggles session-related menu items.
func (manager *Manager) SetProtecting(protecting bool) {
	manager.protecting = protecting
	manager.startItem.Disabled = protecting
	manager.protectFor.Disabled = protecting
	manager.stopItem.Disabled = !protecting
	manager.refreshMenu()
}

func (manager *Manager) buildMenu() *fyne.Menu {
	return fyne.NewMenu("PawLock",
		manager.statusItem,
		manager.startItem,
		manager.protectFor,
		manager.stopItem,
		fyne.NewMenuItem("Preferences", func() {
			if manager.callbacks.OnPreferences != nil {
				manager.callbacks.OnPreferences()
			}
		}),
		fyne.NewMenuItem("Quit", func() {
			if manager.callbacks.OnQuit != nil {
				manager.callbacks.OnQuit()
			}
		}),
	)
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.buildMenu())
	}
}
