// Package resources embeds the icons shown in the menu bar and the
// preferences window.
package resources

import (
	"embed"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
)

const iconDir = "icons/"

//go:embed icons/*.svg
var iconFS embed.FS

var iconCache sync.Map

// Icon returns a Fyne resource for the given icon file.
func Icon(fileName string) (fyne.Resource, error) {
	return loadResource(iconFS, iconDir+fileName, &iconCache)
}

// MustIcon returns a Fyne resource or panics on error.
func MustIcon(fileName string) fyne.Resource {
	resource, err := Icon(fileName)
	if err != nil {
		panic(err)
	}
	return resource
}

// TrayIdle is the menu bar icon while no shield is active.
func TrayIdle() fyne.Resource { return MustIcon("tray-idle.svg") }

// TrayActive is the menu bar icon while the shield is up.
func TrayActive() fyne.Resource { return MustIcon("tray-active.svg") }

// AppIcon is the application icon used for windows and notifications.
func AppIcon() fyne.Resource { return MustIcon("app.svg") }

func loadResource(fs embed.FS, path string, cache *sync.Map) (fyne.Resource, error) {
	if cached, ok := cache.Load(path); ok {
		return cached.(fyne.Resource), nil
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load resource %s: %w", path, err)
	}

	resource := fyne.NewStaticResource(path, data)
	cache.Store(path, resource)
	return resource, nil
}
