//go:build linux

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDesktopEntryAppendsLaunchArgs(t *testing.T) {
	entry := buildDesktopEntry("pawlock", "/usr/local/bin/pawlock", autostartArgs)

	assert.Contains(t, entry, "Exec=/usr/local/bin/pawlock --no-protect\n")
	assert.Contains(t, entry, "Name=pawlock\n")
	assert.Contains(t, entry, "Type=Application\n")
}

func TestBuildDesktopEntryQuotesSpacedPath(t *testing.T) {
	entry := buildDesktopEntry("pawlock", "/opt/paw lock/pawlock", autostartArgs)

	assert.Contains(t, entry, `Exec="/opt/paw lock/pawlock" --no-protect`)
}

func TestDesktopFileName(t *testing.T) {
	assert.Equal(t, "pawlock.desktop", desktopFileName("PawLock"))
}
