//go:build darwin

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildLaunchAgentPlistAppendsLaunchArgs(t *testing.T) {
	plist := buildLaunchAgentPlist("com.pawlock.pawlock", "/Applications/PawLock.app/Contents/MacOS/pawlock", autostartArgs)

	assert.Contains(t, plist, "<string>/Applications/PawLock.app/Contents/MacOS/pawlock</string>")
	assert.Contains(t, plist, "<string>--no-protect</string>")
	assert.Contains(t, plist, "<string>com.pawlock.pawlock</string>")
	assert.Contains(t, plist, "<key>RunAtLoad</key>")
}

func TestBuildLaunchAgentPlistEscapesPath(t *testing.T) {
	plist := buildLaunchAgentPlist("com.pawlock.pawlock", `/tmp/paws & claws/pawlock`, nil)

	assert.Contains(t, plist, "<string>/tmp/paws &amp; claws/pawlock</string>")
}

func TestLaunchAgentLabel(t *testing.T) {
	assert.Equal(t, "com.pawlock.pawlock", launchAgentLabel("PawLock"))
}
