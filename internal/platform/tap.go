package platform

import (
	"errors"

	"pawlock/internal/core/model"
)

// ErrPermissionDenied indicates the capture point cannot be installed until
// the OS-level accessibility permission is granted.
var ErrPermissionDenied = errors.New("accessibility permission required")

// ErrTapUnsupported indicates system-wide interception is not implemented
// for this platform.
var ErrTapUnsupported = errors.New("input interception unsupported on this platform")

// ErrTapRunning indicates Install was called while the tap is already up.
var ErrTapRunning = errors.New("capture point already installed")

// Tap is the system-wide input capture point. While installed it suppresses
// every keyboard and mouse event on the machine and republishes compact
// records of them on Events. Teardown is synchronous: when it returns the
// capture point is fully removed and the events channel is closed.
type Tap interface {
	Install() error
	Events() <-chan model.InputEvent
	Teardown()
	Available() (bool, string)
}

// NewTap returns the platform capture point.
func NewTap() Tap {
	return newPlatformTap()
}
