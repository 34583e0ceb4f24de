//go:build !darwin

package platform

import "pawlock/internal/core/model"

// StubTap is used on platforms without system-wide interception. Install
// always fails so a protection session can never start half-protected.
type StubTap struct{}

func newPlatformTap() Tap {
	return &StubTap{}
}

func (*StubTap) Available() (bool, string) {
	return false, "input interception not implemented for this platform"
}

func (*StubTap) Install() error {
	return ErrTapUnsupported
}

func (*StubTap) Events() <-chan model.InputEvent {
	ch := make(chan model.InputEvent)
	close(ch)
	return ch
}

func (*StubTap) Teardown() {}

// CheckAccessibility always succeeds where no permission model applies.
func CheckAccessibility() bool { return true }

// PromptAccessibility is a no-op off darwin.
func PromptAccessibility() bool { return true }

var _ Tap = (*StubTap)(nil)
