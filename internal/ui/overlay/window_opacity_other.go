//go:build !windows

package overlay

// Per-window alpha is handled by the backdrop fill color outside Windows.
func (overlay *Window) applyNativeOpacity(opacity float64) {}
