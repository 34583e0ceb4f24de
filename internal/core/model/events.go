package model

import (
	"time"

	"pawlock/internal/core/keycombo"
)

// EventKind classifies an intercepted input event.
type EventKind string

const (
	KindKeyDown      EventKind = "key_down"
	KindKeyUp        EventKind = "key_up"
	KindFlagsChanged EventKind = "flags_changed"
	KindMouseDown    EventKind = "mouse_down"
	KindMouseUp      EventKind = "mouse_up"
	KindMouseDrag    EventKind = "mouse_drag"
	KindMouseMove    EventKind = "mouse_move"
	KindScroll       EventKind = "scroll"
)

// InputEvent is one keyboard or mouse event observed at the capture point.
// The event has already been suppressed system-wide by the time it reaches
// the coordinator; this record only drives unlock matching and the hold
// gesture.
type InputEvent struct {
	Kind EventKind
	Key  string // normalized primary-key name, empty for non-key events
	Mods keycombo.Modifier
	X    float64 // screen coordinates for pointer events
	Y    float64
	At   time.Time
}

// Rect is a screen-coordinate rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point lies inside the rectangle.
func (rect Rect) Contains(x, y float64) bool {
	return x >= rect.X && x <= rect.X+rect.W && y >= rect.Y && y <= rect.Y+rect.H
}
