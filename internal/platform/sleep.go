package platform

// SleepBlocker holds a system "prevent idle display sleep" lease while a
// protection session is active. Acquire while held and Release while not
// held are no-ops; the session holds at most one lease at a time.
type SleepBlocker interface {
	Acquire(reason string) error
	Release()
	Held() bool
}

// NewSleepBlocker returns the platform sleep blocker.
func NewSleepBlocker() SleepBlocker {
	return newPlatformSleepBlocker()
}
