//go:build !darwin

package platform

import "sync"

// stubSleepBlocker tracks lease state without a platform lease. Acquiring
// succeeds so protection still works where sleep prevention is unavailable.
type stubSleepBlocker struct {
	mu   sync.Mutex
	held bool
}

func newPlatformSleepBlocker() SleepBlocker {
	return &stubSleepBlocker{}
}

func (blocker *stubSleepBlocker) Acquire(reason string) error {
	blocker.mu.Lock()
	defer blocker.mu.Unlock()
	blocker.held = true
	return nil
}

func (blocker *stubSleepBlocker) Release() {
	blocker.mu.Lock()
	defer blocker.mu.Unlock()
	blocker.held = false
}

func (blocker *stubSleepBlocker) Held() bool {
	blocker.mu.Lock()
	defer blocker.mu.Unlock()
	return blocker.held
}

var _ SleepBlocker = (*stubSleepBlocker)(nil)
