//go:build darwin

package platform

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation

#include <stdlib.h>
#include <IOKit/pwr_mgt/IOPMLib.h>
#include <CoreFoundation/CoreFoundation.h>

int acquireAssertion(const char *reason, IOPMAssertionID *assertionID) {
	CFStringRef type = CFSTR("PreventUserIdleDisplaySleep");
	CFStringRef reasonRef = CFStringCreateWithCString(kCFAllocatorDefault, reason, kCFStringEncodingUTF8);
	IOReturn result = IOPMAssertionCreateWithName(type, kIOPMAssertionLevelOn, reasonRef, assertionID);
	CFRelease(reasonRef);
	return result == kIOReturnSuccess ? 0 : (int)result;
}

int releaseAssertion(IOPMAssertionID assertionID) {
	return IOPMAssertionRelease(assertionID) == kIOReturnSuccess ? 0 : -1;
}
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// darwinSleepBlocker wraps an IOKit power assertion. The OS reclaims a
// leaked assertion when the process exits, but every normal exit path
// releases it explicitly.
type darwinSleepBlocker struct {
	mu          sync.Mutex
	held        bool
	assertionID C.IOPMAssertionID
}

func newPlatformSleepBlocker() SleepBlocker {
	return &darwinSleepBlocker{}
}

func (blocker *darwinSleepBlocker) Acquire(reason string) error {
	blocker.mu.Lock()
	defer blocker.mu.Unlock()

	if blocker.held {
		return nil
	}

	cReason := C.CString(reason)
	defer C.free(unsafe.Pointer(cReason))

	var assertionID C.IOPMAssertionID
	if result := C.acquireAssertion(cReason, &assertionID); result != 0 {
		return fmt.Errorf("create power assertion: code %d", int(result))
	}
	blocker.assertionID = assertionID
	blocker.held = true
	return nil
}

func (blocker *darwinSleepBlocker) Release() {
	blocker.mu.Lock()
	defer blocker.mu.Unlock()

	if !blocker.held {
		return
	}
	C.releaseAssertion(blocker.assertionID)
	blocker.assertionID = 0
	blocker.held = false
}

func (blocker *darwinSleepBlocker) Held() bool {
	blocker.mu.Lock()
	defer blocker.mu.Unlock()
	return blocker.held
}

var _ SleepBlocker = (*darwinSleepBlocker)(nil)
