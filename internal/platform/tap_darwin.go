//go:build darwin

package platform

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework ApplicationServices -framework Foundation

#include <ApplicationServices/ApplicationServices.h>
#include <pthread.h>
#include <unistd.h>

// Compact record of one intercepted event. The callback never inspects key
// content beyond the keycode needed for unlock matching.
typedef struct {
	int kind;
	int64_t keycode;
	uint64_t flags;
	double x;
	double y;
} pawlockEvent;

#define PAWLOCK_RING_SIZE 1024
static pawlockEvent ringBuffer[PAWLOCK_RING_SIZE];
static volatile int ringHead = 0;
static volatile int ringTail = 0;

// Run loop state
static CFRunLoopRef tapRunLoop = NULL;
static volatile int tapEnabled = 0;
static volatile int tapDisabledBySystem = 0;

static void stopEventTap(void);

static CFMachPortRef eventTap = NULL;
static CFRunLoopSourceRef runLoopSource = NULL;

CGEventRef tapCallback(CGEventTapProxy proxy, CGEventType type, CGEventRef event, void *refcon) {
	(void)proxy;
	(void)refcon;

	// The system disables taps whose callback is too slow; re-enable and
	// count it for diagnostics.
	if (type == kCGEventTapDisabledByUserInput || type == kCGEventTapDisabledByTimeout) {
		tapDisabledBySystem = 1;
		if (eventTap != NULL) {
			CGEventTapEnable(eventTap, true);
		}
		return event;
	}

	int kind = 0;
	switch (type) {
	case kCGEventKeyDown:
		kind = 1;
		break;
	case kCGEventKeyUp:
		kind = 2;
		break;
	case kCGEventFlagsChanged:
		kind = 3;
		break;
	case kCGEventLeftMouseDown:
	case kCGEventRightMouseDown:
	case kCGEventOtherMouseDown:
		kind = 4;
		break;
	case kCGEventLeftMouseUp:
	case kCGEventRightMouseUp:
	case kCGEventOtherMouseUp:
		kind = 5;
		break;
	case kCGEventLeftMouseDragged:
	case kCGEventRightMouseDragged:
	case kCGEventOtherMouseDragged:
		kind = 6;
		break;
	case kCGEventMouseMoved:
		kind = 7;
		break;
	case kCGEventScrollWheel:
		kind = 8;
		break;
	default:
		return event;
	}

	int next = (ringHead + 1) % PAWLOCK_RING_SIZE;
	if (next != ringTail) {
		pawlockEvent *slot = &ringBuffer[ringHead];
		slot->kind = kind;
		slot->keycode = CGEventGetIntegerValueField(event, kCGKeyboardEventKeycode);
		slot->flags = CGEventGetFlags(event);
		CGPoint location = CGEventGetLocation(event);
		slot->x = location.x;
		slot->y = location.y;
		ringHead = next;
	}

	// Suppress everything. The unlock chord is matched on the Go side and
	// still never forwarded to other applications.
	return NULL;
}

int drainEvents(pawlockEvent *out, int max) {
	int count = 0;
	while (ringTail != ringHead && count < max) {
		out[count] = ringBuffer[ringTail];
		ringTail = (ringTail + 1) % PAWLOCK_RING_SIZE;
		count++;
	}
	return count;
}

static void* runLoopThread(void* arg) {
	(void)arg;

	tapRunLoop = CFRunLoopGetCurrent();
	CFRunLoopAddSource(tapRunLoop, runLoopSource, kCFRunLoopCommonModes);
	CGEventTapEnable(eventTap, true);
	tapEnabled = 1;

	CFRunLoopRun();

	tapEnabled = 0;
	tapRunLoop = NULL;
	return NULL;
}

static pthread_t runLoopThreadHandle;
static volatile int threadRunning = 0;

static int startEventTap(void) {
	if (eventTap != NULL) {
		return 1; // Already running
	}

	ringHead = 0;
	ringTail = 0;
	tapDisabledBySystem = 0;

	CGEventMask eventMask = CGEventMaskBit(kCGEventKeyDown) |
		CGEventMaskBit(kCGEventKeyUp) |
		CGEventMaskBit(kCGEventFlagsChanged) |
		CGEventMaskBit(kCGEventLeftMouseDown) |
		CGEventMaskBit(kCGEventLeftMouseUp) |
		CGEventMaskBit(kCGEventRightMouseDown) |
		CGEventMaskBit(kCGEventRightMouseUp) |
		CGEventMaskBit(kCGEventMouseMoved) |
		CGEventMaskBit(kCGEventLeftMouseDragged) |
		CGEventMaskBit(kCGEventRightMouseDragged) |
		CGEventMaskBit(kCGEventScrollWheel) |
		CGEventMaskBit(kCGEventOtherMouseDown) |
		CGEventMaskBit(kCGEventOtherMouseUp) |
		CGEventMaskBit(kCGEventOtherMouseDragged);

	// HID-level active tap: the callback returning NULL blocks delivery to
	// every other application.
	eventTap = CGEventTapCreate(
		kCGHIDEventTap,
		kCGHeadInsertEventTap,
		kCGEventTapOptionDefault,
		eventMask,
		tapCallback,
		NULL
	);

	if (eventTap == NULL) {
		return -1; // Permission denied or not available
	}

	runLoopSource = CFMachPortCreateRunLoopSource(kCFAllocatorDefault, eventTap, 0);
	if (runLoopSource == NULL) {
		CFRelease(eventTap);
		eventTap = NULL;
		return -2;
	}

	threadRunning = 1;
	if (pthread_create(&runLoopThreadHandle, NULL, runLoopThread, NULL) != 0) {
		CFRelease(runLoopSource);
		CFRelease(eventTap);
		runLoopSource = NULL;
		eventTap = NULL;
		threadRunning = 0;
		return -3;
	}

	for (int i = 0; i < 100 && !tapEnabled; i++) {
		usleep(10000); // 10ms
	}

	if (!tapEnabled) {
		stopEventTap();
		return -4;
	}

	return 0;
}

static void stopEventTap(void) {
	if (eventTap == NULL) {
		return;
	}

	CGEventTapEnable(eventTap, false);
	tapEnabled = 0;

	if (tapRunLoop != NULL) {
		CFRunLoopStop(tapRunLoop);
	}

	if (threadRunning) {
		pthread_join(runLoopThreadHandle, NULL);
		threadRunning = 0;
	}

	if (runLoopSource != NULL) {
		CFRelease(runLoopSource);
		runLoopSource = NULL;
	}

	if (eventTap != NULL) {
		CFRelease(eventTap);
		eventTap = NULL;
	}

	tapRunLoop = NULL;
}

int isTapEnabled() {
	return tapEnabled;
}

int wasTapDisabledBySystem() {
	int val = tapDisabledBySystem;
	tapDisabledBySystem = 0;
	return val;
}

int checkAccessibility() {
	NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @NO};
	return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}

int promptAccessibility() {
	NSDictionary *options = @{(__bridge id)kAXTrustedCheckOptionPrompt: @YES};
	return AXIsProcessTrustedWithOptions((__bridge CFDictionaryRef)options) ? 1 : 0;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"pawlock/internal/core/model"
)

const drainBatchSize = 64

// DarwinTap suppresses input through a CGEventTap on a dedicated run-loop
// thread and drains the C-side ring buffer into the events channel.
type DarwinTap struct {
	mu        sync.Mutex
	installed bool
	events    chan model.InputEvent
	pollStop  chan struct{}
	pollDone  chan struct{}

	reenableCount atomic.Int64
}

func newPlatformTap() Tap {
	return &DarwinTap{}
}

// Available checks for the accessibility permission without prompting.
func (tap *DarwinTap) Available() (bool, string) {
	if C.checkAccessibility() == 1 {
		return true, "event tap available"
	}
	return false, "Accessibility permission required. Open System Settings > Privacy & Security > Accessibility and add this application."
}

// CheckAccessibility reports whether accessibility trust is granted.
func CheckAccessibility() bool {
	return C.checkAccessibility() == 1
}

// PromptAccessibility checks trust and shows the system prompt if missing.
func PromptAccessibility() bool {
	return C.promptAccessibility() == 1
}

// Install creates and enables the event tap. It fails before any events are
// suppressed when permission is missing, so the caller can refuse to show
// the overlay.
func (tap *DarwinTap) Install() error {
	tap.mu.Lock()
	defer tap.mu.Unlock()

	if tap.installed {
		return ErrTapRunning
	}
	if C.checkAccessibility() != 1 {
		return ErrPermissionDenied
	}

	switch result := C.startEventTap(); result {
	case 0:
	case 1:
		return ErrTapRunning
	case -1:
		return ErrPermissionDenied
	case -2:
		return errors.New("create run loop source")
	case -3:
		return errors.New("create run loop thread")
	case -4:
		return errors.New("timeout waiting for event tap to start")
	default:
		return fmt.Errorf("start event tap: code %d", int(result))
	}

	tap.installed = true
	tap.events = make(chan model.InputEvent, 256)
	tap.pollStop = make(chan struct{})
	tap.pollDone = make(chan struct{})
	go tap.pollLoop()

	return nil
}

// Events returns the intercepted event stream for the current installation.
func (tap *DarwinTap) Events() <-chan model.InputEvent {
	tap.mu.Lock()
	defer tap.mu.Unlock()
	return tap.events
}

// Teardown removes the tap. It blocks until the run-loop thread has joined
// and closes the events channel, so a subsequent Install starts clean.
func (tap *DarwinTap) Teardown() {
	tap.mu.Lock()
	if !tap.installed {
		tap.mu.Unlock()
		return
	}
	tap.installed = false
	close(tap.pollStop)
	tap.mu.Unlock()

	<-tap.pollDone
	C.stopEventTap()
	close(tap.events)
}

// ReenableCount returns how many times the OS disabled the tap and it was
// re-enabled.
func (tap *DarwinTap) ReenableCount() int64 {
	return tap.reenableCount.Load()
}

func (tap *DarwinTap) pollLoop() {
	defer close(tap.pollDone)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	healthTicker := time.NewTicker(time.Second)
	defer healthTicker.Stop()

	var batch [drainBatchSize]C.pawlockEvent

	for {
		select {
		case <-tap.pollStop:
			return

		case <-healthTicker.C:
			if C.wasTapDisabledBySystem() == 1 {
				tap.reenableCount.Add(1)
			}

		case <-ticker.C:
			count := int(C.drainEvents((*C.pawlockEvent)(unsafe.Pointer(&batch[0])), drainBatchSize))
			now := time.Now()
			for index := 0; index < count; index++ {
				event := convertEvent(batch[index], now)
				select {
				case tap.events <- event:
				case <-tap.pollStop:
					return
				}
			}
		}
	}
}

func convertEvent(raw C.pawlockEvent, now time.Time) model.InputEvent {
	event := model.InputEvent{
		Kind: eventKind(int(raw.kind)),
		Mods: modifiersFromFlags(uint64(raw.flags)),
		X:    float64(raw.x),
		Y:    float64(raw.y),
		At:   now,
	}
	if event.Kind == model.KindKeyDown || event.Kind == model.KindKeyUp {
		event.Key = keyName(int64(raw.keycode))
	}
	return event
}

func eventKind(raw int) model.EventKind {
	switch raw {
	case 1:
		return model.KindKeyDown
	case 2:
		return model.KindKeyUp
	case 3:
		return model.KindFlagsChanged
	case 4:
		return model.KindMouseDown
	case 5:
		return model.KindMouseUp
	case 6:
		return model.KindMouseDrag
	case 7:
		return model.KindMouseMove
	default:
		return model.KindScroll
	}
}

var _ Tap = (*DarwinTap)(nil)
