package capture

import (
	"context"
	"os"
	"testing"
	"time"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bkodra/xtouch/internal/input"
)

func abs(code int, value int32) evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EV_ABS, Code: uint16(code), Value: value}
}

func key(code int, value int32) evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EV_KEY, Code: uint16(code), Value: value}
}

func syn() evdev.InputEvent {
	return evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT}
}

func feedAll(t *testing.T, s *touchState, events ...evdev.InputEvent) []input.PointerEvent {
	t.Helper()
	var out []input.PointerEvent
	for _, e := range events {
		if ev, ok := s.feed(e); ok {
			out = append(out, ev)
		}
	}
	return out
}

func TestTouchStateMultitouchSession(t *testing.T) {
	s := newTouchState()

	events := feedAll(t, s,
		// First finger down.
		abs(evdev.ABS_MT_SLOT, 0),
		abs(evdev.ABS_MT_TRACKING_ID, 100),
		abs(evdev.ABS_MT_POSITION_X, 500),
		abs(evdev.ABS_MT_POSITION_Y, 300),
		syn(),
		// Second finger joins.
		abs(evdev.ABS_MT_SLOT, 1),
		abs(evdev.ABS_MT_TRACKING_ID, 101),
		abs(evdev.ABS_MT_POSITION_X, 600),
		abs(evdev.ABS_MT_POSITION_Y, 300),
		syn(),
		// Both move.
		abs(evdev.ABS_MT_SLOT, 0),
		abs(evdev.ABS_MT_POSITION_Y, 350),
		abs(evdev.ABS_MT_SLOT, 1),
		abs(evdev.ABS_MT_POSITION_Y, 350),
		syn(),
		// Second finger lifts.
		abs(evdev.ABS_MT_TRACKING_ID, -1),
		syn(),
		// First finger lifts.
		abs(evdev.ABS_MT_SLOT, 0),
		abs(evdev.ABS_MT_TRACKING_ID, -1),
		syn(),
	)

	wantActions := []input.Action{
		input.ActionDown, input.ActionPointerDown, input.ActionMove,
		input.ActionPointerUp, input.ActionUp,
	}
	if len(events) != len(wantActions) {
		t.Fatalf("got %d events, want %d", len(events), len(wantActions))
	}
	for i, want := range wantActions {
		if events[i].Action != want {
			t.Errorf("event %d action = %v, want %v", i, events[i].Action, want)
		}
	}

	if n := events[1].PointerCount(); n != 2 {
		t.Errorf("pointer-down event count = %d, want 2", n)
	}
	if events[2].Pointers[0].Y != 350 || events[2].Pointers[1].Y != 350 {
		t.Errorf("move positions = %v, want both at y=350", events[2].Pointers)
	}
	if events[0].ToolType != input.ToolFinger || events[0].Source != input.SourceTouchscreen {
		t.Errorf("touch events must be finger/touchscreen, got %v/%v", events[0].ToolType, events[0].Source)
	}

	// The final up still carries the last known contact position.
	if events[4].PointerCount() == 0 {
		t.Fatal("final up event carries no pointers")
	}
	if events[4].X() != 500 || events[4].Y() != 350 {
		t.Errorf("final up position = (%v, %v), want (500, 350)", events[4].X(), events[4].Y())
	}
}

func TestTouchStateSingleTouchFallback(t *testing.T) {
	s := newTouchState()

	events := feedAll(t, s,
		key(evdev.BTN_TOUCH, 1),
		abs(evdev.ABS_X, 120),
		abs(evdev.ABS_Y, 80),
		syn(),
		abs(evdev.ABS_X, 140),
		syn(),
		key(evdev.BTN_TOUCH, 0),
		syn(),
	)

	wantActions := []input.Action{input.ActionDown, input.ActionMove, input.ActionUp}
	if len(events) != len(wantActions) {
		t.Fatalf("got %d events, want %d", len(events), len(wantActions))
	}
	for i, want := range wantActions {
		if events[i].Action != want {
			t.Errorf("event %d action = %v, want %v", i, events[i].Action, want)
		}
	}
	if events[1].X() != 140 || events[1].Y() != 80 {
		t.Errorf("move position = (%v, %v), want (140, 80)", events[1].X(), events[1].Y())
	}
}

func TestTouchStateIdleReportsNothing(t *testing.T) {
	s := newTouchState()
	if events := feedAll(t, s, syn(), syn()); len(events) != 0 {
		t.Errorf("idle sync reports produced %d events, want 0", len(events))
	}
}

// fakeDevice returns an InputDevice backed by a regular file; every grab
// ioctl on it fails.
func fakeDevice(t *testing.T) *evdev.InputDevice {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "not-a-device")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return &evdev.InputDevice{File: f}
}

func TestGrabRollsBackOnFailure(t *testing.T) {
	c := NewCapture("", "", "")
	c.touchDevice = fakeDevice(t)
	c.mouseDevice = fakeDevice(t)

	if err := c.Grab(); err == nil {
		t.Fatal("Grab() on non-device files should fail")
	}
	if c.devicesGrabbed {
		t.Error("failed grab must not leave devicesGrabbed set")
	}

	// Ungrab after a failed grab is a no-op.
	c.Ungrab()
	if c.devicesGrabbed {
		t.Error("Ungrab() must leave devicesGrabbed unset")
	}
}

func TestTickerRunsWithoutDeviceTraffic(t *testing.T) {
	c := NewCapture("", "", "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.ctx = ctx

	ticks := make(chan struct{}, 8)
	c.OnTick(func() {
		select {
		case ticks <- struct{}{}:
		default:
		}
	})

	go c.runTicker()

	select {
	case <-ticks:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("no tick fired without device events")
	}
}

func TestGrabIsIdempotentOnceGrabbed(t *testing.T) {
	c := NewCapture("", "", "")
	c.devicesGrabbed = true

	if err := c.Grab(); err != nil {
		t.Fatalf("Grab() while already grabbed: %v", err)
	}
}
