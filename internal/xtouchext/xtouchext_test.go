package xtouchext

import (
	"math"
	"testing"

	"github.com/jezek/xgb"
)

const testMajorOpcode = 0x87

func testConn() *xgb.Conn {
	return &xgb.Conn{Extensions: map[string]byte{ExtName: testMajorOpcode}}
}

func TestScreenSizeChangeRequestWire(t *testing.T) {
	buf := screenSizeChangeRequest(testConn(), 1920, 1080)

	if len(buf) != 8 {
		t.Fatalf("request length = %d, want 8", len(buf))
	}
	if buf[0] != testMajorOpcode || buf[1] != opScreenSizeChange {
		t.Errorf("opcode bytes = %#x %#x, want %#x %#x", buf[0], buf[1], testMajorOpcode, opScreenSizeChange)
	}
	if got := xgb.Get16(buf[2:]); got != 2 {
		t.Errorf("request length field = %d 4-byte units, want 2", got)
	}
	if w := xgb.Get16(buf[4:]); w != 1920 {
		t.Errorf("width = %d, want 1920", w)
	}
	if h := xgb.Get16(buf[6:]); h != 1080 {
		t.Errorf("height = %d, want 1080", h)
	}
}

func TestMouseEventRequestWire(t *testing.T) {
	buf := mouseEventRequest(testConn(), 12.5, -3.25, 1, true, false)

	if len(buf) != 16 {
		t.Fatalf("request length = %d, want 16", len(buf))
	}
	if buf[1] != opMouseEvent {
		t.Errorf("minor opcode = %#x, want %#x", buf[1], opMouseEvent)
	}
	if got := math.Float32frombits(xgb.Get32(buf[4:])); got != 12.5 {
		t.Errorf("x = %v, want 12.5", got)
	}
	if got := math.Float32frombits(xgb.Get32(buf[8:])); got != -3.25 {
		t.Errorf("y = %v, want -3.25", got)
	}
	if buf[12] != 1 {
		t.Errorf("button = %d, want 1", buf[12])
	}
	if buf[13] != 1 {
		t.Errorf("pressed = %d, want 1", buf[13])
	}
	if buf[14] != 0 {
		t.Errorf("relative = %d, want 0", buf[14])
	}
}

func TestTouchEventRequestWire(t *testing.T) {
	buf := touchEventRequest(testConn(), 2, 7, 640, 480)

	if len(buf) != 12 {
		t.Fatalf("request length = %d, want 12", len(buf))
	}
	if buf[1] != opTouchEvent {
		t.Errorf("minor opcode = %#x, want %#x", buf[1], opTouchEvent)
	}
	want := []uint16{2, 7, 640, 480}
	for i, w := range want {
		if got := xgb.Get16(buf[4+2*i:]); got != w {
			t.Errorf("field %d = %d, want %d", i, got, w)
		}
	}
}

func TestKeyEventRequestWire(t *testing.T) {
	buf := keyEventRequest(testConn(), 38, true)

	if len(buf) != 8 {
		t.Fatalf("request length = %d, want 8", len(buf))
	}
	if buf[1] != opKeyEvent {
		t.Errorf("minor opcode = %#x, want %#x", buf[1], opKeyEvent)
	}
	if got := xgb.Get16(buf[4:]); got != 38 {
		t.Errorf("keycode = %d, want 38", got)
	}
	if buf[6] != 1 {
		t.Errorf("pressed = %d, want 1", buf[6])
	}
}

func TestUnicodeEventRequestWire(t *testing.T) {
	buf := unicodeEventRequest(testConn(), 0x1F600)

	if len(buf) != 8 {
		t.Fatalf("request length = %d, want 8", len(buf))
	}
	if buf[1] != opUnicodeEvent {
		t.Errorf("minor opcode = %#x, want %#x", buf[1], opUnicodeEvent)
	}
	if got := xgb.Get32(buf[4:]); got != 0x1F600 {
		t.Errorf("code point = %#x, want 0x1f600", got)
	}
}
