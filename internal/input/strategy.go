package input

import (
	"strings"

	"github.com/bkodra/xtouch/internal/render"
)

// TouchAction is the discrete contact action carried by touch protocol
// events. A negative action is a flush-only marker.
type TouchAction int

const (
	TouchDown  TouchAction = 0
	TouchUp    TouchAction = 1
	TouchMove  TouchAction = 2
	TouchFlush TouchAction = -1
)

// FeedbackKind tokens are handed to the UI when a tap or hold is accepted.
type FeedbackKind int

const (
	FeedbackNone FeedbackKind = iota
	FeedbackShortPress
	FeedbackLongPress
)

// Mode selects the active input strategy.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeTrackpad
	ModeSimulatedTouch
	ModeTouch
)

// ParseMode resolves a config string into a Mode, defaulting to trackpad.
func ParseMode(s string) Mode {
	switch strings.ToLower(s) {
	case "touch":
		return ModeTouch
	case "simulated_touch", "simulated-touch":
		return ModeSimulatedTouch
	case "trackpad":
		return ModeTrackpad
	default:
		return ModeUnknown
	}
}

// EventSender delivers protocol intents to the remote display server. All
// methods are expected to degrade to no-ops while no connection is installed.
type EventSender interface {
	// SendPointerEvent encodes a pointer move/press/release. Coordinates
	// are image-space, or deltas when relative is set.
	SendPointerEvent(x, y float64, button Button, down bool, relative bool)
	// SendMouseWheel encodes a discrete wheel motion.
	SendMouseWheel(dx, dy float64)
	// SendCursorMove encodes a buttonless absolute pointer move.
	SendCursorMove(x, y float64)
	// SendTouchEvent encodes one touch contact update; TouchFlush only
	// flushes pending contacts.
	SendTouchEvent(action TouchAction, id int, x, y int)
	// SendKeyEvent encodes a raw key. Returns false when the key cannot
	// be translated.
	SendKeyEvent(scanCode, keyCode int, down bool) bool
	// SendUnicode encodes a Unicode code point input event.
	SendUnicode(codePoint rune)
	// SendScreenSize announces the local view dimensions to the host.
	SendScreenSize(width, height int)
}

// Strategy defines how classified gestures become protocol intents. The
// gesture session state (drag, suppression) lives in the Handler, so the
// active strategy can be swapped mid-gesture without losing it.
type Strategy interface {
	// OnTap handles a resolved tap; reports whether it was consumed.
	OnTap(button Button) bool
	// OnPressAndHold handles a resolved long-press; reports whether a
	// drag sequence started.
	OnPressAndHold(button Button) bool
	// OnScroll handles a two-finger scroll delta in screen coordinates.
	OnScroll(dx, dy float64)
	// OnMotionEvent observes every raw event before the detectors run.
	OnMotionEvent(e PointerEvent)
	// InjectCursorMove propagates a cursor position change to the remote.
	InjectCursorMove(x, y int)
	// IsIndirectInputMode reports whether gestures drive an independent
	// cursor rather than addressing the touched point directly.
	IsIndirectInputMode() bool

	ShortPressFeedback() FeedbackKind
	LongPressFeedback() FeedbackKind
}

// NewStrategy constructs the strategy variant for the given mode. Unknown
// modes fall back to trackpad, the safest indirect default.
func NewStrategy(mode Mode, rs *render.State, sender EventSender) Strategy {
	switch mode {
	case ModeTouch:
		return &touchStrategy{render: rs, sender: sender}
	case ModeSimulatedTouch:
		return &simulatedTouchStrategy{render: rs, sender: sender}
	default:
		return &trackpadStrategy{render: rs, sender: sender}
	}
}
