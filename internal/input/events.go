// Package input classifies raw pointer streams into gestures and maps them to
// protocol intents through the active input strategy.
package input

import "time"

// Action describes what a raw pointer event reports.
type Action int

const (
	ActionDown Action = iota
	ActionPointerDown
	ActionMove
	ActionPointerUp
	ActionUp
	ActionScroll
	ActionHoverMove
	ActionButtonPress
	ActionButtonRelease
	ActionCancel
)

// ToolType identifies the physical tool that generated an event.
type ToolType int

const (
	ToolUnknown ToolType = iota
	ToolFinger
	ToolMouse
)

// Source is a bitmask describing the device an event came from.
type Source uint32

const (
	SourceTouchscreen Source = 1 << iota
	SourceMouse
	SourceTouchpad
)

// Button identifies a pointer button.
type Button int

const (
	ButtonUndefined Button = 0
	ButtonLeft      Button = 1
	ButtonMiddle    Button = 2
	ButtonRight     Button = 3
)

// ButtonMask is the set of currently held buttons.
type ButtonMask uint32

const (
	MaskPrimary   ButtonMask = 1 << 0
	MaskSecondary ButtonMask = 1 << 1
	MaskTertiary  ButtonMask = 1 << 2
)

// Pointer is one contact within a multi-pointer event.
type Pointer struct {
	ID int
	X  float64
	Y  float64
}

// PointerEvent is one raw OS-delivered input batch.
type PointerEvent struct {
	Action   Action
	Pointers []Pointer
	ToolType ToolType
	Source   Source

	// Held button state and, for press/release actions, the button that
	// changed.
	Buttons      ButtonMask
	ActionButton Button

	// Wheel axes for ActionScroll events.
	ScrollX float64
	ScrollY float64

	// Relative axes for touchpad-sourced motion.
	RelX float64
	RelY float64

	// Platform gesture flags for desktop-docked touchpads.
	Flags uint32

	Time time.Time
}

// Desktop-docked touchpad gesture flags.
const (
	FlagDexDrag   uint32 = 0x4000000
	FlagDexScroll uint32 = 0x14000000
)

// X returns the primary pointer's X coordinate.
func (e PointerEvent) X() float64 {
	if len(e.Pointers) == 0 {
		return 0
	}
	return e.Pointers[0].X
}

// Y returns the primary pointer's Y coordinate.
func (e PointerEvent) Y() float64 {
	if len(e.Pointers) == 0 {
		return 0
	}
	return e.Pointers[0].Y
}

// PointerCount returns the number of active contacts.
func (e PointerEvent) PointerCount() int {
	return len(e.Pointers)
}

// DeviceClass is the closed set of input sources the classifier routes on.
type DeviceClass int

const (
	DeviceUnknown DeviceClass = iota
	// DeviceMouse is a hardware mouse; bypasses gesture detection.
	DeviceMouse
	// DeviceDexTouchpad is a desktop-docked touchpad that reports finger
	// events but behaves like a mouse.
	DeviceDexTouchpad
	// DeviceTouchpad is a genuine touchpad delivering indirect relative
	// motion.
	DeviceTouchpad
	// DeviceFinger is a touchscreen contact entering the full gesture
	// pipeline.
	DeviceFinger
)

func (d DeviceClass) String() string {
	switch d {
	case DeviceMouse:
		return "mouse"
	case DeviceDexTouchpad:
		return "dex-touchpad"
	case DeviceTouchpad:
		return "touchpad"
	case DeviceFinger:
		return "finger"
	default:
		return "unknown"
	}
}

// ClassifyDevice resolves an event's tool type and source bitmask into a
// device class. A source reporting both mouse and touchscreen bits without the
// touchpad bit is a docked desktop touchpad.
func ClassifyDevice(e PointerEvent) DeviceClass {
	switch e.ToolType {
	case ToolMouse:
		return DeviceMouse
	case ToolFinger:
		dex := SourceMouse | SourceTouchscreen
		if e.Source&dex == dex && e.Source&SourceTouchpad == 0 {
			return DeviceDexTouchpad
		}
		if e.Source&SourceTouchpad != 0 {
			return DeviceTouchpad
		}
		return DeviceFinger
	default:
		return DeviceUnknown
	}
}
