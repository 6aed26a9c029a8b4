// Package capture reads local evdev devices and translates their raw streams
// into pointer and key events for the gesture classifier.
package capture

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	evdev "github.com/gvalkov/golang-evdev"

	"github.com/bkodra/xtouch/internal/input"
	"github.com/bkodra/xtouch/internal/logger"
)

// Capture owns the evdev device handles and their reader goroutines.
type Capture struct {
	mu             sync.RWMutex
	touchDevice    *evdev.InputDevice
	mouseDevice    *evdev.InputDevice
	keyboardDevice *evdev.InputDevice
	onPointerEvent func(input.PointerEvent)
	onKeyEvent     func(code int, down bool)
	onTick         func()
	capturing      bool
	ctx            context.Context
	cancel         context.CancelFunc
	touchPath      string
	mousePath      string
	keyboardPath   string
	devicesGrabbed bool
}

// NewCapture creates a capture with optional explicit device paths; empty
// paths trigger automatic discovery.
func NewCapture(touchPath, mousePath, keyboardPath string) *Capture {
	return &Capture{
		touchPath:    touchPath,
		mousePath:    mousePath,
		keyboardPath: keyboardPath,
	}
}

// OnPointerEvent sets the callback for translated pointer events.
func (c *Capture) OnPointerEvent(callback func(input.PointerEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPointerEvent = callback
}

// OnKeyEvent sets the callback for keyboard key events.
func (c *Capture) OnKeyEvent(callback func(code int, down bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onKeyEvent = callback
}

// OnTick sets a callback invoked periodically while capturing, used to drive
// time-based gesture state.
func (c *Capture) OnTick(callback func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = callback
}

// Start opens the devices and starts the reader goroutines.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capturing {
		return fmt.Errorf("already capturing")
	}

	if c.touchPath != "" {
		dev, err := evdev.Open(c.touchPath)
		if err != nil {
			return fmt.Errorf("failed to open configured touch device %s: %w", c.touchPath, err)
		}
		c.touchDevice = dev
		logger.Infof("Using configured touch device: %s", c.touchPath)
	} else if dev, err := findDevice(isTouchDevice); err != nil {
		logger.Warnf("No touch device found: %v", err)
	} else {
		c.touchDevice = dev
	}

	if c.mousePath != "" {
		dev, err := evdev.Open(c.mousePath)
		if err != nil {
			logger.Warnf("Failed to open configured mouse device %s: %v", c.mousePath, err)
		} else {
			c.mouseDevice = dev
			logger.Infof("Using configured mouse device: %s", c.mousePath)
		}
	} else if dev, err := findDevice(isMouseDevice); err != nil {
		logger.Warnf("No mouse device found: %v", err)
	} else {
		c.mouseDevice = dev
	}

	if c.keyboardPath != "" {
		dev, err := evdev.Open(c.keyboardPath)
		if err != nil {
			logger.Warnf("Failed to open configured keyboard device %s: %v", c.keyboardPath, err)
		} else {
			c.keyboardDevice = dev
			logger.Infof("Using configured keyboard device: %s", c.keyboardPath)
		}
	} else if dev, err := findDevice(isKeyboardDevice); err != nil {
		logger.Warnf("No keyboard device found: %v", err)
	} else {
		c.keyboardDevice = dev
	}

	if c.touchDevice == nil && c.mouseDevice == nil && c.keyboardDevice == nil {
		return fmt.Errorf("no input devices available")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.capturing = true

	if c.touchDevice != nil {
		go c.captureTouchEvents()
	}
	go c.runTicker()
	if c.mouseDevice != nil {
		go c.captureMouseEvents()
	}
	if c.keyboardDevice != nil {
		go c.captureKeyboardEvents()
	}

	logger.Info("Evdev input capture started")
	return nil
}

// Stop stops the reader goroutines and releases the devices.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return nil
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.devicesGrabbed {
		c.ungrabDevices()
	}
	c.touchDevice = nil
	c.mouseDevice = nil
	c.keyboardDevice = nil
	c.capturing = false
	logger.Info("Evdev input capture stopped")
	return nil
}

// Grab takes exclusive access to the devices so events stop reaching the
// local session while they are forwarded.
func (c *Capture) Grab() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.devicesGrabbed {
		return nil
	}
	for _, dev := range []*evdev.InputDevice{c.touchDevice, c.mouseDevice, c.keyboardDevice} {
		if dev == nil {
			continue
		}
		if err := dev.Grab(); err != nil {
			c.ungrabDevices()
			return fmt.Errorf("failed to grab input device: %w", err)
		}
	}
	c.devicesGrabbed = true
	return nil
}

// Ungrab releases exclusive access.
func (c *Capture) Ungrab() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.devicesGrabbed {
		c.ungrabDevices()
	}
}

func (c *Capture) ungrabDevices() {
	for _, dev := range []*evdev.InputDevice{c.touchDevice, c.mouseDevice, c.keyboardDevice} {
		if dev != nil {
			dev.Release()
		}
	}
	c.devicesGrabbed = false
}

// runTicker drives the periodic callback on its own goroutine. A touch read
// blocked on a motionless finger must not delay gesture timeouts.
func (c *Capture) runTicker() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mu.RLock()
			tick := c.onTick
			c.mu.RUnlock()
			if tick != nil {
				tick()
			}
		}
	}
}

func (c *Capture) pointerCallback() func(input.PointerEvent) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onPointerEvent
}

// captureTouchEvents accumulates multitouch protocol-B state between sync
// reports and emits one pointer event per report.
func (c *Capture) captureTouchEvents() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Touch capture panic: %v", r)
		}
	}()

	logger.Debug("Starting touch event capture")

	state := newTouchState()

	for {
		select {
		case <-c.ctx.Done():
			logger.Debug("Touch capture context cancelled")
			return
		default:
			events, err := c.touchDevice.Read()
			if err != nil {
				if !strings.Contains(err.Error(), "resource temporarily unavailable") {
					logger.Errorf("Error reading touch events: %v", err)
				}
				time.Sleep(5 * time.Millisecond)
				continue
			}

			for _, event := range events {
				if ev, ok := state.feed(event); ok {
					if callback := c.pointerCallback(); callback != nil {
						callback(ev)
					}
				}
			}
		}
	}
}

// captureMouseEvents reads a hardware mouse; motion accumulates and flushes
// on a short ticker to cap the event rate.
func (c *Capture) captureMouseEvents() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Mouse capture panic: %v", r)
		}
	}()

	logger.Debug("Starting mouse event capture")

	var accX, accY int32
	var buttons input.ButtonMask
	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			logger.Debug("Mouse capture context cancelled")
			return
		case <-ticker.C:
			if accX == 0 && accY == 0 {
				continue
			}
			if callback := c.pointerCallback(); callback != nil {
				callback(input.PointerEvent{
					Action:   input.ActionMove,
					ToolType: input.ToolMouse,
					Source:   input.SourceMouse,
					Buttons:  buttons,
					RelX:     float64(accX),
					RelY:     float64(accY),
					Time:     time.Now(),
				})
			}
			accX, accY = 0, 0
		default:
			events, err := c.mouseDevice.Read()
			if err != nil {
				if !strings.Contains(err.Error(), "resource temporarily unavailable") {
					logger.Errorf("Error reading mouse events: %v", err)
				}
				time.Sleep(5 * time.Millisecond)
				continue
			}

			for _, event := range events {
				switch event.Type {
				case evdev.EV_REL:
					switch event.Code {
					case evdev.REL_X:
						accX += event.Value
					case evdev.REL_Y:
						accY += event.Value
					case evdev.REL_WHEEL:
						c.emitMouseScroll(0, float64(event.Value))
					case evdev.REL_HWHEEL:
						c.emitMouseScroll(float64(event.Value), 0)
					}
				case evdev.EV_KEY:
					if btn, ok := mouseButton(event.Code); ok {
						buttons = c.emitMouseButton(btn, buttons, event.Value == 1)
					}
				}
			}
		}
	}
}

func (c *Capture) captureKeyboardEvents() {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("Keyboard capture panic: %v", r)
		}
	}()

	logger.Debug("Starting keyboard event capture")

	for {
		select {
		case <-c.ctx.Done():
			logger.Debug("Keyboard capture context cancelled")
			return
		default:
			events, err := c.keyboardDevice.Read()
			if err != nil {
				if !strings.Contains(err.Error(), "resource temporarily unavailable") {
					logger.Errorf("Error reading keyboard events: %v", err)
				}
				time.Sleep(5 * time.Millisecond)
				continue
			}

			for _, event := range events {
				if event.Type != evdev.EV_KEY {
					continue
				}
				// Skip autorepeat; only press and release travel.
				if event.Value != 0 && event.Value != 1 {
					continue
				}
				c.mu.RLock()
				callback := c.onKeyEvent
				c.mu.RUnlock()
				if callback != nil {
					callback(int(event.Code), event.Value == 1)
				}
			}
		}
	}
}

func (c *Capture) emitMouseScroll(dx, dy float64) {
	if callback := c.pointerCallback(); callback != nil {
		callback(input.PointerEvent{
			Action:   input.ActionScroll,
			ToolType: input.ToolMouse,
			Source:   input.SourceMouse,
			ScrollX:  dx,
			ScrollY:  dy,
			Time:     time.Now(),
		})
	}
}

func (c *Capture) emitMouseButton(button input.Button, held input.ButtonMask, pressed bool) input.ButtonMask {
	mask := buttonMask(button)
	if pressed {
		held |= mask
	} else {
		held &^= mask
	}

	action := input.ActionButtonRelease
	if pressed {
		action = input.ActionButtonPress
	}
	if callback := c.pointerCallback(); callback != nil {
		callback(input.PointerEvent{
			Action:       action,
			ToolType:     input.ToolMouse,
			Source:       input.SourceMouse,
			Buttons:      held,
			ActionButton: button,
			Time:         time.Now(),
		})
	}
	return held
}

func mouseButton(code uint16) (input.Button, bool) {
	switch code {
	case evdev.BTN_LEFT:
		return input.ButtonLeft, true
	case evdev.BTN_RIGHT:
		return input.ButtonRight, true
	case evdev.BTN_MIDDLE:
		return input.ButtonMiddle, true
	default:
		return input.ButtonUndefined, false
	}
}

func buttonMask(button input.Button) input.ButtonMask {
	switch button {
	case input.ButtonLeft:
		return input.MaskPrimary
	case input.ButtonRight:
		return input.MaskSecondary
	case input.ButtonMiddle:
		return input.MaskTertiary
	default:
		return 0
	}
}

func findDevice(match func(*evdev.InputDevice) bool) (*evdev.InputDevice, error) {
	devices, err := evdev.ListInputDevices("/dev/input/event*")
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if match(dev) {
			logger.Infof("Found input device: %s at %s", dev.Name, dev.Fn)
			return dev, nil
		}
	}
	return nil, fmt.Errorf("no matching device")
}

func isTouchDevice(dev *evdev.InputDevice) bool {
	return hasEventCode(dev, evdev.EV_ABS, evdev.ABS_MT_POSITION_X) ||
		(hasEventCode(dev, evdev.EV_ABS, evdev.ABS_X) && hasEventCode(dev, evdev.EV_KEY, evdev.BTN_TOUCH))
}

func isMouseDevice(dev *evdev.InputDevice) bool {
	return hasEventCode(dev, evdev.EV_REL, evdev.REL_X) && hasEventCode(dev, evdev.EV_KEY, evdev.BTN_LEFT)
}

func isKeyboardDevice(dev *evdev.InputDevice) bool {
	return hasEventCode(dev, evdev.EV_KEY, evdev.KEY_A) && hasEventCode(dev, evdev.EV_KEY, evdev.KEY_SPACE)
}

func hasEventCode(dev *evdev.InputDevice, evType int, code int) bool {
	for capType, codes := range dev.Capabilities {
		if capType.Type != evType {
			continue
		}
		for _, c := range codes {
			if c.Code == code {
				return true
			}
		}
	}
	return false
}

// IsAvailable reports whether evdev devices can be enumerated at all.
func IsAvailable() bool {
	if _, err := os.Stat("/dev/input"); os.IsNotExist(err) {
		return false
	}
	devices, err := evdev.ListInputDevices("/dev/input/event*")
	return err == nil && len(devices) > 0
}

// touchState tracks multitouch protocol-B slot state between sync reports.
type touchState struct {
	slot      int
	contacts  map[int]*contact
	prevCount int
	lastSeen  []input.Pointer
	mtSeen    bool
}

type contact struct {
	id   int
	x, y float64
}

func newTouchState() *touchState {
	return &touchState{contacts: map[int]*contact{}}
}

// feed consumes one raw evdev event; on a sync report it returns the
// assembled pointer event.
func (s *touchState) feed(event evdev.InputEvent) (input.PointerEvent, bool) {
	switch event.Type {
	case evdev.EV_ABS:
		s.feedAbs(event.Code, event.Value)
	case evdev.EV_KEY:
		// Single-touch devices signal contact through BTN_TOUCH;
		// multitouch devices manage contacts via tracking ids.
		if event.Code == evdev.BTN_TOUCH && !s.mtSeen {
			if event.Value == 1 {
				if s.contacts[0] == nil {
					s.contacts[0] = &contact{}
				}
			} else {
				delete(s.contacts, 0)
			}
		}
	case evdev.EV_SYN:
		if event.Code == evdev.SYN_REPORT {
			return s.report()
		}
	}
	return input.PointerEvent{}, false
}

func (s *touchState) feedAbs(code uint16, value int32) {
	switch code {
	case evdev.ABS_MT_SLOT:
		s.mtSeen = true
		s.slot = int(value)
	case evdev.ABS_MT_TRACKING_ID:
		s.mtSeen = true
		if value < 0 {
			delete(s.contacts, s.slot)
		} else {
			s.contacts[s.slot] = &contact{id: int(value)}
		}
	case evdev.ABS_MT_POSITION_X:
		if ct := s.contacts[s.slot]; ct != nil {
			ct.x = float64(value)
		}
	case evdev.ABS_MT_POSITION_Y:
		if ct := s.contacts[s.slot]; ct != nil {
			ct.y = float64(value)
		}
	case evdev.ABS_X:
		// Single-touch fallback path uses slot 0.
		if ct := s.contacts[0]; ct != nil {
			ct.x = float64(value)
		}
	case evdev.ABS_Y:
		if ct := s.contacts[0]; ct != nil {
			ct.y = float64(value)
		}
	}
}

func (s *touchState) report() (input.PointerEvent, bool) {
	count := len(s.contacts)

	var action input.Action
	switch {
	case count > s.prevCount && s.prevCount == 0:
		action = input.ActionDown
	case count > s.prevCount:
		action = input.ActionPointerDown
	case count < s.prevCount && count == 0:
		action = input.ActionUp
	case count < s.prevCount:
		action = input.ActionPointerUp
	case count > 0:
		action = input.ActionMove
	default:
		return input.PointerEvent{}, false
	}

	pointers := s.snapshot()
	if count == 0 {
		// The final up must still carry the last known positions.
		pointers = s.lastSeen
	} else {
		s.lastSeen = pointers
	}
	s.prevCount = count

	return input.PointerEvent{
		Action:   action,
		Pointers: pointers,
		ToolType: input.ToolFinger,
		Source:   input.SourceTouchscreen,
		Time:     time.Now(),
	}, true
}

func (s *touchState) snapshot() []input.Pointer {
	slots := make([]int, 0, len(s.contacts))
	for slot := range s.contacts {
		slots = append(slots, slot)
	}
	sort.Ints(slots)

	pointers := make([]input.Pointer, 0, len(slots))
	for _, slot := range slots {
		ct := s.contacts[slot]
		pointers = append(pointers, input.Pointer{ID: ct.id, X: ct.x, Y: ct.y})
	}
	return pointers
}
