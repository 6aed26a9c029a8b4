package x11

import (
	"github.com/bkodra/xtouch/internal/input"
	"github.com/bkodra/xtouch/internal/xtouchext"
)

// Wheel motion travels as a pointer event with this pseudo-button and
// relative deltas.
const buttonScroll = 4

// Sender encodes input intents as XTOUCH requests on whatever connection is
// currently live. With no connection, or with the extension missing, every
// send is a silent no-op so the input pipeline never stalls.
type Sender struct {
	m *Manager

	preferScancodes bool
}

// Sender returns the protocol encoder bound to this manager.
func (m *Manager) Sender() *Sender {
	return &Sender{m: m, preferScancodes: true}
}

// SetPreferScancodes controls whether raw scan codes win over translated
// platform keycodes.
func (s *Sender) SetPreferScancodes(prefer bool) {
	s.preferScancodes = prefer
}

func (s *Sender) conn() *connection {
	c := s.m.current()
	if c == nil || !c.hasInput {
		return nil
	}
	return c
}

func (s *Sender) SendPointerEvent(x, y float64, button input.Button, down bool, relative bool) {
	c := s.conn()
	if c == nil {
		return
	}
	xtouchext.MouseEvent(c.xc, float32(x), float32(y), byte(button), down, relative)
}

func (s *Sender) SendMouseWheel(dx, dy float64) {
	c := s.conn()
	if c == nil {
		return
	}
	xtouchext.MouseEvent(c.xc, float32(dx), float32(dy), buttonScroll, false, true)
}

func (s *Sender) SendCursorMove(x, y float64) {
	c := s.conn()
	if c == nil {
		return
	}
	xtouchext.MouseEvent(c.xc, float32(x), float32(y), byte(input.ButtonUndefined), false, false)
}

func (s *Sender) SendTouchEvent(action input.TouchAction, id int, x, y int) {
	c := s.conn()
	if c == nil {
		return
	}
	// Requests are written to the wire as they are issued, so a flush
	// marker has nothing left to do.
	if action == input.TouchFlush {
		return
	}
	xtouchext.TouchEvent(c.xc, uint16(action), uint16(id), uint16(x), uint16(y))
}

// SendKeyEvent translates and encodes a key. The scan code wins over the
// platform keycode; the wire carries linux code + 8, the X keycode offset.
func (s *Sender) SendKeyEvent(scanCode, keyCode int, down bool) bool {
	resolved := scanCode
	if !s.preferScancodes {
		resolved = 0
	}
	code, ok := ResolveKeycode(resolved, keyCode)
	if !ok {
		// The keycode did not translate; fall back to whatever the
		// device reported.
		code, ok = ResolveKeycode(scanCode, keyCode)
	}
	if !ok {
		return false
	}
	if c := s.conn(); c != nil {
		xtouchext.KeyEvent(c.xc, uint16(code+8), down)
	}
	return true
}

func (s *Sender) SendUnicode(codePoint rune) {
	c := s.conn()
	if c == nil {
		return
	}
	xtouchext.UnicodeEvent(c.xc, uint32(codePoint))
}

func (s *Sender) SendScreenSize(width, height int) {
	c := s.conn()
	if c == nil {
		return
	}
	xtouchext.ScreenSizeChange(c.xc, uint16(width), uint16(height))
}
