// Package xtouchext exposes the XTOUCH vendor extension, the input side
// channel of the remote display server. It is written in the style of the
// generated xgb protocol bindings so it composes with jezek/xgb connections.
package xtouchext

import (
	"math"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// ExtName is the name the server advertises for the input extension.
const ExtName = "XTOUCH"

// Minor opcodes of the extension requests.
const (
	opScreenSizeChange = 0
	opMouseEvent       = 1
	opTouchEvent       = 2
	opKeyEvent         = 3
	opUnicodeEvent     = 4
)

// Init must be called before using the XTOUCH extension.
func Init(c *xgb.Conn) error {
	reply, err := xproto.QueryExtension(c, uint16(len(ExtName)), ExtName).Reply()
	switch {
	case err != nil:
		return err
	case !reply.Present:
		return xgb.Errorf("No extension named XTOUCH could be found on the server.")
	}

	c.ExtLock.Lock()
	c.Extensions[ExtName] = reply.MajorOpcode
	c.ExtLock.Unlock()
	for evNum, fun := range xgb.NewExtEventFuncs[ExtName] {
		xgb.NewEventFuncs[int(reply.FirstEvent)+evNum] = fun
	}
	for errNum, fun := range xgb.NewExtErrorFuncs[ExtName] {
		xgb.NewErrorFuncs[int(reply.FirstError)+errNum] = fun
	}
	return nil
}

func extMajorOpcode(c *xgb.Conn) byte {
	c.ExtLock.RLock()
	defer c.ExtLock.RUnlock()
	return c.Extensions[ExtName]
}

func checkInit(c *xgb.Conn, request string) {
	c.ExtLock.RLock()
	defer c.ExtLock.RUnlock()
	if _, ok := c.Extensions[ExtName]; !ok {
		panic("Cannot issue request '" + request + "' using the uninitialized extension 'XTOUCH'. xtouchext.Init(connObj) must be called first.")
	}
}

// ScreenSizeChangeCookie is a cookie used only for ScreenSizeChange requests.
type ScreenSizeChangeCookie struct {
	*xgb.Cookie
}

// ScreenSizeChange sends an unchecked request.
// If an error occurs, it can only be retrieved using xgb.WaitForEvent.
func ScreenSizeChange(c *xgb.Conn, Width uint16, Height uint16) ScreenSizeChangeCookie {
	checkInit(c, "ScreenSizeChange")
	cookie := c.NewCookie(false, false)
	c.NewRequest(screenSizeChangeRequest(c, Width, Height), cookie)
	return ScreenSizeChangeCookie{cookie}
}

// ScreenSizeChangeChecked sends a checked request.
// If an error occurs, it can be retrieved using ScreenSizeChangeCookie.Check.
func ScreenSizeChangeChecked(c *xgb.Conn, Width uint16, Height uint16) ScreenSizeChangeCookie {
	checkInit(c, "ScreenSizeChange")
	cookie := c.NewCookie(true, false)
	c.NewRequest(screenSizeChangeRequest(c, Width, Height), cookie)
	return ScreenSizeChangeCookie{cookie}
}

// Check returns an error if one occurred for checked requests that are not
// expected to return a reply.
func (cook ScreenSizeChangeCookie) Check() error {
	return cook.Cookie.Check()
}

// Write request to wire for ScreenSizeChange.
func screenSizeChangeRequest(c *xgb.Conn, Width uint16, Height uint16) []byte {
	size := 8
	b := 0
	buf := make([]byte, size)

	buf[b] = extMajorOpcode(c)
	b += 1

	buf[b] = opScreenSizeChange
	b += 1

	xgb.Put16(buf[b:], uint16(size/4))
	b += 2

	xgb.Put16(buf[b:], Width)
	b += 2

	xgb.Put16(buf[b:], Height)
	b += 2

	return buf
}

// MouseEventCookie is a cookie used only for MouseEvent requests.
type MouseEventCookie struct {
	*xgb.Cookie
}

// MouseEvent sends an unchecked request.
// X and Y are either absolute image coordinates or deltas when Relative is
// set; they travel as IEEE 754 single-precision bit patterns.
func MouseEvent(c *xgb.Conn, X float32, Y float32, Button byte, Pressed bool, Relative bool) MouseEventCookie {
	checkInit(c, "MouseEvent")
	cookie := c.NewCookie(false, false)
	c.NewRequest(mouseEventRequest(c, X, Y, Button, Pressed, Relative), cookie)
	return MouseEventCookie{cookie}
}

// Check returns an error if one occurred for checked requests that are not
// expected to return a reply.
func (cook MouseEventCookie) Check() error {
	return cook.Cookie.Check()
}

// Write request to wire for MouseEvent.
func mouseEventRequest(c *xgb.Conn, X float32, Y float32, Button byte, Pressed bool, Relative bool) []byte {
	size := 16
	b := 0
	buf := make([]byte, size)

	buf[b] = extMajorOpcode(c)
	b += 1

	buf[b] = opMouseEvent
	b += 1

	xgb.Put16(buf[b:], uint16(size/4))
	b += 2

	xgb.Put32(buf[b:], math.Float32bits(X))
	b += 4

	xgb.Put32(buf[b:], math.Float32bits(Y))
	b += 4

	buf[b] = Button
	b += 1

	if Pressed {
		buf[b] = 1
	} else {
		buf[b] = 0
	}
	b += 1

	if Relative {
		buf[b] = 1
	} else {
		buf[b] = 0
	}
	b += 1

	b += 1 // padding

	return buf
}

// TouchEventCookie is a cookie used only for TouchEvent requests.
type TouchEventCookie struct {
	*xgb.Cookie
}

// TouchEvent sends an unchecked request carrying one touch contact update.
func TouchEvent(c *xgb.Conn, Action uint16, Id uint16, X uint16, Y uint16) TouchEventCookie {
	checkInit(c, "TouchEvent")
	cookie := c.NewCookie(false, false)
	c.NewRequest(touchEventRequest(c, Action, Id, X, Y), cookie)
	return TouchEventCookie{cookie}
}

// Check returns an error if one occurred for checked requests that are not
// expected to return a reply.
func (cook TouchEventCookie) Check() error {
	return cook.Cookie.Check()
}

// Write request to wire for TouchEvent.
func touchEventRequest(c *xgb.Conn, Action uint16, Id uint16, X uint16, Y uint16) []byte {
	size := 12
	b := 0
	buf := make([]byte, size)

	buf[b] = extMajorOpcode(c)
	b += 1

	buf[b] = opTouchEvent
	b += 1

	xgb.Put16(buf[b:], uint16(size/4))
	b += 2

	xgb.Put16(buf[b:], Action)
	b += 2

	xgb.Put16(buf[b:], Id)
	b += 2

	xgb.Put16(buf[b:], X)
	b += 2

	xgb.Put16(buf[b:], Y)
	b += 2

	return buf
}

// KeyEventCookie is a cookie used only for KeyEvent requests.
type KeyEventCookie struct {
	*xgb.Cookie
}

// KeyEvent sends an unchecked request. Key carries a linux-style keycode
// already shifted into the X keycode range.
func KeyEvent(c *xgb.Conn, Key uint16, Pressed bool) KeyEventCookie {
	checkInit(c, "KeyEvent")
	cookie := c.NewCookie(false, false)
	c.NewRequest(keyEventRequest(c, Key, Pressed), cookie)
	return KeyEventCookie{cookie}
}

// Check returns an error if one occurred for checked requests that are not
// expected to return a reply.
func (cook KeyEventCookie) Check() error {
	return cook.Cookie.Check()
}

// Write request to wire for KeyEvent.
func keyEventRequest(c *xgb.Conn, Key uint16, Pressed bool) []byte {
	size := 8
	b := 0
	buf := make([]byte, size)

	buf[b] = extMajorOpcode(c)
	b += 1

	buf[b] = opKeyEvent
	b += 1

	xgb.Put16(buf[b:], uint16(size/4))
	b += 2

	xgb.Put16(buf[b:], Key)
	b += 2

	if Pressed {
		buf[b] = 1
	} else {
		buf[b] = 0
	}
	b += 1

	b += 1 // padding

	return buf
}

// UnicodeEventCookie is a cookie used only for UnicodeEvent requests.
type UnicodeEventCookie struct {
	*xgb.Cookie
}

// UnicodeEvent sends an unchecked request carrying a raw Unicode code point.
func UnicodeEvent(c *xgb.Conn, CodePoint uint32) UnicodeEventCookie {
	checkInit(c, "UnicodeEvent")
	cookie := c.NewCookie(false, false)
	c.NewRequest(unicodeEventRequest(c, CodePoint), cookie)
	return UnicodeEventCookie{cookie}
}

// Check returns an error if one occurred for checked requests that are not
// expected to return a reply.
func (cook UnicodeEventCookie) Check() error {
	return cook.Cookie.Check()
}

// Write request to wire for UnicodeEvent.
func unicodeEventRequest(c *xgb.Conn, CodePoint uint32) []byte {
	size := 8
	b := 0
	buf := make([]byte, size)

	buf[b] = extMajorOpcode(c)
	b += 1

	buf[b] = opUnicodeEvent
	b += 1

	xgb.Put16(buf[b:], uint16(size/4))
	b += 2

	xgb.Put32(buf[b:], CodePoint)
	b += 4

	return buf
}
