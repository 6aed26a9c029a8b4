// Package x11 owns the connection to the remote display server: negotiation,
// event draining, protocol error decoding, input request encoding and
// clipboard synchronization.
package x11

import (
	"fmt"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/bkodra/xtouch/internal/xtouchext"
)

// RequestDiagnostic is a protocol-level request error decoded into names a
// human can act on. Request errors are non-fatal; the failed request is
// simply dropped.
type RequestDiagnostic struct {
	Kind      string
	Sequence  uint16
	BadValue  uint32
	Major     byte
	Minor     uint16
	Request   string
	Extension string
}

func (d *RequestDiagnostic) Error() string {
	if d.Extension != "" {
		return fmt.Sprintf("%s error in %s request %s (major %d, minor %d), bad value %d, sequence %d",
			d.Kind, d.Extension, d.Request, d.Major, d.Minor, d.BadValue, d.Sequence)
	}
	return fmt.Sprintf("%s error in request %s (major %d), bad value %d, sequence %d",
		d.Kind, d.Request, d.Major, d.BadValue, d.Sequence)
}

// Core protocol request names for the opcodes this client can issue, plus
// neighbours useful when reading foreign traffic in logs.
var coreRequestNames = map[byte]string{
	1:   "CreateWindow",
	2:   "ChangeWindowAttributes",
	3:   "GetWindowAttributes",
	4:   "DestroyWindow",
	8:   "MapWindow",
	10:  "UnmapWindow",
	16:  "InternAtom",
	17:  "GetAtomName",
	18:  "ChangeProperty",
	19:  "DeleteProperty",
	20:  "GetProperty",
	22:  "SetSelectionOwner",
	23:  "GetSelectionOwner",
	24:  "ConvertSelection",
	25:  "SendEvent",
	38:  "QueryPointer",
	41:  "WarpPointer",
	43:  "GetInputFocus",
	98:  "QueryExtension",
	99:  "ListExtensions",
	127: "NoOperation",
}

// Requests of the XFIXES extension by minor opcode.
var xfixesRequestNames = map[uint16]string{
	0: "QueryVersion",
	1: "ChangeSaveSet",
	2: "SelectSelectionInput",
	3: "SelectCursorInput",
	4: "GetCursorImage",
}

// Requests of the XTOUCH extension by minor opcode.
var xtouchRequestNames = map[uint16]string{
	0: "ScreenSizeChange",
	1: "MouseEvent",
	2: "TouchEvent",
	3: "KeyEvent",
	4: "UnicodeEvent",
}

// DecodeError turns an xgb protocol error into a structured diagnostic,
// resolving extension and request names from the connection's negotiated
// opcodes. A nil connection still yields core-request resolution.
func DecodeError(c *xgb.Conn, err xgb.Error) *RequestDiagnostic {
	d := &RequestDiagnostic{Kind: "Unknown", Sequence: err.SequenceId(), BadValue: err.BadId()}

	switch e := err.(type) {
	case xproto.RequestError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.ValueError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.WindowError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.AtomError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.MatchError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.AccessError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.DrawableError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.IDChoiceError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.AllocError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	case xproto.ImplementationError:
		d.fill(e.NiceName, e.Sequence, e.BadValue, e.MajorOpcode, e.MinorOpcode)
	default:
		d.Request = err.Error()
		return d
	}

	d.resolveNames(c)
	return d
}

func (d *RequestDiagnostic) fill(kind string, seq uint16, bad uint32, major byte, minor uint16) {
	d.Kind = kind
	d.Sequence = seq
	d.BadValue = bad
	d.Major = major
	d.Minor = minor
}

func (d *RequestDiagnostic) resolveNames(c *xgb.Conn) {
	if d.Major < 128 {
		if name, ok := coreRequestNames[d.Major]; ok {
			d.Request = name
		} else {
			d.Request = fmt.Sprintf("Core#%d", d.Major)
		}
		return
	}

	d.Extension = extensionNameFor(c, d.Major)
	switch d.Extension {
	case "XFIXES":
		d.Request = xfixesRequestNames[d.Minor]
	case xtouchext.ExtName:
		d.Request = xtouchRequestNames[d.Minor]
	}
	if d.Request == "" {
		d.Request = fmt.Sprintf("Minor#%d", d.Minor)
	}
}

func extensionNameFor(c *xgb.Conn, major byte) string {
	if c == nil {
		return ""
	}
	c.ExtLock.RLock()
	defer c.ExtLock.RUnlock()
	for name, opcode := range c.Extensions {
		if opcode == major {
			return name
		}
	}
	return ""
}
