package x11

import (
	"strings"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"

	"github.com/bkodra/xtouch/internal/xtouchext"
)

func TestDecodeErrorCoreRequest(t *testing.T) {
	err := xproto.ValueError{
		Sequence:    42,
		NiceName:    "Value",
		BadValue:    7,
		MinorOpcode: 0,
		MajorOpcode: 16,
	}

	d := DecodeError(nil, err)
	if d.Kind != "Value" {
		t.Errorf("kind = %q, want %q", d.Kind, "Value")
	}
	if d.Request != "InternAtom" {
		t.Errorf("request = %q, want %q", d.Request, "InternAtom")
	}
	if d.Extension != "" {
		t.Errorf("extension = %q, want empty", d.Extension)
	}
	if !strings.Contains(d.Error(), "InternAtom") {
		t.Errorf("diagnostic %q does not name the request", d.Error())
	}
}

func TestDecodeErrorExtensionRequest(t *testing.T) {
	conn := &xgb.Conn{Extensions: map[string]byte{
		"XFIXES":          0x86,
		xtouchext.ExtName: 0x87,
	}}

	err := xproto.WindowError{
		Sequence:    7,
		NiceName:    "Window",
		BadValue:    99,
		MinorOpcode: 2,
		MajorOpcode: 0x86,
	}

	d := DecodeError(conn, err)
	if d.Extension != "XFIXES" {
		t.Errorf("extension = %q, want XFIXES", d.Extension)
	}
	if d.Request != "SelectSelectionInput" {
		t.Errorf("request = %q, want SelectSelectionInput", d.Request)
	}

	err2 := xproto.ValueError{
		Sequence:    8,
		NiceName:    "Value",
		MinorOpcode: 1,
		MajorOpcode: 0x87,
	}
	d2 := DecodeError(conn, err2)
	if d2.Extension != xtouchext.ExtName {
		t.Errorf("extension = %q, want %q", d2.Extension, xtouchext.ExtName)
	}
	if d2.Request != "MouseEvent" {
		t.Errorf("request = %q, want MouseEvent", d2.Request)
	}
}

func TestDecodeErrorUnknownOpcodes(t *testing.T) {
	err := xproto.RequestError{
		Sequence:    1,
		NiceName:    "Request",
		MajorOpcode: 111,
	}
	d := DecodeError(nil, err)
	if d.Request != "Core#111" {
		t.Errorf("request = %q, want Core#111", d.Request)
	}

	// Extension opcode on a connection that never negotiated it.
	err.MajorOpcode = 200
	err.MinorOpcode = 9
	d = DecodeError(nil, err)
	if d.Extension != "" {
		t.Errorf("extension = %q, want empty", d.Extension)
	}
	if d.Request != "Minor#9" {
		t.Errorf("request = %q, want Minor#9", d.Request)
	}
}
