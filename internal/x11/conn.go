package x11

import (
	"fmt"
	"net"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xfixes"
	"github.com/jezek/xgb/xproto"

	"github.com/bkodra/xtouch/internal/logger"
	"github.com/bkodra/xtouch/internal/xtouchext"
)

// Name of the private property used as the clipboard transfer target.
const transferAtomName = "XTOUCH_CLIP"

// connection is the negotiated state derived from one live server
// connection. It is immutable after install; replacement tears the whole
// thing down first.
type connection struct {
	xc    *xgb.Conn
	root  xproto.Window
	proxy xproto.Window

	screenWidth  int
	screenHeight int

	atomClipboard xproto.Atom
	atomTransfer  xproto.Atom

	hasInput  bool
	hasXfixes bool
}

// drained carries one item off the wire: either an event or a protocol error.
type drained struct {
	ev  xgb.Event
	err xgb.Error
}

// Manager owns the transport handle to the display server. At most one
// connection is live; Connect tears down the previous connection and its
// worker goroutines completely before installing the next.
type Manager struct {
	clipboard *Clipboard

	mu   sync.Mutex
	conn *connection

	wg sync.WaitGroup
}

// NewManager builds a manager that feeds selection traffic to clipboard,
// which may be nil to ignore it.
func NewManager(clipboard *Clipboard) *Manager {
	return &Manager{clipboard: clipboard}
}

// ConnectDisplay dials the display server named by an X display string.
func (m *Manager) ConnectDisplay(display string) error {
	xc, err := xgb.NewConnDisplay(display)
	if err != nil {
		return fmt.Errorf("connect to display %q: %w", display, err)
	}
	return m.install(xc)
}

// ConnectFD adopts an already-connected socket descriptor handed over by the
// transport bootstrap.
func (m *Manager) ConnectFD(fd int) error {
	f := os.NewFile(uintptr(fd), "x11-socket")
	if f == nil {
		return fmt.Errorf("invalid socket descriptor %d", fd)
	}
	nc, err := net.FileConn(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("adopt socket descriptor %d: %w", fd, err)
	}
	xc, err := xgb.NewConnNet(nc)
	if err != nil {
		nc.Close()
		return fmt.Errorf("handshake on descriptor %d: %w", fd, err)
	}
	return m.install(xc)
}

// install negotiates extensions and clipboard plumbing on a fresh connection
// and starts its drain workers. Protocol-level errors during negotiation are
// logged and the affected feature disabled; only transport errors abort.
func (m *Manager) install(xc *xgb.Conn) error {
	m.Close()

	c := &connection{xc: xc}
	screen := xproto.Setup(xc).DefaultScreen(xc)
	c.root = screen.Root
	c.screenWidth = int(screen.WidthInPixels)
	c.screenHeight = int(screen.HeightInPixels)

	// Extension negotiation failures disable the feature but never abort
	// setup; a genuine transport fault resurfaces on the atom requests
	// below and aborts there.
	if err := xtouchext.Init(xc); err != nil {
		logProtocolError(xc, "negotiate "+xtouchext.ExtName, err)
	} else {
		c.hasInput = true
	}

	if err := xfixes.Init(xc); err != nil {
		logProtocolError(xc, "negotiate XFIXES", err)
	} else {
		c.hasXfixes = true
		if _, err := xfixes.QueryVersion(xc, 4, 0).Reply(); err != nil {
			logProtocolError(xc, "XFIXES version", err)
		}
	}

	var err error
	if c.atomClipboard, err = internAtom(xc, "CLIPBOARD"); err != nil {
		xc.Close()
		return err
	}
	if c.atomTransfer, err = internAtom(xc, transferAtomName); err != nil {
		xc.Close()
		return err
	}

	if c.hasXfixes && c.atomClipboard != 0 {
		err := xfixes.SelectSelectionInputChecked(xc, c.root, c.atomClipboard,
			xfixes.SelectionEventMaskSetSelectionOwner).Check()
		if err != nil {
			logProtocolError(xc, "select selection input", err)
		}
	}

	if proxy, err := createProxyWindow(xc, c.root); err != nil {
		logProtocolError(xc, "create proxy window", err)
	} else {
		c.proxy = proxy
	}

	m.mu.Lock()
	m.conn = c
	m.mu.Unlock()

	ch := make(chan drained, 16)
	m.wg.Add(2)
	go m.readEvents(c, ch)
	go m.dispatch(c, ch)

	logger.Infof("x11: connected, input extension %v, clipboard proxy %#x", c.hasInput, c.proxy)
	return nil
}

// Close tears down the current connection and waits until its drain workers
// have fully stopped.
func (m *Manager) Close() {
	m.mu.Lock()
	c := m.conn
	m.conn = nil
	m.mu.Unlock()

	if c != nil {
		c.xc.Close()
	}
	m.wg.Wait()
}

// current returns the live connection, or nil.
func (m *Manager) current() *connection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

// ScreenSize returns the root screen dimensions of the live connection in
// pixels, or zeros when disconnected.
func (m *Manager) ScreenSize() (int, int) {
	c := m.current()
	if c == nil {
		return 0, 0
	}
	return c.screenWidth, c.screenHeight
}

// SetClipboardSyncEnabled flips the clipboard toggle, if a clipboard is
// attached.
func (m *Manager) SetClipboardSyncEnabled(enabled bool) {
	if m.clipboard != nil {
		m.clipboard.SetSyncEnabled(enabled)
	}
}

// readEvents is the wire-owning worker: it blocks on the transport and hands
// everything to the dispatcher over a channel.
func (m *Manager) readEvents(c *connection, ch chan<- drained) {
	defer m.wg.Done()
	defer close(ch)
	for {
		ev, err := c.xc.WaitForEvent()
		if ev == nil && err == nil {
			logger.Info("x11: connection closed")
			return
		}
		ch <- drained{ev: ev, err: err}
	}
}

// dispatch consumes drained items and routes selection traffic into the
// clipboard.
func (m *Manager) dispatch(c *connection, ch <-chan drained) {
	defer m.wg.Done()
	for d := range ch {
		if d.err != nil {
			logger.Warnf("x11: %v", DecodeError(c.xc, d.err))
			continue
		}
		if m.clipboard == nil {
			continue
		}
		switch d.ev.(type) {
		case xfixes.SelectionNotifyEvent:
			// New selection owner on the server side.
			if err := m.clipboard.HandleOwnerChange(c); err != nil {
				logProtocolError(c.xc, "request selection conversion", err)
			}
		case xproto.SelectionNotifyEvent:
			// Conversion finished; the transfer property is ready.
			if err := m.clipboard.HandleSelectionNotify(c); err != nil {
				logProtocolError(c.xc, "fetch clipboard property", err)
			}
		}
	}
}

func internAtom(xc *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(xc, false, uint16(len(name)), name).Reply()
	if err != nil {
		if fatal := asTransportError(err); fatal != nil {
			return 0, fmt.Errorf("intern atom %q: %w", name, fatal)
		}
		logProtocolError(xc, "intern atom "+name, err)
		return 0, nil
	}
	return reply.Atom, nil
}

// createProxyWindow creates the hidden input-only window that receives
// selection conversion replies.
func createProxyWindow(xc *xgb.Conn, root xproto.Window) (xproto.Window, error) {
	wid, err := xproto.NewWindowId(xc)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(xc, 0, wid, root, 0, 0, 10, 10, 0,
		xproto.WindowClassInputOnly, 0,
		xproto.CwOverrideRedirect, []uint32{1}).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

// RequestConversion implements Requester against the live connection. With
// clipboard plumbing unavailable it degrades to a no-op.
func (c *connection) RequestConversion() error {
	if c.proxy == 0 || c.atomClipboard == 0 || c.atomTransfer == 0 {
		return nil
	}
	return xproto.ConvertSelectionChecked(c.xc, c.proxy, c.atomClipboard,
		xproto.AtomString, c.atomTransfer, xproto.TimeCurrentTime).Check()
}

// PropertySize probes the transfer property without fetching any data.
func (c *connection) PropertySize() (uint32, error) {
	if c.proxy == 0 || c.atomTransfer == 0 {
		return 0, nil
	}
	reply, err := xproto.GetProperty(c.xc, false, c.proxy, c.atomTransfer,
		xproto.GetPropertyTypeAny, 0, 0).Reply()
	if err != nil {
		return 0, err
	}
	return reply.BytesAfter, nil
}

// ReadProperty fetches exactly size bytes of the transfer property.
func (c *connection) ReadProperty(size uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.xc, false, c.proxy, c.atomTransfer,
		xproto.GetPropertyTypeAny, 0, (size+3)/4).Reply()
	if err != nil {
		return nil, err
	}
	data := reply.Value
	if uint32(len(data)) > size {
		data = data[:size]
	}
	return data, nil
}

// asTransportError returns the error when it is connection-level rather than
// a protocol request error, nil otherwise.
func asTransportError(err error) error {
	if _, ok := err.(xgb.Error); ok {
		return nil
	}
	return err
}

// logProtocolError logs a non-fatal request failure, decoding protocol
// errors into named diagnostics.
func logProtocolError(xc *xgb.Conn, context string, err error) {
	if xerr, ok := err.(xgb.Error); ok {
		logger.Warnf("x11: %s: %v", context, DecodeError(xc, xerr))
		return
	}
	logger.Warnf("x11: %s: %v", context, err)
}
