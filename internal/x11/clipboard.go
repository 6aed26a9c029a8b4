package x11

import (
	"bytes"
	"sync"
)

// Requester abstracts the selection-conversion protocol sequence so clipboard
// policy can be exercised without a live server connection.
type Requester interface {
	// RequestConversion asks the selection owner to write the clipboard
	// contents into the transfer property.
	RequestConversion() error
	// PropertySize probes the transfer property and returns the number of
	// bytes available without fetching them.
	PropertySize() (uint32, error)
	// ReadProperty fetches exactly size bytes from the transfer property.
	ReadProperty(size uint32) ([]byte, error)
}

// Clipboard tracks the sync-enabled toggle and turns selection notifications
// into text deliveries. The toggle is flipped from the UI thread while
// notifications arrive on the event-drain goroutine.
type Clipboard struct {
	mu      sync.Mutex
	enabled bool

	onText func(string)
}

// NewClipboard builds a clipboard with the given initial toggle state.
// Delivered text is handed to onText.
func NewClipboard(enabled bool, onText func(string)) *Clipboard {
	return &Clipboard{enabled: enabled, onText: onText}
}

// SetSyncEnabled flips the synchronization toggle.
func (c *Clipboard) SetSyncEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = enabled
}

// SyncEnabled reports the toggle state.
func (c *Clipboard) SyncEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// HandleOwnerChange reacts to a new selection owner. When sync is disabled no
// conversion is requested at all.
func (c *Clipboard) HandleOwnerChange(r Requester) error {
	if !c.SyncEnabled() {
		return nil
	}
	return r.RequestConversion()
}

// HandleSelectionNotify fetches the converted selection: a zero-size probe
// first, then an exact-size read. An empty property delivers nothing.
func (c *Clipboard) HandleSelectionNotify(r Requester) error {
	size, err := r.PropertySize()
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}
	data, err := r.ReadProperty(size)
	if err != nil {
		return err
	}
	if c.onText != nil {
		c.onText(propertyText(data))
	}
	return nil
}

// propertyText interprets raw property bytes as text, stopping at a NUL
// terminator if the owner wrote one.
func propertyText(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data)
}
