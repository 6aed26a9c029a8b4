package input

import (
	"math"
	"time"

	"github.com/bkodra/xtouch/internal/render"
)

// epsilon tolerates float error when testing mapped points against the image
// boundary.
const epsilon = 0.001

// Frontend receives the UI-facing side effects of gesture classification.
type Frontend interface {
	// MoveCursor reports the new cursor position in image space.
	MoveCursor(p render.Point)
	// ShowInputFeedback signals an accepted tap or hold at a position.
	ShowInputFeedback(kind FeedbackKind, p render.Point)
	SwipeUp()
	SwipeDown()
}

// Config carries the density-derived tunables of the classifier.
type Config struct {
	// Density is the display density factor used to scale dp thresholds.
	Density float64
	// EdgeSlopPx is the inset from the view edges inside which pan
	// gestures must originate.
	EdgeSlopPx int
	// SwipeThresholdDp is the accumulated motion, in dp, that triggers a
	// multi-finger swipe.
	SwipeThresholdDp float64
}

type bounds struct {
	left, top, right, bottom float64
}

func (b bounds) contains(x, y float64) bool {
	return x >= b.left && x < b.right && y >= b.top && y < b.bottom
}

// Handler is the gesture classification state machine. It demultiplexes raw
// pointer streams by device class, runs the tap/long-press/scroll/scale/swipe
// detectors and drives the active input strategy.
//
// Handler is not safe for concurrent use; all events must arrive on one
// goroutine.
type Handler struct {
	render   *render.State
	frontend Frontend
	sender   EventSender

	pan        *panDetector
	taps       *tapDetector
	scaler     *scaleDetector
	swipePinch *swipePinchDetector

	strategy Strategy
	mode     Mode

	// Nested handler processing genuine-touchpad sources in trackpad
	// semantics. Nil when this handler is itself the touchpad handler.
	touchpadHandler *Handler
	isTouchpad      bool

	mouse hardwareMouseState
	dex   dexState

	// Per-session gesture state.
	totalMotionY           float64
	suppressCursorMovement bool
	swipeCompleted         bool
	isDragging             bool

	// Derived from density at construction time. Density changes at
	// runtime are not re-observed.
	swipeThreshold float64
	edgeSlop       float64
	touchSlop      float64
	panBounds      bounds
}

// NewHandler builds a classifier bound to a render state, UI frontend and
// protocol sender.
func NewHandler(rs *render.State, frontend Frontend, sender EventSender, cfg Config) *Handler {
	return newHandler(rs, frontend, sender, cfg, false)
}

func newHandler(rs *render.State, frontend Frontend, sender EventSender, cfg Config, isTouchpad bool) *Handler {
	density := cfg.Density
	if density <= 0 {
		density = 1
	}
	swipeDp := cfg.SwipeThresholdDp
	if swipeDp <= 0 {
		swipeDp = 40
	}

	h := &Handler{
		render:     rs,
		frontend:   frontend,
		sender:     sender,
		isTouchpad: isTouchpad,
		// The swipe threshold must exceed the touch slop used by the
		// detectors so a gesture cannot be both a tap and a swipe.
		swipeThreshold: swipeDp * density,
		edgeSlop:       float64(cfg.EdgeSlopPx),
	}

	slop := defaultTouchSlopDp * density
	h.touchSlop = slop
	h.pan = &panDetector{slop: slop, onScroll: h.onScroll}
	h.taps = &tapDetector{
		slop:             slop,
		tapTimeout:       defaultTapTimeout,
		longPressTimeout: defaultLongPressTimeout,
		now:              time.Now,
		onTap:            h.onTap,
		onLongPress:      h.onLongPress,
	}
	h.scaler = &scaleDetector{}
	h.swipePinch = &swipePinchDetector{slop: slop}

	h.SetInputMode(ModeTrackpad)

	if !isTouchpad {
		h.touchpadHandler = newHandler(rs, frontend, sender, cfg, true)
	}
	return h
}

// SetInputMode swaps the active input strategy. Session state (drag and
// suppression flags) lives here, so switching mid-gesture is safe.
func (h *Handler) SetInputMode(mode Mode) {
	h.mode = mode
	h.strategy = NewStrategy(mode, h.render, h.sender)
}

// Mode returns the active input mode.
func (h *Handler) Mode() Mode {
	return h.mode
}

// HandleClientSizeChanged records a new local view size and recomputes the
// pan-gesture inset bounds.
func (h *Handler) HandleClientSizeChanged(w, hgt int) {
	h.render.SetScreenSize(w, hgt)
	h.panBounds = bounds{
		left:   h.edgeSlop,
		top:    h.edgeSlop,
		right:  float64(w) - h.edgeSlop,
		bottom: float64(hgt) - h.edgeSlop,
	}
	h.sender.SendScreenSize(w, hgt)
	if h.touchpadHandler != nil {
		h.touchpadHandler.panBounds = h.panBounds
	}
}

// HandleHostSizeChanged records a new remote framebuffer size and re-centers
// the cursor.
func (h *Handler) HandleHostSizeChanged(w, hgt int) {
	h.render.SetImageSize(w, hgt)
	h.moveCursor(float64(w)/2, float64(hgt)/2)
}

// Tick re-evaluates time-based detector state (long-press). Call it
// periodically while contacts are down.
func (h *Handler) Tick() {
	h.taps.Tick()
	if h.touchpadHandler != nil {
		h.touchpadHandler.taps.Tick()
	}
}

// HandleTouchEvent routes one raw pointer event through the device-class
// demultiplexer and, for finger events, the full gesture pipeline. Returns
// whether the event was consumed.
func (h *Handler) HandleTouchEvent(e PointerEvent) bool {
	switch ClassifyDevice(e) {
	case DeviceMouse:
		return h.mouse.onTouch(h, e)
	case DeviceDexTouchpad:
		return h.dex.onTouch(h, e)
	case DeviceTouchpad:
		if h.touchpadHandler != nil {
			return h.touchpadHandler.HandleTouchEvent(e)
		}
		return h.handleFingerEvent(e)
	case DeviceFinger:
		return h.handleFingerEvent(e)
	default:
		return false
	}
}

// HandleCapturedEvent processes events delivered while the pointer is
// captured: positions carry relative deltas instead of view coordinates.
func (h *Handler) HandleCapturedEvent(e PointerEvent) bool {
	if e.Source&SourceTouchpad != 0 {
		if h.touchpadHandler != nil {
			h.touchpadHandler.HandleTouchEvent(e)
		}
		return true
	}

	switch e.Action {
	case ActionMove:
		if e.RelX == 0 && e.RelY == 0 {
			return true
		}
		h.moveCursorByOffset(-2*e.RelX, -2*e.RelY)
	case ActionButtonPress:
		pos := h.render.CursorPosition()
		h.sender.SendPointerEvent(pos.X, pos.Y, e.ActionButton, true, false)
	case ActionButtonRelease:
		pos := h.render.CursorPosition()
		h.sender.SendPointerEvent(pos.X, pos.Y, e.ActionButton, false, false)
	case ActionScroll:
		h.sender.SendMouseWheel(-100*e.ScrollX, -100*e.ScrollY)
	}
	return true
}

func (h *Handler) handleFingerEvent(e PointerEvent) bool {
	// Give the strategy a chance to observe the raw event before the
	// detectors run.
	h.strategy.OnMotionEvent(e)

	// Every detector sees every event; their state is independent and
	// evaluation must not short-circuit.
	h.pan.onTouchEvent(e)
	h.scaler.onTouchEvent(e)
	h.taps.onTouchEvent(e)
	h.swipePinch.onTouchEvent(e)
	h.touchpadRelativeMotion(e)

	switch e.Action {
	case ActionDown:
		h.suppressCursorMovement = false
		h.swipeCompleted = false
		h.isDragging = false
	case ActionPointerDown:
		h.totalMotionY = 0
	}
	return true
}

// touchpadRelativeMotion moves the cursor from the relative axes of a
// genuine-touchpad contact.
func (h *Handler) touchpadRelativeMotion(e PointerEvent) {
	if e.Action == ActionMove && e.PointerCount() == 1 && e.Source&SourceTouchpad != 0 {
		h.moveCursorByOffset(-2*e.RelX, -2*e.RelY)
	}
}

// onScroll is the pan detector callback; it applies the pointer-count
// tie-break policy.
func (h *Handler) onScroll(originX, originY float64, e PointerEvent, distanceX, distanceY float64) {
	pointerCount := e.PointerCount()

	// A gesture originating at the screen edge is likely a system UI
	// swipe; reject it for panning. The nested touchpad handler reports
	// coordinates in its own space, so only the top-level handler checks.
	if !h.isTouchpad && !h.panBounds.contains(originX, originY) {
		h.suppressCursorMovement = true
		return
	}

	if pointerCount >= 3 && !h.swipeCompleted {
		// Distance values are reversed: dragging toward increasing Y
		// yields a negative distance.
		h.totalMotionY -= distanceY
		h.onSwipe()
		return
	}

	if pointerCount == 2 && h.swipePinch.isSwiping() {
		if !h.strategy.IsIndirectInputMode() {
			// Re-anchor the cursor at the gesture origin so the
			// target window receives the scroll at the right spot.
			h.moveCursorToScreenPoint(originX, originY)
		}
		h.strategy.OnScroll(distanceX, distanceY)
		h.suppressCursorMovement = true
		return
	}

	if pointerCount != 1 || h.suppressCursorMovement {
		return
	}

	dx, dy := h.render.MapScreenVector(distanceX, distanceY)
	if h.strategy.IsIndirectInputMode() {
		h.moveCursorByOffset(dx, dy)
	} else if h.isDragging {
		// Keep the cursor glued to the finger while dragging under
		// direct input.
		h.moveCursorToScreenPoint(e.X(), e.Y())
	}
}

// onSwipe fires at most one swipe action per gesture session.
func (h *Handler) onSwipe() {
	if h.totalMotionY > h.swipeThreshold {
		h.frontend.SwipeDown()
	} else if h.totalMotionY < -h.swipeThreshold {
		h.frontend.SwipeUp()
	} else {
		return
	}
	h.suppressCursorMovement = true
	h.swipeCompleted = true
}

func (h *Handler) onTap(pointerCount int, x, y float64) {
	button := buttonFromPointerCount(pointerCount)
	if button == ButtonUndefined {
		return
	}

	if !h.strategy.IsIndirectInputMode() {
		if h.screenPointOutsideImage(x, y) {
			return
		}
		h.moveCursorToScreenPoint(x, y)
	}

	if h.strategy.OnTap(button) {
		h.frontend.ShowInputFeedback(h.strategy.ShortPressFeedback(), h.render.CursorPosition())
	}
}

func (h *Handler) onLongPress(pointerCount int, x, y float64) {
	button := buttonFromPointerCount(pointerCount)
	if button == ButtonUndefined {
		return
	}

	if !h.strategy.IsIndirectInputMode() {
		if h.screenPointOutsideImage(x, y) {
			return
		}
		h.moveCursorToScreenPoint(x, y)
	}

	if h.strategy.OnPressAndHold(button) {
		h.frontend.ShowInputFeedback(h.strategy.LongPressFeedback(), h.render.CursorPosition())
		h.isDragging = true
	}
}

// buttonFromPointerCount maps the finger count of a tap or long-press to a
// pointer button.
func buttonFromPointerCount(pointerCount int) Button {
	switch pointerCount {
	case 1:
		return ButtonLeft
	case 2:
		return ButtonRight
	case 3:
		return ButtonMiddle
	default:
		return ButtonUndefined
	}
}

// screenPointOutsideImage reports whether a screen point maps strictly
// outside the remote image, with a small tolerance.
func (h *Handler) screenPointOutsideImage(x, y float64) bool {
	mapped := h.render.MapScreenToImage(render.Point{X: x, Y: y})
	imageW, imageH := h.render.ImageSize()
	maxX := float64(imageW) + epsilon
	maxY := float64(imageH) + epsilon
	return mapped.X < -epsilon || mapped.X > maxX || mapped.Y < -epsilon || mapped.Y > maxY
}

// moveCursorByOffset shifts the cursor by a mapped delta; the offset is
// negated to convert the platform distance convention into motion.
func (h *Handler) moveCursorByOffset(dx, dy float64) {
	pos := h.render.CursorPosition()
	h.moveCursor(pos.X-dx, pos.Y-dy)
}

func (h *Handler) moveCursorToScreenPoint(x, y float64) {
	mapped := h.render.MapScreenToImage(render.Point{X: x, Y: y})
	h.moveCursor(mapped.X, mapped.Y)
}

func (h *Handler) moveCursor(x, y float64) {
	if h.render.SetCursorPosition(x, y) {
		pos := h.render.CursorPosition()
		h.strategy.InjectCursorMove(int(pos.X), int(pos.Y))
	}
	h.frontend.MoveCursor(h.render.CursorPosition())
}

// hardwareMouseState handles hardware mouse events on a dedicated
// absolute-position, button-state-diff path that bypasses gesture detection.
type hardwareMouseState struct {
	savedButtons ButtonMask
}

func (m *hardwareMouseState) onTouch(h *Handler, e PointerEvent) bool {
	if e.Action == ActionScroll {
		h.sender.SendMouseWheel(-100*e.ScrollX, -100*e.ScrollY)
		return true
	}

	mapped := h.render.MapScreenToImage(render.Point{X: e.X(), Y: e.Y()})
	if h.render.SetCursorPosition(mapped.X, mapped.Y) {
		pos := h.render.CursorPosition()
		h.sender.SendCursorMove(pos.X, pos.Y)
		h.frontend.MoveCursor(pos)
	}

	current := e.Buttons
	m.diffButton(h, current, MaskPrimary, ButtonLeft)
	m.diffButton(h, current, MaskTertiary, ButtonMiddle)
	m.diffButton(h, current, MaskSecondary, ButtonRight)
	m.savedButtons = current
	return true
}

func (m *hardwareMouseState) diffButton(h *Handler, current ButtonMask, mask ButtonMask, button Button) {
	if m.savedButtons&mask == current&mask {
		return
	}
	pos := h.render.CursorPosition()
	h.sender.SendPointerEvent(pos.X, pos.Y, button, current&mask != 0, false)
}

// dexState handles desktop-docked touchpads, which report finger contacts but
// carry mouse-like button state and platform gesture flags.
type dexState struct {
	savedButtons ButtonMask
	dragging     bool
	scrolling    bool
	tapCandidate bool
	downX, downY float64
	downTime     time.Time
	lastX, lastY float64
}

func (d *dexState) onTouch(h *Handler, e PointerEvent) bool {
	switch e.Action {
	case ActionButtonPress, ActionButtonRelease:
		current := e.Buttons
		d.diffButton(h, current, MaskPrimary, ButtonLeft)
		d.diffButton(h, current, MaskTertiary, ButtonMiddle)
		d.diffButton(h, current, MaskSecondary, ButtonRight)
		d.savedButtons = current

	case ActionHoverMove:
		d.warpCursor(h, e.X(), e.Y())

	case ActionDown:
		switch {
		case e.Flags&FlagDexScroll == FlagDexScroll:
			d.scrolling = true
			d.lastX, d.lastY = e.X(), e.Y()
		case e.Flags&FlagDexDrag == FlagDexDrag:
			d.dragging = true
			pos := h.render.CursorPosition()
			h.sender.SendPointerEvent(pos.X, pos.Y, ButtonLeft, true, false)
		default:
			d.tapCandidate = true
			d.downX, d.downY = e.X(), e.Y()
			d.downTime = e.Time
		}

	case ActionMove:
		switch {
		case d.scrolling && e.Flags&FlagDexScroll == FlagDexScroll:
			h.sender.SendMouseWheel(d.lastX-e.X(), d.lastY-e.Y())
			d.lastX, d.lastY = e.X(), e.Y()
		case d.dragging && e.Flags&FlagDexDrag == FlagDexDrag:
			d.warpCursor(h, e.X(), e.Y())
		case d.tapCandidate:
			if math.Hypot(e.X()-d.downX, e.Y()-d.downY) >= h.touchSlop {
				d.tapCandidate = false
			}
		}

	case ActionUp:
		switch {
		case d.scrolling:
			d.scrolling = false
		case d.dragging:
			pos := h.render.CursorPosition()
			h.sender.SendPointerEvent(pos.X, pos.Y, ButtonLeft, false, false)
			d.dragging = false
		case d.tapCandidate:
			d.tapCandidate = false
			if e.Time.Sub(d.downTime) <= defaultTapTimeout {
				pos := h.render.CursorPosition()
				h.sender.SendPointerEvent(pos.X, pos.Y, ButtonLeft, true, false)
				h.sender.SendPointerEvent(pos.X, pos.Y, ButtonLeft, false, false)
			}
		}
	}
	return true
}

func (d *dexState) warpCursor(h *Handler, x, y float64) {
	mapped := h.render.MapScreenToImage(render.Point{X: x, Y: y})
	if h.render.SetCursorPosition(mapped.X, mapped.Y) {
		pos := h.render.CursorPosition()
		h.sender.SendCursorMove(pos.X, pos.Y)
		h.frontend.MoveCursor(pos)
	}
}

func (d *dexState) diffButton(h *Handler, current ButtonMask, mask ButtonMask, button Button) {
	if d.savedButtons&mask == current&mask {
		return
	}
	pos := h.render.CursorPosition()
	h.sender.SendPointerEvent(pos.X, pos.Y, button, current&mask != 0, false)
}
