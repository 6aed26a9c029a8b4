package input

import (
	"math"
	"time"
)

// Detector timing and slop defaults, in density-independent pixels and
// milliseconds. Scaled by display density at construction.
const (
	defaultTouchSlopDp      = 8
	defaultTapTimeout       = 300 * time.Millisecond
	defaultLongPressTimeout = 400 * time.Millisecond
)

// panDetector reports continuous scroll/drag motion once the touch slop is
// exceeded. Distances are reported in the platform convention: positive when
// the finger travels toward decreasing coordinates.
type panDetector struct {
	slop     float64
	onScroll func(originX, originY float64, e PointerEvent, distanceX, distanceY float64)

	tracking     bool
	slopExceeded bool
	originX      float64
	originY      float64
	lastX        float64
	lastY        float64
}

func (d *panDetector) onTouchEvent(e PointerEvent) {
	switch e.Action {
	case ActionDown:
		d.tracking = true
		d.slopExceeded = false
		d.originX, d.originY = e.X(), e.Y()
		d.lastX, d.lastY = focalPoint(e)
	case ActionPointerDown, ActionPointerUp:
		if d.tracking {
			d.lastX, d.lastY = focalPoint(e)
		}
	case ActionMove:
		if !d.tracking {
			return
		}
		fx, fy := focalPoint(e)
		if !d.slopExceeded {
			if math.Hypot(fx-d.originX, fy-d.originY) < d.slop {
				return
			}
			d.slopExceeded = true
			// Swallow the slop distance so the first report does not
			// jump the cursor.
			d.lastX, d.lastY = fx, fy
			return
		}
		dx, dy := d.lastX-fx, d.lastY-fy
		d.lastX, d.lastY = fx, fy
		if (dx != 0 || dy != 0) && d.onScroll != nil {
			d.onScroll(d.originX, d.originY, e, dx, dy)
		}
	case ActionUp, ActionCancel:
		d.tracking = false
	}
}

// tapDetector resolves taps and long-presses for one or more fingers. It is
// timer-free: long-presses fire from the next observed event or an explicit
// Tick, so no detector ever suspends.
type tapDetector struct {
	slop             float64
	tapTimeout       time.Duration
	longPressTimeout time.Duration
	now              func() time.Time

	onTap       func(pointerCount int, x, y float64)
	onLongPress func(pointerCount int, x, y float64)

	active         bool
	moved          bool
	longPressFired bool
	downTime       time.Time
	maxPointers    int
	downPositions  map[int]Pointer
	lastX          float64
	lastY          float64
}

func (d *tapDetector) onTouchEvent(e PointerEvent) {
	switch e.Action {
	case ActionDown:
		d.active = true
		d.moved = false
		d.longPressFired = false
		d.downTime = d.now()
		d.maxPointers = 1
		d.downPositions = map[int]Pointer{}
		for _, p := range e.Pointers {
			d.downPositions[p.ID] = p
		}
		d.lastX, d.lastY = e.X(), e.Y()
	case ActionPointerDown:
		if !d.active {
			return
		}
		if n := e.PointerCount(); n > d.maxPointers {
			d.maxPointers = n
		}
		for _, p := range e.Pointers {
			if _, ok := d.downPositions[p.ID]; !ok {
				d.downPositions[p.ID] = p
			}
		}
	case ActionMove:
		if !d.active {
			return
		}
		for _, p := range e.Pointers {
			start, ok := d.downPositions[p.ID]
			if !ok {
				continue
			}
			if math.Hypot(p.X-start.X, p.Y-start.Y) >= d.slop {
				d.moved = true
			}
		}
		d.lastX, d.lastY = e.X(), e.Y()
		d.Tick()
	case ActionPointerUp:
		// Keep max pointer count; final classification happens on the
		// last up.
	case ActionUp:
		if !d.active {
			return
		}
		d.active = false
		if d.moved || d.longPressFired {
			return
		}
		if d.now().Sub(d.downTime) <= d.tapTimeout && d.onTap != nil {
			d.onTap(d.maxPointers, d.lastX, d.lastY)
		}
	case ActionCancel:
		d.active = false
	}
}

// Tick re-evaluates the long-press timeout. Call periodically while fingers
// are down.
func (d *tapDetector) Tick() {
	if !d.active || d.moved || d.longPressFired {
		return
	}
	if d.now().Sub(d.downTime) >= d.longPressTimeout {
		d.longPressFired = true
		if d.onLongPress != nil {
			d.onLongPress(d.maxPointers, d.lastX, d.lastY)
		}
	}
}

// scaleDetector tracks the span between the first two contacts. The
// classifier accepts scale gestures without acting on them, but the detector
// still observes every event so its state stays coherent.
type scaleDetector struct {
	inProgress bool
	span0      float64
	span       float64
}

func (d *scaleDetector) onTouchEvent(e PointerEvent) {
	switch e.Action {
	case ActionPointerDown:
		if e.PointerCount() == 2 {
			d.inProgress = true
			d.span0 = span(e)
			d.span = d.span0
		}
	case ActionMove:
		if d.inProgress && e.PointerCount() >= 2 {
			d.span = span(e)
		}
	case ActionPointerUp, ActionUp, ActionCancel:
		if e.PointerCount() <= 2 {
			d.inProgress = false
		}
	}
}

func (d *scaleDetector) factor() float64 {
	if !d.inProgress || d.span0 == 0 {
		return 1
	}
	return d.span / d.span0
}

// swipePinchDetector disambiguates a two-finger gesture as a swipe (both
// fingers travelling the same vertical direction with a stable span) or a
// pinch (span changing). The decision latches for the rest of the gesture.
type swipePinchDetector struct {
	slop float64

	decided  bool
	swiping  bool
	tracking bool
	start0   Pointer
	start1   Pointer
	span0    float64
}

func (d *swipePinchDetector) onTouchEvent(e PointerEvent) {
	switch e.Action {
	case ActionDown:
		d.reset()
	case ActionPointerDown:
		if e.PointerCount() == 2 {
			d.tracking = true
			d.decided = false
			d.swiping = false
			d.start0 = e.Pointers[0]
			d.start1 = e.Pointers[1]
			d.span0 = span(e)
		} else {
			// A third finger ends the two-finger disambiguation.
			d.reset()
		}
	case ActionMove:
		if !d.tracking || d.decided || e.PointerCount() < 2 {
			return
		}
		dy0 := e.Pointers[0].Y - d.start0.Y
		dy1 := e.Pointers[1].Y - d.start1.Y
		spanChange := math.Abs(span(e) - d.span0)

		if spanChange >= 2*d.slop {
			d.decided = true
			d.swiping = false
			return
		}
		if math.Abs(dy0) >= d.slop && math.Abs(dy1) >= d.slop && sameSign(dy0, dy1) {
			d.decided = true
			d.swiping = true
		}
	case ActionPointerUp, ActionUp, ActionCancel:
		d.reset()
	}
}

func (d *swipePinchDetector) isSwiping() bool {
	return d.decided && d.swiping
}

func (d *swipePinchDetector) reset() {
	d.tracking = false
	d.decided = false
	d.swiping = false
}

func focalPoint(e PointerEvent) (float64, float64) {
	n := e.PointerCount()
	if n == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, p := range e.Pointers {
		sx += p.X
		sy += p.Y
	}
	return sx / float64(n), sy / float64(n)
}

func span(e PointerEvent) float64 {
	if e.PointerCount() < 2 {
		return 0
	}
	return math.Hypot(e.Pointers[1].X-e.Pointers[0].X, e.Pointers[1].Y-e.Pointers[0].Y)
}

func sameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}
