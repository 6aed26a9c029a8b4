package input

import "github.com/bkodra/xtouch/internal/render"

// simulatedTouchStrategy implements direct input for servers that only
// understand touch primitives: resolved pointer gestures are re-synthesized
// as a single touch contact at the mapped point.
type simulatedTouchStrategy struct {
	render *render.State
	sender EventSender

	holding bool
}

// Synthetic contact id used for all simulated touches.
const simulatedContactID = 0

func (s *simulatedTouchStrategy) OnTap(button Button) bool {
	pos := s.render.CursorPosition()
	switch button {
	case ButtonLeft:
		s.sender.SendTouchEvent(TouchDown, simulatedContactID, int(pos.X), int(pos.Y))
		s.sender.SendTouchEvent(TouchUp, simulatedContactID, int(pos.X), int(pos.Y))
		s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
		return true
	case ButtonRight, ButtonMiddle:
		// No touch analogue; fall back to a pointer click at the point.
		s.sender.SendPointerEvent(pos.X, pos.Y, button, true, false)
		s.sender.SendPointerEvent(pos.X, pos.Y, button, false, false)
		return true
	default:
		return false
	}
}

func (s *simulatedTouchStrategy) OnPressAndHold(button Button) bool {
	if button != ButtonLeft {
		return false
	}
	pos := s.render.CursorPosition()
	s.sender.SendTouchEvent(TouchDown, simulatedContactID, int(pos.X), int(pos.Y))
	s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
	s.holding = true
	return true
}

func (s *simulatedTouchStrategy) OnScroll(dx, dy float64) {
	s.sender.SendMouseWheel(dx, dy)
}

func (s *simulatedTouchStrategy) OnMotionEvent(e PointerEvent) {
	if !s.holding {
		return
	}
	switch e.Action {
	case ActionMove:
		mapped := s.render.MapScreenToImage(render.Point{X: e.X(), Y: e.Y()})
		s.sender.SendTouchEvent(TouchMove, simulatedContactID, int(mapped.X), int(mapped.Y))
		s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
	case ActionUp, ActionCancel:
		pos := s.render.CursorPosition()
		s.sender.SendTouchEvent(TouchUp, simulatedContactID, int(pos.X), int(pos.Y))
		s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
		s.holding = false
	}
}

func (s *simulatedTouchStrategy) InjectCursorMove(x, y int) {
	s.sender.SendCursorMove(float64(x), float64(y))
}

func (s *simulatedTouchStrategy) IsIndirectInputMode() bool { return false }

func (s *simulatedTouchStrategy) ShortPressFeedback() FeedbackKind { return FeedbackShortPress }

func (s *simulatedTouchStrategy) LongPressFeedback() FeedbackKind { return FeedbackLongPress }
