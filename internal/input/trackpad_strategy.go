package input

import "github.com/bkodra/xtouch/internal/render"

// trackpadStrategy implements indirect input: gestures move an independent
// cursor and taps act at the cursor's current position, not the touch origin.
type trackpadStrategy struct {
	render *render.State
	sender EventSender

	heldButton Button
}

func (s *trackpadStrategy) OnTap(button Button) bool {
	pos := s.render.CursorPosition()
	s.sender.SendPointerEvent(pos.X, pos.Y, button, true, false)
	s.sender.SendPointerEvent(pos.X, pos.Y, button, false, false)
	return true
}

func (s *trackpadStrategy) OnPressAndHold(button Button) bool {
	pos := s.render.CursorPosition()
	s.sender.SendPointerEvent(pos.X, pos.Y, button, true, false)
	s.heldButton = button
	return true
}

func (s *trackpadStrategy) OnScroll(dx, dy float64) {
	s.sender.SendMouseWheel(dx, dy)
}

func (s *trackpadStrategy) OnMotionEvent(e PointerEvent) {
	// Release a held drag button when the last finger lifts.
	if s.heldButton != ButtonUndefined && (e.Action == ActionUp || e.Action == ActionCancel) {
		pos := s.render.CursorPosition()
		s.sender.SendPointerEvent(pos.X, pos.Y, s.heldButton, false, false)
		s.heldButton = ButtonUndefined
	}
}

func (s *trackpadStrategy) InjectCursorMove(x, y int) {
	s.sender.SendCursorMove(float64(x), float64(y))
}

func (s *trackpadStrategy) IsIndirectInputMode() bool { return true }

func (s *trackpadStrategy) ShortPressFeedback() FeedbackKind { return FeedbackNone }

func (s *trackpadStrategy) LongPressFeedback() FeedbackKind { return FeedbackLongPress }
