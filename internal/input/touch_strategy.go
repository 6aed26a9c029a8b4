package input

import "github.com/bkodra/xtouch/internal/render"

// touchStrategy implements direct input against a server that understands
// touch primitives: taps and drags become touch-down/up intents at the mapped
// point, with live finger contacts forwarded while a drag is held. The cursor
// position is purely visual.
type touchStrategy struct {
	render *render.State
	sender EventSender

	holding bool
}

func (s *touchStrategy) OnTap(button Button) bool {
	if button != ButtonLeft {
		return false
	}
	pos := s.render.CursorPosition()
	s.sender.SendTouchEvent(TouchDown, 0, int(pos.X), int(pos.Y))
	s.sender.SendTouchEvent(TouchUp, 0, int(pos.X), int(pos.Y))
	s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
	return true
}

func (s *touchStrategy) OnPressAndHold(button Button) bool {
	if button != ButtonLeft {
		return false
	}
	pos := s.render.CursorPosition()
	s.sender.SendTouchEvent(TouchDown, 0, int(pos.X), int(pos.Y))
	s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
	s.holding = true
	return true
}

func (s *touchStrategy) OnScroll(dx, dy float64) {
	s.sender.SendMouseWheel(dx, dy)
}

func (s *touchStrategy) OnMotionEvent(e PointerEvent) {
	if !s.holding {
		return
	}
	switch e.Action {
	case ActionMove:
		for _, p := range e.Pointers {
			mapped := s.render.MapScreenToImage(render.Point{X: p.X, Y: p.Y})
			s.sender.SendTouchEvent(TouchMove, p.ID, int(mapped.X), int(mapped.Y))
		}
		s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
	case ActionUp, ActionCancel:
		mapped := s.render.MapScreenToImage(render.Point{X: e.X(), Y: e.Y()})
		s.sender.SendTouchEvent(TouchUp, 0, int(mapped.X), int(mapped.Y))
		s.sender.SendTouchEvent(TouchFlush, 0, 0, 0)
		s.holding = false
	}
}

// InjectCursorMove is a no-op: in direct touch mode the cursor is local
// decoration and the remote point is addressed by the contact itself.
func (s *touchStrategy) InjectCursorMove(x, y int) {}

func (s *touchStrategy) IsIndirectInputMode() bool { return false }

func (s *touchStrategy) ShortPressFeedback() FeedbackKind { return FeedbackShortPress }

func (s *touchStrategy) LongPressFeedback() FeedbackKind { return FeedbackLongPress }
