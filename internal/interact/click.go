package interact

import "time"

// stepClickStart handles the "thumb_index" gesture: the first phase of a
// two-phase click. The pinch arms a potential click; releasing into "one"
// within the click window completes it.
func (m *Machines) stepClickStart(h *HandState, now time.Time) {
	if h.clickPhase == clickIdle {
		h.clickPhase = clickPotential
		h.clickStart = now
	}
}

// stepClickComplete runs when the hand shows "one". If a potential click is
// armed and still inside the window, the *current* fingertip position is
// hit-tested and, if it lands on an interactable element, exactly one
// pointerselect is emitted. The potential click is consumed either way.
func (m *Machines) stepClickComplete(h *HandState, in HandInput, now time.Time) {
	if h.clickPhase != clickPotential {
		return
	}
	h.clickPhase = clickIdle

	if now.Sub(h.clickStart) > m.cfg.ClickWindow {
		return
	}
	if m.scene == nil {
		return
	}

	ref, ok := m.scene.HitTest(in.IndexTip)
	if !ok || !ref.Interactable {
		return
	}

	m.emit(Event{
		Type: EventPointerSelect, Source: SourceGesture,
		Hand: h.Slot, Time: now, Item: ref.ID, Point: in.IndexTip,
	})
}
