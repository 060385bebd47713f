package interact

import "time"

// stepHover handles the "one" gesture: a direct hit-test of the index
// fingertip against the topmost interactable element. Element changes emit
// pointerout for the old target before pointerover for the new one.
func (m *Machines) stepHover(h *HandState, in HandInput, now time.Time) {
	if m.scene == nil {
		return
	}

	var cur string
	if len(h.hovered) > 0 {
		cur = h.hovered[0]
	}

	ref, ok := m.scene.HitTest(in.IndexTip)
	if !ok || !ref.Interactable {
		m.clearHover(h, in, now)
		return
	}
	if ref.ID == cur {
		return
	}

	// A target claimed by the opposite hand cannot be hovered; the old
	// target is still released because the finger has left it.
	if m.shared != nil && !m.shared.CanHover(h.Slot, ref.ID) {
		m.clearHover(h, in, now)
		return
	}

	if cur != "" {
		m.emit(Event{
			Type: EventPointerOut, Source: SourceGesture,
			Hand: h.Slot, Time: now, Item: cur, Point: in.IndexTip,
		})
		h.removeHovered(cur)
	}

	m.emit(Event{
		Type: EventPointerOver, Source: SourceGesture,
		Hand: h.Slot, Time: now, Item: ref.ID, Point: in.IndexTip,
	})
	h.addHovered(ref.ID)
}

// stepCleanup handles the "none" label and undetected hands: any element
// still marked hovered gets a synthesized pointerout so losing recognition
// never leaves stale highlighted state.
func (m *Machines) stepCleanup(h *HandState, in HandInput, now time.Time) {
	m.clearHover(h, in, now)
}

// clearHover emits pointerout for every element the hand still marks
// hovered and resets the hover bookkeeping.
func (m *Machines) clearHover(h *HandState, in HandInput, now time.Time) {
	if len(h.hovered) == 0 {
		return
	}
	for _, id := range h.hovered {
		m.emit(Event{
			Type: EventPointerOut, Source: SourceGesture,
			Hand: h.Slot, Time: now, Item: id, Point: in.IndexTip,
		})
	}
	h.hovered = nil
	h.hoveredSet = make(map[string]bool)
}
