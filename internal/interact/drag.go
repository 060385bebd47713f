package interact

import "time"

// stepDrag handles the "ok" gesture. The thumb tip is hit-tested once to
// latch a draggable element with pointerdown; while latched, every frame
// emits pointermove for the latched target regardless of what is currently
// under the finger. Losing the gesture emits pointerup (see exitLabel).
func (m *Machines) stepDrag(h *HandState, in HandInput, now time.Time) {
	if h.dragTarget == "" {
		if m.scene == nil {
			return
		}
		ref, ok := m.scene.HitTest(in.ThumbTip)
		if !ok || !ref.Draggable {
			return
		}
		h.dragTarget = ref.ID
		m.emit(Event{
			Type: EventPointerDown, Source: SourceGesture,
			Hand: h.Slot, Time: now, Item: ref.ID, Point: in.ThumbTip,
		})
		return
	}

	// Drag target is sticky: no re-hit-test while latched.
	m.emit(Event{
		Type: EventPointerMove, Source: SourceGesture,
		Hand: h.Slot, Time: now, Item: h.dragTarget, Point: in.ThumbTip,
	})
}
