package interact

import (
	"math"
	"time"

	"github.com/ayusman/mudra/internal/coords"
)

// stepAreaHover handles the "grabbing" gesture: the minimum enclosing
// circle of the five fingertips is queried against the scene, the result
// diffed against the hand's hover set, and a steady circle for the dwell
// duration creates one sticky brush.
func (m *Machines) stepAreaHover(h *HandState, in HandInput, now time.Time) {
	if m.scene == nil {
		return
	}

	circle := enclosingCircle(in.Fingertips[:])
	refs := m.scene.HitTestArea(circle)

	// Diff: emit paired over/out only for items entering or leaving the
	// circle since the previous frame.
	next := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if !ref.Interactable {
			continue
		}
		next[ref.ID] = true
		if h.hoveredSet[ref.ID] {
			continue
		}
		if m.shared != nil && !m.shared.CanHover(h.Slot, ref.ID) {
			continue
		}
		m.emit(Event{
			Type: EventPointerOver, Source: SourceGesture,
			Hand: h.Slot, Time: now, Item: ref.ID,
			Point: coords.Point{X: circle.X, Y: circle.Y},
		})
		h.addHovered(ref.ID)
	}
	for _, id := range h.Hovered() {
		if next[id] {
			continue
		}
		m.emit(Event{
			Type: EventPointerOut, Source: SourceGesture,
			Hand: h.Slot, Time: now, Item: id,
			Point: coords.Point{X: circle.X, Y: circle.Y},
		})
		h.removeHovered(id)
	}

	m.stepBrushDwell(h, circle.X, circle.Y, circle.R, now)
}

// stepBrushDwell fires one createStickyBrush when the grabbing circle has
// held position and size within tolerance for the dwell duration. Any drift
// beyond tolerance restarts the timer; after firing, the brush cannot
// re-fire until the circle moves away or the gesture is released.
func (m *Machines) stepBrushDwell(h *HandState, cx, cy, r float64, now time.Time) {
	center := coords.Point{X: cx, Y: cy}

	if !h.dwellValid {
		h.dwellValid = true
		h.dwellFired = false
		h.dwellStart = now
		h.dwellCenter = center
		h.dwellRadius = r
		return
	}

	moved := pointDistance(center, h.dwellCenter) > m.cfg.DwellPosTol ||
		math.Abs(r-h.dwellRadius) > m.cfg.DwellRadiusTol
	if moved {
		h.dwellFired = false
		h.dwellStart = now
		h.dwellCenter = center
		h.dwellRadius = r
		return
	}

	if h.dwellFired || now.Sub(h.dwellStart) < m.cfg.DwellDuration {
		return
	}
	h.dwellFired = true

	// The brush lives in simulation space so it stays put under pan/zoom.
	t := m.transform()
	simCenter := coords.ToSimulation(center, t)
	radius := r
	if t != nil && t.Scale != 0 {
		radius = r / t.Scale
	}

	var id string
	if m.newBrushID != nil {
		id = m.newBrushID()
	}
	m.emit(Event{
		Type: EventCreateBrush, Source: SourceGesture,
		Hand: h.Slot, Time: now, Point: center,
		Brush: &Brush{
			ID:     id,
			X:      simCenter.X,
			Y:      simCenter.Y,
			Radius: radius,
			Kind:   BrushKindSticky,
		},
	})
}
