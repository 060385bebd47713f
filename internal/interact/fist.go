package interact

import (
	"time"

	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/detector"
)

// stepFistDwell updates one hand's fist dwell. A fist must hold steady for
// the dwell duration before it starts panning, so recognition jitter cannot
// fling the view. While dwelling the hand emits nothing; renderers can draw
// progress via FistProgress.
func (m *Machines) stepFistDwell(h *HandState, now time.Time) {
	if h.lastLabel != detector.LabelFist {
		h.fistStart = now
		h.fistActive = false
		h.hasLastTip = false
		return
	}
	if !h.fistActive && now.Sub(h.fistStart) >= m.cfg.FistDwell {
		h.fistActive = true
	}
}

// FistProgress returns how far along the fist dwell is for a slot, in
// [0, 1]. Rendering feedback only; 1 means the hand is active.
func (m *Machines) FistProgress(slot HandSlot, now time.Time) float64 {
	h := m.hands[slot]
	if h.lastLabel != detector.LabelFist {
		return 0
	}
	if h.fistActive {
		return 1
	}
	p := float64(now.Sub(h.fistStart)) / float64(m.cfg.FistDwell)
	return clamp(p, 0, 1)
}

// stepPanZoom arbitrates the fist hands after per-hand evaluation: one
// active fist pans, two active fists zoom.
func (m *Machines) stepPanZoom(bySlot map[HandSlot]HandInput, now time.Time) {
	var active []HandInput
	for _, slot := range []HandSlot{HandLeft, HandRight} {
		in := bySlot[slot]
		if in.Label == detector.LabelFist && m.hands[slot].fistActive {
			active = append(active, in)
		}
	}

	switch len(active) {
	case 2:
		m.stepZoom(active[0], active[1], now)
	case 1:
		m.stepPan(m.hands[active[0].Slot], active[0], now)
	default:
		m.zooming = false
		m.resumePan = false
	}
}

// stepZoom tracks the inter-hand distance ratio to update the scale,
// anchored at the simulation-space point under the hands' midpoint when the
// zoom started.
func (m *Machines) stepZoom(a, b HandInput, now time.Time) {
	d := pointDistance(a.IndexTip, b.IndexTip)
	mid := midpoint(a.IndexTip, b.IndexTip)

	if !m.zooming {
		m.zooming = true
		m.zoomBase = m.currentTransform()
		m.zoomStartDist = d
		m.zoomAnchorPage = mid
		m.zoomAnchorSim = coords.ToSimulation(mid, &m.zoomBase)
	}
	if m.zoomStartDist == 0 {
		return
	}

	scale := clamp(m.zoomBase.Scale*d/m.zoomStartDist, m.cfg.MinZoom, m.cfg.MaxZoom)
	t := coords.Transform{
		Scale: scale,
		X:     m.zoomAnchorPage.X - m.zoomAnchorSim.X*scale,
		Y:     m.zoomAnchorPage.Y - m.zoomAnchorSim.Y*scale,
	}
	m.lastTransform = t
	m.haveTransform = true

	tr := t
	m.emit(Event{
		Type: EventZoom, Source: SourceGesture,
		Time: now, Point: mid, Transform: &tr,
	})
}

// stepPan accumulates frame-to-frame fingertip displacement into the
// transform. The first frame after a two-hand zoom ends re-emits the last
// transform unchanged so the hand-off cannot jump.
func (m *Machines) stepPan(h *HandState, in HandInput, now time.Time) {
	if m.zooming {
		m.zooming = false
		m.resumePan = true
	}

	if m.resumePan || !h.hasLastTip {
		m.resumePan = false
		h.lastTip = in.IndexTip
		h.hasLastTip = true

		t := m.currentTransform()
		m.lastTransform = t
		m.haveTransform = true

		tr := t
		m.emit(Event{
			Type: EventDrag, Source: SourceGesture,
			Hand: h.Slot, Time: now, Point: in.IndexTip, Transform: &tr,
		})
		return
	}

	dx := in.IndexTip.X - h.lastTip.X
	dy := in.IndexTip.Y - h.lastTip.Y
	h.lastTip = in.IndexTip

	t := m.currentTransform()
	t.X += dx
	// Vertical displacement is inverted to match the mirrored self-view.
	t.Y -= dy
	m.lastTransform = t
	m.haveTransform = true

	tr := t
	m.emit(Event{
		Type: EventDrag, Source: SourceGesture,
		Hand: h.Slot, Time: now, Point: in.IndexTip, Transform: &tr,
	})
}

// currentTransform returns the best known transform: the last one the
// machines produced, else the mounted visualization's, else identity.
func (m *Machines) currentTransform() coords.Transform {
	if m.haveTransform {
		return m.lastTransform
	}
	if t := m.transform(); t != nil {
		return *t
	}
	return coords.Transform{Scale: 1}
}
