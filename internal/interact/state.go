package interact

import (
	"time"

	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/detector"
)

// clickPhase is the state of the two-phase click machine.
type clickPhase int

const (
	clickIdle clickPhase = iota
	clickPotential
)

// HandState holds every piece of mutable gesture state for one hand slot.
// One instance per slot is constructed at session start and passed by
// reference into every machine evaluation; nothing lives in package-level
// variables.
type HandState struct {
	Slot HandSlot

	lastLabel detector.Label

	// Hover bookkeeping, shared by point hover and area hover: insertion
	// ordered ids plus a membership set.
	hovered    []string
	hoveredSet map[string]bool

	// Click machine.
	clickPhase clickPhase
	clickStart time.Time

	// Brush dwell.
	dwellValid  bool
	dwellFired  bool
	dwellStart  time.Time
	dwellCenter coords.Point
	dwellRadius float64

	// Drag latch.
	dragTarget string

	// Fist dwell.
	fistStart  time.Time
	fistActive bool
	lastTip    coords.Point
	hasLastTip bool
}

// NewHandState creates the state struct for one hand slot.
func NewHandState(slot HandSlot) *HandState {
	return &HandState{
		Slot:       slot,
		lastLabel:  detector.LabelNone,
		hoveredSet: make(map[string]bool),
	}
}

// Hovered returns the ids currently marked hovered by this hand, in
// insertion order.
func (h *HandState) Hovered() []string {
	out := make([]string, len(h.hovered))
	copy(out, h.hovered)
	return out
}

// DragTarget returns the latched drag target id, or "" when not dragging.
func (h *HandState) DragTarget() string {
	return h.dragTarget
}

// Reset clears all gesture state: hover bookkeeping, timers and latches.
// Used on session unmount; no events are emitted.
func (h *HandState) Reset() {
	h.lastLabel = detector.LabelNone
	h.hovered = nil
	h.hoveredSet = make(map[string]bool)
	h.clickPhase = clickIdle
	h.dwellValid = false
	h.dwellFired = false
	h.dragTarget = ""
	h.fistActive = false
	h.hasLastTip = false
}

func (h *HandState) addHovered(id string) {
	if h.hoveredSet[id] {
		return
	}
	h.hoveredSet[id] = true
	h.hovered = append(h.hovered, id)
}

func (h *HandState) removeHovered(id string) {
	if !h.hoveredSet[id] {
		return
	}
	delete(h.hoveredSet, id)
	for i, v := range h.hovered {
		if v == id {
			h.hovered = append(h.hovered[:i], h.hovered[i+1:]...)
			break
		}
	}
}

// HandInput is one hand's contribution to a frame, with landmarks already
// mapped into page space by the coordinate mapper. A hand that was not
// detected this frame has Landmarks nil and LabelNone.
type HandInput struct {
	Slot       HandSlot
	Label      detector.Label
	Confidence float64
	Landmarks  *detector.HandLandmarks
	IndexTip   coords.Point
	ThumbTip   coords.Point
	Fingertips [5]coords.Point
}
