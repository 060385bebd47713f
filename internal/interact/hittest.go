package interact

import (
	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/spatial"
)

// ItemRef is a hit-tested reference to a scene element. The concrete scene
// representation stays behind SceneHitTester.
type ItemRef struct {
	ID           string
	Interactable bool
	Draggable    bool
}

// SceneHitTester resolves points and areas against the visible scene.
// Implementations may be up to one index-rebuild interval stale; callers
// treat a missing element as a silent no-op.
type SceneHitTester interface {
	// HitTest returns the topmost element at a page-space point.
	HitTest(p coords.Point) (ItemRef, bool)

	// HitTestArea returns every element whose bounds intersect the circle.
	HitTestArea(c spatial.Circle) []ItemRef
}

// SharedState is the arbiter's pre-emission view of the replicated
// collections. The hover machine consults it before claiming a target so a
// denied hover produces no event at all.
type SharedState interface {
	// CanHover reports whether the hand may add the item to its hover set:
	// the item must be absent from the opposite hand's hover and pin sets.
	CanHover(hand HandSlot, id string) bool
}
