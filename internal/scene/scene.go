// Package scene keeps the registry of interactable scene items and answers
// hit-tests against them through a periodically rebuilt spatial index.
package scene

import (
	"sort"
	"sync"

	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/spatial"
)

// Item is one registered scene element with its page-space bounds.
type Item struct {
	ID           string       `json:"id"`
	Bounds       spatial.Rect `json:"bounds"`
	Interactable bool         `json:"interactable"`
	Draggable    bool         `json:"draggable"`
	Z            int          `json:"z"`
}

// Scene implements interact.SceneHitTester. Items are registered by the
// mounted visualization; the index over them is rebuilt on a timer rather
// than per mutation, so hit-tests may be up to one rebuild interval stale.
type Scene struct {
	mu    sync.RWMutex
	items map[string]Item
	index *spatial.Index
	dirty bool
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		items: make(map[string]Item),
		index: spatial.Build(spatial.DefaultRegion, nil),
	}
}

// Upsert adds or replaces an item. The index sees the change after the next
// Refresh.
func (s *Scene) Upsert(it Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[it.ID] = it
	s.dirty = true
}

// Remove deletes an item by id. Removing an unknown id is a no-op.
func (s *Scene) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return
	}
	delete(s.items, id)
	s.dirty = true
}

// Clear drops every item, e.g. when a visualization unmounts.
func (s *Scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]Item)
	s.dirty = true
}

// Len returns the number of registered items.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Refresh rebuilds the spatial index if the item set changed since the last
// build. Called on the app's rebuild ticker, decoupled from frame cadence.
func (s *Scene) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return
	}
	list := make([]spatial.Item, 0, len(s.items))
	for _, it := range s.items {
		list = append(list, spatial.Item{Ref: it.ID, Bounds: it.Bounds})
	}
	s.index = spatial.Build(spatial.DefaultRegion, list)
	s.dirty = false
}

// HitTest returns the topmost interactable item containing the point. The
// registry is consulted directly (not the index) so a point test is always
// exact on Z order.
func (s *Scene) HitTest(p coords.Point) (interact.ItemRef, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best Item
	found := false
	for _, it := range s.items {
		if !it.Interactable || !it.Bounds.ContainsPoint(p.X, p.Y) {
			continue
		}
		if !found || it.Z > best.Z {
			best = it
			found = true
		}
	}
	if !found {
		return interact.ItemRef{}, false
	}
	return ref(best), true
}

// HitTestArea returns every item whose bounds intersect the circle, in a
// stable id order. Results reflect the last Refresh.
func (s *Scene) HitTestArea(c spatial.Circle) []interact.ItemRef {
	s.mu.RLock()
	idx := s.index
	s.mu.RUnlock()

	hits := idx.QueryCircle(c)
	out := make([]interact.ItemRef, 0, len(hits))

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range hits {
		it, ok := s.items[h.Ref]
		if !ok {
			// Removed since the last rebuild: silently dropped.
			continue
		}
		out = append(out, ref(it))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func ref(it Item) interact.ItemRef {
	return interact.ItemRef{
		ID:           it.ID,
		Interactable: it.Interactable,
		Draggable:    it.Draggable,
	}
}
