// Package arbiter applies interaction events to the shared replicated
// document. Every mutation runs inside one transaction, and the rule order
// guarantees that two hands of one user, or hands of different users, never
// claim the same target: pin beats hover, hover requires the target to be
// free, pinning a target pinned by the opposite hand transfers it, and
// deletions are always permitted.
package arbiter

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/replicated"
)

// Collection name convention, scoped per visualization instance.
const (
	collHoverLeft  = "hover:left"
	collHoverRight = "hover:right"
	collPinLeft    = "pin:left"
	collPinRight   = "pin:right"
	collBrushes    = "brushes"
	collSelections = "selections"
	collAggregates = "aggregates"
	collDragState  = "dragState"
)

// aggregatesKey is the single key the derived summary is written under.
const aggregatesKey = "summary"

// Arbiter mediates between the gesture pipeline and the replicated
// document for one visualization instance.
type Arbiter struct {
	doc    *replicated.Doc
	viz    string
	userID string
	view   coords.TransformFunc
}

// New creates an arbiter for the named visualization instance. userID is
// the ephemeral id for this participant's click selections; view maps drag
// points into simulation space for brush moves and may be nil.
func New(doc *replicated.Doc, viz, userID string, view coords.TransformFunc) *Arbiter {
	return &Arbiter{doc: doc, viz: viz, userID: userID, view: view}
}

func (a *Arbiter) coll(name string) string {
	return a.viz + "/" + name
}

func hoverColl(hand interact.HandSlot) string {
	if hand == interact.HandLeft {
		return collHoverLeft
	}
	return collHoverRight
}

func pinColl(hand interact.HandSlot) string {
	if hand == interact.HandLeft {
		return collPinLeft
	}
	return collPinRight
}

// CanHover implements interact.SharedState: a hand may claim a hover target
// only if it is free of the opposite hand's hover and pin sets and not
// pinned by the hand itself (pin supersedes hover).
func (a *Arbiter) CanHover(hand interact.HandSlot, id string) bool {
	opp := hand.Opposite()
	if a.doc.ListContains(a.coll(hoverColl(opp)), id) {
		return false
	}
	if a.doc.ListContains(a.coll(pinColl(opp)), id) {
		return false
	}
	if a.doc.ListContains(a.coll(pinColl(hand)), id) {
		return false
	}
	return true
}

// Apply commits the state change implied by one interaction event as a
// single atomic transaction. Unknown or stale targets no-op silently.
func (a *Arbiter) Apply(ev interact.Event) {
	a.doc.Transact(func(tx *replicated.Tx) {
		switch ev.Type {
		case interact.EventPointerOver:
			a.addHover(tx, ev.Hand, ev.Item)
		case interact.EventPointerOut:
			tx.ListRemoveValue(a.coll(hoverColl(ev.Hand)), ev.Item)
		case interact.EventPointerSelect:
			if a.brushExists(tx, ev.Item) {
				a.deleteBrush(tx, ev.Item)
			} else {
				a.togglePin(tx, ev.Hand, ev.Item)
			}
		case interact.EventPointerDown:
			tx.MapSet(a.coll(collDragState), string(ev.Hand), ev.Item)
		case interact.EventPointerMove:
			a.moveBrush(tx, ev)
		case interact.EventPointerUp:
			tx.MapDelete(a.coll(collDragState), string(ev.Hand))
		case interact.EventCreateBrush:
			a.createBrush(tx, ev.Brush)
		}

		a.updateAggregates(tx)
	})
}

// addHover re-checks the hover rules inside the transaction: the
// pre-emission CanHover answer may have gone stale against a remote writer.
func (a *Arbiter) addHover(tx *replicated.Tx, hand interact.HandSlot, id string) {
	if id == "" {
		return
	}
	own := a.coll(hoverColl(hand))
	if tx.ListContains(own, id) {
		return
	}
	opp := hand.Opposite()
	if tx.ListContains(a.coll(hoverColl(opp)), id) ||
		tx.ListContains(a.coll(pinColl(opp)), id) ||
		tx.ListContains(a.coll(pinColl(hand)), id) {
		return
	}
	tx.ListAppend(own, id)
}

// togglePin implements the selection rules: same-hand re-select unpins,
// a target pinned by the opposite hand transfers, and a fresh pin removes
// the target from both hover sets because pin supersedes hover.
func (a *Arbiter) togglePin(tx *replicated.Tx, hand interact.HandSlot, id string) {
	if id == "" {
		return
	}
	own := a.coll(pinColl(hand))
	opp := a.coll(pinColl(hand.Opposite()))

	if tx.ListContains(own, id) {
		tx.ListRemoveValue(own, id)
		if cur, ok := tx.MapGet(a.coll(collSelections), a.userID); ok && cur == id {
			tx.MapDelete(a.coll(collSelections), a.userID)
		}
		return
	}

	if tx.ListContains(opp, id) {
		tx.ListRemoveValue(opp, id)
	}
	tx.ListRemoveValue(a.coll(collHoverLeft), id)
	tx.ListRemoveValue(a.coll(collHoverRight), id)
	tx.ListAppend(own, id)
	tx.MapSet(a.coll(collSelections), a.userID, id)
}

func (a *Arbiter) createBrush(tx *replicated.Tx, b *interact.Brush) {
	if b == nil || b.ID == "" {
		return
	}
	data, err := json.Marshal(b)
	if err != nil {
		log.Printf("encode brush %s: %v", b.ID, err)
		return
	}
	tx.ListAppend(a.coll(collBrushes), string(data))
}

// deleteBrush removes a brush by id. Per the rules this needs no ownership
// check: any participant may delete any brush.
func (a *Arbiter) deleteBrush(tx *replicated.Tx, id string) {
	snap := tx.ListSnapshot(a.coll(collBrushes))
	for _, raw := range snap {
		var b interact.Brush
		if json.Unmarshal([]byte(raw), &b) != nil {
			continue
		}
		if b.ID == id {
			tx.ListRemoveValue(a.coll(collBrushes), raw)
			return
		}
	}
}

func (a *Arbiter) brushExists(tx *replicated.Tx, id string) bool {
	for _, raw := range tx.ListSnapshot(a.coll(collBrushes)) {
		var b interact.Brush
		if json.Unmarshal([]byte(raw), &b) == nil && b.ID == id {
			return true
		}
	}
	return false
}

// moveBrush repositions a dragged brush to the pointermove point, mapped
// into simulation space. Moves of non-brush items are the renderer's
// concern and ignored here.
func (a *Arbiter) moveBrush(tx *replicated.Tx, ev interact.Event) {
	dragged, ok := tx.MapGet(a.coll(collDragState), string(ev.Hand))
	if !ok || dragged != ev.Item {
		return
	}

	snap := tx.ListSnapshot(a.coll(collBrushes))
	for _, raw := range snap {
		var b interact.Brush
		if json.Unmarshal([]byte(raw), &b) != nil || b.ID != ev.Item {
			continue
		}
		var t *coords.Transform
		if a.view != nil {
			t = a.view()
		}
		sim := coords.ToSimulation(ev.Point, t)
		b.X = sim.X
		b.Y = sim.Y
		data, err := json.Marshal(&b)
		if err != nil {
			return
		}
		tx.ListRemoveValue(a.coll(collBrushes), raw)
		tx.ListAppend(a.coll(collBrushes), string(data))
		return
	}
}

// summary is the derived aggregate recomputed after every transaction.
type summary struct {
	Hovered    int `json:"hovered"`
	Pinned     int `json:"pinned"`
	Brushes    int `json:"brushes"`
	Selections int `json:"selections"`
}

// updateAggregates recomputes the summary from the current collections and
// writes it only when its serialized form changed, keeping replication
// traffic quiet during steady state.
func (a *Arbiter) updateAggregates(tx *replicated.Tx) {
	s := summary{
		Hovered: len(tx.ListSnapshot(a.coll(collHoverLeft))) +
			len(tx.ListSnapshot(a.coll(collHoverRight))),
		Pinned: len(tx.ListSnapshot(a.coll(collPinLeft))) +
			len(tx.ListSnapshot(a.coll(collPinRight))),
		Brushes:    len(tx.ListSnapshot(a.coll(collBrushes))),
		Selections: len(tx.MapSnapshot(a.coll(collSelections))),
	}
	data, err := json.Marshal(s)
	if err != nil {
		return
	}
	if cur, ok := tx.MapGet(a.coll(collAggregates), aggregatesKey); ok && cur == string(data) {
		return
	}
	tx.MapSet(a.coll(collAggregates), aggregatesKey, string(data))
}

// RemoveBrush deletes a brush by id outside the gesture path, e.g. from
// the HTTP surface. Unknown ids are silent no-ops.
func (a *Arbiter) RemoveBrush(id string) {
	a.doc.Transact(func(tx *replicated.Tx) {
		a.deleteBrush(tx, id)
		a.updateAggregates(tx)
	})
}

// Hovered returns the ids a hand currently hovers, in insertion order.
func (a *Arbiter) Hovered(hand interact.HandSlot) []string {
	return a.doc.ListSnapshot(a.coll(hoverColl(hand)))
}

// Pinned returns the ids a hand currently pins, in insertion order.
func (a *Arbiter) Pinned(hand interact.HandSlot) []string {
	return a.doc.ListSnapshot(a.coll(pinColl(hand)))
}

// Brushes decodes the current sticky brushes.
func (a *Arbiter) Brushes() []interact.Brush {
	var out []interact.Brush
	for _, raw := range a.doc.ListSnapshot(a.coll(collBrushes)) {
		var b interact.Brush
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			continue
		}
		out = append(out, b)
	}
	return out
}

// Aggregates returns the serialized summary, or "" before the first write.
func (a *Arbiter) Aggregates() string {
	v, _ := a.doc.MapGet(a.coll(collAggregates), aggregatesKey)
	return v
}

// DragTarget returns the item a hand is dragging, or "".
func (a *Arbiter) DragTarget(hand interact.HandSlot) string {
	v, _ := a.doc.MapGet(a.coll(collDragState), string(hand))
	return v
}

// Selections returns the per-user click selections.
func (a *Arbiter) Selections() map[string]string {
	return a.doc.MapSnapshot(a.coll(collSelections))
}

// Viz returns the visualization instance key this arbiter serves.
func (a *Arbiter) Viz() string {
	return a.viz
}

// String implements fmt.Stringer for debug logs.
func (a *Arbiter) String() string {
	return fmt.Sprintf("arbiter(%s)", a.viz)
}
