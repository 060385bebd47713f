// Package e2e drives the full interaction stack end to end: gesture
// machines over a live scene, events arbitrated into the replicated
// document, brushes mirrored into SQLite, and op feeds converging on a
// peer replica. The clock is simulated, so scenarios are deterministic.
package e2e

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/interact"
	"github.com/ayusman/mudra/internal/replicated"
	"github.com/ayusman/mudra/internal/scene"
	"github.com/ayusman/mudra/internal/spatial"
	"github.com/ayusman/mudra/internal/store"
)

// harness is one participant's full local stack.
type harness struct {
	t        *testing.T
	doc      *replicated.Doc
	arb      *arbiter.Arbiter
	scene    *scene.Scene
	machines *interact.Machines
	store    *store.Store
	feed     []replicated.Op
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("store.New error = %v", err)
	}
	t.Cleanup(func() { st.Close() })

	h := &harness{
		t:     t,
		doc:   replicated.NewDoc("site-e2e"),
		scene: scene.New(),
		store: st,
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	h.arb = arbiter.New(h.doc, "main", "user-e2e", nil)
	h.doc.OnChange(store.NewBrushPersister(st).Observer())
	h.doc.OnChange(func(ops []replicated.Op) { h.feed = append(h.feed, ops...) })

	dispatcher := interact.NewDispatcher()
	dispatcher.SetConsumer(h.arb.Apply)
	h.machines = interact.NewMachines(
		interact.DefaultMachineConfig(), h.scene, h.arb, dispatcher, nil, uuid.NewString,
	)
	return h
}

// step advances the simulated clock one frame and evaluates the machines.
func (h *harness) step(inputs ...interact.HandInput) {
	h.now = h.now.Add(33 * time.Millisecond)
	h.machines.Evaluate(inputs, h.now)
}

// hold repeats the same inputs for the given duration of frames.
func (h *harness) hold(d time.Duration, inputs ...interact.HandInput) {
	frames := int(d / (33 * time.Millisecond))
	for i := 0; i <= frames; i++ {
		h.step(inputs...)
	}
}

func (h *harness) addItem(id string, x, y float64, draggable bool) {
	h.scene.Upsert(scene.Item{
		ID:           id,
		Bounds:       spatial.Rect{X: x, Y: y, W: 60, H: 60},
		Interactable: true,
		Draggable:    draggable,
	})
	h.scene.Refresh()
}

func pointing(slot interact.HandSlot, x, y float64) interact.HandInput {
	return interact.HandInput{
		Slot:     slot,
		Label:    detector.LabelOne,
		IndexTip: coords.Point{X: x, Y: y},
	}
}

func pinching(slot interact.HandSlot, x, y float64) interact.HandInput {
	return interact.HandInput{
		Slot:     slot,
		Label:    detector.LabelThumbIndex,
		IndexTip: coords.Point{X: x, Y: y},
	}
}

func grabbing(slot interact.HandSlot, cx, cy, r float64) interact.HandInput {
	in := interact.HandInput{
		Slot:  slot,
		Label: detector.LabelGrabbing,
	}
	for i := 0; i < 5; i++ {
		a := float64(i) * 2 * math.Pi / 5
		in.Fingertips[i] = coords.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return in
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func TestScenario_HoverPinAndDenial(t *testing.T) {
	h := newHarness(t)
	h.addItem("bar-left", 100, 100, false)
	h.addItem("bar-right", 400, 100, true)

	// Left hand points at bar-left: the hover lands in the document.
	h.step(pointing(interact.HandLeft, 120, 120))
	if got := h.arb.Hovered(interact.HandLeft); !contains(got, "bar-left") {
		t.Fatalf("hover:left = %v, want bar-left", got)
	}

	// Pinch then point again inside the click window pins it.
	h.step(pinching(interact.HandLeft, 120, 120))
	h.step(pointing(interact.HandLeft, 122, 121))
	if got := h.arb.Pinned(interact.HandLeft); !contains(got, "bar-left") {
		t.Fatalf("pin:left = %v, want bar-left", got)
	}
	if got := h.arb.Hovered(interact.HandLeft); len(got) != 0 {
		t.Errorf("hover:left = %v after pin, want empty", got)
	}
	if got := h.arb.Selections()["user-e2e"]; got != "bar-left" {
		t.Errorf("selection = %q, want bar-left", got)
	}

	// The right hand pointing at the same target gets nothing: no hover
	// event is emitted and the document stays clean.
	h.step(
		pointing(interact.HandLeft, 122, 121),
		pointing(interact.HandRight, 125, 125),
	)
	if got := h.arb.Hovered(interact.HandRight); len(got) != 0 {
		t.Errorf("hover:right = %v, want empty while the target is pinned", got)
	}

	// A free target still works for the right hand.
	h.step(
		pointing(interact.HandLeft, 122, 121),
		pointing(interact.HandRight, 420, 120),
	)
	if got := h.arb.Hovered(interact.HandRight); !contains(got, "bar-right") {
		t.Errorf("hover:right = %v, want bar-right", got)
	}
}

func TestScenario_BrushLifecycle(t *testing.T) {
	h := newHarness(t)

	// Hold a steady grabbing circle over empty space for the dwell time.
	h.hold(2100*time.Millisecond, grabbing(interact.HandRight, 700, 400, 40))

	brushes := h.arb.Brushes()
	if len(brushes) != 1 {
		t.Fatalf("brushes = %v, want exactly one after dwell", brushes)
	}
	b := brushes[0]
	if math.Abs(b.X-700) > 5 || math.Abs(b.Y-400) > 5 {
		t.Errorf("brush at (%v, %v), want near (700, 400)", b.X, b.Y)
	}
	if b.Kind != interact.BrushKindSticky {
		t.Errorf("brush kind = %q, want sticky", b.Kind)
	}

	// The brush is persisted.
	live, err := h.store.Brushes().ListActive("main")
	if err != nil {
		t.Fatalf("ListActive error = %v", err)
	}
	if len(live) != 1 || live[0].ID != b.ID {
		t.Fatalf("persisted brushes = %v, want %s", live, b.ID)
	}

	// Holding still longer does not create a second brush.
	h.hold(1000*time.Millisecond, grabbing(interact.HandRight, 700, 400, 40))
	if got := h.arb.Brushes(); len(got) != 1 {
		t.Errorf("brushes = %v after continued dwell, want still one", got)
	}

	// The renderer registers the brush as a scene element; a click on it
	// deletes it for everyone.
	h.addItem(b.ID, b.X-30, b.Y-30, true)
	h.step() // release the grab
	h.step(pinching(interact.HandRight, b.X, b.Y))
	h.step(pointing(interact.HandRight, b.X, b.Y))

	if got := h.arb.Brushes(); len(got) != 0 {
		t.Fatalf("brushes = %v after delete click, want empty", got)
	}
	tombstoned, err := h.store.Brushes().GetByID(b.ID)
	if err != nil {
		t.Fatalf("GetByID error = %v", err)
	}
	if tombstoned.DeletedAt == nil {
		t.Error("deleted brush not tombstoned in the store")
	}
}

func TestScenario_PeerConvergence(t *testing.T) {
	h := newHarness(t)
	h.addItem("bar-left", 100, 100, false)

	// Local traffic: hover, pin, brush.
	h.step(pointing(interact.HandLeft, 120, 120))
	h.step(pinching(interact.HandLeft, 120, 120))
	h.step(pointing(interact.HandLeft, 122, 121))
	h.hold(2100*time.Millisecond, grabbing(interact.HandRight, 700, 400, 40))

	// A peer replica receives the op feed.
	peer := replicated.NewDoc("site-peer")
	peer.ApplyRemote(h.feed)

	for _, coll := range []string{
		"main/hover:left", "main/hover:right",
		"main/pin:left", "main/pin:right",
		"main/brushes",
	} {
		local := h.doc.ListSnapshot(coll)
		remote := peer.ListSnapshot(coll)
		if !reflect.DeepEqual(local, remote) {
			t.Errorf("%s diverged: local=%v peer=%v", coll, local, remote)
		}
	}
	if local, remote := h.doc.MapSnapshot("main/selections"), peer.MapSnapshot("main/selections"); !reflect.DeepEqual(local, remote) {
		t.Errorf("selections diverged: local=%v peer=%v", local, remote)
	}
	if local, remote := h.doc.MapSnapshot("main/aggregates"), peer.MapSnapshot("main/aggregates"); !reflect.DeepEqual(local, remote) {
		t.Errorf("aggregates diverged: local=%v peer=%v", local, remote)
	}

	// The merged state is the one the arbitration produced locally.
	if !peer.ListContains("main/pin:left", "bar-left") {
		t.Error("peer missing the pinned target")
	}
	if got := peer.ListSnapshot("main/brushes"); len(got) != 1 {
		t.Errorf("peer brushes = %v, want one", got)
	}
}
