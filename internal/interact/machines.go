package interact

import (
	"time"

	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/detector"
)

// Machine timing and tolerance defaults.
const (
	// DefaultClickWindow is how long after a thumb-index pinch the "one"
	// gesture still completes a click.
	DefaultClickWindow = 500 * time.Millisecond
	// DefaultDwellDuration is how long the grabbing circle must hold still
	// before a sticky brush is created.
	DefaultDwellDuration = 2000 * time.Millisecond
	// DefaultDwellPosTol is the maximum circle-center drift during dwell,
	// in page pixels.
	DefaultDwellPosTol = 30.0
	// DefaultDwellRadiusTol is the maximum circle-radius drift during
	// dwell, in page pixels.
	DefaultDwellRadiusTol = 20.0
	// DefaultFistDwell is the steady hold required before a fist starts
	// panning, suppressing recognition jitter.
	DefaultFistDwell = 500 * time.Millisecond
	// DefaultMinZoom and DefaultMaxZoom clamp the zoom scale.
	DefaultMinZoom = 0.4
	DefaultMaxZoom = 4.0
)

// Config holds machine timing and tolerance settings.
type Config struct {
	ClickWindow    time.Duration
	DwellDuration  time.Duration
	DwellPosTol    float64
	DwellRadiusTol float64
	FistDwell      time.Duration
	MinZoom        float64
	MaxZoom        float64
}

// DefaultMachineConfig returns the standard machine settings.
func DefaultMachineConfig() Config {
	return Config{
		ClickWindow:    DefaultClickWindow,
		DwellDuration:  DefaultDwellDuration,
		DwellPosTol:    DefaultDwellPosTol,
		DwellRadiusTol: DefaultDwellRadiusTol,
		FistDwell:      DefaultFistDwell,
		MinZoom:        DefaultMinZoom,
		MaxZoom:        DefaultMaxZoom,
	}
}

// Machines evaluates the per-hand gesture state machines once per frame.
// Evaluation is synchronous; events reach the dispatcher in the order the
// machines produce them within the frame.
type Machines struct {
	cfg        Config
	hands      map[HandSlot]*HandState
	scene      SceneHitTester
	shared     SharedState
	dispatcher *Dispatcher
	view       coords.TransformFunc
	newBrushID func() string

	// Cross-hand pan/zoom state.
	lastTransform coords.Transform
	haveTransform bool
	zooming        bool
	zoomStartDist  float64
	zoomBase       coords.Transform
	zoomAnchorPage coords.Point
	zoomAnchorSim  coords.Point
	resumePan      bool
}

// NewMachines creates the gesture machines for one session. The transform
// accessor and shared-state view may be nil: machines then run without
// pan/zoom context and without hover arbitration.
func NewMachines(cfg Config, scene SceneHitTester, shared SharedState, d *Dispatcher, view coords.TransformFunc, newBrushID func() string) *Machines {
	return &Machines{
		cfg: cfg,
		hands: map[HandSlot]*HandState{
			HandLeft:  NewHandState(HandLeft),
			HandRight: NewHandState(HandRight),
		},
		scene:      scene,
		shared:     shared,
		dispatcher: d,
		view:       view,
		newBrushID: newBrushID,
	}
}

// Hand returns the state struct for a slot.
func (m *Machines) Hand(slot HandSlot) *HandState {
	return m.hands[slot]
}

// Reset clears all per-hand state and the shared pan/zoom state without
// emitting events. Used on visualization unmount.
func (m *Machines) Reset() {
	for _, h := range m.hands {
		h.Reset()
	}
	m.haveTransform = false
	m.zooming = false
	m.resumePan = false
}

// Evaluate runs every machine for one frame. Inputs carry at most one entry
// per slot; slots without an entry are treated as undetected hands. The
// frame timestamp drives every timer so callers (and tests) own the clock.
func (m *Machines) Evaluate(inputs []HandInput, now time.Time) {
	bySlot := map[HandSlot]HandInput{
		HandLeft:  {Slot: HandLeft, Label: detector.LabelNone},
		HandRight: {Slot: HandRight, Label: detector.LabelNone},
	}
	for _, in := range inputs {
		bySlot[in.Slot] = in
	}

	for _, slot := range []HandSlot{HandLeft, HandRight} {
		m.evaluateHand(m.hands[slot], bySlot[slot], now)
	}

	m.stepPanZoom(bySlot, now)

	for _, slot := range []HandSlot{HandLeft, HandRight} {
		m.hands[slot].lastLabel = bySlot[slot].Label
	}
}

// evaluateHand runs the label-keyed machines for one hand, handling exit
// transitions when the label changed since the previous frame.
func (m *Machines) evaluateHand(h *HandState, in HandInput, now time.Time) {
	if in.Label != h.lastLabel {
		m.exitLabel(h, in, now)
	}

	switch in.Label {
	case detector.LabelOne:
		m.stepClickComplete(h, in, now)
		m.stepHover(h, in, now)
	case detector.LabelThumbIndex:
		m.stepClickStart(h, now)
	case detector.LabelGrabbing:
		m.stepAreaHover(h, in, now)
	case detector.LabelOK:
		m.stepDrag(h, in, now)
	case detector.LabelFist:
		m.stepFistDwell(h, now)
	default:
		m.stepCleanup(h, in, now)
	}
}

// exitLabel runs the exit transitions for the label the hand just left.
func (m *Machines) exitLabel(h *HandState, in HandInput, now time.Time) {
	switch h.lastLabel {
	case detector.LabelOne, detector.LabelGrabbing:
		// Hover only survives its own gesture.
		m.clearHover(h, in, now)
		h.dwellValid = false
		h.dwellFired = false
	case detector.LabelOK:
		if h.dragTarget != "" {
			m.emit(Event{
				Type: EventPointerUp, Source: SourceGesture,
				Hand: h.Slot, Time: now,
				Item: h.dragTarget, Point: in.ThumbTip,
			})
			h.dragTarget = ""
		}
	case detector.LabelFist:
		h.fistActive = false
		h.hasLastTip = false
	}

	// A potential click survives only the thumb_index -> one transition;
	// stepClickComplete consumes it there before it can expire.
	if h.clickPhase == clickPotential && in.Label != detector.LabelOne {
		h.clickPhase = clickIdle
	}
}

func (m *Machines) emit(ev Event) {
	if m.dispatcher != nil {
		m.dispatcher.Dispatch(ev)
	}
}

// transform returns the visualization's current transform, or nil when no
// visualization is mounted.
func (m *Machines) transform() *coords.Transform {
	if m.view == nil {
		return nil
	}
	return m.view()
}
