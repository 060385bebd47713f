// Package interact turns per-frame hand detections into a disambiguated,
// ordered stream of interaction events: hover, select, drag, pan, zoom and
// sticky-brush creation. All state is held in explicit per-hand structs and
// evaluated synchronously once per processed frame.
package interact

import (
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/coords"
)

// HandSlot is one of the two logical gesture channels. Slots are fixed
// system-wide and independent of which physical user owns the hand.
type HandSlot string

const (
	HandLeft  HandSlot = "left"
	HandRight HandSlot = "right"
)

// Opposite returns the other hand slot.
func (h HandSlot) Opposite() HandSlot {
	if h == HandLeft {
		return HandRight
	}
	return HandLeft
}

// EventType identifies an interaction event variant.
type EventType string

const (
	EventPointerOver   EventType = "pointerover"
	EventPointerOut    EventType = "pointerout"
	EventPointerSelect EventType = "pointerselect"
	EventPointerDown   EventType = "pointerdown"
	EventPointerMove   EventType = "pointermove"
	EventPointerUp     EventType = "pointerup"
	EventDrag          EventType = "drag"
	EventZoom          EventType = "zoom"
	EventCreateBrush   EventType = "createStickyBrush"
)

// SourceGesture tags events produced by the gesture pipeline.
const SourceGesture = "gesture"

// Brush describes a sticky brush in simulation space.
type Brush struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	Kind   string  `json:"kind"`
}

// BrushKindSticky is the kind assigned to dwell-created brushes.
const BrushKindSticky = "sticky"

// Event is one interaction event. Events are immutable once constructed and
// always dispatched synchronously within the frame that produced them.
type Event struct {
	Type      EventType         `json:"type"`
	Source    string            `json:"source"`
	Hand      HandSlot          `json:"hand,omitempty"`
	Time      time.Time         `json:"time"`
	Item      string            `json:"item,omitempty"`
	Point     coords.Point      `json:"point"`
	Transform *coords.Transform `json:"transform,omitempty"`
	Brush     *Brush            `json:"brush,omitempty"`
}

// Consumer receives interaction events. Exactly one consumer is active at a
// time: the interactive surface of the currently mounted visualization.
type Consumer func(Event)

// Dispatcher delivers events to the single active consumer. Delivery is
// synchronous and frame-ordered; events produced while no consumer is
// mounted are dropped.
type Dispatcher struct {
	mu       sync.RWMutex
	consumer Consumer
}

// NewDispatcher creates a Dispatcher with no consumer attached.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// SetConsumer attaches the active consumer, replacing any previous one.
func (d *Dispatcher) SetConsumer(c Consumer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consumer = c
}

// Detach removes the active consumer. Called when a visualization unmounts.
func (d *Dispatcher) Detach() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.consumer = nil
}

// Dispatch delivers one event to the active consumer, if any.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	c := d.consumer
	d.mu.RUnlock()
	if c != nil {
		c(ev)
	}
}
