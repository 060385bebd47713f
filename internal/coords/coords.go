// Package coords converts normalized hand landmarks between the coordinate
// spaces the interaction pipeline works in: the mirrored drawing surface,
// page (client) space over the video layer, and the simulation space of the
// currently mounted visualization.
package coords

import "github.com/ayusman/mudra/internal/detector"

// Point is a 2D point in one of the mapper's output spaces.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Transform is a pan/zoom transform owned by the mounted visualization:
// sim = (page - translate) / scale.
type Transform struct {
	Scale float64 `json:"scale"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

// TransformFunc is the pull accessor a visualization publishes for its
// current transform. It returns nil when no visualization is mounted;
// callers must degrade rather than fail.
type TransformFunc func() *Transform

// Mapper converts normalized landmarks into surface and page space. The
// video layer is rendered mirrored and cover-fit inside VideoRect; the
// interactive layer stacked above it is not mirrored, so the two spaces
// differ in handedness.
type Mapper struct {
	// SurfaceW, SurfaceH are the drawing surface dimensions in pixels.
	SurfaceW, SurfaceH float64
	// VideoRect is the page-space rectangle the video layer occupies.
	VideoRect Rect
	// VideoW, VideoH are the native video frame dimensions.
	VideoW, VideoH float64
}

// ToSurface maps a normalized landmark onto the drawing surface, mirrored
// horizontally to match the mirrored self-view.
func (m *Mapper) ToSurface(p detector.Point3D) Point {
	return Point{
		X: (1 - p.X) * m.SurfaceW,
		Y: p.Y * m.SurfaceH,
	}
}

// ToClient maps a normalized landmark into page space over the unmirrored
// interactive layer. The video is cover-fit inside VideoRect, so the frame
// is uniformly scaled and the overflow cropped equally on both sides; the
// horizontal mirror applied to the video is undone here so the point lines
// up with what the user sees themselves touching.
func (m *Mapper) ToClient(p detector.Point3D) Point {
	if m.VideoW <= 0 || m.VideoH <= 0 {
		return Point{X: m.VideoRect.X, Y: m.VideoRect.Y}
	}

	scale := m.VideoRect.W / m.VideoW
	if s := m.VideoRect.H / m.VideoH; s > scale {
		scale = s
	}
	drawnW := m.VideoW * scale
	drawnH := m.VideoH * scale
	offX := (m.VideoRect.W - drawnW) / 2
	offY := (m.VideoRect.H - drawnH) / 2

	return Point{
		X: m.VideoRect.X + offX + (1-p.X)*drawnW,
		Y: m.VideoRect.Y + offY + p.Y*drawnH,
	}
}

// ToSimulation maps a page-space point into the visualization's simulation
// space under the given transform. A nil transform is identity.
func ToSimulation(p Point, t *Transform) Point {
	if t == nil || t.Scale == 0 {
		return p
	}
	return Point{
		X: (p.X - t.X) / t.Scale,
		Y: (p.Y - t.Y) / t.Scale,
	}
}

// FromSimulation maps a simulation-space point back to page space under the
// given transform. A nil transform is identity.
func FromSimulation(p Point, t *Transform) Point {
	if t == nil || t.Scale == 0 {
		return p
	}
	return Point{
		X: p.X*t.Scale + t.X,
		Y: p.Y*t.Scale + t.Y,
	}
}
