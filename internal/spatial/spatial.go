// Package spatial provides a region quadtree used for interactive
// hit-testing of scene items at frame rate. The index is built in one shot
// over a fixed region and discarded on rebuild; it is never mutated in
// place.
package spatial

import "math"

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	X, Y, W, H float64
}

// Circle is a circular query region in page coordinates.
type Circle struct {
	X, Y, R float64
}

// Item is an opaque scene reference with its bounding box. Items are owned
// by the index for the lifetime of one build.
type Item struct {
	Ref    string
	Bounds Rect
}

// ContainsPoint reports whether (x, y) lies inside the rectangle.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// IntersectsRect reports whether two rectangles overlap.
func (r Rect) IntersectsRect(o Rect) bool {
	return r.X <= o.X+o.W && r.X+r.W >= o.X &&
		r.Y <= o.Y+o.H && r.Y+r.H >= o.Y
}

// IntersectsCircle reports whether the rectangle and circle overlap, using
// the closest point on the rectangle to the circle center.
func (r Rect) IntersectsCircle(c Circle) bool {
	cx := math.Max(r.X, math.Min(c.X, r.X+r.W))
	cy := math.Max(r.Y, math.Min(c.Y, r.Y+r.H))
	dx := c.X - cx
	dy := c.Y - cy
	return dx*dx+dy*dy <= c.R*c.R
}
