package interact

import (
	"math"

	"github.com/ayusman/mudra/internal/coords"
	"github.com/ayusman/mudra/internal/spatial"
)

// enclosingCircle returns the minimum enclosing circle of the given points
// using Welzl's algorithm. Point counts here are tiny (five fingertips), so
// the recursive form is fine.
func enclosingCircle(pts []coords.Point) spatial.Circle {
	if len(pts) == 0 {
		return spatial.Circle{}
	}
	ps := make([]coords.Point, len(pts))
	copy(ps, pts)
	return welzl(ps, nil)
}

func welzl(pts []coords.Point, boundary []coords.Point) spatial.Circle {
	if len(pts) == 0 || len(boundary) == 3 {
		return circleFromBoundary(boundary)
	}

	p := pts[len(pts)-1]
	c := welzl(pts[:len(pts)-1], boundary)
	if circleContains(c, p) {
		return c
	}
	return welzl(pts[:len(pts)-1], append(boundary[:len(boundary):len(boundary)], p))
}

func circleFromBoundary(b []coords.Point) spatial.Circle {
	switch len(b) {
	case 0:
		return spatial.Circle{}
	case 1:
		return spatial.Circle{X: b[0].X, Y: b[0].Y}
	case 2:
		return circleFrom2(b[0], b[1])
	default:
		c := circleFrom3(b[0], b[1], b[2])
		return c
	}
}

func circleFrom2(a, b coords.Point) spatial.Circle {
	cx := (a.X + b.X) / 2
	cy := (a.Y + b.Y) / 2
	r := math.Hypot(a.X-b.X, a.Y-b.Y) / 2
	return spatial.Circle{X: cx, Y: cy, R: r}
}

func circleFrom3(a, b, c coords.Point) spatial.Circle {
	ax, ay := b.X-a.X, b.Y-a.Y
	bx, by := c.X-a.X, c.Y-a.Y
	d := 2 * (ax*by - ay*bx)
	if math.Abs(d) < 1e-12 {
		// Collinear: fall back to the widest pair.
		c1 := circleFrom2(a, b)
		c2 := circleFrom2(a, c)
		c3 := circleFrom2(b, c)
		best := c1
		if c2.R > best.R {
			best = c2
		}
		if c3.R > best.R {
			best = c3
		}
		return best
	}
	ux := (by*(ax*ax+ay*ay) - ay*(bx*bx+by*by)) / d
	uy := (ax*(bx*bx+by*by) - bx*(ax*ax+ay*ay)) / d
	return spatial.Circle{
		X: a.X + ux,
		Y: a.Y + uy,
		R: math.Hypot(ux, uy),
	}
}

func circleContains(c spatial.Circle, p coords.Point) bool {
	dx := p.X - c.X
	dy := p.Y - c.Y
	// Small epsilon so boundary points count as inside.
	return dx*dx+dy*dy <= c.R*c.R+1e-9
}

func pointDistance(a, b coords.Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

func midpoint(a, b coords.Point) coords.Point {
	return coords.Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
