package pyroengine

import "sort"

// CurvePoint is one (x,y) control point of a Curve, both in [0,1].
type CurvePoint struct {
	X, Y float32
}

// Curve is an ordered sequence of control points, evaluated as piecewise linear
// interpolation clamped at the endpoints (spec §3).
type Curve struct {
	Points []CurvePoint
}

// NewLinearCurve returns the identity curve y=x, the default when a stage omits one.
func NewLinearCurve() Curve {
	return Curve{Points: []CurvePoint{{0, 0}, {1, 1}}}
}

// NewEaseInOutCurve approximates a cubic ease-in-out with a handful of samples; used
// as the morphing engine's default easing (spec §4.2).
func NewEaseInOutCurve() Curve {
	const n = 8
	pts := make([]CurvePoint, 0, n+1)
	for i := 0; i <= n; i++ {
		t := float32(i) / float32(n)
		var y float32
		if t < 0.5 {
			y = 4 * t * t * t
		} else {
			f := -2*t + 2
			y = 1 - f*f*f/2
		}
		pts = append(pts, CurvePoint{t, y})
	}
	return Curve{Points: pts}
}

// Eval evaluates the curve at x, clamping x to [0,1] and clamping output at the
// endpoints for x outside the control points' span.
func (c Curve) Eval(x float32) float32 {
	if len(c.Points) == 0 {
		return clampf(x, 0, 1)
	}
	x = clampf(x, 0, 1)
	pts := c.Points
	if x <= pts[0].X {
		return pts[0].Y
	}
	last := pts[len(pts)-1]
	if x >= last.X {
		return last.Y
	}
	idx := sort.Search(len(pts), func(i int) bool { return pts[i].X >= x })
	if idx == 0 {
		return pts[0].Y
	}
	a, b := pts[idx-1], pts[idx]
	if b.X == a.X {
		return b.Y
	}
	t := (x - a.X) / (b.X - a.X)
	return lerpf(a.Y, b.Y, t)
}
