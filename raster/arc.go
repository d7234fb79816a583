// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"math"

	"github.com/gogpu/gauge"
)

// cubic is one Bezier segment of a flattened arc.
type cubic struct {
	C1, C2, To gauge.Point
}

// arcCenter converts a circular SVG endpoint arc from p1 to p2 into center
// parameterization. theta1 is the start angle and dtheta the signed sweep,
// both in radians; dtheta is positive when sweep is set. A radius too small
// to span the chord is scaled up the way SVG user agents do.
func arcCenter(p1, p2 gauge.Point, r float64, large, sweep bool) (c gauge.Point, rr, theta1, dtheta float64) {
	r = math.Abs(r)
	hx := (p1.X - p2.X) / 2
	hy := (p1.Y - p2.Y) / 2
	d2 := hx*hx + hy*hy

	if lambda := d2 / (r * r); lambda > 1 {
		r *= math.Sqrt(lambda)
	}

	coef := 0.0
	if d2 > 0 {
		coef = math.Sqrt(math.Max(0, (r*r-d2)/d2))
	}
	if large == sweep {
		coef = -coef
	}
	cx := coef * hy
	cy := -coef * hx

	c = gauge.Point{X: cx + (p1.X+p2.X)/2, Y: cy + (p1.Y+p2.Y)/2}

	ux, uy := (hx-cx)/r, (hy-cy)/r
	vx, vy := (-hx-cx)/r, (-hy-cy)/r
	theta1 = math.Atan2(uy, ux)
	dtheta = math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
	if !sweep && dtheta > 0 {
		dtheta -= 2 * math.Pi
	} else if sweep && dtheta < 0 {
		dtheta += 2 * math.Pi
	}
	return c, r, theta1, dtheta
}

// arcCubics approximates the arc from p1 to p2 with cubic segments spanning
// at most a quarter turn each. It returns nil for a degenerate arc; callers
// then draw a straight line.
func arcCubics(p1, p2 gauge.Point, r float64, large, sweep bool) []cubic {
	if p1 == p2 || r == 0 {
		return nil
	}
	c, r, a0, da := arcCenter(p1, p2, r, large, sweep)

	n := int(math.Ceil(math.Abs(da) / (math.Pi / 2)))
	if n < 1 {
		n = 1
	}
	step := da / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)

	out := make([]cubic, 0, n)
	for i := 0; i < n; i++ {
		t0 := a0 + step*float64(i)
		t1 := t0 + step
		sin0, cos0 := math.Sincos(t0)
		sin1, cos1 := math.Sincos(t1)

		start := gauge.Point{X: c.X + r*cos0, Y: c.Y + r*sin0}
		end := gauge.Point{X: c.X + r*cos1, Y: c.Y + r*sin1}
		if i == n-1 {
			end = p2
		}
		out = append(out, cubic{
			C1: gauge.Point{X: start.X - k*r*sin0, Y: start.Y + k*r*cos0},
			C2: gauge.Point{X: end.X + k*r*sin1, Y: end.Y - k*r*cos1},
			To: end,
		})
	}
	return out
}
