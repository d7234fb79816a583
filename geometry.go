package gauge

import "math"

// degToRad converts an angle in degrees to radians.
func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180)
}

// dialPoint returns the point at radius r from o for a dial angle.
// Dial angles are offset by +90 degrees so that 0 points straight down and
// values grow clockwise. Ticks, labels and the needle all use this.
func dialPoint(o Point, r, angle float64) Point {
	rad := degToRad(angle + 90)
	return o.Add(Pt(r*math.Cos(rad), r*math.Sin(rad)))
}

// polarToCartesian is the arc helper's convention: 0 degrees points straight
// up. Band angles are shifted by -180 before they get here.
func polarToCartesian(c Point, r, angle float64) Point {
	rad := degToRad(angle - 90)
	return c.Add(Pt(r*math.Cos(rad), r*math.Sin(rad)))
}

// radialLine returns the segment from radius r0 to r1 along a dial angle.
func radialLine(o Point, r0, r1, angle float64) Path {
	return Path{Segments: []Segment{
		{Op: OpMoveTo, To: dialPoint(o, r0, angle)},
		{Op: OpLineTo, To: dialPoint(o, r1, angle)},
	}}
}

// annularWedge returns the closed band between inner and outer radius from
// start to end (arc helper degrees). The outer arc runs back from end to
// start with sweep 0 and the inner arc forward with sweep 1, so the outline
// never crosses itself. The large-arc flag is set only for spans over 180.
func annularWedge(c Point, outer, inner, start, end float64) Path {
	startOuter := polarToCartesian(c, outer, end)
	endOuter := polarToCartesian(c, outer, start)
	startInner := polarToCartesian(c, inner, end)
	endInner := polarToCartesian(c, inner, start)

	large := end-start > 180

	return Path{Segments: []Segment{
		{Op: OpMoveTo, To: startOuter},
		{Op: OpArcTo, To: endOuter, R: outer, LargeArc: large, Sweep: false},
		{Op: OpLineTo, To: endInner},
		{Op: OpArcTo, To: startInner, R: inner, LargeArc: large, Sweep: true},
		{Op: OpClose},
	}}
}
