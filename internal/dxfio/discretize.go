package dxfio

import (
	"math"

	"github.com/jewisonj/nestworker/internal/geometry"
)

const twoPi = 2 * math.Pi

// arcPoints discretizes an arc between startDeg and endDeg (degrees,
// counter-clockwise) into N chords, N = max(2, ceil(arc length / chord
// tolerance)) capped at 360, per the source reader's discretization rule.
func arcPoints(center geometry.Point, radius, startDeg, endDeg, chordTol float64) []geometry.Point {
	start := startDeg * math.Pi / 180
	end := endDeg * math.Pi / 180
	if start >= end {
		end += twoPi
	}
	sweep := end - start
	arcLength := radius * sweep
	n := int(math.Ceil(arcLength / chordTol))
	if n < 2 {
		n = 2
	}
	if n > 360 {
		n = 360
	}

	pts := make([]geometry.Point, 0, n+1)
	for i := 0; i <= n; i++ {
		theta := start + sweep*float64(i)/float64(n)
		pts = append(pts, geometry.Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		})
	}
	return pts
}

// circlePoints discretizes a full circle into N chords, N = max(12, ...)
// capped at 360, returned as a closed ring (no repeated closing vertex).
func circlePoints(center geometry.Point, radius, chordTol float64) geometry.Ring {
	circumference := twoPi * radius
	n := int(math.Ceil(circumference / chordTol))
	if n < 12 {
		n = 12
	}
	if n > 360 {
		n = 360
	}
	ring := make(geometry.Ring, 0, n)
	for i := 0; i < n; i++ {
		theta := twoPi * float64(i) / float64(n)
		ring = append(ring, geometry.Point{
			X: center.X + radius*math.Cos(theta),
			Y: center.Y + radius*math.Sin(theta),
		})
	}
	return ring
}

// polylineToPoints walks an LWPOLYLINE's vertices, expanding any non-zero
// bulge into its interpolated arc, and returns the flattened point
// sequence. For a closed polyline the duplicate closing point is dropped,
// matching Ring's no-repeated-first-vertex convention.
func polylineToPoints(verts []Vertex, closed bool, chordTol float64) []geometry.Point {
	n := len(verts)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return []geometry.Point{verts[0].Point}
	}

	segCount := n - 1
	if closed {
		segCount = n
	}

	pts := []geometry.Point{verts[0].Point}
	for i := 0; i < segCount; i++ {
		v := verts[i]
		next := verts[(i+1)%n]
		if v.Bulge == 0 {
			pts = append(pts, next.Point)
			continue
		}
		pts = append(pts, bulgeToArcPoints(v.Point, next.Point, v.Bulge, chordTol)...)
	}

	if closed && len(pts) > 1 && dist(pts[len(pts)-1], pts[0]) < chordTol {
		pts = pts[:len(pts)-1]
	}
	return pts
}

// bulgeToArcPoints interpolates the arc a bulge encodes between two
// vertices, using the standard bulge-to-arc construction: bulge =
// tan(Δθ/4); radius = chord²/(8·sagitta) + sagitta/2; center offset along
// the chord normal by (radius − sagitta), signed by bulge direction.
// Returns points excluding p1 and including p2.
func bulgeToArcPoints(p1, p2 geometry.Point, bulge, chordTol float64) []geometry.Point {
	chord := dist(p1, p2)
	if chord < 1e-12 {
		return []geometry.Point{p2}
	}
	halfChord := chord / 2
	sagitta := halfChord * bulge
	if math.Abs(sagitta) < 1e-12 {
		return []geometry.Point{p2}
	}
	radius := (chord*chord)/(8*sagitta) + sagitta/2

	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	// Normal to the chord, pointing left of p1->p2.
	nx, ny := -dy/chord, dx/chord

	sign := 1.0
	if bulge < 0 {
		sign = -1.0
	}
	offset := (math.Abs(radius) - math.Abs(sagitta)) * sign
	center := geometry.Point{X: mx + nx*offset, Y: my + ny*offset}

	startAngle := math.Atan2(p1.Y-center.Y, p1.X-center.X)
	endAngle := math.Atan2(p2.Y-center.Y, p2.X-center.X)

	if bulge > 0 {
		for endAngle < startAngle {
			endAngle += twoPi
		}
	} else {
		for endAngle > startAngle {
			endAngle -= twoPi
		}
	}

	sweep := math.Abs(endAngle - startAngle)
	absRadius := math.Abs(radius)
	arcLength := absRadius * sweep
	n := int(math.Ceil(arcLength / chordTol))
	if n < 2 {
		n = 2
	}
	if n > 360 {
		n = 360
	}

	pts := make([]geometry.Point, 0, n)
	for i := 1; i <= n; i++ {
		theta := startAngle + (endAngle-startAngle)*float64(i)/float64(n)
		pts = append(pts, geometry.Point{
			X: center.X + absRadius*math.Cos(theta),
			Y: center.Y + absRadius*math.Sin(theta),
		})
	}
	pts[len(pts)-1] = p2
	return pts
}

// flattenSpline approximates a SPLINE's control polygon as a Catmull-Rom
// curve through its control points and samples it at a fixed resolution
// per segment. No spline library appears anywhere in the retrieved
// example pack, so this is a deliberately simple hand-rolled flattening
// rather than an exact NURBS evaluation (see DESIGN.md).
func flattenSpline(points []geometry.Point, closed bool, chordTol float64) []geometry.Point {
	n := len(points)
	if n < 3 {
		out := make([]geometry.Point, n)
		copy(out, points)
		return out
	}

	const samplesPerSeg = 16
	get := func(i int) geometry.Point {
		if closed {
			idx := ((i % n) + n) % n
			return points[idx]
		}
		if i < 0 {
			return points[0]
		}
		if i >= n {
			return points[n-1]
		}
		return points[i]
	}

	segCount := n - 1
	if closed {
		segCount = n
	}

	var pts []geometry.Point
	for i := 0; i < segCount; i++ {
		p0, p1, p2, p3 := get(i-1), get(i), get(i+1), get(i+2)
		for s := 0; s < samplesPerSeg; s++ {
			t := float64(s) / float64(samplesPerSeg)
			pts = append(pts, catmullRomPoint(p0, p1, p2, p3, t))
		}
	}
	if !closed {
		pts = append(pts, points[n-1])
	}
	return pts
}

func catmullRomPoint(p0, p1, p2, p3 geometry.Point, t float64) geometry.Point {
	t2 := t * t
	t3 := t2 * t
	x := 0.5 * ((2 * p1.X) +
		(-p0.X+p2.X)*t +
		(2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 +
		(-p0.X+3*p1.X-3*p2.X+p3.X)*t3)
	y := 0.5 * ((2 * p1.Y) +
		(-p0.Y+p2.Y)*t +
		(2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 +
		(-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3)
	return geometry.Point{X: x, Y: y}
}
