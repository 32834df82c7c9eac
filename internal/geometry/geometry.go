// Package geometry provides the 2D polygon primitives the nester, DXF
// reader, and DXF writer share: area, centroid, bounding box, rotation,
// translation, outward buffering, and a touch-vs-interior intersection
// test. Built on paulmach/orb for area/centroid and ctessum/polyclip-go for
// polygon boolean operations, per the rotation-pivot and buffering
// conventions the source nesting pipeline depends on.
package geometry

import (
	"math"

	"github.com/ctessum/polyclip-go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Point is a 2D coordinate in inches.
type Point struct {
	X, Y float64
}

// Ring is a closed polygon boundary: an ordered list of vertices with an
// implicit edge from the last point back to the first. Rings never repeat
// the first point as the last.
type Ring []Point

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min, Max Point
}

// Width reports the bounding box width.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height reports the bounding box height.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

func (r Ring) toOrb() orb.Ring {
	ring := make(orb.Ring, 0, len(r)+1)
	for _, p := range r {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	if len(ring) > 0 {
		ring = append(ring, ring[0])
	}
	return ring
}

func (r Ring) toPolyclip() polyclip.Polygon {
	c := make(polyclip.Contour, 0, len(r))
	for _, p := range r {
		c = append(c, polyclip.Point{X: p.X, Y: p.Y})
	}
	return polyclip.Polygon{c}
}

func fromPolyclipContour(c polyclip.Contour) Ring {
	r := make(Ring, 0, len(c))
	for _, p := range c {
		r = append(r, Point{X: p.X, Y: p.Y})
	}
	return r
}

// Area returns the unsigned area of the ring.
func Area(r Ring) float64 {
	if len(r) < 3 {
		return 0
	}
	a := planar.Area(r.toOrb())
	if a < 0 {
		a = -a
	}
	return a
}

// Centroid returns the area-weighted centroid of the ring.
func Centroid(r Ring) Point {
	if len(r) == 0 {
		return Point{}
	}
	c, area := planar.CentroidArea(r.toOrb())
	if area == 0 {
		// Degenerate ring (collinear points): fall back to the vertex
		// average so rotation still has a sensible pivot.
		var sx, sy float64
		for _, p := range r {
			sx += p.X
			sy += p.Y
		}
		n := float64(len(r))
		return Point{X: sx / n, Y: sy / n}
	}
	return Point{X: c[0], Y: c[1]}
}

// BoundsOf returns the axis-aligned bounding box of the ring.
func BoundsOf(r Ring) Bounds {
	if len(r) == 0 {
		return Bounds{}
	}
	min := r[0]
	max := r[0]
	for _, p := range r[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return Bounds{Min: min, Max: max}
}

// Rotate rotates every vertex of r about pivot by degreesCCW degrees
// (counter-clockwise, matching the DXF convention).
func Rotate(r Ring, pivot Point, degreesCCW float64) Ring {
	if degreesCCW == 0 {
		out := make(Ring, len(r))
		copy(out, r)
		return out
	}
	theta := degreesCCW * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)
	out := make(Ring, len(r))
	for i, p := range r {
		dx, dy := p.X-pivot.X, p.Y-pivot.Y
		out[i] = Point{
			X: pivot.X + dx*cos - dy*sin,
			Y: pivot.Y + dx*sin + dy*cos,
		}
	}
	return out
}

// Translate shifts every vertex of r by (dx, dy).
func Translate(r Ring, dx, dy float64) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[i] = Point{X: p.X + dx, Y: p.Y + dy}
	}
	return out
}

// RotatePoint rotates a single point about pivot by degreesCCW degrees.
func RotatePoint(p, pivot Point, degreesCCW float64) Point {
	theta := degreesCCW * math.Pi / 180
	sin, cos := math.Sin(theta), math.Cos(theta)
	dx, dy := p.X-pivot.X, p.Y-pivot.Y
	return Point{
		X: pivot.X + dx*cos - dy*sin,
		Y: pivot.Y + dx*sin + dy*cos,
	}
}

// Repair fixes a self-intersecting or improperly-wound ring by unioning it
// against itself, the Go equivalent of Shapely's zero-width buffer(0)
// repair used by the source DXF reader. Returns the largest resulting
// contour, or the input unchanged if the union yields nothing.
func Repair(r Ring) Ring {
	if len(r) < 3 {
		return r
	}
	p := r.toPolyclip()
	result := p.Construct(polyclip.UNION, p)
	if len(result) == 0 {
		return r
	}
	best := result[0]
	bestArea := Area(fromPolyclipContour(best))
	for _, c := range result[1:] {
		if a := Area(fromPolyclipContour(c)); a > bestArea {
			best, bestArea = c, a
		}
	}
	return fromPolyclipContour(best)
}

// Buffer offsets r outward by distance using a miter-join vertex offset:
// each vertex moves along the bisector of its two incident edge normals,
// scaled so the perpendicular offset from each edge is exactly distance.
// distance <= 0 returns r unchanged (no inward buffering is ever requested
// by the nester). The result is repaired (self-union) to collapse any
// miter spikes on sharp concave corners into a valid simple polygon.
func Buffer(r Ring, distance float64) Ring {
	n := len(r)
	if n < 3 || distance <= 0 {
		out := make(Ring, n)
		copy(out, r)
		return out
	}
	if !isCCW(r) {
		r = reversed(r)
	}
	out := make(Ring, n)
	for i := 0; i < n; i++ {
		prev := r[(i-1+n)%n]
		curr := r[i]
		next := r[(i+1)%n]

		n1 := outwardNormal(prev, curr)
		n2 := outwardNormal(curr, next)

		bx, by := n1.X+n2.X, n1.Y+n2.Y
		blen := math.Hypot(bx, by)
		if blen < 1e-9 {
			// Nearly 180 degree turn-back: offset along single normal.
			out[i] = Point{X: curr.X + n1.X*distance, Y: curr.Y + n1.Y*distance}
			continue
		}
		bx, by = bx/blen, by/blen

		cosHalf := bx*n1.X + by*n1.Y
		if cosHalf < 0.2 {
			cosHalf = 0.2 // clamp miter length on very sharp corners
		}
		miter := distance / cosHalf
		out[i] = Point{X: curr.X + bx*miter, Y: curr.Y + by*miter}
	}
	return Repair(out)
}

func outwardNormal(a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length < 1e-12 {
		return Point{}
	}
	// Right-hand normal of a CCW edge points outward.
	return Point{X: dy / length, Y: -dx / length}
}

func isCCW(r Ring) bool {
	var sum float64
	n := len(r)
	for i := 0; i < n; i++ {
		a := r[i]
		b := r[(i+1)%n]
		sum += (b.X - a.X) * (b.Y + a.Y)
	}
	return sum < 0
}

func reversed(r Ring) Ring {
	out := make(Ring, len(r))
	for i, p := range r {
		out[len(r)-1-i] = p
	}
	return out
}

// NonTriviallyIntersects reports whether a and b's interiors overlap, as
// opposed to merely touching along an edge or at a point. Used for
// placement collision checks: touching buffered polygons are an accepted
// placement, overlapping ones are not.
func NonTriviallyIntersects(a, b Ring) bool {
	if len(a) < 3 || len(b) < 3 {
		return false
	}
	pa, pb := a.toPolyclip(), b.toPolyclip()
	inter := pa.Construct(polyclip.INTERSECTION, pb)
	for _, c := range inter {
		if Area(fromPolyclipContour(c)) > 1e-9 {
			return true
		}
	}
	return false
}
