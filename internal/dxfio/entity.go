// Package dxfio reads and writes the subset of the DXF entity model the
// nesting pipeline needs: LINE, ARC, CIRCLE, LWPOLYLINE, and SPLINE in
// modelspace. It favors a closed algebraic sum type over entity variants
// instead of an open class hierarchy.
package dxfio

import "github.com/jewisonj/nestworker/internal/geometry"

// Entity is one of Line, Arc, Circle, LwPolyline, or Spline.
type Entity interface {
	Layer() string
}

// Line is a single straight segment.
type Line struct {
	LayerName  string
	Start, End geometry.Point
}

func (l Line) Layer() string { return l.LayerName }

// Arc is a circular arc given by center, radius, and start/end angles in
// degrees, measured counter-clockwise from the positive X axis.
type Arc struct {
	LayerName            string
	Center               geometry.Point
	Radius               float64
	StartAngle, EndAngle float64
}

func (a Arc) Layer() string { return a.LayerName }

// Circle is a full circle.
type Circle struct {
	LayerName string
	Center    geometry.Point
	Radius    float64
}

func (c Circle) Layer() string { return c.LayerName }

// Vertex is one LWPOLYLINE vertex. Bulge encodes a circular arc segment to
// the next vertex: tan(included-angle / 4), signed by direction; zero means
// a straight segment.
type Vertex struct {
	Point geometry.Point
	Bulge float64
}

// LwPolyline is a lightweight polyline, open or closed, whose segments may
// individually bulge into arcs.
type LwPolyline struct {
	LayerName string
	Vertices  []Vertex
	Closed    bool
}

func (p LwPolyline) Layer() string { return p.LayerName }

// Spline is a NURBS curve, stored by its control points. Readers flatten it
// to a point sequence at chord tolerance before it is consumed by the
// nester; writers re-emit it as an LWPOLYLINE since bulge fidelity through
// a spline is not preserved.
type Spline struct {
	LayerName     string
	ControlPoints []geometry.Point
	Closed        bool
}

func (s Spline) Layer() string { return s.LayerName }
