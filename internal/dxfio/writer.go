package dxfio

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jewisonj/nestworker/internal/geometry"
)

const (
	LayerSheet  = "SHEET"
	LayerMargin = "MARGIN"
	LayerParts  = "PARTS"
	LayerLabels = "LABELS"

	colorSheet  = 7 // white
	colorMargin = 8 // gray
	colorParts  = 3 // green
	colorLabels = 5 // blue
)

// PlacementInput is one placed part instance to render onto a sheet.
type PlacementInput struct {
	PartID   string
	Instance int
	Rotation float64
	// Polygon is the final, already-transformed original (unbuffered)
	// polygon as placed by the nester — used for the fallback draw and to
	// locate the label centroid and the writer's target alignment point.
	Polygon geometry.Ring
	// Source is the part's parsed source document, or nil if it could not
	// be read, in which case the fallback polygon draw is used instead.
	Source *Document
}

// SheetInput is everything needed to render one Sheet Result as a DXF or
// SVG file; BuildSheet turns it into the shared Rendered representation
// both writers consume.
type SheetInput struct {
	Width, Height, Margin float64
	Placements            []PlacementInput
}

// WriteSheet renders sheet to a DXF file at path.
func WriteSheet(path string, sheet SheetInput) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dxf: cannot create %s: %w", path, err)
	}
	defer f.Close()

	w := newEmitter(bufio.NewWriter(f))

	w.header()
	w.tables([]layerDef{
		{LayerSheet, colorSheet},
		{LayerMargin, colorMargin},
		{LayerParts, colorParts},
		{LayerLabels, colorLabels},
	})
	w.sectionStart("ENTITIES")

	for _, shape := range BuildSheet(sheet) {
		switch shape.Kind {
		case ShapeLine:
			w.line(shape.Layer, shape.Color, shape.Points[0], shape.Points[1])
		case ShapeCircle:
			w.circle(shape.Layer, shape.Color, shape.Center, shape.Radius)
		case ShapeArc:
			w.arc(shape.Layer, shape.Color, shape.Center, shape.Radius, shape.StartAngle, shape.EndAngle)
		case ShapePolyline:
			w.lwpolylineRing(shape.Layer, shape.Color, geometry.Ring(shape.Points), shape.Closed)
		case ShapeText:
			w.text(shape.Layer, shape.Color, shape.Center, shape.Text, shape.Height)
		}
	}

	w.sectionEnd()
	w.eof()
	w.flush()
	return w.err
}

func collectCentroid(entities []Entity) geometry.Point {
	var sx, sy float64
	var n int
	visit := func(p geometry.Point) {
		sx += p.X
		sy += p.Y
		n++
	}
	for _, e := range entities {
		switch ent := e.(type) {
		case Line:
			visit(ent.Start)
			visit(ent.End)
		case Circle:
			visit(ent.Center)
		case Arc:
			visit(ent.Center)
		case LwPolyline:
			for _, v := range ent.Vertices {
				visit(v.Point)
			}
		case Spline:
			for _, p := range ent.ControlPoints {
				visit(p)
			}
		}
	}
	if n == 0 {
		return geometry.Point{}
	}
	return geometry.Point{X: sx / float64(n), Y: sy / float64(n)}
}

func transformAllPoints(entities []Entity, pivot geometry.Point, rotation, dx, dy float64) [][]geometry.Point {
	var sets [][]geometry.Point
	add := func(pts ...geometry.Point) {
		out := make([]geometry.Point, len(pts))
		for i, p := range pts {
			rp := geometry.RotatePoint(p, pivot, rotation)
			out[i] = geometry.Point{X: rp.X + dx, Y: rp.Y + dy}
		}
		sets = append(sets, out)
	}
	for _, e := range entities {
		switch ent := e.(type) {
		case Line:
			add(ent.Start, ent.End)
		case Circle:
			add(ent.Center)
		case Arc:
			add(ent.Center)
		case LwPolyline:
			pts := make([]geometry.Point, len(ent.Vertices))
			for i, v := range ent.Vertices {
				pts[i] = v.Point
			}
			add(pts...)
		case Spline:
			add(ent.ControlPoints...)
		}
	}
	return sets
}

func boundsOfPointSets(sets [][]geometry.Point) geometry.Bounds {
	var all geometry.Ring
	for _, s := range sets {
		all = append(all, s...)
	}
	return geometry.BoundsOf(all)
}
