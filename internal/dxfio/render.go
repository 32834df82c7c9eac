package dxfio

import (
	"strconv"

	"github.com/jewisonj/nestworker/internal/geometry"
)

// ShapeKind distinguishes the handful of renderable shapes a sheet DXF
// contains. Both the DXF text emitter and the SVG writer consume the same
// Rendered slice, so the two outputs are always geometrically consistent.
type ShapeKind int

const (
	ShapeLine ShapeKind = iota
	ShapeCircle
	ShapeArc
	ShapePolyline
	ShapeText
)

// Rendered is one fully-transformed shape ready to be written as either a
// DXF entity or an SVG element.
type Rendered struct {
	Kind       ShapeKind
	Layer      string
	Color      int
	Points     []geometry.Point // Line: 2 points. Polyline: n points.
	Center     geometry.Point   // Circle, Arc.
	Radius     float64
	StartAngle float64 // degrees, Arc only
	EndAngle   float64
	Closed     bool // Polyline only
	Text       string
	Height     float64 // Text only
}

// BuildSheet materializes every shape a Sheet Result's DXF/SVG output
// contains: the sheet rectangle, the margin rectangle, each placement's
// transformed source geometry (or fallback polygon), and each placement's
// label.
func BuildSheet(sheet SheetInput) []Rendered {
	var out []Rendered

	out = append(out, Rendered{
		Kind:  ShapePolyline,
		Layer: LayerSheet,
		Color: colorSheet,
		Points: []geometry.Point{
			{X: 0, Y: 0}, {X: sheet.Width, Y: 0},
			{X: sheet.Width, Y: sheet.Height}, {X: 0, Y: sheet.Height},
		},
		Closed: true,
	})

	if sheet.Margin > 0 && sheet.Width-2*sheet.Margin > 0 && sheet.Height-2*sheet.Margin > 0 {
		m := sheet.Margin
		out = append(out, Rendered{
			Kind:  ShapePolyline,
			Layer: LayerMargin,
			Color: colorMargin,
			Points: []geometry.Point{
				{X: m, Y: m}, {X: sheet.Width - m, Y: m},
				{X: sheet.Width - m, Y: sheet.Height - m}, {X: m, Y: sheet.Height - m},
			},
			Closed: true,
		})
	}

	labelHeight := minF(0.25, sheet.Width/100)

	for _, p := range sheet.Placements {
		out = append(out, renderPlacement(p)...)
		c := geometry.Centroid(p.Polygon)
		out = append(out, Rendered{
			Kind:   ShapeText,
			Layer:  LayerLabels,
			Color:  colorLabels,
			Center: c,
			Text:   fmtLabel(p.PartID, p.Instance),
			Height: labelHeight,
		})
	}

	return out
}

func renderPlacement(p PlacementInput) []Rendered {
	if p.Source == nil || len(p.Source.Entities) == 0 {
		return []Rendered{{
			Kind:   ShapePolyline,
			Layer:  LayerParts,
			Color:  colorParts,
			Points: append([]geometry.Point(nil), p.Polygon...),
			Closed: true,
		}}
	}

	centroid := collectCentroid(p.Source.Entities)
	rotated := transformAllPoints(p.Source.Entities, centroid, p.Rotation, 0, 0)
	rBounds := boundsOfPointSets(rotated)
	target := geometry.BoundsOf(p.Polygon).Min
	dx := target.X - rBounds.Min.X
	dy := target.Y - rBounds.Min.Y

	transform := func(pt geometry.Point) geometry.Point {
		rp := geometry.RotatePoint(pt, centroid, p.Rotation)
		return geometry.Point{X: rp.X + dx, Y: rp.Y + dy}
	}

	var shapes []Rendered
	for _, e := range p.Source.Entities {
		switch ent := e.(type) {
		case Line:
			shapes = append(shapes, Rendered{
				Kind: ShapeLine, Layer: LayerParts, Color: colorParts,
				Points: []geometry.Point{transform(ent.Start), transform(ent.End)},
			})
		case Circle:
			shapes = append(shapes, Rendered{
				Kind: ShapeCircle, Layer: LayerParts, Color: colorParts,
				Center: transform(ent.Center), Radius: ent.Radius,
			})
		case Arc:
			shapes = append(shapes, Rendered{
				Kind: ShapeArc, Layer: LayerParts, Color: colorParts,
				Center: transform(ent.Center), Radius: ent.Radius,
				StartAngle: normalizeDeg(ent.StartAngle + p.Rotation),
				EndAngle:   normalizeDeg(ent.EndAngle + p.Rotation),
			})
		case LwPolyline:
			pts := make([]geometry.Point, len(ent.Vertices))
			for i, v := range ent.Vertices {
				pts[i] = transform(v.Point)
			}
			shapes = append(shapes, Rendered{
				Kind: ShapePolyline, Layer: LayerParts, Color: colorParts,
				Points: pts, Closed: ent.Closed,
			})
		case Spline:
			flat := flattenSpline(ent.ControlPoints, ent.Closed, 0.01)
			pts := make([]geometry.Point, len(flat))
			for i, pt := range flat {
				pts[i] = transform(pt)
			}
			shapes = append(shapes, Rendered{
				Kind: ShapePolyline, Layer: LayerParts, Color: colorParts,
				Points: pts, Closed: ent.Closed,
			})
		}
	}
	return shapes
}

func fmtLabel(partID string, instance int) string {
	return partID + "#" + strconv.Itoa(instance)
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
