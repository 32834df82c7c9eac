// Package svgio renders a nested sheet as an SVG preview for the browser.
// It consumes the same internal/dxfio.Rendered shape list the DXF writer
// produces, so the two outputs are always geometrically consistent without
// a redundant round trip through DXF text.
package svgio

import (
	"fmt"
	"os"
	"strings"

	"github.com/jewisonj/nestworker/internal/dxfio"
	"github.com/jewisonj/nestworker/internal/geometry"
)

// Layer stroke colors, pinned from the reference SVG writer: slate-500,
// slate-700, green-500, sky-400.
var layerColor = map[string]string{
	dxfio.LayerSheet:  "#64748b",
	dxfio.LayerMargin: "#334155",
	dxfio.LayerParts:  "#22c55e",
	dxfio.LayerLabels: "#38bdf8",
}

const (
	background    = "#0f172a" // slate-900
	defaultStroke = "#94a3b8"
	scale         = 12 // SVG pixels per DXF inch
	pad           = 0.5
)

// Write renders a sheet result as an SVG file at path.
func Write(path string, sheet dxfio.SheetInput) error {
	var b strings.Builder

	vbW := sheet.Width + pad*2
	vbH := sheet.Height + pad*2

	strokeW := maxF(0.08, sheet.Width/400)
	sheetStrokeW := strokeW * 0.5
	labelSize := maxF(0.8, sheet.Width/40)

	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%.3fpx" height="%.3fpx" viewBox="%.3f %.3f %.3f %.3f">`+"\n",
		vbW*scale, vbH*scale, -pad, -pad, vbW, vbH)
	fmt.Fprintf(&b, `<rect x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="%s"/>`+"\n",
		-pad, -pad, vbW, vbH, background)

	flipY := func(p geometry.Point) geometry.Point {
		return geometry.Point{X: p.X, Y: sheet.Height - p.Y}
	}

	for _, shape := range dxfio.BuildSheet(sheet) {
		color := layerColor[shape.Layer]
		if color == "" {
			color = defaultStroke
		}
		sw := strokeW
		if shape.Layer == dxfio.LayerSheet {
			sw = sheetStrokeW
		}

		switch shape.Kind {
		case dxfio.ShapeLine:
			s, e := flipY(shape.Points[0]), flipY(shape.Points[1])
			fmt.Fprintf(&b, `<line x1="%.4f" y1="%.4f" x2="%.4f" y2="%.4f" stroke="%s" stroke-width="%.4f" fill="none"/>`+"\n",
				s.X, s.Y, e.X, e.Y, color, sw)

		case dxfio.ShapeCircle:
			c := flipY(shape.Center)
			fmt.Fprintf(&b, `<circle cx="%.4f" cy="%.4f" r="%.4f" stroke="%s" stroke-width="%.4f" fill="none"/>`+"\n",
				c.X, c.Y, shape.Radius, color, sw)

		case dxfio.ShapeArc:
			writeArc(&b, shape, flipY, color, sw)

		case dxfio.ShapePolyline:
			writePolyline(&b, shape, flipY, color, sw)

		case dxfio.ShapeText:
			c := flipY(shape.Center)
			fmt.Fprintf(&b, `<text x="%.4f" y="%.4f" fill="%s" font-size="%.3fpx" font-family="monospace" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
				c.X, c.Y, color, labelSize, escapeText(shape.Text))
		}
	}

	b.WriteString("</svg>\n")
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func writePolyline(b *strings.Builder, shape dxfio.Rendered, flip func(geometry.Point) geometry.Point, color string, sw float64) {
	if len(shape.Points) == 0 {
		return
	}
	pts := make([]string, 0, len(shape.Points)+1)
	for _, p := range shape.Points {
		fp := flip(p)
		pts = append(pts, fmt.Sprintf("%.4f,%.4f", fp.X, fp.Y))
	}
	if shape.Closed && len(shape.Points) > 1 {
		fp := flip(shape.Points[0])
		pts = append(pts, fmt.Sprintf("%.4f,%.4f", fp.X, fp.Y))
	}
	fmt.Fprintf(b, `<polyline points="%s" stroke="%s" stroke-width="%.4f" fill="none"/>`+"\n",
		strings.Join(pts, " "), color, sw)
}

// writeArc mirrors the reference SVG writer's arc path: endpoints are
// computed from the un-flipped DXF center/radius/angles, then flipped.
// The sweep flag is always 1 since the Y-flip always reverses the
// winding direction, regardless of the arc's own sweep.
func writeArc(b *strings.Builder, shape dxfio.Rendered, flip func(geometry.Point) geometry.Point, color string, sw float64) {
	start := pointOnCircle(shape.Center, shape.Radius, shape.StartAngle)
	end := pointOnCircle(shape.Center, shape.Radius, shape.EndAngle)
	s, e := flip(start), flip(end)

	sweep := shape.EndAngle - shape.StartAngle
	for sweep < 0 {
		sweep += 360
	}
	largeArc := 0
	if sweep > 180 {
		largeArc = 1
	}

	fmt.Fprintf(b, `<path d="M %.4f,%.4f A %.4f,%.4f 0 %d,1 %.4f,%.4f" stroke="%s" stroke-width="%.4f" fill="none"/>`+"\n",
		s.X, s.Y, shape.Radius, shape.Radius, largeArc, e.X, e.Y, color, sw)
}

func pointOnCircle(center geometry.Point, radius, angleDeg float64) geometry.Point {
	rp := geometry.RotatePoint(geometry.Point{X: center.X + radius, Y: center.Y}, center, angleDeg)
	return rp
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
