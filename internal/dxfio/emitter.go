package dxfio

import (
	"bufio"
	"fmt"

	"github.com/jewisonj/nestworker/internal/geometry"
)

// emitter writes DXF group-code pairs. It is a thin text encoder over
// bufio.Writer: no DXF-authoring library appears anywhere in the retrieved
// example pack or wider Go ecosystem the corpus otherwise reaches for, so
// this is hand-rolled and justified as such in DESIGN.md.
type emitter struct {
	w   *bufio.Writer
	err error
}

func newEmitter(w *bufio.Writer) *emitter {
	return &emitter{w: w}
}

func (e *emitter) pair(code int, value string) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, "%3d\n%s\n", code, value)
}

func (e *emitter) pairF(code int, value float64) {
	e.pair(code, fmt.Sprintf("%.6f", value))
}

func (e *emitter) pairI(code int, value int) {
	e.pair(code, fmt.Sprintf("%d", value))
}

func (e *emitter) flush() {
	if e.err != nil {
		return
	}
	e.err = e.w.Flush()
}

// header emits a minimal HEADER section pinning the R2010 DXF version.
func (e *emitter) header() {
	e.pair(0, "SECTION")
	e.pair(2, "HEADER")
	e.pair(9, "$ACADVER")
	e.pair(1, "AC1024") // R2010
	e.pair(0, "ENDSEC")
}

// tables emits a minimal TABLES section declaring the layers entities in
// the ENTITIES section reference, one LAYER entry per name/color pair.
func (e *emitter) tables(layers []layerDef) {
	e.pair(0, "SECTION")
	e.pair(2, "TABLES")
	e.pair(0, "TABLE")
	e.pair(2, "LAYER")
	e.pairI(70, len(layers))
	for _, l := range layers {
		e.pair(0, "LAYER")
		e.pair(2, l.Name)
		e.pairI(70, 0)
		e.pairI(62, l.Color)
		e.pair(6, "CONTINUOUS")
	}
	e.pair(0, "ENDTAB")
	e.pair(0, "ENDSEC")
}

// layerDef names one TABLES-section layer declaration.
type layerDef struct {
	Name  string
	Color int
}

func (e *emitter) sectionStart(name string) {
	e.pair(0, "SECTION")
	e.pair(2, name)
}

func (e *emitter) sectionEnd() {
	e.pair(0, "ENDSEC")
}

func (e *emitter) eof() {
	e.pair(0, "EOF")
}

func (e *emitter) line(layer string, color int, start, end geometry.Point) {
	e.pair(0, "LINE")
	e.pair(8, layer)
	e.pairI(62, color)
	e.pairF(10, start.X)
	e.pairF(20, start.Y)
	e.pairF(30, 0)
	e.pairF(11, end.X)
	e.pairF(21, end.Y)
	e.pairF(31, 0)
}

func (e *emitter) circle(layer string, color int, center geometry.Point, radius float64) {
	e.pair(0, "CIRCLE")
	e.pair(8, layer)
	e.pairI(62, color)
	e.pairF(10, center.X)
	e.pairF(20, center.Y)
	e.pairF(30, 0)
	e.pairF(40, radius)
}

func (e *emitter) arc(layer string, color int, center geometry.Point, radius, startDeg, endDeg float64) {
	e.pair(0, "ARC")
	e.pair(8, layer)
	e.pairI(62, color)
	e.pairF(10, center.X)
	e.pairF(20, center.Y)
	e.pairF(30, 0)
	e.pairF(40, radius)
	e.pairF(50, normalizeDeg(startDeg))
	e.pairF(51, normalizeDeg(endDeg))
}

func (e *emitter) lwpolyline(layer string, color int, verts []Vertex, closed bool) {
	e.pair(0, "LWPOLYLINE")
	e.pair(8, layer)
	e.pairI(62, color)
	e.pairI(90, len(verts))
	flags := 0
	if closed {
		flags = 1
	}
	e.pairI(70, flags)
	for _, v := range verts {
		e.pairF(10, v.Point.X)
		e.pairF(20, v.Point.Y)
		if v.Bulge != 0 {
			e.pairF(42, v.Bulge)
		}
	}
}

func (e *emitter) lwpolylineRing(layer string, color int, ring geometry.Ring, closed bool) {
	verts := make([]Vertex, len(ring))
	for i, p := range ring {
		verts[i] = Vertex{Point: p}
	}
	e.lwpolyline(layer, color, verts, closed)
}

func (e *emitter) text(layer string, color int, at geometry.Point, value string, height float64) {
	e.pair(0, "TEXT")
	e.pair(8, layer)
	e.pairI(62, color)
	e.pairF(10, at.X)
	e.pairF(20, at.Y)
	e.pairF(30, 0)
	e.pairF(40, height)
	e.pair(1, value)
}

func normalizeDeg(d float64) float64 {
	for d < 0 {
		d += 360
	}
	for d >= 360 {
		d -= 360
	}
	return d
}
