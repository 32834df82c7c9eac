package dxfio

import (
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/jewisonj/nestworker/internal/geometry"
	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/dfs"
)

const minPolygonArea = 0.001

// Document is the result of reading one DXF file: the raw entities in read
// order (used by the writer to re-transform and re-emit them verbatim) and
// the closed polygons stitched and repaired from those entities, sorted by
// area descending (used by the nester; the first is the nominal outline).
type Document struct {
	Entities []Entity
	Polygons []geometry.Ring
}

// ReadOptions configures how a DXF is converted into polygons.
type ReadOptions struct {
	ChordTolerance float64
	LayerFilter    map[string]bool
}

// Read parses a DXF file on disk into a Document.
func Read(path string, opts ReadOptions) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dxf: cannot open %s: %w", path, err)
	}
	defer f.Close()

	chordTol := opts.ChordTolerance
	if chordTol <= 0 {
		chordTol = 0.01
	}

	pairs, err := readGroupPairs(f)
	if err != nil {
		return nil, fmt.Errorf("dxf: cannot read %s: %w", path, err)
	}

	rawEntities := sliceEntitiesSection(pairs)

	var entities []Entity
	var closedRings []geometry.Ring
	var openChains [][]geometry.Point

	for _, raw := range rawEntities {
		if opts.LayerFilter != nil && len(opts.LayerFilter) > 0 && !opts.LayerFilter[raw.layer] {
			continue
		}
		entity, chain, closed, ok := buildEntity(raw, chordTol)
		if !ok {
			continue
		}
		entities = append(entities, entity)
		if closed != nil {
			closedRings = append(closedRings, closed)
		} else if len(chain) >= 2 {
			openChains = append(openChains, chain)
		}
	}

	stitched, err := stitchChains(openChains, chordTol)
	if err != nil {
		return nil, fmt.Errorf("dxf: failed to stitch segments in %s: %w", path, err)
	}
	closedRings = append(closedRings, stitched...)

	polygons := make([]geometry.Ring, 0, len(closedRings))
	for _, ring := range closedRings {
		repaired := geometry.Repair(ring)
		if geometry.Area(repaired) > minPolygonArea {
			polygons = append(polygons, repaired)
		}
	}
	sort.SliceStable(polygons, func(i, j int) bool {
		return geometry.Area(polygons[i]) > geometry.Area(polygons[j])
	})

	return &Document{Entities: entities, Polygons: polygons}, nil
}

type rawEntity struct {
	kind  string
	layer string
	codes []groupPair
}

// sliceEntitiesSection walks the group-code stream looking for SECTION
// ENTITIES ... ENDSEC and splits its body into per-entity group-code runs,
// each starting at a 0-code entity marker.
func sliceEntitiesSection(pairs []groupPair) []rawEntity {
	inEntities := false
	var sectionName string
	var entities []rawEntity
	var current *rawEntity

	flush := func() {
		if current != nil {
			entities = append(entities, *current)
			current = nil
		}
	}

	for _, p := range pairs {
		if p.code == 0 {
			flush()
			switch p.value {
			case "SECTION":
				sectionName = ""
			case "ENDSEC":
				inEntities = false
				continue
			case "EOF":
				continue
			default:
				if inEntities {
					current = &rawEntity{kind: p.value}
				}
				continue
			}
			continue
		}
		if p.code == 2 && sectionName == "" {
			sectionName = p.value
			if sectionName == "ENTITIES" {
				inEntities = true
			}
			continue
		}
		if current != nil {
			if p.code == 8 {
				current.layer = p.value
			}
			current.codes = append(current.codes, p)
		}
	}
	flush()
	return entities
}

func (e rawEntity) floats(code int) []float64 {
	var out []float64
	for _, p := range e.codes {
		if p.code == code {
			out = append(out, p.asFloat())
		}
	}
	return out
}

func (e rawEntity) first(code int, def float64) float64 {
	for _, p := range e.codes {
		if p.code == code {
			return p.asFloat()
		}
	}
	return def
}

func (e rawEntity) firstInt(code int, def int) int {
	for _, p := range e.codes {
		if p.code == code {
			return p.asInt()
		}
	}
	return def
}

// buildEntity converts one raw group-code run into a typed Entity plus
// either a closed ring (for CIRCLE, closed LWPOLYLINE, closed SPLINE) or an
// open point chain to be stitched together with other entities' chains.
func buildEntity(raw rawEntity, chordTol float64) (entity Entity, openChain []geometry.Point, closedRing geometry.Ring, ok bool) {
	switch raw.kind {
	case "LINE":
		start := geometry.Point{X: raw.first(10, 0), Y: raw.first(20, 0)}
		end := geometry.Point{X: raw.first(11, 0), Y: raw.first(21, 0)}
		if dist(start, end) < chordTol {
			return nil, nil, nil, false
		}
		return Line{LayerName: raw.layer, Start: start, End: end}, []geometry.Point{start, end}, nil, true

	case "ARC":
		center := geometry.Point{X: raw.first(10, 0), Y: raw.first(20, 0)}
		radius := raw.first(40, 0)
		startAngle := raw.first(50, 0)
		endAngle := raw.first(51, 0)
		pts := arcPoints(center, radius, startAngle, endAngle, chordTol)
		return Arc{LayerName: raw.layer, Center: center, Radius: radius, StartAngle: startAngle, EndAngle: endAngle}, pts, nil, true

	case "CIRCLE":
		center := geometry.Point{X: raw.first(10, 0), Y: raw.first(20, 0)}
		radius := raw.first(40, 0)
		ring := circlePoints(center, radius, chordTol)
		return Circle{LayerName: raw.layer, Center: center, Radius: radius}, nil, ring, true

	case "LWPOLYLINE":
		flags := raw.firstInt(70, 0)
		closed := flags&1 != 0
		verts := lwPolylineVertices(raw)
		pts := polylineToPoints(verts, closed, chordTol)
		poly := LwPolyline{LayerName: raw.layer, Vertices: verts, Closed: closed}
		if closed {
			return poly, nil, geometry.Ring(pts), true
		}
		return poly, pts, nil, true

	case "SPLINE":
		flags := raw.firstInt(70, 0)
		closed := flags&1 != 0
		ctrl := controlPoints(raw)
		pts := flattenSpline(ctrl, closed, chordTol)
		spline := Spline{LayerName: raw.layer, ControlPoints: ctrl, Closed: closed}
		if closed {
			return spline, nil, geometry.Ring(pts), true
		}
		return spline, pts, nil, true

	default:
		return nil, nil, nil, false
	}
}

func lwPolylineVertices(raw rawEntity) []Vertex {
	var verts []Vertex
	var pending *Vertex
	for _, p := range raw.codes {
		switch p.code {
		case 10:
			if pending != nil {
				verts = append(verts, *pending)
			}
			pending = &Vertex{Point: geometry.Point{X: p.asFloat()}}
		case 20:
			if pending != nil {
				pending.Point.Y = p.asFloat()
			}
		case 42:
			if pending != nil {
				pending.Bulge = p.asFloat()
			}
		}
	}
	if pending != nil {
		verts = append(verts, *pending)
	}
	return verts
}

func controlPoints(raw rawEntity) []geometry.Point {
	var pts []geometry.Point
	var pending *geometry.Point
	for _, p := range raw.codes {
		switch p.code {
		case 10:
			if pending != nil {
				pts = append(pts, *pending)
			}
			pending = &geometry.Point{X: p.asFloat()}
		case 20:
			if pending != nil {
				pending.Y = p.asFloat()
			}
		}
	}
	if pending != nil {
		pts = append(pts, *pending)
	}
	return pts
}

func dist(a, b geometry.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// stitchChains builds an undirected graph over quantized segment endpoints
// and extracts minimal cycles as closed polygons, the named fallback for
// planar polygonization when a dedicated library is unavailable.
func stitchChains(chains [][]geometry.Point, chordTol float64) ([]geometry.Ring, error) {
	if len(chains) == 0 {
		return nil, nil
	}

	g := core.NewGraph(core.WithMultiEdges(), core.WithLoops())
	pointByKey := make(map[string]geometry.Point)
	keyOf := func(p geometry.Point) string {
		scale := 1.0
		if chordTol > 0 {
			scale = 1.0 / chordTol
		}
		qx := math.Round(p.X * scale)
		qy := math.Round(p.Y * scale)
		key := fmt.Sprintf("%d,%d", int64(qx), int64(qy))
		pointByKey[key] = p
		return key
	}

	for _, chain := range chains {
		for i := 0; i+1 < len(chain); i++ {
			from := keyOf(chain[i])
			to := keyOf(chain[i+1])
			if from == to {
				continue
			}
			if err := g.AddVertex(from); err != nil {
				return nil, err
			}
			if err := g.AddVertex(to); err != nil {
				return nil, err
			}
			if _, err := g.AddEdge(from, to, 0); err != nil {
				return nil, err
			}
		}
	}

	found, cycles, err := dfs.DetectCycles(g)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var rings []geometry.Ring
	for _, cycle := range cycles {
		if len(cycle) < 4 { // closed cycle repeats its start: need >=3 distinct vertices
			continue
		}
		ring := make(geometry.Ring, 0, len(cycle)-1)
		for _, key := range cycle[:len(cycle)-1] {
			ring = append(ring, pointByKey[key])
		}
		rings = append(rings, ring)
	}
	return rings, nil
}
