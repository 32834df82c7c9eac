// Package nesting implements the Bottom-Left-Fill heuristic packer: given a
// list of parts with quantities and sheet parameters, it returns a
// deterministic multi-sheet placement. No I/O, no randomness — every tie is
// broken lexicographically so identical inputs always produce identical
// output (see Params and Result for the exact contract).
package nesting

import (
	"sort"

	"github.com/jewisonj/nestworker/internal/geometry"
)

// scanEpsilon tolerates floating point drift at the usable-area boundary
// during the grid scan, matching the source packer's "+0.001" slack.
const scanEpsilon = 0.001

// Part is one distinct outline with a quantity to place.
type Part struct {
	ID       string
	Polygon  geometry.Ring
	Quantity int
}

// Placement is a successfully placed part instance.
type Placement struct {
	PartID   string
	Instance int
	Polygon  geometry.Ring // the transformed original (unbuffered) polygon
	X, Y     float64
	Rotation int
}

// SheetResult is one physical sheet and everything placed on it.
type SheetResult struct {
	Index       int
	Width       float64
	Height      float64
	Placements  []Placement
	Utilization float64
}

// OccupiedArea sums the original (unbuffered) polygon areas placed on the sheet.
func (s SheetResult) OccupiedArea() float64 {
	var total float64
	for _, p := range s.Placements {
		total += geometry.Area(p.Polygon)
	}
	return total
}

// SkippedInstance is a part instance that never found a home.
type SkippedInstance struct {
	PartID   string
	Instance int
	Reason   string
}

// Result is the full outcome of one Nest invocation.
type Result struct {
	Sheets  []SheetResult
	Skipped []SkippedInstance
}

// TotalPartsPlaced counts placements across all sheets.
func (r Result) TotalPartsPlaced() int {
	n := 0
	for _, s := range r.Sheets {
		n += len(s.Placements)
	}
	return n
}

// TotalSheets reports how many sheets were used.
func (r Result) TotalSheets() int { return len(r.Sheets) }

// AvgUtilization is the arithmetic mean of per-sheet utilization.
func (r Result) AvgUtilization() float64 {
	if len(r.Sheets) == 0 {
		return 0
	}
	var sum float64
	for _, s := range r.Sheets {
		sum += s.Utilization
	}
	return sum / float64(len(r.Sheets))
}

// Params are the sheet and packing parameters for one Nest invocation.
type Params struct {
	SheetWidth   float64
	SheetHeight  float64
	Spacing      float64 // default 0.125 in, part-to-part clearance
	Margin       float64 // default 0.5 in, sheet edge clearance
	RotationStep int     // default 5; 0 disables rotation
}

type instance struct {
	id       string
	instance int
	original geometry.Ring
	buffered geometry.Ring
}

// Nest packs parts onto one or more sheets. It never returns an error: every
// input instance ends up placed on exactly one sheet or recorded as
// skipped with a reason. When the margin leaves no usable area, the result
// is empty: no sheets and no skipped instances.
func Nest(parts []Part, p Params) Result {
	usableWidth := p.SheetWidth - 2*p.Margin
	usableHeight := p.SheetHeight - 2*p.Margin
	usableArea := usableWidth * usableHeight

	if usableWidth <= 0 || usableHeight <= 0 {
		return Result{}
	}

	var invalid []SkippedInstance
	instances := make([]instance, 0)
	for _, part := range parts {
		if part.Quantity <= 0 {
			continue
		}
		buffered := geometry.Buffer(part.Polygon, p.Spacing/2)
		if len(buffered) < 3 || geometry.Area(buffered) <= 0 {
			for i := 1; i <= part.Quantity; i++ {
				invalid = append(invalid, SkippedInstance{PartID: part.ID, Instance: i, Reason: "invalid buffered geometry"})
			}
			continue
		}
		for i := 1; i <= part.Quantity; i++ {
			instances = append(instances, instance{
				id:       part.ID,
				instance: i,
				original: part.Polygon,
				buffered: buffered,
			})
		}
	}

	// Largest original area first: big parts are hardest to place.
	sort.SliceStable(instances, func(i, j int) bool {
		return geometry.Area(instances[i].original) > geometry.Area(instances[j].original)
	})

	rotations := admittedRotations(p.RotationStep)

	result := Result{Skipped: invalid}
	currentSheet := SheetResult{Index: 1, Width: p.SheetWidth, Height: p.SheetHeight}
	result.Sheets = append(result.Sheets, currentSheet)
	sheetBuffered := [][]geometry.Ring{{}}

	placeable := make([]instance, 0, len(instances))
	for _, inst := range instances {
		if isOversized(inst.buffered, usableWidth, usableHeight, rotations) {
			result.Skipped = append(result.Skipped, SkippedInstance{
				PartID:   inst.id,
				Instance: inst.instance,
				Reason:   "too large for sheet at any rotation",
			})
			continue
		}
		placeable = append(placeable, inst)
	}

	for _, inst := range placeable {
		lastIdx := len(result.Sheets) - 1
		placement, ok := tryPlace(inst, sheetBuffered[lastIdx], usableWidth, usableHeight, p.Margin, rotations)
		if !ok {
			result.Sheets = append(result.Sheets, SheetResult{
				Index:  len(result.Sheets) + 1,
				Width:  p.SheetWidth,
				Height: p.SheetHeight,
			})
			sheetBuffered = append(sheetBuffered, []geometry.Ring{})
			lastIdx = len(result.Sheets) - 1
			placement, ok = tryPlace(inst, sheetBuffered[lastIdx], usableWidth, usableHeight, p.Margin, rotations)
			if !ok {
				result.Skipped = append(result.Skipped, SkippedInstance{
					PartID:   inst.id,
					Instance: inst.instance,
					Reason:   "could not fit on any sheet",
				})
				continue
			}
		}

		result.Sheets[lastIdx].Placements = append(result.Sheets[lastIdx].Placements, placement.placement)
		sheetBuffered[lastIdx] = append(sheetBuffered[lastIdx], placement.buffered)
	}

	for i := range result.Sheets {
		area := result.Sheets[i].OccupiedArea()
		if usableArea > 0 {
			result.Sheets[i].Utilization = area / usableArea
		}
	}

	nonEmpty := result.Sheets[:0]
	for _, s := range result.Sheets {
		if len(s.Placements) > 0 {
			nonEmpty = append(nonEmpty, s)
		}
	}
	result.Sheets = nonEmpty
	for i := range result.Sheets {
		result.Sheets[i].Index = i + 1
	}

	return result
}

// admittedRotations mirrors Python's range(0, 360, step): step<=0 yields
// only {0}; otherwise ascending multiples of step strictly below 360 (so
// step=360 also yields exactly {0}).
func admittedRotations(step int) []int {
	if step <= 0 {
		return []int{0}
	}
	rotations := make([]int, 0, 360/step+1)
	for angle := 0; angle < 360; angle += step {
		rotations = append(rotations, angle)
	}
	return rotations
}

func isOversized(buffered geometry.Ring, usableWidth, usableHeight float64, rotations []int) bool {
	pivot := geometry.Centroid(buffered)
	for _, rot := range rotations {
		rotated := buffered
		if rot != 0 {
			rotated = geometry.Rotate(buffered, pivot, float64(rot))
		}
		b := geometry.BoundsOf(rotated)
		if b.Width() <= usableWidth && b.Height() <= usableHeight {
			return false
		}
	}
	return true
}

type candidate struct {
	placement Placement
	buffered  geometry.Ring
}

// tryPlace scans candidate positions for inst on the given sheet's current
// buffered-polygon collision list. Rotations are tried in ascending order;
// for each rotation the scan records only the first accepted position in
// its lowest y-row, then the overall winner across rotations is the one
// minimizing (y, x) lexicographically with a strict less-than comparison so
// the first (lowest-rotation) tie wins.
func tryPlace(inst instance, placed []geometry.Ring, usableWidth, usableHeight, margin float64, rotations []int) (candidate, bool) {
	pivot := geometry.Centroid(inst.original)

	bestY := mathInf
	bestX := mathInf
	var best candidate
	found := false

	for _, rot := range rotations {
		rotatedBuf := inst.buffered
		rotatedOrig := inst.original
		if rot != 0 {
			rotatedBuf = geometry.Rotate(inst.buffered, pivot, float64(rot))
			rotatedOrig = geometry.Rotate(inst.original, pivot, float64(rot))
		}

		rb := geometry.BoundsOf(rotatedBuf)
		normBuf := geometry.Translate(rotatedBuf, -rb.Min.X, -rb.Min.Y)
		normOrig := geometry.Translate(rotatedOrig, -rb.Min.X, -rb.Min.Y)

		nb := geometry.BoundsOf(normBuf)
		pw, ph := nb.Width(), nb.Height()
		if pw > usableWidth || ph > usableHeight {
			continue
		}

		step := 0.25
		if m := minF(pw, ph) / 4; m > step {
			step = m
		}

		placedAtY := false
		for y := 0.0; y+ph <= usableHeight+scanEpsilon; y += step {
			for x := 0.0; x+pw <= usableWidth+scanEpsilon; x += step {
				candBuf := geometry.Translate(normBuf, x+margin, y+margin)
				if overlapsAny(candBuf, placed) {
					continue
				}
				if y < bestY || (y == bestY && x < bestX) {
					actualOrig := geometry.Translate(normOrig, x+margin, y+margin)
					best = candidate{
						placement: Placement{
							PartID:   inst.id,
							Instance: inst.instance,
							Polygon:  actualOrig,
							X:        x + margin,
							Y:        y + margin,
							Rotation: rot,
						},
						buffered: candBuf,
					}
					bestY, bestX = y, x
					found = true
				}
				placedAtY = true
				break
			}
			if placedAtY {
				break
			}
		}
	}

	return best, found
}

func overlapsAny(candidate geometry.Ring, placed []geometry.Ring) bool {
	for _, other := range placed {
		if geometry.NonTriviallyIntersects(candidate, other) {
			return true
		}
	}
	return false
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

const mathInf = 1e18
