package nesting

import (
	"testing"

	"github.com/jewisonj/nestworker/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectangleOf(w, h float64) geometry.Ring {
	return geometry.Ring{{0, 0}, {w, 0}, {w, h}, {0, h}}
}

// Scenario 1 — single square, trivial: one 2x2 part, quantity 1, sheet
// 10x10, margin 0.5, spacing 0.125, rotation_step 90. One sheet, one
// placement at (0.5, 0.5) with no rotation, utilization 4/81.
func TestNestScenario1_SingleSquareTrivial(t *testing.T) {
	result := Nest([]Part{{ID: "A", Polygon: rectangleOf(2, 2), Quantity: 1}}, Params{
		SheetWidth: 10, SheetHeight: 10, Spacing: 0.125, Margin: 0.5, RotationStep: 90,
	})

	require.Len(t, result.Sheets, 1)
	require.Len(t, result.Sheets[0].Placements, 1)
	p := result.Sheets[0].Placements[0]
	assert.InDelta(t, 0.5, p.X, 1e-6)
	assert.InDelta(t, 0.5, p.Y, 1e-6)
	assert.Equal(t, 0, p.Rotation)
	assert.InDelta(t, 4.0/81.0, result.Sheets[0].Utilization, 1e-4)
	assert.Empty(t, result.Skipped)
}

// Scenario 2 — two copies, side by side: same part, quantity 2. Second
// anchors at prior_x + 2 (part) + 0.125 (spacing) = 2.625, both rotation 0,
// utilization 8/81.
func TestNestScenario2_TwoCopiesSideBySide(t *testing.T) {
	result := Nest([]Part{{ID: "A", Polygon: rectangleOf(2, 2), Quantity: 2}}, Params{
		SheetWidth: 10, SheetHeight: 10, Spacing: 0.125, Margin: 0.5, RotationStep: 90,
	})

	require.Len(t, result.Sheets, 1)
	require.Len(t, result.Sheets[0].Placements, 2)

	first, second := result.Sheets[0].Placements[0], result.Sheets[0].Placements[1]
	assert.InDelta(t, 0.5, first.X, 1e-6)
	assert.InDelta(t, 0.5, first.Y, 1e-6)
	assert.Equal(t, 0, first.Rotation)
	assert.InDelta(t, 2.625, second.X, 1e-6)
	assert.InDelta(t, 0.5, second.Y, 1e-6)
	assert.Equal(t, 0, second.Rotation)
	assert.InDelta(t, 8.0/81.0, result.Sheets[0].Utilization, 1e-4)
}

// Scenario 3 — overflow to a new sheet: one 4x4 part, quantity 5. Four fit
// on sheet 1 in a 2x2 grid; the fifth spawns sheet 2 at (0.5, 0.5).
func TestNestScenario3_OverflowToNewSheet(t *testing.T) {
	result := Nest([]Part{{ID: "A", Polygon: rectangleOf(4, 4), Quantity: 5}}, Params{
		SheetWidth: 10, SheetHeight: 10, Spacing: 0.125, Margin: 0.5, RotationStep: 5,
	})

	assert.Equal(t, 2, result.TotalSheets())
	assert.Equal(t, 5, result.TotalPartsPlaced())
	require.Len(t, result.Sheets, 2)
	assert.Len(t, result.Sheets[0].Placements, 4)
	assert.Len(t, result.Sheets[1].Placements, 1)
	last := result.Sheets[1].Placements[0]
	assert.InDelta(t, 0.5, last.X, 1e-6)
	assert.InDelta(t, 0.5, last.Y, 1e-6)
	assert.Empty(t, result.Skipped)
}

// Scenario 4 — oversize rejection: a 20x20 part cannot fit a 10x10 sheet at
// any rotation. All three instances are skipped; no sheets are produced.
func TestNestScenario4_OversizeRejection(t *testing.T) {
	result := Nest([]Part{{ID: "huge", Polygon: rectangleOf(20, 20), Quantity: 3}}, Params{
		SheetWidth: 10, SheetHeight: 10, Spacing: 0.125, Margin: 0.5, RotationStep: 90,
	})

	assert.Equal(t, 0, result.TotalSheets())
	require.Len(t, result.Skipped, 3)
	for _, s := range result.Skipped {
		assert.Equal(t, "huge", s.PartID)
		assert.Equal(t, "too large for sheet at any rotation", s.Reason)
	}
}

// Scenario 5 — pins the bottom-left-fill tie-break: a 9x1 strip fits the
// 9x1 usable area of a 10x2 sheet exactly at rotation 0, leaving no room
// for a second instance on the same sheet, so quantity 2 forces a second
// sheet rather than stacking vertically.
func TestNestScenario5_TieBreakForcesSecondSheet(t *testing.T) {
	result := Nest([]Part{{ID: "strip", Polygon: rectangleOf(9, 1), Quantity: 2}}, Params{
		SheetWidth: 10, SheetHeight: 2, Spacing: 0.125, Margin: 0.5, RotationStep: 90,
	})

	assert.Equal(t, 2, result.TotalSheets())
	require.Len(t, result.Sheets, 2)
	assert.Len(t, result.Sheets[0].Placements, 1)
	assert.Len(t, result.Sheets[1].Placements, 1)
	first := result.Sheets[0].Placements[0]
	assert.InDelta(t, 0.5, first.X, 1e-6)
	assert.InDelta(t, 0.5, first.Y, 1e-6)
}

// Scenario 6 — mixed parts: A (3x3, qty 2) sorts before B (1x1, qty 4) by
// area descending; all six instances share sheet 1.
func TestNestScenario6_MixedPartsLargestFirst(t *testing.T) {
	result := Nest([]Part{
		{ID: "A", Polygon: rectangleOf(3, 3), Quantity: 2},
		{ID: "B", Polygon: rectangleOf(1, 1), Quantity: 4},
	}, Params{
		SheetWidth: 10, SheetHeight: 10, Spacing: 0.125, Margin: 0.5, RotationStep: 90,
	})

	require.Len(t, result.Sheets, 1)
	assert.Len(t, result.Sheets[0].Placements, 6)
	assert.Equal(t, "A", result.Sheets[0].Placements[0].PartID)
	assert.Equal(t, "A", result.Sheets[0].Placements[1].PartID)
	assert.InDelta(t, (2*9.0+4*1.0)/81.0, result.Sheets[0].Utilization, 1e-3)
}

// Admitted rotation set: step=0 disables rotation entirely, step=360 is
// equivalent to step=0 (the range loop never advances past the first
// value), and an ordinary step produces the full ascending sequence.
func TestAdmittedRotations(t *testing.T) {
	assert.Equal(t, []int{0}, admittedRotations(0))
	assert.Equal(t, []int{0}, admittedRotations(360))
	assert.Equal(t, []int{0, 90, 180, 270}, admittedRotations(90))
}

// Zero or negative usable area (margin too large for the sheet) yields an
// empty result rather than a panic or a divide-by-zero utilization.
func TestNestDegenerateUsableAreaIsEmpty(t *testing.T) {
	result := Nest([]Part{{ID: "A", Polygon: rectangleOf(1, 1), Quantity: 1}}, Params{
		SheetWidth: 1, SheetHeight: 1, Spacing: 0, Margin: 1, RotationStep: 0,
	})
	assert.Empty(t, result.Sheets)
	assert.Empty(t, result.Skipped)
}

func TestResultAggregates(t *testing.T) {
	result := Nest([]Part{{ID: "A", Polygon: rectangleOf(2, 2), Quantity: 2}}, Params{
		SheetWidth: 3, SheetHeight: 3, Spacing: 0, Margin: 0.5, RotationStep: 0,
	})
	assert.Equal(t, 2, result.TotalPartsPlaced())
	assert.Equal(t, 2, result.TotalSheets())
	assert.Greater(t, result.AvgUtilization(), 0.0)
}
