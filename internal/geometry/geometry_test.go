package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(side float64) Ring {
	return Ring{{0, 0}, {side, 0}, {side, side}, {0, side}}
}

func TestAreaSquare(t *testing.T) {
	assert.InDelta(t, 4.0, Area(square(2)), 1e-9)
}

func TestCentroidSquare(t *testing.T) {
	c := Centroid(square(2))
	assert.InDelta(t, 1.0, c.X, 1e-9)
	assert.InDelta(t, 1.0, c.Y, 1e-9)
}

func TestBoundsOf(t *testing.T) {
	b := BoundsOf(square(3))
	assert.Equal(t, Point{0, 0}, b.Min)
	assert.Equal(t, Point{3, 3}, b.Max)
	assert.InDelta(t, 3.0, b.Width(), 1e-9)
	assert.InDelta(t, 3.0, b.Height(), 1e-9)
}

func TestRotate90AboutCentroid(t *testing.T) {
	r := square(2)
	c := Centroid(r)
	rotated := Rotate(r, c, 90)
	b := BoundsOf(rotated)
	// A square rotated 90 degrees about its own centroid occupies the same
	// bounding box extents (up to floating point).
	assert.InDelta(t, 2.0, b.Width(), 1e-9)
	assert.InDelta(t, 2.0, b.Height(), 1e-9)
}

func TestRotateZeroIsIdentity(t *testing.T) {
	r := square(2)
	rotated := Rotate(r, Point{0, 0}, 0)
	require.Equal(t, r, rotated)
}

func TestTranslate(t *testing.T) {
	r := Translate(square(2), 5, -3)
	b := BoundsOf(r)
	assert.InDelta(t, 5.0, b.Min.X, 1e-9)
	assert.InDelta(t, -3.0, b.Min.Y, 1e-9)
}

func TestBufferExpandsArea(t *testing.T) {
	r := square(2)
	buffered := Buffer(r, 0.0625) // spacing/2 for default spacing 0.125
	assert.Greater(t, Area(buffered), Area(r))
	b := BoundsOf(buffered)
	assert.InDelta(t, -0.0625, b.Min.X, 1e-6)
	assert.InDelta(t, 2.0625, b.Max.X, 1e-6)
}

func TestBufferNonPositiveIsNoop(t *testing.T) {
	r := square(2)
	assert.Equal(t, r, Buffer(r, 0))
}

func TestNonTriviallyIntersectsOverlapping(t *testing.T) {
	a := square(2)
	b := Translate(square(2), 1, 0)
	assert.True(t, NonTriviallyIntersects(a, b))
}

func TestNonTriviallyIntersectsTouchingOnly(t *testing.T) {
	a := square(2)
	b := Translate(square(2), 2, 0) // shares the edge at x=2, no interior overlap
	assert.False(t, NonTriviallyIntersects(a, b))
}

func TestNonTriviallyIntersectsDisjoint(t *testing.T) {
	a := square(2)
	b := Translate(square(2), 10, 10)
	assert.False(t, NonTriviallyIntersects(a, b))
}

func TestRepairSimplePolygonIsStable(t *testing.T) {
	r := square(2)
	repaired := Repair(r)
	assert.InDelta(t, Area(r), Area(repaired), 1e-6)
}

func TestRotatePointMatchesRingRotation(t *testing.T) {
	pivot := Point{1, 1}
	p := Point{3, 1}
	rotated := RotatePoint(p, pivot, 90)
	assert.InDelta(t, 1.0, rotated.X, 1e-9)
	assert.InDelta(t, 3.0, rotated.Y, 1e-9)
}

func TestAreaDegenerateRing(t *testing.T) {
	r := Ring{{0, 0}, {1, 0}}
	assert.Equal(t, 0.0, Area(r))
}

func TestRotateFullCircleDegrees(t *testing.T) {
	r := square(2)
	rotated := Rotate(r, Point{0, 0}, 360)
	for i := range r {
		assert.InDelta(t, r[i].X, rotated[i].X, 1e-6)
		assert.InDelta(t, r[i].Y, rotated[i].Y, 1e-6)
	}
}

func TestAngleWrap(t *testing.T) {
	// sanity check that math.Mod wraps an angle past 360 back into [0, 360)
	assert.InDelta(t, 10.0, math.Mod(370, 360), 1e-9)
}
