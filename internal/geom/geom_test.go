package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func square(side float64) Poly {
	return Poly{
		{X: 0, Y: 0},
		{X: side, Y: 0},
		{X: side, Y: side},
		{X: 0, Y: side},
	}
}

func TestPolyArea(t *testing.T) {
	p := square(10)
	assert.InDelta(t, 100.0, p.Area(), 1e-9)
	assert.Greater(t, p.SignedArea(), 0.0) // CCW
}

func TestPolyContainsPoint(t *testing.T) {
	p := square(10)
	assert.True(t, p.ContainsPoint(XyPoint{X: 5, Y: 5}))
	assert.False(t, p.ContainsPoint(XyPoint{X: 15, Y: 5}))
}

func TestSegmentIntersect(t *testing.T) {
	pos, _, _, ok := SegmentIntersect(
		XyPoint{X: 0, Y: 0}, XyPoint{X: 10, Y: 10},
		XyPoint{X: 0, Y: 10}, XyPoint{X: 10, Y: 0},
	)
	assert.True(t, ok)
	assert.InDelta(t, 5.0, pos.X, 1e-9)
	assert.InDelta(t, 5.0, pos.Y, 1e-9)
}

func TestSegmentIntersectParallelNoHit(t *testing.T) {
	_, _, _, ok := SegmentIntersect(
		XyPoint{X: 0, Y: 0}, XyPoint{X: 10, Y: 0},
		XyPoint{X: 0, Y: 5}, XyPoint{X: 10, Y: 5},
	)
	assert.False(t, ok)
}

func TestRectExtendAndIntersects(t *testing.T) {
	r := NewEmptyRect().Extend(XyPoint{X: 1, Y: 1}).Extend(XyPoint{X: 3, Y: 4})
	assert.Equal(t, XyPoint{X: 1, Y: 1}, r.Min)
	assert.Equal(t, XyPoint{X: 3, Y: 4}, r.Max)

	other := NewEmptyRect().Extend(XyPoint{X: 2, Y: 2}).Extend(XyPoint{X: 5, Y: 5})
	assert.True(t, r.Intersects(other))

	far := NewEmptyRect().Extend(XyPoint{X: 100, Y: 100})
	assert.False(t, r.Intersects(far))
}

func TestNearestPointOnSegmentClampsToEndpoints(t *testing.T) {
	a, b := XyPoint{X: 0, Y: 0}, XyPoint{X: 10, Y: 0}
	p, t2 := NearestPointOnSegment(XyPoint{X: -5, Y: 3}, a, b)
	assert.Equal(t, a, p)
	assert.Equal(t, 0.0, t2)

	p2, t3 := NearestPointOnSegment(XyPoint{X: 15, Y: -3}, a, b)
	assert.Equal(t, b, p2)
	assert.Equal(t, 1.0, t3)
}

func TestBearingCardinal(t *testing.T) {
	origin := XyPoint{X: 0, Y: 0}
	north := XyPoint{X: 0, Y: 10}
	east := XyPoint{X: 10, Y: 0}
	assert.InDelta(t, 0.0, origin.Bearing(north), 1e-9)
	assert.InDelta(t, 1.5707963267948966, origin.Bearing(east), 1e-9)
}
