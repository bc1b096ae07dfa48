package criticalpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
)

func TestTraceWalksPrevPointChainToOrigin(t *testing.T) {
	origin := firepoint.NewNormal(geom.XyPoint{X: 0, Y: 0})
	mid := firepoint.NewNormal(geom.XyPoint{X: 10, Y: 0})
	mid.PrevPoint = origin
	arrival := firepoint.NewNormal(geom.XyPoint{X: 20, Y: 0})
	arrival.PrevPoint = mid

	path := Trace(arrival)

	require.Len(t, path, 3)
	assert.Equal(t, arrival, path[0])
	assert.Equal(t, mid, path[1])
	assert.Equal(t, origin, path[2])
}

func TestTraceStopsAtNilPrevPoint(t *testing.T) {
	origin := firepoint.NewNormal(geom.XyPoint{X: 5, Y: 5})

	path := Trace(origin)

	require.Len(t, path, 1)
	assert.Equal(t, origin, path[0])
}

func TestTraceCollapsesCoincidentPositions(t *testing.T) {
	origin := firepoint.NewNormal(geom.XyPoint{X: 0, Y: 0})
	stalled := firepoint.NewNormal(geom.XyPoint{X: 10, Y: 0})
	stalled.PrevPoint = origin
	arrival := firepoint.NewNormal(geom.XyPoint{X: 10, Y: 0})
	arrival.PrevPoint = stalled

	path := Trace(arrival)

	require.Len(t, path, 2)
	assert.Equal(t, arrival, path[0])
	assert.Equal(t, origin, path[1])
}

func TestTraceNilStartReturnsNil(t *testing.T) {
	assert.Nil(t, Trace(nil))
}

func TestPolylineReturnsOriginFirstInForwardOrder(t *testing.T) {
	origin := firepoint.NewNormal(geom.XyPoint{X: 0, Y: 0})
	mid := firepoint.NewNormal(geom.XyPoint{X: 10, Y: 0})
	mid.PrevPoint = origin
	arrival := firepoint.NewNormal(geom.XyPoint{X: 20, Y: 0})
	arrival.PrevPoint = mid
	arrival.VectorFI = 42

	vertices := Polyline(arrival)

	require.Len(t, vertices, 3)
	assert.Equal(t, geom.XyPoint{X: 0, Y: 0}, vertices[0].Pos)
	assert.Equal(t, geom.XyPoint{X: 10, Y: 0}, vertices[1].Pos)
	assert.Equal(t, geom.XyPoint{X: 20, Y: 0}, vertices[2].Pos)
	assert.Equal(t, 42.0, vertices[2].FI)
}
