package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wise-sim/firesim/internal/geom"
)

func vertexAt(x, y, value float64) Vertex {
	return Vertex{Pos: geom.XyPoint{X: x, Y: y}, Values: map[StatID]float64{StatFI: value}}
}

func TestClosestVertexQueryPicksNearestVertex(t *testing.T) {
	vertices := []Vertex{vertexAt(0, 0, 1), vertexAt(10, 10, 2)}

	v, ok := ClosestVertexQuery(geom.XyPoint{X: 1, Y: 1}, vertices, StatFI)

	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
}

func TestClosestVertexQueryEmptySetFails(t *testing.T) {
	_, ok := ClosestVertexQuery(geom.XyPoint{}, nil, StatFI)
	assert.False(t, ok)
}

func TestIDWQueryAveragesEquidistantNeighbors(t *testing.T) {
	neighbors := []Vertex{vertexAt(-1, 0, 0), vertexAt(1, 0, 10)}

	v, ok := IDWQuery(geom.XyPoint{}, neighbors, StatFI, 2)

	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-9)
}

func TestIDWQueryReturnsExactValueAtCoincidentNeighbor(t *testing.T) {
	neighbors := []Vertex{vertexAt(0, 0, 7), vertexAt(5, 5, 99)}

	v, ok := IDWQuery(geom.XyPoint{}, neighbors, StatFI, 2)

	assert.True(t, ok)
	assert.Equal(t, 7.0, v)
}

func TestDiscretizeQueryAveragesSamplesAndBurnedFraction(t *testing.T) {
	lo, hi := geom.XyPoint{X: 0, Y: 0}, geom.XyPoint{X: 10, Y: 10}
	sample := func(p geom.XyPoint) (float64, bool) { return p.X, true }
	inFire := func(p geom.XyPoint) bool { return p.X < 5 }

	value, burned := DiscretizeQuery(lo, hi, 2, StatFI, sample, inFire)

	assert.InDelta(t, 5.0, value, 1e-9)
	assert.InDelta(t, 0.5, burned, 1e-9)
}

func TestNeighborsExpandsRadiusUntilMinimumMet(t *testing.T) {
	vertices := []Vertex{
		vertexAt(1, 0, 0), vertexAt(2, 0, 0), vertexAt(4, 0, 0), vertexAt(5, 0, 0),
	}
	cfg := NeighborhoodConfig{StartRadius: 1, GrowthFactor: 2, MinNeighbors: 3, MaxRetries: 5}

	found := Neighbors(geom.XyPoint{}, vertices, cfg)

	assert.Len(t, found, 3)
}

func TestNeighborsStopsAtMaxRetriesEvenIfShortOfMinimum(t *testing.T) {
	vertices := []Vertex{vertexAt(100, 0, 0)}
	cfg := NeighborhoodConfig{StartRadius: 1, GrowthFactor: 2, MinNeighbors: 20, MaxRetries: 3}

	found := Neighbors(geom.XyPoint{}, vertices, cfg)

	assert.Len(t, found, 0)
}

func TestAreaWeightingQuerySplitsSymmetricNeighborsEvenly(t *testing.T) {
	neighbors := []Vertex{vertexAt(-10, 0, 0), vertexAt(10, 0, 10)}

	v, ok := AreaWeightingQuery(geom.XyPoint{X: -1, Y: -1}, geom.XyPoint{X: 1, Y: 1}, geom.XyPoint{}, neighbors, StatFI)

	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-6)
}

func TestVoronoiOverlapQuerySplitsSymmetricNeighborsEvenly(t *testing.T) {
	neighbors := []Vertex{vertexAt(-10, 0, 0), vertexAt(10, 0, 10)}

	v, ok := VoronoiOverlapQuery(geom.XyPoint{}, neighbors, StatFI)

	assert.True(t, ok)
	assert.InDelta(t, 5.0, v, 1e-6)
}

func TestVoronoiOverlapQueryNoNeighborsFails(t *testing.T) {
	_, ok := VoronoiOverlapQuery(geom.XyPoint{}, nil, StatFI)
	assert.False(t, ok)
}

func TestDefaultNeighborhoodUsesLargerOfTheTwoThresholds(t *testing.T) {
	cfg := DefaultNeighborhood(5, 8)

	assert.Equal(t, 16.0, cfg.StartRadius)
	assert.Equal(t, 1.25, cfg.GrowthFactor)
	assert.Equal(t, 20, cfg.MinNeighbors)
	assert.Equal(t, 20, cfg.MaxRetries)
}
