package activefire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wise-sim/firesim/internal/firefront"
	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/scenariofire"
	"github.com/wise-sim/firesim/internal/wtime"
)

func testTime() wtime.Time {
	return wtime.New(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC), time.UTC)
}

func squareFire(id int, x0, y0, side float64) *scenariofire.ScenarioFire {
	pts := []*firepoint.FirePoint{
		firepoint.NewNormal(geom.XyPoint{X: x0, Y: y0}),
		firepoint.NewNormal(geom.XyPoint{X: x0 + side, Y: y0}),
		firepoint.NewNormal(geom.XyPoint{X: x0 + side, Y: y0 + side}),
		firepoint.NewNormal(geom.XyPoint{X: x0, Y: y0 + side}),
	}
	sf := scenariofire.New(id, testTime())
	sf.Fronts = []*firefront.FireFront{firefront.New(pts, firefront.Polygon)}
	return sf
}

func TestNewStartsSingletonCluster(t *testing.T) {
	af := New(squareFire(1, 0, 0, 10), testTime())
	assert.Len(t, af.Cluster(), 1)
}

func TestMergeIntoSharesCluster(t *testing.T) {
	a := New(squareFire(1, 0, 0, 10), testTime())
	b := New(squareFire(2, 100, 100, 10), testTime())
	a.MergeInto(b)
	assert.True(t, a.SharesClusterWith(b))
	assert.Len(t, a.Cluster(), 2)
	assert.Len(t, b.Cluster(), 2)
}

func TestMergeIntoTakesEarlierEndTime(t *testing.T) {
	a := New(squareFire(1, 0, 0, 10), testTime())
	b := New(squareFire(2, 100, 100, 10), testTime())
	a.EndTime = testTime().Add(10 * time.Minute)
	a.cluster.endTime = a.EndTime
	b.EndTime = testTime().Add(2 * time.Minute)
	b.cluster.endTime = b.EndTime
	a.MergeInto(b)
	assert.Equal(t, b.EndTime, a.EndTime)
}

func TestCalculateEndTimeUsesAccelerationWhenBelowMinimumROS(t *testing.T) {
	af := New(squareFire(1, 0, 0, 10), testTime())
	end := af.CalculateEndTime(testTime(), EndTimeParams{
		MaxROS: 0, MinimumROS: 1, InBurningPeriod: true,
		TemporalThresholdAcceleration: 90 * time.Second,
	})
	assert.Equal(t, testTime().Add(90*time.Second), end)
}

func TestCalculateEndTimeUsesSpatialDuringAcceleration(t *testing.T) {
	af := New(squareFire(1, 0, 0, 10), testTime())
	end := af.CalculateEndTime(testTime(), EndTimeParams{
		MaxROS: 10, MinimumROS: 1, MinROSRatio: 0.5, InBurningPeriod: true,
		SpatialThreshold:              2,
		TemporalThresholdAcceleration: 10 * time.Minute,
	})
	// spatial = 2/10*60s = 12s, shorter than the 10min acceleration cap.
	assert.Equal(t, testTime().Add(12*time.Second), end)
}

func TestCalculateEndTimeCapsAtOneHour(t *testing.T) {
	af := New(squareFire(1, 0, 0, 10), testTime())
	end := af.CalculateEndTime(testTime(), EndTimeParams{
		MaxROS: 0.001, MinimumROS: 0, MinROSRatio: 1, InBurningPeriod: true,
		SpatialThreshold: 1000,
	})
	assert.Equal(t, testTime().Add(time.Hour), end)
}

func TestMergeByProximityAttachesNearbyFire(t *testing.T) {
	a := New(squareFire(1, 0, 0, 10), testTime())
	a.Advanced = true
	a.BBox = geom.NewEmptyRect().Extend(geom.XyPoint{}).Extend(geom.XyPoint{X: 10, Y: 10})

	b := New(squareFire(2, 15, 0, 10), testTime())
	b.BBox = geom.NewEmptyRect().Extend(geom.XyPoint{X: 15, Y: 0}).Extend(geom.XyPoint{X: 25, Y: 10})

	MergeByProximity([]*ActiveFire{a, b}, 10)

	assert.True(t, b.Advanced)
	assert.True(t, a.SharesClusterWith(b))
}

func TestMergeByProximityLeavesFarFireAlone(t *testing.T) {
	a := New(squareFire(1, 0, 0, 10), testTime())
	a.Advanced = true
	a.BBox = geom.NewEmptyRect().Extend(geom.XyPoint{}).Extend(geom.XyPoint{X: 10, Y: 10})

	b := New(squareFire(2, 1000, 1000, 10), testTime())
	b.BBox = geom.NewEmptyRect().Extend(geom.XyPoint{X: 1000, Y: 1000}).Extend(geom.XyPoint{X: 1010, Y: 1010})

	MergeByProximity([]*ActiveFire{a, b}, 10)

	assert.False(t, b.Advanced)
	assert.False(t, a.SharesClusterWith(b))
}
