package scenario

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/wise-sim/firesim/internal/config"
	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/gridcache"
	"github.com/wise-sim/firesim/internal/query"
	"github.com/wise-sim/firesim/internal/scenariocache"
	"github.com/wise-sim/firesim/internal/telemetry/tracing"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

// noFuelLandscape answers every query with "no fuel here", driving every
// grown vertex down firepoint.Grow's stampNoFuel path: a minimal but
// realistic double for exercising the scheduling loop without a full FBP
// weather/fuel model.
type noFuelLandscape struct{}

func (noFuelLandscape) Fuel(int, geom.XyPoint, wtime.Time) (provider.FuelHandle, bool) {
	return nil, false
}
func (noFuelLandscape) Attribute(int, geom.XyPoint, wtime.Time, wtime.Span, provider.AttrID, provider.InterpFlags) (any, bool) {
	return nil, false
}
func (noFuelLandscape) Elevation(int, geom.XyPoint, bool) (float64, float64, float64, bool, bool) {
	return 0, 0, 0, false, false
}
func (noFuelLandscape) Weather(int, geom.XyPoint, wtime.Time, provider.InterpFlags) (provider.IWXData, provider.IFWIData, provider.DFWIData, bool) {
	return provider.IWXData{}, provider.IFWIData{}, provider.DFWIData{}, false
}
func (noFuelLandscape) PreCalculationEvent(int, wtime.Time, string, any)  {}
func (noFuelLandscape) PostCalculationEvent(int, wtime.Time, string, any) {}
func (noFuelLandscape) EventTime(int, geom.XyPoint, provider.EventSearchFlags, wtime.Time) (wtime.Time, bool) {
	return wtime.Time{}, false
}

// singleIgnition is an IgnitionSource with exactly one configured ignition.
type singleIgnition struct {
	kind provider.IgnitionType
	poly geom.Poly
	at   wtime.Time
}

func (f *singleIgnition) Count() int    { return 1 }
func (f *singleIgnition) Size(int) int  { return len(f.poly) }
func (f *singleIgnition) Ignition(int) (provider.IgnitionType, geom.Poly, wtime.Time) {
	return f.kind, f.poly, f.at
}
func (f *singleIgnition) Valid(wtime.Span, wtime.Span) bool            { return true }
func (f *singleIgnition) PreCalculationEvent(wtime.Time, string, any)  {}
func (f *singleIgnition) PostCalculationEvent(wtime.Time, string, any) {}

func testTime(minutes int) wtime.Time {
	base := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	return wtime.New(base.Add(time.Duration(minutes)*time.Minute), time.UTC)
}

func testConfig() config.Config {
	return config.Config{
		Topology: config.Topology{
			DistanceResolution:  5,
			PerimeterResolution: 5,
			PerimeterSpacing:    2,
		},
		Breaching: config.Breaching{Allowed: true},
		Acceleration: config.Acceleration{
			MinimumROS:                    0,
			SpatialThreshold:              5,
			TemporalThresholdAcceleration: 2 * time.Minute,
			DisplayInterval:               10 * time.Minute,
		},
		Resources: config.Resources{WorkerCount: 2, ClosestPointCacheCapacity: 8},
	}
}

func newTestScenario(ignitions provider.IgnitionSource, start, end wtime.Time) *Scenario {
	transform := gridcache.NewTransform(geom.XyPoint{}, 1)
	cache := scenariocache.New(noFuelLandscape{}, nil, nil, nil, transform, 8, 2, nil)
	return New(testConfig(), cache, ignitions, nil, nil, nil, nil, start, end)
}

func squarePoly(offset float64) geom.Poly {
	return geom.Poly{
		{X: offset, Y: offset},
		{X: offset + 20, Y: offset},
		{X: offset + 20, Y: offset + 20},
		{X: offset, Y: offset + 20},
	}
}

func TestStepAdmitsIgnitionAtStartTime(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))

	status := s.Step(context.Background())

	require.Equal(t, Running, status)
	require.Equal(t, 1, s.NumSteps())
	assert.Equal(t, 1, s.NumFires())
	assert.True(t, s.CurrentTime().Equal(testTime(0)))
}

func TestStepAdvancesToDisplayIntervalBoundary(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))

	s.Step(context.Background())
	status := s.Step(context.Background())

	require.Equal(t, Running, status)
	assert.Equal(t, 2, s.NumSteps())
	assert.True(t, s.CurrentTime().Equal(testTime(10)))
}

func TestStepCompletesByExtents(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(5))

	s.Step(context.Background())
	status := s.Step(context.Background())

	assert.Equal(t, CompleteByExtents, status)
	assert.True(t, s.CurrentTime().Equal(testTime(5)))
}

func TestStepIsIdempotentOnceComplete(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(0))

	first := s.Step(context.Background())
	second := s.Step(context.Background())

	assert.Equal(t, CompleteByExtents, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, s.NumSteps())
}

func TestClearResetsState(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))

	s.Step(context.Background())
	s.Clear()

	assert.Equal(t, 0, s.NumSteps())
	assert.Equal(t, 0, s.NumFires())
	assert.True(t, s.CurrentTime().Equal(testTime(0)))
}

func TestStepBackRestoresPriorActiveFireRing(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))

	s.Step(context.Background())
	s.Step(context.Background())
	firesAfterSecondStep := s.NumFires()

	s.StepBack()

	assert.Equal(t, 1, s.NumSteps())
	assert.Equal(t, firesAfterSecondStep, s.NumFires())
	assert.True(t, s.CurrentTime().Equal(testTime(0)))
}

func TestPointBurnedInsideIgnitionPolygon(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))

	s.Step(context.Background())

	assert.True(t, s.PointBurned(geom.XyPoint{X: 10, Y: 10}, testTime(0)))
	assert.False(t, s.PointBurned(geom.XyPoint{X: 1000, Y: 1000}, testTime(0)))
}

type recordingSpan struct{ rec *spanRecorder }

func (s recordingSpan) End()                                { s.rec.ended++ }
func (recordingSpan) RecordError(error)                     {}
func (recordingSpan) SetAttributes(...attribute.KeyValue) {}

// spanRecorder is a tracing.Tracer that counts how many spans it started
// versus ended, without needing a real OTel SDK tracer provider.
type spanRecorder struct {
	started int
	ended   int
}

func (r *spanRecorder) StartSpan(ctx context.Context, _ string, _ ...attribute.KeyValue) (context.Context, tracing.Span) {
	r.started++
	return ctx, recordingSpan{rec: r}
}

func TestStepStartsAndEndsASpanPerCall(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))
	recorder := &spanRecorder{}
	s.WithTracer(recorder)

	s.Step(context.Background())

	assert.Equal(t, recorder.started, recorder.ended)
	assert.True(t, recorder.started >= 1)
}

func TestGetStatsClosestVertexFindsNearestPerimeterPoint(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))
	s.Step(context.Background())

	_, ok := s.GetStats(geom.XyPoint{X: 10, Y: 0}, testTime(0), query.ClosestVertex, query.StatFI)

	assert.True(t, ok)
}

func TestGetStatsNoVerticesFails(t *testing.T) {
	s := newTestScenario(nil, testTime(0), testTime(60))
	s.Step(context.Background())

	_, ok := s.GetStats(geom.XyPoint{}, testTime(0), query.ClosestVertex, query.StatFI)

	assert.False(t, ok)
}

func TestCriticalPathTracesClosestPointToOrigin(t *testing.T) {
	ign := &singleIgnition{kind: provider.IgnitionPolygonOut, poly: squarePoly(0), at: testTime(0)}
	s := newTestScenario(ign, testTime(0), testTime(60))
	s.Step(context.Background())
	s.Step(context.Background())

	var closest *firepoint.FirePoint
	for _, sf := range s.Steps[len(s.Steps)-1].Fires {
		for _, front := range sf.Fronts {
			if len(front.Points) > 0 {
				closest = front.Points[0]
			}
		}
	}
	require.NotNil(t, closest)

	path := s.CriticalPath(AssetArrival{ClosestPoint: closest})

	assert.NotEmpty(t, path)
	assert.Equal(t, closest.Pos, path[len(path)-1].Pos)
}

func TestStepWithoutIgnitionsProducesNoFires(t *testing.T) {
	s := newTestScenario(nil, testTime(0), testTime(60))

	status := s.Step(context.Background())

	assert.Equal(t, Running, status)
	assert.Equal(t, 0, s.NumFires())
	assert.Equal(t, 1, s.NumSteps())
}
