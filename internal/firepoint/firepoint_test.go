package firepoint

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

func TestGrow2DImmobileOnZeroROS(t *testing.T) {
	fp := NewNormal(geom.XyPoint{X: 5, Y: 5})
	fp.FBPROS, fp.FBPBROS, fp.FBPFROS = 0, 0, 0
	fp.FBPRAZ = 0
	fp.Grow2D(geom.XyPoint{X: 0, Y: 5}, geom.XyPoint{X: 10, Y: 5})
	assert.Equal(t, geom.XyPoint{}, fp.EllipseROS)
	assert.Equal(t, 1.0, fp.FBPROSRatio)
}

func TestGrow2DSymmetricEdgeMagnitude(t *testing.T) {
	// Symmetric neighbours (straight horizontal edge) and a due-north
	// spread azimuth: a direct evaluation of the closed-form ellipse
	// envelope gives a known value, used here as a regression check.
	fp := NewNormal(geom.XyPoint{})
	fp.FBPROS, fp.FBPBROS, fp.FBPFROS = 10, 1, 3
	fp.FBPRAZ = 0 // compass north
	fp.Grow2D(geom.XyPoint{X: -1, Y: 0}, geom.XyPoint{X: 1, Y: 0})
	assert.InDelta(t, 0.0, fp.EllipseROS.X, 1e-9)
	assert.InDelta(t, -1.0, fp.EllipseROS.Y, 1e-9)
}

func TestGrow3DFlatSlopeMatchesGrow2D(t *testing.T) {
	fp2 := NewNormal(geom.XyPoint{})
	fp2.FBPROS, fp2.FBPBROS, fp2.FBPFROS = 10, 2, 4
	fp2.FBPRAZ = math.Pi / 4
	fp2.Grow2D(geom.XyPoint{X: -1, Y: -1}, geom.XyPoint{X: 1, Y: 1})

	fp3 := NewNormal(geom.XyPoint{})
	fp3.FBPROS, fp3.FBPBROS, fp3.FBPFROS = 10, 2, 4
	fp3.FBPRAZ = math.Pi / 4
	fp3.Grow3D(
		geom.XyzPoint{X: 0, Y: 0, Z: 0},
		geom.XyzPoint{X: -1, Y: -1, Z: 0},
		geom.XyzPoint{X: 1, Y: 1, Z: 0},
		0, 0, true,
	)

	assert.InDelta(t, fp2.EllipseROS.X, fp3.EllipseROS.X, 1e-9)
	assert.InDelta(t, fp2.EllipseROS.Y, fp3.EllipseROS.Y, 1e-9)
}

func TestAdvanceMovesNormalVertex(t *testing.T) {
	fp := NewNormal(geom.XyPoint{X: 0, Y: 0})
	fp.EllipseROS = geom.XyPoint{X: 1, Y: 0}
	fp.Advance(60, 1) // 1 m/min for 60s, 1 internal unit per metre
	assert.InDelta(t, 1.0, fp.Pos.X, 1e-9)
}

func TestAdvanceLeavesInertVertexInPlace(t *testing.T) {
	fp := NewNormal(geom.XyPoint{X: 3, Y: 4})
	fp.Status = NoFuel
	fp.EllipseROS = geom.XyPoint{X: 100, Y: 100}
	fp.Advance(60, 1)
	assert.Equal(t, geom.XyPoint{X: 3, Y: 4}, fp.Pos)
}

type mockLandscape struct {
	weatherValid bool
	fuelValid    bool
}

func (m mockLandscape) Fuel(layer int, pt geom.XyPoint, t wtime.Time) (provider.FuelHandle, bool) {
	return "fuel", m.fuelValid
}
func (m mockLandscape) Attribute(layer int, pt geom.XyPoint, t wtime.Time, span wtime.Span, attr provider.AttrID, flags provider.InterpFlags) (any, bool) {
	return nil, false
}
func (m mockLandscape) Elevation(layer int, pt geom.XyPoint, wantAzimuth bool) (float64, float64, float64, bool, bool) {
	return 0, 0, 0, true, true
}
func (m mockLandscape) Weather(layer int, pt geom.XyPoint, t wtime.Time, flags provider.InterpFlags) (provider.IWXData, provider.IFWIData, provider.DFWIData, bool) {
	return provider.IWXData{WindSpeed: 10, WindDirection: math.Pi, RH: 0.4}, provider.IFWIData{FFMC: 90, FWI: 20}, provider.DFWIData{BUI: 60}, m.weatherValid
}
func (m mockLandscape) PreCalculationEvent(layer int, t wtime.Time, phase string, params any)  {}
func (m mockLandscape) PostCalculationEvent(layer int, t wtime.Time, phase string, params any) {}
func (m mockLandscape) EventTime(layer int, pt geom.XyPoint, flags provider.EventSearchFlags, from wtime.Time) (wtime.Time, bool) {
	return wtime.Time{}, false
}

type mockFuel struct{ nonFuel bool }

func (m mockFuel) CalculateROS(h provider.FuelHandle, aspect, azimuth, wsv, wdir, bui, fmc, ffmc, ff, accelDT, dayPortion float64, flags uint64) (provider.FBPOutputs, bool) {
	return provider.FBPOutputs{RSI: 5, ROSEq: 5, ROS: 5, FROS: 2, BROS: 1, RAZ: 0}, true
}
func (m mockFuel) CalculateFC(h provider.FuelHandle, ffmc, bui, fmc, rsi, ros float64, flags uint64) (provider.FBPConsumption, bool) {
	return provider.FBPConsumption{CFB: 0.5, CFC: 1, RSO: 1, CSI: 1, SFC: 1, TFC: 2, FI: 1000}, true
}
func (m mockFuel) FMC(lat, lon, elev float64, doy int) (float64, bool) { return 100, true }
func (m mockFuel) IsNonFuel(h provider.FuelHandle) bool                { return m.nonFuel }
func (m mockFuel) IsGrass(h provider.FuelHandle) bool                  { return false }
func (m mockFuel) IsMixed(h provider.FuelHandle) bool                  { return false }
func (m mockFuel) IsMixedDeadFir(h provider.FuelHandle) bool           { return false }
func (m mockFuel) IsC6(h provider.FuelHandle) bool                     { return false }

func baseContext() Context {
	return Context{
		Landscape:       mockLandscape{weatherValid: true, fuelValid: true},
		Fuel:            mockFuel{},
		MinimumROS:      1e-7,
		OverrideWindDir: -1,
		Time:            wtime.New(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC), time.UTC),
	}
}

func TestGrowStampsNoFuelOnWeatherFailure(t *testing.T) {
	ctx := baseContext()
	ctx.Landscape = mockLandscape{weatherValid: false, fuelValid: true}
	fp := NewNormal(geom.XyPoint{X: 0, Y: 0})
	prev := NewNormal(geom.XyPoint{X: -1, Y: 0})
	succ := NewNormal(geom.XyPoint{X: 1, Y: 0})
	fp.Grow(prev, succ, ctx)
	assert.Equal(t, NoFuel, fp.Status)
}

func TestGrowProducesEllipseROSOnSuccess(t *testing.T) {
	ctx := baseContext()
	fp := NewNormal(geom.XyPoint{X: 0, Y: 0})
	prev := NewNormal(geom.XyPoint{X: -1, Y: 0})
	succ := NewNormal(geom.XyPoint{X: 1, Y: 0})
	fp.Grow(prev, succ, ctx)
	assert.Equal(t, Normal, fp.Status)
	assert.Greater(t, fp.VectorROS, 0.0)
	assert.Greater(t, fp.FlameLength, 0.0)
}

func TestGrowSkipsInertVertex(t *testing.T) {
	ctx := baseContext()
	fp := NewNormal(geom.XyPoint{X: 0, Y: 0})
	fp.Status = Fire
	prev := NewNormal(geom.XyPoint{X: -1, Y: 0})
	succ := NewNormal(geom.XyPoint{X: 1, Y: 0})
	fp.Grow(prev, succ, ctx)
	assert.Equal(t, Fire, fp.Status) // unchanged, no growth attempted
}

func TestGrowMinimumROSForcesInert(t *testing.T) {
	ctx := baseContext()
	ctx.MinimumROS = 1000 // higher than any test ROS
	fp := NewNormal(geom.XyPoint{X: 0, Y: 0})
	prev := NewNormal(geom.XyPoint{X: -1, Y: 0})
	succ := NewNormal(geom.XyPoint{X: 1, Y: 0})
	fp.Grow(prev, succ, ctx)
	assert.Equal(t, geom.XyPoint{}, fp.EllipseROS)
	assert.Equal(t, 1.0, fp.FBPROSRatio)
}
