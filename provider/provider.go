// Package provider declares the external collaborator interfaces the
// simulation core consults but does not implement: the landscape, fuel
// model, ignition/vector/asset sources, and optional wind target. Spec.md
// §1 places these out of scope; this package exists only to pin the
// contract the core calls through.
package provider

import (
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/wtime"
)

// AttrID enumerates the landscape attribute identifiers consumed through
// LandscapeProvider.Attribute (spec.md §6).
type AttrID int

const (
	AttrXMid AttrID = iota
	AttrYMid
	AttrXStart
	AttrYStart
	AttrPC
	AttrPDF
	AttrCuringDegree
	AttrFuelLoad
	AttrTreeHeight
	AttrCBH
	AttrCFL
	AttrGreenup
	AttrGrassPhenology
	AttrDEMPresent
	AttrDefaultElevation
	AttrDefaultFMC
	AttrDefaultFMCActive
	AttrPlotResolution
	AttrXLLCorner
	AttrYLLCorner
	AttrXURCorner
	AttrYURCorner
	AttrSpatialReference
	AttrBurningConditionMinRH
	AttrBurningConditionMaxWS
	AttrBurningConditionMinFWI
	AttrBurningConditionMinISI
	AttrBurningConditionPeriodStart
	AttrBurningConditionPeriodEnd
)

// InterpFlags controls which weather fields get interpolated in a
// GetWeather call.
type InterpFlags struct {
	Temporal bool
	Spatial  bool
	Precip   bool
	Wind     bool
	WindVector bool
	TempRH     bool
	RecomputeFWI bool
	History      bool
}

// EventSearchFlags parametrizes GetEventTime.
type EventSearchFlags struct {
	Forward    bool
	Sunrise    bool
	Sunset     bool
	SolarNoon  bool
}

// IWXData is instantaneous weather at a point and time.
type IWXData struct {
	Temp          float64
	RH            float64
	WindSpeed     float64
	WindGust      float64
	WindDirection float64
	Precip        float64
}

// IFWIData / DFWIData are instantaneous and daily fire-weather indices.
type IFWIData struct {
	FFMC, ISI, FWI float64
}

type DFWIData struct {
	BUI, DMC, DC float64
}

// FuelHandle is an opaque handle to a fuel type, interpreted only by the
// FuelModel.
type FuelHandle any

// LandscapeProvider supplies gridded fuel, terrain, and weather, and the
// event clock used by the scheduler (spec.md §6). Implementations must be
// safe for concurrent reads: the core calls this interface from every
// goroutine of the data-parallel vertex-growth fan-out.
type LandscapeProvider interface {
	Fuel(layer int, pt geom.XyPoint, t wtime.Time) (handle FuelHandle, valid bool)
	Attribute(layer int, pt geom.XyPoint, t wtime.Time, span wtime.Span, attr AttrID, flags InterpFlags) (value any, valid bool)
	Elevation(layer int, pt geom.XyPoint, wantAzimuth bool) (z, aspect, azimuth float64, elevValid, terrainValid bool)
	Weather(layer int, pt geom.XyPoint, t wtime.Time, flags InterpFlags) (IWXData, IFWIData, DFWIData, bool)
	PreCalculationEvent(layer int, t wtime.Time, phase string, params any)
	PostCalculationEvent(layer int, t wtime.Time, phase string, params any)
	EventTime(layer int, pt geom.XyPoint, flags EventSearchFlags, from wtime.Time) (wtime.Time, bool)
}

// FBPOutputs are the fire-behaviour-prediction scalars the FuelModel
// produces from calculate_ros_values.
type FBPOutputs struct {
	RSI, ROSEq, ROS, FROS, BROS, RAZ float64
}

// FBPConsumption is the fuel-consumption/intensity side, from
// calculate_fc_values.
type FBPConsumption struct {
	CFB, CFC, RSO, CSI, SFC, TFC, FI float64
}

// FuelModel is the opaque per-vertex fire behaviour prediction consulted
// for rate of spread and fuel consumption (spec.md §6).
type FuelModel interface {
	CalculateROS(handle FuelHandle, aspect, azimuth, wsv, wdir, bui, fmc, ffmc, ff, accelDT, dayPortion float64, flags uint64) (FBPOutputs, bool)
	CalculateFC(handle FuelHandle, ffmc, bui, fmc, rsi, ros float64, flags uint64) (FBPConsumption, bool)
	FMC(lat, lon, elev float64, doy int) (fmc float64, ok bool)
	IsNonFuel(handle FuelHandle) bool
	IsGrass(handle FuelHandle) bool
	IsMixed(handle FuelHandle) bool
	IsMixedDeadFir(handle FuelHandle) bool
	IsC6(handle FuelHandle) bool
}

// IgnitionType distinguishes point, line, and polygon ignitions; polygon
// ignitions may be interior ("burn out") or exterior.
type IgnitionType int

const (
	IgnitionPoint IgnitionType = iota
	IgnitionLine
	IgnitionPolygonIn
	IgnitionPolygonOut
)

// IgnitionSource enumerates the ignitions configured for a scenario.
type IgnitionSource interface {
	Count() int
	Size(index int) int
	Ignition(index int) (kind IgnitionType, polygon geom.Poly, ignitionTime wtime.Time)
	Valid(start, duration wtime.Span) bool
	PreCalculationEvent(t wtime.Time, phase string, params any)
	PostCalculationEvent(t wtime.Time, phase string, params any)
}

// VectorSource enumerates static and dynamic vector breaks (firebreaks,
// roads, water).
type VectorSource interface {
	SetCount() int
	BreakCount(set int) int
	BreakSize(set, idx int) int
	Break(set, idx int, t wtime.Time) geom.Poly
	EventTime(from wtime.Time) (wtime.Time, bool)
}

// AssetType distinguishes the three asset geometry kinds.
type AssetType int

const (
	AssetPolygon AssetType = iota
	AssetPolyline
	AssetMultipoint
)

// AssetSource enumerates the assets whose arrival the scenario tracks,
// symmetrical to VectorSource (spec.md §6).
type AssetSource interface {
	Count() int
	Size(idx int) int
	Asset(idx int) (kind AssetType, geometry geom.Poly)
	EventTime(from wtime.Time) (wtime.Time, bool)
}

// Target optionally redirects wind or vector growth toward a fixed point
// (e.g. a suppression line or structure), per spec.md §4.2 "wind
// targeting".
type Target interface {
	Get(index, subIndex int) (geom.XyPoint, bool)
}

// PercentileTable perturbs a deterministic spread rate by a configured
// growth percentile, recovered from original_source as an explicit
// collaborator (SPEC_FULL.md §5).
type PercentileTable interface {
	Apply(deterministicROS, percentile float64) float64
}
