// Package firepoint implements FirePoint, the unit of work of the
// simulation: one perimeter vertex, its fire-behaviour-prediction results,
// and the elliptical/Richards growth kernels that move it.
package firepoint

import (
	"math"

	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/gusting"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

// Status is the per-vertex state machine described in spec.md §3/§4.3: a
// vertex with Status != Normal does not move this step.
type Status int

const (
	Normal Status = iota
	NoROS
	NoFuel // historical name; semantically "no data"
	Fire   // hit another fire
	Vector // hit a vector break
	NoWind
)

func (s Status) String() string {
	switch s {
	case Normal:
		return "NORMAL"
	case NoROS:
		return "NO_ROS"
	case NoFuel:
		return "NO_FUEL"
	case Fire:
		return "FIRE"
	case Vector:
		return "VECTOR"
	case NoWind:
		return "NO_WIND"
	default:
		return "UNKNOWN"
	}
}

// Inert reports whether a vertex in this status is immobile for the step.
func (s Status) Inert() bool { return s != Normal }

// FirePoint is one perimeter vertex.
type FirePoint struct {
	Pos geom.XyPoint

	Status           Status
	SuccessfulBreach bool

	EllipseROS geom.XyPoint

	FBPRAZ     float64 // spread azimuth, compass radians
	FBPRSI     float64
	FBPROSEq   float64
	FBPROS     float64
	FBPFROS    float64
	FBPBROS    float64
	FBPROSRatio float64
	FBPCFB     float64
	FBPFI      float64

	VectorROS float64
	VectorCFB float64
	VectorCFC float64
	VectorSFC float64
	VectorTFC float64
	VectorFI  float64

	FlameLength float64

	// PrevPoint back-links to the corresponding vertex in the previous
	// step; nil for newly introduced vertices (spec.md §3).
	PrevPoint *FirePoint
}

// NewNormal returns a FirePoint at pos with default Normal status.
func NewNormal(pos geom.XyPoint) *FirePoint {
	return &FirePoint{Pos: pos, Status: Normal, FBPROSRatio: 1}
}

// Inert reports whether this vertex is immobile for the step.
func (fp *FirePoint) Inert() bool { return fp.Status.Inert() }

// Grow2D implements the elliptical growth kernel (spec.md §4.2), grounded
// on FireStateGrow.cpp's grow2D: form the ellipse of semi-axes a=(ros+bros)/2,
// b=fros, eccentricity offset c=(ros-bros)/2; rotate the prev/succ tangent by
// the spread azimuth and evaluate the ellipse envelope there. A degenerate
// divider leaves the point immobile with ros_ratio forced to 1.
func (fp *FirePoint) Grow2D(prev, succ geom.XyPoint) {
	a := (fp.FBPROS + fp.FBPBROS) * 0.5
	b := fp.FBPFROS
	c := (fp.FBPROS - fp.FBPBROS) * 0.5
	a2, b2 := a*a, b*b

	dx := succ.X - prev.X
	dy := succ.Y - prev.Y
	sn, cs := math.Sincos(fp.FBPRAZ)
	xcsysn := dx*cs - dy*sn
	xsnycs := dx*sn + dy*cs
	denom := math.Sqrt(a2*xcsysn*xcsysn + b2*xsnycs*xsnycs)

	if denom > 0 {
		fp.EllipseROS = geom.XyPoint{
			X: (b2*cs*xsnycs-a2*sn*xcsysn)/denom + c*sn,
			Y: (-b2*sn*xsnycs-a2*cs*xcsysn)/denom + c*cs,
		}
	} else {
		fp.EllipseROS = geom.XyPoint{}
		fp.FBPROSRatio = 1
	}
}

// Grow3D implements the slope-aware Richards growth kernel (spec.md §4.2),
// grounded on FireStateGrow.cpp's grow3D (G. Richards, "The properties of
// elliptical wildfire growth for time dependent fuel and meteorological
// conditions"). curr/prev/succ are 3-D (with elevation) positions; aspect is
// percent slope (decimal), azimuth is the upslope direction in Cartesian
// radians. topography gates whether slope is applied at all.
func (fp *FirePoint) Grow3D(curr, prev, succ geom.XyzPoint, aspect, azimuth float64, topography bool) {
	a := (fp.FBPROS + fp.FBPBROS) * 0.5
	b := fp.FBPFROS
	c := (fp.FBPROS - fp.FBPBROS) * 0.5

	sn, cs := math.Sincos(fp.FBPRAZ)
	snA, csA := math.Sincos(azimuth)

	var n3 geom.XyzPoint
	if topography && aspect > 0 {
		f := geom.XyzPoint{X: csA, Y: snA, Z: aspect}
		f1 := geom.XyzPoint{X: -f.Y, Y: f.X, Z: 0}
		n3 = f.Cross(f1).Normalized()
		if n3.Z < 0 {
			n3 = geom.XyzPoint{X: -n3.X, Y: -n3.Y, Z: -n3.Z}
		}
	} else {
		n3 = geom.XyzPoint{Z: 1}
		aspect = 0
	}

	theta := geom.XyzPoint{X: sn, Y: cs} // reversed: FBPRAZ is compass, not Cartesian
	if aspect > 0 {
		theta.Z = (csA*theta.X + snA*theta.Y) * aspect
	}
	theta = theta.Normalized()

	plen := curr.Sub(prev).Length()
	slen := curr.Sub(succ).Length()

	r := geom.XyzPoint{
		X: slen*(succ.X-curr.X) - plen*(prev.X-curr.X),
		Y: slen*(succ.Y-curr.Y) - plen*(prev.Y-curr.Y),
	}
	if aspect > 0 {
		r.Z = (csA*r.X + snA*r.Y) * aspect
	}
	if r.X == 0 && r.Y == 0 {
		r.Z = 1
	}
	r = r.Normalized()

	nTheta := n3.Cross(theta)
	nRN := r.Cross(n3)
	cosAlpha := nRN.Dot(theta)
	sinAlpha := nTheta.Dot(nRN)
	divider := math.Sqrt(a*a*cosAlpha*cosAlpha + b*b*sinAlpha*sinAlpha)

	if divider != 0 {
		xAlpha := a*a*cosAlpha/divider + c
		yAlpha := b * b * sinAlpha / divider
		fp.EllipseROS = geom.XyPoint{
			X: xAlpha*theta.X + yAlpha*nTheta.X,
			Y: xAlpha*theta.Y + yAlpha*nTheta.Y,
		}
	} else {
		fp.EllipseROS = geom.XyPoint{}
		fp.FBPROSRatio = 1
	}
}

// Context carries everything a single vertex's growth step needs from its
// surroundings (spec.md §4.2, §5 "embarrassingly parallel across points").
// A Context is read-only once built and may be shared across every
// concurrent growth task of a time step.
type Context struct {
	Landscape  provider.LandscapeProvider
	Fuel       provider.FuelModel
	Target     provider.Target
	TargetIdx  int
	TargetSub  int
	Gust       *gusting.Model
	Layer      int
	Time       wtime.Time
	DayPortion wtime.Span

	Use2D        bool
	Topography   bool
	HasPointIgn  bool
	IgnitionTime wtime.Time

	MinimumROS float64

	// OverrideWindDir, when >= 0, replaces the landscape wind direction
	// outright (spec.md §6 "owd").
	OverrideWindDir float64
	// DeltaWindDir is subtracted from the wind direction after any
	// targeting/override is applied (spec.md §6 "dwd"; the Open Question
	// about ordering is resolved in SPEC_FULL.md §6: target first, then
	// subtract the delta, unconditionally).
	DeltaWindDir float64

	InterpFlags provider.InterpFlags

	// CanBurn reports whether conditions (burning period, FWI thresholds)
	// allow spread at all; a false result zeroes the growth vector without
	// changing Status (ScenarioCache.CanBurn, SPEC_FULL.md §6).
	CanBurn func(t wtime.Time, centroid, pt geom.XyPoint, rh, windSpeed, fwi, isi float64) bool
	Centroid geom.XyPoint
}

// Grow executes one vertex's full growth pipeline: terrain and weather
// lookup, wind targeting, FBP rate-of-spread and fuel-consumption
// evaluation at both the ellipse and vector magnitudes, the minimum-ROS
// inert check, and the CanBurn gate. prev/succ are the vertex's current
// ring neighbours. Grid/fuel failures degrade the vertex to NoFuel rather
// than returning an error (spec.md §7: transient provider failures degrade
// a single vertex, they do not abort the step).
func (fp *FirePoint) Grow(prev, succ *FirePoint, ctx Context) {
	if fp.Status != Normal {
		return
	}

	cPt := fp.Pos
	pPt := prev.Pos
	sPt := succ.Pos

	elevC, aspect, azimuth, elevValid, terrainValid := ctx.Landscape.Elevation(ctx.Layer, cPt, true)
	elevP, _, _, _, _ := ctx.Landscape.Elevation(ctx.Layer, pPt, false)
	elevS, _, _, _, _ := ctx.Landscape.Elevation(ctx.Layer, sPt, false)
	_ = elevValid
	_ = terrainValid

	handle, fuelValid := ctx.Landscape.Fuel(ctx.Layer, cPt, ctx.Time)
	if !fuelValid {
		fp.stampNoFuel()
		return
	}
	if ctx.Fuel.IsNonFuel(handle) {
		fp.Status = NoFuel
		fp.EllipseROS = geom.XyPoint{}
		return
	}

	wx, ifwi, dfwi, wxValid := ctx.Landscape.Weather(ctx.Layer, cPt, ctx.Time, ctx.InterpFlags)
	if !wxValid {
		fp.stampNoFuel()
		return
	}

	if ctx.OverrideWindDir >= 0 {
		wx.WindDirection = ctx.OverrideWindDir
	} else if ctx.Target != nil {
		to, ok := ctx.Target.Get(ctx.TargetIdx, ctx.TargetSub)
		if !ok {
			fp.Status = NoWind
			fp.EllipseROS = geom.XyPoint{}
			return
		}
		// wind direction records where the wind comes FROM; bearing from
		// the target back to the vertex gives that convention.
		wx.WindDirection = to.Bearing(cPt)
	}
	wx.WindDirection -= ctx.DeltaWindDir

	windSpeed := wx.WindSpeed
	if ctx.Gust != nil {
		windSpeed += wx.WindSpeed * ctx.Gust.Percent(ctx.Time)
	}

	accelDT := ctx.Time.Sub(ctx.IgnitionTime)
	if ctx.HasPointIgn {
		if accelDT == 0 {
			accelDT = wtime.Span(1_000_000_000) // 1s floor, spec.md §4.2
		}
	} else {
		accelDT = 0
	}

	fmc, fmcOK := ctx.Fuel.FMC(0, 0, elevC, ctx.Time.DayOfYear())
	if !fmcOK {
		fmc = 0
	}

	out, ok := ctx.Fuel.CalculateROS(handle, aspect, azimuth, windSpeed, wx.WindDirection+math.Pi,
		dfwi.BUI, fmc, ifwi.FFMC, 0, accelDT.Seconds(), ctx.DayPortion.Seconds(), 0)
	if !ok {
		fp.stampNoFuel()
		return
	}

	if out.ROSEq > ctx.MinimumROS {
		if out.ROSEq < 1e-5 {
			fp.FBPROSRatio = 1
		} else {
			fp.FBPROSRatio = out.ROS / out.ROSEq
		}
		fp.FBPRSI = out.RSI
		fp.FBPROSEq = out.ROSEq
		fp.FBPROS = out.ROS
		fp.FBPBROS = out.BROS
		fp.FBPFROS = out.FROS
		fp.FBPRAZ = out.RAZ

		if ctx.Use2D {
			fp.Grow2D(pPt, sPt)
		} else {
			fp.Grow3D(
				geom.XyzPoint{X: cPt.X, Y: cPt.Y, Z: elevC},
				geom.XyzPoint{X: pPt.X, Y: pPt.Y, Z: elevP},
				geom.XyzPoint{X: sPt.X, Y: sPt.Y, Z: elevS},
				aspect, azimuth, ctx.Topography,
			)
		}

		fp.VectorROS = fp.EllipseROS.Length()

		fbpConsumption, _ := ctx.Fuel.CalculateFC(handle, ifwi.FFMC, dfwi.BUI, fmc, fp.FBPRSI, fp.FBPROS, 0)
		fp.FBPCFB = fbpConsumption.CFB
		fp.FBPFI = fbpConsumption.FI

		vectorConsumption, _ := ctx.Fuel.CalculateFC(handle, ifwi.FFMC, dfwi.BUI, fmc, fp.VectorROS, fp.VectorROS, 0)
		fp.VectorCFB = vectorConsumption.CFB
		fp.VectorCFC = vectorConsumption.CFC
		fp.VectorSFC = vectorConsumption.SFC
		fp.VectorTFC = vectorConsumption.TFC
		fp.VectorFI = vectorConsumption.FI
		fp.FlameLength = flameLength(fp.VectorFI)
	} else {
		fp.EllipseROS = geom.XyPoint{}
		fp.FBPROSRatio = 1
	}

	if fp.VectorROS < ctx.MinimumROS {
		fp.EllipseROS = geom.XyPoint{}
		fp.FBPROSRatio = 1
	}

	if ctx.CanBurn != nil && !ctx.CanBurn(ctx.Time, ctx.Centroid, cPt, wx.RH, windSpeed, ifwi.FWI, ifwi.ISI) {
		fp.EllipseROS = geom.XyPoint{}
		fp.FBPROSRatio = 1
	}
}

func (fp *FirePoint) stampNoFuel() {
	fp.Status = NoFuel
	fp.EllipseROS = geom.XyPoint{}
}

// flameLength is Byram's relation between fireline intensity (kW/m) and
// flame length (m), the standard closed form used alongside FBP outputs.
func flameLength(fi float64) float64 {
	if fi <= 0 {
		return 0
	}
	return 0.0775 * math.Pow(fi, 0.46)
}

// Advance moves a Normal vertex by its ellipse ROS scaled for the elapsed
// step (spec.md §4.3.5): ellipse parameters are m/min, so the scale factor
// is stepSeconds/60 converted into internal 1-D distance units. Inert
// vertices do not move but retain their last ROS for auditing.
func (fp *FirePoint) Advance(stepSeconds float64, internalPerMinuteUnit float64) {
	if fp.Status != Normal {
		return
	}
	scale := (stepSeconds / 60) * internalPerMinuteUnit
	fp.Pos = fp.Pos.Add(fp.EllipseROS.Scale(scale))
}
