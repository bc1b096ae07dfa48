// Command firesim-demo runs a single synthetic wildfire scenario to
// completion and prints the resulting perimeter growth, demonstrating the
// firesim.Engine facade end to end: a flat, uniform landscape and fuel
// model, one polygon ignition, and a fixed wind.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"time"

	"github.com/wise-sim/firesim"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

func main() {
	var (
		minutes  = flag.Int("minutes", 120, "simulated minutes to run")
		sideLen  = flag.Float64("ignition-side", 20, "side length of the square starting ignition polygon (metres)")
		windSpd  = flag.Float64("wind-speed", 20, "sustained wind speed (km/h)")
		windDir  = flag.Float64("wind-dir", 45, "wind direction (degrees, meteorological)")
	)
	flag.Parse()

	cfg := firesim.Defaults()
	cfg.MetricsEnabled = false

	start := wtime.New(time.Now(), time.UTC)
	end := start.Add(time.Duration(*minutes) * time.Minute)

	landscape := &flatLandscape{windSpeed: *windSpd, windDir: *windDir * math.Pi / 180}
	ignitions := &squareIgnition{side: *sideLen, at: start}

	engine, err := firesim.New(cfg, firesim.Inputs{
		Landscape: landscape,
		Fuel:      uniformFuel{},
		Ignitions: ignitions,
	}, start, end)
	if err != nil {
		log.Fatalf("firesim.New: %v", err)
	}
	defer engine.Stop()

	engine.RegisterEventObserver(func(ev firesim.TelemetryEvent) {
		log.Printf("event: %s/%s at %s", ev.Category, ev.Type, ev.Time.Format(time.RFC3339))
	})

	for {
		status := engine.Step(context.Background())
		if status != firesim.Running {
			log.Printf("scenario finished: status=%v steps=%d fires=%d time=%s",
				status, engine.NumSteps(), engine.NumFires(), engine.CurrentTime())
			break
		}
	}

	box := engine.BurningBox(engine.CurrentTime())
	log.Printf("final burning extent: (%.1f,%.1f) - (%.1f,%.1f)", box.Min.X, box.Min.Y, box.Max.X, box.Max.Y)

	os.Exit(0)
}

// flatLandscape is a uniform, fully fuelled terrain with a single fixed wind
// observation: enough to exercise the full scheduling/growth pipeline
// without a real gridded data source.
type flatLandscape struct {
	windSpeed float64
	windDir   float64
}

func (l *flatLandscape) Fuel(int, geom.XyPoint, wtime.Time) (provider.FuelHandle, bool) {
	return "C2", true
}

func (l *flatLandscape) Attribute(int, geom.XyPoint, wtime.Time, wtime.Span, provider.AttrID, provider.InterpFlags) (any, bool) {
	return nil, false
}

func (l *flatLandscape) Elevation(int, geom.XyPoint, bool) (float64, float64, float64, bool, bool) {
	return 0, 0, 0, true, true
}

func (l *flatLandscape) Weather(int, geom.XyPoint, wtime.Time, provider.InterpFlags) (provider.IWXData, provider.IFWIData, provider.DFWIData, bool) {
	return provider.IWXData{
		Temp:          20,
		RH:            40,
		WindSpeed:     l.windSpeed,
		WindDirection: l.windDir,
		Precip:        0,
	}, provider.IFWIData{FFMC: 88, ISI: 9, FWI: 15}, provider.DFWIData{BUI: 60, DMC: 30, DC: 200}, true
}

func (l *flatLandscape) PreCalculationEvent(int, wtime.Time, string, any)  {}
func (l *flatLandscape) PostCalculationEvent(int, wtime.Time, string, any) {}

func (l *flatLandscape) EventTime(int, geom.XyPoint, provider.EventSearchFlags, wtime.Time) (wtime.Time, bool) {
	return wtime.Time{}, false
}

// uniformFuel returns a fixed moderate rate of spread and consumption
// regardless of handle, standing in for a real FBP fuel-type table.
type uniformFuel struct{}

func (uniformFuel) CalculateROS(_ provider.FuelHandle, _, _, wsv, _, _, _, _, _, _, _ float64, _ uint64) (provider.FBPOutputs, bool) {
	ros := 2 + wsv*0.05
	return provider.FBPOutputs{RSI: ros, ROSEq: ros, ROS: ros, FROS: ros, BROS: ros * 0.2, RAZ: 0}, true
}

func (uniformFuel) CalculateFC(_ provider.FuelHandle, _, _, _, rsi, ros float64, _ uint64) (provider.FBPConsumption, bool) {
	return provider.FBPConsumption{CFB: 0.5, CFC: 0.8, RSO: 1, CSI: 100, SFC: 1.2, TFC: 2.0, FI: 300 * ros}, true
}

func (uniformFuel) FMC(float64, float64, float64, int) (float64, bool) { return 100, true }
func (uniformFuel) IsNonFuel(provider.FuelHandle) bool                 { return false }
func (uniformFuel) IsGrass(provider.FuelHandle) bool                   { return false }
func (uniformFuel) IsMixed(provider.FuelHandle) bool                   { return false }
func (uniformFuel) IsMixedDeadFir(provider.FuelHandle) bool            { return false }
func (uniformFuel) IsC6(provider.FuelHandle) bool                      { return false }

// squareIgnition configures exactly one square polygon-out ignition
// centred at the origin, starting at the scenario's start time.
type squareIgnition struct {
	side float64
	at   wtime.Time
}

func (s *squareIgnition) Count() int { return 1 }
func (s *squareIgnition) Size(int) int {
	return 4
}

func (s *squareIgnition) Ignition(int) (provider.IgnitionType, geom.Poly, wtime.Time) {
	half := s.side / 2
	poly := geom.Poly{
		{X: -half, Y: -half},
		{X: half, Y: -half},
		{X: half, Y: half},
		{X: -half, Y: half},
	}
	return provider.IgnitionPolygonOut, poly, s.at
}

func (s *squareIgnition) Valid(wtime.Span, wtime.Span) bool           { return true }
func (s *squareIgnition) PreCalculationEvent(wtime.Time, string, any)  {}
func (s *squareIgnition) PostCalculationEvent(wtime.Time, string, any) {}
