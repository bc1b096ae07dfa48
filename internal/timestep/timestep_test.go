package timestep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wise-sim/firesim/internal/activefire"
	"github.com/wise-sim/firesim/internal/firefront"
	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/gusting"
	"github.com/wise-sim/firesim/internal/scenariofire"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

func at(minutes int) wtime.Time {
	return wtime.New(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC).Add(time.Duration(minutes)*time.Minute), time.UTC)
}

type fakeLandscape struct {
	eventTime wtime.Time
	ok        bool
}

func (f *fakeLandscape) Fuel(int, geom.XyPoint, wtime.Time) (provider.FuelHandle, bool) { return nil, false }
func (f *fakeLandscape) Attribute(int, geom.XyPoint, wtime.Time, wtime.Span, provider.AttrID, provider.InterpFlags) (any, bool) {
	return nil, false
}
func (f *fakeLandscape) Elevation(int, geom.XyPoint, bool) (float64, float64, float64, bool, bool) {
	return 0, 0, 0, false, false
}
func (f *fakeLandscape) Weather(int, geom.XyPoint, wtime.Time, provider.InterpFlags) (provider.IWXData, provider.IFWIData, provider.DFWIData, bool) {
	return provider.IWXData{}, provider.IFWIData{}, provider.DFWIData{}, false
}
func (f *fakeLandscape) PreCalculationEvent(int, wtime.Time, string, any)  {}
func (f *fakeLandscape) PostCalculationEvent(int, wtime.Time, string, any) {}
func (f *fakeLandscape) EventTime(int, geom.XyPoint, provider.EventSearchFlags, wtime.Time) (wtime.Time, bool) {
	return f.eventTime, f.ok
}

func squareFire(t *testing.T, offset float64) *scenariofire.ScenarioFire {
	t.Helper()
	pts := []geom.XyPoint{{X: offset, Y: offset}, {X: offset + 10, Y: offset}, {X: offset + 10, Y: offset + 10}, {X: offset, Y: offset + 10}}
	sf := scenariofire.New(1, at(0))
	fps := make([]*firepoint.FirePoint, len(pts))
	for i, p := range pts {
		fps[i] = firepoint.NewNormal(p)
	}
	sf.Fronts = append(sf.Fronts, firefront.New(fps, firefront.Polygon))
	return sf
}

func TestScheduleStepShrinksToEventEnd(t *testing.T) {
	p := Params{
		PrevTime: at(0),
		EventEnd: at(10),
	}
	r := ScheduleStep(p, time.Duration(10*time.Minute))
	assert.True(t, r.Time.Equal(at(10)))
	assert.False(t, r.Evented)
	assert.True(t, r.Displayable)
}

func TestScheduleStepShrinksToIgnitionWithinWindow(t *testing.T) {
	p := Params{
		PrevTime:  at(0),
		EventEnd:  at(10),
		Ignitions: []Ignition{{Time: at(5)}},
	}
	r := ScheduleStep(p, time.Duration(10*time.Minute))
	assert.True(t, r.Time.Equal(at(5)))
	assert.True(t, r.Evented)
	assert.True(t, r.Ignitioned)
}

func TestScheduleStepIgnoresIgnitionOutsideWindow(t *testing.T) {
	p := Params{
		PrevTime:  at(0),
		EventEnd:  at(10),
		Ignitions: []Ignition{{Time: at(20)}},
	}
	r := ScheduleStep(p, time.Duration(10*time.Minute))
	assert.True(t, r.Time.Equal(at(10)))
	assert.False(t, r.Ignitioned)
}

func TestScheduleStepShrinksToLandscapeEvent(t *testing.T) {
	p := Params{
		PrevTime:  at(0),
		EventEnd:  at(10),
		Landscape: &fakeLandscape{eventTime: at(3), ok: true},
	}
	r := ScheduleStep(p, time.Duration(10*time.Minute))
	assert.True(t, r.Time.Equal(at(3)))
	assert.True(t, r.Evented)
}

func TestScheduleStepShrinksToGustTransition(t *testing.T) {
	gusts := gusting.NewSequence([]gusting.Transition{{At: at(4), Percent: 0.2}})
	p := Params{
		PrevTime: at(0),
		EventEnd: at(10),
		Gusts:    gusts,
	}
	r := ScheduleStep(p, time.Duration(10*time.Minute))
	assert.True(t, r.Time.Equal(at(4)))
}

func TestScheduleStepShrinksToFireEndTime(t *testing.T) {
	sf := squareFire(t, 0)
	af := activefire.New(sf, at(0))

	p := Params{
		PrevTime: at(0),
		EventEnd: at(120),
		Fires:    []*activefire.ActiveFire{af},
		EndTimeParamOf: func(*activefire.ActiveFire) activefire.EndTimeParams {
			return activefire.EndTimeParams{
				MaxROS: 0, MinimumROS: 1, InBurningPeriod: true,
				TemporalThresholdAcceleration: 2 * time.Minute,
			}
		},
	}
	r := ScheduleStep(p, time.Duration(10*time.Minute))
	require.True(t, r.Time.Before(at(120)))
	assert.True(t, r.Time.Equal(at(2)))
}

func TestScheduleStepZeroDisplayIntervalAlwaysDisplayable(t *testing.T) {
	p := Params{PrevTime: at(0), EventEnd: at(10)}
	r := ScheduleStep(p, 0)
	assert.True(t, r.Displayable)
}
