// Package timestep implements ScenarioTimeStep's event-scheduling
// algorithm (spec.md §4.5): given a tentative step completion time, shrink
// it to the earliest of every upcoming ignition, landscape/vector/asset
// event, gust transition, and per-fire adaptive end time, then apply the
// INDEPENDENT_TIMESTEPS merge-by-proximity pass once every fire has
// advanced to the shared step time.
package timestep

import (
	"github.com/wise-sim/firesim/internal/activefire"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/gusting"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

// Ignition is the subset of an ignition source entry the scheduler needs
// to shrink the tentative step end (spec.md §4.5 step 2).
type Ignition struct {
	Time         wtime.Time
	ResponseTime wtime.Span // stop-condition response delay, also considered as a candidate event
}

// Params bundles every collaborator and per-fire input ScheduleStep
// consults, matching spec.md §4.5's eight-step recipe.
type Params struct {
	PrevTime  wtime.Time
	EventEnd  wtime.Time
	Landscape provider.LandscapeProvider
	Layer     int
	Centroid  geom.XyPoint // combined-fire centroid: bounding-box centre of every active fire, or the origin when there is none
	Vectors   provider.VectorSource
	Assets    provider.AssetSource
	Gusts     *gusting.Model

	Ignitions []Ignition

	Fires          []*activefire.ActiveFire
	EndTimeParamOf func(af *activefire.ActiveFire) activefire.EndTimeParams

	SpatialThreshold float64 // for the merge-by-proximity pass, spec.md §4.5 "spatialThreshold*2"
}

// Result is the computed ScenarioTimeStep envelope (spec.md §3's
// `evented`/`displayable`/`ignitioned` bits).
type Result struct {
	Time        wtime.Time
	Evented     bool
	Displayable bool
	Ignitioned  bool
}

const oneSecond = wtime.Span(1e9)

// ScheduleStep runs spec.md §4.5's eight-step recipe and, once every fire
// in p.Fires has been advanced by the caller to the returned time, the
// caller should run activefire.MergeByProximity(p.Fires, p.SpatialThreshold)
// to complete the INDEPENDENT_TIMESTEPS pass.
func ScheduleStep(p Params, displayInterval wtime.Span) Result {
	// Step 1: tentative time.
	t := p.EventEnd.Add(oneSecond)

	// Step 2: ignitions in (prevTime, t].
	for _, ign := range p.Ignitions {
		if ign.Time.After(p.PrevTime) && ign.Time.Before(t) {
			t = ign.Time
		}
		if ign.ResponseTime > 0 {
			candidate := ign.Time.Add(ign.ResponseTime)
			if candidate.After(p.PrevTime) && candidate.Before(t) {
				t = candidate
			}
		}
	}

	// Step 3: earliest landscape event from the fire centroid.
	if p.Landscape != nil {
		if ev, ok := p.Landscape.EventTime(p.Layer, p.Centroid, provider.EventSearchFlags{Forward: true}, p.PrevTime); ok {
			if ev.After(p.PrevTime) && ev.Before(t) {
				t = ev
			}
		}
	}

	// Step 4: earliest vector/asset event.
	if p.Vectors != nil {
		if ev, ok := p.Vectors.EventTime(p.PrevTime); ok && ev.After(p.PrevTime) && ev.Before(t) {
			t = ev
		}
	}
	if p.Assets != nil {
		if ev, ok := p.Assets.EventTime(p.PrevTime); ok && ev.After(p.PrevTime) && ev.Before(t) {
			t = ev
		}
	}

	// Step 5: next gust transition.
	if p.Gusts != nil {
		if ev, ok := p.Gusts.NextTransition(p.PrevTime); ok && ev.After(p.PrevTime) && ev.Before(t) {
			t = ev
		}
	}

	// Step 6: shrink to the earliest per-fire adaptive end time.
	for _, af := range p.Fires {
		if af.ScenarioFire == nil || p.EndTimeParamOf == nil {
			continue
		}
		end := af.CalculateEndTime(p.PrevTime, p.EndTimeParamOf(af))
		if end.Before(t) {
			t = end
		}
	}

	// Step 7: clamp to event_end.
	if t.After(p.EventEnd) {
		t = p.EventEnd
	}

	// Step 8: flags.
	evented := !t.Equal(p.EventEnd)
	displayable := t.Equal(p.EventEnd) || displayInterval == 0
	ignitioned := false
	for _, ign := range p.Ignitions {
		if ign.Time.Equal(t) {
			ignitioned = true
			break
		}
	}

	return Result{Time: t, Evented: evented, Displayable: displayable, Ignitioned: ignitioned}
}
