// Package scenario implements Scenario, the top-level simulation loop
// (spec.md §4.6): it owns the time-ordered list of ScenarioTimeSteps, the
// ActiveFire ring, and drives one step's worth of growth/track/untangle
// work across every fire. Within a step, new ignitions are admitted first,
// before any fire grows; then each fire runs advance_fires -> simplify ->
// track_grid -> track_vector -> unwind/unoverlap -> clip against sibling
// fires and vector breaks -> add_points; then fires are merged by
// proximity, and stats run last.
package scenario

import (
	"context"
	"sync"

	"github.com/wise-sim/firesim/internal/activefire"
	"github.com/wise-sim/firesim/internal/config"
	"github.com/wise-sim/firesim/internal/criticalpath"
	"github.com/wise-sim/firesim/internal/firefront"
	"github.com/wise-sim/firesim/internal/firepoint"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/gusting"
	"github.com/wise-sim/firesim/internal/query"
	"github.com/wise-sim/firesim/internal/scenariocache"
	"github.com/wise-sim/firesim/internal/scenariofire"
	"github.com/wise-sim/firesim/internal/stopcondition"
	"github.com/wise-sim/firesim/internal/telemetry/events"
	"github.com/wise-sim/firesim/internal/telemetry/metrics"
	"github.com/wise-sim/firesim/internal/telemetry/tracing"
	"github.com/wise-sim/firesim/internal/timestep"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

// Status is the terminal or in-progress outcome of a Step call.
type Status int

const (
	Running Status = iota
	Complete
	CompleteByExtents
	CompleteByAsset
	CompleteByStopCondition
)

// AssetArrival records when and where a fire first reached an asset
// geometry (spec.md §4.8).
type AssetArrival struct {
	AssetIndex      int
	Time            wtime.Time
	ClosestPoint    *firepoint.FirePoint
	ClosestFireID   int
}

// Step is one ScenarioTimeStep: all fires at one instant (spec.md §3).
type Step struct {
	Time        wtime.Time
	Fires       []*scenariofire.ScenarioFire
	Displayable bool
	Evented     bool
	Ignitioned  bool

	activeFireSnapshot []*activefire.ActiveFire
	AssetArrivals      []AssetArrival
	StopLatched        *stopcondition.Condition
}

// Scenario is the global simulation state: one RW-locked instance per
// simulation run (spec.md §5 "one simulation per Scenario instance").
type Scenario struct {
	mu sync.RWMutex

	Config     config.Config
	Cache      *scenariocache.ScenarioCache
	Ignitions  provider.IgnitionSource
	StopSet    *stopcondition.Set
	Gust       *gusting.Model
	Target     provider.Target
	PctTable   provider.PercentileTable
	EventBus   events.Bus
	Metrics    metrics.Provider
	Tracer     tracing.Tracer

	StartTime wtime.Time
	EndTime   wtime.Time

	Steps      []*Step
	ActiveList []*activefire.ActiveFire

	nextFireID int
	status     Status
}

// New constructs a Scenario ready for its first Step call.
func New(cfg config.Config, cache *scenariocache.ScenarioCache, ignitions provider.IgnitionSource, stopSet *stopcondition.Set, gust *gusting.Model, bus events.Bus, mp metrics.Provider, start, end wtime.Time) *Scenario {
	if mp == nil {
		mp = metrics.NewNoopProvider()
	}
	return &Scenario{
		Config:    cfg,
		Cache:     cache,
		Ignitions: ignitions,
		StopSet:   stopSet,
		Gust:      gust,
		EventBus:  bus,
		Metrics:   mp,
		Tracer:    tracing.Noop(),
		StartTime: start,
		EndTime:   end,
	}
}

// WithTracer installs t as the scenario's span source (spec.md's
// instrumentation carried regardless of the Non-goals that scope out an
// observability backend itself). Passing nil restores the no-op tracer.
func (s *Scenario) WithTracer(t tracing.Tracer) *Scenario {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		t = tracing.Noop()
	}
	s.Tracer = t
	return s
}

// Clear discards every step and active fire, returning the scenario to its
// pre-first-step state (spec.md §4.6).
func (s *Scenario) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Steps = nil
	s.ActiveList = nil
	s.nextFireID = 0
	s.status = Running
	if s.StopSet != nil {
		s.StopSet.Reset()
	}
}

func (s *Scenario) prevTime() wtime.Time {
	if len(s.Steps) == 0 {
		return s.StartTime
	}
	return s.Steps[len(s.Steps)-1].Time
}

// Step runs one public step action: it advances the simulation clock to
// the next display boundary (or sooner, per event scheduling), running as
// many internal ScenarioTimeSteps as needed, and returns the resulting
// status (spec.md §4.6 "step()").
func (s *Scenario) Step(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.Tracer.StartSpan(ctx, "scenario.step")
	defer span.End()

	if s.status != Running {
		return s.status
	}

	prev := s.prevTime()
	if !prev.Before(s.EndTime) {
		s.status = CompleteByExtents
		return s.status
	}

	s.Cache.BuildStaticBreaks(prev)
	s.Cache.BuildAssets()

	stepCompletion := prev.Add(s.Config.Acceleration.DisplayInterval)
	if stepCompletion.After(s.EndTime) {
		stepCompletion = s.EndTime
	}
	if len(s.Steps) == 0 {
		stepCompletion = s.StartTime
	}

	for {
		result, err := s.runOneTimeStep(ctx, prev, stepCompletion)
		if err != nil {
			return s.status
		}
		prev = result.Time

		if s.status != Running {
			return s.status
		}
		if result.Displayable {
			break
		}
	}

	if !prev.Before(s.EndTime) {
		s.status = CompleteByExtents
	}
	return s.status
}

// runOneTimeStep builds and applies one ScenarioTimeStep, returning the
// scheduled result. It mutates s.status if an asset or stop condition
// fires, and returns an error (without recording the step) if vertex
// growth was aborted by ctx cancellation.
func (s *Scenario) runOneTimeStep(ctx context.Context, prev, eventEnd wtime.Time) (timestep.Result, error) {
	ignitions := s.collectIgnitions(prev)

	result := timestep.ScheduleStep(timestep.Params{
		PrevTime:  prev,
		EventEnd:  eventEnd,
		Landscape: s.Cache.Landscape,
		Centroid:  s.combinedCentroid(),
		Vectors:   s.Cache.Vectors,
		Assets:    s.Cache.AssetSource,
		Gusts:     s.Gust,
		Ignitions: ignitions,
		Fires:     s.ActiveList,
		EndTimeParamOf: func(af *activefire.ActiveFire) activefire.EndTimeParams {
			return s.endTimeParams(af)
		},
		SpatialThreshold: s.Config.Acceleration.SpatialThreshold,
	}, s.Config.Acceleration.DisplayInterval)

	_, ignitionSpan := s.Tracer.StartSpan(ctx, "scenario.add_ignitions")
	s.admitNewIgnitions(result.Time)
	ignitionSpan.End()

	for _, af := range s.ActiveList {
		af.Advanced = false
	}

	advanceCtx, advanceSpan := s.Tracer.StartSpan(ctx, "scenario.advance_fires")
	err := s.advanceAllFires(advanceCtx, result.Time)
	advanceSpan.RecordError(err)
	advanceSpan.End()
	if err != nil {
		return result, err
	}

	_, mergeSpan := s.Tracer.StartSpan(ctx, "scenario.unoverlap")
	activefire.MergeByProximity(s.ActiveList, s.Config.Acceleration.SpatialThreshold)
	mergeSpan.End()

	step := &Step{
		Time:        result.Time,
		Displayable: result.Displayable,
		Evented:     result.Evented,
		Ignitioned:  result.Ignitioned,
	}
	for _, af := range s.ActiveList {
		if af.ScenarioFire != nil {
			step.Fires = append(step.Fires, af.ScenarioFire)
		}
	}
	step.activeFireSnapshot = snapshotActiveFires(s.ActiveList)

	_, statsSpan := s.Tracer.StartSpan(ctx, "scenario.stats")
	s.checkAssets(step)
	s.checkStopConditions(step)
	statsSpan.End()

	s.Steps = append(s.Steps, step)
	if s.Config.Resources.ClosestPointCacheCapacity > 0 {
		// closest-point cache entries are written lazily by query callers
		// keyed on this step's index; nothing to precompute here.
	}

	if s.EventBus != nil {
		s.EventBus.Publish(events.Event{
			Time: result.Time.Std(), Category: events.CategoryStopCondition, Type: "step_completed",
			Fields: map[string]any{"evented": result.Evented, "displayable": result.Displayable},
		})
	}

	return result, nil
}

func snapshotActiveFires(fires []*activefire.ActiveFire) []*activefire.ActiveFire {
	out := make([]*activefire.ActiveFire, len(fires))
	copy(out, fires)
	return out
}

// collectIgnitions surfaces every configured ignition as a timestep.Ignition
// candidate, attaching the stop-condition response delay so step 2's
// "also consider ignition_time + response_time" rule is honoured.
func (s *Scenario) collectIgnitions(prev wtime.Time) []timestep.Ignition {
	if s.Ignitions == nil {
		return nil
	}
	var responseTime wtime.Span
	if s.StopSet != nil {
		responseTime = s.StopSet.ResponseTime
	}
	out := make([]timestep.Ignition, 0, s.Ignitions.Count())
	for i := 0; i < s.Ignitions.Count(); i++ {
		_, _, ignTime := s.Ignitions.Ignition(i)
		out = append(out, timestep.Ignition{Time: ignTime, ResponseTime: responseTime})
	}
	return out
}

// admitNewIgnitions materialises any ignition whose time has newly
// arrived into a fresh ActiveFire/ScenarioFire pair.
func (s *Scenario) admitNewIgnitions(at wtime.Time) {
	if s.Ignitions == nil {
		return
	}
	for i := 0; i < s.Ignitions.Count(); i++ {
		kind, polygon, ignTime := s.Ignitions.Ignition(i)
		if !ignTime.Equal(at) {
			continue
		}
		if s.alreadyAdmitted(i) {
			continue
		}
		sf := scenariofire.New(s.nextFireID, ignTime)
		s.nextFireID++
		pts := make([]*firepoint.FirePoint, len(polygon))
		for j, p := range polygon {
			pts[j] = firepoint.NewNormal(p)
		}
		interp := firefront.Polygon
		if kind == provider.IgnitionLine {
			interp = firefront.Polyline
		}
		front := firefront.New(pts, interp)
		front.Interior = kind == provider.IgnitionPolygonIn
		sf.Fronts = append(sf.Fronts, front)

		af := activefire.New(sf, at)
		af.BBox = geom.Poly(polygon).BoundingBox()
		s.ActiveList = append(s.ActiveList, af)
	}
}

func (s *Scenario) alreadyAdmitted(ignitionIndex int) bool {
	for _, af := range s.ActiveList {
		if af.ScenarioFire != nil && af.ScenarioFire.ID == ignitionIndex {
			return true
		}
	}
	return false
}

// advanceAllFires runs spec.md §5's strict per-step phase order across
// every fire whose cluster's end time has caught up to at: advance,
// simplify, track_grid, track_vector, unwind, unoverlap, add_points.
func (s *Scenario) advanceAllFires(ctx context.Context, at wtime.Time) error {
	for _, af := range s.ActiveList {
		if af.ScenarioFire == nil || af.Advanced {
			continue
		}
		if af.EndTime.Equal(at) || af.EndTime.Before(at) {
			if err := s.growFire(ctx, af, at); err != nil {
				return err
			}
			af.Advanced = true
			af.BBox = s.fireBBox(af.ScenarioFire)
		}
	}
	return nil
}

func (s *Scenario) growFire(ctx context.Context, af *activefire.ActiveFire, at wtime.Time) error {
	sf := af.ScenarioFire
	priorMinROSRatio := af.MinROSRatio
	for _, front := range sf.Fronts {
		if err := s.growFront(ctx, front, af, at); err != nil {
			return err
		}
		front.Simplify(s.Config.Topology.PerimeterResolution, s.Config.Topology.PerimeterResolution, s.Config.Topology.PerimeterSpacing, priorMinROSRatio)
		front.TrackGrid(s.Config.Topology.DistanceResolution, geom.XyPoint{}, s.isNonFuel, s.Config.Breaching.Allowed)
	}

	others, otherAreas := s.otherFirePolys(sf)
	ownArea := sf.Area()
	for _, front := range sf.Fronts {
		firefront.TrackVectorPassA(front, ownArea, others, otherAreas)
	}

	breaks := s.breakPolys(at)
	for _, front := range sf.Fronts {
		firefront.TrackVectorPassB(front, breaks, s.Config.Breaching.Allowed, s.Config.Topology.PerimeterSpacing)
	}

	sf.Unoverlap(true, nil)

	// DIFF-clip against every larger-or-equal-area sibling fire (spec.md
	// §4.4: "unoverlap() clips each fire's polygon against every LARGER
	// fire's polygon"). Unlike a union merge, only sf loses area here;
	// other keeps its own fronts and identity.
	ownArea = sf.Area()
	for _, other := range s.ActiveList {
		if other.ScenarioFire == nil || other.ScenarioFire == sf {
			continue
		}
		if other.ScenarioFire.Area() >= ownArea && sf.Overlaps(other.ScenarioFire) {
			sf.ClipAgainst(other.ScenarioFire, at, nil)
		}
	}

	sf.ClipAgainstBreaks(breaks, at, nil)

	if len(sf.Fronts) == 0 {
		af.ScenarioFire = nil
		return nil
	}

	for _, front := range sf.Fronts {
		front.AddPoints(s.Config.Topology.PerimeterResolution, s.Config.Topology.SuppressTightConcave)
	}

	af.MinROSRatio = minROSRatio(sf)
	return nil
}

func minROSRatio(sf *scenariofire.ScenarioFire) float64 {
	ratio := 1.0
	for _, front := range sf.Fronts {
		for _, p := range front.Points {
			if p.FBPROSRatio < ratio {
				ratio = p.FBPROSRatio
			}
		}
	}
	return ratio
}

func (s *Scenario) growFront(ctx context.Context, front *firefront.FireFront, af *activefire.ActiveFire, at wtime.Time) error {
	n := len(front.Points)
	if n == 0 {
		return nil
	}
	err := s.Cache.GrowVertices(ctx, n, func(_ context.Context, i int) error {
		curr := front.Points[i]
		if curr.Status != firepoint.Normal {
			return nil
		}
		prevIdx, succIdx := i-1, i+1
		if front.Interpret == firefront.Polygon {
			prevIdx = (i - 1 + n) % n
			succIdx = (i + 1) % n
		} else {
			if prevIdx < 0 {
				prevIdx = 0
			}
			if succIdx >= n {
				succIdx = n - 1
			}
		}
		snapshot := firepoint.NewNormal(curr.Pos)
		snapshot.PrevPoint = curr.PrevPoint
		curr.PrevPoint = snapshot
		curr.Grow(front.Points[prevIdx], front.Points[succIdx], firepoint.Context{
			Landscape:       s.Cache.Landscape,
			Fuel:            s.Cache.Fuel,
			Target:          s.Target,
			Gust:            s.Gust,
			Time:            at,
			Use2D:           true,
			HasPointIgn:     s.ignitionHasPoint(af),
			IgnitionTime:    af.StartTime,
			MinimumROS:      s.Config.Acceleration.MinimumROS,
			OverrideWindDir: s.Config.Weather.OverrideWindDirection,
			DeltaWindDir:    s.Config.Weather.DeltaWindDirection,
			InterpFlags:     provider.InterpFlags{Temporal: true, Spatial: true},
			CanBurn:         s.Cache.CanBurn,
			Centroid:        s.combinedCentroid(),
		})
		return nil
	})
	if err != nil {
		return err
	}
	front.Advance(1, 1)
	return nil
}

func (s *Scenario) ignitionHasPoint(af *activefire.ActiveFire) bool {
	return af.ScenarioFire != nil && len(af.ScenarioFire.Fronts) == 1 && len(af.ScenarioFire.Fronts[0].Points) == 1
}

func (s *Scenario) isNonFuel(cell geom.GridCell) bool {
	if s.Cache.Fuel == nil || s.Cache.Landscape == nil {
		return false
	}
	pt := geom.CellCenter(cell, s.Config.Topology.DistanceResolution, geom.XyPoint{})
	handle, ok := s.Cache.Landscape.Fuel(0, pt, s.prevTime())
	if !ok {
		return true
	}
	return s.Cache.Fuel.IsNonFuel(handle)
}

func (s *Scenario) otherFirePolys(self *scenariofire.ScenarioFire) ([]geom.Poly, []float64) {
	var polys []geom.Poly
	var areas []float64
	for _, af := range s.ActiveList {
		if af.ScenarioFire == nil || af.ScenarioFire == self {
			continue
		}
		for _, front := range af.ScenarioFire.Fronts {
			polys = append(polys, front.Positions())
			areas = append(areas, af.ScenarioFire.Area())
		}
	}
	return polys, areas
}

func (s *Scenario) breakPolys(at wtime.Time) []geom.Poly {
	var out []geom.Poly
	for _, b := range s.Cache.StaticBreaks {
		out = append(out, b.Geometry)
	}
	return out
}

func (s *Scenario) fireBBox(sf *scenariofire.ScenarioFire) geom.Rect {
	box := geom.NewEmptyRect()
	for _, front := range sf.Fronts {
		box = box.Union(front.Positions().BoundingBox())
	}
	return box
}

func (s *Scenario) combinedCentroid() geom.XyPoint {
	box := geom.NewEmptyRect()
	for _, af := range s.ActiveList {
		if af.ScenarioFire == nil {
			continue
		}
		box = box.Union(s.fireBBox(af.ScenarioFire))
	}
	if box.Empty() {
		return geom.XyPoint{}
	}
	return geom.XyPoint{X: (box.Min.X + box.Max.X) / 2, Y: (box.Min.Y + box.Max.Y) / 2}
}

func (s *Scenario) endTimeParams(af *activefire.ActiveFire) activefire.EndTimeParams {
	maxROS, minRatio := 0.0, 1.0
	if af.ScenarioFire != nil {
		minRatio = minROSRatio(af.ScenarioFire)
		for _, front := range af.ScenarioFire.Fronts {
			for _, p := range front.Points {
				if p.VectorROS > maxROS {
					maxROS = p.VectorROS
				}
			}
		}
	}
	return activefire.EndTimeParams{
		MaxROS:                        maxROS,
		MinimumROS:                    s.Config.Acceleration.MinimumROS,
		MinROSRatio:                   minRatio,
		InBurningPeriod:               true,
		TemporalThresholdAcceleration: s.Config.Acceleration.TemporalThresholdAcceleration,
		SpatialThreshold:              s.Config.Acceleration.SpatialThreshold,
	}
}

// checkAssets marks any asset whose geometry the current step's fires now
// touch as arrived (spec.md §4.8), using a bounding-box pre-test before
// the exact intersection check (SPEC_FULL.md §7 "fast collision pre-test").
func (s *Scenario) checkAssets(step *Step) {
	if s.Cache.AssetSource == nil {
		return
	}
	for _, asset := range s.Cache.Assets {
		for _, sf := range step.Fires {
			for _, front := range sf.Fronts {
				if !boundingBoxesOverlap(asset.BBox, front.Positions().BoundingBox()) {
					continue
				}
				if arrivalPoint, ok := frontArrivesAt(front, asset); ok {
					step.AssetArrivals = append(step.AssetArrivals, AssetArrival{
						AssetIndex: asset.Index, Time: step.Time, ClosestPoint: arrivalPoint, ClosestFireID: sf.ID,
					})
				}
			}
		}
	}
	if len(step.AssetArrivals) > 0 {
		s.status = CompleteByAsset
		if s.EventBus != nil {
			s.EventBus.Publish(events.Event{Time: step.Time.Std(), Category: events.CategoryAsset, Type: "asset_arrived"})
		}
	}
}

func boundingBoxesOverlap(a, b geom.Rect) bool { return a.Intersects(b) }

func frontArrivesAt(front *firefront.FireFront, asset scenariocache.Asset) (*firepoint.FirePoint, bool) {
	switch asset.Kind {
	case provider.AssetMultipoint:
		for _, p := range asset.Geometry {
			if front.Positions().ContainsPoint(p) {
				return nearestPoint(front, p), true
			}
		}
		return nil, false
	default:
		n := len(asset.Geometry)
		fn := len(front.Points)
		if n < 2 || fn < 2 {
			return nil, false
		}
		for i := 0; i < fn; i++ {
			next := i + 1
			if next >= fn {
				if front.Interpret != firefront.Polygon {
					continue
				}
				next = 0
			}
			a1, a2 := front.Points[i].Pos, front.Points[next].Pos
			for j := 0; j < n; j++ {
				b1, b2 := asset.Geometry[j], asset.Geometry[(j+1)%n]
				if _, _, _, ok := geom.SegmentIntersect(a1, a2, b1, b2); ok {
					return front.Points[i], true
				}
			}
		}
		return nil, false
	}
}

func nearestPoint(front *firefront.FireFront, target geom.XyPoint) *firepoint.FirePoint {
	var best *firepoint.FirePoint
	bestDist := -1.0
	for _, p := range front.Points {
		d := p.Pos.Dist(target)
		if best == nil || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}

// checkStopConditions evaluates the configured latch set against this
// step's aggregate sample, per spec.md §4.8.
func (s *Scenario) checkStopConditions(step *Step) {
	if s.StopSet == nil {
		return
	}
	totalArea := 0.0
	var points []*firepoint.FirePoint
	for _, sf := range step.Fires {
		totalArea += sf.Area()
		points = append(points, sf.AllPoints()...)
	}
	sample := stopcondition.Sample{
		Time:              step.Time,
		TotalArea:         totalArea,
		InBurningPeriod:   true,
		FractionAtOrAbove: fractionAtOrAbove(points),
	}
	if hit := s.StopSet.Evaluate(sample); hit != nil {
		step.StopLatched = hit
		s.status = CompleteByStopCondition
		if s.EventBus != nil {
			s.EventBus.Publish(events.Event{Time: step.Time.Std(), Category: events.CategoryStopCondition, Type: hit.Kind.String()})
		}
	}
}

// fractionAtOrAbove builds the FI90/FI95/FI100 stop-condition predicate:
// the fraction of perimeter vertices whose fire intensity meets or exceeds
// thresholdKW must itself meet or exceed percentile (spec.md §4.8).
func fractionAtOrAbove(points []*firepoint.FirePoint) func(thresholdKW, percentile float64) bool {
	return func(thresholdKW, percentile float64) bool {
		if len(points) == 0 {
			return false
		}
		met := 0
		for _, p := range points {
			if p.VectorFI >= thresholdKW {
				met++
			}
		}
		return float64(met)/float64(len(points)) >= percentile
	}
}

// CurrentTime returns the latest displayable step's time (spec.md §4.6).
func (s *Scenario) CurrentTime() wtime.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.Steps) - 1; i >= 0; i-- {
		if s.Steps[i].Displayable {
			return s.Steps[i].Time
		}
	}
	return s.StartTime
}

// NumSteps returns the number of recorded steps.
func (s *Scenario) NumSteps() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.Steps)
}

// NumFires returns the number of currently live fires.
func (s *Scenario) NumFires() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, af := range s.ActiveList {
		if af.ScenarioFire != nil {
			n++
		}
	}
	return n
}

// PointBurned reports whether pt lies inside any fire at the nearest
// displayable step at or before t (spec.md §4.6 "point_burned").
func (s *Scenario) PointBurned(pt geom.XyPoint, t wtime.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	step := s.nearestDisplayableAtOrBefore(t)
	if step == nil {
		return false
	}
	for _, sf := range step.Fires {
		if toPolySetContains(sf, pt) {
			return true
		}
	}
	return false
}

func toPolySetContains(sf *scenariofire.ScenarioFire, pt geom.XyPoint) bool {
	for _, front := range sf.Fronts {
		if front.Interpret == firefront.Polygon && front.Positions().ContainsPoint(pt) {
			if !front.Interior {
				return true
			}
		}
	}
	return false
}

// BurningBox returns the union bounding box of every fire at the nearest
// displayable step at or before t.
func (s *Scenario) BurningBox(t wtime.Time) geom.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	step := s.nearestDisplayableAtOrBefore(t)
	box := geom.NewEmptyRect()
	if step == nil {
		return box
	}
	for _, sf := range step.Fires {
		for _, front := range sf.Fronts {
			box = box.Union(front.Positions().BoundingBox())
		}
	}
	return box
}

func (s *Scenario) nearestDisplayableAtOrBefore(t wtime.Time) *Step {
	var found *Step
	for _, step := range s.Steps {
		if step.Displayable && !step.Time.After(t) {
			found = step
		}
	}
	return found
}

// StepBack discards the latest block of consecutive non-displayable steps
// and one preceding displayable step, restoring the ActiveFire ring from
// the snapshot saved on the new tail step (spec.md §4.6 "step_back()").
func (s *Scenario) StepBack() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.Steps) > 0 && !s.Steps[len(s.Steps)-1].Displayable {
		s.Steps = s.Steps[:len(s.Steps)-1]
	}
	if len(s.Steps) > 0 {
		s.Steps = s.Steps[:len(s.Steps)-1]
	}
	if s.StopSet != nil {
		s.StopSet.Reset()
	}
	if len(s.Steps) == 0 {
		s.ActiveList = nil
		s.status = Running
		return
	}
	tail := s.Steps[len(s.Steps)-1]
	s.ActiveList = snapshotActiveFires(tail.activeFireSnapshot)
	s.status = Running
}

// vertexStats returns every perimeter vertex alive at the nearest
// displayable step at or before t, as query.Vertex values ready for the
// interpolation techniques in internal/query.
func (s *Scenario) vertexStats(t wtime.Time) []query.Vertex {
	step := s.nearestDisplayableAtOrBefore(t)
	if step == nil {
		return nil
	}
	var out []query.Vertex
	for _, sf := range step.Fires {
		for _, front := range sf.Fronts {
			for _, fp := range front.Points {
				out = append(out, query.Vertex{
					Pos: fp.Pos,
					Values: map[query.StatID]float64{
						query.StatROS:         fp.VectorROS,
						query.StatCFB:         fp.VectorCFB,
						query.StatCFC:         fp.VectorCFC,
						query.StatSFC:         fp.VectorSFC,
						query.StatTFC:         fp.VectorTFC,
						query.StatFI:          fp.VectorFI,
						query.StatFlameLength: fp.FlameLength,
						query.StatRAZ:         fp.FBPRAZ,
					},
				})
			}
		}
	}
	return out
}

func (s *Scenario) neighborhood() query.NeighborhoodConfig {
	return query.DefaultNeighborhood(s.Config.Topology.PerimeterResolution, s.Config.Acceleration.SpatialThreshold)
}

// GetStats resolves stat at pt and t using the requested technique
// (spec.md §4.6 "get_stats"): CLOSEST_VERTEX, IDW, AREA_WEIGHTING and
// VORONOI_OVERLAP all draw their neighbourhood from the perimeter vertices
// alive at the nearest displayable step at or before t.
func (s *Scenario) GetStats(pt geom.XyPoint, t wtime.Time, technique query.Technique, stat query.StatID) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vertices := s.vertexStats(t)
	if len(vertices) == 0 {
		return 0, false
	}

	switch technique {
	case query.ClosestVertex:
		return query.ClosestVertexQuery(pt, vertices, stat)
	case query.IDW:
		neighbors := query.Neighbors(pt, vertices, s.neighborhood())
		return query.IDWQuery(pt, neighbors, stat, 2)
	case query.AreaWeighting:
		cfg := s.neighborhood()
		neighbors := query.Neighbors(pt, vertices, cfg)
		lo := geom.XyPoint{X: pt.X - cfg.StartRadius, Y: pt.Y - cfg.StartRadius}
		hi := geom.XyPoint{X: pt.X + cfg.StartRadius, Y: pt.Y + cfg.StartRadius}
		return query.AreaWeightingQuery(lo, hi, pt, neighbors, stat)
	case query.VoronoiOverlap:
		neighbors := query.Neighbors(pt, vertices, s.neighborhood())
		return query.VoronoiOverlapQuery(pt, neighbors, stat)
	default:
		return 0, false
	}
}

// CriticalPath traces the vertex an asset arrival resolved to back to its
// origin, returning the path in forward chronological order (spec.md §4.7).
func (s *Scenario) CriticalPath(arrival AssetArrival) []criticalpath.Vertex {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return criticalpath.Polyline(arrival.ClosestPoint)
}
