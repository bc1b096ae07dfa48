package firesim

import (
	"context"
	"sync"
	"time"

	"github.com/wise-sim/firesim/internal/criticalpath"
	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/gridcache"
	"github.com/wise-sim/firesim/internal/gusting"
	"github.com/wise-sim/firesim/internal/query"
	"github.com/wise-sim/firesim/internal/scenario"
	"github.com/wise-sim/firesim/internal/scenariocache"
	"github.com/wise-sim/firesim/internal/stopcondition"
	"github.com/wise-sim/firesim/internal/telemetry/events"
	"github.com/wise-sim/firesim/internal/telemetry/health"
	"github.com/wise-sim/firesim/internal/telemetry/metrics"
	"github.com/wise-sim/firesim/internal/telemetry/tracing"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

// Status mirrors internal/scenario.Status so callers never import the
// internal package directly.
type Status = scenario.Status

const (
	Running                = scenario.Running
	CompleteByExtents       = scenario.CompleteByExtents
	CompleteByAsset         = scenario.CompleteByAsset
	CompleteByStopCondition = scenario.CompleteByStopCondition
)

// Technique and StatID re-export internal/query's get_stats vocabulary.
type Technique = query.Technique
type StatID = query.StatID

const (
	ClosestVertex  = query.ClosestVertex
	IDW            = query.IDW
	AreaWeighting  = query.AreaWeighting
	VoronoiOverlap = query.VoronoiOverlap
)

const (
	StatROS         = query.StatROS
	StatCFB         = query.StatCFB
	StatCFC         = query.StatCFC
	StatSFC         = query.StatSFC
	StatTFC         = query.StatTFC
	StatFI          = query.StatFI
	StatFlameLength = query.StatFlameLength
	StatRAZ         = query.StatRAZ
)

// CriticalPathVertex re-exports internal/criticalpath.Vertex: one point
// along the trail from an asset arrival back to its vertex's origin.
type CriticalPathVertex = criticalpath.Vertex

// AssetArrival re-exports internal/scenario.AssetArrival.
type AssetArrival = scenario.AssetArrival

// Inputs bundles the provider-backed data sources an Engine drives a
// simulation against (spec.md §2's provider surface).
type Inputs struct {
	Landscape  provider.LandscapeProvider
	Fuel       provider.FuelModel
	Ignitions  provider.IgnitionSource
	Vectors    provider.VectorSource
	Assets     provider.AssetSource
	GridOrigin geom.XyPoint
}

// TelemetryEvent is the reduced, stable event representation handed to
// EventObserver callbacks, decoupling external consumers from the internal
// bus's Event type.
type TelemetryEvent struct {
	Time     time.Time
	Category string
	Type     string
	Severity string
	Labels   map[string]string
	Fields   map[string]any
}

// EventObserver receives TelemetryEvent notifications registered via
// RegisterEventObserver.
type EventObserver func(ev TelemetryEvent)

// Snapshot is a unified, serialization-friendly view of engine state.
type Snapshot struct {
	StartedAt time.Time
	Uptime    time.Duration
	Status    Status
	NumSteps  int
	NumFires  int
	Time      wtime.Time
}

// Engine composes a configured Scenario with the supporting subsystems
// (cache, stop conditions, gusting, metrics, events, tracing) into the
// single entry point a caller constructs once per simulation run.
type Engine struct {
	mu sync.RWMutex

	cfg        Config
	scenario   *scenario.Scenario
	cache      *scenariocache.ScenarioCache
	bus        events.Bus
	metrics    metrics.Provider
	tracer     tracing.Tracer
	healthEval *health.Evaluator

	startedAt time.Time
	eventSub  events.Subscription

	eventObserversMu sync.RWMutex
	eventObservers   []EventObserver
}

// New validates cfg, wires the provider inputs into a scenario cache, and
// returns a ready-to-Step Engine over [start, end].
func New(cfg Config, in Inputs, start, end wtime.Time) (*Engine, error) {
	if r := cfg.Validate(); !r.OK() {
		return nil, validationError(r)
	}
	if !start.Before(end) {
		return nil, newError(BadTimes, "start must precede end")
	}

	mp := newMetricsProvider(cfg)
	bus := events.NewBus(mp)
	tracer := tracing.NewOTelTracer("firesim")

	transform := gridcache.NewTransform(in.GridOrigin, cfg.Topology.DistanceResolution)
	cache := scenariocache.New(in.Landscape, in.Fuel, in.Vectors, in.Assets, transform,
		cfg.Resources.ClosestPointCacheCapacity, cfg.Resources.WorkerCount, mp)

	stopSet := buildStopSet(cfg, start)
	gust := gusting.NewDisabled()

	sc := scenario.New(cfg, cache, in.Ignitions, stopSet, gust, bus, mp, start, end)
	sc.WithTracer(tracer)

	e := &Engine{
		cfg:       cfg,
		scenario:  sc,
		cache:     cache,
		bus:       bus,
		metrics:   mp,
		tracer:    tracer,
		startedAt: time.Now(),
	}
	landscapeProbe, cacheProbe, workerProbe := e.healthProbes()
	e.healthEval = health.NewEvaluator(2*time.Second, landscapeProbe, cacheProbe, workerProbe)
	e.bridgeEvents()
	return e, nil
}

// healthProbes returns the three domain probes HealthSnapshot rolls up:
// landscape-provider reachability, closest-point cache saturation, and
// scenario-cache worker-pool backlog.
func (e *Engine) healthProbes() (health.Probe, health.Probe, health.Probe) {
	landscapeProbe := health.ProbeFunc(func(ctx context.Context) (result health.ProbeResult) {
		if e.cache.Landscape == nil {
			return health.Unknown("landscape_provider", "no provider configured")
		}
		defer func() {
			if r := recover(); r != nil {
				result = health.Unhealthy("landscape_provider", "provider panicked")
			}
		}()
		if _, valid := e.cache.Landscape.Fuel(0, geom.XyPoint{}, e.scenario.CurrentTime()); !valid {
			return health.Degraded("landscape_provider", "fuel query invalid at grid origin")
		}
		return health.Healthy("landscape_provider")
	})

	cacheProbe := health.ProbeFunc(func(ctx context.Context) health.ProbeResult {
		capacity := e.cache.Closest.Capacity()
		if capacity == 0 {
			return health.Healthy("closest_point_cache")
		}
		fill := float64(e.cache.Closest.Len()) / float64(capacity)
		if fill >= 0.95 {
			return health.Degraded("closest_point_cache", "near capacity")
		}
		return health.Healthy("closest_point_cache")
	})

	workerProbe := health.ProbeFunc(func(ctx context.Context) health.ProbeResult {
		capacity := e.cache.WorkerCount()
		if capacity == 0 {
			return health.Unknown("worker_pool", "no workers configured")
		}
		if e.cache.InFlight() >= capacity {
			return health.Degraded("worker_pool", "all workers busy")
		}
		return health.Healthy("worker_pool")
	})

	return landscapeProbe, cacheProbe, workerProbe
}

func newMetricsProvider(cfg Config) metrics.Provider {
	if !cfg.MetricsEnabled {
		return metrics.NewNoopProvider()
	}
	switch cfg.MetricsBackend {
	case "otel":
		return metrics.NewOTelProvider(metrics.OTelProviderOptions{ServiceName: "firesim"})
	case "noop":
		return metrics.NewNoopProvider()
	default:
		return metrics.NewPrometheusProvider(metrics.PrometheusProviderOptions{})
	}
}

// buildStopSet translates Config.StopConditions into the Condition list
// internal/stopcondition drives Evaluate with, skipping any threshold left
// at its zero value (not configured).
func buildStopSet(cfg Config, earliestIgnition wtime.Time) *stopcondition.Set {
	sc := cfg.StopConditions
	var conditions []*stopcondition.Condition
	add := func(kind stopcondition.Kind, threshold float64) {
		if threshold == 0 {
			return
		}
		conditions = append(conditions, &stopcondition.Condition{Kind: kind, Threshold: threshold, Duration: sc.HoldDuration})
	}
	add(stopcondition.FI90, sc.FI90)
	add(stopcondition.FI95, sc.FI95)
	add(stopcondition.FI100, sc.FI100)
	add(stopcondition.RelativeHumidity, sc.RelativeHumidity)
	add(stopcondition.Precipitation, sc.Precipitation)
	add(stopcondition.Area, sc.Area)
	add(stopcondition.BurnDistance, sc.BurnDistance)

	return stopcondition.NewSet(conditions, sc.ResponseTime, earliestIgnition)
}

// Step advances the simulation to the next displayable boundary, which may
// take several internal ScenarioTimeSteps. See internal/scenario.Step for
// the admit/advance/unoverlap/stats phases this drives.
func (e *Engine) Step(ctx context.Context) Status {
	return e.scenario.Step(ctx)
}

// StepBack discards the trailing non-displayable ScenarioTimeSteps and one
// displayable step, restoring the active fires saved on the new last step.
func (e *Engine) StepBack() {
	e.scenario.StepBack()
}

// Clear resets the simulation to its configured start time.
func (e *Engine) Clear() {
	e.scenario.Clear()
}

// CurrentTime returns the simulation time of the most recent Step.
func (e *Engine) CurrentTime() wtime.Time {
	return e.scenario.CurrentTime()
}

// NumSteps returns how many ScenarioTimeSteps have been taken.
func (e *Engine) NumSteps() int {
	return e.scenario.NumSteps()
}

// NumFires returns the count of currently active fires.
func (e *Engine) NumFires() int {
	return e.scenario.NumFires()
}

// PointBurned reports whether pt lies within any fire's perimeter at t.
func (e *Engine) PointBurned(pt geom.XyPoint, t wtime.Time) bool {
	return e.scenario.PointBurned(pt, t)
}

// BurningBox returns the bounding box of every active fire at t.
func (e *Engine) BurningBox(t wtime.Time) geom.Rect {
	return e.scenario.BurningBox(t)
}

// GetStats answers spec.md §4.6's interpolated stat query against the
// nearest displayable step at or before t.
func (e *Engine) GetStats(pt geom.XyPoint, t wtime.Time, technique Technique, stat StatID) (float64, bool) {
	return e.scenario.GetStats(pt, t, technique, stat)
}

// CriticalPath traces an asset arrival's closest fire point back to its
// vertex's origin (spec.md §4.7).
func (e *Engine) CriticalPath(arrival AssetArrival) []CriticalPathVertex {
	return e.scenario.CriticalPath(arrival)
}

// HealthSnapshot evaluates (or returns the cached) health rollup.
func (e *Engine) HealthSnapshot(ctx context.Context) health.Snapshot {
	return e.healthEval.Evaluate(ctx)
}

// Snapshot returns a unified, read-only view of engine state.
func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		StartedAt: e.startedAt,
		Uptime:    time.Since(e.startedAt),
		NumSteps:  e.scenario.NumSteps(),
		NumFires:  e.scenario.NumFires(),
		Time:      e.scenario.CurrentTime(),
	}
}

// RegisterEventObserver adds obs to the set notified on every bridged
// lifecycle event. Safe for concurrent use; nil is ignored.
func (e *Engine) RegisterEventObserver(obs EventObserver) {
	if obs == nil {
		return
	}
	e.eventObserversMu.Lock()
	e.eventObservers = append(e.eventObservers, obs)
	e.eventObserversMu.Unlock()
}

// bridgeEvents subscribes to the internal bus and fans every event out to
// the registered EventObservers, translating events.Event into the public
// TelemetryEvent shape.
func (e *Engine) bridgeEvents() {
	sub, err := e.bus.Subscribe(64)
	if err != nil {
		return
	}
	e.eventSub = sub
	go func() {
		for ev := range sub.C() {
			e.dispatchEvent(ev)
		}
	}()
}

func (e *Engine) dispatchEvent(ev events.Event) {
	e.eventObserversMu.RLock()
	if len(e.eventObservers) == 0 {
		e.eventObserversMu.RUnlock()
		return
	}
	observers := append([]EventObserver(nil), e.eventObservers...)
	e.eventObserversMu.RUnlock()

	pub := TelemetryEvent{
		Time:     ev.Time,
		Category: ev.Category,
		Type:     ev.Type,
		Severity: ev.Severity,
		Labels:   ev.Labels,
		Fields:   ev.Fields,
	}
	for _, o := range observers {
		func() {
			defer func() { _ = recover() }()
			o(pub)
		}()
	}
}

// Stop releases the engine's event subscription. Idempotent.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.eventSub == nil {
		return nil
	}
	err := e.bus.Unsubscribe(e.eventSub)
	e.eventSub = nil
	return err
}
