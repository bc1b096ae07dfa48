// Package scenariocache holds the state shared across every
// ScenarioTimeStep of one simulation run: fuel/non-fuel queries against
// the LandscapeProvider, the enumerated static vector breaks and assets
// (built once, in internal coordinates, bounding-boxed), the
// coordinate/closest-point cache, and the worker pool data-parallel
// vertex growth fans out across (spec.md §3 "ScenarioCache").
package scenariocache

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/gridcache"
	"github.com/wise-sim/firesim/internal/telemetry/metrics"
	"github.com/wise-sim/firesim/internal/wtime"
	"github.com/wise-sim/firesim/provider"
)

// StaticBreak is a vector-break polygon bound once for the whole
// simulation, in internal coordinates, bounding-boxed for cheap
// rejection during per-fire tracking.
type StaticBreak struct {
	Set, Index int
	Geometry   geom.Poly
	BBox       geom.Rect
}

// Asset is an enumerated target geometry bound once for the whole
// simulation (spec.md §4.8).
type Asset struct {
	Index    int
	Kind     provider.AssetType
	Geometry geom.Poly
	BBox     geom.Rect
}

// ScenarioCache is built once per simulation and shared, read-only after
// construction, by every ScenarioTimeStep.
type ScenarioCache struct {
	Landscape   provider.LandscapeProvider
	Fuel        provider.FuelModel
	Vectors     provider.VectorSource
	AssetSource provider.AssetSource

	Transform gridcache.Transform
	Closest   *gridcache.ClosestPointCache

	staticBreaksBuilt bool
	StaticBreaks      []StaticBreak

	assetsBuilt bool
	Assets      []Asset

	sem         *semaphore.Weighted
	workerCount int
	inFlight    int64

	metrics  metrics.Provider
	mWorkers metrics.Gauge
}

// New builds a cache with a worker pool sized workerCount and a
// closest-point cache sized cacheCapacity.
func New(landscape provider.LandscapeProvider, fuel provider.FuelModel, vectors provider.VectorSource, assets provider.AssetSource, transform gridcache.Transform, cacheCapacity, workerCount int, mp metrics.Provider) *ScenarioCache {
	if mp == nil {
		mp = metrics.NewNoopProvider()
	}
	if workerCount < 1 {
		workerCount = 1
	}
	sc := &ScenarioCache{
		Landscape:   landscape,
		Fuel:        fuel,
		Vectors:     vectors,
		AssetSource: assets,
		Transform:   transform,
		Closest:     gridcache.NewClosestPointCache(cacheCapacity),
		sem:         semaphore.NewWeighted(int64(workerCount)),
		workerCount: workerCount,
		metrics:     mp,
	}
	sc.mWorkers = mp.NewGauge(metrics.GaugeOpts{CommonOpts: metrics.CommonOpts{
		Namespace: metrics.NamespaceFiresim, Subsystem: metrics.SubsystemCache, Name: "workers_in_flight",
	}})
	return sc
}

// BuildStaticBreaks enumerates every static vector-break polygon once, in
// internal coordinates (spec.md §4.6 step 2: "if no static breaks/assets
// yet materialised, build them"). Calling it again is a no-op. at is the
// simulation time the enumeration is bound at; dynamic breaks are
// re-queried by the caller on their own event schedule, not cached here.
func (sc *ScenarioCache) BuildStaticBreaks(at wtime.Time) {
	if sc.staticBreaksBuilt || sc.Vectors == nil {
		sc.staticBreaksBuilt = true
		return
	}
	for set := 0; set < sc.Vectors.SetCount(); set++ {
		for idx := 0; idx < sc.Vectors.BreakCount(set); idx++ {
			poly := sc.Vectors.Break(set, idx, at)
			ring := make(geom.Poly, len(poly))
			for i, p := range poly {
				ring[i] = sc.Transform.ToInternal(p)
			}
			sc.StaticBreaks = append(sc.StaticBreaks, StaticBreak{
				Set: set, Index: idx, Geometry: ring, BBox: ring.BoundingBox(),
			})
		}
	}
	sc.staticBreaksBuilt = true
}

// FuelPermits reports whether a vertex's already-resolved fuel handle
// allows growth at all (spec.md §4.2's `CanBurn` hook on ScenarioFire).
func (sc *ScenarioCache) FuelPermits(handle provider.FuelHandle) bool {
	if sc.Fuel == nil {
		return true
	}
	return !sc.Fuel.IsNonFuel(handle)
}

// CanBurn is the burning-period gate consulted on every vertex growth
// after FBP values are computed (spec.md §6 BURNINGCONDITION_* attributes,
// SPEC_FULL.md §6): if the landscape's configured RH/wind-speed/FWI/ISI
// thresholds or burning-period window reject the current conditions at pt,
// the caller zeroes ellipse_ros and forces ros_ratio to 1 rather than
// advancing the vertex.
func (sc *ScenarioCache) CanBurn(t wtime.Time, centroid, pt geom.XyPoint, rh, windSpeed, fwi, isi float64) bool {
	if sc.Landscape == nil {
		return true
	}
	if minRH, ok := sc.floatAttr(pt, t, provider.AttrBurningConditionMinRH); ok && rh < minRH {
		return false
	}
	if maxWS, ok := sc.floatAttr(pt, t, provider.AttrBurningConditionMaxWS); ok && windSpeed > maxWS {
		return false
	}
	if minFWI, ok := sc.floatAttr(pt, t, provider.AttrBurningConditionMinFWI); ok && fwi < minFWI {
		return false
	}
	if minISI, ok := sc.floatAttr(pt, t, provider.AttrBurningConditionMinISI); ok && isi < minISI {
		return false
	}
	start, hasStart := sc.floatAttr(pt, t, provider.AttrBurningConditionPeriodStart)
	end, hasEnd := sc.floatAttr(pt, t, provider.AttrBurningConditionPeriodEnd)
	if hasStart && hasEnd && !withinBurningPeriod(t, start, end) {
		return false
	}
	return true
}

func (sc *ScenarioCache) floatAttr(pt geom.XyPoint, t wtime.Time, id provider.AttrID) (float64, bool) {
	v, ok := sc.Landscape.Attribute(0, pt, t, 0, id, provider.InterpFlags{})
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// withinBurningPeriod reports whether t's hour-of-day falls in
// [startHour, endHour), wrapping past midnight when startHour > endHour
// (an overnight burning-period window).
func withinBurningPeriod(t wtime.Time, startHour, endHour float64) bool {
	hour := float64(t.TimeOfDay()) / float64(time.Hour)
	if startHour <= endHour {
		return hour >= startHour && hour < endHour
	}
	return hour >= startHour || hour < endHour
}

// GrowVertices runs fn for every element of vertices concurrently, capped
// at the cache's configured worker count, and returns the first error (if
// any) after all goroutines complete (spec.md's OMP fork-join becoming a
// work-stealing pool, per REDESIGN FLAGS).
func (sc *ScenarioCache) GrowVertices(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		i := i
		if err := sc.sem.Acquire(groupCtx, 1); err != nil {
			return err
		}
		sc.mWorkers.Add(1)
		atomic.AddInt64(&sc.inFlight, 1)
		group.Go(func() error {
			defer sc.sem.Release(1)
			defer sc.mWorkers.Add(-1)
			defer atomic.AddInt64(&sc.inFlight, -1)
			return fn(groupCtx, i)
		})
	}
	return group.Wait()
}

// WorkerCount reports the configured worker pool capacity GrowVertices fans
// out across.
func (sc *ScenarioCache) WorkerCount() int {
	return sc.workerCount
}

// InFlight reports how many GrowVertices goroutines are currently running,
// for the engine's worker-pool backlog health probe.
func (sc *ScenarioCache) InFlight() int {
	return int(atomic.LoadInt64(&sc.inFlight))
}

// BuildAssets enumerates every asset geometry once, in internal
// coordinates. Calling it again is a no-op.
func (sc *ScenarioCache) BuildAssets() {
	if sc.assetsBuilt || sc.AssetSource == nil {
		sc.assetsBuilt = true
		return
	}
	for idx := 0; idx < sc.AssetSource.Count(); idx++ {
		kind, geometry := sc.AssetSource.Asset(idx)
		ring := make(geom.Poly, len(geometry))
		for i, p := range geometry {
			ring[i] = sc.Transform.ToInternal(p)
		}
		sc.Assets = append(sc.Assets, Asset{Index: idx, Kind: kind, Geometry: ring, BBox: ring.BoundingBox()})
	}
	sc.assetsBuilt = true
}
