// Package activefire implements ActiveFire, the scheduler's view of "one
// independent fire": a cluster ring of ScenarioFire heads sharing an
// adaptively-chosen end time, and the proximity-driven merge that attaches
// a newly-close fire to an existing cluster (spec.md §4.5).
package activefire

import (
	"time"

	"github.com/google/uuid"

	"github.com/wise-sim/firesim/internal/geom"
	"github.com/wise-sim/firesim/internal/scenariofire"
	"github.com/wise-sim/firesim/internal/wtime"
)

// ActiveFire is one member of a cluster ring. ScenarioFire is nil once the
// fire it tracks has been fully consumed (area reaches zero).
type ActiveFire struct {
	ID           uuid.UUID
	ScenarioFire *scenariofire.ScenarioFire
	StartTime    wtime.Time
	EndTime      wtime.Time
	BBox         geom.Rect
	Advanced     bool
	MinROSRatio  float64 // minimum FBPROSRatio across this fire's vertices as of its last grown step

	cluster *cluster
}

// cluster is the shared ring state every member of a merged group points
// at; spec.md §3 requires all ring members to share one end_time once
// merged.
type cluster struct {
	members []*ActiveFire
	endTime wtime.Time
}

// New creates a fire as its own singleton cluster.
func New(sf *scenariofire.ScenarioFire, start wtime.Time) *ActiveFire {
	af := &ActiveFire{ID: uuid.New(), ScenarioFire: sf, StartTime: start, EndTime: start, MinROSRatio: 1}
	af.cluster = &cluster{members: []*ActiveFire{af}, endTime: start}
	return af
}

// Cluster returns every ActiveFire currently ring-linked with af, af
// included.
func (af *ActiveFire) Cluster() []*ActiveFire {
	out := make([]*ActiveFire, len(af.cluster.members))
	copy(out, af.cluster.members)
	return out
}

// SharesClusterWith reports whether af and other are already ring-mates.
func (af *ActiveFire) SharesClusterWith(other *ActiveFire) bool {
	return af.cluster == other.cluster
}

// MergeInto attaches af's cluster to other's, so every member of both
// clusters shares one ring and one end time going forward. The combined
// end time is the earlier of the two, so neither fire's already-scheduled
// recomputation is pushed out by the merge.
func (af *ActiveFire) MergeInto(other *ActiveFire) {
	if af.cluster == other.cluster {
		return
	}
	endTime := other.cluster.endTime
	if af.cluster.endTime.Before(endTime) {
		endTime = af.cluster.endTime
	}
	merged := &cluster{endTime: endTime}
	merged.members = append(merged.members, af.cluster.members...)
	merged.members = append(merged.members, other.cluster.members...)
	for _, m := range merged.members {
		m.cluster = merged
		m.EndTime = endTime
	}
}

// EndTimeParams is the per-fire input to CalculateEndTime (spec.md §4.5).
type EndTimeParams struct {
	MaxROS                        float64 // already cardinal-adjusted by the caller if CARDINAL_ROS is set
	MinimumROS                    float64
	MinROSRatio                   float64 // the minimum FBPROSRatio across this fire's vertices (acceleration phase indicator)
	InBurningPeriod               bool
	TemporalThresholdAcceleration wtime.Span // default 2min; a negative value means "use 1h" per spec.md's -1 convention
	SpatialThreshold               float64    // may vary with fire area; caller resolves that before calling
}

const (
	defaultAccelerationThreshold = 2 * time.Minute
	oneHour                      = time.Hour
)

// spatialDT converts "spatialThreshold / maxROS * 60s" (ROS in metres/min)
// into a time.Duration.
func spatialDT(spatialThreshold, maxROS float64) wtime.Span {
	if maxROS <= 0 {
		return oneHour
	}
	seconds := spatialThreshold / maxROS * 60
	return time.Duration(seconds * float64(time.Second))
}

// CalculateEndTime computes the adaptive recomputation interval for af, per
// spec.md §4.5's three-branch rule, and advances af.EndTime from "from".
func (af *ActiveFire) CalculateEndTime(from wtime.Time, p EndTimeParams) wtime.Time {
	accel := p.TemporalThresholdAcceleration
	if accel < 0 {
		accel = oneHour
	} else if accel == 0 {
		accel = defaultAccelerationThreshold
	}

	var dt wtime.Span
	switch {
	case p.MaxROS < p.MinimumROS || !p.InBurningPeriod:
		dt = accel
	case p.MinROSRatio < 0.9:
		dt = accel
		if spatial := spatialDT(p.SpatialThreshold, p.MaxROS); spatial < dt {
			dt = spatial
		}
	default:
		dt = oneHour
		if spatial := spatialDT(p.SpatialThreshold, p.MaxROS); spatial < dt {
			dt = spatial
		}
	}
	if dt < 0 {
		dt = 0
	}
	af.EndTime = from.Add(dt)
	af.cluster.endTime = af.EndTime
	return af.EndTime
}

// NearAdvanced reports whether af (not yet advanced this step) lies within
// threshold*2 of other (already advanced), first by a cheap bounding-box
// test and then by an exact polygon-vertex distance test, matching spec.md
// §4.5's merge-by-proximity two-stage test.
func NearAdvanced(candidate, advanced *ActiveFire, threshold float64) bool {
	if candidate.ScenarioFire == nil || advanced.ScenarioFire == nil {
		return false
	}
	expanded := advanced.BBox.Expanded(threshold * 2)
	if !expanded.Intersects(candidate.BBox) {
		return false
	}
	limit := threshold * 2
	for _, f := range candidate.ScenarioFire.AllPoints() {
		for _, g := range advanced.ScenarioFire.AllPoints() {
			if f.Pos.Dist(g.Pos) <= limit {
				return true
			}
		}
	}
	return false
}

// MergeByProximity implements spec.md §4.5's INDEPENDENT_TIMESTEPS pass:
// every un-advanced fire within threshold*2 of an already-advanced one
// joins that fire's cluster and is stamped Advanced so it shares this
// step's time.
func MergeByProximity(fires []*ActiveFire, threshold float64) {
	advanced := make([]*ActiveFire, 0, len(fires))
	for _, f := range fires {
		if f.Advanced {
			advanced = append(advanced, f)
		}
	}
	for _, candidate := range fires {
		if candidate.Advanced {
			continue
		}
		for _, adv := range advanced {
			if candidate.SharesClusterWith(adv) {
				continue
			}
			if NearAdvanced(candidate, adv, threshold) {
				candidate.MergeInto(adv)
				candidate.Advanced = true
				advanced = append(advanced, candidate)
				break
			}
		}
	}
}
