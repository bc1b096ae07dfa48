// Package config is the validated configuration surface for the
// simulation facade: a flat, grouped struct mirroring the teacher's own
// Config/Validate split, plus the numeric-option list spec.md §6 requires
// (resolutions, thresholds, offsets, percentiles).
package config

import "time"

// Config is the top-level scenario configuration.
type Config struct {
	Topology    Topology
	Weather     Weather
	Breaching   Breaching
	Spotting    Spotting
	Acceleration Acceleration
	Resources   Resources
	StopConditions StopConditions

	// MetricsEnabled toggles provider wiring (Prometheus export) when true;
	// default false to keep a bare Scenario footprint small.
	MetricsEnabled bool
	// MetricsBackend selects the implementation when MetricsEnabled is
	// true: "prom" (default), "otel", or "noop".
	MetricsBackend string
}

// Topology controls the coordinate transform and perimeter densification
// (spec.md §6 "distance/perimeter resolution, perimeter spacing").
type Topology struct {
	DistanceResolution   float64 `yaml:"distance_resolution"`
	PerimeterResolution  float64 `yaml:"perimeter_resolution"`
	PerimeterSpacing     float64 `yaml:"perimeter_spacing"`
	InitialVertexCount   int     `yaml:"initial_vertex_count"`
	SuppressTightConcave bool    `yaml:"suppress_tight_concave"`
}

// Weather controls wind-direction/velocity offsets and FMC defaults
// (spec.md §6's dx/dy/dt/dwd/dvd/owd/ovd family).
type Weather struct {
	DX                  float64 `yaml:"dx"`
	DY                  float64 `yaml:"dy"`
	DT                  float64 `yaml:"dt"`
	DeltaWindDirection  float64 `yaml:"dwd"`
	DeltaWindVelocity   float64 `yaml:"dvd"`
	OverrideWindDirection float64 `yaml:"owd"` // negative => unset
	OverrideWindVelocity  float64 `yaml:"ovd"` // negative => unset
	SpecifiedFMC          float64 `yaml:"specified_fmc"` // 0 => use landscape-derived FMC
	DefaultElevation       float64 `yaml:"default_elevation"`
	GrowthPercentile       float64 `yaml:"growth_percentile"` // 0..1, 0 => deterministic
}

// Breaching controls how far a fire may burn through non-fuel or a vector
// break before it is forced to stop (spec.md §4.3.3/4.3.4).
type Breaching struct {
	Allowed              bool    `yaml:"allowed"`
	FlameLengthMultiplier float64 `yaml:"flame_length_multiplier"` // default 1.5
}

// Spotting is reserved for the ember-spotting extension flagged in
// original_source/ but out of scope for this module's core loop; kept as
// a typed, always-disabled placeholder so a future implementation has a
// config home without a breaking change.
type Spotting struct {
	Enabled bool `yaml:"enabled"`
}

// Acceleration bounds the adaptive timestep (spec.md §4.5).
type Acceleration struct {
	MinimumROS                    float64       `yaml:"minimum_ros"`
	TemporalThresholdAcceleration time.Duration `yaml:"temporal_threshold_acceleration"` // 0 => 2min default, <0 => 1h
	SpatialThreshold               float64       `yaml:"spatial_threshold"`
	CardinalROS                    bool          `yaml:"cardinal_ros"`
	DisplayInterval                time.Duration `yaml:"display_interval"`
}

// Resources bounds the worker pool and closest-point cache (spec.md §4.1/
// §4.6, SPEC_FULL.md's data-parallel vertex-growth fan-out).
type Resources struct {
	WorkerCount        int `yaml:"worker_count"`
	ClosestPointCacheCapacity int `yaml:"closest_point_cache_capacity"`
}

// StopConditions is the declarative threshold list consumed by
// internal/stopcondition.
type StopConditions struct {
	ResponseTime          time.Duration `yaml:"response_time"`
	FI90                   float64       `yaml:"fi_90"`
	FI95                   float64       `yaml:"fi_95"`
	FI100                  float64       `yaml:"fi_100"`
	RelativeHumidity       float64       `yaml:"relative_humidity"`
	Precipitation          float64       `yaml:"precipitation"`
	Area                   float64       `yaml:"area"`
	BurnDistance           float64       `yaml:"burn_distance"`
	HoldDuration           time.Duration `yaml:"hold_duration"`
}

// Defaults returns a Config with the same conservative-default philosophy
// as the teacher's Defaults(): every threshold set, nothing left at a
// silently-invalid zero value.
func Defaults() Config {
	return Config{
		Topology: Topology{
			DistanceResolution:  1,
			PerimeterResolution: 10,
			PerimeterSpacing:    1,
			InitialVertexCount:  16,
		},
		Weather: Weather{
			OverrideWindDirection: -1,
			OverrideWindVelocity:  -1,
			DefaultElevation:      -1,
		},
		Breaching: Breaching{
			Allowed:               true,
			FlameLengthMultiplier: 1.5,
		},
		Acceleration: Acceleration{
			MinimumROS:                    0.0001,
			TemporalThresholdAcceleration: 2 * time.Minute,
			SpatialThreshold:              5,
			DisplayInterval:               time.Hour,
		},
		Resources: Resources{
			WorkerCount:               4,
			ClosestPointCacheCapacity: 1024,
		},
		StopConditions: StopConditions{
			HoldDuration: time.Minute,
		},
		MetricsBackend: "prom",
	}
}
