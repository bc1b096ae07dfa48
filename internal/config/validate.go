package config

import "fmt"

// FieldError names one invalid field and why.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string { return fmt.Sprintf("%s: %s", e.Field, e.Reason) }

// ValidationResult aggregates every FieldError found in one Validate
// call, rather than aborting on the first (spec.md §7: "input validation
// happens once … emitting a structured validation tree").
type ValidationResult struct {
	Errors []*FieldError
}

func (r *ValidationResult) add(field, reason string) {
	r.Errors = append(r.Errors, &FieldError{Field: field, Reason: reason})
}

// OK reports whether no field errors were collected.
func (r *ValidationResult) OK() bool { return len(r.Errors) == 0 }

func (r *ValidationResult) Error() string {
	if r.OK() {
		return ""
	}
	msg := fmt.Sprintf("%d invalid field(s)", len(r.Errors))
	for _, e := range r.Errors {
		msg += "; " + e.Error()
	}
	return msg
}

func positive(r *ValidationResult, field string, v float64) {
	if v <= 0 {
		r.add(field, "must be > 0")
	}
}

func nonNegative(r *ValidationResult, field string, v float64) {
	if v < 0 {
		r.add(field, "must be >= 0")
	}
}

func fraction(r *ValidationResult, field string, v float64) {
	if v < 0 || v > 1 {
		r.add(field, "must be within [0, 1]")
	}
}

// Validate checks every field, returning a *ValidationResult populated
// with every violation found (never stops at the first).
func (c Config) Validate() *ValidationResult {
	r := &ValidationResult{}

	positive(r, "topology.distance_resolution", c.Topology.DistanceResolution)
	positive(r, "topology.perimeter_resolution", c.Topology.PerimeterResolution)
	positive(r, "topology.perimeter_spacing", c.Topology.PerimeterSpacing)
	if c.Topology.InitialVertexCount < 3 {
		r.add("topology.initial_vertex_count", "must be >= 3 (a polygon needs at least 3 vertices)")
	}

	fraction(r, "weather.growth_percentile", c.Weather.GrowthPercentile)
	if c.Weather.OverrideWindDirection >= 0 && (c.Weather.OverrideWindDirection > 2*3.14159265358979) {
		r.add("weather.owd", "must be within [0, 2pi) when set")
	}

	if c.Breaching.Allowed {
		positive(r, "breaching.flame_length_multiplier", c.Breaching.FlameLengthMultiplier)
	}

	nonNegative(r, "acceleration.minimum_ros", c.Acceleration.MinimumROS)
	positive(r, "acceleration.spatial_threshold", c.Acceleration.SpatialThreshold)
	if c.Acceleration.DisplayInterval <= 0 {
		r.add("acceleration.display_interval", "must be > 0")
	}

	if c.Resources.WorkerCount < 1 {
		r.add("resources.worker_count", "must be >= 1")
	}
	if c.Resources.ClosestPointCacheCapacity < 1 {
		r.add("resources.closest_point_cache_capacity", "must be >= 1")
	}

	nonNegative(r, "stop_conditions.fi_90", c.StopConditions.FI90)
	nonNegative(r, "stop_conditions.fi_95", c.StopConditions.FI95)
	nonNegative(r, "stop_conditions.fi_100", c.StopConditions.FI100)
	if c.StopConditions.HoldDuration < 0 {
		r.add("stop_conditions.hold_duration", "must be >= 0")
	}

	switch c.MetricsBackend {
	case "", "prom", "otel", "noop":
	default:
		r.add("metrics_backend", "must be one of prom, otel, noop")
	}

	return r
}
