// Package stopcondition implements the latched end-of-simulation thresholds:
// fire intensity percentiles, relative humidity, precipitation, area, and
// maximum burn distance.
package stopcondition

import "github.com/wise-sim/firesim/internal/wtime"

// Kind identifies which threshold a Condition evaluates.
type Kind int

const (
	FI90 Kind = iota
	FI95
	FI100
	RelativeHumidity
	Precipitation
	Area
	BurnDistance
)

// String renders the kind the way exit-status codes name it
// ("complete-by-FI90" etc.), per spec.md §6.
func (k Kind) String() string {
	switch k {
	case FI90:
		return "FI90"
	case FI95:
		return "FI95"
	case FI100:
		return "FI100"
	case RelativeHumidity:
		return "RH"
	case Precipitation:
		return "precip"
	case Area:
		return "area"
	case BurnDistance:
		return "burn distance"
	default:
		return "unknown"
	}
}

// Condition is one configured threshold: Kind crossing Threshold for at
// least Duration before it can end the simulation.
type Condition struct {
	Kind       Kind
	Threshold  float64
	Duration  wtime.Span
	heldSince wtime.Time
	holding   bool
}

// Set is the full collection of configured conditions plus the response
// delay (spec.md §4.8: "response_time applies from the earliest ignition").
type Set struct {
	Conditions   []*Condition
	ResponseTime wtime.Span
	earliestIgn  wtime.Time
}

// NewSet constructs a Set with the given conditions and response delay,
// measured from earliestIgnition.
func NewSet(conditions []*Condition, responseTime wtime.Span, earliestIgnition wtime.Time) *Set {
	return &Set{Conditions: conditions, ResponseTime: responseTime, earliestIgn: earliestIgnition}
}

// Sample is the per-step aggregate the caller computes once and passes to
// Evaluate for every condition.
type Sample struct {
	Time wtime.Time

	// FractionAtOrAbove reports whether at least the given percentile
	// (a fraction) of perimeter vertices has fire intensity meeting or
	// exceeding thresholdKW; the FI90/95/100 conditions each pass their own
	// percentile.
	FractionAtOrAbove func(thresholdKW float64, percentile float64) bool

	RelativeHumidity float64
	CumulativePrecip float64
	TotalArea        float64
	MaxBurnDistance  float64
	InBurningPeriod  bool
}

// percentileFor maps a Kind to the perimeter-coverage fraction required,
// per spec.md §4.8 ("FI >= X for duration D on >=90/95/100% of perimeter
// points").
func percentileFor(k Kind) float64 {
	switch k {
	case FI90:
		return 0.90
	case FI95:
		return 0.95
	case FI100:
		return 1.0
	default:
		return 0
	}
}

// Evaluate updates the condition's latch for the current sample and
// reports whether it has now held continuously for Duration. It returns
// false unconditionally before the response delay has elapsed.
func (c *Condition) Evaluate(s Sample, responseTime wtime.Span, earliestIgnition wtime.Time) bool {
	if s.Time.Sub(earliestIgnition) < responseTime {
		return false
	}

	met := c.metAt(s)
	if !met || !s.InBurningPeriod {
		c.holding = false
		return false
	}
	if !c.holding {
		c.holding = true
		c.heldSince = s.Time
	}
	return s.Time.Sub(c.heldSince) >= c.Duration
}

func (c *Condition) metAt(s Sample) bool {
	switch c.Kind {
	case FI90, FI95, FI100:
		if s.FractionAtOrAbove == nil {
			return false
		}
		return s.FractionAtOrAbove(c.Threshold, percentileFor(c.Kind))
	case RelativeHumidity:
		return s.RelativeHumidity <= c.Threshold
	case Precipitation:
		return s.CumulativePrecip >= c.Threshold
	case Area:
		return s.TotalArea >= c.Threshold
	case BurnDistance:
		return s.MaxBurnDistance >= c.Threshold
	default:
		return false
	}
}

// Evaluate runs every configured condition against the sample and returns
// the first one whose latch has now tripped (nil if none has).
func (set *Set) Evaluate(s Sample) *Condition {
	for _, c := range set.Conditions {
		if c.Evaluate(s, set.ResponseTime, set.earliestIgn) {
			return c
		}
	}
	return nil
}

// Reset clears every condition's latch, used on step-back (spec.md §9:
// "Caches ... must be drained ... on step-back").
func (set *Set) Reset() {
	for _, c := range set.Conditions {
		c.holding = false
	}
}
