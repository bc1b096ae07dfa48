// Package gusting implements the per-fire, per-timestep gust percentage
// applied on top of the landscape's sustained wind speed.
package gusting

import (
	"math"

	"github.com/wise-sim/firesim/internal/wtime"
)

// Mode selects how gust percentage varies over time.
type Mode int

const (
	// Disabled applies no gust adjustment; Percent always returns 0.
	Disabled Mode = iota
	// Constant applies a single fixed percentage for the whole simulation.
	Constant
	// TimeOfDay varies the percentage by a sinusoid peaking at PeakHour.
	TimeOfDay
	// Sequence steps through an explicit, time-ordered list of (time,
	// percent) transitions.
	Sequence
)

// Transition is one entry of a Sequence model: the gust percentage in
// effect from At onward, until the next transition.
type Transition struct {
	At      wtime.Time
	Percent float64
}

// Model computes the gust percentage in effect at a given simulation time.
// It is stateless except for Sequence's cached cursor, which moves forward
// or back to the transition in effect at the queried time.
type Model struct {
	mode Mode

	constantPercent float64

	peakHour   float64 // 0-24
	amplitude  float64
	baseline   float64

	transitions []Transition
	cursor      int
}

// NewDisabled returns a Model that never perturbs wind speed.
func NewDisabled() *Model { return &Model{mode: Disabled} }

// NewConstant returns a Model applying a fixed gust percentage.
func NewConstant(percent float64) *Model {
	return &Model{mode: Constant, constantPercent: percent}
}

// NewTimeOfDay returns a Model whose gust percentage follows a sinusoid of
// the given baseline and amplitude, peaking at peakHour (0-24, local time).
func NewTimeOfDay(baseline, amplitude, peakHour float64) *Model {
	return &Model{mode: TimeOfDay, baseline: baseline, amplitude: amplitude, peakHour: peakHour}
}

// NewSequence returns a Model stepping through an explicit, time-ordered
// transition list. transitions must be sorted ascending by At; behaviour
// before the first transition is 0%.
func NewSequence(transitions []Transition) *Model {
	return &Model{mode: Sequence, transitions: transitions}
}

// Percent returns the gust percentage in effect at t, as a fraction added to
// sustained wind speed (e.g. 0.15 means +15%).
func (m *Model) Percent(t wtime.Time) float64 {
	switch m.mode {
	case Disabled:
		return 0
	case Constant:
		return m.constantPercent
	case TimeOfDay:
		hours := t.TimeOfDay().Hours()
		phase := (hours - m.peakHour) / 24 * 2 * math.Pi
		return m.baseline + m.amplitude*math.Cos(phase)
	case Sequence:
		return m.percentFromSequence(t)
	default:
		return 0
	}
}

func (m *Model) percentFromSequence(t wtime.Time) float64 {
	if len(m.transitions) == 0 {
		return 0
	}
	for m.cursor > 0 && m.transitions[m.cursor].At.After(t) {
		m.cursor--
	}
	for m.cursor < len(m.transitions)-1 && !m.transitions[m.cursor+1].At.After(t) {
		m.cursor++
	}
	if m.transitions[m.cursor].At.After(t) {
		return 0
	}
	return m.transitions[m.cursor].Percent
}

// NextTransition returns the next time strictly after t at which the gust
// percentage changes, and whether one exists. Used by the event scheduler
// (spec.md §4.5 step 5) to shrink the tentative step end.
func (m *Model) NextTransition(t wtime.Time) (wtime.Time, bool) {
	switch m.mode {
	case Sequence:
		for _, tr := range m.transitions {
			if tr.At.After(t) {
				return tr.At, true
			}
		}
		return wtime.Time{}, false
	case TimeOfDay:
		// The sinusoid has no discrete transition; the scheduler samples it
		// continuously via Percent instead of stepping to an event.
		return wtime.Time{}, false
	default:
		return wtime.Time{}, false
	}
}
