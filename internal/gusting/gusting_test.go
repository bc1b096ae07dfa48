package gusting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wise-sim/firesim/internal/wtime"
)

func at(hour int) wtime.Time {
	return wtime.New(time.Date(2026, 7, 30, hour, 0, 0, 0, time.UTC), time.UTC)
}

func TestDisabledAlwaysZero(t *testing.T) {
	m := NewDisabled()
	assert.Equal(t, 0.0, m.Percent(at(12)))
}

func TestConstant(t *testing.T) {
	m := NewConstant(0.2)
	assert.Equal(t, 0.2, m.Percent(at(0)))
	assert.Equal(t, 0.2, m.Percent(at(23)))
}

func TestTimeOfDayPeaks(t *testing.T) {
	m := NewTimeOfDay(0.1, 0.1, 14)
	peak := m.Percent(at(14))
	trough := m.Percent(at(2))
	assert.InDelta(t, 0.2, peak, 1e-9)
	assert.Less(t, trough, peak)
}

func TestSequenceStepsForward(t *testing.T) {
	m := NewSequence([]Transition{
		{At: at(6), Percent: 0.1},
		{At: at(12), Percent: 0.3},
	})
	assert.Equal(t, 0.0, m.Percent(at(3)))
	assert.Equal(t, 0.1, m.Percent(at(8)))
	assert.Equal(t, 0.3, m.Percent(at(18)))
}

func TestSequenceNextTransition(t *testing.T) {
	transitions := []Transition{
		{At: at(6), Percent: 0.1},
		{At: at(12), Percent: 0.3},
	}
	m := NewSequence(transitions)
	next, ok := m.NextTransition(at(3))
	assert.True(t, ok)
	assert.True(t, next.Equal(at(6)))

	_, ok = m.NextTransition(at(13))
	assert.False(t, ok)
}
