package wtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewPurgesSubSecond(t *testing.T) {
	in := time.Date(2026, 7, 30, 12, 0, 0, 500_000_000, time.UTC)
	got := New(in, nil)
	assert.Equal(t, 0, got.Std().Nanosecond())
}

func TestBeforeAfterEqual(t *testing.T) {
	a := New(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC), nil)
	b := New(time.Date(2026, 7, 30, 13, 0, 0, 0, time.UTC), nil)
	assert.True(t, a.Before(b))
	assert.True(t, b.After(a))
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(a))
}

func TestAddRepurges(t *testing.T) {
	a := New(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC), nil)
	got := a.Add(90 * time.Second)
	assert.Equal(t, 1, got.Std().Minute()-a.Std().Minute())
}

func TestMinMax(t *testing.T) {
	a := New(time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC), nil)
	b := New(time.Date(2026, 7, 30, 13, 0, 0, 0, time.UTC), nil)
	assert.True(t, Min(a, b).Equal(a))
	assert.True(t, Max(a, b).Equal(b))
}

func TestDayOfYear(t *testing.T) {
	w := New(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	assert.Equal(t, 1, w.DayOfYear())
}

func TestTimeOfDay(t *testing.T) {
	w := New(time.Date(2026, 7, 30, 6, 30, 0, 0, time.UTC), nil)
	assert.Equal(t, 6*time.Hour+30*time.Minute, w.TimeOfDay())
}
