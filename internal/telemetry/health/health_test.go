package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateRollsUpWorstStatus(t *testing.T) {
	e := NewEvaluator(time.Minute,
		ProbeFunc(func(ctx context.Context) ProbeResult { return Healthy("cache") }),
		ProbeFunc(func(ctx context.Context) ProbeResult { return Degraded("pool", "near capacity") }),
	)
	snap := e.Evaluate(context.Background())
	assert.Equal(t, StatusDegraded, snap.Overall)
	assert.Len(t, snap.Probes, 2)
}

func TestEvaluateUnhealthyDominates(t *testing.T) {
	e := NewEvaluator(time.Minute,
		ProbeFunc(func(ctx context.Context) ProbeResult { return Degraded("pool", "slow") }),
		ProbeFunc(func(ctx context.Context) ProbeResult { return Unhealthy("landscape", "unreachable") }),
	)
	snap := e.Evaluate(context.Background())
	assert.Equal(t, StatusUnhealthy, snap.Overall)
}

func TestEvaluateCachesWithinTTL(t *testing.T) {
	calls := 0
	e := NewEvaluator(time.Hour, ProbeFunc(func(ctx context.Context) ProbeResult {
		calls++
		return Healthy("x")
	}))
	e.Evaluate(context.Background())
	e.Evaluate(context.Background())
	assert.Equal(t, 1, calls)
}

func TestForceInvalidateRecomputes(t *testing.T) {
	calls := 0
	e := NewEvaluator(time.Hour, ProbeFunc(func(ctx context.Context) ProbeResult {
		calls++
		return Healthy("x")
	}))
	e.Evaluate(context.Background())
	e.ForceInvalidate()
	e.Evaluate(context.Background())
	assert.Equal(t, 2, calls)
}

func TestNoProbesIsUnknown(t *testing.T) {
	e := NewEvaluator(time.Minute)
	snap := e.Evaluate(context.Background())
	assert.Equal(t, StatusUnknown, snap.Overall)
}
