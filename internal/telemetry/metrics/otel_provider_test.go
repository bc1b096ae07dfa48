package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOTelProviderInstrumentsDoNotPanic(t *testing.T) {
	p := NewOTelProvider(OTelProviderOptions{ServiceName: "firesim-test"})
	c := p.NewCounter(CounterOpts{CommonOpts{Namespace: NamespaceFiresim, Name: "vertices_grown_total"}})
	c.Inc(3)

	g := p.NewGauge(GaugeOpts{CommonOpts{Namespace: NamespaceFiresim, Name: "active_fires"}})
	g.Set(2)
	g.Add(1)

	h := p.NewHistogram(HistogramOpts{CommonOpts: CommonOpts{Namespace: NamespaceFiresim, Name: "step_duration_seconds"}})
	h.Observe(0.5)

	newTimer := p.NewTimer(HistogramOpts{CommonOpts: CommonOpts{Namespace: NamespaceFiresim, Name: "clip_duration_seconds"}})
	timer := newTimer()
	timer.ObserveDuration()
	require.NoError(t, p.Health(context.Background()))
}
