// Package metrics defines the minimal metrics provider contract the
// simulation core instruments against (the event bus's published/dropped
// counters and the scenario cache's in-flight worker gauge), with a
// Prometheus-backed implementation and a no-op fallback for callers that
// never configure a registry.
package metrics

import "context"

// Provider is the metrics provider contract passed internally to the
// scenario, scenario cache, and event bus packages.
type Provider interface {
	NewCounter(opts CounterOpts) Counter
	NewGauge(opts GaugeOpts) Gauge
	NewHistogram(opts HistogramOpts) Histogram
	NewTimer(h HistogramOpts) func() Timer
	Health(ctx context.Context) error
}

type Counter interface{ Inc(delta float64, labels ...string) }
type Gauge interface {
	Set(v float64, labels ...string)
	Add(delta float64, labels ...string)
}
type Histogram interface{ Observe(v float64, labels ...string) }
type Timer interface{ ObserveDuration(labels ...string) }

type CommonOpts struct {
	Namespace, Subsystem, Name, Help string
	Labels                           []string
}
type CounterOpts struct{ CommonOpts }
type GaugeOpts struct{ CommonOpts }
type HistogramOpts struct {
	CommonOpts
	Buckets []float64
}

type noopProvider struct{}
type noopCounter struct{}
type noopGauge struct{}
type noopHistogram struct{}
type noopTimer struct{}

func NewNoopProvider() Provider                                     { return &noopProvider{} }
func (p *noopProvider) NewCounter(CounterOpts) Counter               { return noopCounter{} }
func (p *noopProvider) NewGauge(GaugeOpts) Gauge                     { return noopGauge{} }
func (p *noopProvider) NewHistogram(HistogramOpts) Histogram         { return noopHistogram{} }
func (p *noopProvider) NewTimer(HistogramOpts) func() Timer          { return func() Timer { return noopTimer{} } }
func (p *noopProvider) Health(context.Context) error                 { return nil }
func (noopCounter) Inc(float64, ...string)                           {}
func (noopGauge) Set(float64, ...string)                             {}
func (noopGauge) Add(float64, ...string)                             {}
func (noopHistogram) Observe(float64, ...string)                     {}
func (noopTimer) ObserveDuration(...string)                          {}

// Domain instrument names shared across the scenario packages, kept in one
// place so the Prometheus fqnames stay consistent between the scenario
// loop, the cache, and the gridcache LRU.
const (
	NamespaceFiresim = "firesim"

	SubsystemScenario = "scenario"
	SubsystemCache    = "cache"
	SubsystemGeom     = "geom"
)
