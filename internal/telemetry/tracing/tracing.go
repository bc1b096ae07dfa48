// Package tracing wraps go.opentelemetry.io/otel/trace behind the thin
// interface Scenario needs: one span per Step call, with child spans for
// the add_ignitions, advance_fires, unoverlap and stats phases, so a caller
// that never configured an SDK tracer
// provider pays no cost.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer starts spans for one phase of Scenario.Step.
type Tracer interface {
	StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span)
}

// Span is the subset of trace.Span this package's callers need.
type Span interface {
	End()
	RecordError(err error)
	SetAttributes(attrs ...attribute.KeyValue)
}

// NewOTelTracer returns a Tracer backed by name's tracer from the global
// otel.TracerProvider. Install a real SDK TracerProvider (via
// otel.SetTracerProvider) before constructing this for spans to actually
// export anywhere; otherwise every span is the SDK's own no-op.
func NewOTelTracer(name string) Tracer {
	return &otelTracer{tracer: otel.Tracer(name)}
}

type otelTracer struct {
	tracer trace.Tracer
}

func (t *otelTracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, Span) {
	spanCtx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return spanCtx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) End() { s.span.End() }
func (s *otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}
func (s *otelSpan) SetAttributes(attrs ...attribute.KeyValue) { s.span.SetAttributes(attrs...) }

// Noop is a Tracer whose spans do nothing; the default when a Scenario is
// built without a Tracer.
func Noop() Tracer { return noopTracer{} }

type noopTracer struct{}

func (noopTracer) StartSpan(ctx context.Context, _ string, _ ...attribute.KeyValue) (context.Context, Span) {
	return ctx, noopSpan{}
}

type noopSpan struct{}

func (noopSpan) End()                                 {}
func (noopSpan) RecordError(error)                    {}
func (noopSpan) SetAttributes(...attribute.KeyValue) {}
