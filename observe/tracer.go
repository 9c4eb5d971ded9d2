package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// ResourceMeta identifies a supervised resource for telemetry purposes.
type ResourceMeta struct {
	ID   string // Stable resource ID (kind.name or just name when unset)
	Kind string // Resource kind, e.g. "browser", "database" (may be empty)
	Name string // Resource name (required)
}

// SpanName returns the deterministic span name for this resource's cycles.
// Format: monitor.cycle.<kind>.<name> or monitor.cycle.<name>
func (m ResourceMeta) SpanName() string {
	if m.Kind != "" {
		return "monitor.cycle." + m.Kind + "." + m.Name
	}
	return "monitor.cycle." + m.Name
}

// ResourceID returns the stable resource identifier.
// If the ID field is set, returns it. Otherwise constructs from kind and name.
func (m ResourceMeta) ResourceID() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Kind != "" {
		return m.Kind + "." + m.Name
	}
	return m.Name
}

// Validate checks that the metadata can identify a resource.
func (m ResourceMeta) Validate() error {
	if m.Name == "" {
		return ErrMissingResourceName
	}
	return nil
}

// Tracer wraps OpenTelemetry tracing with cycle-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartCycle must propagate the given context into the span.
// - Errors: EndCycle must be best-effort and must not panic.
type Tracer interface {
	// StartCycle starts a new span covering one health check cycle.
	StartCycle(ctx context.Context, meta ResourceMeta) (context.Context, trace.Span)

	// EndCycle ends the span, recording the cycle verdict.
	EndCycle(span trace.Span, healthy bool, issues int)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartCycle starts a new span with resource metadata as attributes.
func (t *tracerImpl) StartCycle(ctx context.Context, meta ResourceMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("resource.id", meta.ResourceID()),
		attribute.String("resource.name", meta.Name),
		attribute.Bool("monitor.healthy", true), // Will be updated in EndCycle
	}

	if meta.Kind != "" {
		attrs = append(attrs, attribute.String("resource.kind", meta.Kind))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndCycle ends the span and records the verdict.
func (t *tracerImpl) EndCycle(span trace.Span, healthy bool, issues int) {
	span.SetAttributes(
		attribute.Bool("monitor.healthy", healthy),
		attribute.Int("monitor.issues", issues),
	)
	if healthy {
		span.SetStatus(codes.Ok, "")
	} else {
		span.SetStatus(codes.Error, "resource unhealthy")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// NewNoopTracer creates a no-op tracer.
func NewNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartCycle(ctx context.Context, meta ResourceMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndCycle(span trace.Span, healthy bool, issues int) {
	span.End()
}
