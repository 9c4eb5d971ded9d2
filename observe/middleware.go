package observe

import (
	"context"
	"time"
)

// CheckFunc is the signature for health check functions.
// This is the standard function signature that Middleware wraps.
type CheckFunc func(ctx context.Context, meta ResourceMeta) (healthy bool, issues int, err error)

// Middleware wraps health checks with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe CheckFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from the wrapped function are recorded and propagated unchanged.
//   - Ownership: Verdicts are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a CheckFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn CheckFunc) CheckFunc {
	return func(ctx context.Context, meta ResourceMeta) (bool, int, error) {
		// Reject unidentifiable resources before any telemetry is emitted
		if err := meta.Validate(); err != nil {
			return false, 0, err
		}

		// Start span
		ctx, span := m.tracer.StartCycle(ctx, meta)

		// Record start time
		start := time.Now()

		// Run the check
		healthy, issues, err := fn(ctx, meta)

		// Calculate duration
		duration := time.Since(start)

		// A check that errored counts as an unhealthy cycle
		ok := healthy && err == nil

		// End span (records verdict and issue count)
		m.tracer.EndCycle(span, ok, issues)

		// Record metrics
		m.metrics.RecordCycle(ctx, meta, duration, ok)

		// Log the cycle
		resLogger := m.logger.WithResource(meta)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
			{Key: "healthy", Value: ok},
			{Key: "issues", Value: issues},
		}

		switch {
		case err != nil:
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			resLogger.Error(ctx, "health check failed", fields...)
		case !healthy:
			resLogger.Warn(ctx, "resource unhealthy", fields...)
		default:
			resLogger.Info(ctx, "health check completed", fields...)
		}

		return healthy, issues, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := NewTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
