package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records health cycle and recovery metrics for supervised resources.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCycle records one completed health check cycle with its verdict.
	RecordCycle(ctx context.Context, meta ResourceMeta, duration time.Duration, healthy bool)

	// RecordRecovery records one recovery action with duration and error status.
	RecordRecovery(ctx context.Context, meta ResourceMeta, kind string, duration time.Duration, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter            metric.Meter
	cycleCount       metric.Int64Counter
	unhealthyCount   metric.Int64Counter
	cycleDuration    metric.Float64Histogram
	recoveryCount    metric.Int64Counter
	recoveryErrors   metric.Int64Counter
	recoveryDuration metric.Float64Histogram
}

// NewMetrics creates a Metrics instance recording to the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	return newMetrics(meter)
}

// newMetrics creates a new metricsImpl with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	cycleCount, err := meter.Int64Counter(
		"monitor.cycles.total",
		metric.WithDescription("Total number of health check cycles"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	unhealthyCount, err := meter.Int64Counter(
		"monitor.cycles.unhealthy",
		metric.WithDescription("Total number of cycles with an unhealthy verdict"),
		metric.WithUnit("{cycle}"),
	)
	if err != nil {
		return nil, err
	}

	cycleDuration, err := meter.Float64Histogram(
		"monitor.cycle.duration_ms",
		metric.WithDescription("Health check cycle duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	recoveryCount, err := meter.Int64Counter(
		"monitor.recovery.total",
		metric.WithDescription("Total number of recovery actions"),
		metric.WithUnit("{action}"),
	)
	if err != nil {
		return nil, err
	}

	recoveryErrors, err := meter.Int64Counter(
		"monitor.recovery.errors",
		metric.WithDescription("Total number of failed recovery actions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	recoveryDuration, err := meter.Float64Histogram(
		"monitor.recovery.duration_ms",
		metric.WithDescription("Recovery action duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:            meter,
		cycleCount:       cycleCount,
		unhealthyCount:   unhealthyCount,
		cycleDuration:    cycleDuration,
		recoveryCount:    recoveryCount,
		recoveryErrors:   recoveryErrors,
		recoveryDuration: recoveryDuration,
	}, nil
}

// RecordCycle records metrics for one health check cycle.
func (m *metricsImpl) RecordCycle(ctx context.Context, meta ResourceMeta, duration time.Duration, healthy bool) {
	opt := metric.WithAttributes(resourceAttrs(meta)...)

	// Always increment the cycle counter
	m.cycleCount.Add(ctx, 1, opt)

	// Increment the unhealthy counter on a failing verdict
	if !healthy {
		m.unhealthyCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.cycleDuration.Record(ctx, durationMs, opt)
}

// RecordRecovery records metrics for one recovery action.
func (m *metricsImpl) RecordRecovery(ctx context.Context, meta ResourceMeta, kind string, duration time.Duration, err error) {
	attrs := append(resourceAttrs(meta), attribute.String("recovery.kind", kind))
	opt := metric.WithAttributes(attrs...)

	// Always increment the recovery counter
	m.recoveryCount.Add(ctx, 1, opt)

	// Increment the error counter on failure
	if err != nil {
		m.recoveryErrors.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.recoveryDuration.Record(ctx, durationMs, opt)
}

// resourceAttrs builds the common attribute set for a resource.
func resourceAttrs(meta ResourceMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("resource.id", meta.ResourceID()),
		attribute.String("resource.name", meta.Name),
	}

	// Add kind if present
	if meta.Kind != "" {
		attrs = append(attrs, attribute.String("resource.kind", meta.Kind))
	}

	return attrs
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

// NewNoopMetrics creates a metrics recorder that discards everything.
func NewNoopMetrics() Metrics {
	return &noopMetrics{}
}

func (m *noopMetrics) RecordCycle(ctx context.Context, meta ResourceMeta, duration time.Duration, healthy bool) {
}

func (m *noopMetrics) RecordRecovery(ctx context.Context, meta ResourceMeta, kind string, duration time.Duration, err error) {
}
