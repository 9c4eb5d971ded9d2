package monitor

import (
	"context"
	"time"

	"github.com/jonwraymond/watchdog/observe"
	"github.com/jonwraymond/watchdog/probe"
	"github.com/jonwraymond/watchdog/recovery"
)

// Config configures a Monitor. The zero value is usable: every field has a
// documented default, and the boolean toggles are named so that false keeps
// the feature on.
type Config struct {
	// Interval is the period between scheduled check cycles.
	// Default: 30 seconds
	Interval time.Duration

	// ProbeTimeout bounds the responsiveness round-trip within a cycle.
	// Default: 10 seconds
	ProbeTimeout time.Duration

	// MaxFailures is the consecutive-failure streak that triggers an
	// automatic restart.
	// Default: 3
	MaxFailures int

	// RecoveryDelay is the cooldown between crossing the failure threshold
	// and invoking the restart factory.
	// Default: 5 seconds
	RecoveryDelay time.Duration

	// DisableAutoRestart turns threshold-gated restarts off. Probing and
	// event emission continue; ForceRestart still works.
	DisableAutoRestart bool

	// DisableMemoryProbe skips heap inspection during cycles.
	DisableMemoryProbe bool

	// DisableSubResourceProbe skips sub-resource counting during cycles.
	DisableSubResourceProbe bool

	// HistorySize caps the number of retained recovery actions.
	// Default: 64
	HistorySize int

	// HistorySinks receive every recovery action as it is recorded.
	HistorySinks []recovery.Sink

	// Memory configures the heap thresholds of the memory probe.
	Memory probe.MemoryLimits

	// SubResources configures the sub-resource count thresholds.
	SubResources probe.SubResourceLimits

	// GCReliefInterval enables a forced garbage collection pass when a
	// cycle reports severe memory pressure, at most once per interval.
	// Zero disables GC relief.
	GCReliefInterval time.Duration

	// ReleaseInterval enables dropping closed-but-still-tracked
	// sub-resources when a cycle observes them, at most once per interval.
	// Takes effect only for targets that implement resource.Releaser.
	// Zero disables releasing.
	ReleaseInterval time.Duration

	// CleanupFunc is host housekeeping short of a restart, run on demand
	// via Cleanup. Optional.
	CleanupFunc func(ctx context.Context) error

	// Meta identifies the supervised resource in logs, metrics and traces.
	Meta observe.ResourceMeta

	// Logger receives structured diagnostics. Nil disables logging.
	Logger observe.Logger

	// Metrics records cycle and recovery metrics. Nil disables metrics.
	Metrics observe.Metrics

	// Tracer traces check cycles. Nil disables tracing.
	Tracer observe.Tracer
}

// Validate rejects configurations that indicate programmer error. Zero
// values are valid and select the documented defaults.
func (c *Config) Validate() error {
	if c.Interval < 0 {
		return ErrInvalidInterval
	}
	if c.ProbeTimeout < 0 {
		return ErrInvalidTimeout
	}
	if c.RecoveryDelay < 0 {
		return ErrInvalidDelay
	}
	if c.MaxFailures < 0 {
		return ErrInvalidMaxFailures
	}
	if c.HistorySize < 0 {
		return ErrInvalidHistorySize
	}
	if c.GCReliefInterval < 0 || c.ReleaseInterval < 0 {
		return ErrInvalidRelief
	}
	return nil
}

// withDefaults returns a copy of the configuration with defaults applied.
func (c Config) withDefaults() Config {
	if c.Interval == 0 {
		c.Interval = 30 * time.Second
	}
	if c.ProbeTimeout == 0 {
		c.ProbeTimeout = 10 * time.Second
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = 3
	}
	if c.RecoveryDelay == 0 {
		c.RecoveryDelay = 5 * time.Second
	}
	if c.HistorySize == 0 {
		c.HistorySize = 64
	}
	if c.Meta.Name == "" {
		c.Meta.Name = "resource"
	}
	if c.Logger == nil {
		c.Logger = observe.NewNoopLogger()
	}
	if c.Metrics == nil {
		c.Metrics = observe.NewNoopMetrics()
	}
	if c.Tracer == nil {
		c.Tracer = observe.NewNoopTracer()
	}
	return c
}
