package probe

import (
	"context"
	"time"

	"github.com/jonwraymond/watchdog/resource"
)

// ResponsivenessProberConfig configures the responsiveness prober.
type ResponsivenessProberConfig struct {
	// Timeout is the maximum time the round-trip may take.
	// Default: 10 seconds
	Timeout time.Duration
}

// ResponsivenessProber measures a minimal round-trip against the resource,
// racing it against the configured timeout.
type ResponsivenessProber struct {
	config ResponsivenessProberConfig
}

// NewResponsivenessProber creates a responsiveness prober.
func NewResponsivenessProber(config ResponsivenessProberConfig) *ResponsivenessProber {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &ResponsivenessProber{config: config}
}

// Name returns the name of this prober.
func (p *ResponsivenessProber) Name() string {
	return "responsiveness"
}

// Probe runs the round-trip and reports a high performance issue when it
// fails or exceeds the timeout.
func (p *ResponsivenessProber) Probe(ctx context.Context, target resource.Resource) []Issue {
	_, issues := p.Measure(ctx, target)
	return issues
}

// Measure runs the round-trip and returns the measured latency alongside any
// issues. A round-trip that never completes reports elapsed wall time at the
// moment the timeout fired.
func (p *ResponsivenessProber) Measure(ctx context.Context, target resource.Resource) (time.Duration, []Issue) {
	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)

	go func() {
		done <- target.Probe(ctx)
	}()

	select {
	case err := <-done:
		elapsed := time.Since(start)
		if err != nil {
			issue := NewIssue(KindPerformance, SeverityHigh, "resource probe failed").WithContext(map[string]any{
				"response_time_ms": elapsed.Milliseconds(),
				"error":            err.Error(),
			})
			return elapsed, []Issue{issue}
		}
		return elapsed, nil

	case <-ctx.Done():
		elapsed := time.Since(start)
		issue := NewIssue(KindPerformance, SeverityHigh, "resource probe timed out").WithContext(map[string]any{
			"response_time_ms": elapsed.Milliseconds(),
			"timeout_ms":       p.config.Timeout.Milliseconds(),
		})
		return elapsed, []Issue{issue}
	}
}

var _ Prober = (*ResponsivenessProber)(nil)
