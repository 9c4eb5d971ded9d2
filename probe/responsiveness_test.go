package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonwraymond/watchdog/resource"
)

func TestNewResponsivenessProber_Defaults(t *testing.T) {
	prober := NewResponsivenessProber(ResponsivenessProberConfig{})

	if prober.config.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", prober.config.Timeout)
	}
}

func TestResponsivenessProber_Name(t *testing.T) {
	prober := NewResponsivenessProber(ResponsivenessProberConfig{})

	if prober.Name() != "responsiveness" {
		t.Errorf("Name() = %v, want 'responsiveness'", prober.Name())
	}
}

func TestResponsivenessProber_Healthy(t *testing.T) {
	prober := NewResponsivenessProber(ResponsivenessProberConfig{Timeout: time.Second})
	target := resource.NewFake()

	elapsed, issues := prober.Measure(context.Background(), target)

	if len(issues) != 0 {
		t.Errorf("issues = %d, want 0", len(issues))
	}
	if elapsed < 0 {
		t.Errorf("elapsed = %v, want >= 0", elapsed)
	}
	if target.ProbeCount() != 1 {
		t.Errorf("ProbeCount() = %d, want 1", target.ProbeCount())
	}
}

func TestResponsivenessProber_ProbeError(t *testing.T) {
	prober := NewResponsivenessProber(ResponsivenessProberConfig{Timeout: time.Second})
	target := resource.NewFake()
	target.SetProbeError(errors.New("connection reset"))

	_, issues := prober.Measure(context.Background(), target)

	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Kind != KindPerformance {
		t.Errorf("Kind = %v, want KindPerformance", issues[0].Kind)
	}
	if issues[0].Severity != SeverityHigh {
		t.Errorf("Severity = %v, want SeverityHigh", issues[0].Severity)
	}
	if issues[0].Context["error"] != "connection reset" {
		t.Errorf("Context[error] = %v, want 'connection reset'", issues[0].Context["error"])
	}
}

// stallingResource ignores probe cancellation so the timeout branch fires.
type stallingResource struct {
	*resource.Fake
	delay time.Duration
}

func (s *stallingResource) Probe(_ context.Context) error {
	time.Sleep(s.delay)
	return nil
}

func TestResponsivenessProber_Timeout(t *testing.T) {
	prober := NewResponsivenessProber(ResponsivenessProberConfig{Timeout: 20 * time.Millisecond})
	target := &stallingResource{Fake: resource.NewFake(), delay: 300 * time.Millisecond}

	start := time.Now()
	elapsed, issues := prober.Measure(context.Background(), target)
	wall := time.Since(start)

	if wall > 250*time.Millisecond {
		t.Errorf("Measure took %v, should return promptly at the timeout", wall)
	}
	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Kind != KindPerformance {
		t.Errorf("Kind = %v, want KindPerformance", issues[0].Kind)
	}
	if issues[0].Severity != SeverityHigh {
		t.Errorf("Severity = %v, want SeverityHigh", issues[0].Severity)
	}
	if issues[0].Context["timeout_ms"] != int64(20) {
		t.Errorf("Context[timeout_ms] = %v, want 20", issues[0].Context["timeout_ms"])
	}
	if elapsed < 20*time.Millisecond {
		t.Errorf("elapsed = %v, want >= timeout", elapsed)
	}
}

func TestResponsivenessProber_ParentContextCancelled(t *testing.T) {
	prober := NewResponsivenessProber(ResponsivenessProberConfig{Timeout: time.Second})
	target := resource.NewFake()
	target.SetProbeDelay(time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, issues := prober.Measure(ctx, target)

	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1 for cancelled context", len(issues))
	}
	if issues[0].Kind != KindPerformance {
		t.Errorf("Kind = %v, want KindPerformance", issues[0].Kind)
	}
}
