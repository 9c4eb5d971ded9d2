package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/watchdog/resource"
)

// RunnerConfig configures a probe runner.
type RunnerConfig struct {
	// Timeout bounds the responsiveness round-trip.
	// Default: 10 seconds
	Timeout time.Duration

	// DisableMemory skips heap inspection.
	DisableMemory bool

	// DisableSubResources skips sub-resource counting.
	DisableSubResources bool

	// Memory configures heap thresholds.
	Memory MemoryLimits

	// SubResources configures sub-resource thresholds.
	SubResources SubResourceLimits
}

// Samples carries the measurements taken during one probe cycle. Skipped
// probes leave their fields zeroed; values are never carried over from a
// previous cycle.
type Samples struct {
	// Responsive is true when the round-trip completed without error.
	Responsive bool

	// ResponseTime is the measured round-trip latency.
	ResponseTime time.Duration

	// MemoryBytes is the heap allocation observed at probe time.
	MemoryBytes uint64

	// ResourceCount is the number of tracked sub-resources.
	ResourceCount int

	// ClosedResourceCount is the number of tracked sub-resources that
	// report themselves closed.
	ClosedResourceCount int
}

// Runner executes the full probe set against a target as one cycle.
type Runner struct {
	config         RunnerConfig
	connectivity   *ConnectivityProber
	responsiveness *ResponsivenessProber
	memory         *MemoryProber
	subResources   *SubResourceProber
}

// NewRunner creates a runner with the configured probe set.
func NewRunner(config RunnerConfig) *Runner {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &Runner{
		config:         config,
		connectivity:   NewConnectivityProber(),
		responsiveness: NewResponsivenessProber(ResponsivenessProberConfig{Timeout: config.Timeout}),
		memory:         NewMemoryProber(config.Memory),
		subResources:   NewSubResourceProber(config.SubResources),
	}
}

// Run executes one probe cycle. Connectivity is checked first: a detached
// target short-circuits the remaining probes and returns zeroed samples.
// The remaining probes run concurrently; aggregating their issues waits for
// all of them. A probe that panics contributes a single critical timeout
// issue instead of crashing the cycle.
//
// Issues come back in deterministic order: connection, performance, memory,
// sub-resource count.
func (r *Runner) Run(ctx context.Context, target resource.Resource) ([]Issue, Samples) {
	var samples Samples

	connIssues := guard(r.connectivity.Name(), func() []Issue {
		return r.connectivity.Probe(ctx, target)
	})
	if len(connIssues) > 0 {
		return connIssues, samples
	}

	var (
		wg sync.WaitGroup

		perfIssues []Issue
		elapsed    time.Duration
		responsive bool

		memIssues []Issue
		memSample MemorySample

		subIssues []Issue
		subTotal  int
		subClosed int
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		perfIssues = guard(r.responsiveness.Name(), func() []Issue {
			d, issues := r.responsiveness.Measure(ctx, target)
			elapsed = d
			responsive = len(issues) == 0
			return issues
		})
	}()

	if !r.config.DisableMemory {
		wg.Add(1)
		go func() {
			defer wg.Done()
			memIssues = guard(r.memory.Name(), func() []Issue {
				s, issues := r.memory.Inspect()
				memSample = s
				return issues
			})
		}()
	}

	if !r.config.DisableSubResources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			subIssues = guard(r.subResources.Name(), func() []Issue {
				total, closed, issues := r.subResources.Count(target)
				subTotal = total
				subClosed = closed
				return issues
			})
		}()
	}

	wg.Wait()

	issues := make([]Issue, 0, len(perfIssues)+len(memIssues)+len(subIssues))
	issues = append(issues, perfIssues...)
	issues = append(issues, memIssues...)
	issues = append(issues, subIssues...)

	samples = Samples{
		Responsive:          responsive,
		ResponseTime:        elapsed,
		MemoryBytes:         memSample.HeapAlloc,
		ResourceCount:       subTotal,
		ClosedResourceCount: subClosed,
	}
	return issues, samples
}

// guard runs one probe, converting a panic into a critical timeout issue.
func guard(name string, fn func() []Issue) (issues []Issue) {
	defer func() {
		if rec := recover(); rec != nil {
			issues = []Issue{NewIssue(KindTimeout, SeverityCritical,
				fmt.Sprintf("%s probe panicked", name),
			).WithContext(map[string]any{
				"panic": fmt.Sprint(rec),
			})}
		}
	}()
	return fn()
}
