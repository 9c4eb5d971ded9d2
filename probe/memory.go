package probe

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jonwraymond/watchdog/resource"
)

// MemoryLimits configures the memory prober thresholds.
type MemoryLimits struct {
	// HighBytes is the heap allocation that triggers a high severity issue.
	// Default: 512 MiB
	HighBytes uint64

	// CriticalBytes is the heap allocation that triggers a critical issue.
	// Default: 1 GiB
	CriticalBytes uint64

	// RatioHigh is the heap-alloc to heap-sys ratio that triggers a high
	// severity issue. Value should be between 0 and 1. Default: 0.90
	RatioHigh float64
}

// MemorySample is a point-in-time view of process heap usage.
type MemorySample struct {
	// HeapAlloc is the number of bytes of allocated heap objects.
	HeapAlloc uint64

	// HeapSys is the number of bytes obtained from the OS for the heap.
	HeapSys uint64

	// NumGC is the number of completed collection cycles.
	NumGC uint32
}

// MemoryProber grades process heap usage against configured limits. The
// absolute and ratio threshold families are independent: one cycle can
// report up to two issues.
type MemoryProber struct {
	limits MemoryLimits

	// readStats is swapped out in tests.
	readStats func(*runtime.MemStats)
}

// NewMemoryProber creates a memory prober.
func NewMemoryProber(limits MemoryLimits) *MemoryProber {
	if limits.HighBytes == 0 {
		limits.HighBytes = 512 << 20
	}
	if limits.CriticalBytes == 0 {
		limits.CriticalBytes = 1 << 30
	}
	if limits.CriticalBytes < limits.HighBytes {
		limits.CriticalBytes = limits.HighBytes
	}
	if limits.RatioHigh <= 0 || limits.RatioHigh >= 1 {
		limits.RatioHigh = 0.90
	}

	return &MemoryProber{
		limits:    limits,
		readStats: runtime.ReadMemStats,
	}
}

// Name returns the name of this prober.
func (p *MemoryProber) Name() string {
	return "memory"
}

// Probe reports issues when heap usage crosses the configured limits.
func (p *MemoryProber) Probe(_ context.Context, _ resource.Resource) []Issue {
	_, issues := p.Inspect()
	return issues
}

// Inspect reads the current heap stats and grades them against the limits.
func (p *MemoryProber) Inspect() (MemorySample, []Issue) {
	var stats runtime.MemStats
	p.readStats(&stats)

	sample := MemorySample{
		HeapAlloc: stats.HeapAlloc,
		HeapSys:   stats.HeapSys,
		NumGC:     stats.NumGC,
	}

	var issues []Issue

	details := map[string]any{
		"heap_alloc_bytes": stats.HeapAlloc,
		"heap_alloc_mb":    float64(stats.HeapAlloc) / (1024 * 1024),
		"heap_sys_bytes":   stats.HeapSys,
		"num_gc":           stats.NumGC,
	}

	switch {
	case stats.HeapAlloc > p.limits.CriticalBytes:
		issues = append(issues, NewIssue(KindMemory, SeverityCritical,
			fmt.Sprintf("heap allocation critical: %.0f MB", float64(stats.HeapAlloc)/(1024*1024)),
		).WithContext(details))
	case stats.HeapAlloc > p.limits.HighBytes:
		issues = append(issues, NewIssue(KindMemory, SeverityHigh,
			fmt.Sprintf("heap allocation high: %.0f MB", float64(stats.HeapAlloc)/(1024*1024)),
		).WithContext(details))
	}

	if stats.HeapSys > 0 {
		ratio := float64(stats.HeapAlloc) / float64(stats.HeapSys)
		if ratio > p.limits.RatioHigh {
			issues = append(issues, NewIssue(KindMemory, SeverityHigh,
				fmt.Sprintf("heap usage ratio high: %.1f%%", ratio*100),
			).WithContext(map[string]any{
				"heap_alloc_bytes": stats.HeapAlloc,
				"heap_sys_bytes":   stats.HeapSys,
				"usage_percent":    ratio * 100,
			}))
		}
	}

	return sample, issues
}

var _ Prober = (*MemoryProber)(nil)
