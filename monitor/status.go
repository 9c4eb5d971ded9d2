package monitor

import (
	"time"

	"github.com/jonwraymond/watchdog/probe"
)

// Metrics is a point-in-time measurement snapshot taken during one cycle.
type Metrics struct {
	// Responsive is true when the round-trip probe completed in time.
	Responsive bool

	// ResponseTime is the measured round-trip latency.
	ResponseTime time.Duration

	// MemoryBytes is the heap allocation observed at probe time.
	MemoryBytes uint64

	// ResourceCount is the number of tracked sub-resources.
	ResourceCount int

	// Uptime is how long the current monitoring session had been running
	// when the cycle completed.
	Uptime time.Duration

	// LastActivity is when the most recent responsive cycle completed.
	// Carried over from the prior status when the current cycle is not
	// responsive.
	LastActivity time.Time
}

// Status is the aggregate health verdict for one probe cycle. A status is
// immutable once published: each cycle replaces it wholesale, so readers
// always see a complete snapshot, never a partial write.
type Status struct {
	// Healthy is the cycle verdict.
	Healthy bool

	// CheckedAt is when the verdict was determined. Zero before the first
	// cycle of a session.
	CheckedAt time.Time

	// ConsecutiveFailures counts unhealthy cycles since the last healthy
	// one. It resets to zero on the first healthy cycle after a run of
	// failures.
	ConsecutiveFailures int

	// Issues are the problems detected during this cycle, in probe order.
	// Never cumulative across cycles.
	Issues []probe.Issue

	// Metrics are the measurements taken during this cycle.
	Metrics Metrics
}

// Stats describes scheduler activity since the monitor was created.
type Stats struct {
	// Monitoring is true while a session is active.
	Monitoring bool

	// SessionID identifies the active session. Empty when stopped.
	SessionID string

	// StartedAt is when the active session began.
	StartedAt time.Time

	// Cycles is the number of completed check cycles.
	Cycles uint64

	// Skipped is the number of scheduled ticks dropped because another
	// cycle was still running.
	Skipped uint64
}
