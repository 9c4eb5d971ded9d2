package probe

import "time"

// Kind identifies the category of a detected issue.
type Kind string

const (
	// KindConnection indicates the resource transport is down.
	KindConnection Kind = "connection"
	// KindMemory indicates excessive memory consumption.
	KindMemory Kind = "memory"
	// KindPerformance indicates the resource responds too slowly or not at all.
	KindPerformance Kind = "performance"
	// KindResourceCount indicates suspicious sub-resource accumulation.
	KindResourceCount Kind = "resource-count"
	// KindTimeout indicates a probe that faulted before completing.
	KindTimeout Kind = "timeout"
)

// Severity grades how serious an issue is.
type Severity int

const (
	// SeverityLow is purely informational.
	SeverityLow Severity = iota
	// SeverityMedium warrants attention but not intervention.
	SeverityMedium
	// SeverityHigh degrades the health verdict.
	SeverityHigh
	// SeverityCritical demands recovery.
	SeverityCritical
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Issue describes one problem detected by a probe during a cycle. Issues are
// created fresh each cycle and never mutated; only the most recent cycle's
// issues survive, inside the current status.
type Issue struct {
	// Kind is the issue category.
	Kind Kind

	// Severity grades the issue.
	Severity Severity

	// Message is a human-readable description.
	Message string

	// DetectedAt is when the probe observed the problem.
	DetectedAt time.Time

	// Context carries measured values related to the issue.
	Context map[string]any
}

// NewIssue creates an issue detected now.
func NewIssue(kind Kind, severity Severity, message string) Issue {
	return Issue{
		Kind:       kind,
		Severity:   severity,
		Message:    message,
		DetectedAt: time.Now(),
	}
}

// WithContext attaches measured values to an issue.
func (i Issue) WithContext(ctx map[string]any) Issue {
	i.Context = ctx
	return i
}
