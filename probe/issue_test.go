package probe

import (
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityLow, "low"},
		{SeverityMedium, "medium"},
		{SeverityHigh, "high"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSeverity_Ordering(t *testing.T) {
	if !(SeverityLow < SeverityMedium && SeverityMedium < SeverityHigh && SeverityHigh < SeverityCritical) {
		t.Error("severities should order low < medium < high < critical")
	}
}

func TestNewIssue(t *testing.T) {
	issue := NewIssue(KindConnection, SeverityCritical, "resource is not connected")

	if issue.Kind != KindConnection {
		t.Errorf("Kind = %v, want KindConnection", issue.Kind)
	}
	if issue.Severity != SeverityCritical {
		t.Errorf("Severity = %v, want SeverityCritical", issue.Severity)
	}
	if issue.Message != "resource is not connected" {
		t.Errorf("Message = %v, want 'resource is not connected'", issue.Message)
	}
	if issue.DetectedAt.IsZero() {
		t.Error("DetectedAt should not be zero")
	}
}

func TestIssue_WithContext(t *testing.T) {
	issue := NewIssue(KindPerformance, SeverityHigh, "slow").WithContext(map[string]any{
		"response_time_ms": int64(1500),
	})

	if issue.Context["response_time_ms"] != int64(1500) {
		t.Errorf("Context[response_time_ms] = %v, want 1500", issue.Context["response_time_ms"])
	}
}

func TestIssue_WithContext_DoesNotMutateOriginal(t *testing.T) {
	original := NewIssue(KindMemory, SeverityLow, "base")
	derived := original.WithContext(map[string]any{"k": "v"})

	if original.Context != nil {
		t.Error("original issue should keep a nil context")
	}
	if derived.Context["k"] != "v" {
		t.Errorf("derived Context[k] = %v, want 'v'", derived.Context["k"])
	}
}

func TestKind_Values(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindConnection, "connection"},
		{KindMemory, "memory"},
		{KindPerformance, "performance"},
		{KindResourceCount, "resource-count"},
		{KindTimeout, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if string(tt.kind) != tt.want {
				t.Errorf("Kind = %v, want %v", tt.kind, tt.want)
			}
		})
	}
}
