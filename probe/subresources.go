package probe

import (
	"context"
	"fmt"

	"github.com/jonwraymond/watchdog/resource"
)

// SubResourceLimits configures the sub-resource prober thresholds.
type SubResourceLimits struct {
	// MaxTotal is the tracked sub-resource count above which a medium
	// issue is reported.
	// Default: 20
	MaxTotal int

	// MaxClosed is the closed-but-still-tracked count above which a leak
	// is suspected.
	// Default: 10
	MaxClosed int
}

// SubResourceProber counts tracked sub-resources and flags accumulation.
// It is a leak-detection heuristic, not a correctness check: its medium
// issues never flip the health verdict on their own.
type SubResourceProber struct {
	limits SubResourceLimits
}

// NewSubResourceProber creates a sub-resource prober.
func NewSubResourceProber(limits SubResourceLimits) *SubResourceProber {
	if limits.MaxTotal <= 0 {
		limits.MaxTotal = 20
	}
	if limits.MaxClosed <= 0 {
		limits.MaxClosed = 10
	}
	return &SubResourceProber{limits: limits}
}

// Name returns the name of this prober.
func (p *SubResourceProber) Name() string {
	return "sub-resources"
}

// Probe reports medium issues when sub-resource counts cross the limits.
func (p *SubResourceProber) Probe(_ context.Context, target resource.Resource) []Issue {
	_, _, issues := p.Count(target)
	return issues
}

// Count tallies tracked and closed sub-resources and grades them against
// the limits.
func (p *SubResourceProber) Count(target resource.Resource) (total, closed int, issues []Issue) {
	subs := target.SubResources()
	total = len(subs)
	for _, s := range subs {
		if s.Closed() {
			closed++
		}
	}

	if total > p.limits.MaxTotal {
		issues = append(issues, NewIssue(KindResourceCount, SeverityMedium,
			fmt.Sprintf("high sub-resource count: %d", total),
		).WithContext(map[string]any{
			"open_subresources": total,
			"max_total":         p.limits.MaxTotal,
		}))
	}

	if closed > p.limits.MaxClosed {
		issues = append(issues, NewIssue(KindResourceCount, SeverityMedium,
			fmt.Sprintf("sub-resource leak suspected: %d closed handles still tracked", closed),
		).WithContext(map[string]any{
			"closed_subresources": closed,
			"max_closed":          p.limits.MaxClosed,
		}))
	}

	return total, closed, issues
}

var _ Prober = (*SubResourceProber)(nil)
