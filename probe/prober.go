package probe

import (
	"context"

	"github.com/jonwraymond/watchdog/resource"
)

// Prober inspects one dimension of a resource and reports issues.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Probe must honor cancellation/deadlines.
// - Errors: problems are reported as issues, never as errors or panics.
type Prober interface {
	// Name returns the name of this prober.
	Name() string

	// Probe inspects the target and returns any detected issues.
	Probe(ctx context.Context, target resource.Resource) []Issue
}

// ProberFunc is an adapter to allow ordinary functions to be used as Probers.
type ProberFunc struct {
	name string
	fn   func(context.Context, resource.Resource) []Issue
}

// NewProberFunc creates a new ProberFunc.
func NewProberFunc(name string, fn func(context.Context, resource.Resource) []Issue) *ProberFunc {
	return &ProberFunc{name: name, fn: fn}
}

// Name returns the name of this prober.
func (f *ProberFunc) Name() string {
	return f.name
}

// Probe inspects the target.
func (f *ProberFunc) Probe(ctx context.Context, target resource.Resource) []Issue {
	return f.fn(ctx, target)
}
