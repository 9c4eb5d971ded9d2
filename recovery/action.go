package recovery

import (
	"time"

	"github.com/google/uuid"
)

// ActionKind identifies the type of intervention taken.
type ActionKind string

const (
	// KindRestart replaces the resource through its restart factory.
	KindRestart ActionKind = "restart"
	// KindCleanup runs the configured cleanup function.
	KindCleanup ActionKind = "cleanup"
	// KindForcedGC triggers a garbage collection pass.
	KindForcedGC ActionKind = "forced-gc"
	// KindResourceCleanup releases closed sub-resources.
	KindResourceCleanup ActionKind = "resource-cleanup"
)

// Action records one recovery intervention, successful or not.
type Action struct {
	// ID uniquely identifies the action.
	ID string

	// Kind is the type of intervention.
	Kind ActionKind

	// Reason is why the intervention was attempted.
	Reason string

	// AttemptedAt is when the intervention started.
	AttemptedAt time.Time

	// Duration is how long the intervention took.
	Duration time.Duration

	// Succeeded reports whether the intervention worked.
	Succeeded bool

	// Err is the failure cause when Succeeded is false.
	Err error
}

// newAction starts recording an intervention attempted now.
func newAction(kind ActionKind, reason string) Action {
	return Action{
		ID:          uuid.NewString(),
		Kind:        kind,
		Reason:      reason,
		AttemptedAt: time.Now(),
	}
}

// finish stamps the outcome onto the action.
func (a Action) finish(err error) Action {
	a.Duration = time.Since(a.AttemptedAt)
	a.Succeeded = err == nil
	a.Err = err
	return a
}
