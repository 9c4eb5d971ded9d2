// Package recovery restarts failed resources and records what happened.
//
// The package implements the intervention half of resource supervision: once
// probing has established that a resource is beyond saving, a Supervisor
// replaces it through a restart factory, honoring a cooldown between the
// decision and the attempt. Every intervention, successful or not, is
// recorded as an Action in a bounded History so operators can reconstruct
// what the supervisor did and why.
//
// # Actions
//
// An Action describes one intervention: a restart, a cleanup, a forced
// garbage collection, or a sub-resource release. Actions carry a unique ID,
// the reason the intervention was attempted, its duration, and its outcome.
//
// # History
//
// History is a fixed-capacity ring: when full, recording a new action evicts
// the oldest. Sinks can be attached to stream actions to external stores as
// they are recorded; a failing sink never blocks recording.
//
// # Supervisor
//
// The Supervisor performs interventions:
//
//	sup := recovery.NewSupervisor(recovery.Config{
//	    Delay:   5 * time.Second,
//	    History: recovery.NewHistory(64),
//	})
//
//	replacement, action, err := sup.Restart(ctx, factory, "resource is not connected")
//	if err != nil {
//	    // the old handle stays in service; the action records the failure
//	}
//
// Restart waits out the configured cooldown first and invokes the factory
// exactly once. Callers that need retries can wrap the factory with
// WithBackoff.
package recovery
