// Package monitor supervises a long-lived external resource: it probes the
// resource's health on a schedule, folds the findings into a verdict with a
// consecutive-failure streak, and replaces the resource through a
// caller-supplied factory once the streak crosses a threshold.
//
// # Monitoring
//
//	m, err := monitor.NewMonitor(monitor.Config{
//	    Interval:    30 * time.Second,
//	    MaxFailures: 3,
//	})
//	if err != nil {
//	    // invalid configuration
//	}
//	if err := m.StartMonitoring(target, restartFactory); err != nil {
//	    // nil target/factory or destroyed monitor
//	}
//
// Each cycle runs the probe set (connectivity, responsiveness, memory,
// sub-resource counts), aggregates the issues into an immutable Status, and
// publishes it atomically: GetStatus never blocks and never observes a
// partial write. Cycles never overlap. A scheduled tick that arrives while
// a cycle is still running is skipped and counted in Stats, never queued;
// PerformHealthCheck instead waits for the in-flight cycle and coalesces
// concurrent callers into one fresh cycle.
//
// # Recovery
//
// An unhealthy verdict grows the failure streak, a healthy one resets it.
// Once the streak reaches MaxFailures the monitor waits out RecoveryDelay
// and invokes the restart factory exactly once. Success re-points the
// session at the replacement and resets the streak; failure keeps the old
// handle and the streak, so the next cycle retries. ForceRestart performs
// the same replacement immediately, bypassing threshold and cooldown. Every
// attempt lands in a bounded recovery history.
//
// # Events
//
// Subscribers receive lifecycle events by name: checked after every cycle,
// degraded and restored on verdict flips, restarted and restart-failed
// around recovery, destroyed exactly once at teardown. Dispatch is
// synchronous and ordered; a panicking listener is contained and logged.
//
//	cancel := m.Subscribe(monitor.EventDegraded, func(ev monitor.Event) {
//	    log.Printf("degraded after %d failures", ev.Status.ConsecutiveFailures)
//	})
//	defer cancel()
//
// # HTTP Surface
//
// RegisterHandlers exposes liveness, readiness, status, recovery history,
// on-demand checks and forced restarts over HTTP. The mutating endpoints
// can be locked behind a TokenGuard accepting Bearer JWTs or static API
// keys.
package monitor
