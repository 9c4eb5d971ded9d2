// Package probe implements the diagnostic checks the monitor runs against a
// managed resource and the runner that executes them as one cycle.
//
// Each probe inspects one independent dimension and reports zero or more
// typed issues. Probes never return errors and never panic outward: a fault
// inside a probe is converted into a critical timeout issue by the runner so
// a broken diagnostic cannot take down the monitor.
//
// # Probes
//
//   - ConnectivityProber: is the transport attached at all. A detached
//     target yields one critical connection issue and short-circuits the
//     rest of the cycle.
//   - ResponsivenessProber: a minimal round-trip raced against a timeout,
//     with the latency measured. Failure or timeout yields one high
//     performance issue.
//   - MemoryProber: heap allocation graded against absolute and ratio
//     thresholds. The two families are independent and may both fire in a
//     single cycle.
//   - SubResourceProber: counts tracked sub-handles and
//     closed-but-still-tracked ones. Advisory only; its medium issues never
//     flip the health verdict.
//
// # Running a Cycle
//
//	runner := probe.NewRunner(probe.RunnerConfig{Timeout: 10 * time.Second})
//	issues, samples := runner.Run(ctx, target)
//
// Issues come back in deterministic order: connection, performance, memory,
// sub-resource count. Samples carries the measurements the cycle took,
// zeroed for probes that were skipped.
package probe
