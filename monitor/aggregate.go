package monitor

import (
	"time"

	"github.com/jonwraymond/watchdog/probe"
)

// verdictKinds are the issue kinds allowed to flip the health verdict.
// Resource-count findings are leak heuristics, informational at any
// severity: a noisy signal must not trigger a disruptive restart.
var verdictKinds = map[probe.Kind]bool{
	probe.KindConnection:  true,
	probe.KindPerformance: true,
	probe.KindMemory:      true,
	probe.KindTimeout:     true,
}

// evaluate folds one cycle's findings into a fresh status. The verdict is
// unhealthy iff any verdict kind reports severity high or above. The
// failure streak resets to zero on a healthy verdict and grows by one
// otherwise.
func evaluate(issues []probe.Issue, samples probe.Samples, prior Status, uptime time.Duration, at time.Time) Status {
	healthy := true
	for _, issue := range issues {
		if issue.Severity >= probe.SeverityHigh && verdictKinds[issue.Kind] {
			healthy = false
			break
		}
	}

	failures := 0
	if !healthy {
		failures = prior.ConsecutiveFailures + 1
	}

	metrics := Metrics{
		Responsive:    samples.Responsive,
		ResponseTime:  samples.ResponseTime,
		MemoryBytes:   samples.MemoryBytes,
		ResourceCount: samples.ResourceCount,
		Uptime:        uptime,
		LastActivity:  prior.Metrics.LastActivity,
	}
	if samples.Responsive {
		metrics.LastActivity = at
	}

	return Status{
		Healthy:             healthy,
		CheckedAt:           at,
		ConsecutiveFailures: failures,
		Issues:              issues,
		Metrics:             metrics,
	}
}
