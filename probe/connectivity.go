package probe

import (
	"context"

	"github.com/jonwraymond/watchdog/resource"
)

// ConnectivityProber checks whether the resource reports itself connected.
type ConnectivityProber struct{}

// NewConnectivityProber creates a connectivity prober.
func NewConnectivityProber() *ConnectivityProber {
	return &ConnectivityProber{}
}

// Name returns the name of this prober.
func (p *ConnectivityProber) Name() string {
	return "connectivity"
}

// Probe reports one critical connection issue when the target is detached.
func (p *ConnectivityProber) Probe(_ context.Context, target resource.Resource) []Issue {
	if target.Connected() {
		return nil
	}
	return []Issue{NewIssue(KindConnection, SeverityCritical, "resource is not connected")}
}

var _ Prober = (*ConnectivityProber)(nil)
