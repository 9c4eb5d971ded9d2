package probe

import (
	"context"
	"testing"

	"github.com/jonwraymond/watchdog/resource"
)

func TestConnectivityProber_Name(t *testing.T) {
	prober := NewConnectivityProber()

	if prober.Name() != "connectivity" {
		t.Errorf("Name() = %v, want 'connectivity'", prober.Name())
	}
}

func TestConnectivityProber_Connected(t *testing.T) {
	prober := NewConnectivityProber()
	target := resource.NewFake()

	issues := prober.Probe(context.Background(), target)

	if len(issues) != 0 {
		t.Errorf("issues = %d, want 0 for connected target", len(issues))
	}
}

func TestConnectivityProber_Disconnected(t *testing.T) {
	prober := NewConnectivityProber()
	target := resource.NewFake()
	target.SetConnected(false)

	issues := prober.Probe(context.Background(), target)

	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1 for disconnected target", len(issues))
	}
	if issues[0].Kind != KindConnection {
		t.Errorf("Kind = %v, want KindConnection", issues[0].Kind)
	}
	if issues[0].Severity != SeverityCritical {
		t.Errorf("Severity = %v, want SeverityCritical", issues[0].Severity)
	}
}
