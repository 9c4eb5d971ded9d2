package probe_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/watchdog/probe"
	"github.com/jonwraymond/watchdog/resource"
)

func ExampleNewRunner() {
	runner := probe.NewRunner(probe.RunnerConfig{
		Timeout: 2 * time.Second,
	})

	target := resource.NewFake()
	issues, samples := runner.Run(context.Background(), target)

	fmt.Println("Issues:", len(issues))
	fmt.Println("Responsive:", samples.Responsive)
	// Output:
	// Issues: 0
	// Responsive: true
}

func ExampleNewRunner_disconnected() {
	runner := probe.NewRunner(probe.RunnerConfig{})

	target := resource.NewFake()
	target.SetConnected(false)

	issues, _ := runner.Run(context.Background(), target)

	fmt.Println("Issues:", len(issues))
	fmt.Println("Kind:", issues[0].Kind)
	fmt.Println("Severity:", issues[0].Severity.String())
	// Output:
	// Issues: 1
	// Kind: connection
	// Severity: critical
}

func ExampleNewConnectivityProber() {
	prober := probe.NewConnectivityProber()

	target := resource.NewFake()
	issues := prober.Probe(context.Background(), target)

	fmt.Println("Prober name:", prober.Name())
	fmt.Println("Connected target issues:", len(issues))
	// Output:
	// Prober name: connectivity
	// Connected target issues: 0
}

func ExampleNewSubResourceProber() {
	prober := probe.NewSubResourceProber(probe.SubResourceLimits{
		MaxTotal:  20,
		MaxClosed: 10,
	})

	target := resource.NewFake()
	subs := make([]resource.SubResource, 25)
	for i := range subs {
		subs[i] = resource.NewFakeSub()
	}
	target.SetSubResources(subs...)

	total, closed, issues := prober.Count(target)

	fmt.Println("Total:", total)
	fmt.Println("Closed:", closed)
	fmt.Println("Issues:", len(issues))
	fmt.Println("Severity:", issues[0].Severity.String())
	// Output:
	// Total: 25
	// Closed: 0
	// Issues: 1
	// Severity: medium
}

func ExampleNewIssue() {
	issue := probe.NewIssue(probe.KindPerformance, probe.SeverityHigh, "resource probe timed out").
		WithContext(map[string]any{
			"response_time_ms": 10000,
		})

	fmt.Println("Kind:", issue.Kind)
	fmt.Println("Severity:", issue.Severity.String())
	fmt.Println("Message:", issue.Message)
	// Output:
	// Kind: performance
	// Severity: high
	// Message: resource probe timed out
}
