// Package resource defines the managed-resource abstraction the monitor
// supervises.
//
// A Resource is any long-lived external handle: a headless browser, a worker
// process, a remote daemon. The monitor never owns the resource; it reads its
// state through this interface and, when recovery is needed, asks a
// caller-supplied RestartFunc for a replacement.
//
// # Core Concepts
//
// Resource reports connectivity, accepts a cheap round-trip probe, lists its
// tracked sub-handles (pages, channels, child sessions), and notifies
// subscribers of out-of-band disconnects. SubResource is the minimal view of
// one tracked child. RestartFunc is the factory that disposes a broken handle
// and produces a fresh one.
//
// # Adapters
//
// Fake is a fully controllable in-memory implementation for tests:
//
//	target := resource.NewFake()
//	target.SetConnected(false)
//	target.Disconnect() // fires OnDisconnect subscribers
//
// HTTPResource adapts any daemon with an HTTP heartbeat endpoint:
//
//	target, err := resource.NewHTTPResource(resource.HTTPResourceConfig{
//	    URL: "http://127.0.0.1:9222/json/version",
//	})
//
// # Optional Capabilities
//
// Implementations may additionally satisfy Releaser to let the recovery
// layer drop closed-but-still-tracked sub-handles without a full restart.
package resource
