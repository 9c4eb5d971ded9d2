// Package observe provides observability primitives for resource monitoring.
//
// It is a pure instrumentation library: no probing, no recovery, no I/O
// beyond exporter setup. Consumers wire the observer into the monitor or
// into their own check middleware.
package observe
