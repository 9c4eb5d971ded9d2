package recovery

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/watchdog/resource"
)

// BenchmarkHistory_Append measures recording with eviction.
func BenchmarkHistory_Append(b *testing.B) {
	h := NewHistory(64)
	action := newAction(KindRestart, "bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Append(action)
	}
}

// BenchmarkHistory_Snapshot measures copying out a full history.
func BenchmarkHistory_Snapshot(b *testing.B) {
	h := NewHistory(64)
	for i := 0; i < 64; i++ {
		_ = h.Append(newAction(KindRestart, "bench"))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = h.Snapshot()
	}
}

// BenchmarkSupervisor_ForceRestart measures a full restart round-trip.
func BenchmarkSupervisor_ForceRestart(b *testing.B) {
	sup := NewSupervisor(Config{Delay: time.Millisecond})
	factory := func(ctx context.Context) (resource.Resource, error) {
		return resource.NewFake(), nil
	}
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = sup.ForceRestart(ctx, factory, "bench")
	}
}

// BenchmarkSupervisor_ForceGC measures the collection intervention.
func BenchmarkSupervisor_ForceGC(b *testing.B) {
	sup := NewSupervisor(Config{Delay: time.Millisecond})
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = sup.ForceGC(ctx, "bench")
	}
}
