package probe

import (
	"runtime"
	"testing"
)

func fakeStats(heapAlloc, heapSys uint64) func(*runtime.MemStats) {
	return func(m *runtime.MemStats) {
		m.HeapAlloc = heapAlloc
		m.HeapSys = heapSys
		m.NumGC = 12
	}
}

func TestNewMemoryProber_Defaults(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})

	if prober.limits.HighBytes != 512<<20 {
		t.Errorf("HighBytes = %v, want 512 MiB", prober.limits.HighBytes)
	}
	if prober.limits.CriticalBytes != 1<<30 {
		t.Errorf("CriticalBytes = %v, want 1 GiB", prober.limits.CriticalBytes)
	}
	if prober.limits.RatioHigh != 0.90 {
		t.Errorf("RatioHigh = %v, want 0.90", prober.limits.RatioHigh)
	}
}

func TestNewMemoryProber_InvalidLimits(t *testing.T) {
	// Critical below high gets clamped up.
	prober := NewMemoryProber(MemoryLimits{
		HighBytes:     800 << 20,
		CriticalBytes: 100 << 20,
	})
	if prober.limits.CriticalBytes != prober.limits.HighBytes {
		t.Errorf("CriticalBytes = %v, want clamped to HighBytes %v",
			prober.limits.CriticalBytes, prober.limits.HighBytes)
	}

	prober = NewMemoryProber(MemoryLimits{RatioHigh: 1.5})
	if prober.limits.RatioHigh != 0.90 {
		t.Errorf("Invalid ratio should default to 0.90, got %v", prober.limits.RatioHigh)
	}
}

func TestMemoryProber_Name(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})

	if prober.Name() != "memory" {
		t.Errorf("Name() = %v, want 'memory'", prober.Name())
	}
}

func TestMemoryProber_Healthy(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})
	prober.readStats = fakeStats(100<<20, 1<<30)

	sample, issues := prober.Inspect()

	if len(issues) != 0 {
		t.Errorf("issues = %d, want 0", len(issues))
	}
	if sample.HeapAlloc != 100<<20 {
		t.Errorf("HeapAlloc = %v, want 100 MiB", sample.HeapAlloc)
	}
}

func TestMemoryProber_HighAllocation(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})
	prober.readStats = fakeStats(600<<20, 2<<30)

	_, issues := prober.Inspect()

	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Kind != KindMemory {
		t.Errorf("Kind = %v, want KindMemory", issues[0].Kind)
	}
	if issues[0].Severity != SeverityHigh {
		t.Errorf("Severity = %v, want SeverityHigh", issues[0].Severity)
	}
	if issues[0].Context["heap_alloc_bytes"] != uint64(600<<20) {
		t.Errorf("Context[heap_alloc_bytes] = %v, want 600 MiB", issues[0].Context["heap_alloc_bytes"])
	}
}

func TestMemoryProber_CriticalAllocation(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})
	prober.readStats = fakeStats(uint64(1.5*float64(1<<30)), 4<<30)

	_, issues := prober.Inspect()

	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Severity != SeverityCritical {
		t.Errorf("Severity = %v, want SeverityCritical", issues[0].Severity)
	}
}

func TestMemoryProber_RatioHigh(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})
	prober.readStats = fakeStats(256<<20, 260<<20)

	_, issues := prober.Inspect()

	if len(issues) != 1 {
		t.Fatalf("issues = %d, want 1", len(issues))
	}
	if issues[0].Kind != KindMemory {
		t.Errorf("Kind = %v, want KindMemory", issues[0].Kind)
	}
	if issues[0].Severity != SeverityHigh {
		t.Errorf("Severity = %v, want SeverityHigh", issues[0].Severity)
	}
	if _, ok := issues[0].Context["usage_percent"]; !ok {
		t.Error("Context missing key: usage_percent")
	}
}

func TestMemoryProber_BothFamilies(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})
	prober.readStats = fakeStats(600<<20, 620<<20)

	_, issues := prober.Inspect()

	if len(issues) != 2 {
		t.Fatalf("issues = %d, want 2 (absolute and ratio are independent)", len(issues))
	}
}

func TestMemoryProber_LiveStats(t *testing.T) {
	prober := NewMemoryProber(MemoryLimits{})

	sample, issues := prober.Inspect()

	// A test process should sit far below the default limits.
	for _, issue := range issues {
		t.Logf("Warning: live memory inspection reported: %s", issue.Message)
	}
	if sample.HeapAlloc == 0 {
		t.Error("HeapAlloc should not be zero for a live process")
	}
}
