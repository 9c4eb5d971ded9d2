package resource

import (
	"context"
	"sync"
	"time"
)

// Fake is a controllable Resource for tests. All knobs are safe for
// concurrent use; the zero value is not usable, construct with NewFake.
type Fake struct {
	mu         sync.Mutex
	connected  bool
	probeErr   error
	probeDelay time.Duration
	subs       []SubResource
	probes     int
	fns        map[int]func()
	nextFn     int
}

// NewFake creates a connected fake with no sub-resources.
func NewFake() *Fake {
	return &Fake{
		connected: true,
		fns:       make(map[int]func()),
	}
}

// Connected reports the configured connectivity.
func (f *Fake) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

// Probe waits the configured delay, then returns the configured error.
func (f *Fake) Probe(ctx context.Context) error {
	f.mu.Lock()
	f.probes++
	delay := f.probeDelay
	err := f.probeErr
	f.mu.Unlock()

	if delay > 0 {
		t := time.NewTimer(delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return err
}

// SubResources returns the configured sub-resources.
func (f *Fake) SubResources() []SubResource {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SubResource, len(f.subs))
	copy(out, f.subs)
	return out
}

// OnDisconnect registers fn; Disconnect fires all registered callbacks.
func (f *Fake) OnDisconnect(fn func()) (cancel func()) {
	f.mu.Lock()
	id := f.nextFn
	f.nextFn++
	f.fns[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.fns, id)
		f.mu.Unlock()
	}
}

// SetConnected sets the connectivity reported by Connected.
func (f *Fake) SetConnected(v bool) {
	f.mu.Lock()
	f.connected = v
	f.mu.Unlock()
}

// SetProbeError sets the error returned by Probe. Nil restores success.
func (f *Fake) SetProbeError(err error) {
	f.mu.Lock()
	f.probeErr = err
	f.mu.Unlock()
}

// SetProbeDelay sets how long Probe blocks before returning.
func (f *Fake) SetProbeDelay(d time.Duration) {
	f.mu.Lock()
	f.probeDelay = d
	f.mu.Unlock()
}

// SetSubResources replaces the tracked sub-resources.
func (f *Fake) SetSubResources(subs ...SubResource) {
	f.mu.Lock()
	f.subs = subs
	f.mu.Unlock()
}

// Disconnect marks the fake disconnected and fires all OnDisconnect
// callbacks on the calling goroutine.
func (f *Fake) Disconnect() {
	f.mu.Lock()
	f.connected = false
	fns := make([]func(), 0, len(f.fns))
	for _, fn := range f.fns {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// ProbeCount returns how many times Probe was called.
func (f *Fake) ProbeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes
}

// SubscriberCount returns how many OnDisconnect registrations are live.
func (f *Fake) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fns)
}

// FakeSub is a controllable SubResource.
type FakeSub struct {
	mu     sync.Mutex
	closed bool
}

// NewFakeSub creates an open sub-resource.
func NewFakeSub() *FakeSub {
	return &FakeSub{}
}

// Closed reports whether Close was called.
func (s *FakeSub) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close marks the sub-resource closed.
func (s *FakeSub) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// ReleasableFake is a Fake that also implements Releaser: ReleaseClosed
// drops closed sub-resources from tracking.
type ReleasableFake struct {
	*Fake
	releaseErr error
}

// NewReleasableFake creates a connected releasable fake.
func NewReleasableFake() *ReleasableFake {
	return &ReleasableFake{Fake: NewFake()}
}

// SetReleaseError sets the error returned by ReleaseClosed.
func (f *ReleasableFake) SetReleaseError(err error) {
	f.mu.Lock()
	f.releaseErr = err
	f.mu.Unlock()
}

// ReleaseClosed removes closed sub-resources and returns how many were
// dropped.
func (f *ReleasableFake) ReleaseClosed(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.releaseErr != nil {
		return 0, f.releaseErr
	}

	kept := f.subs[:0]
	released := 0
	for _, s := range f.subs {
		if s.Closed() {
			released++
			continue
		}
		kept = append(kept, s)
	}
	f.subs = kept
	return released, nil
}

// Ensure the fakes implement their interfaces.
var (
	_ Resource    = (*Fake)(nil)
	_ SubResource = (*FakeSub)(nil)
	_ Releaser    = (*ReleasableFake)(nil)
)
