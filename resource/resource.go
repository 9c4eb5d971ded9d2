package resource

import "context"

// Resource is a long-lived external handle that can be probed and replaced.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Probe must honor cancellation/deadlines.
// - Errors: Probe returns nil only when a full round-trip succeeded.
type Resource interface {
	// Connected reports whether the underlying transport is attached.
	// It must be cheap and must not block on network I/O.
	Connected() bool

	// Probe performs a minimal end-to-end round-trip against the resource,
	// such as opening and closing a throwaway handle.
	Probe(ctx context.Context) error

	// SubResources returns the currently tracked sub-handles. May be empty.
	SubResources() []SubResource

	// OnDisconnect registers fn to run when the resource observes an
	// out-of-band disconnect. The returned cancel removes the registration.
	OnDisconnect(fn func()) (cancel func())
}

// SubResource is a child handle tracked by a Resource, such as one page of a
// browser or one channel of a connection.
type SubResource interface {
	// Closed reports whether the sub-resource has been closed.
	Closed() bool
}

// RestartFunc produces a fresh Resource to replace a failed one. The factory
// owns teardown of the old handle: implementations are expected to dispose it
// before or while bringing up the replacement.
type RestartFunc func(ctx context.Context) (Resource, error)

// Releaser is an optional capability for resources that can drop
// closed-but-still-tracked sub-handles.
type Releaser interface {
	Resource

	// ReleaseClosed forgets tracked sub-resources that report Closed,
	// returning how many were released.
	ReleaseClosed(ctx context.Context) (int, error)
}
