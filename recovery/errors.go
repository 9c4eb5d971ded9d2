package recovery

import "errors"

// Sentinel errors for recovery operations.
var (
	// ErrNilReplacement is returned when a restart factory produces a nil
	// resource without an error.
	ErrNilReplacement = errors.New("recovery: restart factory returned nil resource")

	// ErrFactoryPanic is returned when a restart factory panics.
	ErrFactoryPanic = errors.New("recovery: restart factory panicked")

	// ErrNotReleasable is returned when a resource cannot release its
	// closed sub-resources.
	ErrNotReleasable = errors.New("recovery: resource does not support releasing sub-resources")

	// ErrNoCleanup is returned when cleanup is requested but no cleanup
	// function is configured.
	ErrNoCleanup = errors.New("recovery: no cleanup function configured")
)
