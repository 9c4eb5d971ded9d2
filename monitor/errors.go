package monitor

import "errors"

// Lifecycle errors.
var (
	// ErrDestroyed is returned by every operation on a destroyed monitor.
	ErrDestroyed = errors.New("monitor: monitor destroyed")

	// ErrNotMonitoring is returned by operations that need an active
	// monitoring session.
	ErrNotMonitoring = errors.New("monitor: no active monitoring session")

	// ErrNilTarget is returned when StartMonitoring receives a nil resource.
	ErrNilTarget = errors.New("monitor: target resource is nil")

	// ErrNilRestart is returned when StartMonitoring receives a nil
	// restart factory.
	ErrNilRestart = errors.New("monitor: restart factory is nil")
)

// Configuration errors returned by Config.Validate. Zero values select
// defaults and are always valid; negative values are caller bugs and fail
// fast instead of being silently repaired.
var (
	// ErrInvalidInterval is returned for a negative interval.
	ErrInvalidInterval = errors.New("monitor: negative interval")

	// ErrInvalidTimeout is returned for a negative probe timeout.
	ErrInvalidTimeout = errors.New("monitor: negative probe timeout")

	// ErrInvalidDelay is returned for a negative recovery delay.
	ErrInvalidDelay = errors.New("monitor: negative recovery delay")

	// ErrInvalidMaxFailures is returned for a negative failure threshold.
	ErrInvalidMaxFailures = errors.New("monitor: negative max failures")

	// ErrInvalidHistorySize is returned for a negative history size.
	ErrInvalidHistorySize = errors.New("monitor: negative history size")

	// ErrInvalidRelief is returned for a negative relief interval.
	ErrInvalidRelief = errors.New("monitor: negative relief interval")
)

// Guard errors.
var (
	// ErrUnauthorized is returned when a request carries no valid
	// credential.
	ErrUnauthorized = errors.New("monitor: unauthorized")

	// ErrNoGuardCredentials is returned when a token guard is constructed
	// with neither a JWT key nor API keys.
	ErrNoGuardCredentials = errors.New("monitor: token guard requires a JWT key or at least one API key")
)
