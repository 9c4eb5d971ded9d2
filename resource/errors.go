package resource

import "errors"

var (
	// ErrClosed indicates an operation on a closed resource.
	ErrClosed = errors.New("resource: closed")

	// ErrHeartbeatStatus indicates a heartbeat returned a non-2xx status.
	ErrHeartbeatStatus = errors.New("resource: heartbeat returned non-2xx status")

	// ErrMissingURL indicates an HTTPResource was configured without a URL.
	ErrMissingURL = errors.New("resource: heartbeat URL is required")
)
