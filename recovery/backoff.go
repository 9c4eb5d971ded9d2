package recovery

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/jonwraymond/watchdog/resource"
)

// BackoffConfig configures restart factory retries.
type BackoffConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial).
	// Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry.
	// Default: 500ms
	InitialDelay time.Duration

	// MaxDelay caps the maximum delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff multiplier.
	// Default: 2.0
	Multiplier float64
}

// WithBackoff wraps a restart factory with exponential backoff. The returned
// factory invokes the wrapped one up to MaxAttempts times and returns the
// last error when every attempt fails. The supervisor still sees a single
// invocation, so one restart action is recorded regardless of attempts.
func WithBackoff(factory resource.RestartFunc, config BackoffConfig) resource.RestartFunc {
	// Apply defaults
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 500 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}

	return func(ctx context.Context) (resource.Resource, error) {
		var lastErr error

		for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
			replacement, err := factory(ctx)
			if err == nil {
				return replacement, nil
			}
			lastErr = err

			if attempt >= config.MaxAttempts {
				break
			}

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoffDelay(config, attempt)):
			}
		}

		return nil, lastErr
	}
}

func backoffDelay(config BackoffConfig, attempt int) time.Duration {
	multiplier := math.Pow(config.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(config.InitialDelay) * multiplier)

	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}

	// Add up to 25% jitter
	// #nosec G404 -- jitter is non-cryptographic timing variance.
	if quarter := int64(delay / 4); quarter > 0 {
		delay += time.Duration(rand.Int64N(quarter))
	}

	return delay
}
