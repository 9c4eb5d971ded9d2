package recovery

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/jonwraymond/watchdog/observe"
	"github.com/jonwraymond/watchdog/resource"
)

// Config configures the supervisor.
type Config struct {
	// Delay is the cooldown between deciding to restart and attempting it.
	// Default: 5 seconds
	Delay time.Duration

	// CleanupFunc is invoked by Cleanup to release application state tied
	// to the failed resource. Optional.
	CleanupFunc func(ctx context.Context) error

	// History records the actions taken. Default: a fresh 64-entry history.
	History *History

	// Logger receives diagnostics about failing sinks.
	Logger observe.Logger
}

// Supervisor performs recovery interventions against a failed resource.
//
// Contract:
// - Concurrency: safe for concurrent use; callers serialize restarts of the
//   same resource themselves.
// - Context: Restart honors cancellation during the cooldown; a cancelled
//   cooldown records no action.
// - Errors: a failed intervention is recorded and returned, never retried.
type Supervisor struct {
	config Config
}

// NewSupervisor creates a supervisor.
func NewSupervisor(config Config) *Supervisor {
	if config.Delay <= 0 {
		config.Delay = 5 * time.Second
	}
	if config.History == nil {
		config.History = NewHistory(64)
	}
	if config.Logger == nil {
		config.Logger = observe.NewNoopLogger()
	}

	return &Supervisor{config: config}
}

// Restart waits out the cooldown, then invokes the factory exactly once. On
// success it returns the replacement resource; on failure the error, so the
// caller keeps the old handle. Either way the attempt is recorded. A nil
// action means the cooldown was interrupted and nothing was attempted.
func (s *Supervisor) Restart(ctx context.Context, factory resource.RestartFunc, reason string) (resource.Resource, *Action, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-time.After(s.config.Delay):
	}

	return s.restartNow(ctx, factory, reason)
}

// ForceRestart invokes the factory immediately, skipping the cooldown.
func (s *Supervisor) ForceRestart(ctx context.Context, factory resource.RestartFunc, reason string) (resource.Resource, *Action, error) {
	return s.restartNow(ctx, factory, reason)
}

func (s *Supervisor) restartNow(ctx context.Context, factory resource.RestartFunc, reason string) (resource.Resource, *Action, error) {
	action := newAction(KindRestart, reason)

	replacement, err := s.invoke(ctx, factory)
	if err == nil && replacement == nil {
		err = ErrNilReplacement
	}

	action = action.finish(err)
	s.record(ctx, action)

	if err != nil {
		return nil, &action, err
	}
	return replacement, &action, nil
}

// invoke runs the factory, converting a panic into ErrFactoryPanic.
func (s *Supervisor) invoke(ctx context.Context, factory resource.RestartFunc) (replacement resource.Resource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			replacement = nil
			err = fmt.Errorf("%w: %v", ErrFactoryPanic, rec)
		}
	}()
	return factory(ctx)
}

// ForceGC triggers a garbage collection pass and records it.
func (s *Supervisor) ForceGC(ctx context.Context, reason string) *Action {
	action := newAction(KindForcedGC, reason)
	runtime.GC()
	action = action.finish(nil)
	s.record(ctx, action)
	return &action
}

// ReleaseClosed asks the target to drop its closed sub-resources. Targets
// that do not implement resource.Releaser return ErrNotReleasable without
// recording an action, since nothing was attempted.
func (s *Supervisor) ReleaseClosed(ctx context.Context, target resource.Resource, reason string) (int, *Action, error) {
	releaser, ok := target.(resource.Releaser)
	if !ok {
		return 0, nil, ErrNotReleasable
	}

	action := newAction(KindResourceCleanup, reason)
	released, err := releaser.ReleaseClosed(ctx)
	if err == nil {
		action.Reason = fmt.Sprintf("%s (released %d)", reason, released)
	}
	action = action.finish(err)
	s.record(ctx, action)

	if err != nil {
		return 0, &action, err
	}
	return released, &action, nil
}

// Cleanup runs the configured cleanup function and records it.
func (s *Supervisor) Cleanup(ctx context.Context, reason string) (*Action, error) {
	if s.config.CleanupFunc == nil {
		return nil, ErrNoCleanup
	}

	action := newAction(KindCleanup, reason)
	err := s.config.CleanupFunc(ctx)
	action = action.finish(err)
	s.record(ctx, action)

	return &action, err
}

// History returns the action history.
func (s *Supervisor) History() *History {
	return s.config.History
}

// Config returns the supervisor configuration.
func (s *Supervisor) Config() Config {
	return s.config
}

func (s *Supervisor) record(ctx context.Context, action Action) {
	if err := s.config.History.Append(action); err != nil {
		s.config.Logger.Warn(ctx, "recovery sink failed",
			observe.Field{Key: "action_id", Value: action.ID},
			observe.Field{Key: "action_kind", Value: string(action.Kind)},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}
