package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonwraymond/watchdog/observe"
	"github.com/jonwraymond/watchdog/probe"
	"github.com/jonwraymond/watchdog/recovery"
	"github.com/jonwraymond/watchdog/resource"
	"golang.org/x/sync/singleflight"
)

// Monitor supervises one managed resource: it probes the resource's health
// on a schedule, aggregates the findings into a verdict with a
// consecutive-failure streak, and restarts the resource through the
// caller-supplied factory once the streak crosses the configured threshold.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use. Cycles never
//     overlap: scheduled ticks that find a cycle still running are skipped,
//     on-demand checks wait for it instead.
//   - Context: PerformHealthCheck, ForceRestart and Cleanup honor
//     cancellation; stopping the monitor cancels in-flight scheduled probes.
//   - Errors: probe faults become issues, restart faults become recorded
//     actions and events. Only lifecycle misuse returns errors.
type Monitor struct {
	config     Config
	meta       observe.ResourceMeta
	logger     observe.Logger
	metrics    observe.Metrics
	tracer     observe.Tracer
	runner     *probe.Runner
	supervisor *recovery.Supervisor
	emitter    *emitter

	// status is replaced wholesale each cycle; readers never see a torn
	// write.
	status atomic.Pointer[Status]

	cycleMu sync.Mutex         // serializes probe cycles and restarts
	checks  singleflight.Group // coalesces concurrent on-demand checks

	mu        sync.Mutex // guards session and destroyed
	session   *session
	destroyed bool

	destroyOnce sync.Once

	cycles  atomic.Uint64
	skipped atomic.Uint64
}

// session is one monitoring run against one target. StartMonitoring
// replaces sessions wholesale; the scheduler goroutine and any in-flight
// cycle keep their own reference and verify currency before publishing
// results.
type session struct {
	id        string
	restart   resource.RestartFunc
	startedAt time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	target     resource.Resource
	cancelDisc func()

	// Relief stamps, touched only while the monitor's cycle mutex is held.
	lastGC      time.Time
	lastRelease time.Time
}

// Target returns the session's current resource handle.
func (s *session) Target() resource.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// swapTarget points the session at the replacement and cancels the previous
// disconnect subscription.
func (s *session) swapTarget(replacement resource.Resource, cancelDisc func()) {
	s.mu.Lock()
	prev := s.cancelDisc
	s.target = replacement
	s.cancelDisc = cancelDisc
	s.mu.Unlock()

	if prev != nil {
		prev()
	}
}

// detach cancels the disconnect subscription. Safe to call more than once.
func (s *session) detach() {
	s.mu.Lock()
	cancel := s.cancelDisc
	s.cancelDisc = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// NewMonitor creates a monitor. Invalid configuration fails fast; zero
// config values select the documented defaults.
func NewMonitor(config Config) (*Monitor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config = config.withDefaults()

	logger := config.Logger.WithResource(config.Meta)

	m := &Monitor{
		config:  config,
		meta:    config.Meta,
		logger:  logger,
		metrics: config.Metrics,
		tracer:  config.Tracer,
		runner: probe.NewRunner(probe.RunnerConfig{
			Timeout:             config.ProbeTimeout,
			DisableMemory:       config.DisableMemoryProbe,
			DisableSubResources: config.DisableSubResourceProbe,
			Memory:              config.Memory,
			SubResources:        config.SubResources,
		}),
		supervisor: recovery.NewSupervisor(recovery.Config{
			Delay:       config.RecoveryDelay,
			CleanupFunc: config.CleanupFunc,
			History:     recovery.NewHistory(config.HistorySize, config.HistorySinks...),
			Logger:      logger,
		}),
		emitter: newEmitter(logger),
	}
	m.status.Store(&Status{})
	return m, nil
}

// StartMonitoring begins supervising target, replacing any active session.
// The previous session's timer is stopped and its in-flight results are
// discarded; the new session starts with a fresh streak and a presumptively
// healthy status. The restart factory is invoked whenever recovery replaces
// the target.
func (m *Monitor) StartMonitoring(target resource.Resource, restart resource.RestartFunc) error {
	if target == nil {
		return ErrNilTarget
	}
	if restart == nil {
		return ErrNilRestart
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		id:        uuid.NewString(),
		restart:   restart,
		startedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		target:    target,
	}

	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		cancel()
		return ErrDestroyed
	}
	prior := m.session
	m.session = s
	m.status.Store(&Status{Healthy: true})
	m.mu.Unlock()

	if prior != nil {
		m.endSession(prior)
	}

	s.mu.Lock()
	s.cancelDisc = m.subscribeDisconnect(s, target)
	s.mu.Unlock()

	m.logger.Info(ctx, "monitoring started",
		observe.Field{Key: "session_id", Value: s.id},
		observe.Field{Key: "interval_ms", Value: m.config.Interval.Milliseconds()},
	)

	go m.loop(s)
	return nil
}

// StopMonitoring ends the active session. The scheduler stops, in-flight
// cycle results are discarded, and the last known status stays readable.
// Calling it with no active session is a no-op.
func (m *Monitor) StopMonitoring() {
	m.mu.Lock()
	s := m.session
	m.session = nil
	m.mu.Unlock()

	if s == nil {
		return
	}
	m.endSession(s)
	m.logger.Info(context.Background(), "monitoring stopped",
		observe.Field{Key: "session_id", Value: s.id},
	)
}

// Destroy permanently disables the monitor: the active session ends, the
// destroyed event fires, and every later lifecycle call returns
// ErrDestroyed. Idempotent; only the first call emits the event.
func (m *Monitor) Destroy() {
	m.destroyOnce.Do(func() {
		m.mu.Lock()
		m.destroyed = true
		m.mu.Unlock()

		m.StopMonitoring()
		m.emitter.emit(context.Background(), Event{
			Name:   EventDestroyed,
			At:     time.Now(),
			Status: m.GetStatus(),
		})
		m.logger.Info(context.Background(), "monitor destroyed")
	})
}

// PerformHealthCheck runs one full probe-aggregate-supervise cycle now and
// returns that cycle's verdict. Concurrent callers coalesce into a single
// cycle; a scheduled cycle already in flight is waited out, never
// overlapped. The returned status is the cycle's own aggregate even when an
// in-cycle restart has already reset the published one.
func (m *Monitor) PerformHealthCheck(ctx context.Context) (Status, error) {
	result, err, _ := m.checks.Do("check", func() (any, error) {
		m.cycleMu.Lock()
		defer m.cycleMu.Unlock()

		s, err := m.currentSession()
		if err != nil {
			return Status{}, err
		}

		// Bound the cycle by both the caller's context and the session's.
		cctx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(s.ctx, cancel)
		defer stop()

		return m.runCycle(cctx, s), nil
	})
	if err != nil {
		return Status{}, err
	}
	return result.(Status), nil
}

// GetStatus returns the last known status without blocking. It is the zero
// Status until monitoring first starts.
func (m *Monitor) GetStatus() Status {
	return *m.status.Load()
}

// RecoveryHistory returns the recorded recovery actions, oldest first.
func (m *Monitor) RecoveryHistory() []recovery.Action {
	return m.supervisor.History().Snapshot()
}

// ForceRestart replaces the resource immediately, bypassing both the
// failure threshold and the recovery cooldown. The attempt is recorded in
// the history and the restarted or restart-failed event fires either way.
func (m *Monitor) ForceRestart(ctx context.Context) error {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	s, err := m.currentSession()
	if err != nil {
		return err
	}
	return m.restart(ctx, s, "forced restart", true)
}

// Cleanup runs the configured cleanup function and records the attempt. It
// returns recovery.ErrNoCleanup when none is configured.
func (m *Monitor) Cleanup(ctx context.Context, reason string) error {
	m.mu.Lock()
	destroyed := m.destroyed
	m.mu.Unlock()
	if destroyed {
		return ErrDestroyed
	}

	_, err := m.supervisor.Cleanup(ctx, reason)
	return err
}

// Subscribe registers fn for the named event. Dispatch is synchronous and
// in registration order; the returned cancel removes the registration and
// is safe to call more than once.
//
// Listeners run on the monitor's cycle goroutine. They must not call back
// into blocking operations (PerformHealthCheck, ForceRestart, Cleanup);
// non-blocking queries (GetStatus, RecoveryHistory, Stats) are safe.
func (m *Monitor) Subscribe(name EventName, fn func(Event)) (cancel func()) {
	return m.emitter.subscribe(name, fn)
}

// Stats reports scheduler activity since the monitor was created.
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	s := m.session
	m.mu.Unlock()

	stats := Stats{
		Cycles:  m.cycles.Load(),
		Skipped: m.skipped.Load(),
	}
	if s != nil {
		stats.Monitoring = true
		stats.SessionID = s.id
		stats.StartedAt = s.startedAt
	}
	return stats
}

// currentSession returns the active session, or why there is none.
func (m *Monitor) currentSession() (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return nil, ErrDestroyed
	}
	if m.session == nil {
		return nil, ErrNotMonitoring
	}
	return m.session, nil
}

// isCurrent reports whether s is still the active session. Cycle results
// are discarded when their session was stopped or replaced mid-flight.
func (m *Monitor) isCurrent(s *session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session == s
}

// endSession cancels the session's scheduler and detaches it from the
// resource. A panicking host unsubscribe callback is contained so teardown
// always completes.
func (m *Monitor) endSession(s *session) {
	s.cancel()
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error(context.Background(), "disconnect unsubscribe panicked",
					observe.Field{Key: "session_id", Value: s.id},
					observe.Field{Key: "panic", Value: fmt.Sprint(rec)},
				)
			}
		}()
		s.detach()
	}()
}

// subscribeDisconnect wires an out-of-band disconnect notification from the
// target to an immediate check of the session.
func (m *Monitor) subscribeDisconnect(s *session, target resource.Resource) func() {
	return target.OnDisconnect(func() {
		select {
		case <-s.ctx.Done():
			return
		default:
		}
		m.logger.Warn(s.ctx, "resource reported disconnect",
			observe.Field{Key: "session_id", Value: s.id},
		)
		go m.checkNow(s)
	})
}

// checkNow runs an out-of-band cycle for s, dropped when s is no longer
// current by the time the cycle lock is acquired.
func (m *Monitor) checkNow(s *session) {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	if s.ctx.Err() != nil || !m.isCurrent(s) {
		return
	}
	m.runCycle(s.ctx, s)
}

// loop is the session's scheduler. Ticks are received promptly so that a
// slow cycle cannot silently swallow them; each tick either runs a cycle or
// is skipped and counted.
func (m *Monitor) loop(s *session) {
	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			go m.tick(s)
		}
	}
}

// tick runs one scheduled cycle. A tick that finds the previous cycle still
// running is skipped, never queued: backlog would only pile probes onto a
// resource that is already struggling.
func (m *Monitor) tick(s *session) {
	if !m.cycleMu.TryLock() {
		m.skipped.Add(1)
		m.logger.Debug(s.ctx, "tick skipped, previous cycle still running",
			observe.Field{Key: "session_id", Value: s.id},
		)
		return
	}
	defer m.cycleMu.Unlock()

	if s.ctx.Err() != nil || !m.isCurrent(s) {
		return
	}
	m.runCycle(s.ctx, s)
}

// runCycle executes one probe-aggregate-supervise pass for s. The caller
// holds the cycle mutex. The returned status is the cycle's aggregate
// verdict; when s stopped being current mid-cycle the result is returned
// but not published.
func (m *Monitor) runCycle(ctx context.Context, s *session) Status {
	target := s.Target()

	cctx, span := m.tracer.StartCycle(ctx, m.meta)
	start := time.Now()
	issues, samples := m.runner.Run(cctx, target)
	now := time.Now()

	prior := m.GetStatus()
	status := evaluate(issues, samples, prior, now.Sub(s.startedAt), now)
	m.tracer.EndCycle(span, status.Healthy, len(status.Issues))

	if !m.isCurrent(s) {
		return status
	}

	m.status.Store(&status)
	m.cycles.Add(1)
	m.metrics.RecordCycle(cctx, m.meta, now.Sub(start), status.Healthy)

	if status.Healthy {
		m.logger.Debug(cctx, "health check passed",
			observe.Field{Key: "session_id", Value: s.id},
			observe.Field{Key: "response_time_ms", Value: status.Metrics.ResponseTime.Milliseconds()},
		)
	} else {
		m.logger.Warn(cctx, "health check failed",
			observe.Field{Key: "session_id", Value: s.id},
			observe.Field{Key: "consecutive_failures", Value: status.ConsecutiveFailures},
			observe.Field{Key: "issues", Value: len(status.Issues)},
		)
	}

	m.emitter.emit(cctx, Event{Name: EventChecked, At: now, Status: status})
	switch {
	case prior.Healthy && !status.Healthy:
		m.emitter.emit(cctx, Event{Name: EventDegraded, At: now, Status: status})
	case !prior.Healthy && status.Healthy:
		m.emitter.emit(cctx, Event{Name: EventRestored, At: now, Status: status})
	}

	m.relieve(cctx, s, status, samples)

	if !m.config.DisableAutoRestart && status.ConsecutiveFailures >= m.config.MaxFailures {
		m.logger.Warn(cctx, "failure threshold crossed",
			observe.Field{Key: "session_id", Value: s.id},
			observe.Field{Key: "consecutive_failures", Value: status.ConsecutiveFailures},
			observe.Field{Key: "max_failures", Value: m.config.MaxFailures},
		)
		_ = m.restart(cctx, s, restartReason(status), false)
	}

	return status
}

// restart replaces the session's resource through its factory. Forced
// restarts skip the cooldown. A failed attempt keeps the old handle and
// the streak so the next cycle retries; a successful one re-points the
// session and resets the status to presumptively healthy.
func (m *Monitor) restart(ctx context.Context, s *session, reason string, forced bool) error {
	var (
		replacement resource.Resource
		action      *recovery.Action
		err         error
	)
	if forced {
		replacement, action, err = m.supervisor.ForceRestart(ctx, s.restart, reason)
	} else {
		replacement, action, err = m.supervisor.Restart(ctx, s.restart, reason)
	}
	if action == nil {
		// Cooldown interrupted by shutdown; nothing was attempted.
		return err
	}

	m.metrics.RecordRecovery(ctx, m.meta, string(action.Kind), action.Duration, err)

	if err != nil {
		m.logger.Error(ctx, "resource restart failed",
			observe.Field{Key: "session_id", Value: s.id},
			observe.Field{Key: "reason", Value: reason},
			observe.Field{Key: "error", Value: err.Error()},
		)
		if m.isCurrent(s) {
			m.emitter.emit(ctx, Event{
				Name:   EventRestartFailed,
				At:     time.Now(),
				Status: m.GetStatus(),
				Action: action,
			})
		}
		return err
	}

	if !m.isCurrent(s) {
		m.logger.Warn(ctx, "restart finished after its session ended, replacement unused",
			observe.Field{Key: "session_id", Value: s.id},
			observe.Field{Key: "action_id", Value: action.ID},
		)
		return nil
	}

	s.swapTarget(replacement, m.subscribeDisconnect(s, replacement))

	now := time.Now()
	fresh := Status{
		Healthy:   true,
		CheckedAt: now,
		Metrics:   Metrics{Uptime: now.Sub(s.startedAt)},
	}
	m.status.Store(&fresh)

	m.logger.Info(ctx, "resource restarted",
		observe.Field{Key: "session_id", Value: s.id},
		observe.Field{Key: "reason", Value: reason},
		observe.Field{Key: "action_id", Value: action.ID},
	)
	m.emitter.emit(ctx, Event{Name: EventRestarted, At: now, Status: fresh, Action: action})
	return nil
}

// relieve applies the configured pressure-relief actions. Relief never
// touches the failure streak and never substitutes for a restart.
func (m *Monitor) relieve(ctx context.Context, s *session, status Status, samples probe.Samples) {
	now := status.CheckedAt

	if m.config.GCReliefInterval > 0 && severeMemoryPressure(status.Issues) &&
		now.Sub(s.lastGC) >= m.config.GCReliefInterval {
		s.lastGC = now
		action := m.supervisor.ForceGC(ctx, "memory pressure relief")
		m.metrics.RecordRecovery(ctx, m.meta, string(action.Kind), action.Duration, nil)
		m.logger.Info(ctx, "forced garbage collection",
			observe.Field{Key: "session_id", Value: s.id},
			observe.Field{Key: "action_id", Value: action.ID},
		)
	}

	if m.config.ReleaseInterval > 0 && samples.ClosedResourceCount > 0 &&
		now.Sub(s.lastRelease) >= m.config.ReleaseInterval {
		released, action, err := m.supervisor.ReleaseClosed(ctx, s.Target(), "closed sub-resources still tracked")
		if errors.Is(err, recovery.ErrNotReleasable) {
			return
		}
		s.lastRelease = now
		m.metrics.RecordRecovery(ctx, m.meta, string(action.Kind), action.Duration, err)
		if err != nil {
			m.logger.Warn(ctx, "sub-resource release failed",
				observe.Field{Key: "session_id", Value: s.id},
				observe.Field{Key: "error", Value: err.Error()},
			)
			return
		}
		m.logger.Info(ctx, "released closed sub-resources",
			observe.Field{Key: "session_id", Value: s.id},
			observe.Field{Key: "released", Value: released},
		)
	}
}

// severeMemoryPressure reports whether the cycle carries a memory issue of
// severity high or above.
func severeMemoryPressure(issues []probe.Issue) bool {
	for _, issue := range issues {
		if issue.Kind == probe.KindMemory && issue.Severity >= probe.SeverityHigh {
			return true
		}
	}
	return false
}

// restartReason summarizes why the threshold fired, leading with the first
// issue of the triggering cycle.
func restartReason(status Status) string {
	if len(status.Issues) > 0 {
		return fmt.Sprintf("%d consecutive failures: %s", status.ConsecutiveFailures, status.Issues[0].Message)
	}
	return fmt.Sprintf("%d consecutive failures", status.ConsecutiveFailures)
}
