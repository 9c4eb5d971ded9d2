package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/watchdog/observe"
	"github.com/jonwraymond/watchdog/recovery"
)

// EventName identifies a monitor lifecycle event.
type EventName string

const (
	// EventChecked fires after every completed check cycle.
	EventChecked EventName = "checked"
	// EventDegraded fires when the verdict flips from healthy to unhealthy.
	EventDegraded EventName = "degraded"
	// EventRestored fires when the verdict flips from unhealthy to healthy.
	EventRestored EventName = "restored"
	// EventRestarted fires after a successful restart.
	EventRestarted EventName = "restarted"
	// EventRestartFailed fires after a failed restart attempt.
	EventRestartFailed EventName = "restart-failed"
	// EventDestroyed fires exactly once when the monitor is destroyed.
	EventDestroyed EventName = "destroyed"
)

// Event is the payload delivered to subscribers. Status is the published
// status at emission time; Action is set on restart events only. Events are
// observability: they never gate recovery decisions.
type Event struct {
	// Name identifies what happened.
	Name EventName

	// At is when the event was emitted.
	At time.Time

	// Status is a snapshot of the status at emission time.
	Status Status

	// Action is the recovery action behind a restarted or restart-failed
	// event. Nil for other events.
	Action *recovery.Action
}

// emitter is an ordered, synchronous listener registry. Dispatch happens
// outside the registry lock so listeners may subscribe and unsubscribe
// freely; a panicking listener is logged and skipped, later listeners still
// run.
type emitter struct {
	logger observe.Logger

	mu     sync.Mutex
	nextID uint64
	subs   map[EventName][]subscriber
}

type subscriber struct {
	id uint64
	fn func(Event)
}

func newEmitter(logger observe.Logger) *emitter {
	return &emitter{
		logger: logger,
		subs:   make(map[EventName][]subscriber),
	}
}

// subscribe registers fn for the named event, preserving registration
// order. The returned cancel removes the registration and is safe to call
// more than once.
func (e *emitter) subscribe(name EventName, fn func(Event)) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.subs[name] = append(e.subs[name], subscriber{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		subs := e.subs[name]
		for i, s := range subs {
			if s.id == id {
				e.subs[name] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// emit delivers the event to every listener registered for its name, in
// registration order, on the calling goroutine.
func (e *emitter) emit(ctx context.Context, event Event) {
	e.mu.Lock()
	registered := e.subs[event.Name]
	subs := make([]subscriber, len(registered))
	copy(subs, registered)
	e.mu.Unlock()

	for _, s := range subs {
		e.dispatch(ctx, event, s)
	}
}

// dispatch runs one listener, containing any panic so later listeners and
// the cycle itself survive.
func (e *emitter) dispatch(ctx context.Context, event Event, s subscriber) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.Error(ctx, "event listener panicked",
				observe.Field{Key: "event", Value: string(event.Name)},
				observe.Field{Key: "panic", Value: fmt.Sprint(rec)},
			)
		}
	}()
	s.fn(event)
}
