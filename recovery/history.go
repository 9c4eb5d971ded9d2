package recovery

import (
	"errors"
	"sync"
)

// Sink receives recovery actions as they are recorded.
//
// Contract:
// - Concurrency: Record may be called from multiple goroutines.
// - Errors: a failing sink never blocks recording; its error is surfaced
//   joined with the errors of any other failing sinks.
type Sink interface {
	Record(action Action) error
}

// SinkFunc is an adapter to allow use of ordinary functions as Sinks.
type SinkFunc func(action Action) error

// Record calls the function.
func (f SinkFunc) Record(action Action) error {
	return f(action)
}

// History is a bounded, concurrency-safe record of recovery actions. When
// the buffer is full, recording a new action evicts the oldest one. Total
// keeps counting past the capacity so eviction remains observable.
type History struct {
	mu    sync.Mutex
	buf   []Action
	head  int
	count int
	total uint64
	sinks []Sink
}

// NewHistory creates a history that retains up to capacity actions.
// A capacity below 1 defaults to 64.
func NewHistory(capacity int, sinks ...Sink) *History {
	if capacity < 1 {
		capacity = 64
	}
	return &History{
		buf:   make([]Action, capacity),
		sinks: sinks,
	}
}

// Append records an action, evicting the oldest when full, and fans it out
// to the attached sinks. The action is retained even when sinks fail.
func (h *History) Append(action Action) error {
	h.mu.Lock()
	h.buf[(h.head+h.count)%len(h.buf)] = action
	if h.count < len(h.buf) {
		h.count++
	} else {
		h.head = (h.head + 1) % len(h.buf)
	}
	h.total++
	sinks := h.sinks
	h.mu.Unlock()

	var errs []error
	for _, s := range sinks {
		if err := s.Record(action); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Snapshot returns the retained actions, oldest first.
func (h *History) Snapshot() []Action {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Action, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

// Last returns the most recently recorded action.
func (h *History) Last() (Action, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == 0 {
		return Action{}, false
	}
	return h.buf[(h.head+h.count-1)%len(h.buf)], true
}

// Len returns the number of retained actions.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Total returns the number of actions ever recorded, including evicted ones.
func (h *History) Total() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}
