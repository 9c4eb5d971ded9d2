package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPResourceConfig configures an HTTPResource.
type HTTPResourceConfig struct {
	// URL is the heartbeat endpoint, e.g. a DevTools version endpoint
	// like "http://127.0.0.1:9222/json/version".
	URL string

	// Timeout bounds each heartbeat request.
	// Default: 5 seconds
	Timeout time.Duration

	// Client is the HTTP client used for heartbeats.
	// Default: http.DefaultClient
	Client *http.Client
}

// HTTPResource adapts a remote daemon with an HTTP heartbeat endpoint to the
// Resource interface. Connected reflects the outcome of the most recent
// probe, so it is optimistic until the first Probe runs and lags reality by
// one probe cycle. A probe that flips the resource from up to down fires the
// OnDisconnect callbacks.
type HTTPResource struct {
	config HTTPResourceConfig

	mu        sync.Mutex
	connected bool
	closed    bool
	fns       map[int]func()
	nextFn    int
}

// NewHTTPResource creates a heartbeat-backed resource.
func NewHTTPResource(config HTTPResourceConfig) (*HTTPResource, error) {
	if config.URL == "" {
		return nil, ErrMissingURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}
	if config.Client == nil {
		config.Client = http.DefaultClient
	}

	return &HTTPResource{
		config:    config,
		connected: true,
		fns:       make(map[int]func()),
	}, nil
}

// Connected reports whether the last heartbeat succeeded.
func (h *HTTPResource) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

// Probe sends one heartbeat request and expects a 2xx response.
func (h *HTTPResource) Probe(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrClosed
	}
	h.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.config.URL, nil)
	if err != nil {
		h.observe(false)
		return fmt.Errorf("resource: build heartbeat request: %w", err)
	}

	resp, err := h.config.Client.Do(req)
	if err != nil {
		h.observe(false)
		return fmt.Errorf("resource: heartbeat: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		h.observe(false)
		return fmt.Errorf("%w: %d", ErrHeartbeatStatus, resp.StatusCode)
	}

	h.observe(true)
	return nil
}

// SubResources returns nil: a heartbeat endpoint exposes no sub-handles.
func (h *HTTPResource) SubResources() []SubResource {
	return nil
}

// OnDisconnect registers fn to run when a heartbeat flips the resource from
// up to down.
func (h *HTTPResource) OnDisconnect(fn func()) (cancel func()) {
	h.mu.Lock()
	id := h.nextFn
	h.nextFn++
	h.fns[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.fns, id)
		h.mu.Unlock()
	}
}

// Close marks the resource closed; subsequent probes fail fast with
// ErrClosed. Close does not fire disconnect callbacks.
func (h *HTTPResource) Close() {
	h.mu.Lock()
	h.closed = true
	h.connected = false
	h.mu.Unlock()
}

// observe records a heartbeat outcome and fires disconnect callbacks on an
// up-to-down transition.
func (h *HTTPResource) observe(up bool) {
	h.mu.Lock()
	was := h.connected
	h.connected = up

	var fns []func()
	if was && !up {
		fns = make([]func(), 0, len(h.fns))
		for _, fn := range h.fns {
			fns = append(fns, fn)
		}
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

var _ Resource = (*HTTPResource)(nil)
