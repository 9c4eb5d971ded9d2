package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonwraymond/watchdog/resource"
)

func TestLivenessHandler(t *testing.T) {
	handler := LivenessHandler()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %v, want 'OK'", rec.Body.String())
	}
	if rec.Header().Get("Content-Type") != "text/plain" {
		t.Errorf("Content-Type = %v, want 'text/plain'", rec.Header().Get("Content-Type"))
	}
}

func TestReadinessHandler_Healthy(t *testing.T) {
	target := resource.NewFake()
	m := newStartedMonitor(t, testConfig(), target, nil)
	checkOnce(t, m)

	handler := ReadinessHandler(m)
	before := m.Stats().Cycles

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("Body = %v, want 'OK'", rec.Body.String())
	}
	// Readiness serves the cached verdict, it never probes.
	if got := m.Stats().Cycles; got != before {
		t.Errorf("Cycles = %d after readiness, want %d", got, before)
	}
}

func TestReadinessHandler_Unhealthy(t *testing.T) {
	cfg := testConfig()
	cfg.DisableAutoRestart = true

	target := resource.NewFake()
	target.SetConnected(false)
	m := newStartedMonitor(t, cfg, target, nil)
	checkOnce(t, m)

	handler := ReadinessHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if rec.Body.String() != "UNHEALTHY" {
		t.Errorf("Body = %v, want 'UNHEALTHY'", rec.Body.String())
	}
}

func TestReadinessHandler_BeforeFirstCycle(t *testing.T) {
	m, err := NewMonitor(testConfig())
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}

	handler := ReadinessHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d before any cycle, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestStatusHandler_Healthy(t *testing.T) {
	target := resource.NewFake()
	m := newStartedMonitor(t, testConfig(), target, nil)
	checkOnce(t, m)

	handler := StatusHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %v, want 'application/json'", rec.Header().Get("Content-Type"))
	}

	var response StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if !response.Healthy {
		t.Error("Response.Healthy = false, want true")
	}
	if response.CheckedAt == "" {
		t.Error("Response.CheckedAt is empty, want a timestamp")
	}
	if response.ConsecutiveFailures != 0 {
		t.Errorf("Response.ConsecutiveFailures = %d, want 0", response.ConsecutiveFailures)
	}
	if !response.Metrics.Responsive {
		t.Error("Response.Metrics.Responsive = false, want true")
	}
	if len(response.Issues) != 0 {
		t.Errorf("Response.Issues = %v, want none", response.Issues)
	}
}

func TestStatusHandler_Unhealthy(t *testing.T) {
	cfg := testConfig()
	cfg.DisableAutoRestart = true

	target := resource.NewFake()
	target.SetConnected(false)
	m := newStartedMonitor(t, cfg, target, nil)
	checkOnce(t, m)
	checkOnce(t, m)

	handler := StatusHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var response StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Healthy {
		t.Error("Response.Healthy = true, want false")
	}
	if response.ConsecutiveFailures != 2 {
		t.Errorf("Response.ConsecutiveFailures = %d, want 2", response.ConsecutiveFailures)
	}
	if len(response.Issues) == 0 {
		t.Fatal("Response.Issues is empty, want the connection issue")
	}
	if response.Issues[0].Kind != "connection" {
		t.Errorf("Issues[0].Kind = %q, want 'connection'", response.Issues[0].Kind)
	}
	if response.Issues[0].Severity != "critical" {
		t.Errorf("Issues[0].Severity = %q, want 'critical'", response.Issues[0].Severity)
	}
}

func TestHistoryHandler(t *testing.T) {
	target := resource.NewFake()
	factoryErr := errors.New("no replacement")

	fail := false
	m := newStartedMonitor(t, testConfig(), target, func(context.Context) (resource.Resource, error) {
		if fail {
			return nil, factoryErr
		}
		return resource.NewFake(), nil
	})

	if err := m.ForceRestart(context.Background()); err != nil {
		t.Fatalf("ForceRestart() error = %v", err)
	}
	fail = true
	if err := m.ForceRestart(context.Background()); !errors.Is(err, factoryErr) {
		t.Fatalf("ForceRestart() error = %v, want the factory error", err)
	}

	handler := HistoryHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response.Total != 2 {
		t.Errorf("Response.Total = %d, want 2", response.Total)
	}
	if len(response.Actions) != 2 {
		t.Fatalf("Response.Actions = %d entries, want 2", len(response.Actions))
	}

	first, second := response.Actions[0], response.Actions[1]
	if first.Kind != "restart" || !first.Succeeded || first.Error != "" {
		t.Errorf("Actions[0] = %+v, want a successful restart", first)
	}
	if second.Succeeded || second.Error != factoryErr.Error() {
		t.Errorf("Actions[1] = %+v, want the failed restart with its error", second)
	}
	if first.AttemptedAt == "" || first.ID == "" {
		t.Errorf("Actions[0] = %+v, want id and attempted_at populated", first)
	}
}

func TestCheckHandler(t *testing.T) {
	target := resource.NewFake()
	m := newStartedMonitor(t, testConfig(), target, nil)

	handler := CheckHandler(m)

	t.Run("rejects GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/check", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
		if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
			t.Errorf("Allow = %q, want %q", allow, http.MethodPost)
		}
	})

	t.Run("runs a cycle", func(t *testing.T) {
		before := m.Stats().Cycles

		req := httptest.NewRequest(http.MethodPost, "/check", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
		var response StatusResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if !response.Healthy {
			t.Error("Response.Healthy = false, want true")
		}
		if got := m.Stats().Cycles; got != before+1 {
			t.Errorf("Cycles = %d, want %d", got, before+1)
		}
	})
}

func TestCheckHandler_NotMonitoring(t *testing.T) {
	m, err := NewMonitor(testConfig())
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}

	handler := CheckHandler(m)

	req := httptest.NewRequest(http.MethodPost, "/check", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if body["error"] == "" {
		t.Error("error field is empty, want the lifecycle error")
	}
}

func TestRestartHandler(t *testing.T) {
	target := resource.NewFake()
	factoryErr := errors.New("factory down")

	fail := false
	m := newStartedMonitor(t, testConfig(), target, func(context.Context) (resource.Resource, error) {
		if fail {
			return nil, factoryErr
		}
		return resource.NewFake(), nil
	})

	handler := RestartHandler(m)

	t.Run("rejects GET", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/restart", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
		}
	})

	t.Run("restarts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/restart", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d", rec.Code, http.StatusOK)
		}
		var response RestartResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if !response.Restarted || response.Error != "" {
			t.Errorf("Response = %+v, want restarted with no error", response)
		}
	})

	t.Run("factory failure", func(t *testing.T) {
		fail = true
		defer func() { fail = false }()

		req := httptest.NewRequest(http.MethodPost, "/restart", nil)
		rec := httptest.NewRecorder()

		handler(rec, req)

		if rec.Code != http.StatusBadGateway {
			t.Fatalf("Status = %d, want %d", rec.Code, http.StatusBadGateway)
		}
		var response RestartResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to parse response: %v", err)
		}
		if response.Restarted || response.Error != factoryErr.Error() {
			t.Errorf("Response = %+v, want the factory error", response)
		}
	})
}

func TestRestartHandler_NotMonitoring(t *testing.T) {
	m, err := NewMonitor(testConfig())
	if err != nil {
		t.Fatalf("NewMonitor() error = %v", err)
	}

	handler := RestartHandler(m)

	req := httptest.NewRequest(http.MethodPost, "/restart", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRegisterHandlers_GuardsMutatingEndpoints(t *testing.T) {
	target := resource.NewFake()
	m := newStartedMonitor(t, testConfig(), target, nil)
	checkOnce(t, m)

	guard, err := NewTokenGuard(GuardConfig{APIKeys: []string{"alpha"}})
	if err != nil {
		t.Fatalf("NewTokenGuard() error = %v", err)
	}

	mux := http.NewServeMux()
	RegisterHandlers(mux, m, guard)

	tests := []struct {
		name     string
		method   string
		path     string
		key      string
		wantCode int
	}{
		{name: "liveness open", method: http.MethodGet, path: "/healthz", wantCode: http.StatusOK},
		{name: "readiness open", method: http.MethodGet, path: "/readyz", wantCode: http.StatusOK},
		{name: "status open", method: http.MethodGet, path: "/status", wantCode: http.StatusOK},
		{name: "history open", method: http.MethodGet, path: "/history", wantCode: http.StatusOK},
		{name: "check without key", method: http.MethodPost, path: "/check", wantCode: http.StatusUnauthorized},
		{name: "check with key", method: http.MethodPost, path: "/check", key: "alpha", wantCode: http.StatusOK},
		{name: "restart without key", method: http.MethodPost, path: "/restart", wantCode: http.StatusUnauthorized},
		{name: "restart with key", method: http.MethodPost, path: "/restart", key: "alpha", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRegisterHandlers_NilGuardLeavesEndpointsOpen(t *testing.T) {
	target := resource.NewFake()
	m := newStartedMonitor(t, testConfig(), target, nil)

	mux := http.NewServeMux()
	RegisterHandlers(mux, m, nil)

	req := httptest.NewRequest(http.MethodPost, "/check", nil)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("POST /check with nil guard = %d, want %d", rec.Code, http.StatusOK)
	}
}
