package monitor

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jonwraymond/watchdog/probe"
	"github.com/jonwraymond/watchdog/recovery"
)

// StatusResponse is the JSON shape of a health status.
type StatusResponse struct {
	Healthy             bool            `json:"healthy"`
	CheckedAt           string          `json:"checked_at,omitempty"`
	ConsecutiveFailures int             `json:"consecutive_failures"`
	Issues              []IssueResponse `json:"issues,omitempty"`
	Metrics             MetricsResponse `json:"metrics"`
}

// IssueResponse is the JSON shape of one detected issue.
type IssueResponse struct {
	Kind       string         `json:"kind"`
	Severity   string         `json:"severity"`
	Message    string         `json:"message"`
	DetectedAt string         `json:"detected_at,omitempty"`
	Context    map[string]any `json:"context,omitempty"`
}

// MetricsResponse is the JSON shape of one cycle's measurements.
type MetricsResponse struct {
	Responsive     bool    `json:"responsive"`
	ResponseTimeMS int64   `json:"response_time_ms"`
	MemoryBytes    uint64  `json:"memory_bytes"`
	ResourceCount  int     `json:"resource_count"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	LastActivity   string  `json:"last_activity,omitempty"`
}

// HistoryResponse is the JSON shape of the recovery history.
type HistoryResponse struct {
	Actions []ActionResponse `json:"actions"`
	Total   uint64           `json:"total"`
}

// ActionResponse is the JSON shape of one recovery action.
type ActionResponse struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Reason      string `json:"reason"`
	AttemptedAt string `json:"attempted_at"`
	Duration    string `json:"duration"`
	Succeeded   bool   `json:"succeeded"`
	Error       string `json:"error,omitempty"`
}

// RestartResponse is the JSON shape of a forced restart outcome.
type RestartResponse struct {
	Restarted bool   `json:"restarted"`
	Error     string `json:"error,omitempty"`
}

// LivenessHandler returns an HTTP handler for liveness probes. It reports
// that the host process is up, nothing about the supervised resource.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes. It serves
// the last known verdict without triggering a cycle.
func ReadinessHandler(m *Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		if m.GetStatus().Healthy {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNHEALTHY"))
	}
}

// StatusHandler returns an HTTP handler serving the last known status as
// JSON: 200 when healthy, 503 when not.
func StatusHandler(m *Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, m.GetStatus())
	}
}

// HistoryHandler returns an HTTP handler serving the recovery history as
// JSON, oldest first.
func HistoryHandler(m *Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actions := m.RecoveryHistory()
		response := HistoryResponse{
			Actions: make([]ActionResponse, 0, len(actions)),
			Total:   m.supervisor.History().Total(),
		}
		for _, action := range actions {
			response.Actions = append(response.Actions, actionResponse(action))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// CheckHandler returns an HTTP handler that triggers an on-demand check
// cycle and serves its verdict. POST only.
func CheckHandler(m *Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}

		status, err := m.PerformHealthCheck(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err)
			return
		}
		writeStatus(w, status)
	}
}

// RestartHandler returns an HTTP handler that forces an immediate restart,
// bypassing threshold and cooldown. POST only.
func RestartHandler(m *Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeMethodNotAllowed(w)
			return
		}

		err := m.ForceRestart(r.Context())
		switch {
		case errors.Is(err, ErrNotMonitoring), errors.Is(err, ErrDestroyed):
			writeError(w, http.StatusServiceUnavailable, err)
		case err != nil:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(RestartResponse{Error: err.Error()})
		default:
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(RestartResponse{Restarted: true})
		}
	}
}

// RegisterHandlers registers the monitor endpoints on the given mux. The
// mutating endpoints (check, restart) are wrapped by guard when one is
// provided; a nil guard leaves them open.
func RegisterHandlers(mux *http.ServeMux, m *Monitor, guard *TokenGuard) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(m))
	mux.HandleFunc("/status", StatusHandler(m))
	mux.HandleFunc("/history", HistoryHandler(m))

	check := http.Handler(CheckHandler(m))
	restart := http.Handler(RestartHandler(m))
	if guard != nil {
		check = guard.Middleware(check)
		restart = guard.Middleware(restart)
	}
	mux.Handle("/check", check)
	mux.Handle("/restart", restart)
}

func statusResponse(status Status) StatusResponse {
	response := StatusResponse{
		Healthy:             status.Healthy,
		ConsecutiveFailures: status.ConsecutiveFailures,
		Metrics: MetricsResponse{
			Responsive:     status.Metrics.Responsive,
			ResponseTimeMS: status.Metrics.ResponseTime.Milliseconds(),
			MemoryBytes:    status.Metrics.MemoryBytes,
			ResourceCount:  status.Metrics.ResourceCount,
			UptimeSeconds:  status.Metrics.Uptime.Seconds(),
		},
	}
	if !status.CheckedAt.IsZero() {
		response.CheckedAt = status.CheckedAt.UTC().Format(time.RFC3339)
	}
	if !status.Metrics.LastActivity.IsZero() {
		response.Metrics.LastActivity = status.Metrics.LastActivity.UTC().Format(time.RFC3339)
	}
	for _, issue := range status.Issues {
		response.Issues = append(response.Issues, issueResponse(issue))
	}
	return response
}

func issueResponse(issue probe.Issue) IssueResponse {
	response := IssueResponse{
		Kind:     string(issue.Kind),
		Severity: issue.Severity.String(),
		Message:  issue.Message,
		Context:  issue.Context,
	}
	if !issue.DetectedAt.IsZero() {
		response.DetectedAt = issue.DetectedAt.UTC().Format(time.RFC3339)
	}
	return response
}

func actionResponse(action recovery.Action) ActionResponse {
	response := ActionResponse{
		ID:          action.ID,
		Kind:        string(action.Kind),
		Reason:      action.Reason,
		AttemptedAt: action.AttemptedAt.UTC().Format(time.RFC3339),
		Duration:    action.Duration.String(),
		Succeeded:   action.Succeeded,
	}
	if action.Err != nil {
		response.Error = action.Err.Error()
	}
	return response
}

func writeStatus(w http.ResponseWriter, status Status) {
	w.Header().Set("Content-Type", "application/json")
	if status.Healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(statusResponse(status))
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", http.MethodPost)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "method not allowed"})
}
