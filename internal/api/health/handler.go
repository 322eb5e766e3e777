package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"marketpulse/internal/workers"
	"marketpulse/pkg/logger"
)

// Checker is a dependency that can report its connectivity
type Checker interface {
	Health(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker
type CheckerFunc func(ctx context.Context) error

// Health calls f(ctx)
func (f CheckerFunc) Health(ctx context.Context) error { return f(ctx) }

// WorkerSource lists background workers for the health report
type WorkerSource interface {
	GetWorkers() []workers.Worker
}

// Handler provides health check endpoints
type Handler struct {
	log         *logger.Logger
	required    map[string]Checker
	optional    map[string]Checker
	workers     WorkerSource
	startTime   time.Time
	serviceName string
	version     string
}

// New creates a health handler. Required checks gate readiness; optional ones
// only degrade /health.
func New(log *logger.Logger, serviceName, version string) *Handler {
	return &Handler{
		log:         log.With("component", "health"),
		required:    make(map[string]Checker),
		optional:    make(map[string]Checker),
		startTime:   time.Now(),
		serviceName: serviceName,
		version:     version,
	}
}

// Require adds a check that must pass for the service to be ready
func (h *Handler) Require(name string, c Checker) *Handler {
	h.required[name] = c
	return h
}

// Optional adds a check that only degrades the health report
func (h *Handler) Optional(name string, c Checker) *Handler {
	h.optional[name] = c
	return h
}

// WithWorkers includes per-worker run statistics in /health
func (h *Handler) WithWorkers(src WorkerSource) *Handler {
	h.workers = src
	return h
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string                     `json:"status"` // "healthy", "degraded", "unhealthy"
	Service   string                     `json:"service"`
	Version   string                     `json:"version"`
	Uptime    string                     `json:"uptime"`
	Timestamp string                     `json:"timestamp"`
	Checks    map[string]ComponentHealth `json:"checks"`
	Workers   []WorkerStatus             `json:"workers,omitempty"`
}

// ComponentHealth represents health of a single component
type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time,omitempty"`
	Error        string `json:"error,omitempty"`
}

// WorkerStatus is one worker's entry in the health report
type WorkerStatus struct {
	Name        string `json:"name"`
	Enabled     bool   `json:"enabled"`
	Interval    string `json:"interval"`
	Runs        int64  `json:"runs"`
	Errors      int64  `json:"errors"`
	Failing     int64  `json:"consecutive_errors"`
	AvgDuration string `json:"avg_duration,omitempty"`
	LastRun     string `json:"last_run,omitempty"`
	LastError   string `json:"last_error,omitempty"`
}

// HandleLiveness returns 200 OK while the process is running
func (h *Handler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// HandleReadiness returns 503 unless every required dependency answers
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.run(ctx, h.required)
	status := h.status(checks)

	code := http.StatusOK
	if healthy < len(h.required) {
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
		h.log.Warnw("Readiness check failed", "checks", checks)
	}
	writeJSON(w, code, status)
}

// HandleHealth returns every check plus worker statistics.
// A failing required check is unhealthy; a failing optional one is degraded.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	checks, requiredOK := h.run(ctx, h.required)
	optChecks, optionalOK := h.run(ctx, h.optional)
	for name, c := range optChecks {
		checks[name] = c
	}

	status := h.status(checks)
	status.Workers = h.workerStatuses()

	code := http.StatusOK
	switch {
	case requiredOK < len(h.required):
		status.Status = "unhealthy"
		code = http.StatusServiceUnavailable
	case optionalOK < len(h.optional):
		status.Status = "degraded"
	}
	writeJSON(w, code, status)
}

func (h *Handler) status(checks map[string]ComponentHealth) HealthStatus {
	return HealthStatus{
		Status:    "healthy",
		Service:   h.serviceName,
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}
}

func (h *Handler) run(ctx context.Context, checkers map[string]Checker) (map[string]ComponentHealth, int) {
	out := make(map[string]ComponentHealth, len(checkers))
	healthy := 0
	for name, c := range checkers {
		start := time.Now()
		err := c.Health(ctx)
		elapsed := time.Since(start)

		if err != nil {
			h.log.Errorw("Health check failed", "check", name, "error", err, "elapsed", elapsed)
			out[name] = ComponentHealth{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
			continue
		}
		healthy++
		out[name] = ComponentHealth{Status: "healthy", ResponseTime: elapsed.String()}
	}
	return out, healthy
}

func (h *Handler) workerStatuses() []WorkerStatus {
	if h.workers == nil {
		return nil
	}
	var out []WorkerStatus
	for _, w := range h.workers.GetWorkers() {
		ws := WorkerStatus{Name: w.Name(), Enabled: w.Enabled(), Interval: w.Interval().String()}
		if hr, ok := w.(workers.HealthRecorder); ok {
			wh := hr.Health()
			ws.Runs = wh.RunCount
			ws.Errors = wh.ErrorCount
			ws.Failing = wh.ConsecutiveErrors
			if wh.AvgDuration > 0 {
				ws.AvgDuration = wh.AvgDuration.String()
			}
			if !wh.LastRun.IsZero() {
				ws.LastRun = wh.LastRun.UTC().Format(time.RFC3339)
			}
			if wh.LastError != nil {
				ws.LastError = wh.LastError.Error()
			}
		}
		out = append(out, ws)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
