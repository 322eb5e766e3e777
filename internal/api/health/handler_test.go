package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketpulse/internal/workers"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

type workerList []workers.Worker

func (l workerList) GetWorkers() []workers.Worker { return l }

type stubWorker struct {
	*workers.BaseWorker
}

func (stubWorker) Run(context.Context) error { return nil }

func decode(t *testing.T, rec *httptest.ResponseRecorder) HealthStatus {
	t.Helper()
	var st HealthStatus
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	return st
}

func TestReadinessRequiresEveryRequiredCheck(t *testing.T) {
	h := New(logger.Nop(), "marketpulse", "1.0").
		Require("postgres", CheckerFunc(ok)).
		Optional("redis", CheckerFunc(down))

	rec := httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec).Status)

	h.Require("kafka", CheckerFunc(down))
	rec = httptest.NewRecorder()
	h.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	st := decode(t, rec)
	assert.Equal(t, "unhealthy", st.Status)
	assert.Equal(t, "connection refused", st.Checks["kafka"].Error)
}

func TestHealthDegradesOnOptionalFailure(t *testing.T) {
	bw := workers.NewBaseWorker("watchlist_monitor", 5*time.Minute, true, logger.Nop())
	bw.RecordRun(2 * time.Second)
	bw.RecordError(errors.New("finnhub timeout"), time.Second)

	h := New(logger.Nop(), "marketpulse", "1.0").
		Require("postgres", CheckerFunc(ok)).
		Optional("redis", CheckerFunc(down)).
		WithWorkers(workerList{stubWorker{bw}})

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	st := decode(t, rec)
	assert.Equal(t, "degraded", st.Status)
	assert.Equal(t, "1.0", st.Version)
	require.Len(t, st.Checks, 2)
	assert.Equal(t, "healthy", st.Checks["postgres"].Status)

	require.Len(t, st.Workers, 1)
	assert.Equal(t, "watchlist_monitor", st.Workers[0].Name)
	assert.Equal(t, int64(2), st.Workers[0].Runs)
	assert.Equal(t, int64(1), st.Workers[0].Errors)
	assert.Equal(t, int64(1), st.Workers[0].Failing)
	assert.Equal(t, "finnhub timeout", st.Workers[0].LastError)
}

func TestLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	New(logger.Nop(), "marketpulse", "").HandleLiveness(rec, httptest.NewRequest(http.MethodGet, "/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}
