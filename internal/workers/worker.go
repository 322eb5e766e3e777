package workers

import (
	"context"
	"sync"
	"time"

	"marketpulse/pkg/logger"
)

// Worker is a job the scheduler runs on a fixed interval.
// Run performs a single pass and returns; the scheduler owns the loop.
type Worker interface {
	Name() string
	Run(ctx context.Context) error
	Interval() time.Duration
	Enabled() bool
}

// CronJob is a unit of work triggered by a cron expression instead of a fixed interval
type CronJob interface {
	Name() string
	Schedule() string
	Run(ctx context.Context) error
	Enabled() bool
}

// HealthRecorder is implemented by workers that embed BaseWorker
type HealthRecorder interface {
	RecordRun(duration time.Duration)
	RecordError(err error, duration time.Duration)
	Health() WorkerHealth
}

// WorkerHealth is a point-in-time copy of a worker's run statistics
type WorkerHealth struct {
	LastRun           time.Time
	LastSuccess       time.Time
	LastError         error
	RunCount          int64
	ErrorCount        int64
	ConsecutiveErrors int64
	AvgDuration       time.Duration
	Enabled           bool
}

type runStats struct {
	lastRun     time.Time
	lastSuccess time.Time
	lastError   error
	runs        int64
	errors      int64
	streak      int64
	total       time.Duration
}

func (s *runStats) record(at time.Time, d time.Duration, err error) {
	s.lastRun = at
	s.runs++
	s.total += d
	s.lastError = err
	if err != nil {
		s.errors++
		s.streak++
		return
	}
	s.lastSuccess = at
	s.streak = 0
}

// BaseWorker carries the name, interval, logger and run statistics shared by
// every worker. Embed it and implement Run.
type BaseWorker struct {
	name     string
	interval time.Duration
	log      *logger.Logger

	mu      sync.RWMutex
	enabled bool
	stats   runStats
}

// NewBaseWorker creates a base worker; a nil logger falls back to the global one
func NewBaseWorker(name string, interval time.Duration, enabled bool, log *logger.Logger) *BaseWorker {
	if log == nil {
		log = logger.Get()
	}
	return &BaseWorker{
		name:     name,
		interval: interval,
		enabled:  enabled,
		log:      log.With("worker", name),
	}
}

func (w *BaseWorker) Name() string            { return w.name }
func (w *BaseWorker) Interval() time.Duration { return w.interval }
func (w *BaseWorker) Log() *logger.Logger     { return w.log }

// Enabled reports whether the scheduler should run this worker
func (w *BaseWorker) Enabled() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.enabled
}

// Health returns a copy of the run statistics
func (w *BaseWorker) Health() WorkerHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()

	h := WorkerHealth{
		LastRun:           w.stats.lastRun,
		LastSuccess:       w.stats.lastSuccess,
		LastError:         w.stats.lastError,
		RunCount:          w.stats.runs,
		ErrorCount:        w.stats.errors,
		ConsecutiveErrors: w.stats.streak,
		Enabled:           w.enabled,
	}
	if w.stats.runs > 0 {
		h.AvgDuration = w.stats.total / time.Duration(w.stats.runs)
	}
	return h
}

// RecordRun records a successful run
func (w *BaseWorker) RecordRun(duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.record(time.Now(), duration, nil)
}

// RecordError records a failed run
func (w *BaseWorker) RecordError(err error, duration time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.record(time.Now(), duration, err)
}
