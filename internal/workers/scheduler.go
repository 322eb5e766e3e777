package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"marketpulse/internal/adapters/config"
	"marketpulse/internal/metrics"
	"marketpulse/pkg/errors"
	"marketpulse/pkg/logger"
)

// ShutdownTimeout bounds how long Stop waits for running iterations
const ShutdownTimeout = 30 * time.Second

// Scheduler runs interval workers on tickers and cron jobs on their schedules
type Scheduler struct {
	workers []Worker
	jobs    []CronJob
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	log     *logger.Logger
	started bool
}

// NewScheduler creates a new worker scheduler
func NewScheduler(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Get()
	}
	return &Scheduler{
		workers: make([]Worker, 0),
		cron:    cron.New(cron.WithParser(config.CronParser), cron.WithLocation(time.UTC)),
		log:     log.With("component", "scheduler"),
	}
}

// RegisterWorker adds a worker to the scheduler
func (s *Scheduler) RegisterWorker(w Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.log.Warnw("Cannot register worker after scheduler has started", "worker", w.Name())
		return
	}

	s.workers = append(s.workers, w)
	s.log.Infow("Worker registered", "worker", w.Name(), "interval", w.Interval())
}

// RegisterCron adds a cron job. The schedule is validated immediately.
func (s *Scheduler) RegisterCron(j CronJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errors.Wrapf(errors.ErrInternal, "cannot register %s after start", j.Name())
	}
	if _, err := config.CronParser.Parse(j.Schedule()); err != nil {
		return errors.NewValidationError("schedule", fmt.Sprintf("invalid cron expression for %s: %v", j.Name(), err), j.Schedule())
	}

	s.jobs = append(s.jobs, j)
	s.log.Infow("Cron job registered", "job", j.Name(), "schedule", j.Schedule())
	return nil
}

// Start begins running all registered workers and cron jobs
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler already started")
	}

	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.log.Infow("Starting worker scheduler", "workers", len(s.workers), "cron_jobs", len(s.jobs))

	for _, worker := range s.workers {
		if !worker.Enabled() {
			s.log.Infow("Skipping disabled worker", "worker", worker.Name())
			continue
		}

		s.wg.Add(1)
		go s.runWorker(worker)
	}

	for _, job := range s.jobs {
		if !job.Enabled() {
			s.log.Infow("Skipping disabled cron job", "job", job.Name())
			continue
		}
		if _, err := s.cron.AddFunc(job.Schedule(), func() {
			s.wg.Add(1)
			defer s.wg.Done()
			s.execute(job.Name(), job.Run, job)
		}); err != nil {
			return errors.Wrapf(err, "schedule %s", job.Name())
		}
	}
	s.cron.Start()

	s.log.Infow("All workers started")
	return nil
}

// Stop gracefully shuts down all workers and waits for running iterations
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return errors.Wrapf(errors.ErrInternal, "scheduler not started")
	}
	s.cancel()
	s.mu.Unlock()

	s.log.Infow("Stopping worker scheduler")
	cronDone := s.cron.Stop()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	var shutdownErr error
	select {
	case <-done:
		s.log.Infow("All workers stopped gracefully")
	case <-time.After(ShutdownTimeout):
		s.log.Warnw("Worker shutdown timed out", "timeout", ShutdownTimeout)
		shutdownErr = errors.Wrapf(errors.ErrTimeout, "shutdown timeout after %s", ShutdownTimeout)
	}

	s.mu.Lock()
	s.started = false
	s.mu.Unlock()

	return shutdownErr
}

// runWorker executes a single worker in a loop
func (s *Scheduler) runWorker(worker Worker) {
	defer s.wg.Done()

	s.log.Infow("Worker started", "worker", worker.Name())

	ticker := time.NewTicker(worker.Interval())
	defer ticker.Stop()

	// first iteration runs immediately
	s.execute(worker.Name(), worker.Run, worker)

	for {
		select {
		case <-s.ctx.Done():
			s.log.Infow("Worker stopping due to context cancellation", "worker", worker.Name())
			return

		case <-ticker.C:
			s.execute(worker.Name(), worker.Run, worker)
		}
	}
}

// execute runs one iteration, recovering panics and recording health and metrics
func (s *Scheduler) execute(name string, run func(context.Context) error, owner any) {
	if s.ctx.Err() != nil {
		return
	}
	start := time.Now()
	var err error

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.log.Errorw("Worker panicked", "worker", name, "panic", r)
		}

		duration := time.Since(start)
		metrics.RecordWorkerExecution(name, duration, err)
		if h, ok := owner.(HealthRecorder); ok {
			if err != nil {
				h.RecordError(err, duration)
			} else {
				h.RecordRun(duration)
			}
		}
	}()

	err = run(s.ctx)
	if err != nil {
		s.log.Errorw("Worker execution failed", "worker", name, "error", err, "duration", time.Since(start))
		return
	}
	s.log.Debugw("Worker execution completed", "worker", name, "duration", time.Since(start))
}

// GetWorkers returns a list of all registered workers (for debugging/monitoring)
func (s *Scheduler) GetWorkers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers := make([]Worker, len(s.workers))
	copy(workers, s.workers)
	return workers
}

// NextRun returns when the named cron job fires next, or zero when unknown
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, j := range s.jobs {
		if j.Name() != name {
			continue
		}
		sched, err := config.CronParser.Parse(j.Schedule())
		if err != nil {
			return time.Time{}
		}
		return sched.Next(time.Now().UTC())
	}
	return time.Time{}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
