package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"jogapp-api/internal/common"
	"jogapp-api/internal/config"

	"go.uber.org/zap"
)

// Scheduler defines the interface for the background job scheduler
type Scheduler interface {
	Start(ctx context.Context) error
	Stop() error
	IsRunning() bool

	// RunJob triggers one job by name immediately, bypassing its time gate.
	// Jobs are idempotent, so a manual run composes safely with the ticker.
	RunJob(ctx context.Context, name string) error

	GetMetrics() *SchedulerMetrics
	JobNames() []string
}

// scheduler implements the Scheduler interface
type scheduler struct {
	config  config.SchedulerConfig
	jobs    []Job
	clock   common.Clock
	logger  *zap.Logger
	metrics *SchedulerMetrics

	// Context and cancellation
	ctx    context.Context
	cancel context.CancelFunc

	// Goroutine management
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewScheduler creates a new scheduler instance running the given jobs
func NewScheduler(cfg config.SchedulerConfig, jobs []Job, clock common.Clock, metrics *SchedulerMetrics, logger *zap.Logger) (Scheduler, error) {
	if cfg.SweepInterval <= 0 {
		return nil, NewConfigurationError("sweep_interval", cfg.SweepInterval, "must be greater than 0")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, NewConfigurationError("shutdown_timeout", cfg.ShutdownTimeout, "must be greater than 0")
	}
	if cfg.SweepAdjustmentMinutes < 0 {
		return nil, NewConfigurationError("sweep_adjustment_minutes", cfg.SweepAdjustmentMinutes, "must not be negative")
	}
	if len(jobs) == 0 {
		return nil, NewConfigurationError("jobs", 0, "at least one job is required")
	}

	return &scheduler{
		config:  cfg,
		jobs:    jobs,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}, nil
}

// Start begins ticking all jobs
func (s *scheduler) Start(ctx context.Context) error {
	if s.running.Load() {
		return NewSchedulerError(ErrSchedulerAlreadyRunning, "scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.running.Store(true)

	s.logger.Info("Starting job scheduler",
		zap.Int("sweep_interval_seconds", s.config.SweepInterval),
		zap.Int("job_count", len(s.jobs)))

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJobLoop(job)
	}

	s.logger.Info("Job scheduler started successfully")
	return nil
}

// Stop gracefully shuts down the scheduler
func (s *scheduler) Stop() error {
	if !s.running.Load() {
		return NewSchedulerError(ErrSchedulerNotRunning, "scheduler is not running")
	}

	s.logger.Info("Stopping job scheduler...")

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("All scheduler jobs stopped successfully")
	case <-time.After(time.Duration(s.config.ShutdownTimeout) * time.Second):
		s.logger.Warn("Scheduler shutdown timed out, some jobs may still be running")
		return NewShutdownError("shutdown timeout exceeded", s.config.ShutdownTimeout)
	}

	s.running.Store(false)
	s.logger.Info("Job scheduler stopped successfully")
	return nil
}

// IsRunning returns true if the scheduler is currently running
func (s *scheduler) IsRunning() bool {
	return s.running.Load()
}

// GetMetrics returns the current scheduler metrics
func (s *scheduler) GetMetrics() *SchedulerMetrics {
	return s.metrics
}

// JobNames returns the names of all registered jobs
func (s *scheduler) JobNames() []string {
	names := make([]string, 0, len(s.jobs))
	for _, job := range s.jobs {
		names = append(names, job.Name())
	}
	return names
}

// RunJob triggers a job by name immediately
func (s *scheduler) RunJob(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() != name {
			continue
		}
		now := s.clock.Now()
		if err := s.runOnce(ctx, job, now); err != nil {
			return NewJobRunError(name, err)
		}
		return nil
	}
	return NewSchedulerError(ErrUnknownJob, "no job named "+name)
}

// runJobLoop is the per-job ticker goroutine
func (s *scheduler) runJobLoop(job Job) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Job panic recovered, restarting job loop",
				zap.String("job", job.Name()),
				zap.Any("panic", r))
			s.metrics.RecordJobError(job.Name())
			s.wg.Add(1)
			go s.runJobLoop(job)
		}
	}()

	jobLogger := s.logger.With(zap.String("job", job.Name()))
	jobLogger.Info("Starting scheduler job loop")

	ticker := time.NewTicker(time.Duration(s.config.SweepInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			jobLogger.Info("Job loop stopping due to context cancellation")
			return
		case <-ticker.C:
			now := s.clock.Now()
			if !job.Due(now) {
				continue
			}
			if err := s.runOnce(s.ctx, job, now); err != nil {
				jobLogger.Error("Job tick failed", zap.Error(err))
			}
		}
	}
}

// runOnce executes a single job tick and records its metrics
func (s *scheduler) runOnce(ctx context.Context, job Job, now time.Time) error {
	start := time.Now()
	if err := job.Run(ctx, now); err != nil {
		s.metrics.RecordJobError(job.Name())
		return err
	}
	s.metrics.RecordJobRun(job.Name(), time.Since(start))
	return nil
}
