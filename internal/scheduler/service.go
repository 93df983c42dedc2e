package scheduler

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/agritechlabs/agroalert-backend/pkg/errors"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/metrics"
)

// TickerFactory yields a tick channel and its stop function. Tests swap in
// hand-driven channels to advance time without sleeping.
type TickerFactory func(interval time.Duration) (<-chan time.Time, func())

func defaultTickerFactory(interval time.Duration) (<-chan time.Time, func()) {
	ticker := time.NewTicker(interval)
	return ticker.C, ticker.Stop
}

// ServiceParams configure the scheduler service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Lock     Lock
	Metrics  *metrics.SchedulerJobMetrics
	Ticker   TickerFactory
}

// Service drives every registered job on its own goroutine and cadence. A
// slow or failing tick of one job never delays another job's ticks, and a
// failed run never disables future runs.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	lock     Lock
	metrics  *metrics.SchedulerJobMetrics
	ticker   TickerFactory
}

// NewService builds a scheduler service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Lock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "lock required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	ticker := params.Ticker
	if ticker == nil {
		ticker = defaultTickerFactory
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		lock:     params.Lock,
		metrics:  params.Metrics,
		ticker:   ticker,
	}, nil
}

// Run starts one loop per registered job and blocks until the context is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var wg sync.WaitGroup
	for _, job := range s.registry.Jobs() {
		wg.Add(1)
		go func(job Job) {
			defer wg.Done()
			s.loop(ctx, job)
		}(job)
	}
	wg.Wait()
	s.logg.Info(ctx, "scheduler stopped")
	return ctx.Err()
}

func (s *Service) loop(ctx context.Context, job Job) {
	// First run fires immediately; the ticker covers everything after.
	s.runJob(ctx, job)

	ticks, stop := s.ticker(job.Interval())
	defer stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(s.logg.WithJob(ctx, job.Name()), "job loop stopped")
			return
		case <-ticks:
			s.runJob(ctx, job)
		}
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithJob(ctx, job.Name())

	locked, err := s.lock.Acquire(jobCtx, job.Name(), lockTTL(job.Interval()))
	if err != nil {
		s.logg.Error(jobCtx, "lock acquire failed; skipping tick", err)
		return
	}
	if !locked {
		s.logg.Info(jobCtx, "another instance holds the job lock; skipping tick")
		return
	}
	defer func() {
		if relErr := s.lock.Release(jobCtx, job.Name()); relErr != nil {
			s.logg.Error(jobCtx, "failed to release job lock", relErr)
		}
	}()

	start := time.Now()
	err = job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		// Logged and forgotten; the next tick proceeds regardless.
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

// lockTTL keeps the lock alive slightly past the cadence so a crashed holder
// cannot wedge the job forever.
func lockTTL(interval time.Duration) time.Duration {
	return interval + interval/4
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
