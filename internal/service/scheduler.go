package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"current-account-ledger/internal/core/ports"
	"current-account-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

type scheduledJob struct {
	job      ports.BatchJob
	interval time.Duration
}

// Scheduler runs batch jobs on fixed intervals. Every run, scheduled or
// triggered, holds the job's distributed lock so one instance runs a job at
// a time.
type Scheduler struct {
	lock    ports.JobLock
	lockTTL time.Duration
	log     zerolog.Logger

	mu   sync.RWMutex
	jobs map[string]scheduledJob
	wg   sync.WaitGroup
}

// NewScheduler creates a Scheduler. A nil lock runs jobs unguarded.
func NewScheduler(lock ports.JobLock, lockTTL time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		lock:    lock,
		lockTTL: lockTTL,
		log:     log,
		jobs:    make(map[string]scheduledJob),
	}
}

// Register adds job. An interval of zero or less registers it for manual
// triggering only.
func (s *Scheduler) Register(job ports.BatchJob, interval time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name()] = scheduledJob{job: job, interval: interval}
}

// Start launches one ticker goroutine per scheduled job. They stop when ctx
// is cancelled; Wait blocks until they have.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for name, sj := range s.jobs {
		if sj.interval <= 0 {
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, name, sj)
		s.log.Info().Str("job", name).Dur("interval", sj.interval).Msg("batch job scheduled")
	}
}

// Wait blocks until every ticker goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, name string, sj scheduledJob) {
	defer s.wg.Done()

	ticker := time.NewTicker(sj.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.runLocked(ctx, sj.job); err != nil {
				if errors.Is(err, apperror.ErrJobAlreadyRunning(name)) {
					s.log.Debug().Str("job", name).Msg("job locked elsewhere, skipping tick")
					continue
				}
				s.log.Error().Err(err).Str("job", name).Msg("batch job failed")
			}
		}
	}
}

// Trigger runs the named job now. It fails with JOB_001 when another run
// holds the lock.
func (s *Scheduler) Trigger(ctx context.Context, name string) (*ports.BatchReport, error) {
	s.mu.RLock()
	sj, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, apperror.ErrNotFound("job")
	}
	return s.runLocked(ctx, sj.job)
}

func (s *Scheduler) runLocked(ctx context.Context, job ports.BatchJob) (*ports.BatchReport, error) {
	name := job.Name()
	if s.lock == nil {
		return job.Run(ctx)
	}

	token, acquired, err := s.lock.Acquire(ctx, name, s.lockTTL)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("acquire lock for %s: %w", name, err))
	}
	if !acquired {
		return nil, apperror.ErrJobAlreadyRunning(name)
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), name, token); err != nil {
			s.log.Warn().Err(err).Str("job", name).Msg("failed to release job lock")
		}
	}()

	return job.Run(ctx)
}
