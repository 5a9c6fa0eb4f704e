package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"buyback-backend/internal/jobs"
	"buyback-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	// Create cron with UTC timezone and seconds precision
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	_, err := s.cron.AddFunc(cfg.ExpireQuotes, s.jobs.ExpireQuotes)
	if err != nil {
		logger.Error("Failed to register ExpireQuotes job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.ExpireDecisionWindows, s.jobs.ExpireDecisionWindows)
	if err != nil {
		logger.Error("Failed to register ExpireDecisionWindows job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.RefreshTracking, s.jobs.RefreshTracking)
	if err != nil {
		logger.Error("Failed to register RefreshTracking job", "error", err)
	}

	_, err = s.cron.AddFunc(cfg.DispatchOutbox, s.jobs.DispatchOutbox)
	if err != nil {
		logger.Error("Failed to register DispatchOutbox job", "error", err)
	}
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting scheduler")
	s.cron.Start()
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
