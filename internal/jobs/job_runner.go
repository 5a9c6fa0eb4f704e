package jobs

import (
	"buyback-backend/internal/carrier"
	"buyback-backend/internal/config"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/repository"
	"buyback-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	quoteRepo    repository.QuoteRepository
	orderRepo    repository.OrderRepository
	shipmentRepo repository.ShipmentRepository
	orderSvc     service.OrderService
	noteSvc      service.NotificationService
	carrier      carrier.Client
	config       *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	quoteRepo repository.QuoteRepository,
	orderRepo repository.OrderRepository,
	shipmentRepo repository.ShipmentRepository,
	orderSvc service.OrderService,
	noteSvc service.NotificationService,
	carrierClient carrier.Client,
	cfg *config.Config,
) *JobRunner {
	return &JobRunner{
		quoteRepo:    quoteRepo,
		orderRepo:    orderRepo,
		shipmentRepo: shipmentRepo,
		orderSvc:     orderSvc,
		noteSvc:      noteSvc,
		carrier:      carrierClient,
		config:       cfg,
	}
}

// Config returns the loaded configuration (used by the scheduler)
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAll runs every job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ExpireQuotes()
	jr.ExpireDecisionWindows()
	jr.RefreshTracking()
	jr.DispatchOutbox()
}
