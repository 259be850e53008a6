package jobs

import (
	"nft-rental-backend/internal/config"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository"
	"nft-rental-backend/internal/service"
)

// JobRunner coordinates the scheduled jobs. Jobs only read listings and
// write notifications; no job ever moves an asset or funds — every custody
// movement needs an explicitly authorized transition.
type JobRunner struct {
	store  repository.Store
	clock  service.Clock
	config *config.Config
}

func NewJobRunner(store repository.Store, clock service.Clock, cfg *config.Config) *JobRunner {
	return &JobRunner{store: store, clock: clock, config: cfg}
}

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

// RunAllJobs runs every job once (for manual execution)
func (jr *JobRunner) RunAllJobs() {
	jr.SendExpiryReminders()
	jr.NotifyClaimable()
}
