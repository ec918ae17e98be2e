package jobs

import (
	"time"

	"fleetrent-backend/internal/config"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository"
	"fleetrent-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookings repository.BookingRepository
	services *Services
	config   *config.Config
	now      func() time.Time
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Booking service.BookingService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(bookings repository.BookingRepository, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		bookings: bookings,
		services: services,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Config returns the configuration the runner was built with
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

// RunAll runs every housekeeping job once (for manual execution)
func (jr *JobRunner) RunAll() {
	jr.ReconcileIncompleteBookings()
	jr.ExpireUnconfirmedBookings()
}
