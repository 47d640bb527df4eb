/**
 * @description
 * Cron scheduler driving the in-process renewal cadence. The same renewal
 * runner also backs the externally triggered HTTP endpoint; both paths are
 * stateless invocations over the persisted work queue.
 */
package app

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler manages the renewal cron job.
type Scheduler struct {
	cron     *cron.Cron
	runner   *RenewalRunner
	logger   *slog.Logger
	schedule string
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(runner *RenewalRunner, logger *slog.Logger, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		runner:   runner,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the renewal job and starts the cron scheduler.
func (s *Scheduler) Start() {
	if _, err := s.cron.AddFunc(s.schedule, s.runRenewalJob); err != nil {
		s.logger.Error("failed to schedule renewal job", "schedule", s.schedule, "error", err)
	} else {
		s.logger.Info("scheduled renewal job", "schedule", s.schedule)
	}

	s.cron.Start()
}

// Stop gracefully stops the cron scheduler.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runRenewalJob() {
	s.logger.Info("starting scheduled renewal run")
	ctx := context.Background()

	summary, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("scheduled renewal run failed", "error", err)
		return
	}

	s.logger.Info("scheduled renewal run finished",
		"evaluated", summary.Evaluated,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
	)
}
