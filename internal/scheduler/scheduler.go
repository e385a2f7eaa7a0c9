package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the periodic status report.
type Scheduler struct {
	cron       *cron.Cron
	spec       string
	logger     *zap.Logger
	reportFunc func(ctx context.Context) error
}

// New creates a scheduler for a cron spec such as "@hourly" or "*/15 * * * *".
func New(spec string, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		spec:   spec,
		logger: logger,
	}
}

// SetReportFunction sets the job run on every tick.
func (s *Scheduler) SetReportFunction(f func(ctx context.Context) error) {
	s.reportFunc = f
}

// Run registers the report job and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.reportFunc == nil {
		return errors.New("scheduler: report function not set")
	}
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.reportFunc(ctx); err != nil {
			s.logger.Error("status report failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.spec))
	<-ctx.Done()
	s.Stop()
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// IsRunning reports whether a job is registered.
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
