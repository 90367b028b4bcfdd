package scheduler

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper removes expired sessions
type Sweeper interface {
	Sweep(now time.Time) int
}

// Scheduler runs the periodic session sweep.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *slog.Logger
}

// NewScheduler creates a scheduler for the given sweeper.
func NewScheduler(sweeper Sweeper, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		logger:  logger,
	}
}

// RegisterSweep schedules the sweep every interval.
func (s *Scheduler) RegisterSweep(interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", interval), s.SweepNow); err != nil {
		return fmt.Errorf("register session sweep: %w", err)
	}
	return nil
}

// SweepNow runs one sweep immediately.
func (s *Scheduler) SweepNow() {
	if removed := s.sweeper.Sweep(time.Now()); removed > 0 {
		s.logger.Info("swept expired sessions", "removed", removed)
	}
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
