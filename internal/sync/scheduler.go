package sync

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

const dateLayout = "2006-01-02"

// SchedulerConfig holds the cron specs and caps for the scheduled triggers.
// These are policy parameters, not sync logic.
type SchedulerConfig struct {
	// DailySpec triggers a full window sync (today..today+WindowDays)
	// followed by a capped logo backfill.
	DailySpec string

	// LiveSpec triggers a same-day window sync for live score refresh.
	LiveSpec string

	WindowDays int
	LogoLimit  int
}

// Scheduler drives the Worker from cron triggers. A trigger is skipped when
// the previous run of the same job is still active; overlap across jobs is
// fine since upserts are idempotent.
type Scheduler struct {
	cfg    SchedulerConfig
	worker *Worker
	cron   *cron.Cron
	logger *slog.Logger

	dailyRunning atomic.Bool
	liveRunning  atomic.Bool
}

// NewScheduler creates a Scheduler around a Worker.
func NewScheduler(cfg SchedulerConfig, worker *Worker, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cfg:    cfg,
		worker: worker,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers the cron entries and starts the scheduler. The jobs run
// until Stop or ctx cancellation.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.DailySpec, func() { s.runDaily(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.LiveSpec, func() { s.runLive(ctx) }); err != nil {
		return err
	}

	s.logger.Info("Sync scheduler started",
		"daily", s.cfg.DailySpec, "live", s.cfg.LiveSpec,
		"window_days", s.cfg.WindowDays, "logo_limit", s.cfg.LogoLimit)
	s.cron.Start()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop stops the cron scheduler. Running jobs finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Sync scheduler stopped")
}

// runDaily syncs the upcoming window and backfills a batch of logos.
func (s *Scheduler) runDaily(ctx context.Context) {
	if !s.dailyRunning.CompareAndSwap(false, true) {
		s.logger.Info("Daily sync still running, skipping trigger")
		return
	}
	defer s.dailyRunning.Store(false)

	today := time.Now().UTC()
	from := today.Format(dateLayout)
	to := today.AddDate(0, 0, s.cfg.WindowDays).Format(dateLayout)

	s.worker.SyncFixtures(ctx, from, to, nil)
	if s.worker.mirror != nil {
		if _, err := s.worker.SyncTeamLogos(ctx, s.cfg.LogoLimit); err != nil {
			s.logger.Error("Scheduled logo backfill failed", "error", err)
		}
	}
}

// runLive refreshes today's fixtures only (live score updates).
func (s *Scheduler) runLive(ctx context.Context) {
	if !s.liveRunning.CompareAndSwap(false, true) {
		return
	}
	defer s.liveRunning.Store(false)

	today := time.Now().UTC().Format(dateLayout)
	s.worker.SyncFixtures(ctx, today, today, nil)
}
