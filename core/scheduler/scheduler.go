package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"dispatch-console/config"
	"dispatch-console/core/reports"
	"dispatch-console/core/store"
	"dispatch-console/core/utils"
)

// Scheduler runs the background maintenance jobs: the retention sweep that
// converges cancelled reports onto the archive flag, and expired session
// cleanup.
type Scheduler struct {
	cron     *cron.Cron
	cfg      config.SchedulerConfig
	bench    *reports.Workbench
	sessions store.SessionStore
	log      *utils.Logger
}

func New(cfg config.SchedulerConfig, bench *reports.Workbench, sessions store.SessionStore, log *utils.Logger) *Scheduler {
	if log == nil {
		log = utils.NewLogger()
	}
	return &Scheduler{
		cron:     cron.New(),
		cfg:      cfg,
		bench:    bench,
		sessions: sessions,
		log:      log,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Printf("scheduler disabled")
		return nil
	}
	spec := s.cfg.RetentionSpec
	if spec == "" {
		spec = "@hourly"
	}
	if _, err := s.cron.AddFunc(spec, func() { s.runRetention(ctx) }); err != nil {
		return fmt.Errorf("retention schedule %q: %w", spec, err)
	}
	if _, err := s.cron.AddFunc("@every 15m", func() { s.runSessionCleanup(ctx) }); err != nil {
		return fmt.Errorf("session cleanup schedule: %w", err)
	}
	s.cron.Start()
	s.log.Printf("scheduler started, retention %q", spec)
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) runRetention(ctx context.Context) {
	if _, err := s.bench.SweepCancelled(ctx); err != nil {
		s.log.Errorf("retention sweep: %v", err)
	}
}

func (s *Scheduler) runSessionCleanup(ctx context.Context) {
	n, err := s.sessions.DeleteExpired(ctx, utils.NowUTC())
	if err != nil {
		s.log.Errorf("session cleanup: %v", err)
		return
	}
	if n > 0 {
		s.log.Printf("removed %d expired sessions", n)
	}
}
