package scheduler

import (
	"context"
	"time"

	"github.com/brandpulse/reputation-monitor/internal/engine"
	"github.com/brandpulse/reputation-monitor/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service schedules the background sweeps that do not belong to the
// per-ingest path: the response-SLA check, the daily sentiment trend
// rollup, and the daily archive export.
type Service struct {
	engine   *engine.Service
	archiver storage.Archiver
	cron     *cron.Cron
}

// NewService creates a scheduler. A nil archiver disables the archive job.
func NewService(engineService *engine.Service, archiver storage.Archiver) *Service {
	return &Service{
		engine:   engineService,
		archiver: archiver,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start registers and starts the scheduled jobs.
func (s *Service) Start() error {
	// Response-SLA sweep at the top of every hour.
	_, err := s.cron.AddFunc("0 0 * * * *", func() {
		logrus.Info("Starting response SLA sweep")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := s.engine.RunResponseSLACheck(ctx); err != nil {
			logrus.Errorf("Response SLA sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	// Trend rollup for the previous day, shortly after midnight UTC.
	_, err = s.cron.AddFunc("0 15 0 * * *", func() {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		logrus.Infof("Starting sentiment trend rollup for %s", yesterday.Format("2006-01-02"))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.engine.RollupDailyTrends(ctx, yesterday); err != nil {
			logrus.Errorf("Trend rollup failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	// Archive export for the previous day, after the rollup.
	if s.archiver != nil {
		_, err = s.cron.AddFunc("0 30 0 * * *", func() {
			yesterday := time.Now().UTC().AddDate(0, 0, -1)
			logrus.Infof("Starting archive export for %s", yesterday.Format("2006-01-02"))
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()
			if err := s.engine.ExportDailyArchive(ctx, s.archiver, yesterday); err != nil {
				logrus.Errorf("Archive export failed: %v", err)
			}
		})
		if err != nil {
			return err
		}
	}

	s.cron.Start()
	logrus.Info("Scheduler started (hourly SLA sweep, daily rollup and archive)")
	return nil
}

// Stop stops the scheduler.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
