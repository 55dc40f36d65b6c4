package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"CancelDash/internal/config"
	"CancelDash/internal/dataset"
	"CancelDash/internal/logger"
	"CancelDash/internal/serviceiface"
)

type CronService struct {
	config  map[string]interface{}
	store   *dataset.Store
	exports *dataset.Exports
	cron    *cron.Cron
}

func NewCronService(cfg map[string]interface{}, store *dataset.Store, exports *dataset.Exports) serviceiface.Service {
	return &CronService{
		config:  cfg,
		store:   store,
		exports: exports,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

// retentionConfig layers services.yaml values over the environment defaults.
func (s *CronService) retentionConfig() *RetentionConfig {
	cfg := NewDefaultRetentionConfig()
	cfg.HistorySchedule = config.String(s.config, "history_schedule", cfg.HistorySchedule)
	cfg.HistoryDays = config.Int(s.config, "history_retention_days", cfg.HistoryDays)
	cfg.ExportSchedule = config.String(s.config, "export_sweep_schedule", cfg.ExportSchedule)
	cfg.TimeZone = config.String(s.config, "timezone", cfg.TimeZone)
	return cfg
}

func (s *CronService) Start() error {
	cfg := s.retentionConfig()

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Audit("invalid timezone, falling back to UTC", "timezone", cfg.TimeZone, "error", err)
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.HistorySchedule, func() {
		PruneUploadHistory(s.store, cfg.HistoryDays, time.Now().In(loc))
	})
	if err != nil {
		return fmt.Errorf("unable to schedule history retention: %w", err)
	}

	_, err = c.AddFunc(cfg.ExportSchedule, func() {
		SweepExports(s.exports)
	})
	if err != nil {
		return fmt.Errorf("unable to schedule export sweep: %w", err)
	}

	c.Start()
	s.cron = c
	logger.Audit("cron service started",
		"history_schedule", cfg.HistorySchedule,
		"history_days", cfg.HistoryDays,
		"export_schedule", cfg.ExportSchedule,
		"timezone", loc.String(),
	)
	return nil
}

func (s *CronService) Stop() error {
	if s.cron == nil {
		return nil
	}
	<-s.cron.Stop().Done()
	logger.L().Info("cron service stopped")
	return nil
}
