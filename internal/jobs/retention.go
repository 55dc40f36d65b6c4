package jobs

import (
	"os"
	"strconv"
	"time"

	"CancelDash/internal/config"
	"CancelDash/internal/dataset"
	"CancelDash/internal/logger"
)

// RetentionConfig holds the schedules for in-memory housekeeping.
type RetentionConfig struct {
	HistorySchedule string // Cron schedule for upload history pruning
	HistoryDays     int    // Entries older than this many days are dropped
	ExportSchedule  string // Cron schedule for expired export removal
	TimeZone        string
}

// NewDefaultRetentionConfig reads overrides from the environment.
func NewDefaultRetentionConfig() *RetentionConfig {
	cfg := &RetentionConfig{
		HistorySchedule: config.DefaultHistorySchedule,
		HistoryDays:     config.DefaultHistoryRetentionDays,
		ExportSchedule:  config.DefaultExportSweepSchedule,
		TimeZone:        config.DefaultTimeZone,
	}
	if s := os.Getenv("HISTORY_RETENTION_SCHEDULE"); s != "" {
		cfg.HistorySchedule = s
	}
	if d := os.Getenv("HISTORY_RETENTION_DAYS"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			cfg.HistoryDays = parsed
		}
	}
	if s := os.Getenv("EXPORT_SWEEP_SCHEDULE"); s != "" {
		cfg.ExportSchedule = s
	}
	return cfg
}

// PruneUploadHistory drops history entries older than days, measured from now.
func PruneUploadHistory(store *dataset.Store, days int, now time.Time) int {
	cutoff := now.AddDate(0, 0, -days)
	removed := store.PruneHistory(cutoff)
	logger.Audit("upload history pruned", "removed", removed, "cutoff", cutoff.Format(time.RFC3339))
	return removed
}

// SweepExports removes export downloads whose token has expired.
func SweepExports(exports *dataset.Exports) int {
	removed := exports.Purge()
	if removed > 0 {
		logger.Audit("expired exports removed", "removed", removed)
	}
	return removed
}
