package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/auth-gateway/internal/models"
	"gorm.io/gorm"
)

const cleanupInterval = 24 * time.Hour

// PurgeSystemLogs deletes system_logs recorded before now minus retention.
func PurgeSystemLogs(ctx context.Context, db *gorm.DB, retention time.Duration, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Where("timestamp < ?", now.Add(-retention)).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}

// StartCleanup purges expired system logs once a day until ctx is done.
func StartCleanup(ctx context.Context, db *gorm.DB, retentionDays int) {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := PurgeSystemLogs(ctx, db, retention, time.Now())
				if err != nil {
					slog.Error("log cleanup failed", "action", "log_cleanup", "error", err.Error())
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "action", "log_cleanup", "deleted", deleted)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
