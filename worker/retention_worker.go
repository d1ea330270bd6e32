package worker

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"postpilot/models"
)

// Retention windows for housekeeping. Read notifications and old activity
// rows are pruned; unread notifications are kept indefinitely.
const (
	notificationRetention = 30 * 24 * time.Hour
	activityRetention     = 90 * 24 * time.Hour
)

// RetentionWorker prunes aged notification and activity rows in the
// background.
type RetentionWorker struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRetentionWorker(db *gorm.DB, logger *log.Logger) *RetentionWorker {
	return &RetentionWorker{DB: db, Logger: logger}
}

func (rw *RetentionWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	rw.Logger.Println("Retention worker started")

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			rw.Logger.Println("Retention worker shutting down...")
			return
		case <-ticker.C:
			rw.prune()
		}
	}
}

func (rw *RetentionWorker) prune() {
	cutoff := time.Now().Add(-notificationRetention)
	res := rw.DB.Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&models.Notification{})
	if res.Error != nil {
		rw.Logger.Printf("Error pruning notifications: %v", res.Error)
	} else if res.RowsAffected > 0 {
		rw.Logger.Printf("Pruned %d read notifications", res.RowsAffected)
	}

	cutoff = time.Now().Add(-activityRetention)
	res = rw.DB.Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if res.Error != nil {
		rw.Logger.Printf("Error pruning activity logs: %v", res.Error)
	} else if res.RowsAffected > 0 {
		rw.Logger.Printf("Pruned %d activity entries", res.RowsAffected)
	}
}
