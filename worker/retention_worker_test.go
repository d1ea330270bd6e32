package worker

import (
	"io"
	"log"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"postpilot/config"
	"postpilot/models"
)

func TestPrune(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	now := time.Now()
	old := now.Add(-60 * 24 * time.Hour)
	veryOld := now.Add(-120 * 24 * time.Hour)

	rows := []models.Notification{
		{UserID: 1, Message: "old and read", ReadAt: &now},
		{UserID: 1, Message: "old but unread"},
		{UserID: 1, Message: "recent and read", ReadAt: &now},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("failed to seed notification: %v", err)
		}
	}
	// Backdate the first two past the retention window
	for _, id := range []uint{rows[0].ID, rows[1].ID} {
		db.Model(&models.Notification{}).Where("id = ?", id).
			Update("created_at", old)
	}

	activities := []models.ActivityLog{
		{Action: models.ActivityPostCreate, Status: models.ActivityStatusSuccess, UserID: 1},
		{Action: models.ActivityPostUpdate, Status: models.ActivityStatusSuccess, UserID: 1},
	}
	for i := range activities {
		if err := db.Create(&activities[i]).Error; err != nil {
			t.Fatalf("failed to seed activity: %v", err)
		}
	}
	db.Model(&models.ActivityLog{}).Where("id = ?", activities[0].ID).
		Update("created_at", veryOld)

	rw := NewRetentionWorker(db, log.New(io.Discard, "", 0))
	rw.prune()

	var notifications []models.Notification
	if err := db.Find(&notifications).Error; err != nil {
		t.Fatalf("failed to list notifications: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("got %d notifications, want 2 (unread old + recent read)", len(notifications))
	}
	for _, n := range notifications {
		if n.ID == rows[0].ID {
			t.Error("old read notification survived pruning")
		}
	}

	var remaining int64
	db.Model(&models.ActivityLog{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("got %d activity rows, want 1", remaining)
	}
}
