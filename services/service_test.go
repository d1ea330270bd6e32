package services

import (
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"postpilot/config"
	"postpilot/models"
)

// recordingNotifier captures dispatched notifications so tests can assert on
// fan-out without a running dispatcher.
type recordingNotifier struct {
	mu       sync.Mutex
	messages map[uint][]string
	webhooks map[uint][]string
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		messages: make(map[uint][]string),
		webhooks: make(map[uint][]string),
	}
}

func (rn *recordingNotifier) Notify(userID uint, message string) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.messages[userID] = append(rn.messages[userID], message)
}

func (rn *recordingNotifier) NotifyWebhook(teamID uint, message string) {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	rn.webhooks[teamID] = append(rn.webhooks[teamID], message)
}

func (rn *recordingNotifier) userMessages(userID uint) []string {
	rn.mu.Lock()
	defer rn.mu.Unlock()
	return append([]string(nil), rn.messages[userID]...)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps the in-memory database alive and shared.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := config.MigrateDB(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "not-a-real-hash",
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return &user
}

// createTeam creates a team plus the creator's OWNER membership, mirroring
// TeamService.CreateTeam without going through it.
func createTeam(t *testing.T, db *gorm.DB, owner *models.User) *models.Team {
	t.Helper()
	team := models.Team{Name: "Test Team", OwnerID: owner.ID}
	if err := db.Create(&team).Error; err != nil {
		t.Fatalf("failed to create team: %v", err)
	}
	addMember(t, db, team.ID, owner.ID, models.TeamRoleOwner)
	return &team
}

func addMember(t *testing.T, db *gorm.DB, teamID, userID uint, role models.TeamRole) *models.TeamMember {
	t.Helper()
	member := models.TeamMember{TeamID: teamID, UserID: userID, Role: role}
	if err := db.Create(&member).Error; err != nil {
		t.Fatalf("failed to create membership: %v", err)
	}
	return &member
}

func createPost(t *testing.T, db *gorm.DB, userID uint, teamID *uint, status models.PostStatus) *models.Post {
	t.Helper()
	post := models.Post{
		Content: "hello world",
		Status:  status,
		UserID:  userID,
		TeamID:  teamID,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return &post
}

func reloadPost(t *testing.T, db *gorm.DB, postID uint) *models.Post {
	t.Helper()
	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		t.Fatalf("failed to reload post %d: %v", postID, err)
	}
	return &post
}

func newWorkflowService(db *gorm.DB, notifier Notifier) *WorkflowService {
	logger := testLogger()
	return NewWorkflowService(db, notifier, NewActivityService(db, notifier, logger), logger)
}

func newPostService(db *gorm.DB, notifier Notifier) *PostService {
	logger := testLogger()
	return NewPostService(db, NewActivityService(db, notifier, logger), logger)
}
