package services

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"postpilot/models"
	"postpilot/utils"
)

// ActivityService records post lifecycle events and exposes the team
// activity feed.
type ActivityService struct {
	DB       *gorm.DB
	Notifier Notifier
	Logger   *logrus.Logger
}

func NewActivityService(db *gorm.DB, notifier Notifier, logger *logrus.Logger) *ActivityService {
	return &ActivityService{DB: db, Notifier: notifier, Logger: logger}
}

// Log writes an activity row for a post event. Best-effort: a failed insert
// is logged and swallowed so it never fails the operation being recorded.
// Team events are mirrored to the team's webhook channel.
func (as *ActivityService) Log(action models.ActivityAction, status string, userID uint, post *models.Post) {
	entry := models.ActivityLog{
		Action: action,
		Status: status,
		UserID: userID,
	}
	if post != nil {
		entry.PostID = &post.ID
		entry.TeamID = post.TeamID
	}

	if err := as.DB.Create(&entry).Error; err != nil {
		as.Logger.WithError(err).WithField("action", action).
			Warn("failed to record activity")
		return
	}

	if entry.TeamID != nil {
		as.Notifier.NotifyWebhook(*entry.TeamID, fmt.Sprintf("Team activity: %s %s", action, status))
	}
}

// GetTeamActivities returns a team's activity feed, newest first. The caller
// must be a member of the team.
func (as *ActivityService) GetTeamActivities(teamID, callerID uint) ([]models.ActivityLog, error) {
	member, err := findMembership(as.DB, teamID, callerID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, utils.NewAuthorizationError("Not authorized to view team activities")
	}

	var entries []models.ActivityLog
	if err := as.DB.Where("team_id = ?", teamID).
		Order("created_at DESC").
		Limit(100).
		Find(&entries).Error; err != nil {
		return nil, utils.NewInternalError(err)
	}
	return entries, nil
}
