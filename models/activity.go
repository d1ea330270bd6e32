package models

import (
	"time"

	"gorm.io/gorm"
)

// ActivityAction identifies a post lifecycle event in the activity feed.
type ActivityAction string

const (
	ActivityPostCreate  ActivityAction = "POST_CREATE"
	ActivityPostUpdate  ActivityAction = "POST_UPDATE"
	ActivityPostDelete  ActivityAction = "POST_DELETE"
	ActivityPostSubmit  ActivityAction = "POST_SUBMIT"
	ActivityPostApprove ActivityAction = "POST_APPROVE"
	ActivityPostReject  ActivityAction = "POST_REJECT"
)

const (
	ActivityStatusSuccess = "success"
	ActivityStatusFailed  = "failed"
)

// ActivityLog records who did what to which post. Written best-effort;
// a failed insert never fails the operation that produced it.
type ActivityLog struct {
	gorm.Model
	Action  ActivityAction `gorm:"not null;index" json:"action"`
	Status  string         `gorm:"not null" json:"status"` // success, failed
	UserID  uint           `gorm:"not null;index" json:"user_id"`
	TeamID  *uint          `gorm:"index" json:"team_id,omitempty"`
	PostID  *uint          `gorm:"index" json:"post_id,omitempty"`
	Details string         `gorm:"type:text" json:"details,omitempty"`
}

// Notification is an in-app notification row. Delivery over other channels
// (email, webhook, websocket) is best-effort and tracked on the dispatcher,
// not here.
type Notification struct {
	gorm.Model
	UserID  uint       `gorm:"not null;index" json:"user_id"`
	Message string     `gorm:"type:text;not null" json:"message"`
	ReadAt  *time.Time `json:"read_at,omitempty"`
}
