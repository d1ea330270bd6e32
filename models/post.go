package models

import (
	"time"

	"gorm.io/gorm"
)

// PostStatus is the lifecycle stage of a post. Transitions between
// statuses go through the workflow service only; nothing else writes
// the status column.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPending   PostStatus = "PENDING"
	PostStatusApproved  PostStatus = "APPROVED"
	PostStatusRejected  PostStatus = "REJECTED"
	PostStatusScheduled PostStatus = "SCHEDULED"
	PostStatusPublished PostStatus = "PUBLISHED"
)

// ValidPostStatus reports whether s is one of the known status values.
func ValidPostStatus(s PostStatus) bool {
	switch s {
	case PostStatusDraft, PostStatusPending, PostStatusApproved,
		PostStatusRejected, PostStatusScheduled, PostStatusPublished:
		return true
	}
	return false
}

// Post represents a social media post, personal (TeamID nil) or team-scoped.
type Post struct {
	gorm.Model

	Content     string     `gorm:"type:text;not null" json:"content"`
	MediaURL    *string    `json:"media_url,omitempty"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	Status      PostStatus `gorm:"default:'DRAFT';index" json:"status"`

	UserID uint  `gorm:"not null;index" json:"user_id"`
	TeamID *uint `gorm:"index" json:"team_id,omitempty"`

	// Relations
	User User  `json:"user,omitempty"`
	Team *Team `json:"team,omitempty"`
}
