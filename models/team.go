package models

import (
	"gorm.io/gorm"
)

// TeamRole governs what a member may do with team posts. VIEWER never
// grants edit, delete or approval rights.
type TeamRole string

const (
	TeamRoleOwner  TeamRole = "OWNER"
	TeamRoleAdmin  TeamRole = "ADMIN"
	TeamRoleMember TeamRole = "MEMBER"
	TeamRoleViewer TeamRole = "VIEWER"
)

// ValidMemberRole reports whether r can be assigned to an added member.
// OWNER is reserved for the team creator.
func ValidMemberRole(r TeamRole) bool {
	switch r {
	case TeamRoleAdmin, TeamRoleMember, TeamRoleViewer:
		return true
	}
	return false
}

// Team represents a group of users collaborating on posts
type Team struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	OwnerID uint   `gorm:"not null;index" json:"owner_id"`

	// Incoming webhook for team channel notifications (Slack/Discord style).
	WebhookURL *string `json:"webhook_url,omitempty"`

	// Relations
	Owner    User            `json:"owner,omitempty"`
	Members  []TeamMember    `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Accounts []SocialAccount `gorm:"foreignKey:TeamID" json:"accounts,omitempty"`
}

// TeamMember represents team members and their roles. At most one
// membership row exists per (team, user) pair.
type TeamMember struct {
	gorm.Model
	TeamID uint     `gorm:"not null;uniqueIndex:idx_team_member" json:"team_id"`
	UserID uint     `gorm:"not null;uniqueIndex:idx_team_member;index" json:"user_id"`
	Role   TeamRole `gorm:"default:'MEMBER'" json:"role"`

	// Relations
	Team Team `json:"-"`
	User User `json:"user,omitempty"`
}

// SocialAccount is a social platform account linked to a team. The access
// token is encrypted at rest in production deployments and never serialized.
type SocialAccount struct {
	gorm.Model
	TeamID   uint   `gorm:"not null;index" json:"team_id"`
	Platform string `gorm:"not null" json:"platform"` // twitter, facebook, instagram, linkedin
	Username string `gorm:"not null" json:"username"`
	Token    string `gorm:"not null" json:"-"`

	// Relations
	Team Team `json:"-"`
}

// Sanitize clears credential material before the account is returned to a client.
func (a *SocialAccount) Sanitize() {
	a.Token = ""
}
