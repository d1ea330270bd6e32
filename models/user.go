package models

import (
	"gorm.io/gorm"
)

// UserRole is the global account role. It is independent of per-team
// membership roles, which live on TeamMember.
type UserRole string

const (
	UserRoleStandard UserRole = "user"
	UserRoleAdmin    UserRole = "admin"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"default:'user'" json:"role"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Profile information
	Name *string `json:"name,omitempty"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations
	Posts       []Post       `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	Memberships []TeamMember `gorm:"foreignKey:UserID" json:"memberships,omitempty"`
}
