package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role is the coarse permission class of an account.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// UserStatus gates whether an account may write.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
	StatusBanned    UserStatus = "banned"
)

// Valid reports whether s is a known account status.
func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusBanned:
		return true
	}
	return false
}

// MaxStrikes is the strike count at which an account is suspended.
const MaxStrikes = 3

// User is a platform account. Users are never hard-deleted.
type User struct {
	ID           string                      `gorm:"primaryKey;size:36" json:"id"`
	Name         string                      `gorm:"size:100;not null" json:"name"`
	Email        string                      `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string                      `gorm:"size:255" json:"-"`
	Role         Role                        `gorm:"size:16;not null;default:student;index" json:"role"`
	Status       UserStatus                  `gorm:"size:16;not null;default:active;index" json:"status"`
	Strikes      int                         `gorm:"not null;default:0" json:"strikes"`
	Points       int                         `gorm:"not null;default:0;index" json:"points"`
	Verified     bool                        `gorm:"not null;default:false" json:"verified"`
	Bio          string                      `gorm:"size:500" json:"bio"`
	School       string                      `gorm:"size:160" json:"school"`
	Subjects     datatypes.JSONSlice[string] `json:"subjects"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
}

// BeforeCreate fills the id and timestamps when the caller left them empty.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// IsVerifiedTeacher reports whether answers by u are approved on creation.
func (u *User) IsVerifiedTeacher() bool {
	return u.Role == RoleTeacher && u.Verified
}

// UserSummary is the public projection embedded next to authored content.
type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
	Points   int    `json:"points"`
	Verified bool   `json:"verified"`
}

// Summary returns the public projection of u.
func (u *User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Role: u.Role, Points: u.Points, Verified: u.Verified}
}
