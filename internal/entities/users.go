package entities

import (
	"time"

	"gorm.io/gorm"
)

type StaffRole string

const (
	StaffRoleAdmin     StaffRole = "admin"
	StaffRoleLibrarian StaffRole = "librarian"
	StaffRoleAssistant StaffRole = "assistant"
)

var staffRoleRank = map[StaffRole]int{
	StaffRoleAssistant: 1,
	StaffRoleLibrarian: 2,
	StaffRoleAdmin:     3,
}

// StaffUser is a library staff account used to operate the application.
type StaffUser struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"uniqueIndex;size:50" json:"username"`
	Email         string     `gorm:"uniqueIndex;size:100" json:"email"`
	PhoneNumber   string     `gorm:"size:100" json:"phone_number,omitempty"`
	PasswordHash  string     `gorm:"size:128" json:"-"`
	Role          StaffRole  `gorm:"size:20;default:'assistant'" json:"role"`
	FullName      string     `gorm:"size:100" json:"full_name"`
	IsActive      bool       `gorm:"default:true" json:"is_active"`
	LastLogin     *time.Time `json:"last_login,omitempty"`
	LoginAttempts int        `gorm:"default:0" json:"-"`
	LockedUntil   *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// HasPermission reports whether the user's role meets the required level.
func (u StaffUser) HasPermission(required StaffRole) bool {
	return staffRoleRank[u.Role] >= staffRoleRank[required]
}

func (StaffUser) TableName() string { return "staff_users" }
