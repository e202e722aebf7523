package model

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account in the public schema. Tenant membership is
// resolved separately; the control plane only verifies credentials here.
type User struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Username  string         `json:"username" gorm:"type:varchar(150);uniqueIndex"`
	Email     string         `json:"email" gorm:"type:varchar(254)"`
	Password  string         `json:"-" gorm:"type:varchar(255)"`
	IsAdmin   bool           `json:"is_admin" gorm:"default:false"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserProfile holds per-user state that is not identity data. One row per
// user, created together with the user. LastLoginEmail drives the 24-hour
// login notification throttle.
type UserProfile struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	UserID         uint       `json:"user_id" gorm:"uniqueIndex;not null"`
	LastLoginEmail *time.Time `json:"last_login_email,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
