package model

import (
	"time"

	"gorm.io/gorm"
)

// User roles stored on the account. Teacher/student status is not stored
// here; it is derived from the linked Teacher/Student record when the
// principal is resolved at authentication time.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents an authenticated account in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"index:idx_users_email,unique,where:deleted_at IS NULL;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'member'" json:"role"` // admin, member
	TokenVersion int            `gorm:"default:0" json:"-"`                            // Increment to invalidate all user tokens

	// Relationships
	TokenBlacklist []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
