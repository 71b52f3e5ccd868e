package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles determine which operations a user may perform.
const (
	RoleSuperAdmin = "superadmin" // platform operator, not bound to a business
	RoleAdmin      = "admin"      // administers exactly one business
	RoleSeller     = "seller"     // records sales for one business
)

// User account states.
const (
	UserActive   = "active"
	UserInactive = "inactive"
)

// User represents a login identity. BusinessID is nil only for superadmins.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	Role         string         `json:"role" gorm:"type:varchar(20);not null"`
	BusinessID   *uint          `json:"business_id,omitempty" gorm:"index"`
	Status       string         `json:"status" gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
