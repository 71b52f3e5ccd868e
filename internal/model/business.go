package model

import (
	"time"

	"gorm.io/gorm"
)

// Subscription states for a business.
const (
	SubscriptionActive    = "active"
	SubscriptionSuspended = "suspended"
	SubscriptionExpired   = "expired"
)

// Business is one subscribing shop and the unit of data isolation. It owns
// users, products, sales and notifications.
type Business struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	Name               string         `json:"name" gorm:"type:varchar(100);not null"`
	Owner              string         `json:"owner" gorm:"type:varchar(100);not null"`
	PlanID             *uint          `json:"plan_id,omitempty" gorm:"index"`
	SubscriptionStatus string         `json:"subscription_status" gorm:"type:varchar(20);not null;default:'active'"`
	ExpiresAt          *time.Time     `json:"expires_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}
