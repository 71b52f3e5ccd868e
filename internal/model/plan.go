package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Plan is a subscription tier referenced by zero or more businesses.
type Plan struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	Name         string          `json:"name" gorm:"type:varchar(100);not null"`
	Description  string          `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	DurationDays int             `json:"duration_days" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
