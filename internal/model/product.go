package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product belongs to exactly one business. Code is unique within that
// business only; the same code may exist in other businesses.
type Product struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	BusinessID uint            `json:"business_id" gorm:"uniqueIndex:idx_products_business_code;not null"`
	Code       string          `json:"code" gorm:"type:varchar(100);uniqueIndex:idx_products_business_code;not null"`
	Name       string          `json:"name" gorm:"type:varchar(255);not null"`
	Category   string          `json:"category" gorm:"type:varchar(100)"`
	Price      decimal.Decimal `json:"price" gorm:"type:numeric(12,2);not null"`
	Quantity   int             `json:"quantity" gorm:"not null;default:0"`
	Supplier   string          `json:"supplier" gorm:"type:varchar(100)"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
