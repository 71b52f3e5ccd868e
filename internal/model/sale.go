package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an append-only record of one stock-decreasing transaction. The
// unit price is copied from the product at sale time so later price edits
// cannot rewrite history. Sales are never updated or deleted.
type Sale struct {
	ID         uint            `json:"id" gorm:"primaryKey"`
	BusinessID uint            `json:"business_id" gorm:"index;not null"`
	ProductID  uint            `json:"product_id" gorm:"index;not null"`
	SellerID   uint            `json:"seller_id" gorm:"index;not null"`
	Quantity   int             `json:"quantity" gorm:"not null"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:numeric(12,2);not null"`
	Total      decimal.Decimal `json:"total" gorm:"type:numeric(12,2);not null"`
	CreatedAt  time.Time       `json:"created_at"`
}
