package model

import "time"

// Notification tells a business admin that a seller recorded a sale. It is
// written in the same transaction as the sale itself.
type Notification struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BusinessID uint      `json:"business_id" gorm:"index;not null"`
	SellerID   uint      `json:"seller_id" gorm:"not null"`
	ProductID  uint      `json:"product_id" gorm:"not null"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Message    string    `json:"message" gorm:"type:varchar(255);not null"`
	Read       bool      `json:"read" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
}
