package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"autostock/internal/model"
	"autostock/prometheus"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleStore appends sale records. A sale and its stock decrement are one
// unit of work; neither is ever visible without the other.
type SaleStore struct {
	db *gorm.DB
}

func NewSaleStore(db *gorm.DB) *SaleStore {
	return &SaleStore{db: db}
}

// RecordSale sells quantity units of a product on behalf of a seller.
// Preconditions are checked in order: positive quantity, product in the
// business, sufficient stock, seller in the business with the seller role.
// The decrement is a conditional update guarded by the current stock level,
// so two racing sales can never drive the quantity negative: the loser's
// update matches zero rows and the whole transaction rolls back with
// ErrInsufficientStock. When notify is set a notification for the business
// admins is written in the same transaction.
func (s *SaleStore) RecordSale(ctx context.Context, businessID, productID, sellerID uint, quantity int, notify bool) (*model.Sale, error) {
	if quantity <= 0 {
		return nil, ErrInvalidInput
	}
	defer prometheus.TrackDBOperation("record_sale")(time.Now())

	var sale model.Sale
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product model.Product
		err := tx.Where("id = ? AND business_id = ?", productID, businessID).First(&product).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if product.Quantity < quantity {
			return ErrInsufficientStock
		}

		var seller model.User
		err = tx.Where("id = ? AND business_id = ? AND role = ?", sellerID, businessID, model.RoleSeller).
			First(&seller).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		sale = model.Sale{
			BusinessID: businessID,
			ProductID:  product.ID,
			SellerID:   seller.ID,
			Quantity:   quantity,
			UnitPrice:  product.Price,
			Total:      product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Product{}).
			Where("id = ? AND quantity >= ?", product.ID, quantity).
			Update("quantity", gorm.Expr("quantity - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent sale took the stock between our read and the update.
			return ErrInsufficientStock
		}

		if notify {
			notification := model.Notification{
				BusinessID: businessID,
				SellerID:   seller.ID,
				ProductID:  product.ID,
				Quantity:   quantity,
				Message:    fmt.Sprintf("%s sold %d x %s", seller.Username, quantity, product.Name),
			}
			if err := tx.Create(&notification).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// ListByBusiness returns a business's sales, newest first. A non-positive
// limit returns all of them.
func (s *SaleStore) ListByBusiness(ctx context.Context, businessID uint, limit int) ([]model.Sale, error) {
	query := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sales []model.Sale
	err := query.Find(&sales).Error
	return sales, err
}

// ListBySeller returns one seller's sales, newest first.
func (s *SaleStore) ListBySeller(ctx context.Context, businessID, sellerID uint, limit int) ([]model.Sale, error) {
	query := s.db.WithContext(ctx).
		Where("business_id = ? AND seller_id = ?", businessID, sellerID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var sales []model.Sale
	err := query.Find(&sales).Error
	return sales, err
}
