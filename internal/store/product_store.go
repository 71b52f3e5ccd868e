package store

import (
	"context"
	"errors"

	"autostock/internal/model"

	"gorm.io/gorm"
)

// ProductStore manages the per-business product catalog. Every method is
// scoped by business id; products owned by another business are reported as
// not found, never as forbidden.
type ProductStore struct {
	db *gorm.DB
}

func NewProductStore(db *gorm.DB) *ProductStore {
	return &ProductStore{db: db}
}

func validateProduct(p *model.Product) error {
	if p.Code == "" || p.Name == "" || !p.Price.IsPositive() || p.Quantity < 0 {
		return ErrInvalidInput
	}
	return nil
}

// Create adds a product. The code must be unique within the business; the
// same code may exist in other businesses.
func (s *ProductStore) Create(ctx context.Context, product *model.Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.Product{}).
		Where("business_id = ? AND code = ?", product.BusinessID, product.Code).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrDuplicateCode
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		// A concurrent writer can slip past the count check; the composite
		// unique index on (business_id, code) is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// Update rewrites a product's fields. The duplicate-code check excludes the
// product's own row.
func (s *ProductStore) Update(ctx context.Context, businessID, id uint, upd *model.Product) (*model.Product, error) {
	if err := validateProduct(upd); err != nil {
		return nil, err
	}

	var product model.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if upd.Code != product.Code {
		var count int64
		err := s.db.WithContext(ctx).Model(&model.Product{}).
			Where("business_id = ? AND code = ? AND id != ?", businessID, upd.Code, id).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateCode
		}
	}

	product.Code = upd.Code
	product.Name = upd.Name
	product.Category = upd.Category
	product.Price = upd.Price
	product.Quantity = upd.Quantity
	product.Supplier = upd.Supplier
	if err := s.db.WithContext(ctx).Save(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductStore) Delete(ctx context.Context, businessID, id uint) error {
	res := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessID).
		Delete(&model.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ProductStore) FindByID(ctx context.Context, businessID, id uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Where("id = ? AND business_id = ?", id, businessID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindByCode looks a product up by its business-scoped code.
func (s *ProductStore) FindByCode(ctx context.Context, businessID uint, code string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).
		Where("business_id = ? AND code = ?", businessID, code).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListByBusiness returns a business's products, optionally filtered by a
// search term against name, code and category.
func (s *ProductStore) ListByBusiness(ctx context.Context, businessID uint, search string) ([]model.Product, error) {
	query := s.db.WithContext(ctx).Where("business_id = ?", businessID)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR code LIKE ? OR category LIKE ?", like, like, like)
	}

	var products []model.Product
	err := query.Order("name").Find(&products).Error
	return products, err
}
