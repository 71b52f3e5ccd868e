package store

import (
	"context"
	"errors"
	"time"

	"autostock/internal/model"
	"autostock/prometheus"

	"gorm.io/gorm"
)

// BusinessStore manages tenant businesses and their subscription lifecycle.
type BusinessStore struct {
	db *gorm.DB
}

func NewBusinessStore(db *gorm.DB) *BusinessStore {
	return &BusinessStore{db: db}
}

// CreateWithAdmin registers a business on a plan together with its admin
// account, in one transaction. The admin gets a generated temporary password
// that is returned exactly once; the subscription starts active and expires
// after the plan's duration.
func (s *BusinessStore) CreateWithAdmin(ctx context.Context, name, owner string, planID uint, adminUsername string) (*model.Business, *model.User, string, error) {
	if name == "" || owner == "" || adminUsername == "" {
		return nil, nil, "", ErrInvalidInput
	}
	defer prometheus.TrackDBOperation("create_business")(time.Now())

	temp := GenerateTempPassword()
	hash, err := HashPassword(temp)
	if err != nil {
		return nil, nil, "", err
	}

	var business model.Business
	var admin model.User

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var plan model.Plan
		if err := tx.First(&plan, planID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPlanNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&model.User{}).Where("username = ?", adminUsername).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateUsername
		}

		expiresAt := time.Now().AddDate(0, 0, plan.DurationDays)
		business = model.Business{
			Name:               name,
			Owner:              owner,
			PlanID:             &plan.ID,
			SubscriptionStatus: model.SubscriptionActive,
			ExpiresAt:          &expiresAt,
		}
		if err := tx.Create(&business).Error; err != nil {
			return err
		}

		admin = model.User{
			Username:     adminUsername,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
			BusinessID:   &business.ID,
			Status:       model.UserActive,
		}
		if err := tx.Create(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateUsername
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, nil, "", err
	}
	return &business, &admin, temp, nil
}

func (s *BusinessStore) FindByID(ctx context.Context, id uint) (*model.Business, error) {
	var business model.Business
	if err := s.db.WithContext(ctx).First(&business, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &business, nil
}

func (s *BusinessStore) List(ctx context.Context) ([]model.Business, error) {
	var businesses []model.Business
	err := s.db.WithContext(ctx).Order("id").Find(&businesses).Error
	return businesses, err
}

// SetSubscriptionStatus moves a business between active, suspended and
// expired. A non-active business blocks its users at the authorization gate.
func (s *BusinessStore) SetSubscriptionStatus(ctx context.Context, id uint, status string) error {
	switch status {
	case model.SubscriptionActive, model.SubscriptionSuspended, model.SubscriptionExpired:
	default:
		return ErrInvalidInput
	}
	res := s.db.WithContext(ctx).Model(&model.Business{}).
		Where("id = ?", id).
		Update("subscription_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a business and everything it owns. This is the only flow
// that hard-deletes users.
func (s *BusinessStore) Delete(ctx context.Context, id uint) error {
	defer prometheus.TrackDBOperation("delete_business")(time.Now())
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var business model.Business
		if err := tx.First(&business, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Where("business_id = ?", id).Delete(&model.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", id).Delete(&model.Sale{}).Error; err != nil {
			return err
		}
		if err := tx.Where("business_id = ?", id).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("business_id = ?", id).Delete(&model.User{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&business).Error
	})
}

// CountByStatus returns total businesses and how many are on an active
// subscription.
func (s *BusinessStore) CountByStatus(ctx context.Context) (total, active int64, err error) {
	if err = s.db.WithContext(ctx).Model(&model.Business{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err = s.db.WithContext(ctx).Model(&model.Business{}).
		Where("subscription_status = ?", model.SubscriptionActive).
		Count(&active).Error
	return total, active, err
}
