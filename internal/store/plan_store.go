package store

import (
	"context"
	"errors"

	"autostock/internal/model"

	"gorm.io/gorm"
)

// PlanStore manages subscription plans.
type PlanStore struct {
	db *gorm.DB
}

func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

func (s *PlanStore) Create(ctx context.Context, plan *model.Plan) error {
	if plan.Name == "" || plan.DurationDays <= 0 || plan.Price.IsNegative() {
		return ErrInvalidInput
	}
	return s.db.WithContext(ctx).Create(plan).Error
}

func (s *PlanStore) Update(ctx context.Context, id uint, upd *model.Plan) (*model.Plan, error) {
	if upd.Name == "" || upd.DurationDays <= 0 || upd.Price.IsNegative() {
		return nil, ErrInvalidInput
	}

	var plan model.Plan
	if err := s.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	plan.Name = upd.Name
	plan.Description = upd.Description
	plan.Price = upd.Price
	plan.DurationDays = upd.DurationDays
	if err := s.db.WithContext(ctx).Save(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (s *PlanStore) FindByID(ctx context.Context, id uint) (*model.Plan, error) {
	var plan model.Plan
	if err := s.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (s *PlanStore) List(ctx context.Context) ([]model.Plan, error) {
	var plans []model.Plan
	err := s.db.WithContext(ctx).Order("id").Find(&plans).Error
	return plans, err
}
