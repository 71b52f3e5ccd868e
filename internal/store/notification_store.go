package store

import (
	"context"

	"autostock/internal/model"

	"gorm.io/gorm"
)

// NotificationStore reads and acknowledges sale notifications.
type NotificationStore struct {
	db *gorm.DB
}

func NewNotificationStore(db *gorm.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) ListByBusiness(ctx context.Context, businessID uint, unreadOnly bool) ([]model.Notification, error) {
	query := s.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC, id DESC")
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var notifications []model.Notification
	err := query.Find(&notifications).Error
	return notifications, err
}

func (s *NotificationStore) MarkRead(ctx context.Context, businessID, id uint) error {
	res := s.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND business_id = ?", id, businessID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
