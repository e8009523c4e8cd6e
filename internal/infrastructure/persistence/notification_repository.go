package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/crm/backend/internal/domain/messaging"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormNotificationRepository implements messaging.NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// FindByIDForTenant finds a notification by ID within a tenant
func (r *GormNotificationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*messaging.Notification, error) {
	var notification messaging.Notification
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&notification).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &notification, nil
}

// FindByUser finds notifications for a user, newest first
func (r *GormNotificationRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]messaging.Notification, error) {
	var notifications []messaging.Notification
	query := r.db.WithContext(ctx).
		Model(&messaging.Notification{}).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID)

	if unread, ok := filter.Filters["unread"]; ok && unread == true {
		query = query.Where("read = false")
	}
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// CountUnread counts a user's unread notifications
func (r *GormNotificationRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&messaging.Notification{}).
		Where("tenant_id = ? AND user_id = ? AND read = false", tenantID, userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a notification
func (r *GormNotificationRepository) Save(ctx context.Context, notification *messaging.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

// MarkAllRead marks all of a user's notifications as read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&messaging.Notification{}).
		Where("tenant_id = ? AND user_id = ? AND read = false", tenantID, userID).
		Updates(map[string]interface{}{"read": true, "read_at": now, "updated_at": now}).Error
}

// DeleteForTenant deletes a notification within a tenant
func (r *GormNotificationRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&messaging.Notification{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ messaging.NotificationRepository = (*GormNotificationRepository)(nil)
