package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormActivityRepository implements crm.ActivityRepository using GORM
type GormActivityRepository struct {
	db *gorm.DB
}

// NewGormActivityRepository creates a new GormActivityRepository
func NewGormActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// FindByIDForTenant finds an activity by ID within a tenant
func (r *GormActivityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Activity, error) {
	var activity crm.Activity
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&activity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// FindAllForTenant finds all activities for a tenant matching the filter
func (r *GormActivityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Activity, error) {
	var activities []crm.Activity
	query := r.db.WithContext(ctx).Model(&crm.Activity{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// FindRecent finds the most recently created activities for a tenant
func (r *GormActivityRepository) FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]crm.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	var activities []crm.Activity
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

// CountForTenant counts activities for a tenant matching the filter
func (r *GormActivityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&crm.Activity{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an activity
func (r *GormActivityRepository) Save(ctx context.Context, activity *crm.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

// DeleteForTenant deletes an activity within a tenant
func (r *GormActivityRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.Activity{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormActivityRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "subject", "notes")

	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "opportunity_id":
			query = query.Where("opportunity_id = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		}
	}
	return query
}

var _ crm.ActivityRepository = (*GormActivityRepository)(nil)
