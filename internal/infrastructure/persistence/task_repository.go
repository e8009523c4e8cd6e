package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTaskRepository implements crm.TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByIDForTenant finds a task by ID within a tenant
func (r *GormTaskRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Task, error) {
	var task crm.Task
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// FindAllForTenant finds all tasks for a tenant matching the filter
func (r *GormTaskRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Task, error) {
	var tasks []crm.Task
	query := r.db.WithContext(ctx).Model(&crm.Task{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "due_date ASC NULLS LAST, created_at DESC")

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// CountForTenant counts tasks for a tenant matching the filter
func (r *GormTaskRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&crm.Task{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a task
func (r *GormTaskRepository) Save(ctx context.Context, task *crm.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// DeleteForTenant deletes a task within a tenant
func (r *GormTaskRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.Task{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTaskRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "title", "description")

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "priority":
			query = query.Where("priority = ?", value)
		case "assigned_to_id":
			query = query.Where("assigned_to_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "opportunity_id":
			query = query.Where("opportunity_id = ?", value)
		}
	}
	return query
}

var _ crm.TaskRepository = (*GormTaskRepository)(nil)
