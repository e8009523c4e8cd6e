package persistence

import (
	"context"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements audit.Repository using GORM
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Save appends an audit record
func (r *GormAuditLogRepository) Save(ctx context.Context, log *audit.Log) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindAllForTenant finds audit records for a tenant, newest first
func (r *GormAuditLogRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]audit.Log, error) {
	var logs []audit.Log
	query := r.db.WithContext(ctx).Model(&audit.Log{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// CountForTenant counts audit records for a tenant matching the filter
func (r *GormAuditLogRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&audit.Log{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormAuditLogRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "action":
			query = query.Where("action = ?", value)
		case "resource":
			query = query.Where("resource = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		}
	}
	return query
}

var _ audit.Repository = (*GormAuditLogRepository)(nil)
