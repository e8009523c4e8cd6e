package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/document"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDocumentRepository implements document.Repository using GORM
type GormDocumentRepository struct {
	db *gorm.DB
}

// NewGormDocumentRepository creates a new GormDocumentRepository
func NewGormDocumentRepository(db *gorm.DB) *GormDocumentRepository {
	return &GormDocumentRepository{db: db}
}

// FindByIDForTenant finds document metadata by ID within a tenant
func (r *GormDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.Document, error) {
	var doc document.Document
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// FindAllForTenant finds all documents for a tenant matching the filter
func (r *GormDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	var docs []document.Document
	query := r.db.WithContext(ctx).Model(&document.Document{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// CountForTenant counts documents for a tenant matching the filter
func (r *GormDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&document.Document{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates document metadata
func (r *GormDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	return r.db.WithContext(ctx).Save(doc).Error
}

// DeleteForTenant deletes document metadata within a tenant
func (r *GormDocumentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.Document{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormDocumentRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "file_name", "description")

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "opportunity_id":
			query = query.Where("opportunity_id = ?", value)
		case "content_type":
			query = query.Where("content_type = ?", value)
		}
	}
	return query
}

var _ document.Repository = (*GormDocumentRepository)(nil)
