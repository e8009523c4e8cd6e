package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/messaging"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEmailRepository implements messaging.EmailRepository using GORM
type GormEmailRepository struct {
	db *gorm.DB
}

// NewGormEmailRepository creates a new GormEmailRepository
func NewGormEmailRepository(db *gorm.DB) *GormEmailRepository {
	return &GormEmailRepository{db: db}
}

// FindByIDForTenant finds an email by ID within a tenant
func (r *GormEmailRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*messaging.Email, error) {
	var email messaging.Email
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &email, nil
}

// FindAllForTenant finds all emails for a tenant matching the filter
func (r *GormEmailRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]messaging.Email, error) {
	var emails []messaging.Email
	query := r.db.WithContext(ctx).Model(&messaging.Email{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}

// CountForTenant counts emails for a tenant matching the filter
func (r *GormEmailRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&messaging.Email{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an email
func (r *GormEmailRepository) Save(ctx context.Context, email *messaging.Email) error {
	return r.db.WithContext(ctx).Save(email).Error
}

// DeleteForTenant deletes an email within a tenant
func (r *GormEmailRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&messaging.Email{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormEmailRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "subject", "\"to\"")

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "contact_id":
			query = query.Where("contact_id = ?", value)
		}
	}
	return query
}

var _ messaging.EmailRepository = (*GormEmailRepository)(nil)

// GormEmailTemplateRepository implements messaging.EmailTemplateRepository using GORM
type GormEmailTemplateRepository struct {
	db *gorm.DB
}

// NewGormEmailTemplateRepository creates a new GormEmailTemplateRepository
func NewGormEmailTemplateRepository(db *gorm.DB) *GormEmailTemplateRepository {
	return &GormEmailTemplateRepository{db: db}
}

// FindByIDForTenant finds a template by ID within a tenant
func (r *GormEmailTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*messaging.EmailTemplate, error) {
	var template messaging.EmailTemplate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindAllForTenant finds all templates for a tenant
func (r *GormEmailTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]messaging.EmailTemplate, error) {
	var templates []messaging.EmailTemplate
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// Save creates or updates a template
func (r *GormEmailTemplateRepository) Save(ctx context.Context, template *messaging.EmailTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

// DeleteForTenant deletes a template within a tenant
func (r *GormEmailTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&messaging.EmailTemplate{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ messaging.EmailTemplateRepository = (*GormEmailTemplateRepository)(nil)
