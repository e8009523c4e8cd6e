package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormContactRepository implements crm.ContactRepository using GORM
type GormContactRepository struct {
	db *gorm.DB
}

// NewGormContactRepository creates a new GormContactRepository
func NewGormContactRepository(db *gorm.DB) *GormContactRepository {
	return &GormContactRepository{db: db}
}

// FindByIDForTenant finds a contact by ID within a tenant
func (r *GormContactRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Contact, error) {
	var contact crm.Contact
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contact, nil
}

// FindAllForTenant finds all contacts for a tenant matching the filter
func (r *GormContactRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Contact, error) {
	var contacts []crm.Contact
	query := r.db.WithContext(ctx).Model(&crm.Contact{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "last_name ASC, first_name ASC")

	if err := query.Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// FindByCustomer finds all contacts linked to a customer
func (r *GormContactRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]crm.Contact, error) {
	var contacts []crm.Contact
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Order("last_name ASC, first_name ASC").
		Find(&contacts).Error; err != nil {
		return nil, err
	}
	return contacts, nil
}

// CountForTenant counts contacts for a tenant matching the filter
func (r *GormContactRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&crm.Contact{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a contact
func (r *GormContactRepository) Save(ctx context.Context, contact *crm.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

// DeleteForTenant deletes a contact within a tenant
func (r *GormContactRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.Contact{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormContactRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "first_name", "last_name", "email", "phone")

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "position":
			query = query.Where("position = ?", value)
		}
	}
	return query
}

var _ crm.ContactRepository = (*GormContactRepository)(nil)
