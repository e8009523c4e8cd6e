package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements crm.CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForTenant finds a customer by ID within a tenant
func (r *GormCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Customer, error) {
	var customer crm.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindByEmail finds a customer by email within a tenant
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*crm.Customer, error) {
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	var customer crm.Customer
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND email = ?", tenantID, strings.ToLower(email)).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// FindAllForTenant finds all customers for a tenant matching the filter
func (r *GormCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Customer, error) {
	var customers []crm.Customer
	query := r.db.WithContext(ctx).Model(&crm.Customer{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "name ASC")

	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

// CountForTenant counts customers for a tenant matching the filter
func (r *GormCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&crm.Customer{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a customer
func (r *GormCustomerRepository) Save(ctx context.Context, customer *crm.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// DeleteForTenant deletes a customer within a tenant
func (r *GormCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.Customer{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCustomerRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "name", "company_name", "email", "phone")

	for key, value := range filter.Filters {
		switch key {
		case "city":
			query = query.Where("city = ?", value)
		case "country":
			query = query.Where("country = ?", value)
		case "tag":
			query = query.Where("? = ANY(tags)", value)
		}
	}
	return query
}

var _ crm.CustomerRepository = (*GormCustomerRepository)(nil)
