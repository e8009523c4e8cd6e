package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoleRepository implements identity.RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindByIDForTenant finds a role by ID within a tenant
func (r *GormRoleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.Role, error) {
	var role identity.Role
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// FindAllForTenant finds all roles for a tenant
func (r *GormRoleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]identity.Role, error) {
	var roles []identity.Role
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// CountUsers counts users assigned to a role
func (r *GormRoleRepository) CountUsers(ctx context.Context, tenantID, roleID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.User{}).
		Where("tenant_id = ? AND role_id = ?", tenantID, roleID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a role
func (r *GormRoleRepository) Save(ctx context.Context, role *identity.Role) error {
	return r.db.WithContext(ctx).Save(role).Error
}

// DeleteForTenant deletes a role within a tenant
func (r *GormRoleRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.Role{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ identity.RoleRepository = (*GormRoleRepository)(nil)
