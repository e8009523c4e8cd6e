package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TenantRepository defines persistence operations for tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// UserRepository defines persistence operations for users
type UserRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*User, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]User, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, user *User) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// RoleRepository defines persistence operations for roles
type RoleRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Role, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Role, error)
	CountUsers(ctx context.Context, tenantID, roleID uuid.UUID) (int64, error)
	Save(ctx context.Context, role *Role) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
