package identity

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Role is a named permission set scoped to a tenant. Permissions are
// flat strings like "customers:write" or "reports:read".
type Role struct {
	shared.TenantEntity
	Name        string         `gorm:"type:varchar(100);not null;uniqueIndex:idx_role_tenant_name,priority:2"`
	Description string         `gorm:"type:varchar(500)"`
	Permissions pq.StringArray `gorm:"type:text[]"`
	System      bool           `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Role) TableName() string {
	return "roles"
}

// NewRole creates a role with the given permissions
func NewRole(tenantID uuid.UUID, name, description string, permissions []string) (*Role, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Role name cannot be empty")
	}
	return &Role{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Description:  description,
		Permissions:  permissions,
	}, nil
}

// HasPermission reports whether the role grants a permission. The
// wildcard "*" grants everything.
func (r *Role) HasPermission(permission string) bool {
	for _, p := range r.Permissions {
		if p == permission || p == "*" {
			return true
		}
	}
	return false
}

// SetPermissions replaces the permission set. System roles are immutable.
func (r *Role) SetPermissions(permissions []string) error {
	if r.System {
		return shared.NewDomainError("SYSTEM_ROLE", "System roles cannot be modified")
	}
	r.Permissions = permissions
	r.Touch()
	return nil
}
