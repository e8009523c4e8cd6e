package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
)

// RoleService manages roles and their permission sets
type RoleService struct {
	roleRepo identity.RoleRepository
}

// NewRoleService creates a new RoleService
func NewRoleService(roleRepo identity.RoleRepository) *RoleService {
	return &RoleService{roleRepo: roleRepo}
}

// Create creates a new role
func (s *RoleService) Create(ctx context.Context, tenantID uuid.UUID, req CreateRoleRequest) (*RoleResponse, error) {
	role, err := identity.NewRole(tenantID, req.Name, req.Description, req.Permissions)
	if err != nil {
		return nil, err
	}

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// GetByID retrieves a role by ID
func (s *RoleService) GetByID(ctx context.Context, tenantID, roleID uuid.UUID) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByIDForTenant(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// List retrieves all roles of a tenant
func (s *RoleService) List(ctx context.Context, tenantID uuid.UUID) ([]RoleResponse, error) {
	roles, err := s.roleRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToRoleResponses(roles), nil
}

// Update updates a role. System roles only accept name and
// description changes.
func (s *RoleService) Update(ctx context.Context, tenantID, roleID uuid.UUID, req UpdateRoleRequest) (*RoleResponse, error) {
	role, err := s.roleRepo.FindByIDForTenant(ctx, tenantID, roleID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = *req.Description
	}
	if req.Permissions != nil {
		if err := role.SetPermissions(*req.Permissions); err != nil {
			return nil, err
		}
	}
	role.Touch()

	if err := s.roleRepo.Save(ctx, role); err != nil {
		return nil, err
	}

	response := ToRoleResponse(role)
	return &response, nil
}

// Delete removes a role. Roles still assigned to users and system
// roles cannot be deleted.
func (s *RoleService) Delete(ctx context.Context, tenantID, roleID uuid.UUID) error {
	role, err := s.roleRepo.FindByIDForTenant(ctx, tenantID, roleID)
	if err != nil {
		return err
	}
	if role.System {
		return shared.NewDomainError("SYSTEM_ROLE", "System roles cannot be deleted")
	}

	users, err := s.roleRepo.CountUsers(ctx, tenantID, roleID)
	if err != nil {
		return err
	}
	if users > 0 {
		return shared.NewDomainErrorf(
			shared.ErrHasDependents.Code,
			"Role is assigned to %d users and cannot be deleted", users,
		)
	}

	return s.roleRepo.DeleteForTenant(ctx, tenantID, roleID)
}
