package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
)

// UserService handles user administration within a tenant
type UserService struct {
	userRepo identity.UserRepository
	roleRepo identity.RoleRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, roleRepo identity.RoleRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
	}
}

// Create creates a new user
func (s *UserService) Create(ctx context.Context, tenantID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	if _, err := s.userRepo.FindByEmail(ctx, tenantID, req.Email); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	}

	user, err := identity.NewUser(tenantID, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	if req.RoleID != nil {
		if _, err := s.roleRepo.FindByIDForTenant(ctx, tenantID, *req.RoleID); err != nil {
			return nil, err
		}
		user.AssignRole(*req.RoleID)
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, tenantID, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// List retrieves users with filtering and pagination
func (s *UserService) List(ctx context.Context, tenantID uuid.UUID, filter UserListFilter) ([]UserResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	users, err := s.userRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.userRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToUserResponses(users), total, nil
}

// Update updates a user's profile, role or password
func (s *UserService) Update(ctx context.Context, tenantID, userID uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Password != nil {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	if req.RoleID != nil {
		if _, err := s.roleRepo.FindByIDForTenant(ctx, tenantID, *req.RoleID); err != nil {
			return nil, err
		}
		user.AssignRole(*req.RoleID)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	user.Touch()

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	response := ToUserResponse(user)
	return &response, nil
}

// Delete removes a user. The last user of a tenant cannot be removed.
func (s *UserService) Delete(ctx context.Context, tenantID, userID uuid.UUID) error {
	total, err := s.userRepo.CountForTenant(ctx, tenantID, shared.Filter{})
	if err != nil {
		return err
	}
	if total <= 1 {
		return shared.NewDomainError("LAST_USER", "The last user of a tenant cannot be deleted")
	}
	return s.userRepo.DeleteForTenant(ctx, tenantID, userID)
}
