package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/identity"
)

// =============================================================================
// Auth DTOs
// =============================================================================

// RegisterTenantRequest provisions a tenant with its first admin user
type RegisterTenantRequest struct {
	TenantName string `json:"tenant_name" binding:"required,min=1,max=255"`
	TenantSlug string `json:"tenant_slug" binding:"required,min=2,max=100"`
	Email      string `json:"email" binding:"required,email,max=255"`
	Password   string `json:"password" binding:"required,min=8,max=128"`
	FirstName  string `json:"first_name" binding:"required,max=100"`
	LastName   string `json:"last_name" binding:"required,max=100"`
}

// LoginRequest represents a login attempt within a tenant
type LoginRequest struct {
	TenantSlug string `json:"tenant_slug" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new token pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// LoginResponse is the full login result
type LoginResponse struct {
	Tokens TokenResponse `json:"tokens"`
	User   UserResponse  `json:"user"`
}

// =============================================================================
// User DTOs
// =============================================================================

// CreateUserRequest represents a request to create a user
type CreateUserRequest struct {
	Email     string     `json:"email" binding:"required,email,max=255"`
	Password  string     `json:"password" binding:"required,min=8,max=128"`
	FirstName string     `json:"first_name" binding:"required,max=100"`
	LastName  string     `json:"last_name" binding:"required,max=100"`
	RoleID    *uuid.UUID `json:"role_id"`
}

// UpdateUserRequest represents a request to update a user
type UpdateUserRequest struct {
	FirstName *string    `json:"first_name" binding:"omitempty,max=100"`
	LastName  *string    `json:"last_name" binding:"omitempty,max=100"`
	Password  *string    `json:"password" binding:"omitempty,min=8,max=128"`
	RoleID    *uuid.UUID `json:"role_id"`
	Active    *bool      `json:"active"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	FullName  string     `json:"full_name"`
	RoleID    *uuid.UUID `json:"role_id,omitempty"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// UserListFilter represents filter options for user list
type UserListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ToUserResponse maps a user to its API representation
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		RoleID:    u.RoleID,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToUserResponses maps a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i := range users {
		responses[i] = ToUserResponse(&users[i])
	}
	return responses
}

// =============================================================================
// Role DTOs
// =============================================================================

// CreateRoleRequest represents a request to create a role
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=100"`
	Description string   `json:"description" binding:"max=500"`
	Permissions []string `json:"permissions" binding:"required"`
}

// UpdateRoleRequest represents a request to update a role
type UpdateRoleRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string   `json:"description" binding:"omitempty,max=500"`
	Permissions *[]string `json:"permissions"`
}

// RoleResponse represents a role in API responses
type RoleResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Permissions []string  `json:"permissions"`
	System      bool      `json:"system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToRoleResponse maps a role to its API representation
func ToRoleResponse(r *identity.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Permissions: r.Permissions,
		System:      r.System,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// ToRoleResponses maps a slice of roles
func ToRoleResponses(roles []identity.Role) []RoleResponse {
	responses := make([]RoleResponse, len(roles))
	for i := range roles {
		responses[i] = ToRoleResponse(&roles[i])
	}
	return responses
}

// =============================================================================
// Tenant DTOs
// =============================================================================

// UpdateTenantRequest represents a request to update tenant details
type UpdateTenantRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=255"`
}

// TenantResponse represents a tenant in API responses
type TenantResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToTenantResponse maps a tenant to its API representation
func ToTenantResponse(t *identity.Tenant) TenantResponse {
	return TenantResponse{
		ID:        t.ID,
		Name:      t.Name,
		Slug:      t.Slug,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}
