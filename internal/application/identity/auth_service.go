package identity

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/auth"
)

// AuthService handles tenant signup, login and token lifecycle
type AuthService struct {
	tenantRepo identity.TenantRepository
	userRepo   identity.UserRepository
	roleRepo   identity.RoleRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	tenantRepo identity.TenantRepository,
	userRepo identity.UserRepository,
	roleRepo identity.RoleRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		tenantRepo: tenantRepo,
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Register provisions a tenant together with its admin role and first
// user, then logs that user in.
func (s *AuthService) Register(ctx context.Context, req RegisterTenantRequest) (*LoginResponse, error) {
	if existing, err := s.tenantRepo.FindBySlug(ctx, req.TenantSlug); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A tenant with this slug already exists")
	}

	tenant, err := identity.NewTenant(req.TenantName, req.TenantSlug)
	if err != nil {
		return nil, err
	}
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	adminRole, err := identity.NewRole(tenant.ID, "Admin", "Full access to everything", []string{"*"})
	if err != nil {
		return nil, err
	}
	adminRole.System = true
	if err := s.roleRepo.Save(ctx, adminRole); err != nil {
		return nil, err
	}

	user, err := identity.NewUser(tenant.ID, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	user.AssignRole(adminRole.ID)
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("slug", tenant.Slug))

	return s.issueTokens(user, adminRole.Permissions)
}

// Login authenticates a user within a tenant and returns a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	tenant, err := s.tenantRepo.FindBySlug(ctx, req.TenantSlug)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !tenant.IsActive() {
		return nil, shared.NewDomainError("TENANT_SUSPENDED", "This organization has been suspended")
	}

	user, err := s.userRepo.FindByEmail(ctx, tenant.ID, req.Email)
	if err != nil {
		s.logger.Warn("Login for unknown user",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("email", req.Email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}
	if !user.Active {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}
	if !user.CheckPassword(req.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("user_id", user.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	permissions, err := s.loadPermissions(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("user_id", user.ID.String()))

	return s.issueTokens(user, permissions)
}

// Refresh exchanges a valid refresh token for a new token pair. The
// used refresh token is revoked so it cannot be replayed.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid or expired refresh token")
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Refresh token has been revoked")
	}

	tenantID, err := claims.GetTenantUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid refresh token")
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Invalid refresh token")
	}

	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TOKEN", "Account no longer exists")
	}
	if !user.Active {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	permissions, err := s.loadPermissions(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke used refresh token", zap.Error(err))
	}

	return s.issueTokens(user, permissions)
}

// Logout revokes the access token and, when provided, the refresh token
func (s *AuthService) Logout(ctx context.Context, accessClaims *auth.Claims, refreshToken string) error {
	if err := s.blacklist.Revoke(ctx, accessClaims.ID, accessClaims.GetRemainingTTL()); err != nil {
		return err
	}
	if refreshToken != "" {
		claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
		if err == nil {
			if err := s.blacklist.Revoke(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
				s.logger.Error("Failed to revoke refresh token on logout", zap.Error(err))
			}
		}
	}
	return nil
}

func (s *AuthService) loadPermissions(ctx context.Context, user *identity.User) ([]string, error) {
	if user.RoleID == nil {
		return nil, nil
	}
	role, err := s.roleRepo.FindByIDForTenant(ctx, user.TenantID, *user.RoleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return role.Permissions, nil
}

func (s *AuthService) issueTokens(user *identity.User, permissions []string) (*LoginResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:    user.TenantID,
		UserID:      user.ID,
		Email:       user.Email,
		RoleID:      user.RoleID,
		Permissions: permissions,
	})
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	return &LoginResponse{
		Tokens: TokenResponse{
			AccessToken:           pair.AccessToken,
			RefreshToken:          pair.RefreshToken,
			AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		},
		User: ToUserResponse(user),
	}, nil
}
