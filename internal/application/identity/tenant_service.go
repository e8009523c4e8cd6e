package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/identity"
)

// TenantService exposes the current tenant's own record
type TenantService struct {
	tenantRepo identity.TenantRepository
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo identity.TenantRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo}
}

// Get retrieves the tenant
func (s *TenantService) Get(ctx context.Context, tenantID uuid.UUID) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}

// Update changes the tenant's display name
func (s *TenantService) Update(ctx context.Context, tenantID uuid.UUID, req UpdateTenantRequest) (*TenantResponse, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		tenant.Name = *req.Name
		tenant.Touch()
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	response := ToTenantResponse(tenant)
	return &response, nil
}
