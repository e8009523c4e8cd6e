package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// OpportunityService handles sales pipeline operations
type OpportunityService struct {
	opportunityRepo crm.OpportunityRepository
	stageRepo       crm.OpportunityStageRepository
	customerRepo    crm.CustomerRepository
}

// NewOpportunityService creates a new OpportunityService
func NewOpportunityService(
	opportunityRepo crm.OpportunityRepository,
	stageRepo crm.OpportunityStageRepository,
	customerRepo crm.CustomerRepository,
) *OpportunityService {
	return &OpportunityService{
		opportunityRepo: opportunityRepo,
		stageRepo:       stageRepo,
		customerRepo:    customerRepo,
	}
}

// Create creates a new opportunity in the given stage
func (s *OpportunityService) Create(ctx context.Context, tenantID uuid.UUID, req CreateOpportunityRequest) (*OpportunityResponse, error) {
	if _, err := s.stageRepo.FindByIDForTenant(ctx, tenantID, req.StageID); err != nil {
		return nil, err
	}
	if req.CustomerID != nil {
		if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
			return nil, err
		}
	}

	opportunity, err := crm.NewOpportunity(tenantID, req.StageID, req.Title, req.Value)
	if err != nil {
		return nil, err
	}
	opportunity.Description = req.Description
	opportunity.CustomerID = req.CustomerID
	if req.AssignedToID != nil {
		opportunity.AssignTo(*req.AssignedToID)
	}
	opportunity.ExpectedCloseDate = req.ExpectedCloseDate

	if err := s.opportunityRepo.Save(ctx, opportunity); err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(opportunity)
	return &response, nil
}

// GetByID retrieves an opportunity by ID
func (s *OpportunityService) GetByID(ctx context.Context, tenantID, opportunityID uuid.UUID) (*OpportunityResponse, error) {
	opportunity, err := s.opportunityRepo.FindByIDForTenant(ctx, tenantID, opportunityID)
	if err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(opportunity)
	return &response, nil
}

// List retrieves opportunities with filtering and pagination
func (s *OpportunityService) List(ctx context.Context, tenantID uuid.UUID, filter OpportunityListFilter) ([]OpportunityResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.StageID != nil {
		domainFilter.Filters["stage_id"] = *filter.StageID
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.AssignedToID != nil {
		domainFilter.Filters["assigned_to_id"] = *filter.AssignedToID
	}

	opportunities, err := s.opportunityRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.opportunityRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOpportunityResponses(opportunities), total, nil
}

// Update updates an opportunity
func (s *OpportunityService) Update(ctx context.Context, tenantID, opportunityID uuid.UUID, req UpdateOpportunityRequest) (*OpportunityResponse, error) {
	opportunity, err := s.opportunityRepo.FindByIDForTenant(ctx, tenantID, opportunityID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		opportunity.Title = *req.Title
	}
	if req.Description != nil {
		opportunity.Description = *req.Description
	}
	if req.Value != nil {
		if err := opportunity.SetValue(*req.Value); err != nil {
			return nil, err
		}
	}
	if req.CustomerID != nil {
		if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
			return nil, err
		}
		opportunity.CustomerID = req.CustomerID
	}
	if req.AssignedToID != nil {
		opportunity.AssignTo(*req.AssignedToID)
	}
	if req.ExpectedCloseDate != nil {
		opportunity.ExpectedCloseDate = req.ExpectedCloseDate
	}
	opportunity.Touch()

	if err := s.opportunityRepo.Save(ctx, opportunity); err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(opportunity)
	return &response, nil
}

// MoveStage moves an opportunity to another stage. The target stage
// must belong to the tenant; beyond that any move is allowed.
func (s *OpportunityService) MoveStage(ctx context.Context, tenantID, opportunityID uuid.UUID, req MoveStageRequest) (*OpportunityResponse, error) {
	opportunity, err := s.opportunityRepo.FindByIDForTenant(ctx, tenantID, opportunityID)
	if err != nil {
		return nil, err
	}
	if _, err := s.stageRepo.FindByIDForTenant(ctx, tenantID, req.StageID); err != nil {
		return nil, err
	}

	if err := opportunity.MoveToStage(req.StageID); err != nil {
		return nil, err
	}
	if err := s.opportunityRepo.Save(ctx, opportunity); err != nil {
		return nil, err
	}

	response := ToOpportunityResponse(opportunity)
	return &response, nil
}

// Delete removes an opportunity
func (s *OpportunityService) Delete(ctx context.Context, tenantID, opportunityID uuid.UUID) error {
	return s.opportunityRepo.DeleteForTenant(ctx, tenantID, opportunityID)
}
