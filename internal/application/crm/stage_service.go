package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// StageService manages the pipeline stage catalog
type StageService struct {
	stageRepo       crm.OpportunityStageRepository
	opportunityRepo crm.OpportunityRepository
}

// NewStageService creates a new StageService
func NewStageService(stageRepo crm.OpportunityStageRepository, opportunityRepo crm.OpportunityRepository) *StageService {
	return &StageService{
		stageRepo:       stageRepo,
		opportunityRepo: opportunityRepo,
	}
}

// Create creates a new pipeline stage
func (s *StageService) Create(ctx context.Context, tenantID uuid.UUID, req CreateStageRequest) (*StageResponse, error) {
	stage, err := crm.NewOpportunityStage(tenantID, req.Name, req.SortOrder)
	if err != nil {
		return nil, err
	}
	stage.Description = req.Description

	if err := s.stageRepo.Save(ctx, stage); err != nil {
		return nil, err
	}

	response := ToStageResponse(stage)
	return &response, nil
}

// List retrieves all stages in pipeline order
func (s *StageService) List(ctx context.Context, tenantID uuid.UUID) ([]StageResponse, error) {
	stages, err := s.stageRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToStageResponses(stages), nil
}

// Update updates a pipeline stage
func (s *StageService) Update(ctx context.Context, tenantID, stageID uuid.UUID, req UpdateStageRequest) (*StageResponse, error) {
	stage, err := s.stageRepo.FindByIDForTenant(ctx, tenantID, stageID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		stage.Name = *req.Name
	}
	if req.Description != nil {
		stage.Description = *req.Description
	}
	if req.SortOrder != nil {
		stage.Reorder(*req.SortOrder)
	}
	stage.Touch()

	if err := s.stageRepo.Save(ctx, stage); err != nil {
		return nil, err
	}

	response := ToStageResponse(stage)
	return &response, nil
}

// Reorder rewrites the sort order of all listed stages in one pass
func (s *StageService) Reorder(ctx context.Context, tenantID uuid.UUID, req ReorderStagesRequest) ([]StageResponse, error) {
	stages := make([]*crm.OpportunityStage, 0, len(req.StageIDs))
	for position, stageID := range req.StageIDs {
		stage, err := s.stageRepo.FindByIDForTenant(ctx, tenantID, stageID)
		if err != nil {
			return nil, err
		}
		stage.Reorder(position)
		stages = append(stages, stage)
	}

	if err := s.stageRepo.SaveAll(ctx, stages); err != nil {
		return nil, err
	}

	responses := make([]StageResponse, len(stages))
	for i, stage := range stages {
		responses[i] = ToStageResponse(stage)
	}
	return responses, nil
}

// Delete removes a stage. Stages that still hold opportunities
// cannot be deleted.
func (s *StageService) Delete(ctx context.Context, tenantID, stageID uuid.UUID) error {
	if _, err := s.stageRepo.FindByIDForTenant(ctx, tenantID, stageID); err != nil {
		return err
	}

	opportunities, err := s.opportunityRepo.FindByStage(ctx, tenantID, stageID)
	if err != nil {
		return err
	}
	if len(opportunities) > 0 {
		return shared.NewDomainErrorf(
			shared.ErrHasDependents.Code,
			"Stage has %d opportunities and cannot be deleted", len(opportunities),
		)
	}

	return s.stageRepo.DeleteForTenant(ctx, tenantID, stageID)
}
