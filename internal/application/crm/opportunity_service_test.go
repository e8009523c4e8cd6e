package crm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// MockStageRepository is a mock implementation of crm.OpportunityStageRepository
type MockStageRepository struct {
	mock.Mock
}

func (m *MockStageRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.OpportunityStage, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.OpportunityStage), args.Error(1)
}

func (m *MockStageRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]crm.OpportunityStage, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]crm.OpportunityStage), args.Error(1)
}

func (m *MockStageRepository) Save(ctx context.Context, stage *crm.OpportunityStage) error {
	args := m.Called(ctx, stage)
	return args.Error(0)
}

func (m *MockStageRepository) SaveAll(ctx context.Context, stages []*crm.OpportunityStage) error {
	args := m.Called(ctx, stages)
	return args.Error(0)
}

func (m *MockStageRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ crm.OpportunityStageRepository = (*MockStageRepository)(nil)

func createTestStage(t *testing.T, tenantID uuid.UUID, name string, sortOrder int) *crm.OpportunityStage {
	t.Helper()
	stage, err := crm.NewOpportunityStage(tenantID, name, sortOrder)
	require.NoError(t, err)
	return stage
}

func createTestOpportunity(t *testing.T, tenantID, stageID uuid.UUID) *crm.Opportunity {
	t.Helper()
	opportunity, err := crm.NewOpportunity(tenantID, stageID, "Enterprise rollout", decimal.NewFromInt(25000))
	require.NoError(t, err)
	return opportunity
}

// =============================================================================
// OpportunityService Tests
// =============================================================================

func TestOpportunityService_Create_Success(t *testing.T) {
	opportunityRepo := new(MockOpportunityRepository)
	stageRepo := new(MockStageRepository)
	customerRepo := new(MockCustomerRepository)
	service := NewOpportunityService(opportunityRepo, stageRepo, customerRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	stage := createTestStage(t, tenantID, "Qualified", 1)

	stageRepo.On("FindByIDForTenant", ctx, tenantID, stage.ID).Return(stage, nil)
	opportunityRepo.On("Save", ctx, mock.AnythingOfType("*crm.Opportunity")).Return(nil)

	result, err := service.Create(ctx, tenantID, CreateOpportunityRequest{
		Title:   "Enterprise rollout",
		Value:   decimal.NewFromInt(25000),
		StageID: stage.ID,
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Enterprise rollout", result.Title)
	assert.Equal(t, stage.ID, result.StageID)
	opportunityRepo.AssertExpectations(t)
}

func TestOpportunityService_Create_StageNotFound(t *testing.T) {
	opportunityRepo := new(MockOpportunityRepository)
	stageRepo := new(MockStageRepository)
	service := NewOpportunityService(opportunityRepo, stageRepo, new(MockCustomerRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	stageID := uuid.New()

	stageRepo.On("FindByIDForTenant", ctx, tenantID, stageID).Return(nil, shared.ErrNotFound)

	result, err := service.Create(ctx, tenantID, CreateOpportunityRequest{
		Title:   "Enterprise rollout",
		StageID: stageID,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	opportunityRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOpportunityService_Create_VerifiesCustomerOwnership(t *testing.T) {
	opportunityRepo := new(MockOpportunityRepository)
	stageRepo := new(MockStageRepository)
	customerRepo := new(MockCustomerRepository)
	service := NewOpportunityService(opportunityRepo, stageRepo, customerRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	stage := createTestStage(t, tenantID, "Qualified", 1)
	foreignCustomerID := uuid.New()

	stageRepo.On("FindByIDForTenant", ctx, tenantID, stage.ID).Return(stage, nil)
	customerRepo.On("FindByIDForTenant", ctx, tenantID, foreignCustomerID).Return(nil, shared.ErrNotFound)

	result, err := service.Create(ctx, tenantID, CreateOpportunityRequest{
		Title:      "Enterprise rollout",
		StageID:    stage.ID,
		CustomerID: &foreignCustomerID,
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOpportunityService_MoveStage_AnyStageIsReachable(t *testing.T) {
	opportunityRepo := new(MockOpportunityRepository)
	stageRepo := new(MockStageRepository)
	service := NewOpportunityService(opportunityRepo, stageRepo, new(MockCustomerRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	won := createTestStage(t, tenantID, "Won", 5)
	lead := createTestStage(t, tenantID, "Lead", 0)
	opportunity := createTestOpportunity(t, tenantID, won.ID)

	// Moving backwards from the last stage to the first is allowed.
	opportunityRepo.On("FindByIDForTenant", ctx, tenantID, opportunity.ID).Return(opportunity, nil)
	stageRepo.On("FindByIDForTenant", ctx, tenantID, lead.ID).Return(lead, nil)
	opportunityRepo.On("Save", ctx, opportunity).Return(nil)

	result, err := service.MoveStage(ctx, tenantID, opportunity.ID, MoveStageRequest{StageID: lead.ID})

	require.NoError(t, err)
	assert.Equal(t, lead.ID, result.StageID)
	opportunityRepo.AssertExpectations(t)
}

func TestOpportunityService_MoveStage_TargetStageNotFound(t *testing.T) {
	opportunityRepo := new(MockOpportunityRepository)
	stageRepo := new(MockStageRepository)
	service := NewOpportunityService(opportunityRepo, stageRepo, new(MockCustomerRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	stage := createTestStage(t, tenantID, "Qualified", 1)
	opportunity := createTestOpportunity(t, tenantID, stage.ID)
	foreignStageID := uuid.New()

	opportunityRepo.On("FindByIDForTenant", ctx, tenantID, opportunity.ID).Return(opportunity, nil)
	stageRepo.On("FindByIDForTenant", ctx, tenantID, foreignStageID).Return(nil, shared.ErrNotFound)

	result, err := service.MoveStage(ctx, tenantID, opportunity.ID, MoveStageRequest{StageID: foreignStageID})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Equal(t, stage.ID, opportunity.StageID, "a failed move must not change the stage")
	opportunityRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestOpportunityService_Update_SetValue(t *testing.T) {
	opportunityRepo := new(MockOpportunityRepository)
	service := NewOpportunityService(opportunityRepo, new(MockStageRepository), new(MockCustomerRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	opportunity := createTestOpportunity(t, tenantID, uuid.New())
	newValue := decimal.NewFromInt(40000)

	opportunityRepo.On("FindByIDForTenant", ctx, tenantID, opportunity.ID).Return(opportunity, nil)
	opportunityRepo.On("Save", ctx, opportunity).Return(nil)

	result, err := service.Update(ctx, tenantID, opportunity.ID, UpdateOpportunityRequest{Value: &newValue})

	require.NoError(t, err)
	assert.True(t, result.Value.Equal(newValue))
}

func TestOpportunityService_Update_NegativeValueRejected(t *testing.T) {
	opportunityRepo := new(MockOpportunityRepository)
	service := NewOpportunityService(opportunityRepo, new(MockStageRepository), new(MockCustomerRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	opportunity := createTestOpportunity(t, tenantID, uuid.New())
	negative := decimal.NewFromInt(-100)

	opportunityRepo.On("FindByIDForTenant", ctx, tenantID, opportunity.ID).Return(opportunity, nil)

	result, err := service.Update(ctx, tenantID, opportunity.ID, UpdateOpportunityRequest{Value: &negative})

	require.Error(t, err)
	assert.Nil(t, result)
	opportunityRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
