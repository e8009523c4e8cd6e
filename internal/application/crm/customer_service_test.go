package crm

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockCustomerRepository is a mock implementation of crm.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Customer, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *crm.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ crm.CustomerRepository = (*MockCustomerRepository)(nil)

// MockOpportunityRepository is a mock implementation of crm.OpportunityRepository
type MockOpportunityRepository struct {
	mock.Mock
}

func (m *MockOpportunityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Opportunity, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Opportunity, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) FindByStage(ctx context.Context, tenantID, stageID uuid.UUID) ([]crm.Opportunity, error) {
	args := m.Called(ctx, tenantID, stageID)
	return args.Get(0).([]crm.Opportunity), args.Error(1)
}

func (m *MockOpportunityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOpportunityRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOpportunityRepository) Save(ctx context.Context, opportunity *crm.Opportunity) error {
	args := m.Called(ctx, opportunity)
	return args.Error(0)
}

func (m *MockOpportunityRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ crm.OpportunityRepository = (*MockOpportunityRepository)(nil)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ billing.InvoiceRepository = (*MockInvoiceRepository)(nil)

// =============================================================================
// Test Helper Functions
// =============================================================================

func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func createTestCustomer(t *testing.T, tenantID uuid.UUID) *crm.Customer {
	t.Helper()
	customer, err := crm.NewCustomer(tenantID, "Acme Corp")
	require.NoError(t, err)
	return customer
}

// =============================================================================
// CustomerService Tests
// =============================================================================

func TestCustomerService_Create_Success(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	opportunityRepo := new(MockOpportunityRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewCustomerService(customerRepo, opportunityRepo, invoiceRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	req := CreateCustomerRequest{
		Name:        "Acme Corp",
		CompanyName: "Acme Corporation Ltd",
		Email:       "sales@acme.example",
		Phone:       "+49 30 1234567",
		City:        "Berlin",
		Country:     "Germany",
		Tags:        []string{"enterprise", "eu"},
	}

	customerRepo.On("Save", ctx, mock.AnythingOfType("*crm.Customer")).Return(nil)

	result, err := service.Create(ctx, tenantID, req)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "Acme Corp", result.Name)
	assert.Equal(t, "sales@acme.example", result.Email)
	assert.Equal(t, []string{"enterprise", "eu"}, result.Tags)
	customerRepo.AssertExpectations(t)
}

func TestCustomerService_Create_InvalidEmail(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	service := NewCustomerService(customerRepo, new(MockOpportunityRepository), new(MockInvoiceRepository))

	ctx := context.Background()
	req := CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "not-an-email",
	}

	result, err := service.Create(ctx, newTestTenantID(), req)

	require.Error(t, err)
	assert.Nil(t, result)
	customerRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCustomerService_GetByID_NotFound(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	service := NewCustomerService(customerRepo, new(MockOpportunityRepository), new(MockInvoiceRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	customerID := uuid.New()

	customerRepo.On("FindByIDForTenant", ctx, tenantID, customerID).Return(nil, shared.ErrNotFound)

	result, err := service.GetByID(ctx, tenantID, customerID)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCustomerService_Update_Rename(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	service := NewCustomerService(customerRepo, new(MockOpportunityRepository), new(MockInvoiceRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	customer := createTestCustomer(t, tenantID)
	newName := "Acme International"

	customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	customerRepo.On("Save", ctx, customer).Return(nil)

	result, err := service.Update(ctx, tenantID, customer.ID, UpdateCustomerRequest{Name: &newName})

	require.NoError(t, err)
	assert.Equal(t, "Acme International", result.Name)
	customerRepo.AssertExpectations(t)
}

func TestCustomerService_Delete_Success(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	opportunityRepo := new(MockOpportunityRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewCustomerService(customerRepo, opportunityRepo, invoiceRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	customer := createTestCustomer(t, tenantID)

	customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	opportunityRepo.On("CountByCustomer", ctx, tenantID, customer.ID).Return(int64(0), nil)
	invoiceRepo.On("CountByCustomer", ctx, tenantID, customer.ID).Return(int64(0), nil)
	customerRepo.On("DeleteForTenant", ctx, tenantID, customer.ID).Return(nil)

	err := service.Delete(ctx, tenantID, customer.ID)

	assert.NoError(t, err)
	customerRepo.AssertExpectations(t)
}

func TestCustomerService_Delete_BlockedByOpportunities(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	opportunityRepo := new(MockOpportunityRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewCustomerService(customerRepo, opportunityRepo, invoiceRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	customer := createTestCustomer(t, tenantID)

	customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	opportunityRepo.On("CountByCustomer", ctx, tenantID, customer.ID).Return(int64(3), nil)
	invoiceRepo.On("CountByCustomer", ctx, tenantID, customer.ID).Return(int64(0), nil)

	err := service.Delete(ctx, tenantID, customer.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrHasDependents.Code, domainErr.Code)
	customerRepo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerService_Delete_BlockedByInvoices(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	opportunityRepo := new(MockOpportunityRepository)
	invoiceRepo := new(MockInvoiceRepository)
	service := NewCustomerService(customerRepo, opportunityRepo, invoiceRepo)

	ctx := context.Background()
	tenantID := newTestTenantID()
	customer := createTestCustomer(t, tenantID)

	customerRepo.On("FindByIDForTenant", ctx, tenantID, customer.ID).Return(customer, nil)
	opportunityRepo.On("CountByCustomer", ctx, tenantID, customer.ID).Return(int64(0), nil)
	invoiceRepo.On("CountByCustomer", ctx, tenantID, customer.ID).Return(int64(2), nil)

	err := service.Delete(ctx, tenantID, customer.ID)

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, shared.ErrHasDependents.Code, domainErr.Code)
	customerRepo.AssertNotCalled(t, "DeleteForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerService_Delete_NotFound(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	opportunityRepo := new(MockOpportunityRepository)
	service := NewCustomerService(customerRepo, opportunityRepo, new(MockInvoiceRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	customerID := uuid.New()

	customerRepo.On("FindByIDForTenant", ctx, tenantID, customerID).Return(nil, shared.ErrNotFound)

	err := service.Delete(ctx, tenantID, customerID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	opportunityRepo.AssertNotCalled(t, "CountByCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func TestCustomerService_List_PassesFilters(t *testing.T) {
	customerRepo := new(MockCustomerRepository)
	service := NewCustomerService(customerRepo, new(MockOpportunityRepository), new(MockInvoiceRepository))

	ctx := context.Background()
	tenantID := newTestTenantID()
	customer := createTestCustomer(t, tenantID)

	matchFilter := mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["city"] == "Berlin" && f.Filters["tag"] == "enterprise"
	})
	customerRepo.On("FindAllForTenant", ctx, tenantID, matchFilter).Return([]crm.Customer{*customer}, nil)
	customerRepo.On("CountForTenant", ctx, tenantID, matchFilter).Return(int64(1), nil)

	results, total, err := service.List(ctx, tenantID, CustomerListFilter{City: "Berlin", Tag: "enterprise"})

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, results, 1)
}
