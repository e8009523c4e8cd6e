package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/shared"
)

// =============================================================================
// Mock Repositories
// =============================================================================

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

// MockPaymentRepository is a mock implementation of billing.PaymentRepository
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]billing.Payment, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).([]billing.Payment), args.Error(1)
}

func (m *MockPaymentRepository) SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, invoiceID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ billing.PaymentRepository = (*MockPaymentRepository)(nil)

// =============================================================================
// Test Helper Functions
// =============================================================================

func newTestTenantID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func createSentInvoice(t *testing.T, tenantID uuid.UUID, total float64) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice(tenantID, uuid.New(), "INV-2026-0042")
	require.NoError(t, err)
	require.NoError(t, invoice.AddItem("Annual subscription", decimal.NewFromInt(1), decimal.NewFromFloat(total)))
	require.NoError(t, invoice.MarkSent(time.Now(), time.Now().AddDate(0, 0, 30)))
	return invoice
}

// =============================================================================
// PaymentService Tests
// =============================================================================

func TestPaymentService_Apply_Success(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoice := createSentInvoice(t, tenantID, 500)

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
	paymentRepo.On("SumByInvoice", ctx, tenantID, invoice.ID).Return(decimal.Zero, nil)
	paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)

	result, err := service.Apply(ctx, tenantID, invoice.ID, CreatePaymentRequest{
		Amount: decimal.NewFromInt(200),
		Method: "bank_transfer",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "bank_transfer", result.Method)
	assert.Equal(t, billing.InvoiceStatusSent, invoice.Status, "partial payment must not settle the invoice")
	invoiceRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentService_Apply_SettlesInvoiceAtToleranceBoundary(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoice := createSentInvoice(t, tenantID, 100)

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
	paymentRepo.On("SumByInvoice", ctx, tenantID, invoice.ID).Return(decimal.NewFromInt(60), nil)
	paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
	invoiceRepo.On("Save", ctx, invoice).Return(nil)

	// 60 + 39.99 reaches total minus the rounding tolerance.
	result, err := service.Apply(ctx, tenantID, invoice.ID, CreatePaymentRequest{
		Amount: decimal.NewFromFloat(39.99),
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, billing.InvoiceStatusPaid, invoice.Status)
	assert.NotNil(t, invoice.PaidDate)
	invoiceRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentService_Apply_RejectsOvershoot(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoice := createSentInvoice(t, tenantID, 100)

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
	paymentRepo.On("SumByInvoice", ctx, tenantID, invoice.ID).Return(decimal.NewFromInt(60), nil)

	result, err := service.Apply(ctx, tenantID, invoice.ID, CreatePaymentRequest{
		Amount: decimal.NewFromFloat(40.02),
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrPaymentExceeded)
	paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	invoiceRepo.AssertExpectations(t)
}

func TestPaymentService_Apply_InvoiceStatusSaveFailureDoesNotFailRequest(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoice := createSentInvoice(t, tenantID, 100)

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
	paymentRepo.On("SumByInvoice", ctx, tenantID, invoice.ID).Return(decimal.Zero, nil)
	paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
	invoiceRepo.On("Save", ctx, invoice).Return(errors.New("connection reset"))

	result, err := service.Apply(ctx, tenantID, invoice.ID, CreatePaymentRequest{
		Amount: decimal.NewFromInt(100),
	})

	require.NoError(t, err, "the payment is committed even when the status update fails")
	require.NotNil(t, result)
	invoiceRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentService_Apply_InvoiceNotFound(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoiceID := uuid.New()

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoiceID).Return(nil, shared.ErrNotFound)

	result, err := service.Apply(ctx, tenantID, invoiceID, CreatePaymentRequest{
		Amount: decimal.NewFromInt(10),
	})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	paymentRepo.AssertNotCalled(t, "SumByInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_Apply_UsesProvidedPaymentDate(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoice := createSentInvoice(t, tenantID, 100)
	paidAt := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
	paymentRepo.On("SumByInvoice", ctx, tenantID, invoice.ID).Return(decimal.Zero, nil)
	paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
	invoiceRepo.On("Save", ctx, invoice).Return(nil)

	result, err := service.Apply(ctx, tenantID, invoice.ID, CreatePaymentRequest{
		Amount:      decimal.NewFromInt(100),
		PaymentDate: &paidAt,
	})

	require.NoError(t, err)
	assert.Equal(t, paidAt, result.PaymentDate)
	require.NotNil(t, invoice.PaidDate)
	assert.Equal(t, paidAt, *invoice.PaidDate)
}

func TestPaymentService_ListByInvoice(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoice := createSentInvoice(t, tenantID, 100)

	payment, err := billing.NewPayment(tenantID, invoice.ID, decimal.NewFromInt(50), billing.PaymentMethodCash, time.Now())
	require.NoError(t, err)

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoice.ID).Return(invoice, nil)
	paymentRepo.On("FindByInvoice", ctx, tenantID, invoice.ID).Return([]billing.Payment{*payment}, nil)

	results, err := service.ListByInvoice(ctx, tenantID, invoice.ID)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "cash", results[0].Method)
}

func TestPaymentService_ListByInvoice_InvoiceNotFound(t *testing.T) {
	invoiceRepo := new(MockInvoiceRepository)
	paymentRepo := new(MockPaymentRepository)
	service := NewPaymentService(invoiceRepo, paymentRepo, nil)

	ctx := context.Background()
	tenantID := newTestTenantID()
	invoiceID := uuid.New()

	invoiceRepo.On("FindByIDForTenant", ctx, tenantID, invoiceID).Return(nil, shared.ErrNotFound)

	results, err := service.ListByInvoice(ctx, tenantID, invoiceID)

	require.Error(t, err)
	assert.Nil(t, results)
	paymentRepo.AssertNotCalled(t, "FindByInvoice", mock.Anything, mock.Anything, mock.Anything)
}
