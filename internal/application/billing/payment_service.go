package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/billing"
)

// PaymentService applies payments against invoices
type PaymentService struct {
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(invoiceRepo billing.InvoiceRepository, paymentRepo billing.PaymentRepository, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// Apply records a payment against an invoice. When the cumulative paid
// amount settles the invoice it is marked paid; a failure to persist
// that status change does not fail the request, the payment itself is
// already committed and the invoice can be reconciled later.
func (s *PaymentService) Apply(ctx context.Context, tenantID, invoiceID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	alreadyPaid, err := s.paymentRepo.SumByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.CheckPayment(alreadyPaid, req.Amount); err != nil {
		return nil, err
	}

	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}
	payment, err := billing.NewPayment(tenantID, invoiceID, req.Amount, billing.PaymentMethod(req.Method), paymentDate)
	if err != nil {
		return nil, err
	}
	payment.Reference = req.Reference
	payment.Notes = req.Notes

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}

	if invoice.IsSettledBy(alreadyPaid.Add(req.Amount)) {
		invoice.MarkPaid(paymentDate)
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			s.logger.Error("Failed to mark invoice paid after settling payment",
				zap.String("invoice_id", invoiceID.String()),
				zap.String("payment_id", payment.ID.String()),
				zap.Error(err))
		}
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ListByInvoice retrieves all payments applied to an invoice
func (s *PaymentService) ListByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	if _, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToPaymentResponses(payments), nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, tenantID, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByIDForTenant(ctx, tenantID, paymentID)
	if err != nil {
		return nil, err
	}

	response := ToPaymentResponse(payment)
	return &response, nil
}

// Delete removes a payment record
func (s *PaymentService) Delete(ctx context.Context, tenantID, paymentID uuid.UUID) error {
	return s.paymentRepo.DeleteForTenant(ctx, tenantID, paymentID)
}
