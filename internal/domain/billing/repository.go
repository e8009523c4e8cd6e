package billing

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	Save(ctx context.Context, invoice *Invoice) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Payment, error)
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)
	SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error)
	Save(ctx context.Context, payment *Payment) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
