package billing

import (
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodOther        PaymentMethod = "other"
)

// Payment is a single amount applied against an invoice
type Payment struct {
	shared.TenantEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method      PaymentMethod   `gorm:"type:varchar(30);not null;default:'other'"`
	PaymentDate time.Time       `gorm:"not null"`
	Reference   string          `gorm:"type:varchar(255)"`
	Notes       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record against an invoice
func NewPayment(tenantID, invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, paymentDate time.Time) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Payment invoice is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if method == "" {
		method = PaymentMethodOther
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	return &Payment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		InvoiceID:    invoiceID,
		Amount:       amount,
		Method:       method,
		PaymentDate:  paymentDate,
	}, nil
}
