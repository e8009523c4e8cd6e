package billing

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTolerance absorbs rounding drift when comparing cumulative
// payments against the invoice total.
var PaymentTolerance = decimal.NewFromFloat(0.01)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

// Invoice is a billable document issued to a customer. Items and
// payments belong to the invoice; the PAID transition is driven by
// cumulative payment amounts reaching the total.
type Invoice struct {
	shared.TenantEntity
	InvoiceNumber string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_tenant_number,priority:2"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IssueDate     *time.Time
	DueDate       *time.Time
	PaidDate      *time.Time
	Items         []InvoiceItem `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// InvoiceItem is a single line on an invoice
type InvoiceItem struct {
	shared.TenantEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// NewInvoice creates a new draft invoice for a customer
func NewInvoice(tenantID, customerID uuid.UUID, invoiceNumber string) (*Invoice, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Invoice customer is required")
	}
	return &Invoice{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		InvoiceNumber: strings.ToUpper(invoiceNumber),
		CustomerID:    customerID,
		Status:        InvoiceStatusDraft,
		Subtotal:      decimal.Zero,
		Tax:           decimal.Zero,
		Total:         decimal.Zero,
	}, nil
}

// AddItem appends a line item and recalculates totals
func (i *Invoice) AddItem(description string, quantity, unitPrice decimal.Decimal) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be added to draft invoices")
	}
	if strings.TrimSpace(description) == "" {
		return shared.NewDomainError("INVALID_ITEM", "Item description cannot be empty")
	}
	if !quantity.IsPositive() {
		return shared.NewDomainError("INVALID_ITEM", "Item quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_ITEM", "Item unit price cannot be negative")
	}

	item := InvoiceItem{
		TenantEntity: shared.NewTenantEntity(i.TenantID),
		InvoiceID:    i.ID,
		Description:  description,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Amount:       quantity.Mul(unitPrice).Round(2),
	}
	i.Items = append(i.Items, item)
	i.recalculate()
	return nil
}

// ClearItems removes all line items from a draft invoice
func (i *Invoice) ClearItems() error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Items can only be changed on draft invoices")
	}
	i.Items = nil
	i.recalculate()
	return nil
}

// SetTax sets the tax amount and recalculates the total
func (i *Invoice) SetTax(tax decimal.Decimal) error {
	if tax.IsNegative() {
		return shared.NewDomainError("INVALID_TAX", "Tax cannot be negative")
	}
	i.Tax = tax
	i.recalculate()
	return nil
}

func (i *Invoice) recalculate() {
	subtotal := decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.Amount)
	}
	i.Subtotal = subtotal
	i.Total = subtotal.Add(i.Tax)
	i.Touch()
}

// MarkSent transitions the invoice from draft to sent
func (i *Invoice) MarkSent(issueDate, dueDate time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Only draft invoices can be sent")
	}
	i.Status = InvoiceStatusSent
	i.IssueDate = &issueDate
	i.DueDate = &dueDate
	i.Touch()
	return nil
}

// Cancel voids the invoice. Paid invoices cannot be cancelled.
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Paid invoices cannot be cancelled")
	}
	i.Status = InvoiceStatusCancelled
	i.Touch()
	return nil
}

// CheckPayment validates that a payment of the given amount can be
// applied on top of the amount already paid.
func (i *Invoice) CheckPayment(alreadyPaid, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if i.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot apply payments to a cancelled invoice")
	}
	if alreadyPaid.Add(amount).GreaterThan(i.Total.Add(PaymentTolerance)) {
		return shared.ErrPaymentExceeded
	}
	return nil
}

// IsSettledBy reports whether the given cumulative payment amount
// settles the invoice, within the rounding tolerance.
func (i *Invoice) IsSettledBy(paidTotal decimal.Decimal) bool {
	return paidTotal.GreaterThanOrEqual(i.Total.Sub(PaymentTolerance))
}

// MarkPaid stamps the invoice as fully paid. Idempotent.
func (i *Invoice) MarkPaid(paidDate time.Time) {
	if i.Status == InvoiceStatusPaid {
		return
	}
	i.Status = InvoiceStatusPaid
	i.PaidDate = &paidDate
	i.Touch()
}
