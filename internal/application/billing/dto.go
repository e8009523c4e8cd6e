package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crm/backend/internal/domain/billing"
)

// =============================================================================
// Invoice DTOs
// =============================================================================

// InvoiceItemRequest represents one line of an invoice
type InvoiceItemRequest struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"`
}

// CreateInvoiceRequest represents a request to create a draft invoice
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number" binding:"required,min=1,max=50"`
	CustomerID    uuid.UUID            `json:"customer_id" binding:"required"`
	Tax           *decimal.Decimal     `json:"tax"`
	Items         []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateInvoiceRequest replaces the line items of a draft invoice
type UpdateInvoiceRequest struct {
	Tax   *decimal.Decimal     `json:"tax"`
	Items []InvoiceItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

// SendInvoiceRequest marks an invoice as sent
type SendInvoiceRequest struct {
	IssueDate time.Time `json:"issue_date" binding:"required"`
	DueDate   time.Time `json:"due_date" binding:"required"`
}

// InvoiceItemResponse represents an invoice line in API responses
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	InvoiceNumber string                `json:"invoice_number"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	Status        string                `json:"status"`
	Subtotal      decimal.Decimal       `json:"subtotal"`
	Tax           decimal.Decimal       `json:"tax"`
	Total         decimal.Decimal       `json:"total"`
	IssueDate     *time.Time            `json:"issue_date,omitempty"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	PaidDate      *time.Time            `json:"paid_date,omitempty"`
	Items         []InvoiceItemResponse `json:"items"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// InvoiceListFilter represents filter options for invoice list
type InvoiceListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft sent paid cancelled"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToInvoiceResponse maps an invoice to its API representation
func ToInvoiceResponse(i *billing.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(i.Items))
	for j := range i.Items {
		items[j] = InvoiceItemResponse{
			ID:          i.Items[j].ID,
			Description: i.Items[j].Description,
			Quantity:    i.Items[j].Quantity,
			UnitPrice:   i.Items[j].UnitPrice,
			Amount:      i.Items[j].Amount,
		}
	}
	return InvoiceResponse{
		ID:            i.ID,
		InvoiceNumber: i.InvoiceNumber,
		CustomerID:    i.CustomerID,
		Status:        string(i.Status),
		Subtotal:      i.Subtotal,
		Tax:           i.Tax,
		Total:         i.Total,
		IssueDate:     i.IssueDate,
		DueDate:       i.DueDate,
		PaidDate:      i.PaidDate,
		Items:         items,
		CreatedAt:     i.CreatedAt,
		UpdatedAt:     i.UpdatedAt,
	}
}

// ToInvoiceResponses maps a slice of invoices
func ToInvoiceResponses(invoices []billing.Invoice) []InvoiceResponse {
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses
}

// =============================================================================
// Payment DTOs
// =============================================================================

// CreatePaymentRequest represents a request to record a payment
type CreatePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Method      string          `json:"method" binding:"omitempty,oneof=cash bank_transfer credit_card check other"`
	PaymentDate *time.Time      `json:"payment_date"`
	Reference   string          `json:"reference" binding:"max=255"`
	Notes       string          `json:"notes"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToPaymentResponse maps a payment to its API representation
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Method:      string(p.Method),
		PaymentDate: p.PaymentDate,
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
	}
}

// ToPaymentResponses maps a slice of payments
func ToPaymentResponses(payments []billing.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}
	return responses
}
