package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/pdf"
)

// InvoiceService handles invoice lifecycle operations
type InvoiceService struct {
	invoiceRepo  billing.InvoiceRepository
	paymentRepo  billing.PaymentRepository
	customerRepo crm.CustomerRepository
	tenantRepo   identity.TenantRepository
	renderer     pdf.Renderer
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	customerRepo crm.CustomerRepository,
	tenantRepo identity.TenantRepository,
	renderer pdf.Renderer,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		tenantRepo:   tenantRepo,
		renderer:     renderer,
	}
}

// Create creates a draft invoice with its line items
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, req.CustomerID); err != nil {
		return nil, err
	}

	invoice, err := billing.NewInvoice(tenantID, req.CustomerID, req.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if err := invoice.AddItem(item.Description, item.Quantity, item.UnitPrice); err != nil {
			return nil, err
		}
	}
	if req.Tax != nil {
		if err := invoice.SetTax(*req.Tax); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves an invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	invoices, err := s.invoiceRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToInvoiceResponses(invoices), total, nil
}

// Update rewrites the tax and line items of a draft invoice
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	if req.Items != nil {
		if err := invoice.ClearItems(); err != nil {
			return nil, err
		}
		for _, item := range req.Items {
			if err := invoice.AddItem(item.Description, item.Quantity, item.UnitPrice); err != nil {
				return nil, err
			}
		}
	}
	if req.Tax != nil {
		if err := invoice.SetTax(*req.Tax); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Send marks a draft invoice as sent
func (s *InvoiceService) Send(ctx context.Context, tenantID, invoiceID uuid.UUID, req SendInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.MarkSent(req.IssueDate, req.DueDate); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Cancel voids an invoice
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// Delete removes an invoice and its items
func (s *InvoiceService) Delete(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return s.invoiceRepo.DeleteForTenant(ctx, tenantID, invoiceID)
}

// RenderPDF produces a printable PDF of the invoice
func (s *InvoiceService) RenderPDF(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]byte, string, error) {
	invoice, err := s.invoiceRepo.FindByIDForTenant(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, "", err
	}
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, invoice.CustomerID)
	if err != nil {
		return nil, "", err
	}
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, "", err
	}
	paid, err := s.paymentRepo.SumByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, "", err
	}

	doc := pdf.BuildInvoiceDocument(tenant.Name, invoice, customer, paid)
	html, err := pdf.RenderInvoiceHTML(doc)
	if err != nil {
		return nil, "", err
	}
	data, err := s.renderer.Render(ctx, html)
	if err != nil {
		return nil, "", err
	}

	return data, invoice.InvoiceNumber + ".pdf", nil
}
