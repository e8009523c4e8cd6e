package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo    crm.CustomerRepository
	opportunityRepo crm.OpportunityRepository
	invoiceRepo     billing.InvoiceRepository
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(
	customerRepo crm.CustomerRepository,
	opportunityRepo crm.OpportunityRepository,
	invoiceRepo billing.InvoiceRepository,
) *CustomerService {
	return &CustomerService{
		customerRepo:    customerRepo,
		opportunityRepo: opportunityRepo,
		invoiceRepo:     invoiceRepo,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := crm.NewCustomer(tenantID, req.Name)
	if err != nil {
		return nil, err
	}
	customer.CompanyName = req.CompanyName
	if req.Email != "" || req.Phone != "" {
		if err := customer.SetContactInfo(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	customer.SetAddress(req.Address, req.City, req.Country)
	customer.Notes = req.Notes
	if len(req.Tags) > 0 {
		customer.SetTags(req.Tags)
	}

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, tenantID, customerID uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves customers with filtering and pagination
func (s *CustomerService) List(ctx context.Context, tenantID uuid.UUID, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.Tag != "" {
		domainFilter.Filters["tag"] = filter.Tag
	}
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}

	customers, err := s.customerRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToCustomerResponses(customers), total, nil
}

// Update updates a customer
func (s *CustomerService) Update(ctx context.Context, tenantID, customerID uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := customer.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.CompanyName != nil {
		customer.CompanyName = *req.CompanyName
	}
	if req.Email != nil || req.Phone != nil {
		email := customer.Email
		phone := customer.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := customer.SetContactInfo(email, phone); err != nil {
			return nil, err
		}
	}
	if req.Address != nil || req.City != nil || req.Country != nil {
		address := customer.Address
		city := customer.City
		country := customer.Country
		if req.Address != nil {
			address = *req.Address
		}
		if req.City != nil {
			city = *req.City
		}
		if req.Country != nil {
			country = *req.Country
		}
		customer.SetAddress(address, city, country)
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if req.Tags != nil {
		customer.SetTags(*req.Tags)
	}
	customer.Touch()

	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete removes a customer. Customers with opportunities or invoices
// cannot be deleted; the caller gets a conflict with the counts.
func (s *CustomerService) Delete(ctx context.Context, tenantID, customerID uuid.UUID) error {
	if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, customerID); err != nil {
		return err
	}

	opportunities, err := s.opportunityRepo.CountByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	invoices, err := s.invoiceRepo.CountByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return err
	}
	if opportunities > 0 || invoices > 0 {
		return shared.NewDomainErrorf(
			shared.ErrHasDependents.Code,
			"Customer has %d opportunities and %d invoices and cannot be deleted", opportunities, invoices,
		)
	}

	return s.customerRepo.DeleteForTenant(ctx, tenantID, customerID)
}
