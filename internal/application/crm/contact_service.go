package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// ContactService handles contact-related business operations
type ContactService struct {
	contactRepo  crm.ContactRepository
	customerRepo crm.CustomerRepository
}

// NewContactService creates a new ContactService
func NewContactService(contactRepo crm.ContactRepository, customerRepo crm.CustomerRepository) *ContactService {
	return &ContactService{
		contactRepo:  contactRepo,
		customerRepo: customerRepo,
	}
}

// Create creates a new contact
func (s *ContactService) Create(ctx context.Context, tenantID uuid.UUID, req CreateContactRequest) (*ContactResponse, error) {
	contact, err := crm.NewContact(tenantID, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	if req.Email != "" || req.Phone != "" {
		if err := contact.SetContactInfo(req.Email, req.Phone); err != nil {
			return nil, err
		}
	}
	contact.Position = req.Position
	if req.CustomerID != nil {
		// The customer must exist in the same tenant
		if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
			return nil, err
		}
		contact.AssignToCustomer(*req.CustomerID)
	}

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// GetByID retrieves a contact by ID
func (s *ContactService) GetByID(ctx context.Context, tenantID, contactID uuid.UUID) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByIDForTenant(ctx, tenantID, contactID)
	if err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// List retrieves contacts with filtering and pagination
func (s *ContactService) List(ctx context.Context, tenantID uuid.UUID, filter ContactListFilter) ([]ContactResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	contacts, err := s.contactRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contactRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToContactResponses(contacts), total, nil
}

// ListByCustomer retrieves all contacts of a customer
func (s *ContactService) ListByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]ContactResponse, error) {
	contacts, err := s.contactRepo.FindByCustomer(ctx, tenantID, customerID)
	if err != nil {
		return nil, err
	}
	return ToContactResponses(contacts), nil
}

// Update updates a contact
func (s *ContactService) Update(ctx context.Context, tenantID, contactID uuid.UUID, req UpdateContactRequest) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByIDForTenant(ctx, tenantID, contactID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.Email != nil || req.Phone != nil {
		email := contact.Email
		phone := contact.Phone
		if req.Email != nil {
			email = *req.Email
		}
		if req.Phone != nil {
			phone = *req.Phone
		}
		if err := contact.SetContactInfo(email, phone); err != nil {
			return nil, err
		}
	}
	if req.Position != nil {
		contact.Position = *req.Position
	}
	if req.CustomerID != nil {
		if _, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *req.CustomerID); err != nil {
			return nil, err
		}
		contact.AssignToCustomer(*req.CustomerID)
	}
	contact.Touch()

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}

	response := ToContactResponse(contact)
	return &response, nil
}

// Delete removes a contact
func (s *ContactService) Delete(ctx context.Context, tenantID, contactID uuid.UUID) error {
	return s.contactRepo.DeleteForTenant(ctx, tenantID, contactID)
}
