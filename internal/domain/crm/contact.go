package crm

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Contact is a person at a customer organization
type Contact struct {
	shared.TenantEntity
	FirstName  string     `gorm:"type:varchar(100);not null"`
	LastName   string     `gorm:"type:varchar(100);not null"`
	Email      string     `gorm:"type:varchar(200);index"`
	Phone      string     `gorm:"type:varchar(50)"`
	Position   string     `gorm:"type:varchar(100)"`
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}

// NewContact creates a new contact owned by the given tenant
func NewContact(tenantID uuid.UUID, firstName, lastName string) (*Contact, error) {
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "First and last name are required")
	}
	return &Contact{
		TenantEntity: shared.NewTenantEntity(tenantID),
		FirstName:    firstName,
		LastName:     lastName,
	}, nil
}

// FullName returns the contact's display name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// SetContactInfo updates email and phone
func (c *Contact) SetContactInfo(email, phone string) error {
	if email != "" {
		if err := validateEmail(email); err != nil {
			return err
		}
	}
	c.Email = email
	c.Phone = phone
	c.Touch()
	return nil
}

// AssignToCustomer links the contact to a customer
func (c *Contact) AssignToCustomer(customerID uuid.UUID) {
	c.CustomerID = &customerID
	c.Touch()
}
