package crm

import (
	"regexp"
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Customer is the aggregate root of the customer module. Contacts,
// opportunities, activities, and documents all hang off a customer.
type Customer struct {
	shared.TenantEntity
	Name        string         `gorm:"type:varchar(200);not null;index"`
	CompanyName string         `gorm:"type:varchar(200)"`
	Email       string         `gorm:"type:varchar(200);index"`
	Phone       string         `gorm:"type:varchar(50)"`
	Address     string         `gorm:"type:text"`
	City        string         `gorm:"type:varchar(100)"`
	Country     string         `gorm:"type:varchar(100)"`
	Notes       string         `gorm:"type:text"`
	Tags        pq.StringArray `gorm:"type:text[]"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer owned by the given tenant
func NewCustomer(tenantID uuid.UUID, name string) (*Customer, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	return &Customer{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Tags:         pq.StringArray{},
	}, nil
}

// Rename updates the customer's display name
func (c *Customer) Rename(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	c.Name = name
	c.Touch()
	return nil
}

// SetContactInfo updates email and phone
func (c *Customer) SetContactInfo(email, phone string) error {
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

// SetAddress updates the customer's address fields
func (c *Customer) SetAddress(address, city, country string) {
	c.Address = address
	c.City = city
	c.Country = country
	c.Touch()
}

// SetTags replaces the customer's tag list
func (c *Customer) SetTags(tags []string) {
	cleaned := make(pq.StringArray, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	c.Tags = cleaned
	c.Touch()
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
