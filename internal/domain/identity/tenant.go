package identity

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
)

// TenantStatus represents the lifecycle state of a tenant
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// Tenant is an isolated organization. Every business record in the
// system belongs to exactly one tenant.
type Tenant struct {
	shared.BaseEntity
	Name   string       `gorm:"type:varchar(255);not null"`
	Slug   string       `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status TenantStatus `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates an active tenant
func NewTenant(name, slug string) (*Tenant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Tenant slug cannot be empty")
	}
	return &Tenant{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
		Status:     TenantStatusActive,
	}, nil
}

// IsActive reports whether the tenant can be used
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// Suspend blocks the tenant from logging in
func (t *Tenant) Suspend() {
	t.Status = TenantStatusSuspended
	t.Touch()
}

// Activate re-enables a suspended tenant
func (t *Tenant) Activate() {
	t.Status = TenantStatusActive
	t.Touch()
}
