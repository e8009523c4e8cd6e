// Package tenant provides multi-tenant database scoping for GORM.
//
// It applies WHERE tenant_id = ? conditions automatically, either
// through explicit scopes or through query callbacks that read the
// tenant from the request context. Repositories still write explicit
// tenant predicates; the callbacks are a second line of defense.
package tenant

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTenantIDRequired is returned when tenant_id is required but not found
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when the tenant_id format is invalid
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// Scope applies tenant filtering to GORM queries
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// ScopeString applies tenant filtering using a string tenant ID
func ScopeString(tenantID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}
}

// DB wraps a GORM DB with automatic tenant scoping
type DB struct {
	db       *gorm.DB
	required bool
}

// NewDB creates a tenant-scoping wrapper. When required is true, any
// operation without a tenant in context fails rather than running
// unscoped.
func NewDB(db *gorm.DB, required bool) *DB {
	return &DB{db: db, required: required}
}

// WithContext returns a GORM DB scoped to the tenant taken from the
// request context. Without a tenant the returned DB errors on any
// operation when the wrapper is required.
func (t *DB) WithContext(ctx context.Context) *gorm.DB {
	tenantID := logger.GetTenantID(ctx)

	if tenantID == "" {
		db := t.db.WithContext(ctx)
		if t.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return db
	}
	if _, err := uuid.Parse(tenantID); err != nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidTenantID)
		return db
	}
	return t.db.WithContext(ctx).Scopes(ScopeString(tenantID))
}

// WithTenant returns a GORM DB scoped to a specific tenant ID
func (t *DB) WithTenant(ctx context.Context, tenantID uuid.UUID) *gorm.DB {
	if tenantID == uuid.Nil {
		db := t.db.WithContext(ctx)
		if t.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return db
	}
	return t.db.WithContext(ctx).Scopes(Scope(tenantID))
}

// Transaction executes a function within a tenant-scoped transaction
func (t *DB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	tenantID := logger.GetTenantID(ctx)
	if tenantID == "" && t.required {
		return ErrTenantIDRequired
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tenantID != "" {
			tx = tx.Scopes(ScopeString(tenantID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without tenant scoping. Only for
// system-level operations such as migrations and tenant provisioning.
func (t *DB) Unscoped() *gorm.DB {
	return t.db
}
