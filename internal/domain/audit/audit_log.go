package audit

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Action classifies what a request did to a resource
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
	ActionView   Action = "VIEW"
)

// Log is one recorded action by a user against a resource. Logs are
// append-only; nothing in the system updates or deletes them.
type Log struct {
	shared.TenantEntity
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Action     Action         `gorm:"type:varchar(20);not null;index"`
	Resource   string         `gorm:"type:varchar(100);not null;index"`
	ResourceID *uuid.UUID     `gorm:"type:uuid"`
	Method     string         `gorm:"type:varchar(10);not null"`
	Path       string         `gorm:"type:varchar(500);not null"`
	IPAddress  string         `gorm:"type:varchar(45)"`
	UserAgent  string         `gorm:"type:varchar(500)"`
	Detail     datatypes.JSON `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (Log) TableName() string {
	return "audit_logs"
}

// NewLog creates an audit record
func NewLog(tenantID, userID uuid.UUID, action Action, resource, method, path string) *Log {
	return &Log{
		TenantEntity: shared.NewTenantEntity(tenantID),
		UserID:       userID,
		Action:       action,
		Resource:     resource,
		Method:       method,
		Path:         path,
	}
}

// Repository defines persistence operations for audit logs
type Repository interface {
	Save(ctx context.Context, log *Log) error
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Log, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}
