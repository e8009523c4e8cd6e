package messaging

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EmailRepository defines persistence operations for emails
type EmailRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Email, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Email, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, email *Email) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// EmailTemplateRepository defines persistence operations for templates
type EmailTemplateRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*EmailTemplate, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]EmailTemplate, error)
	Save(ctx context.Context, template *EmailTemplate) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// NotificationRepository defines persistence operations for notifications
type NotificationRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Notification, error)
	FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]Notification, error)
	CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error)
	Save(ctx context.Context, notification *Notification) error
	MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
