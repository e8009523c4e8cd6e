package messaging

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationTypeInfo    NotificationType = "info"
	NotificationTypeTask    NotificationType = "task"
	NotificationTypeInvoice NotificationType = "invoice"
	NotificationTypeSystem  NotificationType = "system"
)

// Notification is an in-app message for a specific user
type Notification struct {
	shared.TenantEntity
	UserID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type    NotificationType `gorm:"type:varchar(30);not null;default:'info'"`
	Title   string           `gorm:"type:varchar(255);not null"`
	Message string           `gorm:"type:text"`
	Link    string           `gorm:"type:varchar(500)"`
	Read    bool             `gorm:"not null;default:false;index"`
	ReadAt  *time.Time
}

// TableName returns the table name for GORM
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification creates an unread notification for a user
func NewNotification(tenantID, userID uuid.UUID, nType NotificationType, title, message string) (*Notification, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Notification user is required")
	}
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Notification title cannot be empty")
	}
	if nType == "" {
		nType = NotificationTypeInfo
	}
	return &Notification{
		TenantEntity: shared.NewTenantEntity(tenantID),
		UserID:       userID,
		Type:         nType,
		Title:        title,
		Message:      message,
	}, nil
}

// MarkRead flags the notification as read. Idempotent.
func (n *Notification) MarkRead(at time.Time) {
	if n.Read {
		return
	}
	n.Read = true
	n.ReadAt = &at
	n.Touch()
}
