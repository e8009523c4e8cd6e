package crm

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ActivityType classifies a logged interaction
type ActivityType string

const (
	ActivityTypeCall    ActivityType = "call"
	ActivityTypeMeeting ActivityType = "meeting"
	ActivityTypeEmail   ActivityType = "email"
	ActivityTypeNote    ActivityType = "note"
)

// Activity is a logged interaction with a customer or opportunity
type Activity struct {
	shared.TenantEntity
	Type          ActivityType `gorm:"type:varchar(20);not null"`
	Subject       string       `gorm:"type:varchar(200);not null"`
	Notes         string       `gorm:"type:text"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID   `gorm:"type:uuid;index"`
	OpportunityID *uuid.UUID   `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (Activity) TableName() string {
	return "activities"
}

// NewActivity logs a new interaction for the tenant
func NewActivity(tenantID, userID uuid.UUID, activityType ActivityType, subject string) (*Activity, error) {
	switch activityType {
	case ActivityTypeCall, ActivityTypeMeeting, ActivityTypeEmail, ActivityTypeNote:
	default:
		return nil, shared.NewDomainError("INVALID_TYPE", "Unknown activity type")
	}
	if strings.TrimSpace(subject) == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Activity subject cannot be empty")
	}
	return &Activity{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Type:         activityType,
		Subject:      subject,
		UserID:       userID,
	}, nil
}
