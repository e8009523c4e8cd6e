package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OpportunityStage is an ordered, tenant-defined pipeline position.
// Stages are freely reorderable; SortOrder only drives display.
type OpportunityStage struct {
	shared.TenantEntity
	Name        string `gorm:"type:varchar(100);not null"`
	Description string `gorm:"type:text"`
	SortOrder   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (OpportunityStage) TableName() string {
	return "opportunity_stages"
}

// NewOpportunityStage creates a new pipeline stage for the tenant
func NewOpportunityStage(tenantID uuid.UUID, name string, sortOrder int) (*OpportunityStage, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Stage name cannot be empty")
	}
	return &OpportunityStage{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		SortOrder:    sortOrder,
	}, nil
}

// Reorder moves the stage to a new sort position
func (s *OpportunityStage) Reorder(sortOrder int) {
	s.SortOrder = sortOrder
	s.Touch()
}

// Opportunity is a potential deal moving through the pipeline
type Opportunity struct {
	shared.TenantEntity
	Title             string          `gorm:"type:varchar(200);not null"`
	Description       string          `gorm:"type:text"`
	Value             decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	StageID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID        *uuid.UUID      `gorm:"type:uuid;index"`
	AssignedToID      *uuid.UUID      `gorm:"type:uuid;index"`
	ExpectedCloseDate *time.Time
}

// TableName returns the table name for GORM
func (Opportunity) TableName() string {
	return "opportunities"
}

// NewOpportunity creates a new opportunity in the given stage
func NewOpportunity(tenantID, stageID uuid.UUID, title string, value decimal.Decimal) (*Opportunity, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Opportunity title cannot be empty")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_VALUE", "Opportunity value cannot be negative")
	}
	if stageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STAGE", "Opportunity stage is required")
	}
	return &Opportunity{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Title:        title,
		Value:        value,
		StageID:      stageID,
	}, nil
}

// MoveToStage re-points the opportunity at another stage. Any stage is
// reachable from any other stage; there is no workflow legality check.
func (o *Opportunity) MoveToStage(stageID uuid.UUID) error {
	if stageID == uuid.Nil {
		return shared.NewDomainError("INVALID_STAGE", "Target stage is required")
	}
	o.StageID = stageID
	o.Touch()
	return nil
}

// SetValue updates the deal value
func (o *Opportunity) SetValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewDomainError("INVALID_VALUE", "Opportunity value cannot be negative")
	}
	o.Value = value
	o.Touch()
	return nil
}

// AssignTo sets the responsible user
func (o *Opportunity) AssignTo(userID uuid.UUID) {
	o.AssignedToID = &userID
	o.Touch()
}
