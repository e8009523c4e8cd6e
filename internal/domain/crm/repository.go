package crm

import (
	"context"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Customer, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, customer *Customer) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ContactRepository defines persistence operations for contacts
type ContactRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Contact, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Contact, error)
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) ([]Contact, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, contact *Contact) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// OpportunityRepository defines persistence operations for opportunities
type OpportunityRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Opportunity, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Opportunity, error)
	FindByStage(ctx context.Context, tenantID, stageID uuid.UUID) ([]Opportunity, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	Save(ctx context.Context, opportunity *Opportunity) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// OpportunityStageRepository defines persistence operations for pipeline stages
type OpportunityStageRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*OpportunityStage, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]OpportunityStage, error)
	Save(ctx context.Context, stage *OpportunityStage) error
	SaveAll(ctx context.Context, stages []*OpportunityStage) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// ActivityRepository defines persistence operations for activities
type ActivityRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Activity, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Activity, error)
	FindRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]Activity, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, activity *Activity) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}

// TaskRepository defines persistence operations for tasks
type TaskRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Task, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Task, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, task *Task) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
