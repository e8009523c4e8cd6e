package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// ActivityService records interactions with customers and opportunities
type ActivityService struct {
	activityRepo crm.ActivityRepository
}

// NewActivityService creates a new ActivityService
func NewActivityService(activityRepo crm.ActivityRepository) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

// Create logs a new activity for the acting user
func (s *ActivityService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateActivityRequest) (*ActivityResponse, error) {
	activity, err := crm.NewActivity(tenantID, userID, crm.ActivityType(req.Type), req.Subject)
	if err != nil {
		return nil, err
	}
	activity.Notes = req.Notes
	activity.CustomerID = req.CustomerID
	activity.OpportunityID = req.OpportunityID

	if err := s.activityRepo.Save(ctx, activity); err != nil {
		return nil, err
	}

	response := ToActivityResponse(activity)
	return &response, nil
}

// GetByID retrieves an activity by ID
func (s *ActivityService) GetByID(ctx context.Context, tenantID, activityID uuid.UUID) (*ActivityResponse, error) {
	activity, err := s.activityRepo.FindByIDForTenant(ctx, tenantID, activityID)
	if err != nil {
		return nil, err
	}

	response := ToActivityResponse(activity)
	return &response, nil
}

// List retrieves activities with filtering and pagination
func (s *ActivityService) List(ctx context.Context, tenantID uuid.UUID, filter ActivityListFilter) ([]ActivityResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.OpportunityID != nil {
		domainFilter.Filters["opportunity_id"] = *filter.OpportunityID
	}

	activities, err := s.activityRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.activityRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToActivityResponses(activities), total, nil
}

// Delete removes an activity
func (s *ActivityService) Delete(ctx context.Context, tenantID, activityID uuid.UUID) error {
	return s.activityRepo.DeleteForTenant(ctx, tenantID, activityID)
}
