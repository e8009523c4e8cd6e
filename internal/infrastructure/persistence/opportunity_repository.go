package persistence

import (
	"context"
	"errors"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOpportunityRepository implements crm.OpportunityRepository using GORM
type GormOpportunityRepository struct {
	db *gorm.DB
}

// NewGormOpportunityRepository creates a new GormOpportunityRepository
func NewGormOpportunityRepository(db *gorm.DB) *GormOpportunityRepository {
	return &GormOpportunityRepository{db: db}
}

// FindByIDForTenant finds an opportunity by ID within a tenant
func (r *GormOpportunityRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Opportunity, error) {
	var opp crm.Opportunity
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&opp).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &opp, nil
}

// FindAllForTenant finds all opportunities for a tenant matching the filter
func (r *GormOpportunityRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]crm.Opportunity, error) {
	var opps []crm.Opportunity
	query := r.db.WithContext(ctx).Model(&crm.Opportunity{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)
	query = applyPagination(query, filter, "created_at DESC")

	if err := query.Find(&opps).Error; err != nil {
		return nil, err
	}
	return opps, nil
}

// FindByStage finds all opportunities in a pipeline stage
func (r *GormOpportunityRepository) FindByStage(ctx context.Context, tenantID, stageID uuid.UUID) ([]crm.Opportunity, error) {
	var opps []crm.Opportunity
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND stage_id = ?", tenantID, stageID).
		Order("created_at DESC").
		Find(&opps).Error; err != nil {
		return nil, err
	}
	return opps, nil
}

// CountForTenant counts opportunities for a tenant matching the filter
func (r *GormOpportunityRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&crm.Opportunity{}).Where("tenant_id = ?", tenantID)
	query = r.applyFilters(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCustomer counts opportunities linked to a customer
func (r *GormOpportunityRepository) CountByCustomer(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&crm.Opportunity{}).
		Where("tenant_id = ? AND customer_id = ?", tenantID, customerID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an opportunity
func (r *GormOpportunityRepository) Save(ctx context.Context, opp *crm.Opportunity) error {
	return r.db.WithContext(ctx).Save(opp).Error
}

// DeleteForTenant deletes an opportunity within a tenant
func (r *GormOpportunityRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.Opportunity{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormOpportunityRepository) applyFilters(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySearch(query, filter.Search, "title", "description")

	for key, value := range filter.Filters {
		switch key {
		case "stage_id":
			query = query.Where("stage_id = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "assigned_to_id":
			query = query.Where("assigned_to_id = ?", value)
		}
	}
	return query
}

var _ crm.OpportunityRepository = (*GormOpportunityRepository)(nil)

// GormOpportunityStageRepository implements crm.OpportunityStageRepository using GORM
type GormOpportunityStageRepository struct {
	db *gorm.DB
}

// NewGormOpportunityStageRepository creates a new GormOpportunityStageRepository
func NewGormOpportunityStageRepository(db *gorm.DB) *GormOpportunityStageRepository {
	return &GormOpportunityStageRepository{db: db}
}

// FindByIDForTenant finds a stage by ID within a tenant
func (r *GormOpportunityStageRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.OpportunityStage, error) {
	var stage crm.OpportunityStage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&stage).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &stage, nil
}

// FindAllForTenant finds all stages for a tenant ordered by sort order
func (r *GormOpportunityStageRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]crm.OpportunityStage, error) {
	var stages []crm.OpportunityStage
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sort_order ASC").
		Find(&stages).Error; err != nil {
		return nil, err
	}
	return stages, nil
}

// Save creates or updates a stage
func (r *GormOpportunityStageRepository) Save(ctx context.Context, stage *crm.OpportunityStage) error {
	return r.db.WithContext(ctx).Save(stage).Error
}

// SaveAll persists a batch of stages, used for reordering
func (r *GormOpportunityStageRepository) SaveAll(ctx context.Context, stages []*crm.OpportunityStage) error {
	if len(stages) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stage := range stages {
			if err := tx.Save(stage).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteForTenant deletes a stage within a tenant
func (r *GormOpportunityStageRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&crm.OpportunityStage{}, "tenant_id = ? AND id = ?", tenantID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ crm.OpportunityStageRepository = (*GormOpportunityStageRepository)(nil)
