package persistence

import (
	"context"
	"time"

	"github.com/crm/backend/internal/domain/billing"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// DashboardStats aggregates the headline counts and revenue figures
func (r *GormReportRepository) DashboardStats(ctx context.Context, tenantID uuid.UUID) (*report.DashboardStats, error) {
	stats := &report.DashboardStats{
		TotalRevenue:     decimal.Zero,
		RevenueThisMonth: decimal.Zero,
		PipelineValue:    decimal.Zero,
	}
	db := r.db.WithContext(ctx)

	if err := db.Model(&crm.Customer{}).Where("tenant_id = ?", tenantID).
		Count(&stats.CustomerCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&crm.Contact{}).Where("tenant_id = ?", tenantID).
		Count(&stats.ContactCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&crm.Opportunity{}).Where("tenant_id = ?", tenantID).
		Count(&stats.OpportunityCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&crm.Task{}).
		Where("tenant_id = ? AND status IN ?", tenantID,
			[]crm.TaskStatus{crm.TaskStatusTodo, crm.TaskStatusInProgress}).
		Count(&stats.OpenTaskCount).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&billing.Invoice{}).Where("tenant_id = ?", tenantID).
		Count(&stats.InvoiceCount).Error; err != nil {
		return nil, err
	}

	// Revenue counts only paid invoices
	type revenueResult struct {
		Total decimal.Decimal
	}
	var totalRevenue revenueResult
	if err := db.Model(&billing.Invoice{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("tenant_id = ? AND status = ?", tenantID, billing.InvoiceStatusPaid).
		Scan(&totalRevenue).Error; err != nil {
		return nil, err
	}
	stats.TotalRevenue = totalRevenue.Total

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var monthRevenue revenueResult
	if err := db.Model(&billing.Invoice{}).
		Select("COALESCE(SUM(total), 0) as total").
		Where("tenant_id = ? AND status = ? AND paid_date >= ?", tenantID, billing.InvoiceStatusPaid, monthStart).
		Scan(&monthRevenue).Error; err != nil {
		return nil, err
	}
	stats.RevenueThisMonth = monthRevenue.Total

	var pipeline revenueResult
	if err := db.Model(&crm.Opportunity{}).
		Select("COALESCE(SUM(value), 0) as total").
		Where("tenant_id = ?", tenantID).
		Scan(&pipeline).Error; err != nil {
		return nil, err
	}
	stats.PipelineValue = pipeline.Total

	return stats, nil
}

// DetailedStats extends DashboardStats with per-status and per-stage breakdowns
func (r *GormReportRepository) DetailedStats(ctx context.Context, tenantID uuid.UUID) (*report.DetailedStats, error) {
	base, err := r.DashboardStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	detailed := &report.DetailedStats{DashboardStats: *base}
	db := r.db.WithContext(ctx)

	if err := db.Model(&crm.Task{}).
		Select("status, COUNT(*) as count").
		Where("tenant_id = ?", tenantID).
		Group("status").
		Scan(&detailed.TasksByStatus).Error; err != nil {
		return nil, err
	}

	if err := db.Table("opportunity_stages s").
		Select(`
			s.id as stage_id,
			s.name as stage_name,
			COUNT(o.id) as count,
			COALESCE(SUM(o.value), 0) as total_value
		`).
		Joins("LEFT JOIN opportunities o ON o.stage_id = s.id AND o.tenant_id = s.tenant_id").
		Where("s.tenant_id = ?", tenantID).
		Group("s.id, s.name, s.sort_order").
		Order("s.sort_order ASC").
		Scan(&detailed.OpportunitiesByStage).Error; err != nil {
		return nil, err
	}

	var activities []crm.Activity
	if err := db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Limit(10).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	detailed.RecentActivities = make([]report.RecentActivity, len(activities))
	for i, a := range activities {
		detailed.RecentActivities[i] = report.RecentActivity{
			ID:        a.ID,
			Type:      string(a.Type),
			Subject:   a.Subject,
			CreatedAt: a.CreatedAt,
		}
	}

	return detailed, nil
}

// SalesReport aggregates paid invoice revenue per month in the range
func (r *GormReportRepository) SalesReport(ctx context.Context, tenantID uuid.UUID, dateRange report.DateRange) ([]report.SalesRow, error) {
	query := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Select(`
			TO_CHAR(paid_date, 'YYYY-MM') as period,
			COUNT(*) as invoice_count,
			COALESCE(SUM(total), 0) as revenue
		`).
		Where("tenant_id = ? AND status = ?", tenantID, billing.InvoiceStatusPaid)

	if !dateRange.From.IsZero() {
		query = query.Where("paid_date >= ?", dateRange.From)
	}
	if !dateRange.To.IsZero() {
		query = query.Where("paid_date < ?", dateRange.To)
	}

	var rows []report.SalesRow
	if err := query.
		Group("TO_CHAR(paid_date, 'YYYY-MM')").
		Order("period ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// PipelineReport aggregates opportunities per pipeline stage
func (r *GormReportRepository) PipelineReport(ctx context.Context, tenantID uuid.UUID) ([]report.PipelineRow, error) {
	var rows []report.PipelineRow
	if err := r.db.WithContext(ctx).
		Table("opportunity_stages s").
		Select(`
			s.name as stage_name,
			s.sort_order as sort_order,
			COUNT(o.id) as count,
			COALESCE(SUM(o.value), 0) as total_value,
			COALESCE(AVG(o.value), 0) as avg_value
		`).
		Joins("LEFT JOIN opportunities o ON o.stage_id = s.id AND o.tenant_id = s.tenant_id").
		Where("s.tenant_id = ?", tenantID).
		Group("s.id, s.name, s.sort_order").
		Order("s.sort_order ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

var _ report.Repository = (*GormReportRepository)(nil)
