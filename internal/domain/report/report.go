package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateRange bounds an aggregation query. A zero bound means unbounded
// on that side.
type DateRange struct {
	From time.Time
	To   time.Time
}

// DashboardStats is the headline view shown on the dashboard
type DashboardStats struct {
	CustomerCount     int64           `json:"customerCount"`
	ContactCount      int64           `json:"contactCount"`
	OpportunityCount  int64           `json:"opportunityCount"`
	OpenTaskCount     int64           `json:"openTaskCount"`
	InvoiceCount      int64           `json:"invoiceCount"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	RevenueThisMonth  decimal.Decimal `json:"revenueThisMonth"`
	PipelineValue     decimal.Decimal `json:"pipelineValue"`
}

// StatusCount is a count bucketed by a status label
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// StageSummary is the opportunity roll-up for one pipeline stage
type StageSummary struct {
	StageID    uuid.UUID       `json:"stageId"`
	StageName  string          `json:"stageName"`
	Count      int64           `json:"count"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// RecentActivity is one row in the dashboard activity feed
type RecentActivity struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Subject   string    `json:"subject"`
	CreatedAt time.Time `json:"createdAt"`
}

// DetailedStats extends DashboardStats with breakdowns
type DetailedStats struct {
	DashboardStats
	TasksByStatus        []StatusCount    `json:"tasksByStatus"`
	OpportunitiesByStage []StageSummary   `json:"opportunitiesByStage"`
	RecentActivities     []RecentActivity `json:"recentActivities"`
}

// SalesRow is one period in the sales report
type SalesRow struct {
	Period       string          `json:"period"`
	InvoiceCount int64           `json:"invoiceCount"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// PipelineRow is one stage in the pipeline report
type PipelineRow struct {
	StageName  string          `json:"stageName"`
	SortOrder  int             `json:"sortOrder"`
	Count      int64           `json:"count"`
	TotalValue decimal.Decimal `json:"totalValue"`
	AvgValue   decimal.Decimal `json:"avgValue"`
}

// Repository runs the aggregation queries behind dashboards and
// reports. Implementations must scope every query by tenant.
type Repository interface {
	DashboardStats(ctx context.Context, tenantID uuid.UUID) (*DashboardStats, error)
	DetailedStats(ctx context.Context, tenantID uuid.UUID) (*DetailedStats, error)
	SalesReport(ctx context.Context, tenantID uuid.UUID, dateRange DateRange) ([]SalesRow, error)
	PipelineReport(ctx context.Context, tenantID uuid.UUID) ([]PipelineRow, error)
}
