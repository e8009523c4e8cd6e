// Package report serves dashboard and reporting aggregates. Results
// are cached per tenant with a short TTL; writes do not invalidate,
// staleness is bounded by the TTL alone.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/report"
	"github.com/crm/backend/internal/infrastructure/cache"
)

// Config holds the cache TTLs
type Config struct {
	DashboardTTL time.Duration
	ReportTTL    time.Duration
}

// SalesReportFilter bounds the sales report
type SalesReportFilter struct {
	From *time.Time `form:"from"`
	To   *time.Time `form:"to"`
}

// Service answers dashboard and report queries through the cache
type Service struct {
	repo   report.Repository
	cache  cache.ReportCache
	config Config
	logger *zap.Logger
}

// NewService creates a new report Service
func NewService(repo report.Repository, reportCache cache.ReportCache, config Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.DashboardTTL <= 0 {
		config.DashboardTTL = 30 * time.Second
	}
	if config.ReportTTL <= 0 {
		config.ReportTTL = 5 * time.Minute
	}
	return &Service{
		repo:   repo,
		cache:  reportCache,
		config: config,
		logger: logger,
	}
}

// Dashboard returns the headline stats for a tenant
func (s *Service) Dashboard(ctx context.Context, tenantID uuid.UUID) (*report.DashboardStats, error) {
	key := cache.Key("dashboard", tenantID, "")

	var stats report.DashboardStats
	if hit := s.lookup(ctx, key, &stats); hit {
		return &stats, nil
	}

	fresh, err := s.repo.DashboardStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, fresh, s.config.DashboardTTL)
	return fresh, nil
}

// DetailedDashboard returns the dashboard with breakdowns
func (s *Service) DetailedDashboard(ctx context.Context, tenantID uuid.UUID) (*report.DetailedStats, error) {
	key := cache.Key("dashboard", tenantID, "detailed")

	var stats report.DetailedStats
	if hit := s.lookup(ctx, key, &stats); hit {
		return &stats, nil
	}

	fresh, err := s.repo.DetailedStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, fresh, s.config.DashboardTTL)
	return fresh, nil
}

// Sales returns paid revenue grouped by month
func (s *Service) Sales(ctx context.Context, tenantID uuid.UUID, filter SalesReportFilter) ([]report.SalesRow, error) {
	dateRange := report.DateRange{}
	if filter.From != nil {
		dateRange.From = *filter.From
	}
	if filter.To != nil {
		dateRange.To = *filter.To
	}
	key := cache.Key("sales", tenantID, s.rangeQualifier(dateRange))

	var rows []report.SalesRow
	if hit := s.lookup(ctx, key, &rows); hit {
		return rows, nil
	}

	rows, err := s.repo.SalesReport(ctx, tenantID, dateRange)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows, s.config.ReportTTL)
	return rows, nil
}

// Pipeline returns the opportunity roll-up per stage
func (s *Service) Pipeline(ctx context.Context, tenantID uuid.UUID) ([]report.PipelineRow, error) {
	key := cache.Key("pipeline", tenantID, "")

	var rows []report.PipelineRow
	if hit := s.lookup(ctx, key, &rows); hit {
		return rows, nil
	}

	rows, err := s.repo.PipelineReport(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, rows, s.config.ReportTTL)
	return rows, nil
}

// lookup reads the cache. Cache errors degrade to a miss.
func (s *Service) lookup(ctx context.Context, key string, dest any) bool {
	hit, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.logger.Warn("Report cache read failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

// store writes the cache. Write errors are logged and dropped.
func (s *Service) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, value, ttl); err != nil {
		s.logger.Warn("Report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) rangeQualifier(dateRange report.DateRange) string {
	from := ""
	to := ""
	if !dateRange.From.IsZero() {
		from = dateRange.From.Format("2006-01-02")
	}
	if !dateRange.To.IsZero() {
		to = dateRange.To.Format("2006-01-02")
	}
	if from == "" && to == "" {
		return "all"
	}
	return fmt.Sprintf("%s_%s", from, to)
}
