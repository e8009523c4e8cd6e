package report

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/report"
	"github.com/crm/backend/internal/infrastructure/cache"
)

// MockReportRepository is a mock implementation of report.Repository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) DashboardStats(ctx context.Context, tenantID uuid.UUID) (*report.DashboardStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DashboardStats), args.Error(1)
}

func (m *MockReportRepository) DetailedStats(ctx context.Context, tenantID uuid.UUID) (*report.DetailedStats, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*report.DetailedStats), args.Error(1)
}

func (m *MockReportRepository) SalesReport(ctx context.Context, tenantID uuid.UUID, dateRange report.DateRange) ([]report.SalesRow, error) {
	args := m.Called(ctx, tenantID, dateRange)
	return args.Get(0).([]report.SalesRow), args.Error(1)
}

func (m *MockReportRepository) PipelineReport(ctx context.Context, tenantID uuid.UUID) ([]report.PipelineRow, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]report.PipelineRow), args.Error(1)
}

var _ report.Repository = (*MockReportRepository)(nil)

func testStats() *report.DashboardStats {
	return &report.DashboardStats{
		CustomerCount: 12,
		InvoiceCount:  4,
		TotalRevenue:  decimal.NewFromInt(18000),
	}
}

func TestService_Dashboard_CachesResult(t *testing.T) {
	repo := new(MockReportRepository)
	service := NewService(repo, cache.NewInMemoryReportCache(), Config{}, nil)

	ctx := context.Background()
	tenantID := uuid.New()

	repo.On("DashboardStats", ctx, tenantID).Return(testStats(), nil).Once()

	first, err := service.Dashboard(ctx, tenantID)
	require.NoError(t, err)
	second, err := service.Dashboard(ctx, tenantID)
	require.NoError(t, err)

	assert.Equal(t, first.CustomerCount, second.CustomerCount)
	repo.AssertNumberOfCalls(t, "DashboardStats", 1)
}

func TestService_Dashboard_CacheIsPerTenant(t *testing.T) {
	repo := new(MockReportRepository)
	service := NewService(repo, cache.NewInMemoryReportCache(), Config{}, nil)

	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	repo.On("DashboardStats", ctx, tenantA).Return(testStats(), nil).Once()
	repo.On("DashboardStats", ctx, tenantB).Return(&report.DashboardStats{CustomerCount: 99}, nil).Once()

	statsA, err := service.Dashboard(ctx, tenantA)
	require.NoError(t, err)
	statsB, err := service.Dashboard(ctx, tenantB)
	require.NoError(t, err)

	assert.Equal(t, int64(12), statsA.CustomerCount)
	assert.Equal(t, int64(99), statsB.CustomerCount)
	repo.AssertExpectations(t)
}

func TestService_Dashboard_ExpiredEntryIsRecomputed(t *testing.T) {
	repo := new(MockReportRepository)
	service := NewService(repo, cache.NewInMemoryReportCache(), Config{DashboardTTL: 10 * time.Millisecond}, nil)

	ctx := context.Background()
	tenantID := uuid.New()

	repo.On("DashboardStats", ctx, tenantID).Return(testStats(), nil).Twice()

	_, err := service.Dashboard(ctx, tenantID)
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	_, err = service.Dashboard(ctx, tenantID)
	require.NoError(t, err)
	repo.AssertNumberOfCalls(t, "DashboardStats", 2)
}

func TestService_Sales_DateRangeKeysSeparateEntries(t *testing.T) {
	repo := new(MockReportRepository)
	service := NewService(repo, cache.NewInMemoryReportCache(), Config{}, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	allTime := []report.SalesRow{{Period: "2025-12", InvoiceCount: 2, Revenue: decimal.NewFromInt(900)}}
	bounded := []report.SalesRow{{Period: "2026-01", InvoiceCount: 1, Revenue: decimal.NewFromInt(400)}}

	repo.On("SalesReport", ctx, tenantID, report.DateRange{}).Return(allTime, nil).Once()
	repo.On("SalesReport", ctx, tenantID, report.DateRange{From: from}).Return(bounded, nil).Once()

	rows, err := service.Sales(ctx, tenantID, SalesReportFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2025-12", rows[0].Period)

	rows, err = service.Sales(ctx, tenantID, SalesReportFilter{From: &from})
	require.NoError(t, err)
	assert.Equal(t, "2026-01", rows[0].Period)

	// Both remain cached independently.
	_, err = service.Sales(ctx, tenantID, SalesReportFilter{})
	require.NoError(t, err)
	_, err = service.Sales(ctx, tenantID, SalesReportFilter{From: &from})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestService_Pipeline_CachesResult(t *testing.T) {
	repo := new(MockReportRepository)
	service := NewService(repo, cache.NewInMemoryReportCache(), Config{}, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	rows := []report.PipelineRow{{StageName: "Qualified", Count: 3, TotalValue: decimal.NewFromInt(75000)}}

	repo.On("PipelineReport", ctx, tenantID).Return(rows, nil).Once()

	_, err := service.Pipeline(ctx, tenantID)
	require.NoError(t, err)
	cached, err := service.Pipeline(ctx, tenantID)
	require.NoError(t, err)

	assert.Equal(t, "Qualified", cached[0].StageName)
	repo.AssertNumberOfCalls(t, "PipelineReport", 1)
}
