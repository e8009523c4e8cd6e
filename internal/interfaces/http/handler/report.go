package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	reportapp "github.com/crm/backend/internal/application/report"
	"github.com/crm/backend/internal/domain/report"
)

// ReportHandler handles dashboard and report API endpoints
type ReportHandler struct {
	BaseHandler
	reportService *reportapp.Service
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *reportapp.Service) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Dashboard returns the headline counters for the tenant
func (h *ReportHandler) Dashboard(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	stats, err := h.reportService.Dashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// DetailedDashboard returns the headline counters plus breakdowns
// and recent activity.
func (h *ReportHandler) DetailedDashboard(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	stats, err := h.reportService.DetailedDashboard(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// Sales returns revenue per month, optionally bounded by a date range
func (h *ReportHandler) Sales(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter reportapp.SalesReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	rows, err := h.reportService.Sales(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		writeSalesCSV(c, rows)
		return
	}

	h.Success(c, rows)
}

// Pipeline returns opportunity counts and values per stage
func (h *ReportHandler) Pipeline(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	rows, err := h.reportService.Pipeline(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if c.Query("format") == "csv" {
		writePipelineCSV(c, rows)
		return
	}

	h.Success(c, rows)
}

// Export streams the named report as a CSV attachment
func (h *ReportHandler) Export(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	switch c.Param("kind") {
	case "sales":
		var filter reportapp.SalesReportFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			h.BindError(c, err)
			return
		}
		rows, err := h.reportService.Sales(c.Request.Context(), tenantID, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		writeSalesCSV(c, rows)
	case "pipeline":
		rows, err := h.reportService.Pipeline(c.Request.Context(), tenantID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		writePipelineCSV(c, rows)
	default:
		h.NotFound(c, "Unknown report")
	}
}

func writeSalesCSV(c *gin.Context, rows []report.SalesRow) {
	c.Header("Content-Disposition", `attachment; filename="sales_report.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"period", "invoice_count", "revenue"})
	for _, row := range rows {
		_ = w.Write([]string{row.Period, strconv.FormatInt(row.InvoiceCount, 10), row.Revenue.StringFixed(2)})
	}
	w.Flush()
}

func writePipelineCSV(c *gin.Context, rows []report.PipelineRow) {
	c.Header("Content-Disposition", `attachment; filename="pipeline_report.csv"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"stage", "count", "total_value", "avg_value"})
	for _, row := range rows {
		_ = w.Write([]string{row.StageName, strconv.FormatInt(row.Count, 10), row.TotalValue.StringFixed(2), row.AvgValue.StringFixed(2)})
	}
	w.Flush()
}
