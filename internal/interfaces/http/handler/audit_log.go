package handler

import (
	auditapp "github.com/crm/backend/internal/application/audit"
	"github.com/gin-gonic/gin"
)

// AuditLogHandler handles audit trail API endpoints
type AuditLogHandler struct {
	BaseHandler
	auditService *auditapp.Service
}

// NewAuditLogHandler creates a new AuditLogHandler
func NewAuditLogHandler(auditService *auditapp.Service) *AuditLogHandler {
	return &AuditLogHandler{auditService: auditService}
}

// List returns a page of the tenant's audit trail
func (h *AuditLogHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter auditapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	logs, total, err := h.auditService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, logs, total, filter.Page, filter.PageSize)
}
