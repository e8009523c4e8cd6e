package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// OpportunityHandler handles opportunity API endpoints
type OpportunityHandler struct {
	BaseHandler
	opportunityService *crmapp.OpportunityService
}

// NewOpportunityHandler creates a new OpportunityHandler
func NewOpportunityHandler(opportunityService *crmapp.OpportunityService) *OpportunityHandler {
	return &OpportunityHandler{opportunityService: opportunityService}
}

// Create creates a new opportunity
func (h *OpportunityHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req crmapp.CreateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	opportunity, err := h.opportunityService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, opportunity)
}

// Get returns a single opportunity
func (h *OpportunityHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	opportunityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	opportunity, err := h.opportunityService.GetByID(c.Request.Context(), tenantID, opportunityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opportunity)
}

// List returns a page of opportunities
func (h *OpportunityHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter crmapp.OpportunityListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	opportunities, total, err := h.opportunityService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, opportunities, total, filter.Page, filter.PageSize)
}

// Update applies a partial update to an opportunity
func (h *OpportunityHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	opportunityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	var req crmapp.UpdateOpportunityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	opportunity, err := h.opportunityService.Update(c.Request.Context(), tenantID, opportunityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opportunity)
}

// MoveStage moves an opportunity into another pipeline stage
func (h *OpportunityHandler) MoveStage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	opportunityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	var req crmapp.MoveStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	opportunity, err := h.opportunityService.MoveStage(c.Request.Context(), tenantID, opportunityID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, opportunity)
}

// Delete removes an opportunity
func (h *OpportunityHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	opportunityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid opportunity ID")
		return
	}

	if err := h.opportunityService.Delete(c.Request.Context(), tenantID, opportunityID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
