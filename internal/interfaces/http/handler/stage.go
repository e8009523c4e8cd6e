package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// StageHandler handles pipeline stage API endpoints
type StageHandler struct {
	BaseHandler
	stageService *crmapp.StageService
}

// NewStageHandler creates a new StageHandler
func NewStageHandler(stageService *crmapp.StageService) *StageHandler {
	return &StageHandler{stageService: stageService}
}

// Create creates a new pipeline stage
func (h *StageHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req crmapp.CreateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	stage, err := h.stageService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, stage)
}

// List returns all pipeline stages ordered by position
func (h *StageHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	stages, err := h.stageService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stages)
}

// Update applies a partial update to a stage
func (h *StageHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	stageID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid stage ID")
		return
	}

	var req crmapp.UpdateStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	stage, err := h.stageService.Update(c.Request.Context(), tenantID, stageID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stage)
}

// Reorder repositions the pipeline stages in the given order
func (h *StageHandler) Reorder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req crmapp.ReorderStagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	stages, err := h.stageService.Reorder(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stages)
}

// Delete removes a stage with no opportunities in it
func (h *StageHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	stageID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid stage ID")
		return
	}

	if err := h.stageService.Delete(c.Request.Context(), tenantID, stageID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
