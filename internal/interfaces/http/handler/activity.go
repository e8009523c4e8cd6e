package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// ActivityHandler handles activity API endpoints
type ActivityHandler struct {
	BaseHandler
	activityService *crmapp.ActivityService
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService *crmapp.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// Create records a new activity attributed to the acting user
func (h *ActivityHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req crmapp.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	activity, err := h.activityService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, activity)
}

// Get returns a single activity
func (h *ActivityHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid activity ID")
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), tenantID, activityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, activity)
}

// List returns a page of activities
func (h *ActivityHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter crmapp.ActivityListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	activities, total, err := h.activityService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, activities, total, filter.Page, filter.PageSize)
}

// Delete removes an activity
func (h *ActivityHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	activityID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid activity ID")
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), tenantID, activityID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
