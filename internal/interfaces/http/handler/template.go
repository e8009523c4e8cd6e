package handler

import (
	messagingapp "github.com/crm/backend/internal/application/messaging"
	"github.com/gin-gonic/gin"
)

// TemplateHandler handles email template API endpoints
type TemplateHandler struct {
	BaseHandler
	templateService *messagingapp.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler
func NewTemplateHandler(templateService *messagingapp.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// Create creates a new email template
func (h *TemplateHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req messagingapp.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, template)
}

// Get returns a single template
func (h *TemplateHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), tenantID, templateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// List returns all templates for the tenant
func (h *TemplateHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	templates, err := h.templateService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, templates)
}

// Update applies a partial update to a template
func (h *TemplateHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	var req messagingapp.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	template, err := h.templateService.Update(c.Request.Context(), tenantID, templateID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Delete removes a template
func (h *TemplateHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	templateID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid template ID")
		return
	}

	if err := h.templateService.Delete(c.Request.Context(), tenantID, templateID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
