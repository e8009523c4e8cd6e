package handler

import (
	messagingapp "github.com/crm/backend/internal/application/messaging"
	"github.com/gin-gonic/gin"
)

// EmailHandler handles outbound email API endpoints
type EmailHandler struct {
	BaseHandler
	emailService *messagingapp.EmailService
}

// NewEmailHandler creates a new EmailHandler
func NewEmailHandler(emailService *messagingapp.EmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// Compose drafts a new email, optionally filled from a template
func (h *EmailHandler) Compose(c *gin.Context) {
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

	var req messagingapp.ComposeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	email, err := h.emailService.Compose(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, email)
}

// Send attempts delivery of a drafted email. Delivery failures are
// recorded on the email itself, not returned as request errors.
func (h *EmailHandler) Send(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	emailID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid email ID")
		return
	}

	email, err := h.emailService.Send(c.Request.Context(), tenantID, emailID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, email)
}

// Get returns a single email
func (h *EmailHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	emailID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid email ID")
		return
	}

	email, err := h.emailService.GetByID(c.Request.Context(), tenantID, emailID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, email)
}

// List returns a page of emails
func (h *EmailHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter messagingapp.EmailListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	emails, total, err := h.emailService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, emails, total, filter.Page, filter.PageSize)
}

// Delete removes an email record
func (h *EmailHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	emailID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid email ID")
		return
	}

	if err := h.emailService.Delete(c.Request.Context(), tenantID, emailID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
