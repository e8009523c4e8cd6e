package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// ContactHandler handles contact API endpoints
type ContactHandler struct {
	BaseHandler
	contactService *crmapp.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(contactService *crmapp.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// Create creates a new contact
func (h *ContactHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req crmapp.CreateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	contact, err := h.contactService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, contact)
}

// Get returns a single contact
func (h *ContactHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	contact, err := h.contactService.GetByID(c.Request.Context(), tenantID, contactID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// List returns a page of contacts
func (h *ContactHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter crmapp.ContactListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	contacts, total, err := h.contactService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, contacts, total, filter.Page, filter.PageSize)
}

// Update applies a partial update to a contact
func (h *ContactHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	var req crmapp.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	contact, err := h.contactService.Update(c.Request.Context(), tenantID, contactID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, contact)
}

// Delete removes a contact
func (h *ContactHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	contactID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid contact ID")
		return
	}

	if err := h.contactService.Delete(c.Request.Context(), tenantID, contactID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
