package handler

import (
	identityapp "github.com/crm/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// RoleHandler handles role management API endpoints
type RoleHandler struct {
	BaseHandler
	roleService *identityapp.RoleService
}

// NewRoleHandler creates a new RoleHandler
func NewRoleHandler(roleService *identityapp.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// Create creates a new role
func (h *RoleHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req identityapp.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	role, err := h.roleService.Create(c.Request.Context(), tenantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, role)
}

// Get returns a single role
func (h *RoleHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID")
		return
	}

	role, err := h.roleService.GetByID(c.Request.Context(), tenantID, roleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// List returns all roles for the tenant
func (h *RoleHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	roles, err := h.roleService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, roles)
}

// Update applies a partial update to a role
func (h *RoleHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID")
		return
	}

	var req identityapp.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	role, err := h.roleService.Update(c.Request.Context(), tenantID, roleID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, role)
}

// Delete removes a role that is not system-managed and has no users
func (h *RoleHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	roleID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid role ID")
		return
	}

	if err := h.roleService.Delete(c.Request.Context(), tenantID, roleID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
