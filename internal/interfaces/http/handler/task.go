package handler

import (
	crmapp "github.com/crm/backend/internal/application/crm"
	"github.com/gin-gonic/gin"
)

// TaskHandler handles task API endpoints
type TaskHandler struct {
	BaseHandler
	taskService *crmapp.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *crmapp.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// Create creates a new task, assigned to the acting user by default
func (h *TaskHandler) Create(c *gin.Context) {
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

	var req crmapp.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), tenantID, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, task)
}

// Get returns a single task
func (h *TaskHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetByID(c.Request.Context(), tenantID, taskID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// List returns a page of tasks
func (h *TaskHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter crmapp.TaskListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	tasks, total, err := h.taskService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, tasks, total, filter.Page, filter.PageSize)
}

// Update applies a partial update to a task
func (h *TaskHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	var req crmapp.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), tenantID, taskID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, task)
}

// Delete removes a task
func (h *TaskHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	taskID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), tenantID, taskID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
