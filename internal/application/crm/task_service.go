package crm

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
)

// TaskService handles task management operations
type TaskService struct {
	taskRepo crm.TaskRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo crm.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

// Create creates a new task. Tasks without an explicit assignee go to
// the acting user.
func (s *TaskService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateTaskRequest) (*TaskResponse, error) {
	assignedTo := userID
	if req.AssignedToID != nil {
		assignedTo = *req.AssignedToID
	}

	task, err := crm.NewTask(tenantID, assignedTo, req.Title)
	if err != nil {
		return nil, err
	}
	task.Description = req.Description
	if req.Priority != "" {
		if err := task.SetPriority(crm.TaskPriority(req.Priority)); err != nil {
			return nil, err
		}
	}
	task.CustomerID = req.CustomerID
	task.OpportunityID = req.OpportunityID
	task.DueDate = req.DueDate
	task.ReminderDate = req.ReminderDate

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// GetByID retrieves a task by ID
func (s *TaskService) GetByID(ctx context.Context, tenantID, taskID uuid.UUID) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByIDForTenant(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// List retrieves tasks with filtering and pagination
func (s *TaskService) List(ctx context.Context, tenantID uuid.UUID, filter TaskListFilter) ([]TaskResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Priority != "" {
		domainFilter.Filters["priority"] = filter.Priority
	}
	if filter.AssignedToID != nil {
		domainFilter.Filters["assigned_to_id"] = *filter.AssignedToID
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	tasks, err := s.taskRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.taskRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToTaskResponses(tasks), total, nil
}

// Update updates a task
func (s *TaskService) Update(ctx context.Context, tenantID, taskID uuid.UUID, req UpdateTaskRequest) (*TaskResponse, error) {
	task, err := s.taskRepo.FindByIDForTenant(ctx, tenantID, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		if err := task.SetStatus(crm.TaskStatus(*req.Status)); err != nil {
			return nil, err
		}
	}
	if req.Priority != nil {
		if err := task.SetPriority(crm.TaskPriority(*req.Priority)); err != nil {
			return nil, err
		}
	}
	if req.AssignedToID != nil {
		task.AssignedToID = *req.AssignedToID
	}
	if req.CustomerID != nil {
		task.CustomerID = req.CustomerID
	}
	if req.OpportunityID != nil {
		task.OpportunityID = req.OpportunityID
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.ReminderDate != nil {
		task.ReminderDate = req.ReminderDate
	}
	task.Touch()

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}

	response := ToTaskResponse(task)
	return &response, nil
}

// Delete removes a task
func (s *TaskService) Delete(ctx context.Context, tenantID, taskID uuid.UUID) error {
	return s.taskRepo.DeleteForTenant(ctx, tenantID, taskID)
}
