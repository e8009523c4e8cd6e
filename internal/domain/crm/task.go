package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the urgency of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is an assignable to-do item, optionally linked to a customer
// or an opportunity
type Task struct {
	shared.TenantEntity
	Title         string       `gorm:"type:varchar(200);not null"`
	Description   string       `gorm:"type:text"`
	Status        TaskStatus   `gorm:"type:varchar(20);not null;default:'todo';index"`
	Priority      TaskPriority `gorm:"type:varchar(20);not null;default:'medium'"`
	AssignedToID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	CustomerID    *uuid.UUID   `gorm:"type:uuid;index"`
	OpportunityID *uuid.UUID   `gorm:"type:uuid;index"`
	DueDate       *time.Time
	ReminderDate  *time.Time
}

// TableName returns the table name for GORM
func (Task) TableName() string {
	return "tasks"
}

// NewTask creates a new task assigned to a user
func NewTask(tenantID, assignedToID uuid.UUID, title string) (*Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Task title cannot be empty")
	}
	if assignedToID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNEE", "Task must be assigned to a user")
	}
	return &Task{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Title:        title,
		Status:       TaskStatusTodo,
		Priority:     TaskPriorityMedium,
		AssignedToID: assignedToID,
	}, nil
}

// SetStatus transitions the task to a new status
func (t *Task) SetStatus(status TaskStatus) error {
	switch status {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
	default:
		return shared.NewDomainError("INVALID_STATUS", "Unknown task status")
	}
	t.Status = status
	t.Touch()
	return nil
}

// SetPriority updates the task priority
func (t *Task) SetPriority(priority TaskPriority) error {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
	default:
		return shared.NewDomainError("INVALID_PRIORITY", "Unknown task priority")
	}
	t.Priority = priority
	t.Touch()
	return nil
}
