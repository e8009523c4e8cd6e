package crm

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/crm/backend/internal/domain/crm"
)

// =============================================================================
// Customer DTOs
// =============================================================================

// CreateCustomerRequest represents a request to create a new customer
type CreateCustomerRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=200"`
	CompanyName string   `json:"company_name" binding:"max=200"`
	Email       string   `json:"email" binding:"omitempty,email,max=200"`
	Phone       string   `json:"phone" binding:"max=50"`
	Address     string   `json:"address" binding:"max=500"`
	City        string   `json:"city" binding:"max=100"`
	Country     string   `json:"country" binding:"max=100"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

// UpdateCustomerRequest represents a request to update a customer
type UpdateCustomerRequest struct {
	Name        *string   `json:"name" binding:"omitempty,min=1,max=200"`
	CompanyName *string   `json:"company_name" binding:"omitempty,max=200"`
	Email       *string   `json:"email" binding:"omitempty,email,max=200"`
	Phone       *string   `json:"phone" binding:"omitempty,max=50"`
	Address     *string   `json:"address" binding:"omitempty,max=500"`
	City        *string   `json:"city" binding:"omitempty,max=100"`
	Country     *string   `json:"country" binding:"omitempty,max=100"`
	Notes       *string   `json:"notes"`
	Tags        *[]string `json:"tags"`
}

// CustomerResponse represents a customer in API responses
type CustomerResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	CompanyName string    `json:"company_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Country     string    `json:"country"`
	Notes       string    `json:"notes"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CustomerListFilter represents filter options for customer list
type CustomerListFilter struct {
	Search   string `form:"search"`
	Tag      string `form:"tag"`
	City     string `form:"city"`
	Country  string `form:"country"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToCustomerResponse maps a customer to its API representation
func ToCustomerResponse(c *crm.Customer) CustomerResponse {
	return CustomerResponse{
		ID:          c.ID,
		Name:        c.Name,
		CompanyName: c.CompanyName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		City:        c.City,
		Country:     c.Country,
		Notes:       c.Notes,
		Tags:        c.Tags,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// ToCustomerResponses maps a slice of customers
func ToCustomerResponses(customers []crm.Customer) []CustomerResponse {
	responses := make([]CustomerResponse, len(customers))
	for i := range customers {
		responses[i] = ToCustomerResponse(&customers[i])
	}
	return responses
}

// =============================================================================
// Contact DTOs
// =============================================================================

// CreateContactRequest represents a request to create a contact
type CreateContactRequest struct {
	FirstName  string     `json:"first_name" binding:"required,min=1,max=100"`
	LastName   string     `json:"last_name" binding:"required,min=1,max=100"`
	Email      string     `json:"email" binding:"omitempty,email,max=200"`
	Phone      string     `json:"phone" binding:"max=50"`
	Position   string     `json:"position" binding:"max=100"`
	CustomerID *uuid.UUID `json:"customer_id"`
}

// UpdateContactRequest represents a request to update a contact
type UpdateContactRequest struct {
	FirstName  *string    `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName   *string    `json:"last_name" binding:"omitempty,min=1,max=100"`
	Email      *string    `json:"email" binding:"omitempty,email,max=200"`
	Phone      *string    `json:"phone" binding:"omitempty,max=50"`
	Position   *string    `json:"position" binding:"omitempty,max=100"`
	CustomerID *uuid.UUID `json:"customer_id"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID         uuid.UUID  `json:"id"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	Position   string     `json:"position"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ContactListFilter represents filter options for contact list
type ContactListFilter struct {
	Search     string     `form:"search"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToContactResponse maps a contact to its API representation
func ToContactResponse(c *crm.Contact) ContactResponse {
	return ContactResponse{
		ID:         c.ID,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		FullName:   c.FullName(),
		Email:      c.Email,
		Phone:      c.Phone,
		Position:   c.Position,
		CustomerID: c.CustomerID,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// ToContactResponses maps a slice of contacts
func ToContactResponses(contacts []crm.Contact) []ContactResponse {
	responses := make([]ContactResponse, len(contacts))
	for i := range contacts {
		responses[i] = ToContactResponse(&contacts[i])
	}
	return responses
}

// =============================================================================
// Opportunity DTOs
// =============================================================================

// CreateOpportunityRequest represents a request to create an opportunity
type CreateOpportunityRequest struct {
	Title             string          `json:"title" binding:"required,min=1,max=200"`
	Description       string          `json:"description"`
	Value             decimal.Decimal `json:"value"`
	StageID           uuid.UUID       `json:"stage_id" binding:"required"`
	CustomerID        *uuid.UUID      `json:"customer_id"`
	AssignedToID      *uuid.UUID      `json:"assigned_to_id"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date"`
}

// UpdateOpportunityRequest represents a request to update an opportunity
type UpdateOpportunityRequest struct {
	Title             *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Description       *string          `json:"description"`
	Value             *decimal.Decimal `json:"value"`
	CustomerID        *uuid.UUID       `json:"customer_id"`
	AssignedToID      *uuid.UUID       `json:"assigned_to_id"`
	ExpectedCloseDate *time.Time       `json:"expected_close_date"`
}

// MoveStageRequest represents a request to move an opportunity to a stage
type MoveStageRequest struct {
	StageID uuid.UUID `json:"stage_id" binding:"required"`
}

// OpportunityResponse represents an opportunity in API responses
type OpportunityResponse struct {
	ID                uuid.UUID       `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Value             decimal.Decimal `json:"value"`
	StageID           uuid.UUID       `json:"stage_id"`
	CustomerID        *uuid.UUID      `json:"customer_id,omitempty"`
	AssignedToID      *uuid.UUID      `json:"assigned_to_id,omitempty"`
	ExpectedCloseDate *time.Time      `json:"expected_close_date,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// OpportunityListFilter represents filter options for opportunity list
type OpportunityListFilter struct {
	Search       string     `form:"search"`
	StageID      *uuid.UUID `form:"stage_id"`
	CustomerID   *uuid.UUID `form:"customer_id"`
	AssignedToID *uuid.UUID `form:"assigned_to_id"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToOpportunityResponse maps an opportunity to its API representation
func ToOpportunityResponse(o *crm.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:                o.ID,
		Title:             o.Title,
		Description:       o.Description,
		Value:             o.Value,
		StageID:           o.StageID,
		CustomerID:        o.CustomerID,
		AssignedToID:      o.AssignedToID,
		ExpectedCloseDate: o.ExpectedCloseDate,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}

// ToOpportunityResponses maps a slice of opportunities
func ToOpportunityResponses(opportunities []crm.Opportunity) []OpportunityResponse {
	responses := make([]OpportunityResponse, len(opportunities))
	for i := range opportunities {
		responses[i] = ToOpportunityResponse(&opportunities[i])
	}
	return responses
}

// =============================================================================
// Stage DTOs
// =============================================================================

// CreateStageRequest represents a request to create a pipeline stage
type CreateStageRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
}

// UpdateStageRequest represents a request to update a pipeline stage
type UpdateStageRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sort_order"`
}

// ReorderStagesRequest assigns new sort positions. Stages are placed
// in the order their IDs appear.
type ReorderStagesRequest struct {
	StageIDs []uuid.UUID `json:"stage_ids" binding:"required,min=1"`
}

// StageResponse represents a pipeline stage in API responses
type StageResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SortOrder   int       `json:"sort_order"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ToStageResponse maps a stage to its API representation
func ToStageResponse(s *crm.OpportunityStage) StageResponse {
	return StageResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		SortOrder:   s.SortOrder,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToStageResponses maps a slice of stages
func ToStageResponses(stages []crm.OpportunityStage) []StageResponse {
	responses := make([]StageResponse, len(stages))
	for i := range stages {
		responses[i] = ToStageResponse(&stages[i])
	}
	return responses
}

// =============================================================================
// Activity DTOs
// =============================================================================

// CreateActivityRequest represents a request to log an activity
type CreateActivityRequest struct {
	Type          string     `json:"type" binding:"required,oneof=call meeting email note"`
	Subject       string     `json:"subject" binding:"required,min=1,max=200"`
	Notes         string     `json:"notes"`
	CustomerID    *uuid.UUID `json:"customer_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id"`
}

// ActivityResponse represents an activity in API responses
type ActivityResponse struct {
	ID            uuid.UUID  `json:"id"`
	Type          string     `json:"type"`
	Subject       string     `json:"subject"`
	Notes         string     `json:"notes"`
	UserID        uuid.UUID  `json:"user_id"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ActivityListFilter represents filter options for activity list
type ActivityListFilter struct {
	Search        string     `form:"search"`
	Type          string     `form:"type" binding:"omitempty,oneof=call meeting email note"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	OpportunityID *uuid.UUID `form:"opportunity_id"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// ToActivityResponse maps an activity to its API representation
func ToActivityResponse(a *crm.Activity) ActivityResponse {
	return ActivityResponse{
		ID:            a.ID,
		Type:          string(a.Type),
		Subject:       a.Subject,
		Notes:         a.Notes,
		UserID:        a.UserID,
		CustomerID:    a.CustomerID,
		OpportunityID: a.OpportunityID,
		CreatedAt:     a.CreatedAt,
	}
}

// ToActivityResponses maps a slice of activities
func ToActivityResponses(activities []crm.Activity) []ActivityResponse {
	responses := make([]ActivityResponse, len(activities))
	for i := range activities {
		responses[i] = ToActivityResponse(&activities[i])
	}
	return responses
}

// =============================================================================
// Task DTOs
// =============================================================================

// CreateTaskRequest represents a request to create a task
type CreateTaskRequest struct {
	Title         string     `json:"title" binding:"required,min=1,max=200"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedToID  *uuid.UUID `json:"assigned_to_id"`
	CustomerID    *uuid.UUID `json:"customer_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id"`
	DueDate       *time.Time `json:"due_date"`
	ReminderDate  *time.Time `json:"reminder_date"`
}

// UpdateTaskRequest represents a request to update a task
type UpdateTaskRequest struct {
	Title         *string    `json:"title" binding:"omitempty,min=1,max=200"`
	Description   *string    `json:"description"`
	Status        *string    `json:"status" binding:"omitempty,oneof=todo in_progress completed cancelled"`
	Priority      *string    `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedToID  *uuid.UUID `json:"assigned_to_id"`
	CustomerID    *uuid.UUID `json:"customer_id"`
	OpportunityID *uuid.UUID `json:"opportunity_id"`
	DueDate       *time.Time `json:"due_date"`
	ReminderDate  *time.Time `json:"reminder_date"`
}

// TaskResponse represents a task in API responses
type TaskResponse struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	AssignedToID  uuid.UUID  `json:"assigned_to_id"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ReminderDate  *time.Time `json:"reminder_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TaskListFilter represents filter options for task list
type TaskListFilter struct {
	Search       string     `form:"search"`
	Status       string     `form:"status" binding:"omitempty,oneof=todo in_progress completed cancelled"`
	Priority     string     `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssignedToID *uuid.UUID `form:"assigned_to_id"`
	CustomerID   *uuid.UUID `form:"customer_id"`
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
	OrderBy      string     `form:"order_by"`
	OrderDir     string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToTaskResponse maps a task to its API representation
func ToTaskResponse(t *crm.Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		AssignedToID:  t.AssignedToID,
		CustomerID:    t.CustomerID,
		OpportunityID: t.OpportunityID,
		DueDate:       t.DueDate,
		ReminderDate:  t.ReminderDate,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// ToTaskResponses maps a slice of tasks
func ToTaskResponses(tasks []crm.Task) []TaskResponse {
	responses := make([]TaskResponse, len(tasks))
	for i := range tasks {
		responses[i] = ToTaskResponse(&tasks[i])
	}
	return responses
}
