package messaging

import (
	"time"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/messaging"
)

// =============================================================================
// Email DTOs
// =============================================================================

// ComposeEmailRequest represents a request to compose an email draft.
// When a template is given its subject and body are rendered with the
// provided variables; an explicit subject or body overrides the
// template.
type ComposeEmailRequest struct {
	To         string            `json:"to" binding:"required,email,max=255"`
	Cc         string            `json:"cc" binding:"max=500"`
	Subject    string            `json:"subject" binding:"max=500"`
	Body       string            `json:"body"`
	CustomerID *uuid.UUID        `json:"customer_id"`
	ContactID  *uuid.UUID        `json:"contact_id"`
	TemplateID *uuid.UUID        `json:"template_id"`
	Variables  map[string]string `json:"variables"`
}

// EmailResponse represents an email in API responses
type EmailResponse struct {
	ID         uuid.UUID  `json:"id"`
	To         string     `json:"to"`
	Cc         string     `json:"cc"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	Error      string     `json:"error,omitempty"`
	SentAt     *time.Time `json:"sent_at,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	ContactID  *uuid.UUID `json:"contact_id,omitempty"`
	SenderID   uuid.UUID  `json:"sender_id"`
	TemplateID *uuid.UUID `json:"template_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// EmailListFilter represents filter options for email list
type EmailListFilter struct {
	Search     string     `form:"search"`
	Status     string     `form:"status" binding:"omitempty,oneof=draft sent failed"`
	CustomerID *uuid.UUID `form:"customer_id"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
}

// ToEmailResponse maps an email to its API representation
func ToEmailResponse(e *messaging.Email) EmailResponse {
	return EmailResponse{
		ID:         e.ID,
		To:         e.To,
		Cc:         e.Cc,
		Subject:    e.Subject,
		Body:       e.Body,
		Status:     string(e.Status),
		Error:      e.Error,
		SentAt:     e.SentAt,
		CustomerID: e.CustomerID,
		ContactID:  e.ContactID,
		SenderID:   e.SenderID,
		TemplateID: e.TemplateID,
		CreatedAt:  e.CreatedAt,
	}
}

// ToEmailResponses maps a slice of emails
func ToEmailResponses(emails []messaging.Email) []EmailResponse {
	responses := make([]EmailResponse, len(emails))
	for i := range emails {
		responses[i] = ToEmailResponse(&emails[i])
	}
	return responses
}

// =============================================================================
// Template DTOs
// =============================================================================

// CreateTemplateRequest represents a request to create an email template
type CreateTemplateRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=255"`
	Subject string `json:"subject" binding:"required,min=1,max=500"`
	Body    string `json:"body" binding:"required"`
}

// UpdateTemplateRequest represents a request to update an email template
type UpdateTemplateRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Subject *string `json:"subject" binding:"omitempty,min=1,max=500"`
	Body    *string `json:"body"`
}

// TemplateResponse represents an email template in API responses
type TemplateResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToTemplateResponse maps a template to its API representation
func ToTemplateResponse(t *messaging.EmailTemplate) TemplateResponse {
	return TemplateResponse{
		ID:        t.ID,
		Name:      t.Name,
		Subject:   t.Subject,
		Body:      t.Body,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// ToTemplateResponses maps a slice of templates
func ToTemplateResponses(templates []messaging.EmailTemplate) []TemplateResponse {
	responses := make([]TemplateResponse, len(templates))
	for i := range templates {
		responses[i] = ToTemplateResponse(&templates[i])
	}
	return responses
}

// =============================================================================
// Notification DTOs
// =============================================================================

// CreateNotificationRequest represents a request to notify a user
type CreateNotificationRequest struct {
	UserID  uuid.UUID `json:"user_id" binding:"required"`
	Type    string    `json:"type" binding:"omitempty,oneof=info task invoice system"`
	Title   string    `json:"title" binding:"required,min=1,max=255"`
	Message string    `json:"message"`
	Link    string    `json:"link" binding:"max=500"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Link      string     `json:"link,omitempty"`
	Read      bool       `json:"read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// NotificationListFilter represents filter options for notification list
type NotificationListFilter struct {
	Unread   bool `form:"unread"`
	Page     int  `form:"page"`
	PageSize int  `form:"page_size"`
}

// ToNotificationResponse maps a notification to its API representation
func ToNotificationResponse(n *messaging.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Read:      n.Read,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationResponses maps a slice of notifications
func ToNotificationResponses(notifications []messaging.Notification) []NotificationResponse {
	responses := make([]NotificationResponse, len(notifications))
	for i := range notifications {
		responses[i] = ToNotificationResponse(&notifications[i])
	}
	return responses
}
