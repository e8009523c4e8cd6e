package messaging

import (
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// EmailStatus represents the delivery state of an email
type EmailStatus string

const (
	EmailStatusDraft  EmailStatus = "draft"
	EmailStatusSent   EmailStatus = "sent"
	EmailStatusFailed EmailStatus = "failed"
)

// Email is an outbound message composed inside the system and
// delivered over SMTP. It stays a draft until a send is attempted.
type Email struct {
	shared.TenantEntity
	To         string      `gorm:"type:varchar(255);not null"`
	Cc         string      `gorm:"type:varchar(500)"`
	Subject    string      `gorm:"type:varchar(500);not null"`
	Body       string      `gorm:"type:text;not null"`
	Status     EmailStatus `gorm:"type:varchar(20);not null;default:'draft';index"`
	Error      string      `gorm:"type:text"`
	SentAt     *time.Time
	CustomerID *uuid.UUID `gorm:"type:uuid;index"`
	ContactID  *uuid.UUID `gorm:"type:uuid;index"`
	SenderID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	TemplateID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Email) TableName() string {
	return "emails"
}

// NewEmail composes a draft email
func NewEmail(tenantID, senderID uuid.UUID, to, subject, body string) (*Email, error) {
	if strings.TrimSpace(to) == "" {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Email recipient cannot be empty")
	}
	if strings.TrimSpace(subject) == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Email subject cannot be empty")
	}
	return &Email{
		TenantEntity: shared.NewTenantEntity(tenantID),
		To:           to,
		Subject:      subject,
		Body:         body,
		Status:       EmailStatusDraft,
		SenderID:     senderID,
	}, nil
}

// MarkSent records a successful delivery
func (e *Email) MarkSent(at time.Time) {
	e.Status = EmailStatusSent
	e.SentAt = &at
	e.Error = ""
	e.Touch()
}

// MarkFailed records a failed delivery attempt with the reason
func (e *Email) MarkFailed(reason string) {
	e.Status = EmailStatusFailed
	e.Error = reason
	e.Touch()
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)

// EmailTemplate is a reusable subject/body pair with {{placeholder}}
// variables substituted at composition time.
type EmailTemplate struct {
	shared.TenantEntity
	Name    string `gorm:"type:varchar(255);not null"`
	Subject string `gorm:"type:varchar(500);not null"`
	Body    string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (EmailTemplate) TableName() string {
	return "email_templates"
}

// NewEmailTemplate creates a named template
func NewEmailTemplate(tenantID uuid.UUID, name, subject, body string) (*EmailTemplate, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	return &EmailTemplate{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Subject:      subject,
		Body:         body,
	}, nil
}

// Render substitutes {{placeholder}} variables in the subject and body.
// Unknown placeholders are left untouched.
func (t *EmailTemplate) Render(vars map[string]string) (subject, body string) {
	replace := func(s string) string {
		return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
			key := placeholderPattern.FindStringSubmatch(match)[1]
			if v, ok := vars[key]; ok {
				return v
			}
			return match
		})
	}
	return replace(t.Subject), replace(t.Body)
}
