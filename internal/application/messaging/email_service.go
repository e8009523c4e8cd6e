package messaging

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/messaging"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/mail"
)

// EmailService composes and sends emails
type EmailService struct {
	emailRepo    messaging.EmailRepository
	templateRepo messaging.EmailTemplateRepository
	sender       mail.Sender
	logger       *zap.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(
	emailRepo messaging.EmailRepository,
	templateRepo messaging.EmailTemplateRepository,
	sender mail.Sender,
	logger *zap.Logger,
) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailService{
		emailRepo:    emailRepo,
		templateRepo: templateRepo,
		sender:       sender,
		logger:       logger,
	}
}

// Compose creates an email draft, rendering the template when one is
// referenced. Explicit subject and body take precedence over the
// rendered template.
func (s *EmailService) Compose(ctx context.Context, tenantID, senderID uuid.UUID, req ComposeEmailRequest) (*EmailResponse, error) {
	subject := req.Subject
	body := req.Body

	if req.TemplateID != nil {
		template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, *req.TemplateID)
		if err != nil {
			return nil, err
		}
		renderedSubject, renderedBody := template.Render(req.Variables)
		if subject == "" {
			subject = renderedSubject
		}
		if body == "" {
			body = renderedBody
		}
	}
	if subject == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email subject cannot be empty")
	}

	email, err := messaging.NewEmail(tenantID, senderID, req.To, subject, body)
	if err != nil {
		return nil, err
	}
	email.Cc = req.Cc
	email.CustomerID = req.CustomerID
	email.ContactID = req.ContactID
	email.TemplateID = req.TemplateID

	if err := s.emailRepo.Save(ctx, email); err != nil {
		return nil, err
	}

	response := ToEmailResponse(email)
	return &response, nil
}

// Send delivers a draft email through SMTP and records the outcome.
// Delivery failures do not fail the request; the email is marked
// failed with the categorized reason.
func (s *EmailService) Send(ctx context.Context, tenantID, emailID uuid.UUID) (*EmailResponse, error) {
	email, err := s.emailRepo.FindByIDForTenant(ctx, tenantID, emailID)
	if err != nil {
		return nil, err
	}
	if email.Status == messaging.EmailStatusSent {
		return nil, shared.NewDomainError("INVALID_STATE", "Email has already been sent")
	}

	msg := mail.Message{
		To:      splitAddresses(email.To),
		Cc:      splitAddresses(email.Cc),
		Subject: email.Subject,
		Body:    email.Body,
	}
	if sendErr := s.sender.Send(ctx, msg); sendErr != nil {
		email.MarkFailed(s.failureReason(sendErr))
		s.logger.Warn("Email delivery failed",
			zap.String("email_id", email.ID.String()),
			zap.String("reason", email.Error),
		)
	} else {
		email.MarkSent(time.Now())
	}

	if err := s.emailRepo.Save(ctx, email); err != nil {
		return nil, err
	}

	response := ToEmailResponse(email)
	return &response, nil
}

// splitAddresses turns a stored comma-separated address list into the
// slice form the mail sender expects.
func splitAddresses(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	parts := strings.Split(list, ",")
	addresses := make([]string, 0, len(parts))
	for _, part := range parts {
		if addr := strings.TrimSpace(part); addr != "" {
			addresses = append(addresses, addr)
		}
	}
	return addresses
}

func (s *EmailService) failureReason(err error) string {
	switch {
	case errors.Is(mail.Categorize(err), mail.ErrAuthentication):
		return "authentication: " + err.Error()
	case errors.Is(mail.Categorize(err), mail.ErrConnectivity):
		return "connectivity: " + err.Error()
	}
	return "delivery: " + err.Error()
}

// GetByID retrieves an email by ID
func (s *EmailService) GetByID(ctx context.Context, tenantID, emailID uuid.UUID) (*EmailResponse, error) {
	email, err := s.emailRepo.FindByIDForTenant(ctx, tenantID, emailID)
	if err != nil {
		return nil, err
	}

	response := ToEmailResponse(email)
	return &response, nil
}

// List retrieves emails with filtering and pagination
func (s *EmailService) List(ctx context.Context, tenantID uuid.UUID, filter EmailListFilter) ([]EmailResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}

	emails, err := s.emailRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.emailRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToEmailResponses(emails), total, nil
}

// Delete removes an email record
func (s *EmailService) Delete(ctx context.Context, tenantID, emailID uuid.UUID) error {
	return s.emailRepo.DeleteForTenant(ctx, tenantID, emailID)
}
