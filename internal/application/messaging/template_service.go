package messaging

import (
	"context"

	"github.com/google/uuid"

	"github.com/crm/backend/internal/domain/messaging"
)

// TemplateService manages reusable email templates
type TemplateService struct {
	templateRepo messaging.EmailTemplateRepository
}

// NewTemplateService creates a new TemplateService
func NewTemplateService(templateRepo messaging.EmailTemplateRepository) *TemplateService {
	return &TemplateService{templateRepo: templateRepo}
}

// Create creates a new email template
func (s *TemplateService) Create(ctx context.Context, tenantID uuid.UUID, req CreateTemplateRequest) (*TemplateResponse, error) {
	template, err := messaging.NewEmailTemplate(tenantID, req.Name, req.Subject, req.Body)
	if err != nil {
		return nil, err
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// GetByID retrieves a template by ID
func (s *TemplateService) GetByID(ctx context.Context, tenantID, templateID uuid.UUID) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// List retrieves all templates of a tenant
func (s *TemplateService) List(ctx context.Context, tenantID uuid.UUID) ([]TemplateResponse, error) {
	templates, err := s.templateRepo.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToTemplateResponses(templates), nil
}

// Update updates a template
func (s *TemplateService) Update(ctx context.Context, tenantID, templateID uuid.UUID, req UpdateTemplateRequest) (*TemplateResponse, error) {
	template, err := s.templateRepo.FindByIDForTenant(ctx, tenantID, templateID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
	}
	if req.Subject != nil {
		template.Subject = *req.Subject
	}
	if req.Body != nil {
		template.Body = *req.Body
	}
	template.Touch()

	if err := s.templateRepo.Save(ctx, template); err != nil {
		return nil, err
	}

	response := ToTemplateResponse(template)
	return &response, nil
}

// Delete removes a template
func (s *TemplateService) Delete(ctx context.Context, tenantID, templateID uuid.UUID) error {
	return s.templateRepo.DeleteForTenant(ctx, tenantID, templateID)
}
