package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/messaging"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/mail"
)

// =============================================================================
// Mocks
// =============================================================================

// MockEmailRepository is a mock implementation of messaging.EmailRepository
type MockEmailRepository struct {
	mock.Mock
}

func (m *MockEmailRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*messaging.Email, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.Email), args.Error(1)
}

func (m *MockEmailRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]messaging.Email, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]messaging.Email), args.Error(1)
}

func (m *MockEmailRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEmailRepository) Save(ctx context.Context, email *messaging.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockEmailRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ messaging.EmailRepository = (*MockEmailRepository)(nil)

// MockTemplateRepository is a mock implementation of messaging.EmailTemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*messaging.EmailTemplate, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]messaging.EmailTemplate, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]messaging.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, template *messaging.EmailTemplate) error {
	args := m.Called(ctx, template)
	return args.Error(0)
}

func (m *MockTemplateRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ messaging.EmailTemplateRepository = (*MockTemplateRepository)(nil)

// fakeSender records the last message and returns a configured error.
type fakeSender struct {
	sent []mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, msg mail.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

var _ mail.Sender = (*fakeSender)(nil)

func newDraftEmail(t *testing.T, tenantID uuid.UUID) *messaging.Email {
	t.Helper()
	email, err := messaging.NewEmail(tenantID, uuid.New(), "ops@acme.example, billing@acme.example", "Invoice", "Attached.")
	require.NoError(t, err)
	email.Cc = "cfo@acme.example"
	return email
}

// =============================================================================
// EmailService Tests
// =============================================================================

func TestEmailService_Compose_PlainEmail(t *testing.T) {
	emailRepo := new(MockEmailRepository)
	service := NewEmailService(emailRepo, new(MockTemplateRepository), &fakeSender{}, nil)

	ctx := context.Background()
	tenantID, senderID := uuid.New(), uuid.New()

	emailRepo.On("Save", ctx, mock.AnythingOfType("*messaging.Email")).Return(nil)

	result, err := service.Compose(ctx, tenantID, senderID, ComposeEmailRequest{
		To:      "ops@acme.example",
		Subject: "Welcome",
		Body:    "Hello there",
	})

	require.NoError(t, err)
	assert.Equal(t, "draft", result.Status)
	assert.Equal(t, senderID, result.SenderID)
	emailRepo.AssertExpectations(t)
}

func TestEmailService_Compose_RendersTemplate(t *testing.T) {
	emailRepo := new(MockEmailRepository)
	templateRepo := new(MockTemplateRepository)
	service := NewEmailService(emailRepo, templateRepo, &fakeSender{}, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	template, err := messaging.NewEmailTemplate(tenantID, "welcome", "Welcome {{name}}", "Hello {{name}}!")
	require.NoError(t, err)

	templateRepo.On("FindByIDForTenant", ctx, tenantID, template.ID).Return(template, nil)
	emailRepo.On("Save", ctx, mock.AnythingOfType("*messaging.Email")).Return(nil)

	result, err := service.Compose(ctx, tenantID, uuid.New(), ComposeEmailRequest{
		To:         "ops@acme.example",
		TemplateID: &template.ID,
		Variables:  map[string]string{"name": "Dana"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Welcome Dana", result.Subject)
	assert.Equal(t, "Hello Dana!", result.Body)
}

func TestEmailService_Compose_ExplicitSubjectWinsOverTemplate(t *testing.T) {
	emailRepo := new(MockEmailRepository)
	templateRepo := new(MockTemplateRepository)
	service := NewEmailService(emailRepo, templateRepo, &fakeSender{}, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	template, err := messaging.NewEmailTemplate(tenantID, "welcome", "Template subject", "Template body")
	require.NoError(t, err)

	templateRepo.On("FindByIDForTenant", ctx, tenantID, template.ID).Return(template, nil)
	emailRepo.On("Save", ctx, mock.AnythingOfType("*messaging.Email")).Return(nil)

	result, err := service.Compose(ctx, tenantID, uuid.New(), ComposeEmailRequest{
		To:         "ops@acme.example",
		Subject:    "Override",
		TemplateID: &template.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "Override", result.Subject)
	assert.Equal(t, "Template body", result.Body)
}

func TestEmailService_Send_Success(t *testing.T) {
	emailRepo := new(MockEmailRepository)
	sender := &fakeSender{}
	service := NewEmailService(emailRepo, new(MockTemplateRepository), sender, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	email := newDraftEmail(t, tenantID)

	emailRepo.On("FindByIDForTenant", ctx, tenantID, email.ID).Return(email, nil)
	emailRepo.On("Save", ctx, email).Return(nil)

	result, err := service.Send(ctx, tenantID, email.ID)

	require.NoError(t, err)
	assert.Equal(t, "sent", result.Status)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ops@acme.example", "billing@acme.example"}, sender.sent[0].To)
	assert.Equal(t, []string{"cfo@acme.example"}, sender.sent[0].Cc)
}

func TestEmailService_Send_FailureIsRecordedNotReturned(t *testing.T) {
	tests := []struct {
		name       string
		sendErr    error
		wantPrefix string
	}{
		{
			name:       "authentication failure",
			sendErr:    errors.New("535 5.7.8 username and password not accepted"),
			wantPrefix: "authentication:",
		},
		{
			name:       "connectivity failure",
			sendErr:    errors.New("dial tcp: connection refused"),
			wantPrefix: "connectivity:",
		},
		{
			name:       "delivery failure",
			sendErr:    errors.New("550 mailbox unavailable"),
			wantPrefix: "delivery:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailRepo := new(MockEmailRepository)
			service := NewEmailService(emailRepo, new(MockTemplateRepository), &fakeSender{err: tt.sendErr}, nil)

			ctx := context.Background()
			tenantID := uuid.New()
			email := newDraftEmail(t, tenantID)

			emailRepo.On("FindByIDForTenant", ctx, tenantID, email.ID).Return(email, nil)
			emailRepo.On("Save", ctx, email).Return(nil)

			result, err := service.Send(ctx, tenantID, email.ID)

			require.NoError(t, err, "delivery failures are recorded, not returned")
			assert.Equal(t, "failed", result.Status)
			assert.Contains(t, result.Error, tt.wantPrefix)
			emailRepo.AssertExpectations(t)
		})
	}
}

func TestEmailService_Send_AlreadySent(t *testing.T) {
	emailRepo := new(MockEmailRepository)
	sender := &fakeSender{}
	service := NewEmailService(emailRepo, new(MockTemplateRepository), sender, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	email := newDraftEmail(t, tenantID)
	email.MarkSent(email.CreatedAt)

	emailRepo.On("FindByIDForTenant", ctx, tenantID, email.ID).Return(email, nil)

	result, err := service.Send(ctx, tenantID, email.ID)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Empty(t, sender.sent)
}

func TestEmailService_Send_FailedEmailCanBeRetried(t *testing.T) {
	emailRepo := new(MockEmailRepository)
	sender := &fakeSender{}
	service := NewEmailService(emailRepo, new(MockTemplateRepository), sender, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	email := newDraftEmail(t, tenantID)
	email.MarkFailed("connectivity: connection refused")

	emailRepo.On("FindByIDForTenant", ctx, tenantID, email.ID).Return(email, nil)
	emailRepo.On("Save", ctx, email).Return(nil)

	result, err := service.Send(ctx, tenantID, email.ID)

	require.NoError(t, err)
	assert.Equal(t, "sent", result.Status)
	assert.Empty(t, result.Error)
}
