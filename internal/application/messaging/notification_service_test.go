package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/messaging"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/realtime"
)

// ===== Mock Repositories =====

type MockNotificationRepository struct {
	mock.Mock
}

var _ messaging.NotificationRepository = (*MockNotificationRepository)(nil)

func (m *MockNotificationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*messaging.Notification, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*messaging.Notification), args.Error(1)
}

func (m *MockNotificationRepository) FindByUser(ctx context.Context, tenantID, userID uuid.UUID, filter shared.Filter) ([]messaging.Notification, error) {
	args := m.Called(ctx, tenantID, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]messaging.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, tenantID, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, tenantID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockNotificationRepository) Save(ctx context.Context, notification *messaging.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) error {
	args := m.Called(ctx, tenantID, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// ===== Test Helper Functions =====

func newTestNotification(t *testing.T, tenantID, userID uuid.UUID, title string) *messaging.Notification {
	t.Helper()
	notification, err := messaging.NewNotification(tenantID, userID, messaging.NotificationTypeInfo, title, "details")
	require.NoError(t, err)
	notification.ID = uuid.New()
	return notification
}

func receiveNotificationEvent(t *testing.T, client *realtime.Client) realtime.Event {
	t.Helper()
	select {
	case event := <-client.Chan:
		return event
	case <-time.After(2 * time.Second):
		t.Fatal("expected an event on the client channel")
		return realtime.Event{}
	}
}

func assertNoNotificationEvent(t *testing.T, client *realtime.Client) {
	t.Helper()
	select {
	case event := <-client.Chan:
		t.Fatalf("unexpected event %q on the client channel", event.Event)
	case <-time.After(100 * time.Millisecond):
	}
}

// ===== NotificationService Tests =====

func TestNotificationService_Notify_SavesAndPushesToUserRoom(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	hub := realtime.NewHub(nil)
	defer hub.Stop()
	service := NewNotificationService(notificationRepo, hub, nil)

	tenantID := uuid.New()
	userID := uuid.New()

	client, err := hub.Subscribe(realtime.UserRoom(userID))
	require.NoError(t, err)

	notificationRepo.On("Save", mock.Anything, mock.AnythingOfType("*messaging.Notification")).Return(nil)

	response, err := service.Notify(context.Background(), tenantID, CreateNotificationRequest{
		UserID:  userID,
		Type:    "task",
		Title:   "Follow up with Acme",
		Message: "Call scheduled for Monday",
		Link:    "/opportunities/42",
	})

	require.NoError(t, err)
	assert.Equal(t, userID, response.UserID)
	assert.Equal(t, "task", response.Type)
	assert.Equal(t, "Follow up with Acme", response.Title)
	assert.Equal(t, "/opportunities/42", response.Link)
	assert.False(t, response.Read)

	event := receiveNotificationEvent(t, client)
	assert.Equal(t, "notification", event.Event)

	var pushed NotificationResponse
	require.NoError(t, json.Unmarshal([]byte(event.Data), &pushed))
	assert.Equal(t, "Follow up with Acme", pushed.Title)
	assert.Equal(t, userID, pushed.UserID)

	notificationRepo.AssertExpectations(t)
}

func TestNotificationService_Notify_DefaultsTypeToInfo(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	service := NewNotificationService(notificationRepo, nil, nil)

	notificationRepo.On("Save", mock.Anything, mock.AnythingOfType("*messaging.Notification")).Return(nil)

	response, err := service.Notify(context.Background(), uuid.New(), CreateNotificationRequest{
		UserID: uuid.New(),
		Title:  "Invoice overdue",
	})

	require.NoError(t, err)
	assert.Equal(t, string(messaging.NotificationTypeInfo), response.Type)
}

func TestNotificationService_Notify_PushSkipsOtherUsers(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	hub := realtime.NewHub(nil)
	defer hub.Stop()
	service := NewNotificationService(notificationRepo, hub, nil)

	tenantID := uuid.New()
	targetUser := uuid.New()
	otherUser := uuid.New()

	bystander, err := hub.Subscribe(realtime.UserRoom(otherUser))
	require.NoError(t, err)

	notificationRepo.On("Save", mock.Anything, mock.AnythingOfType("*messaging.Notification")).Return(nil)

	_, err = service.Notify(context.Background(), tenantID, CreateNotificationRequest{
		UserID: targetUser,
		Title:  "Deal won",
	})
	require.NoError(t, err)

	assertNoNotificationEvent(t, bystander)
}

func TestNotificationService_Notify_InvalidNotification(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	service := NewNotificationService(notificationRepo, nil, nil)

	_, err := service.Notify(context.Background(), uuid.New(), CreateNotificationRequest{
		UserID: uuid.Nil,
		Title:  "Orphaned",
	})
	assert.Error(t, err)

	_, err = service.Notify(context.Background(), uuid.New(), CreateNotificationRequest{
		UserID: uuid.New(),
		Title:  "   ",
	})
	assert.Error(t, err)

	notificationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestNotificationService_MarkRead_Success(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	service := NewNotificationService(notificationRepo, nil, nil)

	tenantID := uuid.New()
	userID := uuid.New()
	notification := newTestNotification(t, tenantID, userID, "Quote accepted")

	notificationRepo.On("FindByIDForTenant", mock.Anything, tenantID, notification.ID).Return(notification, nil)
	notificationRepo.On("Save", mock.Anything, notification).Return(nil)

	response, err := service.MarkRead(context.Background(), tenantID, userID, notification.ID)

	require.NoError(t, err)
	assert.True(t, response.Read)
	assert.NotNil(t, response.ReadAt)
	notificationRepo.AssertExpectations(t)
}

func TestNotificationService_MarkRead_OtherUsersNotificationIsNotFound(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	service := NewNotificationService(notificationRepo, nil, nil)

	tenantID := uuid.New()
	owner := uuid.New()
	notification := newTestNotification(t, tenantID, owner, "Private reminder")

	notificationRepo.On("FindByIDForTenant", mock.Anything, tenantID, notification.ID).Return(notification, nil)

	_, err := service.MarkRead(context.Background(), tenantID, uuid.New(), notification.ID)

	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.False(t, notification.Read)
	notificationRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	service := NewNotificationService(notificationRepo, nil, nil)

	tenantID := uuid.New()
	userID := uuid.New()

	notificationRepo.On("MarkAllRead", mock.Anything, tenantID, userID).Return(nil)

	err := service.MarkAllRead(context.Background(), tenantID, userID)

	require.NoError(t, err)
	notificationRepo.AssertExpectations(t)
}

func TestNotificationService_ListForUser(t *testing.T) {
	notificationRepo := new(MockNotificationRepository)
	service := NewNotificationService(notificationRepo, nil, nil)

	tenantID := uuid.New()
	userID := uuid.New()
	notifications := []messaging.Notification{
		*newTestNotification(t, tenantID, userID, "First"),
		*newTestNotification(t, tenantID, userID, "Second"),
	}

	notificationRepo.On("FindByUser", mock.Anything, tenantID, userID, mock.MatchedBy(func(filter shared.Filter) bool {
		unread, ok := filter.Filters["unread"].(bool)
		return ok && unread && filter.Page == 1
	})).Return(notifications, nil)
	notificationRepo.On("CountUnread", mock.Anything, tenantID, userID).Return(int64(2), nil)

	responses, unread, err := service.ListForUser(context.Background(), tenantID, userID, NotificationListFilter{Unread: true})

	require.NoError(t, err)
	assert.Len(t, responses, 2)
	assert.Equal(t, int64(2), unread)
	notificationRepo.AssertExpectations(t)
}
