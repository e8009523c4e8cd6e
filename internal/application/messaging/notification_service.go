package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/messaging"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/realtime"
)

// NotificationService stores notifications and pushes them to
// connected clients through the realtime hub.
type NotificationService struct {
	notificationRepo messaging.NotificationRepository
	hub              *realtime.Hub
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationRepo messaging.NotificationRepository, hub *realtime.Hub, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		notificationRepo: notificationRepo,
		hub:              hub,
		logger:           logger,
	}
}

// Notify stores a notification and pushes it to the target user's
// live connections. A push failure never fails the request.
func (s *NotificationService) Notify(ctx context.Context, tenantID uuid.UUID, req CreateNotificationRequest) (*NotificationResponse, error) {
	nType := messaging.NotificationType(req.Type)
	if req.Type == "" {
		nType = messaging.NotificationTypeInfo
	}

	notification, err := messaging.NewNotification(tenantID, req.UserID, nType, req.Title, req.Message)
	if err != nil {
		return nil, err
	}
	notification.Link = req.Link

	if err := s.notificationRepo.Save(ctx, notification); err != nil {
		return nil, err
	}

	response := ToNotificationResponse(notification)
	s.push(req.UserID, response)
	return &response, nil
}

func (s *NotificationService) push(userID uuid.UUID, response NotificationResponse) {
	if s.hub == nil {
		return
	}
	event, err := realtime.NewEvent("notification", response)
	if err != nil {
		s.logger.Error("Failed to build notification event", zap.Error(err))
		return
	}
	s.hub.PublishToUser(userID, event)
}

// ListForUser retrieves a user's notifications, newest first
func (s *NotificationService) ListForUser(ctx context.Context, tenantID, userID uuid.UUID, filter NotificationListFilter) ([]NotificationResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.Unread {
		domainFilter.Filters["unread"] = true
	}

	notifications, err := s.notificationRepo.FindByUser(ctx, tenantID, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	unread, err := s.notificationRepo.CountUnread(ctx, tenantID, userID)
	if err != nil {
		return nil, 0, err
	}

	return ToNotificationResponses(notifications), unread, nil
}

// MarkRead marks a single notification as read. Reading another
// user's notification is rejected as not found.
func (s *NotificationService) MarkRead(ctx context.Context, tenantID, userID, notificationID uuid.UUID) (*NotificationResponse, error) {
	notification, err := s.notificationRepo.FindByIDForTenant(ctx, tenantID, notificationID)
	if err != nil {
		return nil, err
	}
	if notification.UserID != userID {
		return nil, shared.ErrNotFound
	}

	notification.MarkRead(time.Now())
	if err := s.notificationRepo.Save(ctx, notification); err != nil {
		return nil, err
	}

	response := ToNotificationResponse(notification)
	return &response, nil
}

// MarkAllRead marks every unread notification of a user as read
func (s *NotificationService) MarkAllRead(ctx context.Context, tenantID, userID uuid.UUID) error {
	return s.notificationRepo.MarkAllRead(ctx, tenantID, userID)
}

// Delete removes a notification
func (s *NotificationService) Delete(ctx context.Context, tenantID, notificationID uuid.UUID) error {
	return s.notificationRepo.DeleteForTenant(ctx, tenantID, notificationID)
}
