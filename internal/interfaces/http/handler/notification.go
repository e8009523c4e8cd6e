package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	messagingapp "github.com/crm/backend/internal/application/messaging"
	"github.com/crm/backend/internal/infrastructure/realtime"
)

// NotificationHandler handles notification API endpoints, including
// the SSE stream for live delivery.
type NotificationHandler struct {
	BaseHandler
	notificationService *messagingapp.NotificationService
	hub                 *realtime.Hub
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *messagingapp.NotificationService, hub *realtime.Hub, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		hub:                 hub,
		logger:              logger,
	}
}

// List returns a page of the acting user's notifications together
// with the unread count.
func (h *NotificationHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter messagingapp.NotificationListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	notifications, unread, err := h.notificationService.ListForUser(c.Request.Context(), tenantID, userID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkRead marks one of the acting user's notifications as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), tenantID, userID, notificationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, notification)
}

// MarkAllRead marks all of the acting user's notifications as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if err := h.notificationService.MarkAllRead(c.Request.Context(), tenantID, userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Delete removes a notification
func (h *NotificationHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	notificationID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notificationService.Delete(c.Request.Context(), tenantID, notificationID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Stream subscribes the client to its tenant and user rooms and
// streams events over SSE until the connection closes.
func (h *NotificationHandler) Stream(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	client, err := h.hub.Subscribe(realtime.TenantRoom(tenantID), realtime.UserRoom(userID))
	if err != nil {
		if errors.Is(err, realtime.ErrMaxConnections) {
			h.Error(c, http.StatusServiceUnavailable, "MAX_CONNECTIONS_REACHED", "Maximum number of streaming connections reached")
			return
		}
		h.HandleError(c, err)
		return
	}
	defer h.hub.Unsubscribe(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	h.logger.Info("Streaming client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID.String()),
		zap.String("tenant_id", tenantID.String()))

	writeSSEEvent(c.Writer, realtime.Event{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":%q}`, client.ID),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()
	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("Streaming client disconnected", zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.hub.Done():
			return
		case event, ok := <-client.Chan:
			if !ok {
				return
			}
			writeSSEEvent(c.Writer, event)
			c.Writer.Flush()
		}
	}
}

// writeSSEEvent writes one event in text/event-stream framing
func writeSSEEvent(w io.Writer, event realtime.Event) {
	if event.ID != "" {
		fmt.Fprintf(w, "id: %s\n", event.ID)
	}
	if event.Event != "" {
		fmt.Fprintf(w, "event: %s\n", event.Event)
	}
	fmt.Fprintf(w, "data: %s\n\n", event.Data)
}
