// Package realtime provides an in-process event hub for server-sent events.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const clientBufferSize = 100

// Event is a message pushed to subscribed clients
type Event struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// NewEvent marshals a payload into an Event
func NewEvent(name string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal event payload: %w", err)
	}
	return Event{
		Event: name,
		Data:  string(data),
		ID:    fmt.Sprintf("%d", time.Now().UnixNano()),
	}, nil
}

// Client is a single subscriber connection. Events arrive on Chan
// until the subscription is closed.
type Client struct {
	ID    string
	Rooms []string
	Chan  chan Event
	Done  chan struct{}
}

// Hub routes events to clients by room. Rooms are plain strings;
// callers use TenantRoom and UserRoom to address them.
type Hub struct {
	logger    *zap.Logger
	mu        sync.RWMutex
	rooms     map[string]map[string]*Client
	clients   map[string]*Client
	ctx       context.Context
	cancel    context.CancelFunc
	heartbeat time.Duration
	maxConns  int
}

// TenantRoom addresses every connected user of a tenant
func TenantRoom(tenantID uuid.UUID) string {
	return "tenant:" + tenantID.String()
}

// UserRoom addresses a single user's connections
func UserRoom(userID uuid.UUID) string {
	return "user:" + userID.String()
}

// Option configures a Hub
type Option func(*Hub)

// WithHeartbeat sets the keep-alive interval
func WithHeartbeat(interval time.Duration) Option {
	return func(h *Hub) { h.heartbeat = interval }
}

// WithMaxConnections limits concurrent subscribers
func WithMaxConnections(max int) Option {
	return func(h *Hub) { h.maxConns = max }
}

// NewHub creates a hub. Call Start to begin heartbeats and Stop to
// disconnect all clients.
func NewHub(logger *zap.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		logger:    logger.Named("realtime"),
		rooms:     make(map[string]map[string]*Client),
		clients:   make(map[string]*Client),
		ctx:       ctx,
		cancel:    cancel,
		heartbeat: 30 * time.Second,
		maxConns:  10000,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start begins the heartbeat loop
func (h *Hub) Start() {
	go h.sendHeartbeats()
}

// Stop disconnects all clients and stops the heartbeat loop
func (h *Hub) Stop() {
	h.cancel()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, client := range h.clients {
		close(client.Done)
	}
	h.rooms = make(map[string]map[string]*Client)
	h.clients = make(map[string]*Client)

	h.logger.Info("Realtime hub stopped")
}

// ErrMaxConnections is returned by Subscribe when the hub is full
var ErrMaxConnections = fmt.Errorf("maximum number of connections reached")

// Subscribe registers a client in the given rooms. The caller must
// call Unsubscribe when the connection closes.
func (h *Hub) Subscribe(rooms ...string) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxConns > 0 && len(h.clients) >= h.maxConns {
		return nil, ErrMaxConnections
	}

	client := &Client{
		ID:    uuid.New().String(),
		Rooms: rooms,
		Chan:  make(chan Event, clientBufferSize),
		Done:  make(chan struct{}),
	}
	h.clients[client.ID] = client
	for _, room := range rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[string]*Client)
		}
		h.rooms[room][client.ID] = client
	}

	h.logger.Debug("Client subscribed",
		zap.String("client_id", client.ID),
		zap.Strings("rooms", rooms))
	return client, nil
}

// Unsubscribe removes a client and closes its channel
func (h *Hub) Unsubscribe(client *Client) {
	if client == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	for _, room := range client.Rooms {
		delete(h.rooms[room], client.ID)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	close(client.Chan)
}

// Publish delivers an event to every client in a room. Slow clients
// with a full buffer have the event dropped rather than blocking.
func (h *Hub) Publish(room string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.rooms[room] {
		select {
		case client.Chan <- event:
		default:
			h.logger.Warn("Client channel full, dropping event",
				zap.String("client_id", client.ID),
				zap.String("room", room),
				zap.String("event", event.Event))
		}
	}
}

// PublishToTenant delivers an event to all of a tenant's connections
func (h *Hub) PublishToTenant(tenantID uuid.UUID, event Event) {
	h.Publish(TenantRoom(tenantID), event)
}

// PublishToUser delivers an event to a single user's connections
func (h *Hub) PublishToUser(userID uuid.UUID, event Event) {
	h.Publish(UserRoom(userID), event)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Done reports hub shutdown to streaming handlers
func (h *Hub) Done() <-chan struct{} {
	return h.ctx.Done()
}

func (h *Hub) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			event := Event{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			}
			h.mu.RLock()
			for _, client := range h.clients {
				select {
				case client.Chan <- event:
				default:
				}
			}
			h.mu.RUnlock()
		}
	}
}
