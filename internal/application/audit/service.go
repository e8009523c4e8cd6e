// Package audit records and queries the tenant audit trail.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
)

// Entry describes one action to be written to the audit trail
type Entry struct {
	TenantID   uuid.UUID
	UserID     uuid.UUID
	Action     audit.Action
	Resource   string
	ResourceID *uuid.UUID
	Method     string
	Path       string
	IPAddress  string
	UserAgent  string
	Detail     datatypes.JSON
}

// LogResponse represents an audit log in API responses
type LogResponse struct {
	ID         uuid.UUID      `json:"id"`
	UserID     uuid.UUID      `json:"user_id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	ResourceID *uuid.UUID     `json:"resource_id,omitempty"`
	Method     string         `json:"method"`
	Path       string         `json:"path"`
	IPAddress  string         `json:"ip_address,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty"`
	Detail     datatypes.JSON `json:"detail,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

// ListFilter represents filter options for the audit log list
type ListFilter struct {
	UserID   *uuid.UUID `form:"user_id"`
	Action   string     `form:"action" binding:"omitempty,oneof=CREATE UPDATE DELETE VIEW"`
	Resource string     `form:"resource"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// Service writes audit entries asynchronously and serves queries.
// Recording is fire-and-forget, a failed write never reaches the
// request path.
type Service struct {
	repo    audit.Repository
	logger  *zap.Logger
	timeout time.Duration
}

// NewService creates a new audit Service
func NewService(repo audit.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

// Record writes an audit entry in the background
func (s *Service) Record(entry Entry) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Audit record panicked", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		log := audit.NewLog(entry.TenantID, entry.UserID, entry.Action, entry.Resource, entry.Method, entry.Path)
		log.ResourceID = entry.ResourceID
		log.IPAddress = entry.IPAddress
		log.UserAgent = entry.UserAgent
		log.Detail = entry.Detail

		if err := s.repo.Save(ctx, log); err != nil {
			s.logger.Error("Failed to write audit log",
				zap.String("resource", entry.Resource),
				zap.String("action", string(entry.Action)),
				zap.Error(err))
		}
	}()
}

// List retrieves audit logs with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]LogResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.UserID != nil {
		domainFilter.Filters["user_id"] = *filter.UserID
	}
	if filter.Action != "" {
		domainFilter.Filters["action"] = filter.Action
	}
	if filter.Resource != "" {
		domainFilter.Filters["resource"] = filter.Resource
	}

	logs, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LogResponse, len(logs))
	for i := range logs {
		responses[i] = LogResponse{
			ID:         logs[i].ID,
			UserID:     logs[i].UserID,
			Action:     string(logs[i].Action),
			Resource:   logs[i].Resource,
			ResourceID: logs[i].ResourceID,
			Method:     logs[i].Method,
			Path:       logs[i].Path,
			IPAddress:  logs[i].IPAddress,
			UserAgent:  logs[i].UserAgent,
			Detail:     logs[i].Detail,
			CreatedAt:  logs[i].CreatedAt,
		}
	}
	return responses, total, nil
}
