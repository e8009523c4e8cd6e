// Package document handles file attachment upload, download and metadata.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/domain/document"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/storage"
)

// UploadRequest carries the metadata of an incoming file
type UploadRequest struct {
	FileName      string
	ContentType   string
	Size          int64
	Description   string
	CustomerID    *uuid.UUID
	OpportunityID *uuid.UUID
}

// DocumentResponse represents document metadata in API responses
type DocumentResponse struct {
	ID            uuid.UUID  `json:"id"`
	FileName      string     `json:"file_name"`
	ContentType   string     `json:"content_type"`
	Size          int64      `json:"size"`
	Description   string     `json:"description"`
	CustomerID    *uuid.UUID `json:"customer_id,omitempty"`
	OpportunityID *uuid.UUID `json:"opportunity_id,omitempty"`
	UploadedByID  uuid.UUID  `json:"uploaded_by_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ListFilter represents filter options for document list
type ListFilter struct {
	Search        string     `form:"search"`
	CustomerID    *uuid.UUID `form:"customer_id"`
	OpportunityID *uuid.UUID `form:"opportunity_id"`
	Page          int        `form:"page"`
	PageSize      int        `form:"page_size"`
}

// ToDocumentResponse maps a document to its API representation
func ToDocumentResponse(d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:            d.ID,
		FileName:      d.FileName,
		ContentType:   d.ContentType,
		Size:          d.Size,
		Description:   d.Description,
		CustomerID:    d.CustomerID,
		OpportunityID: d.OpportunityID,
		UploadedByID:  d.UploadedByID,
		CreatedAt:     d.CreatedAt,
	}
}

// ToDocumentResponses maps a slice of documents
func ToDocumentResponses(documents []document.Document) []DocumentResponse {
	responses := make([]DocumentResponse, len(documents))
	for i := range documents {
		responses[i] = ToDocumentResponse(&documents[i])
	}
	return responses
}

// Service stores file blobs and their metadata
type Service struct {
	repo   document.Repository
	blobs  storage.BlobStore
	logger *zap.Logger
}

// NewService creates a new document Service
func NewService(repo document.Repository, blobs storage.BlobStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		blobs:  blobs,
		logger: logger,
	}
}

// Upload writes the blob and records its metadata. Blob keys are
// namespaced by tenant so storage cannot leak across tenants.
func (s *Service) Upload(ctx context.Context, tenantID, userID uuid.UUID, req UploadRequest, content io.Reader) (*DocumentResponse, error) {
	storageKey := fmt.Sprintf("%s/%s/%s", tenantID, uuid.New(), req.FileName)

	if err := s.blobs.Put(ctx, storageKey, req.ContentType, content); err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	doc, err := document.NewDocument(tenantID, userID, req.FileName, req.ContentType, storageKey, req.Size)
	if err != nil {
		// Orphaned blob, best effort cleanup
		if delErr := s.blobs.Delete(ctx, storageKey); delErr != nil {
			s.logger.Warn("Failed to remove blob after metadata rejection",
				zap.String("storage_key", storageKey), zap.Error(delErr))
		}
		return nil, err
	}
	doc.Description = req.Description
	if req.CustomerID != nil {
		doc.AttachToCustomer(*req.CustomerID)
	}
	if req.OpportunityID != nil {
		doc.AttachToOpportunity(*req.OpportunityID)
	}

	if err := s.repo.Save(ctx, doc); err != nil {
		if delErr := s.blobs.Delete(ctx, storageKey); delErr != nil {
			s.logger.Warn("Failed to remove blob after metadata save failure",
				zap.String("storage_key", storageKey), zap.Error(delErr))
		}
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// GetByID retrieves document metadata
func (s *Service) GetByID(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, error) {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, err
	}

	response := ToDocumentResponse(doc)
	return &response, nil
}

// Download opens the stored blob. The caller must close the reader.
func (s *Service) Download(ctx context.Context, tenantID, documentID uuid.UUID) (*DocumentResponse, io.ReadCloser, error) {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return nil, nil, err
	}

	content, err := s.blobs.Get(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// metadata row without a blob, e.g. removed out of band
			s.logger.Warn("Document blob missing from storage",
				zap.String("storage_key", doc.StorageKey), zap.Error(err))
			return nil, nil, shared.ErrNotFound
		}
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}

	response := ToDocumentResponse(doc)
	return &response, content, nil
}

// List retrieves document metadata with filtering and pagination
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]DocumentResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Search:   filter.Search,
		Filters:  make(map[string]any),
	}
	domainFilter.Normalize()

	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.OpportunityID != nil {
		domainFilter.Filters["opportunity_id"] = *filter.OpportunityID
	}

	documents, err := s.repo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToDocumentResponses(documents), total, nil
}

// Delete removes the metadata and then the blob. A blob deletion
// failure is logged, the metadata row is already gone.
func (s *Service) Delete(ctx context.Context, tenantID, documentID uuid.UUID) error {
	doc, err := s.repo.FindByIDForTenant(ctx, tenantID, documentID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteForTenant(ctx, tenantID, documentID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, doc.StorageKey); err != nil {
		s.logger.Warn("Failed to delete blob for removed document",
			zap.String("storage_key", doc.StorageKey), zap.Error(err))
	}
	return nil
}
