package document

import (
	"strings"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Document is file metadata for an uploaded blob. The bytes live in
// the configured blob store; StorageKey locates them there.
type Document struct {
	shared.TenantEntity
	FileName      string     `gorm:"type:varchar(255);not null"`
	ContentType   string     `gorm:"type:varchar(127);not null"`
	Size          int64      `gorm:"not null"`
	StorageKey    string     `gorm:"type:varchar(512);not null"`
	Description   string     `gorm:"type:text"`
	CustomerID    *uuid.UUID `gorm:"type:uuid;index"`
	OpportunityID *uuid.UUID `gorm:"type:uuid;index"`
	UploadedByID  uuid.UUID  `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (Document) TableName() string {
	return "documents"
}

// NewDocument creates document metadata for an uploaded file
func NewDocument(tenantID, uploadedByID uuid.UUID, fileName, contentType, storageKey string, size int64) (*Document, error) {
	if strings.TrimSpace(fileName) == "" {
		return nil, shared.NewDomainError("INVALID_FILENAME", "Document file name cannot be empty")
	}
	if strings.TrimSpace(storageKey) == "" {
		return nil, shared.NewDomainError("INVALID_KEY", "Document storage key cannot be empty")
	}
	if size < 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "Document size cannot be negative")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Document{
		TenantEntity: shared.NewTenantEntity(tenantID),
		FileName:     fileName,
		ContentType:  contentType,
		Size:         size,
		StorageKey:   storageKey,
		UploadedByID: uploadedByID,
	}, nil
}

// AttachToCustomer links the document to a customer
func (d *Document) AttachToCustomer(customerID uuid.UUID) {
	d.CustomerID = &customerID
	d.Touch()
}

// AttachToOpportunity links the document to an opportunity
func (d *Document) AttachToOpportunity(opportunityID uuid.UUID) {
	d.OpportunityID = &opportunityID
	d.Touch()
}
