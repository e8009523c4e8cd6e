package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/crm/backend/internal/domain/document"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/storage"
)

// MockDocumentRepository is a mock implementation of document.Repository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]document.Document, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]document.Document), args.Error(1)
}

func (m *MockDocumentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) Save(ctx context.Context, doc *document.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

var _ document.Repository = (*MockDocumentRepository)(nil)

// MockBlobStore is a mock implementation of storage.BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, key string, contentType string, content io.Reader) error {
	args := m.Called(ctx, key, contentType, content)
	return args.Error(0)
}

func (m *MockBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var _ storage.BlobStore = (*MockBlobStore)(nil)

func createTestDocument(t *testing.T, tenantID uuid.UUID) *document.Document {
	t.Helper()
	doc, err := document.NewDocument(tenantID, uuid.New(), "contract.pdf", "application/pdf",
		fmt.Sprintf("%s/%s/contract.pdf", tenantID, uuid.New()), 1024)
	require.NoError(t, err)
	return doc
}

func TestService_Download_Success(t *testing.T) {
	repo := new(MockDocumentRepository)
	blobs := new(MockBlobStore)
	service := NewService(repo, blobs, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	doc := createTestDocument(t, tenantID)

	repo.On("FindByIDForTenant", ctx, tenantID, doc.ID).Return(doc, nil)
	blobs.On("Get", ctx, doc.StorageKey).Return(io.NopCloser(strings.NewReader("pdf bytes")), nil)

	response, content, err := service.Download(ctx, tenantID, doc.ID)
	require.NoError(t, err)
	defer content.Close()

	assert.Equal(t, "contract.pdf", response.FileName)
	data, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
}

func TestService_Download_MissingBlobIsNotFound(t *testing.T) {
	repo := new(MockDocumentRepository)
	blobs := new(MockBlobStore)
	service := NewService(repo, blobs, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	doc := createTestDocument(t, tenantID)

	repo.On("FindByIDForTenant", ctx, tenantID, doc.ID).Return(doc, nil)
	blobs.On("Get", ctx, doc.StorageKey).Return(nil, fmt.Errorf("%w: %s", storage.ErrNotFound, doc.StorageKey))

	response, content, err := service.Download(ctx, tenantID, doc.ID)
	assert.Nil(t, response)
	assert.Nil(t, content)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestService_Download_UnknownDocumentPassesThrough(t *testing.T) {
	repo := new(MockDocumentRepository)
	blobs := new(MockBlobStore)
	service := NewService(repo, blobs, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	documentID := uuid.New()

	repo.On("FindByIDForTenant", ctx, tenantID, documentID).Return(nil, shared.ErrNotFound)

	_, _, err := service.Download(ctx, tenantID, documentID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	blobs.AssertNotCalled(t, "Get")
}

func TestService_Upload_CleansUpBlobWhenSaveFails(t *testing.T) {
	repo := new(MockDocumentRepository)
	blobs := new(MockBlobStore)
	service := NewService(repo, blobs, nil)

	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	blobs.On("Put", ctx, mock.Anything, "text/plain", mock.Anything).Return(nil)
	repo.On("Save", ctx, mock.Anything).Return(errors.New("connection reset"))
	blobs.On("Delete", ctx, mock.Anything).Return(nil)

	req := UploadRequest{FileName: "notes.txt", ContentType: "text/plain", Size: 5}
	_, err := service.Upload(ctx, tenantID, userID, req, strings.NewReader("notes"))
	require.Error(t, err)

	blobs.AssertCalled(t, "Delete", ctx, mock.Anything)
}
