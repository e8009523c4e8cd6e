package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appaudit "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// capturingAuditRepository collects saved logs on a channel so tests
// can wait for the asynchronous audit write.
type capturingAuditRepository struct {
	saved chan *audit.Log
}

func newCapturingAuditRepository() *capturingAuditRepository {
	return &capturingAuditRepository{saved: make(chan *audit.Log, 8)}
}

func (r *capturingAuditRepository) Save(ctx context.Context, log *audit.Log) error {
	r.saved <- log
	return nil
}

func (r *capturingAuditRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]audit.Log, error) {
	return nil, nil
}

func (r *capturingAuditRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	return 0, nil
}

var _ audit.Repository = (*capturingAuditRepository)(nil)

func (r *capturingAuditRepository) waitForLog(t *testing.T) *audit.Log {
	t.Helper()
	select {
	case log := <-r.saved:
		return log
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit log")
		return nil
	}
}

func (r *capturingAuditRepository) assertNoLog(t *testing.T) {
	t.Helper()
	select {
	case log := <-r.saved:
		t.Fatalf("unexpected audit log for %s %s", log.Method, log.Path)
	case <-time.After(100 * time.Millisecond):
	}
}

// auditTestRouter wires a fake authentication layer in front of the
// audit middleware.
func auditTestRouter(repo *capturingAuditRepository, tenantID, userID uuid.UUID) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if tenantID != uuid.Nil {
			c.Set(JWTTenantIDKey, tenantID.String())
			c.Set(JWTUserIDKey, userID.String())
		}
		c.Next()
	})
	router.Use(Audit(appaudit.NewService(repo, nil)))
	return router
}

func TestAudit_CreateUsesResponseBodyID(t *testing.T) {
	repo := newCapturingAuditRepository()
	tenantID, userID := uuid.New(), uuid.New()
	createdID := uuid.New()

	router := auditTestRouter(repo, tenantID, userID)
	router.POST("/api/v1/customers", func(c *gin.Context) {
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{"id": createdID.String()}})
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", bytes.NewBufferString(`{"name":"Acme"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	log := repo.waitForLog(t)
	assert.Equal(t, audit.ActionCreate, log.Action)
	assert.Equal(t, "customers", log.Resource)
	assert.Equal(t, tenantID, log.TenantID)
	assert.Equal(t, userID, log.UserID)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, createdID, *log.ResourceID)
}

func TestAudit_RouteParamWinsOverBodies(t *testing.T) {
	repo := newCapturingAuditRepository()
	tenantID, userID := uuid.New(), uuid.New()
	targetID := uuid.New()

	router := auditTestRouter(repo, tenantID, userID)
	router.DELETE("/api/v1/customers/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/customers/"+targetID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	log := repo.waitForLog(t)
	assert.Equal(t, audit.ActionDelete, log.Action)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, targetID, *log.ResourceID)
}

func TestAudit_RequestBodyIDFallback(t *testing.T) {
	repo := newCapturingAuditRepository()
	tenantID, userID := uuid.New(), uuid.New()
	bodyID := uuid.New()

	router := auditTestRouter(repo, tenantID, userID)
	router.POST("/api/v1/documents", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents",
		bytes.NewBufferString(`{"id":"`+bodyID.String()+`","name":"q3.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	log := repo.waitForLog(t)
	require.NotNil(t, log.ResourceID)
	assert.Equal(t, bodyID, *log.ResourceID)
}

func TestAudit_MethodActionMapping(t *testing.T) {
	tests := []struct {
		method string
		action audit.Action
	}{
		{http.MethodPost, audit.ActionCreate},
		{http.MethodPut, audit.ActionUpdate},
		{http.MethodPatch, audit.ActionUpdate},
		{http.MethodDelete, audit.ActionDelete},
		{http.MethodGet, audit.ActionView},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			repo := newCapturingAuditRepository()
			router := auditTestRouter(repo, uuid.New(), uuid.New())
			router.Handle(tt.method, "/api/v1/tasks/:id", func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/api/v1/tasks/"+uuid.NewString(), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			log := repo.waitForLog(t)
			assert.Equal(t, tt.action, log.Action)
			assert.Equal(t, "tasks", log.Resource)
		})
	}
}

func TestAudit_SkipsRequestsWithoutResourceID(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"collection list", http.MethodGet, "/api/v1/customers"},
		{"bulk operation", http.MethodPost, "/api/v1/stages/reorder"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newCapturingAuditRepository()
			router := auditTestRouter(repo, uuid.New(), uuid.New())
			router.Handle(tt.method, tt.path, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			repo.assertNoLog(t)
		})
	}
}

func TestAudit_SkipsNoisyResources(t *testing.T) {
	skipped := []string{"audit-logs", "reports", "dashboard", "notifications", "auth"}

	for _, resource := range skipped {
		t.Run(resource, func(t *testing.T) {
			repo := newCapturingAuditRepository()
			router := auditTestRouter(repo, uuid.New(), uuid.New())
			router.GET("/api/v1/"+resource, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/"+resource, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			repo.assertNoLog(t)
		})
	}
}

func TestAudit_SkipsUnauthenticatedRequests(t *testing.T) {
	repo := newCapturingAuditRepository()
	router := auditTestRouter(repo, uuid.Nil, uuid.Nil)
	router.GET("/api/v1/customers", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.assertNoLog(t)
}

func TestAudit_SkipsNonAPIRoutes(t *testing.T) {
	repo := newCapturingAuditRepository()
	router := auditTestRouter(repo, uuid.New(), uuid.New())
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	repo.assertNoLog(t)
}

func TestAudit_RecordsRequestMetadata(t *testing.T) {
	repo := newCapturingAuditRepository()
	router := auditTestRouter(repo, uuid.New(), uuid.New())
	router.GET("/api/v1/customers/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+id.String(), nil)
	req.Header.Set("User-Agent", "integration-client/1.0")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	log := repo.waitForLog(t)
	assert.Equal(t, http.MethodGet, log.Method)
	assert.Equal(t, "/api/v1/customers/"+id.String(), log.Path)
	assert.Equal(t, "integration-client/1.0", log.UserAgent)
	assert.NotEmpty(t, log.Detail)
}
