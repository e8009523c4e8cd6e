package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
)

func newTestJWTService(accessTTL time.Duration) *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-for-middleware",
		AccessTokenExpiration:  accessTTL,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "crm-test",
	})
}

// failingBlacklist simulates a blacklist backend outage.
type failingBlacklist struct{}

func (failingBlacklist) Revoke(context.Context, string, time.Duration) error {
	return errors.New("backend unavailable")
}

func (failingBlacklist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("backend unavailable")
}

func jwtTestRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(JWT(cfg))
	router.GET("/api/v1/customers", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   GetJWTUserID(c),
			"tenant_id": GetJWTTenantID(c),
		})
	})
	router.POST("/api/v1/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func issueAccessToken(t *testing.T, svc *auth.JWTService, tenantID, userID uuid.UUID) string {
	t.Helper()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID: tenantID,
		UserID:   userID,
		Email:    "user@example.com",
	})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestJWT_ValidTokenSetsContext(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	tenantID, userID := uuid.New(), uuid.New()
	router := jwtTestRouter(JWTMiddlewareConfig{JWTService: svc, SkipPaths: DefaultSkipPaths()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Authorization", BearerPrefix+issueAccessToken(t, svc, tenantID, userID))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), tenantID.String())
}

func TestJWT_MissingAuthorizationHeader(t *testing.T) {
	router := jwtTestRouter(JWTMiddlewareConfig{JWTService: newTestJWTService(time.Hour)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWT_MalformedAuthorizationHeader(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	router := jwtTestRouter(JWTMiddlewareConfig{JWTService: svc})
	token := issueAccessToken(t, svc, uuid.New(), uuid.New())

	tests := []struct {
		name   string
		header string
	}{
		{"wrong scheme", "Basic " + token},
		{"no scheme", token},
		{"empty bearer", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWT_ExpiredToken(t *testing.T) {
	svc := newTestJWTService(-time.Minute)
	router := jwtTestRouter(JWTMiddlewareConfig{JWTService: svc})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Authorization", BearerPrefix+issueAccessToken(t, svc, uuid.New(), uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "TOKEN_EXPIRED")
}

func TestJWT_RefreshTokenRejectedOnAPIRoutes(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	router := jwtTestRouter(JWTMiddlewareConfig{JWTService: svc})

	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{TenantID: uuid.New(), UserID: uuid.New()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Authorization", BearerPrefix+pair.RefreshToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWT_RevokedToken(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	blacklist := auth.NewInMemoryTokenBlacklist()
	router := jwtTestRouter(JWTMiddlewareConfig{JWTService: svc, TokenBlacklist: blacklist})

	token := issueAccessToken(t, svc, uuid.New(), uuid.New())
	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.NoError(t, blacklist.Revoke(context.Background(), claims.ID, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Authorization", BearerPrefix+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_TOKEN")
}

func TestJWT_BlacklistOutageFailsOpen(t *testing.T) {
	svc := newTestJWTService(time.Hour)
	router := jwtTestRouter(JWTMiddlewareConfig{
		JWTService:     svc,
		TokenBlacklist: failingBlacklist{},
		Logger:         zap.NewNop(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/customers", nil)
	req.Header.Set("Authorization", BearerPrefix+issueAccessToken(t, svc, uuid.New(), uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWT_SkipPaths(t *testing.T) {
	router := jwtTestRouter(JWTMiddlewareConfig{
		JWTService: newTestJWTService(time.Hour),
		SkipPaths:  DefaultSkipPaths(),
	})

	t.Run("health needs no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("login needs no token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
