package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/crm/backend/internal/interfaces/http/dto"
)

const (
	// TenantHeaderKey is the optional client-supplied tenant header
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantMiddlewareConfig holds configuration for tenant middleware
type TenantMiddlewareConfig struct {
	// SkipPaths are paths that carry no tenant context (health, auth)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantMiddlewareConfig {
	return TenantMiddlewareConfig{
		SkipPaths: []string{"/health", "/api/v1/auth"},
	}
}

// Tenant enforces tenant consistency on authenticated requests. The
// tenant is always taken from the validated JWT claim; a client may
// additionally send X-Tenant-ID, and when that header disagrees with
// the claim the request is rejected with 403. The header is never a
// way to switch tenants.
func Tenant(cfg TenantMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		claimTenantID := GetJWTTenantID(c)
		if claimTenantID == "" {
			// JWT middleware rejects unauthenticated requests before we
			// run, so a missing claim means a misconfigured route chain.
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeUnauthorized, "Tenant context required", c.GetString("request_id")))
			return
		}

		if headerTenantID := c.GetHeader(TenantHeaderKey); headerTenantID != "" && headerTenantID != claimTenantID {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Tenant header does not match token claim",
					zap.String("claim_tenant_id", claimTenantID),
					zap.String("header_tenant_id", headerTenantID),
					zap.String("path", path))
			}
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponseWithRequestID("TENANT_MISMATCH", "Tenant header does not match authenticated tenant", c.GetString("request_id")))
			return
		}

		c.Next()
	}
}
