package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	appaudit "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/domain/audit"
)

// auditSkipResources are resources whose reads and writes are not
// audited. Auditing the audit trail or high-frequency read surfaces
// would only generate noise.
var auditSkipResources = map[string]bool{
	"audit-logs":    true,
	"reports":       true,
	"dashboard":     true,
	"notifications": true,
	"auth":          true,
}

// auditActions maps HTTP methods to audit trail actions. Methods not
// listed here are not audited.
var auditActions = map[string]audit.Action{
	"POST":   audit.ActionCreate,
	"PUT":    audit.ActionUpdate,
	"PATCH":  audit.ActionUpdate,
	"DELETE": audit.ActionDelete,
	"GET":    audit.ActionView,
}

// auditBodyWriter captures the response body so the resource ID of a
// freshly created entity can be read back out of it.
type auditBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *auditBodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

const maxAuditBodySize = 64 * 1024

// Audit records authenticated write and read operations to the audit
// trail. Recording happens after the response is sent and never blocks
// or fails the request.
func Audit(service *appaudit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		action, ok := auditActions[c.Request.Method]
		if !ok {
			c.Next()
			return
		}

		resource := auditResource(c.Request.URL.Path)
		if resource == "" || auditSkipResources[resource] {
			c.Next()
			return
		}

		// Remember the request body; creation endpoints may carry a
		// client-chosen ID there.
		var requestBody []byte
		if c.Request.Body != nil && c.Request.ContentLength > 0 && c.Request.ContentLength <= maxAuditBodySize {
			requestBody, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBodySize))
			c.Request.Body = io.NopCloser(bytes.NewReader(requestBody))
		}

		writer := &auditBodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		// Unauthenticated requests are not audited; there is no actor
		// to attribute the action to.
		tenantID, err := uuid.Parse(GetJWTTenantID(c))
		if err != nil {
			return
		}
		userID, err := uuid.Parse(GetJWTUserID(c))
		if err != nil {
			return
		}

		// Requests that resolve no resource ID (collection reads, bulk
		// operations) leave no trail entry.
		resourceID := auditResourceID(c, requestBody, writer.body.Bytes())
		if resourceID == nil {
			return
		}

		entry := appaudit.Entry{
			TenantID:   tenantID,
			UserID:     userID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
		}
		if detail, err := json.Marshal(map[string]any{"status": writer.Status()}); err == nil {
			entry.Detail = datatypes.JSON(detail)
		}

		service.Record(entry)
	}
}

// auditResource extracts the resource name from an API path, e.g.
// /api/v1/customers/123 -> customers.
func auditResource(path string) string {
	const prefix = "/api/v1/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// auditResourceID resolves the affected entity ID, trying the route
// parameter first, then the request body, then the response body.
func auditResourceID(c *gin.Context, requestBody, responseBody []byte) *uuid.UUID {
	if param := c.Param("id"); param != "" {
		if id, err := uuid.Parse(param); err == nil {
			return &id
		}
	}
	if id := idFromJSON(requestBody); id != nil {
		return id
	}
	return idFromJSON(responseBody)
}

// idFromJSON reads "id" or "data.id" out of a JSON document.
func idFromJSON(body []byte) *uuid.UUID {
	if len(body) == 0 {
		return nil
	}
	var doc struct {
		ID   string `json:"id"`
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}
	raw := doc.ID
	if raw == "" {
		raw = doc.Data.ID
	}
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
