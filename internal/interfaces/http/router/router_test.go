package router

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func registeredRoutes(t *testing.T) gin.RoutesInfo {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	registerRoutes(engine.Group("/api/v1"), Handlers{})
	return engine.Routes()
}

func assertRoute(t *testing.T, routes gin.RoutesInfo, method, path string) {
	t.Helper()
	for _, route := range routes {
		if route.Method == method && route.Path == path {
			return
		}
	}
	t.Errorf("route %s %s is not registered", method, path)
}

func TestRouter_WorkflowRoutes(t *testing.T) {
	routes := registeredRoutes(t)

	assertRoute(t, routes, http.MethodPatch, "/api/v1/opportunities/:id/stage")
	assertRoute(t, routes, http.MethodPatch, "/api/v1/emails/:id/send")
	assertRoute(t, routes, http.MethodGet, "/api/v1/reports/:kind/export")

	// compatibility aliases stay mounted
	assertRoute(t, routes, http.MethodPost, "/api/v1/opportunities/:id/move-stage")
	assertRoute(t, routes, http.MethodPost, "/api/v1/emails/:id/send")
}

func TestRouter_ReportRoutesCoexistWithExport(t *testing.T) {
	routes := registeredRoutes(t)

	assertRoute(t, routes, http.MethodGet, "/api/v1/reports/sales")
	assertRoute(t, routes, http.MethodGet, "/api/v1/reports/pipeline")
	assertRoute(t, routes, http.MethodGet, "/api/v1/reports/:kind/export")
	assert.NotEmpty(t, routes)
}
