// Package router assembles the gin engine: global middleware, the
// health endpoint and every versioned API route.
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaudit "github.com/crm/backend/internal/application/audit"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/middleware"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Handlers bundles every handler the router mounts
type Handlers struct {
	Health       *handler.HealthHandler
	Auth         *handler.AuthHandler
	Tenant       *handler.TenantHandler
	User         *handler.UserHandler
	Role         *handler.RoleHandler
	Customer     *handler.CustomerHandler
	Contact      *handler.ContactHandler
	Stage        *handler.StageHandler
	Opportunity  *handler.OpportunityHandler
	Activity     *handler.ActivityHandler
	Task         *handler.TaskHandler
	Invoice      *handler.InvoiceHandler
	Payment      *handler.PaymentHandler
	Email        *handler.EmailHandler
	Template     *handler.TemplateHandler
	Notification *handler.NotificationHandler
	Document     *handler.DocumentHandler
	Report       *handler.ReportHandler
	AuditLog     *handler.AuditLogHandler
}

// Config carries everything needed to build the engine
type Config struct {
	HTTP           config.HTTPConfig
	ServiceName    string
	TracingEnabled bool
	JWTService     *auth.JWTService
	TokenBlacklist auth.TokenBlacklist
	AuditService   *appaudit.Service
	Handlers       Handlers
	Logger         *zap.Logger
}

// New builds the gin engine with the full middleware chain and all
// API routes registered.
func New(cfg Config) *gin.Engine {
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(cfg.Logger))
	engine.Use(logger.GinMiddleware(cfg.Logger))

	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.TracingEnabled {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}

	engine.Use(middleware.JWT(middleware.JWTMiddlewareConfig{
		JWTService:     cfg.JWTService,
		TokenBlacklist: cfg.TokenBlacklist,
		SkipPaths:      middleware.DefaultSkipPaths(),
		Logger:         cfg.Logger,
	}))
	engine.Use(middleware.Tenant(middleware.DefaultTenantConfig()))
	engine.Use(middleware.Audit(cfg.AuditService))

	engine.GET("/health", cfg.Handlers.Health.Check)

	registerRoutes(engine.Group("/api/v1"), cfg.Handlers)

	return engine
}

func registerRoutes(api *gin.RouterGroup, h Handlers) {
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
		authGroup.POST("/refresh", h.Auth.Refresh)
		authGroup.POST("/logout", h.Auth.Logout)
		authGroup.GET("/me", h.Auth.Me)
	}

	api.GET("/tenant", h.Tenant.Get)
	api.PATCH("/tenant", h.Tenant.Update)

	users := api.Group("/users")
	{
		users.POST("", h.User.Create)
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
		users.PATCH("/:id", h.User.Update)
		users.DELETE("/:id", h.User.Delete)
	}

	roles := api.Group("/roles")
	{
		roles.POST("", h.Role.Create)
		roles.GET("", h.Role.List)
		roles.GET("/:id", h.Role.Get)
		roles.PATCH("/:id", h.Role.Update)
		roles.DELETE("/:id", h.Role.Delete)
	}

	customers := api.Group("/customers")
	{
		customers.POST("", h.Customer.Create)
		customers.GET("", h.Customer.List)
		customers.GET("/:id", h.Customer.Get)
		customers.PATCH("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
		customers.GET("/:id/contacts", h.Customer.ListContacts)
	}

	contacts := api.Group("/contacts")
	{
		contacts.POST("", h.Contact.Create)
		contacts.GET("", h.Contact.List)
		contacts.GET("/:id", h.Contact.Get)
		contacts.PATCH("/:id", h.Contact.Update)
		contacts.DELETE("/:id", h.Contact.Delete)
	}

	stages := api.Group("/stages")
	{
		stages.POST("", h.Stage.Create)
		stages.GET("", h.Stage.List)
		stages.POST("/reorder", h.Stage.Reorder)
		stages.PATCH("/:id", h.Stage.Update)
		stages.DELETE("/:id", h.Stage.Delete)
	}

	opportunities := api.Group("/opportunities")
	{
		opportunities.POST("", h.Opportunity.Create)
		opportunities.GET("", h.Opportunity.List)
		opportunities.GET("/:id", h.Opportunity.Get)
		opportunities.PATCH("/:id", h.Opportunity.Update)
		opportunities.PATCH(":id/stage", h.Opportunity.MoveStage)
		opportunities.POST(":id/move-stage", h.Opportunity.MoveStage)
		opportunities.DELETE("/:id", h.Opportunity.Delete)
	}

	activities := api.Group("/activities")
	{
		activities.POST("", h.Activity.Create)
		activities.GET("", h.Activity.List)
		activities.GET("/:id", h.Activity.Get)
		activities.DELETE("/:id", h.Activity.Delete)
	}

	tasks := api.Group("/tasks")
	{
		tasks.POST("", h.Task.Create)
		tasks.GET("", h.Task.List)
		tasks.GET("/:id", h.Task.Get)
		tasks.PATCH("/:id", h.Task.Update)
		tasks.DELETE("/:id", h.Task.Delete)
	}

	invoices := api.Group("/invoices")
	{
		invoices.POST("", h.Invoice.Create)
		invoices.GET("", h.Invoice.List)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PATCH("/:id", h.Invoice.Update)
		invoices.POST("/:id/send", h.Invoice.Send)
		invoices.POST("/:id/cancel", h.Invoice.Cancel)
		invoices.GET("/:id/pdf", h.Invoice.DownloadPDF)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.POST("/:id/payments", h.Payment.Apply)
		invoices.GET("/:id/payments", h.Payment.ListByInvoice)
	}

	payments := api.Group("/payments")
	{
		payments.GET("/:id", h.Payment.Get)
		payments.DELETE("/:id", h.Payment.Delete)
	}

	emails := api.Group("/emails")
	{
		emails.POST("", h.Email.Compose)
		emails.GET("", h.Email.List)
		emails.GET("/:id", h.Email.Get)
		emails.PATCH(":id/send", h.Email.Send)
		emails.POST(":id/send", h.Email.Send)
		emails.DELETE("/:id", h.Email.Delete)
	}

	templates := api.Group("/email-templates")
	{
		templates.POST("", h.Template.Create)
		templates.GET("", h.Template.List)
		templates.GET("/:id", h.Template.Get)
		templates.PATCH("/:id", h.Template.Update)
		templates.DELETE("/:id", h.Template.Delete)
	}

	notifications := api.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.GET("/stream", h.Notification.Stream)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
		notifications.POST("/:id/read", h.Notification.MarkRead)
		notifications.DELETE("/:id", h.Notification.Delete)
	}

	documents := api.Group("/documents")
	{
		documents.POST("", h.Document.Upload)
		documents.GET("", h.Document.List)
		documents.GET("/:id", h.Document.Get)
		documents.GET("/:id/download", h.Document.Download)
		documents.DELETE("/:id", h.Document.Delete)
	}

	api.GET("/dashboard", h.Report.Dashboard)
	api.GET("/dashboard/detailed", h.Report.DetailedDashboard)

	reports := api.Group("/reports")
	{
		reports.GET("/sales", h.Report.Sales)
		reports.GET("/pipeline", h.Report.Pipeline)
		reports.GET("/:kind/export", h.Report.Export)
	}

	api.GET("/audit-logs", h.AuditLog.List)
}
