package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	auditapp "github.com/crm/backend/internal/application/audit"
	billingapp "github.com/crm/backend/internal/application/billing"
	crmapp "github.com/crm/backend/internal/application/crm"
	documentapp "github.com/crm/backend/internal/application/document"
	identityapp "github.com/crm/backend/internal/application/identity"
	messagingapp "github.com/crm/backend/internal/application/messaging"
	reportapp "github.com/crm/backend/internal/application/report"
	"github.com/crm/backend/internal/infrastructure/auth"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/crm/backend/internal/infrastructure/config"
	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/crm/backend/internal/infrastructure/mail"
	"github.com/crm/backend/internal/infrastructure/pdf"
	"github.com/crm/backend/internal/infrastructure/persistence"
	"github.com/crm/backend/internal/infrastructure/persistence/tenant"
	"github.com/crm/backend/internal/infrastructure/realtime"
	"github.com/crm/backend/internal/infrastructure/storage"
	"github.com/crm/backend/internal/infrastructure/telemetry"
	"github.com/crm/backend/internal/interfaces/http/handler"
	"github.com/crm/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	gormLogLevel := gormlogger.Warn
	if cfg.App.Env != "production" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	// Second line of defense behind the explicit tenant predicates in
	// the repositories.
	tenant.NewCallback(false).Register(db.DB)

	// Redis backs the token blacklist and the report cache. The server
	// still runs without it, on in-process fallbacks.
	var (
		blacklist   auth.TokenBlacklist
		reportCache cache.ReportCache
	)
	redisAddr := cfg.Redis.Addr()
	redisClient, err := cache.NewRedisClient(redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory token blacklist and cache", zap.Error(err))
		blacklist = auth.NewInMemoryTokenBlacklist()
		reportCache = cache.NewInMemoryReportCache()
	} else {
		defer func() { _ = redisClient.Close() }()
		blacklist = auth.NewRedisTokenBlacklist(redisClient)
		reportCache = cache.NewRedisReportCache(redisClient)
	}

	var blobs storage.BlobStore
	switch cfg.Storage.Driver {
	case "s3":
		blobs, err = storage.NewS3BlobStore(&cfg.Storage)
	default:
		blobs, err = storage.NewLocalBlobStore(cfg.Storage.LocalPath)
	}
	if err != nil {
		log.Fatal("Failed to initialize blob storage", zap.Error(err))
	}

	mailSender := mail.NewSMTPSender(cfg.Mail)
	renderer := pdf.NewChromeRenderer(log)
	defer func() { _ = renderer.Close() }()

	hub := realtime.NewHub(log)
	hub.Start()

	jwtService := auth.NewJWTService(cfg.JWT)

	// Repositories
	tenantRepo := persistence.NewGormTenantRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	stageRepo := persistence.NewGormOpportunityStageRepository(db.DB)
	opportunityRepo := persistence.NewGormOpportunityRepository(db.DB)
	activityRepo := persistence.NewGormActivityRepository(db.DB)
	taskRepo := persistence.NewGormTaskRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	emailRepo := persistence.NewGormEmailRepository(db.DB)
	templateRepo := persistence.NewGormEmailTemplateRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	auditRepo := persistence.NewGormAuditLogRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)

	// Services
	authService := identityapp.NewAuthService(tenantRepo, userRepo, roleRepo, jwtService, blacklist, log)
	userService := identityapp.NewUserService(userRepo, roleRepo)
	roleService := identityapp.NewRoleService(roleRepo)
	tenantService := identityapp.NewTenantService(tenantRepo)
	customerService := crmapp.NewCustomerService(customerRepo, opportunityRepo, invoiceRepo)
	contactService := crmapp.NewContactService(contactRepo, customerRepo)
	stageService := crmapp.NewStageService(stageRepo, opportunityRepo)
	opportunityService := crmapp.NewOpportunityService(opportunityRepo, stageRepo, customerRepo)
	activityService := crmapp.NewActivityService(activityRepo)
	taskService := crmapp.NewTaskService(taskRepo)
	invoiceService := billingapp.NewInvoiceService(invoiceRepo, paymentRepo, customerRepo, tenantRepo, renderer)
	paymentService := billingapp.NewPaymentService(invoiceRepo, paymentRepo, log)
	emailService := messagingapp.NewEmailService(emailRepo, templateRepo, mailSender, log)
	templateService := messagingapp.NewTemplateService(templateRepo)
	notificationService := messagingapp.NewNotificationService(notificationRepo, hub, log)
	documentService := documentapp.NewService(documentRepo, blobs, log)
	auditService := auditapp.NewService(auditRepo, log)
	reportService := reportapp.NewService(reportRepo, reportCache, reportapp.Config{
		DashboardTTL: cfg.Cache.DashboardTTL,
		ReportTTL:    cfg.Cache.ReportTTL,
	}, log)

	engine := router.New(router.Config{
		HTTP:           cfg.HTTP,
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		AuditService:   auditService,
		Logger:         log,
		Handlers: router.Handlers{
			Health:       handler.NewHealthHandler(db),
			Auth:         handler.NewAuthHandler(authService, userService),
			Tenant:       handler.NewTenantHandler(tenantService),
			User:         handler.NewUserHandler(userService),
			Role:         handler.NewRoleHandler(roleService),
			Customer:     handler.NewCustomerHandler(customerService, contactService),
			Contact:      handler.NewContactHandler(contactService),
			Stage:        handler.NewStageHandler(stageService),
			Opportunity:  handler.NewOpportunityHandler(opportunityService),
			Activity:     handler.NewActivityHandler(activityService),
			Task:         handler.NewTaskHandler(taskService),
			Invoice:      handler.NewInvoiceHandler(invoiceService),
			Payment:      handler.NewPaymentHandler(paymentService),
			Email:        handler.NewEmailHandler(emailService),
			Template:     handler.NewTemplateHandler(templateService),
			Notification: handler.NewNotificationHandler(notificationService, hub, log),
			Document:     handler.NewDocumentHandler(documentService),
			Report:       handler.NewReportHandler(reportService),
			AuditLog:     handler.NewAuditLogHandler(auditService),
		},
	})

	srv := &http.Server{
		Addr:        ":" + cfg.App.Port,
		Handler:     engine,
		ReadTimeout: cfg.HTTP.ReadTimeout,
		// No write timeout: the notification stream holds its
		// connection open indefinitely.
		WriteTimeout:   0,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	hub.Stop()
	if err := tracer.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shut down tracer", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
