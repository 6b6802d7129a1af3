package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/periyanachi-erp/fees-api/api/swagger"
	"github.com/periyanachi-erp/fees-api/internal/handler"
	"github.com/periyanachi-erp/fees-api/internal/middleware"
	"github.com/periyanachi-erp/fees-api/internal/repository"
	"github.com/periyanachi-erp/fees-api/internal/service"
	"github.com/periyanachi-erp/fees-api/pkg/cache"
	"github.com/periyanachi-erp/fees-api/pkg/config"
	"github.com/periyanachi-erp/fees-api/pkg/database"
	"github.com/periyanachi-erp/fees-api/pkg/logger"
	corsmiddleware "github.com/periyanachi-erp/fees-api/pkg/middleware/cors"
	reqidmiddleware "github.com/periyanachi-erp/fees-api/pkg/middleware/requestid"
	"github.com/periyanachi-erp/fees-api/pkg/sms"
)

// @title School Fees API
// @version 1.0.0
// @description Fee ledger and balance reconciliation service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, summary cache disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Summaries.CacheTTL, logr, cfg.Summaries.Enabled)

	var sender sms.Sender
	if cfg.SMS.Enabled {
		sender = sms.NewLogSender(cfg.SMS.SenderID, logr)
	} else {
		sender = sms.Disabled{}
	}

	categoryRepo := repository.NewFeeCategoryRepository(db)
	structureRepo := repository.NewFeeStructureRepository(db)
	assignmentRepo := repository.NewFeeAssignmentRepository(db)
	paymentRepo := repository.NewFeePaymentRepository(db, cfg.Receipts.Prefix, cfg.Receipts.Pad)
	studentRepo := repository.NewStudentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	concessionRepo := repository.NewConcessionRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	categorySvc := service.NewFeeCategoryService(categoryRepo, nil, logr)
	structureSvc := service.NewFeeStructureService(structureRepo, categoryRepo, nil, logr)
	assignmentSvc := service.NewFeeAssignmentService(assignmentRepo, structureRepo, categoryRepo, studentRepo, concessionRepo, notificationRepo, cacheSvc, nil, logr,
		service.FeeAssignmentServiceConfig{NotificationsEnabled: cfg.Notifications.Enabled})
	paymentSvc := service.NewFeePaymentService(paymentRepo, assignmentRepo, studentRepo, notificationRepo, sender, cacheSvc, metricsSvc, nil, logr,
		service.FeePaymentServiceConfig{
			ReceiptMaxRetries:    cfg.Receipts.MaxRetries,
			NotificationsEnabled: cfg.Notifications.Enabled,
			SMSEnabled:           cfg.SMS.Enabled,
		})
	summarySvc := service.NewFeeSummaryService(summaryRepo, assignmentRepo, paymentRepo, studentRepo, cacheSvc, cfg.Summaries.CacheTTL, logr)
	reminderSvc := service.NewReminderService(studentRepo, assignmentRepo, notificationRepo, sender, nil, logr)
	exportSvc := service.NewExportService(paymentRepo, "Periyanachi Matriculation School", logr)
	notificationSvc := service.NewNotificationService(notificationRepo, logr)
	concessionSvc := service.NewConcessionService(concessionRepo, studentRepo, nil, logr)

	categoryHandler := handler.NewFeeCategoryHandler(categorySvc)
	structureHandler := handler.NewFeeStructureHandler(structureSvc)
	assignmentHandler := handler.NewFeeAssignmentHandler(assignmentSvc)
	paymentHandler := handler.NewFeePaymentHandler(paymentSvc, exportSvc)
	summaryHandler := handler.NewFeeSummaryHandler(summarySvc, exportSvc)
	concessionHandler := handler.NewConcessionHandler(concessionSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc, reminderSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.GET("/fee-categories", categoryHandler.List)
		api.POST("/fee-categories", categoryHandler.Create)
		api.GET("/fee-categories/:id", categoryHandler.Get)
		api.PUT("/fee-categories/:id", categoryHandler.Update)
		api.DELETE("/fee-categories/:id", categoryHandler.Delete)

		api.GET("/fee-structures", structureHandler.List)
		api.POST("/fee-structures", structureHandler.Create)
		api.GET("/fee-structures/:id", structureHandler.Get)
		api.PUT("/fee-structures/:id", structureHandler.Update)
		api.DELETE("/fee-structures/:id", structureHandler.Delete)

		api.GET("/fee-assignments", assignmentHandler.List)
		api.POST("/fee-assignments", assignmentHandler.Assign)
		api.POST("/fee-assignments/bulk", assignmentHandler.BulkAssign)
		api.GET("/fee-assignments/:id", assignmentHandler.Get)
		api.PUT("/fee-assignments/:id/discount", assignmentHandler.UpdateDiscount)
		api.DELETE("/fee-assignments/:id", assignmentHandler.Delete)

		api.GET("/fee-payments", paymentHandler.List)
		api.POST("/fee-payments", paymentHandler.Create)
		api.GET("/fee-payments/:id", paymentHandler.Get)
		api.GET("/fee-payments/:id/receipt", paymentHandler.Receipt)

		api.GET("/fee-summaries/classes/:class_name", summaryHandler.ClassSummary)
		api.GET("/fee-summaries/students/:student_id", summaryHandler.StudentStatement)
		api.GET("/fee-summaries/students/:student_id/statement", summaryHandler.StudentStatementPDF)
		api.GET("/fee-summaries/audit", summaryHandler.Audit)
		api.GET("/fee-summaries/collections/export", summaryHandler.CollectionsExport)

		api.POST("/fee-concessions", concessionHandler.Create)
		api.DELETE("/fee-concessions/:id", concessionHandler.Delete)
		api.GET("/students/:student_id/concessions", concessionHandler.ListByStudent)

		api.GET("/students/:student_id/notifications", notificationHandler.ListByStudent)
		api.PUT("/fee-notifications/:id/read", notificationHandler.MarkRead)
		api.POST("/fee-reminders", notificationHandler.SendReminders)
		api.GET("/students/:student_id/reminders", notificationHandler.ReminderHistory)

		api.GET("/metrics/snapshot", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
