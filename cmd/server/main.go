package main

import (
	"context"

	"tenant-platform/internal/auth"
	"tenant-platform/internal/model"
	"tenant-platform/internal/handler"
	"tenant-platform/internal/mailer"
	"tenant-platform/internal/middleware"
	"tenant-platform/internal/store"
	"tenant-platform/internal/tenant"
	"tenant-platform/pkg/config"
	"tenant-platform/pkg/database"
	"tenant-platform/pkg/jwtutil"
	"tenant-platform/pkg/logger"
	"tenant-platform/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting tenant platform...", cfg.LogConfig()...)

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)

	// Redis holds pending-2FA markers and live sessions
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Outbound mail
	mail := mailer.NewSMTPMailer(&cfg.SMTP)

	// Persistent stores
	db := database.GetDB()
	users := store.NewUserStore(db)
	codes := store.NewCodeStore(db)
	ledger := store.NewSessionLedger(db)
	profiles := store.NewProfileStore(db)
	tenants := store.NewTenantStore(db)

	// Auth protocol service with the post-login notification hook
	authSvc := auth.NewService(
		users,
		profiles,
		auth.NewTwoFactorEngine(codes),
		ledger,
		auth.NewRedisPendingStore(redisClient),
		auth.NewRedisSessionStore(redisClient, jwtutil.Expiry()),
		mail,
	)
	notifier := auth.NewLoginNotifier(profiles, mail)
	authSvc.OnLogin(func(ctx context.Context, user *model.User, _ *model.LoginSession) error {
		return notifier.NotifyLogin(ctx, user)
	})

	// Tenant provisioning service
	tenantSvc := tenant.NewService(tenants, mail, &cfg.Tenant)

	authHandler := handler.NewAuthHandler(authSvc)
	tenantHandler := handler.NewTenantHandler(tenantSvc)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	authGroup := e.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/verify-2fa", authHandler.Verify2FA)

	// Public tenant signup intake
	e.POST("/tenants/request", tenantHandler.SubmitRequest)

	// API routes - all require an authenticated live session
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware(authSvc))
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/logout-all", authHandler.LogoutAll)
	api.GET("/sessions", authHandler.SessionLogs)

	// Admin surface - tenant queue and lifecycle management
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin)
	admin.GET("/tenant-requests", tenantHandler.ListRequests)
	admin.POST("/tenant-requests/approve", tenantHandler.ApproveRequests)
	admin.POST("/tenant-requests/reject", tenantHandler.RejectRequests)
	admin.GET("/tenants", tenantHandler.ListTenants)
	admin.POST("/tenants/suspend", tenantHandler.SuspendTenants)
	admin.POST("/tenants/activate", tenantHandler.ActivateTenants)
	admin.GET("/tenants/:id/orders", tenantHandler.TenantOrders)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
