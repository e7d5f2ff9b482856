package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bankingapp "github.com/distrib/backoffice/internal/application/banking"
	commissionapp "github.com/distrib/backoffice/internal/application/commission"
	ledgerapp "github.com/distrib/backoffice/internal/application/ledger"
	"github.com/distrib/backoffice/internal/infrastructure/cache"
	"github.com/distrib/backoffice/internal/infrastructure/config"
	"github.com/distrib/backoffice/internal/infrastructure/logger"
	"github.com/distrib/backoffice/internal/infrastructure/persistence"
	"github.com/distrib/backoffice/internal/infrastructure/statement"
	"github.com/distrib/backoffice/internal/interfaces/http/handler"
	"github.com/distrib/backoffice/internal/interfaces/http/middleware"
	"github.com/distrib/backoffice/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		Service:    cfg.App.Name,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Backoffice Settlement Engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Idempotency store for gateway webhook replay protection.
	// Redis when reachable, in-memory otherwise (single-instance only).
	var idempotencyStore ledgerapp.IdempotencyStore
	redisStore, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
		idempotencyStore = cache.NewInMemoryIdempotencyStore()
	} else {
		idempotencyStore = redisStore
		defer func() {
			if err := redisStore.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
		log.Info("Redis connected successfully")
	}

	// Initialize repositories
	titleRepo := persistence.NewGormTitleRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	commissionRuleRepo := persistence.NewGormCommissionRuleRepository(db.DB)
	commissionRecordRepo := persistence.NewGormCommissionRecordRepository(db.DB)
	commissionPayoutRepo := persistence.NewGormCommissionPayoutRepository(db.DB)
	bankStatementRepo := persistence.NewGormBankStatementRepository(db.DB)
	bankTransactionRepo := persistence.NewGormBankTransactionRepository(db.DB)

	// Transaction scopes
	ledgerScope := persistence.NewGormLedgerTransactionScope(db.DB)
	commissionScope := persistence.NewGormCommissionTransactionScope(db.DB)
	bankingScope := persistence.NewGormBankingTransactionScope(db.DB)

	// Initialize application services
	allocatorService := ledgerapp.NewAllocatorService(ledgerScope, log)
	titleService := ledgerapp.NewTitleService(titleRepo, movementRepo, ledgerScope, allocatorService, idempotencyStore, log)
	commissionService := commissionapp.NewCommissionService(commissionRuleRepo, commissionRecordRepo, commissionScope, log)
	payoutService := commissionapp.NewPayoutService(commissionPayoutRepo, commissionScope, log)
	statementImportService := bankingapp.NewStatementImportService(statement.NewOFXParser(), bankingScope, log)
	statementQueryService := bankingapp.NewStatementQueryService(bankStatementRepo, bankTransactionRepo)
	reconciliationService := bankingapp.NewReconciliationService(bankTransactionRepo, titleRepo, allocatorService, bankingScope, log)

	// Initialize handlers
	titleHandler := handler.NewTitleHandler(titleService, allocatorService)
	gatewayWebhookHandler := handler.NewGatewayWebhookHandler(titleService)
	commissionHandler := handler.NewCommissionHandler(commissionService, payoutService)
	bankingHandler := handler.NewBankingHandler(statementImportService, statementQueryService, reconciliationService)
	systemHandler := handler.NewSystemHandler()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	// 7. RateLimit - Apply rate limiting (if enabled)
	// 8. Tenant - Resolve the tenant for API routes
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Tenant resolution for API routes
	tenantConfig := middleware.DefaultTenantConfig()
	tenantConfig.Logger = log
	engine.Use(middleware.TenantMiddlewareWithConfig(tenantConfig))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Ledger domain (titles, movements, payment allocation)
	ledgerRoutes := router.NewDomainGroup("ledger", "/ledger")
	ledgerRoutes.POST("/titles", titleHandler.Create)
	ledgerRoutes.GET("/titles", titleHandler.List)
	ledgerRoutes.GET("/titles/:id", titleHandler.GetByID)
	ledgerRoutes.GET("/titles/:id/movements", titleHandler.ListMovements)
	ledgerRoutes.POST("/titles/:id/payments", titleHandler.AllocatePayment)
	ledgerRoutes.POST("/sweep-overdue", titleHandler.SweepOverdue)

	// Payment gateway webhook. Gateways authenticate with the tenant header;
	// the delivery id makes retries idempotent.
	ledgerRoutes.POST("/gateway/payments", gatewayWebhookHandler.HandlePaymentNotification)

	// Commission domain (rules, records, payouts)
	commissionRoutes := router.NewDomainGroup("commission", "/commission")
	commissionRoutes.POST("/rules", commissionHandler.CreateRule)
	commissionRoutes.GET("/rules", commissionHandler.ListRules)
	commissionRoutes.POST("/rules/:id/deactivate", commissionHandler.DeactivateRule)
	commissionRoutes.POST("/calculate", commissionHandler.Calculate)
	commissionRoutes.POST("/records", commissionHandler.RegisterRecord)
	commissionRoutes.GET("/records", commissionHandler.ListRecords)
	commissionRoutes.POST("/records/:id/approve", commissionHandler.ApproveRecord)
	commissionRoutes.POST("/records/:id/cancel", commissionHandler.CancelRecord)
	commissionRoutes.POST("/payouts", commissionHandler.CreatePayout)
	commissionRoutes.GET("/payouts", commissionHandler.ListPayouts)
	commissionRoutes.GET("/payouts/:id", commissionHandler.GetPayout)

	// Banking domain (statement import, reconciliation)
	bankingRoutes := router.NewDomainGroup("banking", "/banking")
	bankingRoutes.POST("/accounts/:accountId/statements", bankingHandler.ImportStatement)
	bankingRoutes.GET("/accounts/:accountId/statements", bankingHandler.ListStatements)
	bankingRoutes.GET("/accounts/:accountId/transactions/pending", bankingHandler.ListPendingTransactions)
	bankingRoutes.GET("/accounts/:accountId/suggestions", bankingHandler.SuggestForAccount)
	bankingRoutes.GET("/statements/:id", bankingHandler.GetStatement)
	bankingRoutes.GET("/statements/:id/transactions", bankingHandler.ListStatementTransactions)
	bankingRoutes.GET("/statements/:id/suggestions", bankingHandler.SuggestForStatement)
	bankingRoutes.POST("/transactions/:id/confirm", bankingHandler.ConfirmMatch)
	bankingRoutes.POST("/transactions/:id/ignore", bankingHandler.IgnoreTransaction)

	// System domain (health, info)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(ledgerRoutes).
		Register(commissionRoutes).
		Register(bankingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Background overdue sweep
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	if cfg.Ledger.SweepEnabled {
		go runOverdueSweep(sweepCtx, titleService, cfg.Ledger.SweepInterval, log)
		log.Info("Overdue sweep enabled", zap.Duration("interval", cfg.Ledger.SweepInterval))
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// runOverdueSweep periodically flips unpaid titles past their due date to
// OVERDUE, across all tenants
func runOverdueSweep(ctx context.Context, titleService *ledgerapp.TitleService, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			swept, err := titleService.SweepAllOverdue(ctx, time.Now())
			if err != nil {
				log.Error("Overdue sweep failed", zap.Error(err))
				continue
			}
			if swept > 0 {
				log.Info("Overdue sweep completed", zap.Int("titles_marked", swept))
			}
		}
	}
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
