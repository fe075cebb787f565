package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	appviatico "github.com/viaticos/backend/internal/application/viatico"
	"github.com/viaticos/backend/internal/domain/identity"
	"github.com/viaticos/backend/internal/infrastructure/cache"
	"github.com/viaticos/backend/internal/infrastructure/config"
	"github.com/viaticos/backend/internal/infrastructure/lock"
	"github.com/viaticos/backend/internal/infrastructure/logger"
	"github.com/viaticos/backend/internal/infrastructure/persistence"
	"github.com/viaticos/backend/internal/infrastructure/telemetry"
	"github.com/viaticos/backend/internal/interfaces/http/handler"
	"github.com/viaticos/backend/internal/interfaces/http/middleware"
	"github.com/viaticos/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

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
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting viaticos backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Tracing must be registered before the database so otelgorm picks up
	// the global provider
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Error closing Redis", zap.Error(err))
			}
		}()
	}

	settings := appviatico.Settings{
		DefaultDailyAmount:   cfg.Viatico.DefaultDailyAmount,
		DefaultArea:          cfg.Viatico.DefaultArea,
		RateCacheTTL:         cfg.Viatico.RateCacheTTL,
		RequestNumberLockTTL: cfg.Viatico.RequestNumberLockTTL,
		LockWaitTimeout:      cfg.Viatico.LockWaitTimeout,
	}

	// Initialize repositories and services
	services := appviatico.NewServices(appviatico.Dependencies{
		Scope:       persistence.NewGormTransactionScope(db.DB),
		Requests:    persistence.NewGormRequestRepository(db.DB),
		Rates:       persistence.NewGormRateRepository(db.DB),
		Ledger:      persistence.NewGormLedgerRepository(db.DB),
		Adjustments: persistence.NewGormAdjustmentRepository(db.DB),
		Workers:     persistence.NewGormWorkerRepository(db.DB),
		Areas:       persistence.NewGormAreaRepository(db.DB),
		Users:       persistence.NewGormUserRepository(db.DB),
		Audit:       persistence.NewGormAuditLogRepository(db.DB),
		Cache:       cache.NewRateCache(redisClient, settings.RateCacheTTL),
		Locker:      lock.New(redisClient),
		Settings:    settings,
		Logger:      log,
	})

	if cfg.App.BootstrapAdminEmail != "" {
		admin, err := services.Users.EnsureUser(ctx, appviatico.CreateUserInput{
			Name:  cfg.App.BootstrapAdminName,
			Email: cfg.App.BootstrapAdminEmail,
			Role:  identity.RoleAdmin,
		})
		if err != nil {
			log.Fatal("Failed to bootstrap administrator", zap.Error(err))
		}
		log.Info("Bootstrap administrator ready", zap.String("user_id", admin.ID.String()))
	}

	// Set Gin mode based on environment
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. Recovery - Catch panics
	// 2. RequestID - Generate/propagate request ID
	// 3. Logger - Log requests
	// 4. Tracing - Server span plus request/actor attributes
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tp.IsEnabled(),
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.Secure(middleware.DefaultSecurityConfig()))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORS(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	router.NewRouter(engine).Register(router.Handlers{
		System:     handler.NewSystemHandler(version, healthChecks(db, redisClient)),
		Rates:      handler.NewRateHandler(services.Rates, services.Adjustments),
		Requests:   handler.NewRequestHandler(services.Requests, services.Workflow),
		Renditions: handler.NewRenditionHandler(services.Renditions),
		Workforce:  handler.NewWorkforceHandler(services.Workers, services.Users),
	}.Groups()...).Setup()

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to flush traces", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthChecks returns the dependency checks reported by /health
func healthChecks(db *persistence.Database, redisClient *redis.Client) map[string]handler.HealthCheck {
	checks := map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}
