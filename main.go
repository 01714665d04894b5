package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/onurcolak/sms8-gateway-service/environments"
	"github.com/onurcolak/sms8-gateway-service/handlers"
	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/internal/middlewares"
	"github.com/onurcolak/sms8-gateway-service/internal/node"
	"github.com/onurcolak/sms8-gateway-service/internal/repository"
	"github.com/onurcolak/sms8-gateway-service/internal/scheduler"
	"github.com/onurcolak/sms8-gateway-service/internal/service"
	"github.com/onurcolak/sms8-gateway-service/pkg/database"
	"github.com/onurcolak/sms8-gateway-service/pkg/gateway"
	"github.com/onurcolak/sms8-gateway-service/pkg/logger"
	"github.com/onurcolak/sms8-gateway-service/pkg/redis"
	"github.com/onurcolak/sms8-gateway-service/pkg/validator"
	"github.com/onurcolak/sms8-gateway-service/routes"

	_ "github.com/onurcolak/sms8-gateway-service/docs" // swagger docs
)

// @title SMS8 Gateway Service API
// @version 1.0
// @description Sends SMS and reads message history and devices through the SMS8.io Android gateway
// @termsOfService http://swagger.io/terms/

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	// Load config
	cfg := environments.Load()

	logger.Init(cfg.Log.Level, cfg.Log.Format)
	defer logger.Sync()

	// Hard-fail if required secrets are missing
	for _, key := range cfg.MissingSecrets() {
		logger.Fatalf("%s is required but not set", key)
	}

	logger.Infof("Starting SMS8 Gateway Service...")

	if cfg.SMS8.APIKey == "" {
		logger.Warnf("SMS8_API_KEY is not set; requests must send the %s header", handlers.APIKeyOverrideHeader)
	}

	// Init DB (execution audit log)
	var db *sqlx.DB
	if cfg.Database.Enabled {
		var err error
		db, err = database.NewMySQLDB(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}

		if err := database.RunMigrations(db); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
	} else {
		logger.Infof("Execution log disabled (DB_ENABLED=false)")
	}

	// Init redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		var err error
		redisClient, err = redis.NewRedisClient(cfg.Redis)
		if err != nil {
			logger.Warnf("Redis not available, send cache disabled: %v", err)
			redisClient = nil
		}
	}

	// Initialize gateway client
	gatewayClient := gateway.NewClient(cfg.SMS8)
	logger.Infof("SMS8 gateway configured: %s", gatewayClient.BaseURL(domain.Credentials{}))

	// Interfaces stay nil when a component is disabled.
	gatewayService := service.NewGatewayService(gatewayClient, sendCache(redisClient), cfg.SMS8)

	var executionRepo *repository.ExecutionRepository
	var recorder interface {
		Record(ctx context.Context, executionID string, itemIndex int, records []domain.Record) error
	}
	if db != nil {
		executionRepo = repository.NewExecutionRepository(db)
		recorder = executionRepo
	}

	executor := node.NewExecutor(gatewayService, recorder)

	credentials := domain.Credentials{
		APIKey:  cfg.SMS8.APIKey,
		BaseURL: cfg.SMS8.BaseURL,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize device monitor
	monitor := scheduler.NewDeviceMonitor(
		gatewayService,
		credentials,
		cfg.Monitor.Interval,
		cfg.Monitor.AlertWebhookURL,
		cfg.Monitor.AlertThreshold,
	)

	// Initialize handlers
	var dbPing interface {
		PingContext(ctx context.Context) error
	}
	var redisPing interface {
		Ping(ctx context.Context) error
	}
	if db != nil {
		dbPing = db
	}
	if redisClient != nil {
		redisPing = redisClient
	}

	executionHandler := handlers.NewExecutionHandler(nil)
	if executionRepo != nil {
		executionHandler = handlers.NewExecutionHandler(executionRepo)
	}

	healthHandler := handlers.NewHealthHandler(dbPing, redisPing, monitor)
	nodeHandler := handlers.NewNodeHandler(executor, gatewayService, credentials)
	monitorHandler := handlers.NewMonitorHandler(monitor, ctx)

	// Auto-start device monitor
	if cfg.Monitor.AutoStart && cfg.SMS8.APIKey == "" {
		logger.Warnf("Device monitor not auto-started: it polls with SMS8_API_KEY, which is not set")
	} else if cfg.Monitor.AutoStart {
		logger.Infof("Auto-starting device monitor...")
		if err := monitor.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start device monitor: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middlewares.APIKeyHeader,
			handlers.APIKeyOverrideHeader,
			handlers.BaseURLOverrideHeader,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, nodeHandler, executionHandler, monitorHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Cancel context to signal all goroutines to stop
	cancel()

	// Stop device monitor first (with timeout)
	if monitor.IsRunning() {
		logger.Infof("Stopping device monitor...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- monitor.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping device monitor: %v", err)
			} else {
				logger.Infof("Device monitor stopped successfully")
			}
		case <-stopCtx.Done():
			logger.Warnf("Device monitor stop timeout, forcing shutdown")
		}
	}

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Close database connection
	if db != nil {
		logger.Infof("Closing database connection...")
		if err := db.Close(); err != nil {
			logger.Errorf("Error closing database: %v", err)
		}
	}

	// Close Redis connection
	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}

func sendCache(client *redis.Client) interface {
	CacheSentMessage(ctx context.Context, entry domain.SentMessageCache) error
	GetAllCachedMessages(ctx context.Context) (map[string]*domain.SentMessageCache, error)
} {
	if client == nil {
		return nil
	}
	return client
}
