package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/onurcolak/sms8-gateway-service/environments"
	"github.com/onurcolak/sms8-gateway-service/handlers"
	"github.com/onurcolak/sms8-gateway-service/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	nodeHandler *handlers.NodeHandler,
	executionHandler *handlers.ExecutionHandler,
	monitorHandler *handlers.MonitorHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 base group
	v1 := e.Group("/api/v1")

	// Node, SMS and execution routes share the node API key
	nodeAuth := middlewares.APIKeyAuth("node", cfg.Auth.NodeAPIKey)

	v1.POST("/node/execute", nodeHandler.Execute, nodeAuth)

	sms := v1.Group("/sms", nodeAuth)
	sms.POST("", nodeHandler.SendSMS)
	sms.GET("/messages", nodeHandler.ListMessages)
	sms.GET("/devices", nodeHandler.ListDevices)
	sms.GET("/cached", nodeHandler.GetCachedMessages)

	executions := v1.Group("/executions", nodeAuth)
	executions.GET("", executionHandler.ListExecutions)
	executions.GET("/:id", executionHandler.GetExecution)

	// Device monitor routes with their own API key
	monitor := v1.Group("/monitor", middlewares.APIKeyAuth("monitor", cfg.Auth.MonitorAPIKey))

	monitor.POST("/start", monitorHandler.StartMonitor)
	monitor.POST("/stop", monitorHandler.StopMonitor)
	monitor.GET("/status", monitorHandler.GetMonitorStatus)
}
