package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

type redisPinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health checks.
type HealthHandler struct {
	db           pinger
	redis        redisPinger
	monitor      interface{ IsRunning() bool }
	checkTimeout time.Duration
}

// NewHealthHandler takes nil for components that are disabled.
func NewHealthHandler(db pinger, redisClient redisPinger, monitor interface{ IsRunning() bool }) *HealthHandler {
	return &HealthHandler{
		db:           db,
		redis:        redisClient,
		monitor:      monitor,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and basic component statuses.
// @Summary Health check
// @Description Returns overall status with execution log, Redis and device monitor status
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "disabled"
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			dbStatus = "down"
			overallStatus = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "down"
			overallStatus = "degraded"
		} else {
			redisStatus = "up"
		}
	}

	monitorStatus := "stopped"
	if h.monitor != nil && h.monitor.IsRunning() {
		monitorStatus = "running"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"database": map[string]any{
				"status": dbStatus,
			},
			"redis": map[string]any{
				"status": redisStatus,
			},
			"deviceMonitor": map[string]any{
				"status": monitorStatus,
			},
		},
	})
}
