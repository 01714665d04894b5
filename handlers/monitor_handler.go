package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms8-gateway-service/internal/scheduler"
	"github.com/onurcolak/sms8-gateway-service/pkg/response"
	"github.com/onurcolak/sms8-gateway-service/pkg/validator"
)

type MonitorHandler struct {
	monitor *scheduler.DeviceMonitor
	ctx     context.Context
}

type StartMonitorRequest struct {
	IntervalSeconds *int `json:"intervalSeconds,omitempty" validate:"omitempty,min=5"`
	AlertThreshold  *int `json:"alertThreshold,omitempty" validate:"omitempty,min=0"`
}

func NewMonitorHandler(monitor *scheduler.DeviceMonitor, ctx context.Context) *MonitorHandler {
	return &MonitorHandler{
		monitor: monitor,
		ctx:     ctx,
	}
}

// StartMonitor godoc
// @Summary Start the device monitor
// @Description Starts periodic polling of the device list with optional parameters
// @Tags monitor
// @Accept json
// @Produce json
// @Param x-auth-key header string true "API key for monitor"
// @Param request body StartMonitorRequest false "Monitor parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/monitor/start [post]
func (h *MonitorHandler) StartMonitor(c echo.Context) error {
	if h.monitor.IsRunning() {
		return response.OkWithMessage(c, "Device monitor is already running", h.monitor.GetStatus())
	}

	var req StartMonitorRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	intervalSeconds := 0
	if req.IntervalSeconds != nil {
		intervalSeconds = *req.IntervalSeconds
	}

	// The monitor outlives the request, so it runs on the server's context.
	if err := h.monitor.StartWithParams(h.ctx, intervalSeconds, req.AlertThreshold); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Device monitor started successfully", h.monitor.GetStatus())
}

// StopMonitor godoc
// @Summary Stop the device monitor
// @Tags monitor
// @Produce json
// @Param x-auth-key header string true "API key for monitor"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/monitor/stop [post]
func (h *MonitorHandler) StopMonitor(c echo.Context) error {
	if !h.monitor.IsRunning() {
		return response.OkWithMessage(c, "Device monitor is already stopped", h.monitor.GetStatus())
	}

	if err := h.monitor.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Device monitor stopped successfully", h.monitor.GetStatus())
}

// GetMonitorStatus godoc
// @Summary Get device monitor status
// @Tags monitor
// @Produce json
// @Param x-auth-key header string true "API key for monitor"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/monitor/status [get]
func (h *MonitorHandler) GetMonitorStatus(c echo.Context) error {
	return response.Ok(c, h.monitor.GetStatus())
}
