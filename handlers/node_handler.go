package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/internal/node"
	"github.com/onurcolak/sms8-gateway-service/pkg/response"
	"github.com/onurcolak/sms8-gateway-service/pkg/validator"
)

const (
	APIKeyOverrideHeader  = "x-sms8-api-key"
	BaseURLOverrideHeader = "x-sms8-base-url"
)

type nodeExecutor interface {
	Execute(
		ctx context.Context,
		op domain.Operation,
		creds domain.Credentials,
		items []domain.Item,
		mode domain.ProcessingMode,
	) (*node.Result, error)
}

type sentMessageReader interface {
	GetCachedMessages(ctx context.Context) (map[string]*domain.SentMessageCache, error)
}

type NodeHandler struct {
	executor    nodeExecutor
	cache       sentMessageReader
	credentials domain.Credentials
}

func NewNodeHandler(executor nodeExecutor, cache sentMessageReader, creds domain.Credentials) *NodeHandler {
	return &NodeHandler{
		executor:    executor,
		cache:       cache,
		credentials: creds,
	}
}

type ExecuteNodeRequest struct {
	Operation string        `json:"operation" validate:"required,oneof=sendSms getMessages getDevices"`
	Mode      string        `json:"mode" validate:"omitempty,oneof=failFast collectErrors"`
	Items     []domain.Item `json:"items" validate:"required,min=1"`
}

type SendSMSRequest struct {
	PhoneNumber   string `json:"phoneNumber" validate:"required,phone"`
	Message       string `json:"message" validate:"required"`
	DeviceID      string `json:"deviceId" validate:"required"`
	SimSlot       int    `json:"simSlot" validate:"simslot"`
	Prioritize    bool   `json:"prioritize"`
	RetryAttempts *int   `json:"retryAttempts,omitempty" validate:"omitempty,min=0,max=5"`
}

// Execute godoc
// @Summary Execute the SMS8 node over a batch of items
// @Description Runs sendSms, getMessages or getDevices once per item, in order
// @Tags node
// @Accept json
// @Produce json
// @Param x-auth-key header string true "API key for node endpoints"
// @Param request body ExecuteNodeRequest true "Operation, processing mode and items"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/node/execute [post]
func (h *NodeHandler) Execute(c echo.Context) error {
	var req ExecuteNodeRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	return h.run(c, domain.Operation(req.Operation), req.Items, domain.ProcessingMode(req.Mode))
}

// SendSMS godoc
// @Summary Send one SMS
// @Description Sends a text message through a connected Android device, retrying with linear backoff
// @Tags sms
// @Accept json
// @Produce json
// @Param x-auth-key header string true "API key for node endpoints"
// @Param message body SendSMSRequest true "Message to send"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/sms [post]
func (h *NodeHandler) SendSMS(c echo.Context) error {
	var req SendSMSRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	item := domain.Item{
		PhoneNumber:   req.PhoneNumber,
		Message:       req.Message,
		DeviceID:      req.DeviceID,
		SimSlot:       strconv.Itoa(req.SimSlot),
		Prioritize:    req.Prioritize,
		RetryAttempts: req.RetryAttempts,
	}

	return h.run(c, domain.OperationSendSMS, []domain.Item{item}, domain.ModeFailFast)
}

// ListMessages godoc
// @Summary List messages
// @Description Returns message history, optionally filtered by status
// @Tags sms
// @Produce json
// @Param x-auth-key header string true "API key for node endpoints"
// @Param status query string false "all, Pending, Sent, Delivered or Failed (default: all)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/sms/messages [get]
func (h *NodeHandler) ListMessages(c echo.Context) error {
	item := domain.Item{MessageStatus: c.QueryParam("status")}
	return h.run(c, domain.OperationGetMessages, []domain.Item{item}, domain.ModeFailFast)
}

// ListDevices godoc
// @Summary List devices
// @Description Returns the Android devices connected to the account
// @Tags sms
// @Produce json
// @Param x-auth-key header string true "API key for node endpoints"
// @Success 200 {object} response.SuccessResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/sms/devices [get]
func (h *NodeHandler) ListDevices(c echo.Context) error {
	return h.run(c, domain.OperationGetDevices, []domain.Item{{}}, domain.ModeFailFast)
}

// GetCachedMessages godoc
// @Summary Get recently sent messages from Redis
// @Tags sms
// @Produce json
// @Param x-auth-key header string true "API key for node endpoints"
// @Success 200 {object} response.SuccessResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/sms/cached [get]
func (h *NodeHandler) GetCachedMessages(c echo.Context) error {
	cached, err := h.cache.GetCachedMessages(c.Request().Context())
	if errors.Is(err, domain.ErrCacheDisabled) {
		return response.ServiceUnavailable(c, err.Error())
	}
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, cached)
}

func (h *NodeHandler) run(
	c echo.Context,
	op domain.Operation,
	items []domain.Item,
	mode domain.ProcessingMode,
) error {
	creds := h.resolveCredentials(c)
	if creds.APIKey == "" {
		return response.BadRequestWithMessage(c, "SMS8 API key is not configured")
	}

	result, err := h.executor.Execute(c.Request().Context(), op, creds, items, mode)
	if err != nil {
		return writeNodeError(c, err)
	}

	return response.Ok(c, result)
}

// resolveCredentials lets a caller override the configured SMS8 account per request.
func (h *NodeHandler) resolveCredentials(c echo.Context) domain.Credentials {
	creds := h.credentials

	if key := strings.TrimSpace(c.Request().Header.Get(APIKeyOverrideHeader)); key != "" {
		creds.APIKey = key
	}
	if base := strings.TrimSpace(c.Request().Header.Get(BaseURLOverrideHeader)); base != "" {
		creds.BaseURL = base
	}

	return creds
}

func writeNodeError(c echo.Context, err error) error {
	if domain.IsValidation(err) {
		return response.UnprocessableEntity(c, err)
	}

	var te *domain.TransportError
	if _, ok := domain.AsUpstream(err); ok || errors.As(err, &te) {
		return response.BadGateway(c, err)
	}

	return c.JSON(http.StatusInternalServerError, response.ErrorResponse{
		Success: false,
		Error:   fmt.Sprintf("node execution failed: %v", err),
	})
}
