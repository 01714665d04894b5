package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms8-gateway-service/internal/domain"
	"github.com/onurcolak/sms8-gateway-service/pkg/response"
)

type executionStore interface {
	List(ctx context.Context, page, pageSize int) ([]domain.Execution, int64, error)
	GetByExecutionID(ctx context.Context, executionID string) ([]domain.Execution, error)
}

type ExecutionHandler struct {
	store executionStore
}

func NewExecutionHandler(store executionStore) *ExecutionHandler {
	return &ExecutionHandler{store: store}
}

// ListExecutions godoc
// @Summary List audited node executions
// @Tags executions
// @Produce json
// @Param x-auth-key header string true "API key for node endpoints"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/executions [get]
func (h *ExecutionHandler) ListExecutions(c echo.Context) error {
	if h.store == nil {
		return response.ServiceUnavailable(c, "execution log is not enabled")
	}

	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	executions, totalCount, err := h.store.List(c.Request().Context(), page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, executions, page, pageSize, totalCount)
}

// GetExecution godoc
// @Summary Get the audited records of one execution
// @Tags executions
// @Produce json
// @Param x-auth-key header string true "API key for node endpoints"
// @Param id path string true "Execution ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 503 {object} response.ErrorResponse
// @Router /api/v1/executions/{id} [get]
func (h *ExecutionHandler) GetExecution(c echo.Context) error {
	if h.store == nil {
		return response.ServiceUnavailable(c, "execution log is not enabled")
	}

	id := c.Param("id")
	executions, err := h.store.GetByExecutionID(c.Request().Context(), id)
	if err != nil {
		return response.InternalServerError(c, err)
	}
	if len(executions) == 0 {
		return response.NotFound(c, fmt.Sprintf("execution %s not found", id))
	}

	return response.Ok(c, executions)
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	pageStr := c.QueryParam("page")
	pageSizeStr := c.QueryParam("pageSize")

	// Page
	page := defaultPage
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	// Page size
	pageSize := defaultPageSize
	if pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}

		pageSize = ps
	}

	return page, pageSize, nil
}
