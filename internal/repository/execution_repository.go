package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onurcolak/sms8-gateway-service/internal/domain"
)

// ExecutionRepository stores the audit trail of node executions.
type ExecutionRepository struct {
	db *sqlx.DB
}

func NewExecutionRepository(db *sqlx.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Record inserts one row per output record produced by a batch item.
func (r *ExecutionRepository) Record(
	ctx context.Context,
	executionID string,
	itemIndex int,
	records []domain.Record,
) error {
	query := `
		INSERT INTO executions (execution_id, item_index, operation, success, message_id, attempts, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	for _, rec := range records {
		var errMsg *string
		if rec.Error != "" {
			e := rec.Error
			errMsg = &e
		}

		if _, err := r.db.ExecContext(
			ctx,
			query,
			executionID,
			itemIndex,
			string(rec.Operation),
			rec.Success,
			rec.MessageID,
			rec.Attempts,
			errMsg,
		); err != nil {
			return fmt.Errorf("failed to record execution: %w", err)
		}
	}

	return nil
}

func (r *ExecutionRepository) List(ctx context.Context, page, pageSize int) ([]domain.Execution, int64, error) {
	offset := (page - 1) * pageSize

	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, "SELECT COUNT(*) FROM executions"); err != nil {
		return nil, 0, fmt.Errorf("failed to count executions: %w", err)
	}

	query := `
		SELECT id, execution_id, item_index, operation, success, message_id, attempts, error, created_at
		FROM executions
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`

	var executions []domain.Execution
	if err := r.db.SelectContext(ctx, &executions, query, pageSize, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to get executions: %w", err)
	}

	return executions, totalCount, nil
}

func (r *ExecutionRepository) GetByExecutionID(ctx context.Context, executionID string) ([]domain.Execution, error) {
	query := `
		SELECT id, execution_id, item_index, operation, success, message_id, attempts, error, created_at
		FROM executions
		WHERE execution_id = ?
		ORDER BY item_index ASC, id ASC
	`

	var executions []domain.Execution
	if err := r.db.SelectContext(ctx, &executions, query, executionID); err != nil {
		return nil, fmt.Errorf("failed to get execution %s: %w", executionID, err)
	}

	return executions, nil
}
