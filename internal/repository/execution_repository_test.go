package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onurcolak/sms8-gateway-service/internal/domain"
)

func newMockRepo(t *testing.T) (*ExecutionRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewExecutionRepository(sqlx.NewDb(db, "mysql")), mock
}

func TestRecord_InsertsOneRowPerRecord(t *testing.T) {
	repo, mock := newMockRepo(t)

	id := "99"
	records := []domain.Record{
		{Success: true, Operation: domain.OperationSendSMS, MessageID: &id, Attempts: 2},
		{Success: false, Operation: domain.OperationSendSMS, Error: "Invalid number", Attempts: 3},
	}

	insert := regexp.QuoteMeta("INSERT INTO executions")
	mock.ExpectExec(insert).
		WithArgs("exec-1", 4, "sendSms", true, &id, 2, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(insert).
		WithArgs("exec-1", 4, "sendSms", false, nil, 3, "Invalid number").
		WillReturnResult(sqlmock.NewResult(2, 1))

	require.NoError(t, repo.Record(context.Background(), "exec-1", 4, records))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecord_WrapsDatabaseError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO executions")).
		WillReturnError(errors.New("connection refused"))

	err := repo.Record(context.Background(), "exec-1", 0, []domain.Record{{Operation: domain.OperationGetDevices}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record execution")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestList_Paginates(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM executions")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(45))

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "execution_id", "item_index", "operation", "success", "message_id", "attempts", "error", "created_at",
	}).
		AddRow(21, "exec-2", 0, "getDevices", true, nil, 0, nil, now).
		AddRow(20, "exec-1", 1, "sendSms", false, nil, 3, "Invalid number", now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM executions")).
		WithArgs(20, 20).
		WillReturnRows(rows)

	executions, total, err := repo.List(context.Background(), 2, 20)
	require.NoError(t, err)

	assert.Equal(t, int64(45), total)
	require.Len(t, executions, 2)
	assert.Equal(t, "exec-2", executions[0].ExecutionID)
	require.NotNil(t, executions[1].Error)
	assert.Equal(t, "Invalid number", *executions[1].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}
