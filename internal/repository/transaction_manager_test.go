package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Both handle types must satisfy the executor seam; GetExecutor hands out
// either depending on whether a transaction is active.
var (
	_ DBTX = (*sqlx.DB)(nil)
	_ DBTX = (*sqlx.Tx)(nil)
)

func setupTxTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "sqlmock"), mock
}

func TestGetExecutor_ReturnsTransactionWhenActive(t *testing.T) {
	db, mock := setupTxTestDB(t)
	mock.ExpectBegin()
	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	txCtx := context.WithValue(context.Background(), TransactionContextKey, tx)
	assert.Equal(t, DBTX(tx), GetExecutor(txCtx, db))
	assert.Equal(t, DBTX(db), GetExecutor(context.Background(), db))
}

func TestWithTransaction_CommitsOnSuccess(t *testing.T) {
	db, mock := setupTxTestDB(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM quiz_hints`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tm := NewTransactionManagerAdapter(db)
	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		executor := GetExecutor(ctx, db)
		_, execErr := executor.ExecContext(ctx, "DELETE FROM quiz_hints WHERE quiz_id = $1", "quiz_x")
		return execErr
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTransaction_RollsBackOnError(t *testing.T) {
	db, mock := setupTxTestDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tm := NewTransactionManagerAdapter(db)
	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
