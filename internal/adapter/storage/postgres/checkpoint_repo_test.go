package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"current-account-ledger/internal/core/domain"
	"current-account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBalanceCheckpoint(version int64) *domain.BalanceCheckpoint {
	till := time.Now().UTC().Truncate(time.Microsecond)
	txnID := uuid.New()
	return &domain.BalanceCheckpoint{
		AccountID:           uuid.New(),
		AccountBalance:      decimal.RequireFromString("70"),
		HoldAmount:          decimal.RequireFromString("10"),
		CalculatedTill:      &till,
		CalculatedTillTxnID: &txnID,
		Version:             version,
	}
}

func TestBalanceCheckpointRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cp := newTestBalanceCheckpoint(3)
	mock.ExpectQuery("SELECT .+ FROM balance_checkpoints WHERE account_id").
		WithArgs(cp.AccountID).
		WillReturnRows(pgxmock.NewRows([]string{
			"account_id", "account_balance", "hold_amount", "calculated_till",
			"calculated_till_txn_id", "version", "updated_at",
		}).AddRow(cp.AccountID, cp.AccountBalance, cp.HoldAmount, cp.CalculatedTill,
			cp.CalculatedTillTxnID, cp.Version, time.Now()))

	result, err := NewBalanceCheckpointRepo(mock).Get(context.Background(), nil, cp.AccountID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(3), result.Version)
	assert.True(t, result.AvailableBalance().Equal(decimal.RequireFromString("60")))
	assert.Equal(t, *cp.CalculatedTillTxnID, *result.CalculatedTillTxnID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceCheckpointRepo_Get_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("FROM balance_checkpoints").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"account_id"}))

	result, err := NewBalanceCheckpointRepo(mock).Get(context.Background(), nil, id)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestBalanceCheckpointRepo_Save_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cp := newTestBalanceCheckpoint(0)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balance_checkpoints .+ ON CONFLICT \\(account_id\\) DO NOTHING").
		WithArgs(cp.AccountID, cp.AccountBalance, cp.HoldAmount,
			cp.CalculatedTill, cp.CalculatedTillTxnID, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, NewBalanceCheckpointRepo(mock).Save(context.Background(), tx, cp))
	assert.Equal(t, int64(1), cp.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceCheckpointRepo_Save_InsertRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cp := newTestBalanceCheckpoint(0)
	mock.ExpectExec("INSERT INTO balance_checkpoints").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err = NewBalanceCheckpointRepo(mock).Save(context.Background(), nil, cp)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrCheckpointConflict(nil)))
	assert.True(t, apperror.IsRetryable(err))
	assert.Equal(t, int64(0), cp.Version, "version is untouched on conflict")
}

func TestBalanceCheckpointRepo_Save_Update(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cp := newTestBalanceCheckpoint(4)
	mock.ExpectExec("UPDATE balance_checkpoints SET .+ WHERE account_id = \\$1 AND version = \\$7").
		WithArgs(cp.AccountID, cp.AccountBalance, cp.HoldAmount,
			cp.CalculatedTill, cp.CalculatedTillTxnID, pgxmock.AnyArg(), int64(4)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewBalanceCheckpointRepo(mock).Save(context.Background(), nil, cp))
	assert.Equal(t, int64(5), cp.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceCheckpointRepo_Save_StaleVersion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cp := newTestBalanceCheckpoint(4)
	mock.ExpectExec("UPDATE balance_checkpoints").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewBalanceCheckpointRepo(mock).Save(context.Background(), nil, cp)
	assert.True(t, errors.Is(err, apperror.ErrCheckpointConflict(nil)))
	assert.Equal(t, int64(4), cp.Version)
}

func TestBalanceCheckpointRepo_Save_ExecError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE balance_checkpoints").WillReturnError(errors.New("deadlock"))

	err = NewBalanceCheckpointRepo(mock).Save(context.Background(), nil, newTestBalanceCheckpoint(2))
	assert.ErrorContains(t, err, "save balance checkpoint")
	assert.False(t, apperror.IsRetryable(err))
}

func TestBalanceCheckpointRepo_FindStaleAccounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	till := time.Now().UTC()
	a, b := uuid.New(), uuid.New()
	mock.ExpectQuery("SELECT a.id FROM accounts a .+ LEFT JOIN balance_checkpoints c .+ ORDER BY a.id LIMIT \\$3").
		WithArgs(till, uuid.Nil, 100).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(a).AddRow(b))

	ids, err := NewBalanceCheckpointRepo(mock).FindStaleAccounts(context.Background(), till, uuid.Nil, 100)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountingCheckpointRepo_GetAndSave(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewAccountingCheckpointRepo(mock)
	accountID := uuid.New()
	txnID := uuid.New()
	postedAt := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM accounting_checkpoints WHERE account_id").
		WithArgs(accountID).
		WillReturnRows(pgxmock.NewRows([]string{
			"account_id", "running_balance", "last_posted_txn_id", "last_posted_at", "version", "updated_at",
		}).AddRow(accountID, decimal.RequireFromString("-20"), &txnID, &postedAt, int64(2), time.Now()))

	cp, err := repo.Get(context.Background(), nil, accountID)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.True(t, cp.RunningBalance.Equal(decimal.RequireFromString("-20")))
	require.NotNil(t, cp.HighWaterMark())
	assert.Equal(t, txnID, cp.HighWaterMark().TxnID)

	cp.RunningBalance = decimal.RequireFromString("-70")
	mock.ExpectExec("UPDATE accounting_checkpoints SET .+ WHERE account_id = \\$1 AND version = \\$6").
		WithArgs(accountID, cp.RunningBalance, cp.LastPostedTxnID, cp.LastPostedAt, pgxmock.AnyArg(), int64(2)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Save(context.Background(), nil, cp))
	assert.Equal(t, int64(3), cp.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountingCheckpointRepo_Save_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cp := domain.NewAccountingCheckpoint(uuid.New())
	mock.ExpectExec("INSERT INTO accounting_checkpoints").
		WithArgs(cp.AccountID, cp.RunningBalance, cp.LastPostedTxnID, cp.LastPostedAt, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, NewAccountingCheckpointRepo(mock).Save(context.Background(), nil, cp))
	assert.Equal(t, int64(1), cp.Version)
}

func TestAccountingCheckpointRepo_Save_Conflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cp := domain.NewAccountingCheckpoint(uuid.New())
	cp.Version = 7
	mock.ExpectExec("UPDATE accounting_checkpoints").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewAccountingCheckpointRepo(mock).Save(context.Background(), nil, cp)
	assert.True(t, errors.Is(err, apperror.ErrCheckpointConflict(nil)))
}

func TestAccountingCheckpointRepo_FindUnpostedAccounts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	till := time.Now().UTC()
	after := uuid.New()
	mock.ExpectQuery("LEFT JOIN accounting_checkpoints c .+ a.status = 'ACTIVE' AND p.accounting_rule = 'CASH_BASED'").
		WithArgs(till, after, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	ids, err := NewAccountingCheckpointRepo(mock).FindUnpostedAccounts(context.Background(), till, after, 10)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
