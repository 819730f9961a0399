package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"current-account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumns = `id, account_id, type, amount, transaction_date, created_at, payment_type_id`

// TransactionRepo implements ports.LedgerRepository on the append-only
// transactions table.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Append inserts a transaction. Rows are never updated afterwards.
func (r *TransactionRepo) Append(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := on(r.pool, tx).Exec(ctx, query,
		t.ID, t.AccountID, t.Type, t.Amount,
		t.TransactionDate, t.CreatedAt, t.PaymentTypeID,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by UUID.
func (r *TransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t := &domain.Transaction{}
	err := scanTransaction(r.pool.QueryRow(ctx, query, id), t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction by id: %w", err)
	}
	return t, nil
}

// ReadAll returns the account's whole history.
func (r *TransactionRepo) ReadAll(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) ([]domain.Transaction, error) {
	return r.read(ctx, tx, accountID, nil, nil)
}

// ReadFrom returns transactions strictly after the given key.
func (r *TransactionRepo) ReadFrom(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, after *domain.OrderKey) ([]domain.Transaction, error) {
	return r.read(ctx, tx, accountID, after, nil)
}

// ReadTill returns transactions created at or before till.
func (r *TransactionRepo) ReadTill(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, till time.Time) ([]domain.Transaction, error) {
	return r.read(ctx, tx, accountID, nil, &till)
}

// ReadFromTill returns transactions after the key and at or before till.
func (r *TransactionRepo) ReadFromTill(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, after *domain.OrderKey, till time.Time) ([]domain.Transaction, error) {
	return r.read(ctx, tx, accountID, after, &till)
}

// LastKey returns the (created_at, id) of the account's latest row.
func (r *TransactionRepo) LastKey(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.OrderKey, error) {
	query := `SELECT created_at, id FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	key := &domain.OrderKey{}
	err := on(r.pool, tx).QueryRow(ctx, query, accountID).Scan(&key.CreatedAt, &key.TxnID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("read last ledger key: %w", err)
	}
	return key, nil
}

func (r *TransactionRepo) read(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, after *domain.OrderKey, till *time.Time) ([]domain.Transaction, error) {
	conditions := []string{"account_id = $1"}
	args := []any{accountID}
	argIdx := 2

	if after != nil {
		conditions = append(conditions, fmt.Sprintf("(created_at, id) > ($%d, $%d)", argIdx, argIdx+1))
		args = append(args, after.CreatedAt, after.TxnID)
		argIdx += 2
	}
	if till != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *till)
	}

	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at, id`,
		transactionColumns, strings.Join(conditions, " AND "))

	rows, err := on(r.pool, tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := scanTransaction(rows, &t); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(row pgx.Row, t *domain.Transaction) error {
	return row.Scan(
		&t.ID, &t.AccountID, &t.Type, &t.Amount,
		&t.TransactionDate, &t.CreatedAt, &t.PaymentTypeID,
	)
}
