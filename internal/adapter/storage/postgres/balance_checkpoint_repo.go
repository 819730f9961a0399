package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"current-account-ledger/internal/core/domain"
	"current-account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BalanceCheckpointRepo implements ports.BalanceCheckpointRepository.
type BalanceCheckpointRepo struct {
	pool Pool
}

// NewBalanceCheckpointRepo creates a new BalanceCheckpointRepo.
func NewBalanceCheckpointRepo(pool Pool) *BalanceCheckpointRepo {
	return &BalanceCheckpointRepo{pool: pool}
}

// Get returns nil, nil when the account has no checkpoint.
func (r *BalanceCheckpointRepo) Get(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.BalanceCheckpoint, error) {
	query := `SELECT account_id, account_balance, hold_amount, calculated_till,
		calculated_till_txn_id, version, updated_at
		FROM balance_checkpoints WHERE account_id = $1`

	cp := &domain.BalanceCheckpoint{}
	err := on(r.pool, tx).QueryRow(ctx, query, accountID).Scan(
		&cp.AccountID, &cp.AccountBalance, &cp.HoldAmount, &cp.CalculatedTill,
		&cp.CalculatedTillTxnID, &cp.Version, &cp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get balance checkpoint: %w", err)
	}
	return cp, nil
}

// Save writes cp under optimistic locking. Version 0 inserts; any other
// version updates only the row still carrying that version, and only if the
// high-water mark does not move backward. On success cp.Version is bumped.
func (r *BalanceCheckpointRepo) Save(ctx context.Context, tx pgx.Tx, cp *domain.BalanceCheckpoint) error {
	now := time.Now().UTC()
	q := on(r.pool, tx)

	var (
		affected int64
		err      error
	)
	if cp.Version == 0 {
		query := `INSERT INTO balance_checkpoints (account_id, account_balance, hold_amount,
			calculated_till, calculated_till_txn_id, version, updated_at)
			VALUES ($1, $2, $3, $4, $5, 1, $6)
			ON CONFLICT (account_id) DO NOTHING`
		tag, execErr := q.Exec(ctx, query,
			cp.AccountID, cp.AccountBalance, cp.HoldAmount,
			cp.CalculatedTill, cp.CalculatedTillTxnID, now,
		)
		affected, err = tag.RowsAffected(), execErr
	} else {
		query := `UPDATE balance_checkpoints
			SET account_balance = $2, hold_amount = $3, calculated_till = $4,
				calculated_till_txn_id = $5, version = version + 1, updated_at = $6
			WHERE account_id = $1 AND version = $7
			  AND (calculated_till IS NULL OR (calculated_till, calculated_till_txn_id) <= ($4, $5))`
		tag, execErr := q.Exec(ctx, query,
			cp.AccountID, cp.AccountBalance, cp.HoldAmount,
			cp.CalculatedTill, cp.CalculatedTillTxnID, now, cp.Version,
		)
		affected, err = tag.RowsAffected(), execErr
	}
	if err != nil {
		return fmt.Errorf("save balance checkpoint: %w", err)
	}
	if affected == 0 {
		return apperror.ErrCheckpointConflict(
			fmt.Errorf("balance checkpoint %s: version %d is stale", cp.AccountID, cp.Version))
	}

	cp.Version++
	cp.UpdatedAt = now
	return nil
}

// FindStaleAccounts pages through accounts that have transactions at or
// before till beyond their checkpoint. STRICT accounts with a checkpoint are
// current by construction and skipped.
func (r *BalanceCheckpointRepo) FindStaleAccounts(ctx context.Context, till time.Time, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	query := `SELECT a.id
		FROM accounts a
		JOIN products p ON p.id = a.product_id
		LEFT JOIN balance_checkpoints c ON c.account_id = a.id
		WHERE a.id > $2
		  AND (c.account_id IS NULL OR p.balance_calculation_type <> 'STRICT')
		  AND EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.account_id = a.id AND t.created_at <= $1
			  AND (c.calculated_till IS NULL
				OR (t.created_at, t.id) > (c.calculated_till, c.calculated_till_txn_id))
		  )
		ORDER BY a.id
		LIMIT $3`

	return collectIDs(ctx, r.pool, "find stale accounts", query, till, afterID, limit)
}

// collectIDs runs a query returning a single uuid column.
func collectIDs(ctx context.Context, pool Pool, op, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate: %w", op, err)
	}
	return ids, nil
}
