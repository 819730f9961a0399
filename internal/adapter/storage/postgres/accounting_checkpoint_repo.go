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

// AccountingCheckpointRepo implements ports.AccountingCheckpointRepository.
type AccountingCheckpointRepo struct {
	pool Pool
}

// NewAccountingCheckpointRepo creates a new AccountingCheckpointRepo.
func NewAccountingCheckpointRepo(pool Pool) *AccountingCheckpointRepo {
	return &AccountingCheckpointRepo{pool: pool}
}

func (r *AccountingCheckpointRepo) Get(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.AccountingCheckpoint, error) {
	query := `SELECT account_id, running_balance, last_posted_txn_id, last_posted_at, version, updated_at
		FROM accounting_checkpoints WHERE account_id = $1`

	cp := &domain.AccountingCheckpoint{}
	err := on(r.pool, tx).QueryRow(ctx, query, accountID).Scan(
		&cp.AccountID, &cp.RunningBalance, &cp.LastPostedTxnID,
		&cp.LastPostedAt, &cp.Version, &cp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get accounting checkpoint: %w", err)
	}
	return cp, nil
}

// Save follows the same optimistic protocol as the balance checkpoint.
func (r *AccountingCheckpointRepo) Save(ctx context.Context, tx pgx.Tx, cp *domain.AccountingCheckpoint) error {
	now := time.Now().UTC()
	q := on(r.pool, tx)

	var query string
	args := []any{cp.AccountID, cp.RunningBalance, cp.LastPostedTxnID, cp.LastPostedAt, now}
	if cp.Version == 0 {
		query = `INSERT INTO accounting_checkpoints (account_id, running_balance, last_posted_txn_id,
			last_posted_at, version, updated_at)
			VALUES ($1, $2, $3, $4, 1, $5)
			ON CONFLICT (account_id) DO NOTHING`
	} else {
		query = `UPDATE accounting_checkpoints
			SET running_balance = $2, last_posted_txn_id = $3, last_posted_at = $4,
				version = version + 1, updated_at = $5
			WHERE account_id = $1 AND version = $6`
		args = append(args, cp.Version)
	}

	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save accounting checkpoint: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.ErrCheckpointConflict(
			fmt.Errorf("accounting checkpoint %s: version %d is stale", cp.AccountID, cp.Version))
	}

	cp.Version++
	cp.UpdatedAt = now
	return nil
}

// FindUnpostedAccounts pages through active CASH_BASED accounts holding
// transactions at or before till past their last posted one.
func (r *AccountingCheckpointRepo) FindUnpostedAccounts(ctx context.Context, till time.Time, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	query := `SELECT a.id
		FROM accounts a
		JOIN products p ON p.id = a.product_id
		LEFT JOIN accounting_checkpoints c ON c.account_id = a.id
		WHERE a.id > $2
		  AND a.status = 'ACTIVE'
		  AND p.accounting_rule = 'CASH_BASED'
		  AND EXISTS (
			SELECT 1 FROM transactions t
			WHERE t.account_id = a.id AND t.created_at <= $1
			  AND (c.last_posted_txn_id IS NULL
				OR (t.created_at, t.id) > (c.last_posted_at, c.last_posted_txn_id))
		  )
		ORDER BY a.id
		LIMIT $3`

	return collectIDs(ctx, r.pool, "find unposted accounts", query, till, afterID, limit)
}
