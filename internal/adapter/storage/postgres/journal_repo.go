package postgres

import (
	"context"
	"fmt"

	"current-account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const journalColumns = `id, account_id, gl_account, entry_type, amount, currency,
		transaction_id, transaction_date, submitted_on_date, overdraft, created_at`

// JournalRepo implements ports.JournalRepository.
type JournalRepo struct {
	pool Pool
}

// NewJournalRepo creates a new JournalRepo.
func NewJournalRepo(pool Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

// Create appends entries in one round trip. An entry already posted for the
// same (transaction, GL account, side, overdraft) is left untouched, so a
// replayed posting run cannot double-post.
func (r *JournalRepo) Create(ctx context.Context, tx pgx.Tx, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := `INSERT INTO journal_entries (` + journalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (transaction_id, gl_account, entry_type, overdraft) DO NOTHING`

	batch := &pgx.Batch{}
	for i := range entries {
		e := &entries[i]
		batch.Queue(query,
			e.ID, e.AccountID, e.GLAccount, e.EntryType, e.Amount, e.Currency,
			e.TransactionID, e.TransactionDate, e.SubmittedOnDate, e.Overdraft, e.CreatedAt,
		)
	}

	br := on(r.pool, tx).SendBatch(ctx, batch)
	for i := range entries {
		if _, err := br.Exec(); err != nil {
			br.Close() //nolint:errcheck
			return fmt.Errorf("insert journal entry %d of %d: %w", i+1, len(entries), err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close journal batch: %w", err)
	}
	return nil
}

// ListByAccount returns the most recent entries of an account, newest first.
func (r *JournalRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.JournalEntry, error) {
	query := `SELECT ` + journalColumns + `
		FROM journal_entries WHERE account_id = $1
		ORDER BY created_at DESC, transaction_id DESC, overdraft DESC, entry_type DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var e domain.JournalEntry
		err := rows.Scan(
			&e.ID, &e.AccountID, &e.GLAccount, &e.EntryType, &e.Amount, &e.Currency,
			&e.TransactionID, &e.TransactionDate, &e.SubmittedOnDate, &e.Overdraft, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan journal entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entry rows: %w", err)
	}
	return entries, nil
}
