package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"time"

	"current-account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Methods accepting pgx.Tx run inside the caller's database transaction.
// A nil tx runs the statement on the pool.

// AccountRepository reads current accounts and their product settings.
type AccountRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetByIDForUpdate locks the account row for the rest of tx. It is the
	// single-writer barrier for every mutating operation on the account.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error)
	GetGLMapping(ctx context.Context, productID uuid.UUID) (*domain.GLMapping, error)
}

// LedgerRepository is the append-only transaction log. Every read returns
// transactions in ascending (created_at, id) order. There is no update or
// delete.
type LedgerRepository interface {
	Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	// ReadFrom returns transactions strictly after the given key; a nil key
	// returns the whole history.
	ReadFrom(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, after *domain.OrderKey) ([]domain.Transaction, error)
	ReadTill(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, till time.Time) ([]domain.Transaction, error)
	ReadFromTill(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, after *domain.OrderKey, till time.Time) ([]domain.Transaction, error)
	ReadAll(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) ([]domain.Transaction, error)
	// LastKey returns the position of the account's latest transaction, or
	// nil for an empty ledger.
	LastKey(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.OrderKey, error)
}

// BalanceCheckpointRepository persists materialized balances.
type BalanceCheckpointRepository interface {
	// Get returns nil, nil when the account has no checkpoint yet.
	Get(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.BalanceCheckpoint, error)
	// Save writes cp if its Version still matches the stored row and bumps
	// cp.Version on success. A mismatch is a checkpoint conflict.
	Save(ctx context.Context, tx pgx.Tx, cp *domain.BalanceCheckpoint) error
	// FindStaleAccounts pages, by account id, through accounts whose
	// checkpoint lags the ledger as of till.
	FindStaleAccounts(ctx context.Context, till time.Time, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
}

// AccountingCheckpointRepository persists GL posting positions.
type AccountingCheckpointRepository interface {
	Get(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.AccountingCheckpoint, error)
	Save(ctx context.Context, tx pgx.Tx, cp *domain.AccountingCheckpoint) error
	// FindUnpostedAccounts pages through active CASH_BASED accounts with
	// transactions at or before till that are not posted yet.
	FindUnpostedAccounts(ctx context.Context, till time.Time, afterID uuid.UUID, limit int) ([]uuid.UUID, error)
}

// JournalRepository appends GL journal entries.
type JournalRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entries []domain.JournalEntry) error
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.JournalEntry, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
