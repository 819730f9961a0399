package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"current-account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- Infrastructure Ports ---

// TokenService handles operator JWT operations.
type TokenService interface {
	Generate(subject string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Subject string
}

// BalanceEventPublisher announces freshly persisted balances.
type BalanceEventPublisher interface {
	PublishBalance(ctx context.Context, balance *domain.Balance) error
}

// JournalPublisher mirrors posted journal entries to the GL event stream.
type JournalPublisher interface {
	Publish(ctx context.Context, entries []domain.JournalEntry) error
}

// JobLock guarantees a batch job runs on one instance at a time.
type JobLock interface {
	// Acquire returns a release token and true when the lock was taken.
	Acquire(ctx context.Context, job string, ttl time.Duration) (string, bool, error)
	Release(ctx context.Context, job, token string) error
}

// RateLimitStore counts requests in fixed windows.
type RateLimitStore interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (*RateLimitResult, error)
}

// RateLimitResult holds the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	ResetAt   int64 // Unix timestamp
}

// IdempotencyCache remembers command responses by caller-supplied key.
type IdempotencyCache interface {
	// Reserve claims key for an in-flight request. A stored response is
	// returned with reserved=false; reserved is also false while another
	// request holds the key.
	Reserve(ctx context.Context, key string, lease time.Duration) (cached []byte, reserved bool, err error)
	Store(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Release drops an unfinished reservation. Stored responses stay.
	Release(ctx context.Context, key string) error
}

// --- Service Ports (Business Logic) ---

// BalanceService is the balance materializer.
type BalanceService interface {
	// GetBalance replays the ledger tail onto the last checkpoint. It never
	// persists.
	GetBalance(ctx context.Context, accountID uuid.UUID) (*domain.Balance, error)
	// Recompute materializes and persists the checkpoint when it advanced.
	Recompute(ctx context.Context, accountID uuid.UUID) (*domain.Balance, error)
	// Materialize folds inside tx and returns the unsaved result, carrying
	// the stored checkpoint's version.
	Materialize(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.BalanceCheckpoint, error)
}

// TransactionService accepts transaction commands.
type TransactionService interface {
	Submit(ctx context.Context, req TransactionRequest) (*domain.Transaction, error)
}

// TransactionRequest holds validated input for a transaction command.
type TransactionRequest struct {
	AccountID       uuid.UUID
	Type            domain.TransactionType
	Amount          decimal.Decimal
	TransactionDate time.Time // zero = today
	PaymentTypeID   *int64
}

// JournalPoster turns unposted transactions into GL journal entries.
type JournalPoster interface {
	PostAccount(ctx context.Context, accountID uuid.UUID, till time.Time) (*PostingResult, error)
}

// PostingResult summarizes one PostAccount call.
type PostingResult struct {
	AccountID      uuid.UUID             `json:"account_id"`
	Processed      int                   `json:"processed"`
	Entries        []domain.JournalEntry `json:"entries"`
	RunningBalance decimal.Decimal       `json:"running_balance"`
	Skipped        bool                  `json:"skipped,omitempty"` // not CASH_BASED
}

// BatchJob is one scheduled scan.
type BatchJob interface {
	Name() string
	Run(ctx context.Context) (*BatchReport, error)
}

// BatchReport summarizes one batch run. A run with failures also returns
// an *apperror.BatchError.
type BatchReport struct {
	Job       string        `json:"job"`
	Till      time.Time     `json:"till"`
	Selected  int           `json:"selected"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration_ns"`
}

// JobTrigger runs a registered batch job on demand.
type JobTrigger interface {
	Trigger(ctx context.Context, job string) (*BatchReport, error)
}
