package service

import (
	"context"
	"fmt"
	"time"

	"current-account-ledger/internal/core/domain"
	"current-account-ledger/internal/core/ports"
	"current-account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TransactionServiceImpl implements ports.TransactionService.
type TransactionServiceImpl struct {
	accountRepo ports.AccountRepository
	ledger      ports.LedgerRepository
	checkpoints ports.BalanceCheckpointRepository
	balances    ports.BalanceService
	publisher   ports.BalanceEventPublisher
	transactor  ports.DBTransactor
	log         zerolog.Logger
	now         func() time.Time
}

// NewTransactionService creates a new TransactionServiceImpl. publisher may
// be nil.
func NewTransactionService(
	accountRepo ports.AccountRepository,
	ledger ports.LedgerRepository,
	checkpoints ports.BalanceCheckpointRepository,
	balances ports.BalanceService,
	publisher ports.BalanceEventPublisher,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		accountRepo: accountRepo,
		ledger:      ledger,
		checkpoints: checkpoints,
		balances:    balances,
		publisher:   publisher,
		transactor:  transactor,
		log:         log,
		now:         time.Now,
	}
}

// Submit appends one transaction under the account row lock. Withdrawals and
// holds are checked against the available balance floor, releases against
// the current hold. Types the policy does not allow to run on a stale
// checkpoint are processed against a freshly materialized one, and when the
// policy persists the type the new checkpoint is saved in the same database
// transaction.
func (s *TransactionServiceImpl) Submit(ctx context.Context, req ports.TransactionRequest) (*domain.Transaction, error) {
	if !req.Type.Valid() {
		return nil, apperror.ErrUnsupportedTransaction(string(req.Type))
	}
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	account, err := s.accountRepo.GetByIDForUpdate(ctx, dbTx, req.AccountID)
	if err != nil {
		return nil, storageError("lock account", err)
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}
	if !account.IsActive() {
		return nil, apperror.ErrAccountNotActive()
	}

	policy, err := account.ConsistencyPolicy()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("account %s: %w", account.ID, err))
	}
	persist := policy.IsPersist(req.Type)

	var current *domain.BalanceCheckpoint
	if !policy.HasDelay(domain.TransactionAction(req.Type)) || needsBalanceCheck(req.Type) {
		current, err = s.balances.Materialize(ctx, dbTx, account.ID)
		if err != nil {
			return nil, err
		}
		if err := checkFunds(account, current, req); err != nil {
			return nil, err
		}
	}

	last, err := s.ledger.LastKey(ctx, dbTx, account.ID)
	if err != nil {
		return nil, storageError("read last ledger key", err)
	}

	txn, err := s.newTransaction(req, last, current)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if err := s.ledger.Append(ctx, dbTx, txn); err != nil {
		return nil, storageError("append transaction", err)
	}

	var next *domain.BalanceCheckpoint
	if persist {
		if current == nil {
			return nil, apperror.InternalError(
				fmt.Errorf("policy %s persists %s without materializing", policy.Kind(), req.Type))
		}
		next, err = domain.FoldBalance(current, []domain.Transaction{*txn})
		if err != nil {
			return nil, unsupported(err)
		}
		if err := s.checkpoints.Save(ctx, dbTx, next); err != nil {
			return nil, storageError("save balance checkpoint", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if next != nil && s.publisher != nil {
		if err := s.publisher.PublishBalance(ctx, next.Balance()); err != nil {
			s.log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("failed to publish balance event")
		}
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("account_id", account.ID.String()).
		Str("type", string(txn.Type)).
		Str("amount", txn.Amount.String()).
		Bool("checkpoint_saved", next != nil).
		Msg("transaction appended")

	return txn, nil
}

func needsBalanceCheck(t domain.TransactionType) bool {
	return t == domain.TransactionTypeWithdrawal ||
		t == domain.TransactionTypeAmountHold ||
		t == domain.TransactionTypeAmountRelease
}

// checkFunds enforces the overdraft / minimum balance floor. Fees are never
// rejected.
func checkFunds(account *domain.Account, current *domain.BalanceCheckpoint, req ports.TransactionRequest) error {
	switch req.Type {
	case domain.TransactionTypeWithdrawal, domain.TransactionTypeAmountHold:
		if current.AvailableBalance().Sub(req.Amount).LessThan(account.AvailableFloor()) {
			return apperror.ErrInsufficientFunds()
		}
	case domain.TransactionTypeAmountRelease:
		if req.Amount.GreaterThan(current.HoldAmount) {
			return apperror.ErrReleaseExceedsHold()
		}
	}
	return nil
}

// newTransaction stamps a UUIDv7 id and a ledger timestamp. The timestamp
// always falls strictly after the account's last ledger row and after the
// materialized high-water mark, so the new row sorts after everything
// already appended or folded regardless of clock skew between writers.
func (s *TransactionServiceImpl) newTransaction(req ports.TransactionRequest, last *domain.OrderKey, current *domain.BalanceCheckpoint) (*domain.Transaction, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate transaction id: %w", err)
	}

	createdAt := domain.LedgerTimestamp(s.now())
	floor := last
	if current != nil {
		if hwm := current.HighWaterMark(); hwm != nil && (floor == nil || floor.Before(*hwm)) {
			floor = hwm
		}
	}
	if floor != nil && !floor.CreatedAt.Before(createdAt) {
		createdAt = floor.CreatedAt.Add(time.Microsecond)
	}

	txDate := req.TransactionDate
	if txDate.IsZero() {
		txDate = createdAt
	}
	y, m, d := txDate.UTC().Date()

	return &domain.Transaction{
		ID:              id,
		AccountID:       req.AccountID,
		Type:            req.Type,
		Amount:          req.Amount,
		TransactionDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		CreatedAt:       createdAt,
		PaymentTypeID:   req.PaymentTypeID,
	}, nil
}
