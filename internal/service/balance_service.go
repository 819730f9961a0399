package service

import (
	"context"
	"errors"
	"fmt"

	"current-account-ledger/internal/core/domain"
	"current-account-ledger/internal/core/ports"
	"current-account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// BalanceServiceImpl implements ports.BalanceService. It folds the ledger
// tail that lies beyond an account's checkpoint onto that checkpoint.
type BalanceServiceImpl struct {
	accountRepo ports.AccountRepository
	ledger      ports.LedgerRepository
	checkpoints ports.BalanceCheckpointRepository
	publisher   ports.BalanceEventPublisher
	log         zerolog.Logger
}

// NewBalanceService creates a new BalanceServiceImpl. publisher may be nil.
func NewBalanceService(
	accountRepo ports.AccountRepository,
	ledger ports.LedgerRepository,
	checkpoints ports.BalanceCheckpointRepository,
	publisher ports.BalanceEventPublisher,
	log zerolog.Logger,
) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		accountRepo: accountRepo,
		ledger:      ledger,
		checkpoints: checkpoints,
		publisher:   publisher,
		log:         log,
	}
}

// GetBalance returns the current balance without writing anything.
func (s *BalanceServiceImpl) GetBalance(ctx context.Context, accountID uuid.UUID) (*domain.Balance, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}
	_, folded, err := s.fold(ctx, nil, accountID)
	if err != nil {
		return nil, err
	}
	return folded.Balance(), nil
}

// Recompute materializes the balance and persists it when the high-water
// mark moved. An account with an empty ledger gets no checkpoint.
func (s *BalanceServiceImpl) Recompute(ctx context.Context, accountID uuid.UUID) (*domain.Balance, error) {
	if err := s.requireAccount(ctx, accountID); err != nil {
		return nil, err
	}

	stored, folded, err := s.fold(ctx, nil, accountID)
	if err != nil {
		return nil, err
	}
	if !folded.Advanced(stored) {
		return folded.Balance(), nil
	}

	if err := s.checkpoints.Save(ctx, nil, folded); err != nil {
		return nil, storageError("save balance checkpoint", err)
	}

	s.log.Debug().
		Str("account_id", accountID.String()).
		Str("balance", folded.AccountBalance.String()).
		Str("hold", folded.HoldAmount.String()).
		Int64("version", folded.Version).
		Msg("balance checkpoint advanced")

	balance := folded.Balance()
	s.announce(ctx, balance)
	return balance, nil
}

// Materialize folds inside tx. The result keeps the stored checkpoint's
// version so the caller can save it optimistically.
func (s *BalanceServiceImpl) Materialize(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.BalanceCheckpoint, error) {
	_, folded, err := s.fold(ctx, tx, accountID)
	return folded, err
}

// fold returns the stored checkpoint (zero when absent) and the result of
// replaying everything after it.
func (s *BalanceServiceImpl) fold(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (stored, folded *domain.BalanceCheckpoint, err error) {
	stored, err = s.checkpoints.Get(ctx, tx, accountID)
	if err != nil {
		return nil, nil, storageError("load balance checkpoint", err)
	}
	if stored == nil {
		stored = domain.NewBalanceCheckpoint(accountID)
	}

	var txns []domain.Transaction
	if hwm := stored.HighWaterMark(); hwm == nil {
		txns, err = s.ledger.ReadAll(ctx, tx, accountID)
	} else {
		txns, err = s.ledger.ReadFrom(ctx, tx, accountID, hwm)
	}
	if err != nil {
		return nil, nil, storageError("read ledger tail", err)
	}

	folded, err = domain.FoldBalance(stored, txns)
	if err != nil {
		return nil, nil, unsupported(err)
	}
	return stored, folded, nil
}

func (s *BalanceServiceImpl) requireAccount(ctx context.Context, accountID uuid.UUID) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return storageError("get account", err)
	}
	if account == nil {
		return apperror.ErrNotFound("account")
	}
	return nil
}

// announce publishes a balance event; failures are only logged.
func (s *BalanceServiceImpl) announce(ctx context.Context, balance *domain.Balance) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishBalance(ctx, balance); err != nil {
		s.log.Warn().Err(err).
			Str("account_id", balance.AccountID.String()).
			Msg("failed to publish balance event")
	}
}

// storageError passes AppErrors through and wraps anything else as a
// database error.
func storageError(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrDatabaseError(fmt.Errorf("%s: %w", op, err))
}

// unsupported maps the domain's unsupported-type error to LED_001.
func unsupported(err error) error {
	var ute *domain.UnsupportedTransactionError
	if !errors.As(err, &ute) {
		return apperror.InternalError(err)
	}
	appErr := apperror.ErrUnsupportedTransaction(string(ute.Type))
	appErr.Err = err
	return appErr
}
