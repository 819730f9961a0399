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
	"github.com/shopspring/decimal"
)

// JournalPosterImpl implements ports.JournalPoster.
type JournalPosterImpl struct {
	accountRepo ports.AccountRepository
	ledger      ports.LedgerRepository
	checkpoints ports.AccountingCheckpointRepository
	journal     ports.JournalRepository
	publisher   ports.JournalPublisher
	transactor  ports.DBTransactor
	log         zerolog.Logger
	now         func() time.Time
}

// NewJournalPoster creates a new JournalPosterImpl. publisher may be nil.
func NewJournalPoster(
	accountRepo ports.AccountRepository,
	ledger ports.LedgerRepository,
	checkpoints ports.AccountingCheckpointRepository,
	journal ports.JournalRepository,
	publisher ports.JournalPublisher,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *JournalPosterImpl {
	return &JournalPosterImpl{
		accountRepo: accountRepo,
		ledger:      ledger,
		checkpoints: checkpoints,
		journal:     journal,
		publisher:   publisher,
		transactor:  transactor,
		log:         log,
		now:         time.Now,
	}
}

// PostAccount posts every unposted transaction up to till. STRICT accounts
// are posted to the end of their ledger regardless of till. The journal
// entries and the advanced checkpoint commit together or not at all.
func (p *JournalPosterImpl) PostAccount(ctx context.Context, accountID uuid.UUID, till time.Time) (*ports.PostingResult, error) {
	account, err := p.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, storageError("get account", err)
	}
	if account == nil {
		return nil, apperror.ErrNotFound("account")
	}

	result := &ports.PostingResult{AccountID: accountID}
	if !account.IsCashBased() {
		result.Skipped = true
		return result, nil
	}

	policy, err := account.ConsistencyPolicy()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("account %s: %w", account.ID, err))
	}

	dbTx, err := p.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	cp, err := p.checkpoints.Get(ctx, dbTx, accountID)
	if err != nil {
		return nil, storageError("load accounting checkpoint", err)
	}
	if cp == nil {
		cp = domain.NewAccountingCheckpoint(accountID)
	}

	var txns []domain.Transaction
	if policy.IsAlwaysCurrent() {
		txns, err = p.ledger.ReadFrom(ctx, dbTx, accountID, cp.HighWaterMark())
	} else {
		txns, err = p.ledger.ReadFromTill(ctx, dbTx, accountID, cp.HighWaterMark(), till)
	}
	if err != nil {
		return nil, storageError("read unposted transactions", err)
	}

	result.RunningBalance = cp.RunningBalance
	if len(txns) == 0 {
		return result, nil
	}

	mapping, err := p.accountRepo.GetGLMapping(ctx, account.ProductID)
	if err != nil {
		return nil, storageError("get gl mapping", err)
	}

	entries, running, err := p.buildEntries(account, mapping, cp.RunningBalance, txns)
	if err != nil {
		return nil, err
	}
	cp.RunningBalance = running
	cp.Advance(&txns[len(txns)-1])

	if err := p.journal.Create(ctx, dbTx, entries); err != nil {
		return nil, storageError("create journal entries", err)
	}
	if err := p.checkpoints.Save(ctx, dbTx, cp); err != nil {
		return nil, storageError("save accounting checkpoint", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if p.publisher != nil && len(entries) > 0 {
		if err := p.publisher.Publish(ctx, entries); err != nil {
			p.log.Warn().Err(err).Str("account_id", accountID.String()).Msg("failed to publish journal entries")
		}
	}

	p.log.Debug().
		Str("account_id", accountID.String()).
		Int("transactions", len(txns)).
		Int("entries", len(entries)).
		Str("running_balance", running.String()).
		Msg("journal posted")

	result.Processed = len(txns)
	result.Entries = entries
	result.RunningBalance = running
	return result, nil
}

// buildEntries walks txns in ledger order. Holds and releases produce no
// entries; monetary transactions are split against the running balance.
func (p *JournalPosterImpl) buildEntries(
	account *domain.Account,
	mapping *domain.GLMapping,
	running decimal.Decimal,
	txns []domain.Transaction,
) ([]domain.JournalEntry, decimal.Decimal, error) {
	now := p.now().UTC()
	y, m, d := now.Date()
	submittedOn := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	var entries []domain.JournalEntry
	for i := range txns {
		t := &txns[i]
		switch {
		case t.Type == domain.TransactionTypeAmountHold, t.Type == domain.TransactionTypeAmountRelease:
			continue
		case !t.Type.IsMonetary():
			return nil, running, unsupported(&domain.UnsupportedTransactionError{TransactionID: t.ID, Type: t.Type})
		}

		if mapping == nil {
			return nil, running, apperror.InternalError(
				fmt.Errorf("product %s has no GL mapping", account.ProductID))
		}
		normal, overdraft, err := domain.PostingPairs(t, mapping)
		if err != nil {
			return nil, running, unsupported(err)
		}

		for _, seg := range domain.SplitPosting(running, t.Amount, normal, overdraft) {
			for _, e := range seg.Entries(t, account.Currency, submittedOn) {
				id, err := uuid.NewV7()
				if err != nil {
					return nil, running, apperror.InternalError(fmt.Errorf("generate entry id: %w", err))
				}
				e.ID = id
				e.CreatedAt = now
				entries = append(entries, e)
			}
		}
		running = domain.ApplyRunning(running, t)
	}
	return entries, running, nil
}
