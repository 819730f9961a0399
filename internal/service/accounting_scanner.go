package service

import (
	"context"
	"time"

	"current-account-ledger/config"
	"current-account-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JournalPostingJob is the scheduler name of the accounting scanner.
const JournalPostingJob = "journal-posting"

// AccountingScanner posts the unposted transactions of every CASH_BASED
// account up to now minus the configured delay.
type AccountingScanner struct {
	checkpoints ports.AccountingCheckpointRepository
	poster      ports.JournalPoster
	delay       time.Duration
	runner      batchRunner
}

// NewAccountingScanner creates the journal posting job.
func NewAccountingScanner(
	checkpoints ports.AccountingCheckpointRepository,
	poster ports.JournalPoster,
	cfg config.BatchConfig,
	log zerolog.Logger,
) *AccountingScanner {
	return &AccountingScanner{
		checkpoints: checkpoints,
		poster:      poster,
		delay:       cfg.PostingDelay,
		runner:      newBatchRunner(cfg.Workers, cfg.PageSize, log),
	}
}

func (s *AccountingScanner) Name() string { return JournalPostingJob }

// Run posts every selected account with the same till.
func (s *AccountingScanner) Run(ctx context.Context) (*ports.BatchReport, error) {
	till := s.runner.now().UTC().Add(-s.delay)
	return s.runner.run(ctx, JournalPostingJob, till, s.checkpoints.FindUnpostedAccounts,
		func(ctx context.Context, accountID uuid.UUID) error {
			_, err := s.poster.PostAccount(ctx, accountID, till)
			return err
		})
}
