package service

import (
	"context"
	"time"

	"current-account-ledger/config"
	"current-account-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// BalanceRecomputeJob is the scheduler name of the balance scanner.
const BalanceRecomputeJob = "balance-recompute"

// BalanceScanner recomputes the checkpoint of every account whose ledger
// moved past it, up to now minus the configured delay.
type BalanceScanner struct {
	checkpoints ports.BalanceCheckpointRepository
	balances    ports.BalanceService
	delay       time.Duration
	runner      batchRunner
}

// NewBalanceScanner creates the balance recompute job.
func NewBalanceScanner(
	checkpoints ports.BalanceCheckpointRepository,
	balances ports.BalanceService,
	cfg config.BatchConfig,
	log zerolog.Logger,
) *BalanceScanner {
	return &BalanceScanner{
		checkpoints: checkpoints,
		balances:    balances,
		delay:       cfg.BalanceDelay,
		runner:      newBatchRunner(cfg.Workers, cfg.PageSize, log),
	}
}

func (s *BalanceScanner) Name() string { return BalanceRecomputeJob }

// Run selects stale accounts as of the horizon and recomputes each one.
func (s *BalanceScanner) Run(ctx context.Context) (*ports.BatchReport, error) {
	till := s.runner.now().UTC().Add(-s.delay)
	return s.runner.run(ctx, BalanceRecomputeJob, till, s.checkpoints.FindStaleAccounts,
		func(ctx context.Context, accountID uuid.UUID) error {
			_, err := s.balances.Recompute(ctx, accountID)
			return err
		})
}
