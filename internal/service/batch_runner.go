package service

import (
	"context"
	"sync"
	"time"

	"current-account-ledger/internal/core/ports"
	"current-account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// pageFunc returns up to limit account ids greater than afterID.
type pageFunc func(ctx context.Context, till time.Time, afterID uuid.UUID, limit int) ([]uuid.UUID, error)

// accountStep processes one account. Its error is recorded and the run moves
// on to the next account.
type accountStep func(ctx context.Context, accountID uuid.UUID) error

// batchRunner pages through a selection of accounts by id and fans each page
// out to a bounded number of workers.
type batchRunner struct {
	workers  int
	pageSize int
	log      zerolog.Logger
	now      func() time.Time
}

func newBatchRunner(workers, pageSize int, log zerolog.Logger) batchRunner {
	if workers < 1 {
		workers = 1
	}
	if pageSize < 1 {
		pageSize = 500
	}
	return batchRunner{workers: workers, pageSize: pageSize, log: log, now: time.Now}
}

// run walks every page of the selection as of till. A failed account never
// stops the run; all failures come back together as one *apperror.BatchError.
// A selection error or a cancelled ctx aborts the run.
func (r batchRunner) run(ctx context.Context, job string, till time.Time, page pageFunc, step accountStep) (*ports.BatchReport, error) {
	start := r.now()
	report := &ports.BatchReport{Job: job, Till: till}

	var (
		mu       sync.Mutex
		failures []apperror.AccountFailure
	)

	afterID := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			report.Duration = r.now().Sub(start)
			return report, err
		}

		ids, err := page(ctx, till, afterID, r.pageSize)
		if err != nil {
			report.Duration = r.now().Sub(start)
			return report, apperror.ErrDatabaseError(err)
		}
		if len(ids) == 0 {
			break
		}
		report.Selected += len(ids)

		var g errgroup.Group
		g.SetLimit(r.workers)
		for _, id := range ids {
			g.Go(func() error {
				if err := step(ctx, id); err != nil {
					r.log.Warn().Err(err).
						Str("job", job).
						Str("account_id", id.String()).
						Msg("account failed in batch")
					mu.Lock()
					failures = append(failures, apperror.AccountFailure{AccountID: id, Err: err})
					mu.Unlock()
				}
				return nil
			})
		}
		_ = g.Wait()

		if len(ids) < r.pageSize {
			break
		}
		afterID = ids[len(ids)-1]
	}

	report.Failed = len(failures)
	report.Succeeded = report.Selected - report.Failed
	report.Duration = r.now().Sub(start)

	r.log.Info().
		Str("job", job).
		Time("till", till).
		Int("selected", report.Selected).
		Int("failed", report.Failed).
		Dur("duration", report.Duration).
		Msg("batch run finished")

	return report, apperror.NewBatchError(job, report.Selected, failures)
}
