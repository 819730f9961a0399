package service_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"current-account-ledger/config"
	"current-account-ledger/internal/adapter/storage/memory"
	redisstore "current-account-ledger/internal/adapter/storage/redis"
	"current-account-ledger/internal/core/domain"
	"current-account-ledger/internal/core/ports"
	"current-account-ledger/internal/service"
	"current-account-ledger/pkg/apperror"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// engine wires the real services onto the in-memory store.
type engine struct {
	store    *memory.Store
	balances *service.BalanceServiceImpl
	txns     *service.TransactionServiceImpl
	poster   *service.JournalPosterImpl
	batch    config.BatchConfig
}

func newEngine() *engine {
	s := memory.NewStore()
	log := zerolog.Nop()
	balances := service.NewBalanceService(s.Accounts(), s.Ledger(), s.BalanceCheckpoints(), nil, log)
	return &engine{
		store:    s,
		balances: balances,
		txns: service.NewTransactionService(
			s.Accounts(), s.Ledger(), s.BalanceCheckpoints(), balances, nil, s.Transactor(), log),
		poster: service.NewJournalPoster(
			s.Accounts(), s.Ledger(), s.AccountingCheckpoints(), s.Journal(), nil, s.Transactor(), log),
		batch: config.BatchConfig{Workers: 4, PageSize: 2},
	}
}

func (e *engine) account(policy domain.PolicyKind) domain.Account {
	a := domain.Account{
		ID:             uuid.New(),
		AccountNo:      "CA-" + uuid.NewString()[:8],
		Currency:       "EUR",
		Status:         domain.AccountStatusActive,
		ProductID:      uuid.New(),
		Policy:         policy,
		AccountingRule: domain.AccountingRuleCashBased,
	}
	e.store.PutAccount(a)
	e.store.PutGLMapping(domain.GLMapping{
		ProductID:        a.ProductID,
		Reference:        "1000",
		Control:          "2000",
		OverdraftControl: "1300",
		IncomeFromFees:   "4000",
	})
	return a
}

func (e *engine) submit(t *testing.T, accountID uuid.UUID, typ domain.TransactionType, amount string) *domain.Transaction {
	t.Helper()
	txn, err := e.txns.Submit(context.Background(), ports.TransactionRequest{
		AccountID: accountID,
		Type:      typ,
		Amount:    decimal.RequireFromString(amount),
	})
	require.NoError(t, err)
	return txn
}

// seed appends directly to the ledger, bypassing the command path.
func (e *engine) seed(t *testing.T, accountID uuid.UUID, at time.Time, typ domain.TransactionType, amount string) domain.Transaction {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	txn := domain.Transaction{
		ID:              id,
		AccountID:       accountID,
		Type:            typ,
		Amount:          decimal.RequireFromString(amount),
		TransactionDate: at.Truncate(24 * time.Hour),
		CreatedAt:       domain.LedgerTimestamp(at),
	}
	require.NoError(t, e.store.Ledger().Append(context.Background(), nil, &txn))
	return txn
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// ==================== Scenarios ====================

func TestScenario_EmptyLedger(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyLazy)
	ctx := context.Background()

	bal, err := e.balances.GetBalance(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, bal.AccountBalance.IsZero())
	assert.True(t, bal.HoldAmount.IsZero())
	assert.Nil(t, bal.CalculatedTill)

	_, err = e.balances.Recompute(ctx, a.ID)
	require.NoError(t, err)
	cp, err := e.store.BalanceCheckpoints().Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Nil(t, cp, "an empty ledger never gets a checkpoint")
}

func TestScenario_DepositThenWithdrawal(t *testing.T) {
	for _, policy := range []domain.PolicyKind{domain.PolicyLazy, domain.PolicyStrictDebit, domain.PolicyStrict} {
		t.Run(string(policy), func(t *testing.T) {
			e := newEngine()
			a := e.account(policy)

			e.submit(t, a.ID, domain.TransactionTypeDeposit, "100")
			e.submit(t, a.ID, domain.TransactionTypeWithdrawal, "30")

			bal, err := e.balances.GetBalance(context.Background(), a.ID)
			require.NoError(t, err)
			requireDecimal(t, "70", bal.AccountBalance)
			requireDecimal(t, "0", bal.HoldAmount)
		})
	}
}

func TestScenario_HoldAndRelease(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyStrictDebit)
	ctx := context.Background()

	e.submit(t, a.ID, domain.TransactionTypeDeposit, "100")
	e.submit(t, a.ID, domain.TransactionTypeAmountHold, "40")

	bal, err := e.balances.GetBalance(ctx, a.ID)
	require.NoError(t, err)
	requireDecimal(t, "100", bal.AccountBalance)
	requireDecimal(t, "40", bal.HoldAmount)
	requireDecimal(t, "60", bal.AvailableBalance)

	_, err = e.txns.Submit(ctx, ports.TransactionRequest{
		AccountID: a.ID, Type: domain.TransactionTypeWithdrawal, Amount: decimal.NewFromInt(61),
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientFunds())

	e.submit(t, a.ID, domain.TransactionTypeAmountRelease, "40")
	bal, err = e.balances.GetBalance(ctx, a.ID)
	require.NoError(t, err)
	requireDecimal(t, "100", bal.AccountBalance)
	requireDecimal(t, "0", bal.HoldAmount)
	requireDecimal(t, "100", bal.AvailableBalance)
}

func TestScenario_OverdraftSplitPosting(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyLazy)
	ctx := context.Background()
	till := time.Now().Add(time.Hour)

	// overdrawn by 20
	first := e.seed(t, a.ID, time.Now().Add(-time.Minute), domain.TransactionTypeWithdrawal, "20")
	res, err := e.poster.PostAccount(ctx, a.ID, till)
	require.NoError(t, err)
	requireDecimal(t, "-20", res.RunningBalance)

	second := e.seed(t, a.ID, time.Now(), domain.TransactionTypeWithdrawal, "50")
	res, err = e.poster.PostAccount(ctx, a.ID, till)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	requireDecimal(t, "-70", res.RunningBalance)

	require.Len(t, res.Entries, 4)
	for _, entry := range res.Entries {
		assert.Equal(t, second.ID, entry.TransactionID)
	}
	assert.True(t, res.Entries[0].Overdraft)
	requireDecimal(t, "20", res.Entries[0].Amount)
	assert.Equal(t, "1300", res.Entries[0].GLAccount)
	assert.False(t, res.Entries[2].Overdraft)
	requireDecimal(t, "30", res.Entries[2].Amount)
	assert.Equal(t, "2000", res.Entries[2].GLAccount)

	cp, err := e.store.AccountingCheckpoints().Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *cp.LastPostedTxnID)
	assert.NotEqual(t, first.ID, *cp.LastPostedTxnID)
	assert.Len(t, e.store.Journal().Entries(a.ID), 6)
}

func TestScenario_ScannerCatchesUpLazyAccount(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyLazy)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	e.seed(t, a.ID, base, domain.TransactionTypeDeposit, "10")
	_, err := e.balances.Recompute(ctx, a.ID)
	require.NoError(t, err)

	e.seed(t, a.ID, base.Add(time.Minute), domain.TransactionTypeDeposit, "1")
	e.seed(t, a.ID, base.Add(2*time.Minute), domain.TransactionTypeWithdrawal, "2")
	t3 := e.seed(t, a.ID, base.Add(3*time.Minute), domain.TransactionTypeDeposit, "3")

	stale, err := e.store.BalanceCheckpoints().FindStaleAccounts(ctx, time.Now(), uuid.Nil, 10)
	require.NoError(t, err)
	assert.Contains(t, stale, a.ID)

	scanner := service.NewBalanceScanner(e.store.BalanceCheckpoints(), e.balances, e.batch, zerolog.Nop())
	report, err := scanner.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)

	cp, err := e.store.BalanceCheckpoints().Get(ctx, nil, a.ID)
	require.NoError(t, err)
	assert.Equal(t, t3.CreatedAt, *cp.CalculatedTill)
	assert.Equal(t, t3.ID, *cp.CalculatedTillTxnID)
	requireDecimal(t, "12", cp.AccountBalance)

	stale, err = e.store.BalanceCheckpoints().FindStaleAccounts(ctx, time.Now(), uuid.Nil, 10)
	require.NoError(t, err)
	assert.NotContains(t, stale, a.ID)
}

// ==================== Properties ====================

func TestProperty_GetBalanceIsIdempotent(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyLazy)
	e.submit(t, a.ID, domain.TransactionTypeDeposit, "12.34")
	e.submit(t, a.ID, domain.TransactionTypeAmountHold, "2")

	first, err := e.balances.GetBalance(context.Background(), a.ID)
	require.NoError(t, err)
	second, err := e.balances.GetBalance(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cp, err := e.store.BalanceCheckpoints().Get(context.Background(), nil, a.ID)
	require.NoError(t, err)
	assert.Nil(t, cp, "reads never persist")
}

func TestProperty_ReconciliationAcrossPolicies(t *testing.T) {
	types := []domain.TransactionType{
		domain.TransactionTypeDeposit,
		domain.TransactionTypeDeposit,
		domain.TransactionTypeWithdrawal,
		domain.TransactionTypeWithdrawalFee,
		domain.TransactionTypeAmountHold,
	}

	for _, policy := range []domain.PolicyKind{domain.PolicyLazy, domain.PolicyStrictDebit, domain.PolicyStrict} {
		t.Run(string(policy), func(t *testing.T) {
			e := newEngine()
			a := e.account(policy)
			a.AllowOverdraft = true
			a.OverdraftLimit = decimal.NewFromInt(1_000_000)
			e.store.PutAccount(a)
			ctx := context.Background()
			rng := rand.New(rand.NewSource(42))

			for i := 0; i < 60; i++ {
				typ := types[rng.Intn(len(types))]
				amount := decimal.New(rng.Int63n(10_000)+1, -2)
				_, err := e.txns.Submit(ctx, ports.TransactionRequest{AccountID: a.ID, Type: typ, Amount: amount})
				require.NoError(t, err)
				if i%17 == 0 {
					_, err := e.balances.Recompute(ctx, a.ID)
					require.NoError(t, err)
				}
			}

			all, err := e.store.Ledger().ReadAll(ctx, nil, a.ID)
			require.NoError(t, err)
			fromZero, err := domain.FoldBalance(domain.NewBalanceCheckpoint(a.ID), all)
			require.NoError(t, err)

			bal, err := e.balances.GetBalance(ctx, a.ID)
			require.NoError(t, err)
			requireDecimal(t, fromZero.AccountBalance.String(), bal.AccountBalance)
			requireDecimal(t, fromZero.HoldAmount.String(), bal.HoldAmount)

			if stored, _ := e.store.BalanceCheckpoints().Get(ctx, nil, a.ID); stored != nil {
				hwm := stored.HighWaterMark()
				var prefix []domain.Transaction
				for _, txn := range all {
					if !hwm.Before(txn.OrderKey()) {
						prefix = append(prefix, txn)
					}
				}
				replayed, err := domain.FoldBalance(domain.NewBalanceCheckpoint(a.ID), prefix)
				require.NoError(t, err)
				requireDecimal(t, replayed.AccountBalance.String(), stored.AccountBalance)
				requireDecimal(t, replayed.HoldAmount.String(), stored.HoldAmount)
			}
		})
	}
}

func TestProperty_StrictCheckpointAlwaysCurrent(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyStrict)
	ctx := context.Background()

	e.submit(t, a.ID, domain.TransactionTypeDeposit, "5")
	last := e.submit(t, a.ID, domain.TransactionTypeAmountHold, "1")

	cp, err := e.store.BalanceCheckpoints().Get(ctx, nil, a.ID)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, last.ID, *cp.CalculatedTillTxnID)
	assert.Equal(t, int64(2), cp.Version)

	stale, err := e.store.BalanceCheckpoints().FindStaleAccounts(ctx, time.Now().Add(time.Hour), uuid.Nil, 10)
	require.NoError(t, err)
	assert.NotContains(t, stale, a.ID)
}

func TestProperty_CheckpointNeverMovesBackward(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyLazy)
	ctx := context.Background()

	e.seed(t, a.ID, time.Now().Add(-time.Minute), domain.TransactionTypeDeposit, "10")
	stale, err := e.balances.Materialize(ctx, nil, a.ID)
	require.NoError(t, err)

	e.seed(t, a.ID, time.Now(), domain.TransactionTypeDeposit, "5")
	_, err = e.balances.Recompute(ctx, a.ID)
	require.NoError(t, err)

	// a slower replay that started earlier loses the race
	err = e.store.BalanceCheckpoints().Save(ctx, nil, stale)
	assert.ErrorIs(t, err, apperror.ErrCheckpointConflict(nil))

	bal, err := e.balances.GetBalance(ctx, a.ID)
	require.NoError(t, err)
	requireDecimal(t, "15", bal.AccountBalance)
}

func TestProperty_ConcurrentWithdrawalsRespectFloor(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyStrictDebit)
	e.submit(t, a.ID, domain.TransactionTypeDeposit, "50")

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.txns.Submit(context.Background(), ports.TransactionRequest{
				AccountID: a.ID, Type: domain.TransactionTypeWithdrawal, Amount: decimal.NewFromInt(10),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, apperror.ErrInsufficientFunds()):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 5, rejected)
	bal, err := e.balances.GetBalance(context.Background(), a.ID)
	require.NoError(t, err)
	requireDecimal(t, "0", bal.AccountBalance)
}

func TestProperty_PostingIsReentrant(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyLazy)
	ctx := context.Background()
	till := time.Now().Add(time.Hour)

	e.submit(t, a.ID, domain.TransactionTypeDeposit, "10")
	e.submit(t, a.ID, domain.TransactionTypeWithdrawalFee, "1")

	first, err := e.poster.PostAccount(ctx, a.ID, till)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Processed)

	again, err := e.poster.PostAccount(ctx, a.ID, till)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Processed)
	requireDecimal(t, "9", again.RunningBalance)
	assert.Len(t, e.store.Journal().Entries(a.ID), 4)
}

func TestProperty_PostingRespectsTill(t *testing.T) {
	e := newEngine()
	a := e.account(domain.PolicyLazy)
	ctx := context.Background()
	now := time.Now()

	e.seed(t, a.ID, now.Add(-2*time.Minute), domain.TransactionTypeDeposit, "10")
	e.seed(t, a.ID, now, domain.TransactionTypeDeposit, "5")

	res, err := e.poster.PostAccount(ctx, a.ID, now.Add(-time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Processed)
	requireDecimal(t, "10", res.RunningBalance)
}

func TestAccountingScanner_IsolatesFailingAccount(t *testing.T) {
	e := newEngine()
	ctx := context.Background()
	till := time.Now().Add(-time.Second)

	healthy := make([]domain.Account, 3)
	for i := range healthy {
		healthy[i] = e.account(domain.PolicyLazy)
		e.seed(t, healthy[i].ID, till.Add(-time.Minute), domain.TransactionTypeDeposit, "10")
	}
	broken := e.account(domain.PolicyLazy)
	e.seed(t, broken.ID, till.Add(-time.Minute), domain.TransactionType("INTEREST_POSTING"), "1")

	scanner := service.NewAccountingScanner(e.store.AccountingCheckpoints(), e.poster, e.batch, zerolog.Nop())
	report, err := scanner.Run(ctx)

	var batchErr *apperror.BatchError
	require.ErrorAs(t, err, &batchErr)
	require.Len(t, batchErr.Failures, 1)
	assert.Equal(t, broken.ID, batchErr.Failures[0].AccountID)
	assert.ErrorIs(t, err, apperror.ErrUnsupportedTransaction(""))
	assert.Equal(t, 4, report.Selected)
	assert.Equal(t, 3, report.Succeeded)

	for _, a := range healthy {
		assert.Len(t, e.store.Journal().Entries(a.ID), 2, "account %s", a.ID)
	}
	assert.Empty(t, e.store.Journal().Entries(broken.ID))
}

func TestScheduler_RedisLockSerializesInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	e := newEngine()
	lock := redisstore.NewJobLock(client)
	scanner := service.NewBalanceScanner(e.store.BalanceCheckpoints(), e.balances, e.batch, zerolog.Nop())
	scheduler := service.NewScheduler(lock, time.Minute, zerolog.Nop())
	scheduler.Register(scanner, 0)
	ctx := context.Background()

	// another instance holds the lock
	token, ok, err := lock.Acquire(ctx, service.BalanceRecomputeJob, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = scheduler.Trigger(ctx, service.BalanceRecomputeJob)
	assert.ErrorIs(t, err, apperror.ErrJobAlreadyRunning(service.BalanceRecomputeJob))

	require.NoError(t, lock.Release(ctx, service.BalanceRecomputeJob, token))
	report, err := scheduler.Trigger(ctx, service.BalanceRecomputeJob)
	require.NoError(t, err)
	assert.Equal(t, service.BalanceRecomputeJob, report.Job)
	assert.False(t, mr.Exists("joblock:"+service.BalanceRecomputeJob), "lock released after the run")
}
