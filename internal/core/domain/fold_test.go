package domain

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func ts(sec int) time.Time {
	return epoch.Add(time.Duration(sec) * time.Second)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func txn(sec int, typ TransactionType, amount string) Transaction {
	id, _ := uuid.NewV7()
	return Transaction{ID: id, Type: typ, Amount: dec(amount), CreatedAt: ts(sec), TransactionDate: ts(sec)}
}

func TestFoldBalance_EmptyLedger(t *testing.T) {
	cp := NewBalanceCheckpoint(uuid.New())

	out, err := FoldBalance(cp, nil)
	require.NoError(t, err)

	assert.True(t, out.AccountBalance.IsZero())
	assert.True(t, out.HoldAmount.IsZero())
	assert.Nil(t, out.CalculatedTill)
	assert.True(t, out.IsEmpty())
	assert.False(t, out.Advanced(cp))
}

func TestFoldBalance_DepositThenWithdrawal(t *testing.T) {
	txns := []Transaction{
		txn(1, TransactionTypeDeposit, "100"),
		txn(2, TransactionTypeWithdrawal, "30"),
	}

	out, err := FoldBalance(NewBalanceCheckpoint(uuid.New()), txns)
	require.NoError(t, err)

	assert.True(t, dec("70").Equal(out.AccountBalance))
	assert.True(t, out.HoldAmount.IsZero())
	assert.Equal(t, ts(2), *out.CalculatedTill)
	assert.Equal(t, txns[1].ID, *out.CalculatedTillTxnID)
}

func TestFoldBalance_HoldsNeverTouchAccountBalance(t *testing.T) {
	cp := NewBalanceCheckpoint(uuid.New())
	held, err := FoldBalance(cp, []Transaction{
		txn(1, TransactionTypeDeposit, "100"),
		txn(2, TransactionTypeAmountHold, "40"),
	})
	require.NoError(t, err)

	assert.True(t, dec("100").Equal(held.AccountBalance))
	assert.True(t, dec("40").Equal(held.HoldAmount))
	assert.True(t, dec("60").Equal(held.AvailableBalance()))

	released, err := FoldBalance(held, []Transaction{txn(3, TransactionTypeAmountRelease, "40")})
	require.NoError(t, err)

	assert.True(t, dec("100").Equal(released.AccountBalance))
	assert.True(t, released.HoldAmount.IsZero())
	assert.True(t, dec("100").Equal(released.AvailableBalance()))
}

func TestFoldBalance_FeeDebitsBalance(t *testing.T) {
	out, err := FoldBalance(NewBalanceCheckpoint(uuid.New()), []Transaction{
		txn(1, TransactionTypeDeposit, "10"),
		txn(2, TransactionTypeWithdrawalFee, "2.5"),
	})
	require.NoError(t, err)
	assert.True(t, dec("7.5").Equal(out.AccountBalance))
}

func TestFoldBalance_UnsupportedType(t *testing.T) {
	bad := txn(1, TransactionType("TRANSFER"), "1")

	_, err := FoldBalance(NewBalanceCheckpoint(uuid.New()), []Transaction{bad})

	var unsupported *UnsupportedTransactionError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, bad.ID, unsupported.TransactionID)
}

func TestFoldBalance_DoesNotMutateInput(t *testing.T) {
	cp := NewBalanceCheckpoint(uuid.New())
	_, err := FoldBalance(cp, []Transaction{txn(1, TransactionTypeDeposit, "5")})
	require.NoError(t, err)

	assert.True(t, cp.AccountBalance.IsZero())
	assert.Nil(t, cp.CalculatedTill)
}

func TestFoldBalance_NoNewTransactionsKeepsCheckpoint(t *testing.T) {
	first, err := FoldBalance(NewBalanceCheckpoint(uuid.New()), []Transaction{txn(1, TransactionTypeDeposit, "5")})
	require.NoError(t, err)

	again, err := FoldBalance(first, nil)
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.False(t, again.Advanced(first))
}

func randomLedger(r *rand.Rand, n int) []Transaction {
	types := []TransactionType{
		TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeWithdrawalFee,
		TransactionTypeAmountHold, TransactionTypeAmountRelease,
	}
	out := make([]Transaction, n)
	for i := range out {
		// Several transactions share a timestamp so the id tie-break matters.
		out[i] = txn(r.Intn(n/2+1), types[r.Intn(len(types))], decimal.New(int64(r.Intn(10000)), -2).String())
	}
	SortTransactions(out)
	return out
}

func TestFoldBalance_ReconcilesFromAnyCheckpoint(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		ledger := randomLedger(r, 40)
		full, err := FoldBalance(NewBalanceCheckpoint(uuid.Nil), ledger)
		require.NoError(t, err)

		cut := r.Intn(len(ledger) + 1)
		mid, err := FoldBalance(NewBalanceCheckpoint(uuid.Nil), ledger[:cut])
		require.NoError(t, err)
		resumed, err := FoldBalance(mid, ledger[cut:])
		require.NoError(t, err)

		assert.True(t, full.AccountBalance.Equal(resumed.AccountBalance), "round %d cut %d", round, cut)
		assert.True(t, full.HoldAmount.Equal(resumed.HoldAmount), "round %d cut %d", round, cut)
		assert.Equal(t, full.HighWaterMark(), resumed.HighWaterMark())
	}
}

func TestFoldBalance_OrderIndependentAfterSort(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	ledger := randomLedger(r, 60)
	want, err := FoldBalance(NewBalanceCheckpoint(uuid.Nil), ledger)
	require.NoError(t, err)

	for round := 0; round < 20; round++ {
		shuffled := append([]Transaction(nil), ledger...)
		r.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		SortTransactions(shuffled)

		got, err := FoldBalance(NewBalanceCheckpoint(uuid.Nil), shuffled)
		require.NoError(t, err)
		assert.True(t, want.AccountBalance.Equal(got.AccountBalance))
		assert.True(t, want.HoldAmount.Equal(got.HoldAmount))
		assert.Equal(t, want.HighWaterMark(), got.HighWaterMark())
	}
}

func TestFoldBalance_HighWaterMarkMonotonic(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	ledger := randomLedger(r, 30)

	cp := NewBalanceCheckpoint(uuid.Nil)
	for i := 0; i < len(ledger); i += 7 {
		end := i + 7
		if end > len(ledger) {
			end = len(ledger)
		}
		next, err := FoldBalance(cp, ledger[i:end])
		require.NoError(t, err)
		require.True(t, next.Advanced(cp))
		if prev := cp.HighWaterMark(); prev != nil {
			assert.False(t, next.HighWaterMark().Before(*prev))
		}
		cp = next
	}
}

func TestAccountingCheckpoint_Advance(t *testing.T) {
	cp := NewAccountingCheckpoint(uuid.New())
	assert.Nil(t, cp.HighWaterMark())

	tx := txn(4, TransactionTypeDeposit, "1")
	cp.Advance(&tx)

	require.NotNil(t, cp.HighWaterMark())
	assert.Equal(t, tx.OrderKey(), *cp.HighWaterMark())
}
