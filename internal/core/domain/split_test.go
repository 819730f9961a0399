package domain

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	normalPair    = AccountPair{Debit: "CTL", Credit: "REF"}
	overdraftPair = AccountPair{Debit: "ODC", Credit: "REF"}
)

func TestSplitPosting(t *testing.T) {
	tests := []struct {
		name      string
		running   string
		amount    string
		overdraft string // "" when no overdraft segment
		normal    string // "" when no normal segment
	}{
		{"positive running balance", "100", "50", "", "50"},
		{"zero running balance", "0", "50", "", "50"},
		{"overdrawn by less than amount", "-20", "50", "20", "30"},
		{"overdrawn by more than amount", "-80", "50", "50", ""},
		{"overdrawn by exactly amount", "-50", "50", "50", ""},
		{"zero amount", "-10", "0", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := SplitPosting(dec(tt.running), dec(tt.amount), normalPair, overdraftPair)

			var gotOverdraft, gotNormal *PostingSegment
			for i := range segs {
				if segs[i].Overdraft {
					gotOverdraft = &segs[i]
				} else {
					gotNormal = &segs[i]
				}
			}

			if tt.overdraft == "" {
				assert.Nil(t, gotOverdraft)
			} else {
				require.NotNil(t, gotOverdraft)
				assert.True(t, dec(tt.overdraft).Equal(gotOverdraft.Amount))
				assert.Equal(t, overdraftPair, gotOverdraft.Pair)
			}
			if tt.normal == "" {
				assert.Nil(t, gotNormal)
			} else {
				require.NotNil(t, gotNormal)
				assert.True(t, dec(tt.normal).Equal(gotNormal.Amount))
				assert.Equal(t, normalPair, gotNormal.Pair)
			}
		})
	}
}

func TestSplitPosting_OverdraftSegmentFirst(t *testing.T) {
	segs := SplitPosting(dec("-20"), dec("50"), normalPair, overdraftPair)
	require.Len(t, segs, 2)
	assert.True(t, segs[0].Overdraft)
	assert.False(t, segs[1].Overdraft)
}

func TestSplitPosting_Conservation(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		running := decimal.New(int64(r.Intn(20001)-10000), -2)
		amount := decimal.New(int64(r.Intn(10001)), -2)

		segs := SplitPosting(running, amount, normalPair, overdraftPair)

		sum := decimal.Zero
		overdraftPosted := decimal.Zero
		for _, s := range segs {
			assert.True(t, s.Amount.IsPositive())
			sum = sum.Add(s.Amount)
			if s.Overdraft {
				overdraftPosted = overdraftPosted.Add(s.Amount)
			}
		}
		bound := decimal.Max(decimal.Zero, running.Neg())

		assert.True(t, amount.Equal(sum), "running=%s amount=%s", running, amount)
		assert.True(t, overdraftPosted.LessThanOrEqual(bound), "running=%s amount=%s", running, amount)
	}
}

func TestApplyRunning(t *testing.T) {
	dep := Transaction{Type: TransactionTypeDeposit, Amount: dec("10")}
	wd := Transaction{Type: TransactionTypeWithdrawal, Amount: dec("50")}
	fee := Transaction{Type: TransactionTypeWithdrawalFee, Amount: dec("1")}
	hold := Transaction{Type: TransactionTypeAmountHold, Amount: dec("99")}

	assert.True(t, dec("-10").Equal(ApplyRunning(dec("-20"), &dep)))
	assert.True(t, dec("-70").Equal(ApplyRunning(dec("-20"), &wd)))
	assert.True(t, dec("-21").Equal(ApplyRunning(dec("-20"), &fee)))
	assert.True(t, dec("-20").Equal(ApplyRunning(dec("-20"), &hold)))
}
