package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement on a current account.
type TransactionType string

const (
	TransactionTypeDeposit       TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal    TransactionType = "WITHDRAWAL"
	TransactionTypeWithdrawalFee TransactionType = "WITHDRAWAL_FEE"
	TransactionTypeAmountHold    TransactionType = "AMOUNT_HOLD"
	TransactionTypeAmountRelease TransactionType = "AMOUNT_RELEASE"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeWithdrawalFee,
		TransactionTypeAmountHold, TransactionTypeAmountRelease:
		return true
	}
	return false
}

// IsCredit reports whether t increases the account balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeDeposit
}

// IsDebit reports whether t decreases the account balance.
func (t TransactionType) IsDebit() bool {
	return t == TransactionTypeWithdrawal || t == TransactionTypeWithdrawalFee
}

// IsMonetary reports whether t moves money and therefore posts to the GL.
// Holds and releases only reserve funds.
func (t TransactionType) IsMonetary() bool {
	return t.IsCredit() || t.IsDebit()
}

// ReducesAvailable reports whether t lowers the available balance.
func (t TransactionType) ReducesAvailable() bool {
	return t.IsDebit() || t == TransactionTypeAmountHold
}

// Transaction is an immutable ledger entry. It is never updated or deleted
// once appended.
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionDate time.Time       `json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
	PaymentTypeID   *int64          `json:"payment_type_id,omitempty"`
}

// OrderKey returns the ledger position of t.
func (t *Transaction) OrderKey() OrderKey {
	return OrderKey{CreatedAt: t.CreatedAt, TxnID: t.ID}
}

// OrderKey is a position in an account's ledger. Transactions are totally
// ordered by (CreatedAt, TxnID) ascending.
type OrderKey struct {
	CreatedAt time.Time `json:"created_at"`
	TxnID     uuid.UUID `json:"txn_id"`
}

// Compare returns -1, 0 or +1.
func (k OrderKey) Compare(other OrderKey) int {
	if k.CreatedAt.Before(other.CreatedAt) {
		return -1
	}
	if k.CreatedAt.After(other.CreatedAt) {
		return 1
	}
	for i := range k.TxnID {
		if k.TxnID[i] != other.TxnID[i] {
			if k.TxnID[i] < other.TxnID[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Before reports whether k sorts strictly before other.
func (k OrderKey) Before(other OrderKey) bool {
	return k.Compare(other) < 0
}

// SortTransactions sorts txns in place into ledger order.
func SortTransactions(txns []Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		return txns[i].OrderKey().Before(txns[j].OrderKey())
	})
}

// LedgerTimestamp normalizes t to the precision stored by PostgreSQL so the
// in-process order matches the database order.
func LedgerTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
