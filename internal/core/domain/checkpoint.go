package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BalanceCheckpoint is the durable materialized balance of one account.
// Folding every transaction up to and including the high-water mark, starting
// from zero, reproduces AccountBalance and HoldAmount exactly.
type BalanceCheckpoint struct {
	AccountID           uuid.UUID       `json:"account_id"`
	AccountBalance      decimal.Decimal `json:"account_balance"`
	HoldAmount          decimal.Decimal `json:"hold_amount"`
	CalculatedTill      *time.Time      `json:"calculated_till,omitempty"`
	CalculatedTillTxnID *uuid.UUID      `json:"calculated_till_txn_id,omitempty"`
	Version             int64           `json:"version"` // 0 = never persisted
	UpdatedAt           time.Time       `json:"updated_at"`
}

// NewBalanceCheckpoint returns the zero checkpoint used when none exists.
func NewBalanceCheckpoint(accountID uuid.UUID) *BalanceCheckpoint {
	return &BalanceCheckpoint{
		AccountID:      accountID,
		AccountBalance: decimal.Zero,
		HoldAmount:     decimal.Zero,
	}
}

// HighWaterMark returns the order key of the last folded transaction, or nil
// when nothing has been folded yet.
func (c *BalanceCheckpoint) HighWaterMark() *OrderKey {
	if c.CalculatedTill == nil || c.CalculatedTillTxnID == nil {
		return nil
	}
	return &OrderKey{CreatedAt: *c.CalculatedTill, TxnID: *c.CalculatedTillTxnID}
}

// IsEmpty reports whether no transaction has ever been folded.
func (c *BalanceCheckpoint) IsEmpty() bool {
	return c.HighWaterMark() == nil
}

// AvailableBalance is the balance minus funds on hold.
func (c *BalanceCheckpoint) AvailableBalance() decimal.Decimal {
	return c.AccountBalance.Sub(c.HoldAmount)
}

// Advanced reports whether c has a high-water mark later than prev.
func (c *BalanceCheckpoint) Advanced(prev *BalanceCheckpoint) bool {
	cur := c.HighWaterMark()
	if cur == nil {
		return false
	}
	old := prev.HighWaterMark()
	return old == nil || old.Before(*cur)
}

// Balance is the read view returned to callers.
func (c *BalanceCheckpoint) Balance() *Balance {
	return &Balance{
		AccountID:           c.AccountID,
		AccountBalance:      c.AccountBalance,
		HoldAmount:          c.HoldAmount,
		AvailableBalance:    c.AvailableBalance(),
		CalculatedTill:      c.CalculatedTill,
		CalculatedTillTxnID: c.CalculatedTillTxnID,
	}
}

// Balance is a materialized, current view of an account's balance.
type Balance struct {
	AccountID           uuid.UUID       `json:"account_id"`
	AccountBalance      decimal.Decimal `json:"account_balance"`
	HoldAmount          decimal.Decimal `json:"hold_amount"`
	AvailableBalance    decimal.Decimal `json:"available_balance"`
	CalculatedTill      *time.Time      `json:"calculated_till"`
	CalculatedTillTxnID *uuid.UUID      `json:"calculated_till_txn_id,omitempty"`
}

// FoldBalance applies txns, which must be in ledger order and strictly after
// the checkpoint's high-water mark, onto a copy of cp. Holds and releases only
// move HoldAmount; AccountBalance is never touched by them.
func FoldBalance(cp *BalanceCheckpoint, txns []Transaction) (*BalanceCheckpoint, error) {
	out := *cp
	for i := range txns {
		t := &txns[i]
		switch t.Type {
		case TransactionTypeDeposit:
			out.AccountBalance = out.AccountBalance.Add(t.Amount)
		case TransactionTypeWithdrawal, TransactionTypeWithdrawalFee:
			out.AccountBalance = out.AccountBalance.Sub(t.Amount)
		case TransactionTypeAmountHold:
			out.HoldAmount = out.HoldAmount.Add(t.Amount)
		case TransactionTypeAmountRelease:
			out.HoldAmount = out.HoldAmount.Sub(t.Amount)
		default:
			return nil, &UnsupportedTransactionError{TransactionID: t.ID, Type: t.Type}
		}
		createdAt := t.CreatedAt
		id := t.ID
		out.CalculatedTill = &createdAt
		out.CalculatedTillTxnID = &id
	}
	return &out, nil
}

// AccountingCheckpoint is the durable GL posting position of one CASH_BASED
// account. RunningBalance is signed; negative means overdrawn.
type AccountingCheckpoint struct {
	AccountID       uuid.UUID       `json:"account_id"`
	RunningBalance  decimal.Decimal `json:"running_balance"`
	LastPostedTxnID *uuid.UUID      `json:"last_posted_txn_id,omitempty"`
	LastPostedAt    *time.Time      `json:"last_posted_at,omitempty"`
	Version         int64           `json:"version"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewAccountingCheckpoint returns the zero checkpoint used before the first
// posting run.
func NewAccountingCheckpoint(accountID uuid.UUID) *AccountingCheckpoint {
	return &AccountingCheckpoint{AccountID: accountID, RunningBalance: decimal.Zero}
}

// HighWaterMark returns the order key of the last posted transaction.
func (c *AccountingCheckpoint) HighWaterMark() *OrderKey {
	if c.LastPostedTxnID == nil || c.LastPostedAt == nil {
		return nil
	}
	return &OrderKey{CreatedAt: *c.LastPostedAt, TxnID: *c.LastPostedTxnID}
}

// Advance moves the posting position to t.
func (c *AccountingCheckpoint) Advance(t *Transaction) {
	id := t.ID
	at := t.CreatedAt
	c.LastPostedTxnID = &id
	c.LastPostedAt = &at
}

// UnsupportedTransactionError is returned when a fold or posting switch meets
// a type it does not handle.
type UnsupportedTransactionError struct {
	TransactionID uuid.UUID
	Type          TransactionType
}

func (e *UnsupportedTransactionError) Error() string {
	return fmt.Sprintf("unsupported transaction type %q (transaction %s)", e.Type, e.TransactionID)
}
