package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType is the side of a journal entry.
type EntryType string

const (
	EntryTypeDebit  EntryType = "DEBIT"
	EntryTypeCredit EntryType = "CREDIT"
)

// JournalEntry is one side of a GL posting. Entries are append-only and are
// produced in DEBIT/CREDIT pairs, one pair per posting segment.
type JournalEntry struct {
	ID              uuid.UUID       `json:"id"`
	AccountID       uuid.UUID       `json:"account_id"`
	GLAccount       string          `json:"gl_account"`
	EntryType       EntryType       `json:"entry_type"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	TransactionID   uuid.UUID       `json:"transaction_id"`
	TransactionDate time.Time       `json:"transaction_date"`
	SubmittedOnDate time.Time       `json:"submitted_on_date"`
	Overdraft       bool            `json:"overdraft"`
	CreatedAt       time.Time       `json:"created_at"`
}

// AccountPair is the (debit, credit) GL accounts of one posting.
type AccountPair struct {
	Debit  string
	Credit string
}

// PostingPairs resolves the normal and overdraft account pairs for a
// monetary transaction.
func PostingPairs(t *Transaction, m *GLMapping) (normal, overdraft AccountPair, err error) {
	ref := m.ReferenceFor(t.PaymentTypeID)
	switch t.Type {
	case TransactionTypeDeposit:
		normal = AccountPair{Debit: ref, Credit: m.Control}
		overdraft = AccountPair{Debit: ref, Credit: m.OverdraftControl}
	case TransactionTypeWithdrawal:
		normal = AccountPair{Debit: m.Control, Credit: ref}
		overdraft = AccountPair{Debit: m.OverdraftControl, Credit: ref}
	case TransactionTypeWithdrawalFee:
		normal = AccountPair{Debit: m.Control, Credit: m.IncomeFromFees}
		overdraft = AccountPair{Debit: m.OverdraftControl, Credit: m.IncomeFromFees}
	default:
		return AccountPair{}, AccountPair{}, &UnsupportedTransactionError{TransactionID: t.ID, Type: t.Type}
	}
	return normal, overdraft, nil
}

// PostingSegment is one part of a split posting.
type PostingSegment struct {
	Pair      AccountPair
	Amount    decimal.Decimal
	Overdraft bool
}

// SplitPosting divides amount between the overdraft pair and the normal pair.
// The overdraft pair absorbs up to max(0, -runningBefore); the rest goes to
// the normal pair. Segment amounts always sum to amount.
func SplitPosting(runningBefore, amount decimal.Decimal, normal, overdraft AccountPair) []PostingSegment {
	segments := make([]PostingSegment, 0, 2)
	remaining := amount
	if overdrawn := runningBefore.Neg(); overdrawn.IsPositive() {
		posted := decimal.Min(remaining, overdrawn)
		if posted.IsPositive() {
			segments = append(segments, PostingSegment{Pair: overdraft, Amount: posted, Overdraft: true})
			remaining = remaining.Sub(posted)
		}
	}
	if remaining.IsPositive() {
		segments = append(segments, PostingSegment{Pair: normal, Amount: remaining})
	}
	return segments
}

// ApplyRunning returns the running GL balance after t.
func ApplyRunning(running decimal.Decimal, t *Transaction) decimal.Decimal {
	switch {
	case t.Type.IsCredit():
		return running.Add(t.Amount)
	case t.Type.IsDebit():
		return running.Sub(t.Amount)
	}
	return running
}

// Entries expands a segment into its DEBIT and CREDIT journal entries.
func (s PostingSegment) Entries(t *Transaction, currency string, submittedOn time.Time) []JournalEntry {
	base := JournalEntry{
		AccountID:       t.AccountID,
		Amount:          s.Amount,
		Currency:        currency,
		TransactionID:   t.ID,
		TransactionDate: t.TransactionDate,
		SubmittedOnDate: submittedOn,
		Overdraft:       s.Overdraft,
	}
	debit, credit := base, base
	debit.GLAccount, debit.EntryType = s.Pair.Debit, EntryTypeDebit
	credit.GLAccount, credit.EntryType = s.Pair.Credit, EntryTypeCredit
	return []JournalEntry{debit, credit}
}
