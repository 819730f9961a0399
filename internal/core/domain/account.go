package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatus represents the state of a current account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusInactive AccountStatus = "INACTIVE"
	AccountStatusClosed   AccountStatus = "CLOSED"
)

// AccountingRule selects how a product's accounts post to the general ledger.
type AccountingRule string

const (
	AccountingRuleNone      AccountingRule = "NONE"
	AccountingRuleCashBased AccountingRule = "CASH_BASED"
)

// Account is a current account joined with the product settings this engine
// needs. It is reference data; the engine never writes it.
type Account struct {
	ID                 uuid.UUID       `json:"id"`
	AccountNo          string          `json:"account_no"`
	Currency           string          `json:"currency"`
	Status             AccountStatus   `json:"status"`
	ProductID          uuid.UUID       `json:"product_id"`
	Policy             PolicyKind      `json:"balance_calculation_type"`
	AccountingRule     AccountingRule  `json:"accounting_rule"`
	AllowOverdraft     bool            `json:"allow_overdraft"`
	OverdraftLimit     decimal.Decimal `json:"overdraft_limit"`
	MinRequiredBalance decimal.Decimal `json:"min_required_balance"`
}

// IsActive returns true if the account accepts transactions.
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// IsCashBased returns true if the account's product posts to the GL.
func (a *Account) IsCashBased() bool {
	return a.AccountingRule == AccountingRuleCashBased
}

// ConsistencyPolicy resolves the product's policy strategy.
func (a *Account) ConsistencyPolicy() (ConsistencyPolicy, error) {
	return PolicyFor(a.Policy)
}

// AvailableFloor is the lowest available balance a withdrawal or hold may
// leave behind.
func (a *Account) AvailableFloor() decimal.Decimal {
	if a.AllowOverdraft {
		return a.OverdraftLimit.Neg()
	}
	return a.MinRequiredBalance
}

// GLMapping holds a product's general ledger account codes per role.
type GLMapping struct {
	ProductID        uuid.UUID `json:"product_id"`
	Reference        string    `json:"reference"`
	Control          string    `json:"control"`
	OverdraftControl string    `json:"overdraft_control"`
	IncomeFromFees   string    `json:"income_from_fees"`
	// PaymentTypeReference overrides Reference for transactions carrying the
	// given payment type (the fund source account of that payment channel).
	PaymentTypeReference map[int64]string `json:"payment_type_reference,omitempty"`
}

// ReferenceFor returns the REFERENCE account to use for paymentTypeID.
func (m *GLMapping) ReferenceFor(paymentTypeID *int64) string {
	if paymentTypeID != nil {
		if ref, ok := m.PaymentTypeReference[*paymentTypeID]; ok {
			return ref
		}
	}
	return m.Reference
}
