package domain

import "fmt"

// PolicyKind names a product's balance consistency policy.
type PolicyKind string

const (
	PolicyLazy        PolicyKind = "LAZY"
	PolicyStrictDebit PolicyKind = "STRICT_DEBIT"
	PolicyStrict      PolicyKind = "STRICT"
)

// ActionKind is an account lifecycle action that may run against a stale
// checkpoint.
type ActionKind string

const (
	ActionCreate      ActionKind = "CREATE"
	ActionClose       ActionKind = "CLOSE"
	ActionBalanceJob  ActionKind = "BALANCE_JOB"
	ActionPostingJob  ActionKind = "POSTING_JOB"
	ActionTransaction ActionKind = "TRANSACTION"
)

// Action is a lifecycle action. TxType is set only for ActionTransaction.
type Action struct {
	Kind   ActionKind
	TxType TransactionType
}

// TransactionAction builds the action for submitting a transaction of type t.
func TransactionAction(t TransactionType) Action {
	return Action{Kind: ActionTransaction, TxType: t}
}

// ConsistencyPolicy decides when a balance checkpoint must be written
// synchronously.
type ConsistencyPolicy interface {
	Kind() PolicyKind
	// IsPersist reports whether a transaction of type t must be folded into
	// the checkpoint at write time.
	IsPersist(t TransactionType) bool
	// HasDelay reports whether action may proceed against a possibly stale
	// checkpoint.
	HasDelay(action Action) bool
	// IsAlwaysCurrent reports whether checkpoints of this policy are current
	// by construction, so batch jobs never need to catch them up.
	IsAlwaysCurrent() bool
}

// PolicyFor returns the strategy for kind.
func PolicyFor(kind PolicyKind) (ConsistencyPolicy, error) {
	switch kind {
	case PolicyLazy:
		return lazyPolicy{}, nil
	case PolicyStrictDebit:
		return strictDebitPolicy{}, nil
	case PolicyStrict:
		return strictPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown consistency policy %q", kind)
}

// Lazy leaves checkpoints to the batch job.
type lazyPolicy struct{}

func (lazyPolicy) Kind() PolicyKind { return PolicyLazy }
func (lazyPolicy) IsPersist(TransactionType) bool { return false }
func (lazyPolicy) IsAlwaysCurrent() bool { return false }
func (lazyPolicy) HasDelay(a Action) bool {
	return a.Kind != ActionCreate && a.Kind != ActionClose
}

// Strict-debit keeps checkpoints current for everything that can push the
// account toward its limits.
type strictDebitPolicy struct{}

func (strictDebitPolicy) Kind() PolicyKind { return PolicyStrictDebit }
func (strictDebitPolicy) IsAlwaysCurrent() bool { return false }

// IsPersist covers withdrawals and fees, plus AMOUNT_HOLD: a hold leaves the
// balance untouched but lowers the available balance like a debit.
func (strictDebitPolicy) IsPersist(t TransactionType) bool {
	return t.ReducesAvailable()
}

func (p strictDebitPolicy) HasDelay(a Action) bool {
	return a.Kind == ActionTransaction && !p.IsPersist(a.TxType)
}

type strictPolicy struct{}

func (strictPolicy) Kind() PolicyKind { return PolicyStrict }
func (strictPolicy) IsPersist(TransactionType) bool { return true }
func (strictPolicy) HasDelay(Action) bool { return false }
func (strictPolicy) IsAlwaysCurrent() bool { return true }
