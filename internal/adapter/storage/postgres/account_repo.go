package postgres

import (
	"context"
	"errors"
	"fmt"

	"current-account-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `a.id, a.account_no, a.currency, a.status, a.product_id,
		p.balance_calculation_type, p.accounting_rule, p.allow_overdraft,
		p.overdraft_limit, p.min_required_balance`

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct {
	pool Pool
}

// NewAccountRepo creates a new AccountRepo.
func NewAccountRepo(pool Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

// GetByID fetches an account joined with its product (without locking).
func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a JOIN products p ON p.id = a.product_id
		WHERE a.id = $1`

	a, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return a, nil
}

// GetByIDForUpdate fetches an account and locks its row until tx ends.
// This MUST be called within a transaction.
func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts a JOIN products p ON p.id = a.product_id
		WHERE a.id = $1 FOR UPDATE OF a`

	a, err := scanAccount(tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get account for update: %w", err)
	}
	return a, nil
}

// GetGLMapping loads the GL account codes of a product. Rows with a payment
// type only apply to the REFERENCE role.
func (r *AccountRepo) GetGLMapping(ctx context.Context, productID uuid.UUID) (*domain.GLMapping, error) {
	query := `SELECT role, gl_account, payment_type_id
		FROM product_gl_mappings WHERE product_id = $1`

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get gl mapping: %w", err)
	}
	defer rows.Close()

	m := &domain.GLMapping{ProductID: productID, PaymentTypeReference: map[int64]string{}}
	found := false
	for rows.Next() {
		var (
			role, glAccount string
			paymentTypeID   *int64
		)
		if err := rows.Scan(&role, &glAccount, &paymentTypeID); err != nil {
			return nil, fmt.Errorf("scan gl mapping row: %w", err)
		}
		found = true
		switch {
		case role == "REFERENCE" && paymentTypeID != nil:
			m.PaymentTypeReference[*paymentTypeID] = glAccount
		case role == "REFERENCE":
			m.Reference = glAccount
		case role == "CONTROL":
			m.Control = glAccount
		case role == "OVERDRAFT_CONTROL":
			m.OverdraftControl = glAccount
		case role == "INCOME_FROM_FEES":
			m.IncomeFromFees = glAccount
		default:
			return nil, fmt.Errorf("unknown gl mapping role %q for product %s", role, productID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gl mapping rows: %w", err)
	}
	if !found {
		return nil, nil
	}
	return m, nil
}

// scanAccount returns nil, nil when the row does not exist.
func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.AccountNo, &a.Currency, &a.Status, &a.ProductID,
		&a.Policy, &a.AccountingRule, &a.AllowOverdraft,
		&a.OverdraftLimit, &a.MinRequiredBalance,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}
