// Package memory is an in-process implementation of every storage port.
// It mirrors the PostgreSQL adapter closely enough for engine-level tests:
// row locks taken by GetByIDForUpdate are held until the transaction ends,
// writes made inside a transaction are undone on Rollback, and checkpoint
// saves follow the same optimistic versioning.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"current-account-ledger/internal/core/domain"
	"current-account-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Store holds all tables behind one mutex.
type Store struct {
	mu sync.RWMutex

	accounts   map[uuid.UUID]domain.Account
	mappings   map[uuid.UUID]domain.GLMapping
	ledger     map[uuid.UUID][]domain.Transaction
	txnIndex   map[uuid.UUID]domain.Transaction
	balances   map[uuid.UUID]domain.BalanceCheckpoint
	accounting map[uuid.UUID]domain.AccountingCheckpoint
	journal    map[uuid.UUID][]domain.JournalEntry
	journalKey map[journalKey]struct{}

	rowLocks map[uuid.UUID]*sync.Mutex
}

type journalKey struct {
	txnID     uuid.UUID
	glAccount string
	entryType domain.EntryType
	overdraft bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		accounts:   make(map[uuid.UUID]domain.Account),
		mappings:   make(map[uuid.UUID]domain.GLMapping),
		ledger:     make(map[uuid.UUID][]domain.Transaction),
		txnIndex:   make(map[uuid.UUID]domain.Transaction),
		balances:   make(map[uuid.UUID]domain.BalanceCheckpoint),
		accounting: make(map[uuid.UUID]domain.AccountingCheckpoint),
		journal:    make(map[uuid.UUID][]domain.JournalEntry),
		journalKey: make(map[journalKey]struct{}),
		rowLocks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

// PutAccount seeds reference data.
func (s *Store) PutAccount(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.ID] = a
}

// PutGLMapping seeds the GL mapping of a product.
func (s *Store) PutGLMapping(m domain.GLMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings[m.ProductID] = m
}

// Accounts returns the account repository view of the store.
func (s *Store) Accounts() *AccountRepo { return &AccountRepo{s} }

func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s} }

func (s *Store) BalanceCheckpoints() *BalanceCheckpointRepo { return &BalanceCheckpointRepo{s} }

func (s *Store) AccountingCheckpoints() *AccountingCheckpointRepo {
	return &AccountingCheckpointRepo{s}
}

func (s *Store) Journal() *JournalRepo { return &JournalRepo{s} }

func (s *Store) Transactor() *Transactor { return &Transactor{s} }

// record registers an undo step when the write runs inside a memory tx.
func record(tx pgx.Tx, undo func()) error {
	if tx == nil {
		return nil
	}
	mt, ok := tx.(*Tx)
	if !ok {
		return fmt.Errorf("memory store: foreign transaction %T", tx)
	}
	return mt.push(undo)
}

// --- Transactor ---

// Transactor implements ports.DBTransactor.
type Transactor struct{ s *Store }

func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{store: t.s}, nil
}

// Tx is a pgx.Tx whose only working methods are Commit and Rollback. The
// embedded interface is nil; repositories never call through it.
type Tx struct {
	pgx.Tx

	store *Store
	mu    sync.Mutex
	undo  []func()
	locks []*sync.Mutex
	held  map[uuid.UUID]bool
	done  bool
}

func (t *Tx) push(undo func()) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.undo = append(t.undo, undo)
	return nil
}

// Commit keeps every write and releases the row locks.
func (t *Tx) Commit(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.finish()
	return nil
}

// Rollback reverts writes in reverse order and releases the row locks.
func (t *Tx) Rollback(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.store.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.store.mu.Unlock()
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.done = true
	t.undo = nil
	for _, l := range t.locks {
		l.Unlock()
	}
	t.locks = nil
}

// lockRow blocks until the row lock of id is free, then holds it for the
// rest of the transaction.
func (t *Tx) lockRow(ctx context.Context, id uuid.UUID) error {
	t.mu.Lock()
	if t.done {
		t.mu.Unlock()
		return pgx.ErrTxClosed
	}
	if t.held[id] {
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()

	t.store.mu.Lock()
	l, ok := t.store.rowLocks[id]
	if !ok {
		l = &sync.Mutex{}
		t.store.rowLocks[id] = l
	}
	t.store.mu.Unlock()

	acquired := make(chan struct{})
	go func() {
		l.Lock()
		close(acquired)
	}()
	select {
	case <-acquired:
	case <-ctx.Done():
		go func() {
			<-acquired
			l.Unlock()
		}()
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.held == nil {
		t.held = make(map[uuid.UUID]bool)
	}
	t.held[id] = true
	t.locks = append(t.locks, l)
	return nil
}

// --- Accounts ---

// AccountRepo implements ports.AccountRepository.
type AccountRepo struct{ s *Store }

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (r *AccountRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Account, error) {
	if mt, ok := tx.(*Tx); ok {
		if err := mt.lockRow(ctx, id); err != nil {
			return nil, fmt.Errorf("lock account: %w", err)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *AccountRepo) GetGLMapping(ctx context.Context, productID uuid.UUID) (*domain.GLMapping, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.mappings[productID]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

// --- Ledger ---

// LedgerRepo implements ports.LedgerRepository. Each account's slice is
// kept in (created_at, id) order.
type LedgerRepo struct{ s *Store }

func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[txn.AccountID]; !ok {
		return fmt.Errorf("insert transaction: account %s does not exist", txn.AccountID)
	}
	if _, dup := r.s.txnIndex[txn.ID]; dup {
		return fmt.Errorf("insert transaction: duplicate id %s", txn.ID)
	}

	rows := r.s.ledger[txn.AccountID]
	key := txn.OrderKey()
	i := sort.Search(len(rows), func(i int) bool { return key.Before(rows[i].OrderKey()) })
	rows = append(rows, domain.Transaction{})
	copy(rows[i+1:], rows[i:])
	rows[i] = *txn
	r.s.ledger[txn.AccountID] = rows
	r.s.txnIndex[txn.ID] = *txn

	id, accountID := txn.ID, txn.AccountID
	return record(tx, func() {
		delete(r.s.txnIndex, id)
		rows := r.s.ledger[accountID]
		for j := range rows {
			if rows[j].ID == id {
				r.s.ledger[accountID] = append(rows[:j], rows[j+1:]...)
				return
			}
		}
	})
}

func (r *LedgerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.txnIndex[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *LedgerRepo) ReadFrom(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, after *domain.OrderKey) ([]domain.Transaction, error) {
	return r.read(accountID, after, nil), nil
}

func (r *LedgerRepo) ReadTill(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, till time.Time) ([]domain.Transaction, error) {
	return r.read(accountID, nil, &till), nil
}

func (r *LedgerRepo) ReadFromTill(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, after *domain.OrderKey, till time.Time) ([]domain.Transaction, error) {
	return r.read(accountID, after, &till), nil
}

func (r *LedgerRepo) ReadAll(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) ([]domain.Transaction, error) {
	return r.read(accountID, nil, nil), nil
}

func (r *LedgerRepo) LastKey(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.OrderKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rows := r.s.ledger[accountID]
	if len(rows) == 0 {
		return nil, nil
	}
	key := rows[len(rows)-1].OrderKey()
	return &key, nil
}

func (r *LedgerRepo) read(accountID uuid.UUID, after *domain.OrderKey, till *time.Time) []domain.Transaction {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Transaction
	for _, t := range r.s.ledger[accountID] {
		if after != nil && t.OrderKey().Compare(*after) <= 0 {
			continue
		}
		if till != nil && t.CreatedAt.After(*till) {
			break
		}
		out = append(out, t)
	}
	return out
}

// hasTxnBetween reports whether the account has a transaction after the key
// and at or before till. Caller holds s.mu.
func (s *Store) hasTxnBetween(accountID uuid.UUID, after *domain.OrderKey, till time.Time) bool {
	for _, t := range s.ledger[accountID] {
		if t.CreatedAt.After(till) {
			return false
		}
		if after == nil || t.OrderKey().Compare(*after) > 0 {
			return true
		}
	}
	return false
}

// pageAccounts returns up to limit account ids greater than afterID, in uuid
// byte order, for which keep returns true. Caller holds s.mu.
func (s *Store) pageAccounts(afterID uuid.UUID, limit int, keep func(a domain.Account) bool) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.accounts))
	for id := range s.accounts {
		if bytes.Compare(id[:], afterID[:]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })

	var out []uuid.UUID
	for _, id := range ids {
		if len(out) == limit {
			break
		}
		if keep(s.accounts[id]) {
			out = append(out, id)
		}
	}
	return out
}

// --- Balance checkpoints ---

// BalanceCheckpointRepo implements ports.BalanceCheckpointRepository.
type BalanceCheckpointRepo struct{ s *Store }

func (r *BalanceCheckpointRepo) Get(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.BalanceCheckpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cp, ok := r.s.balances[accountID]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

func (r *BalanceCheckpointRepo) Save(ctx context.Context, tx pgx.Tx, cp *domain.BalanceCheckpoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, exists := r.s.balances[cp.AccountID]
	switch {
	case cp.Version == 0 && exists,
		cp.Version != 0 && (!exists || prev.Version != cp.Version):
		return conflict("balance", cp.AccountID, cp.Version)
	case exists && prev.HighWaterMark() != nil &&
		(cp.HighWaterMark() == nil || cp.HighWaterMark().Before(*prev.HighWaterMark())):
		return conflict("balance", cp.AccountID, cp.Version)
	}

	stored := *cp
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	r.s.balances[cp.AccountID] = stored

	accountID := cp.AccountID
	if err := record(tx, func() {
		if exists {
			r.s.balances[accountID] = prev
		} else {
			delete(r.s.balances, accountID)
		}
	}); err != nil {
		return err
	}

	cp.Version, cp.UpdatedAt = stored.Version, stored.UpdatedAt
	return nil
}

func (r *BalanceCheckpointRepo) FindStaleAccounts(ctx context.Context, till time.Time, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.pageAccounts(afterID, limit, func(a domain.Account) bool {
		cp, ok := r.s.balances[a.ID]
		if !ok {
			return r.s.hasTxnBetween(a.ID, nil, till)
		}
		if a.Policy == domain.PolicyStrict {
			return false
		}
		return r.s.hasTxnBetween(a.ID, cp.HighWaterMark(), till)
	}), nil
}

// --- Accounting checkpoints ---

// AccountingCheckpointRepo implements ports.AccountingCheckpointRepository.
type AccountingCheckpointRepo struct{ s *Store }

func (r *AccountingCheckpointRepo) Get(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.AccountingCheckpoint, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cp, ok := r.s.accounting[accountID]
	if !ok {
		return nil, nil
	}
	return &cp, nil
}

func (r *AccountingCheckpointRepo) Save(ctx context.Context, tx pgx.Tx, cp *domain.AccountingCheckpoint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	prev, exists := r.s.accounting[cp.AccountID]
	if (cp.Version == 0 && exists) || (cp.Version != 0 && (!exists || prev.Version != cp.Version)) {
		return conflict("accounting", cp.AccountID, cp.Version)
	}

	stored := *cp
	stored.Version++
	stored.UpdatedAt = time.Now().UTC()
	r.s.accounting[cp.AccountID] = stored

	accountID := cp.AccountID
	if err := record(tx, func() {
		if exists {
			r.s.accounting[accountID] = prev
		} else {
			delete(r.s.accounting, accountID)
		}
	}); err != nil {
		return err
	}

	cp.Version, cp.UpdatedAt = stored.Version, stored.UpdatedAt
	return nil
}

func (r *AccountingCheckpointRepo) FindUnpostedAccounts(ctx context.Context, till time.Time, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.pageAccounts(afterID, limit, func(a domain.Account) bool {
		if !a.IsActive() || !a.IsCashBased() {
			return false
		}
		var hwm *domain.OrderKey
		if cp, ok := r.s.accounting[a.ID]; ok {
			hwm = cp.HighWaterMark()
		}
		return r.s.hasTxnBetween(a.ID, hwm, till)
	}), nil
}

// --- Journal ---

// JournalRepo implements ports.JournalRepository.
type JournalRepo struct{ s *Store }

func (r *JournalRepo) Create(ctx context.Context, tx pgx.Tx, entries []domain.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var added []journalKey
	for _, e := range entries {
		k := journalKey{e.TransactionID, e.GLAccount, e.EntryType, e.Overdraft}
		if _, dup := r.s.journalKey[k]; dup {
			continue
		}
		r.s.journalKey[k] = struct{}{}
		r.s.journal[e.AccountID] = append(r.s.journal[e.AccountID], e)
		added = append(added, k)
	}

	return record(tx, func() {
		undone := make(map[journalKey]bool, len(added))
		for _, k := range added {
			delete(r.s.journalKey, k)
			undone[k] = true
		}
		for accountID, rows := range r.s.journal {
			kept := rows[:0]
			for _, e := range rows {
				if !undone[journalKey{e.TransactionID, e.GLAccount, e.EntryType, e.Overdraft}] {
					kept = append(kept, e)
				}
			}
			r.s.journal[accountID] = kept
		}
	})
}

func (r *JournalRepo) ListByAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.JournalEntry, error) {
	r.s.mu.RLock()
	rows := append([]domain.JournalEntry(nil), r.s.journal[accountID]...)
	r.s.mu.RUnlock()

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if c := bytes.Compare(a.TransactionID[:], b.TransactionID[:]); c != 0 {
			return c > 0
		}
		if a.Overdraft != b.Overdraft {
			return a.Overdraft
		}
		return a.EntryType > b.EntryType
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Entries returns every journal entry of the account in insertion order.
func (r *JournalRepo) Entries(accountID uuid.UUID) []domain.JournalEntry {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]domain.JournalEntry(nil), r.s.journal[accountID]...)
}

func conflict(kind string, accountID uuid.UUID, version int64) error {
	return apperror.ErrCheckpointConflict(
		fmt.Errorf("%s checkpoint %s: version %d is stale", kind, accountID, version))
}
