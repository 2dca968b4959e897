// Package memory keeps ledger entries in process memory. It backs the
// single-binary deployment and tests that do not need PostgreSQL.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/usecase"
)

var errForeignTx = errors.New("memory: transaction was not started by this store")

// Store holds committed ledger entries keyed by entry identifier.
type Store struct {
	mu      sync.RWMutex
	entries map[string]domain.LedgerEntry
	nextID  int64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]domain.LedgerEntry)}
}

// Count returns the number of committed entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager over store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(_ context.Context) (usecase.Transaction, error) {
	return &Tx{store: m.store}, nil
}

// Tx stages writes until Commit publishes them all at once.
type Tx struct {
	store  *Store
	staged []domain.LedgerEntry
	done   bool
}

// Commit publishes every staged entry, or none if any identifier is
// already taken.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return errors.New("memory: transaction already finished")
	}
	t.done = true

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for _, e := range t.staged {
		if _, ok := t.store.entries[e.EntryID]; ok {
			return fmt.Errorf("%w: %s", domain.ErrConflict, e.EntryID)
		}
	}

	for _, e := range t.staged {
		t.store.entries[e.EntryID] = e
	}
	t.staged = nil

	return nil
}

// Rollback discards staged entries. Rolling back a finished transaction
// is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	t.done = true
	t.staged = nil
	return nil
}

func (t *Tx) staging(entryID string) bool {
	for _, e := range t.staged {
		if e.EntryID == entryID {
			return true
		}
	}
	return false
}

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	store *Store
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(store *Store) *LedgerEntryRepository {
	return &LedgerEntryRepository{store: store}
}

// SaveAll stages entries in tx and assigns their surrogate keys.
func (r *LedgerEntryRepository) SaveAll(_ context.Context, tx usecase.Transaction, entries []*domain.LedgerEntry) error {
	mtx, ok := tx.(*Tx)
	if !ok || mtx.store != r.store {
		return errForeignTx
	}
	if mtx.done {
		return errors.New("memory: transaction already finished")
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, entry := range entries {
		if _, exists := r.store.entries[entry.EntryID]; exists || mtx.staging(entry.EntryID) {
			return fmt.Errorf("%w: %s", domain.ErrConflict, entry.EntryID)
		}

		r.store.nextID++
		entry.ID = r.store.nextID
		entry.Time = entry.Time.UTC()
		mtx.staged = append(mtx.staged, *entry)
	}

	return nil
}

// GetByEntryID retrieves a committed entry by its entry identifier.
func (r *LedgerEntryRepository) GetByEntryID(_ context.Context, entryID string) (*domain.LedgerEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entry, ok := r.store.entries[entryID]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	return &entry, nil
}
