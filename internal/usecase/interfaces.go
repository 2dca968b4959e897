package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iho/cipherledger/internal/domain"
)

// LedgerEntryRepository defines data access for ledger entries.
type LedgerEntryRepository interface {
	// SaveAll inserts entries inside tx and assigns their surrogate keys.
	// A repeated entry identifier fails with domain.ErrConflict.
	SaveAll(ctx context.Context, tx Transaction, entries []*domain.LedgerEntry) error
	GetByEntryID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Relay forwards an encoded batch to the materialization endpoint and
// returns its response body untouched.
type Relay interface {
	Forward(ctx context.Context, batch domain.EncryptedFieldBatch) (json.RawMessage, error)
}

// EntryCache caches ledger entries by entry identifier.
type EntryCache interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, entryID string) (*domain.LedgerEntry, error)
	Set(ctx context.Context, entry *domain.LedgerEntry, ttl time.Duration) error
}

// Recorder receives pipeline measurements.
type Recorder interface {
	TransferEncoded()
	TransferMaterialized(duration time.Duration)
	PipelineFailed(stage string, kind domain.Kind)
}

// CacheRecorder receives entry cache lookup outcomes.
type CacheRecorder interface {
	CacheHit()
	CacheMiss()
}
