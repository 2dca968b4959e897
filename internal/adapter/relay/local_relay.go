package relay

import (
	"context"
	"encoding/json"

	"github.com/iho/cipherledger/internal/adapter/http/dto"
	"github.com/iho/cipherledger/internal/domain"
)

// Materializer persists an encoded batch.
type Materializer interface {
	Materialize(ctx context.Context, batch domain.EncryptedFieldBatch) ([]*domain.LedgerEntry, error)
}

// LocalRelay implements usecase.Relay by materializing in-process. It
// returns the same envelope the create endpoint would.
type LocalRelay struct {
	materializer Materializer
}

// NewLocalRelay creates a new LocalRelay.
func NewLocalRelay(materializer Materializer) *LocalRelay {
	return &LocalRelay{materializer: materializer}
}

// Forward materializes batch. Materializer errors are returned unchanged.
func (r *LocalRelay) Forward(ctx context.Context, batch domain.EncryptedFieldBatch) (json.RawMessage, error) {
	entries, err := r.materializer.Materialize(ctx, batch)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(dto.Success(dto.TransactionsFromDomain(entries)))
	if err != nil {
		return nil, err
	}

	return raw, nil
}
