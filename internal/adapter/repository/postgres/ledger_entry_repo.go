package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/postgres/generated"
	"github.com/iho/cipherledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// LedgerEntryRepository implements usecase.LedgerEntryRepository.
type LedgerEntryRepository struct {
	queries *generated.Queries
}

// NewLedgerEntryRepository creates a new LedgerEntryRepository.
func NewLedgerEntryRepository(pool *pgxpool.Pool) *LedgerEntryRepository {
	return newLedgerEntryRepository(pool)
}

func newLedgerEntryRepository(db generated.DBTX) *LedgerEntryRepository {
	return &LedgerEntryRepository{queries: generated.New(db)}
}

// SaveAll inserts entries within tx, assigning surrogate keys in order.
func (r *LedgerEntryRepository) SaveAll(ctx context.Context, tx usecase.Transaction, entries []*domain.LedgerEntry) error {
	queries := tx.(*Tx).Queries()

	for _, entry := range entries {
		row, err := queries.CreateLedgerEntry(ctx, generated.CreateLedgerEntryParams{
			EntryID:         entry.EntryID,
			Account:         entry.Account,
			AccountKeyID:    entry.AccountKeyID,
			InDebt:          decimalToNumeric(entry.Debit),
			Have:            decimalToNumeric(entry.Credit),
			TransactionTime: timeToPgTimestamptz(entry.Time),
		})
		if err != nil {
			return mapWriteError(err, entry.EntryID)
		}

		entry.ID = row.ID
		entry.Time = row.TransactionTime.Time.UTC()
	}

	return nil
}

// GetByEntryID retrieves an entry by its entry identifier.
func (r *LedgerEntryRepository) GetByEntryID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	row, err := r.queries.GetLedgerEntryByEntryID(ctx, entryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}

	return rowToLedgerEntry(row), nil
}

func mapWriteError(err error, entryID string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: %s", domain.ErrConflict, entryID)
	}
	return err
}

func rowToLedgerEntry(row generated.LedgerEntry) *domain.LedgerEntry {
	return &domain.LedgerEntry{
		ID:           row.ID,
		EntryID:      row.EntryID,
		Account:      row.Account,
		AccountKeyID: row.AccountKeyID,
		Debit:        numericToDecimal(row.InDebt),
		Credit:       numericToDecimal(row.Have),
		Time:         row.TransactionTime.Time.UTC(),
	}
}
