package usecase

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
)

// MaterializeUseCase decrypts an encoded batch and persists its legs.
type MaterializeUseCase struct {
	txManager  TransactionManager
	entryRepo  LedgerEntryRepository
	retrier    Retrier
	privateKey *rsa.PrivateKey
	keyring    *encryption.Keyring
	recorder   Recorder
	now        func() time.Time
}

// NewMaterializeUseCase creates a new MaterializeUseCase. retrier and
// recorder may be nil.
func NewMaterializeUseCase(
	txManager TransactionManager,
	entryRepo LedgerEntryRepository,
	retrier Retrier,
	privateKey *rsa.PrivateKey,
	keyring *encryption.Keyring,
	recorder Recorder,
) *MaterializeUseCase {
	return &MaterializeUseCase{
		txManager:  txManager,
		entryRepo:  entryRepo,
		retrier:    retrier,
		privateKey: privateKey,
		keyring:    keyring,
		recorder:   recorderOrNop(recorder),
		now:        time.Now,
	}
}

// Materialize decrypts every field of both legs, seals the account for
// storage and saves the two entries in a single transaction. Either both
// entries are committed or none is.
func (uc *MaterializeUseCase) Materialize(ctx context.Context, batch domain.EncryptedFieldBatch) ([]*domain.LedgerEntry, error) {
	start := time.Now()

	entries, err := uc.materialize(ctx, batch)
	if err != nil {
		kind := domain.KindOf(err)
		uc.recorder.PipelineFailed(StageMaterialize, kind)
		zerolog.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("transfer materialization failed")
		return nil, err
	}

	uc.recorder.TransferMaterialized(time.Since(start))
	zerolog.Ctx(ctx).Info().
		Str("debit_entry_id", entries[domain.DebitLeg].EntryID).
		Str("credit_entry_id", entries[domain.CreditLeg].EntryID).
		Msg("transfer materialized")

	return entries, nil
}

func (uc *MaterializeUseCase) materialize(ctx context.Context, batch domain.EncryptedFieldBatch) ([]*domain.LedgerEntry, error) {
	// 0. Validate shape before any decryption
	if err := domain.ValidateBatch(batch); err != nil {
		return nil, err
	}

	if len(batch.Records) != domain.LegCount {
		return nil, domain.NewValidationError("transactionRequests",
			fmt.Sprintf("expected %d records, got %d", domain.LegCount, len(batch.Records)))
	}

	// 1. Decrypt and parse every leg
	now := uc.now().UTC()
	entries := make([]*domain.LedgerEntry, 0, len(batch.Records))
	for i, rec := range batch.Records {
		entry, err := uc.decodeLeg(rec)
		if err != nil {
			return nil, fmt.Errorf("leg %d: %w", i, err)
		}
		entry.ApplyDefaults(now)
		entries = append(entries, entry)
	}

	// 2. Persist both legs atomically
	if err := uc.retry(ctx, func() error { return uc.persist(ctx, entries) }); err != nil {
		return nil, err
	}

	return entries, nil
}

func (uc *MaterializeUseCase) decodeLeg(rec domain.EncryptedFieldRecord) (*domain.LedgerEntry, error) {
	var entryID, account, debit, credit, at string

	fields := []struct {
		dst        *string
		name       string
		ciphertext string
	}{
		{&entryID, "transactionID", rec.EntryID},
		{&account, "account", rec.Account},
		{&debit, "inDebt", rec.Debit},
		{&credit, "have", rec.Credit},
		{&at, "time", rec.Time},
	}

	for _, f := range fields {
		plain, err := encryption.DecryptField(f.ciphertext, uc.privateKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = plain
	}

	if strings.TrimSpace(entryID) == "" {
		return nil, domain.NewValidationError("transactionID", "TransactionID is required")
	}

	if strings.TrimSpace(account) == "" {
		return nil, domain.NewValidationError("account", "Account is required")
	}

	sealed, keyID, err := uc.keyring.Seal(account)
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}

	debitAmount, err := parseAmount(debit)
	if err != nil {
		return nil, fmt.Errorf("inDebt: %w", err)
	}

	creditAmount, err := parseAmount(credit)
	if err != nil {
		return nil, fmt.Errorf("have: %w", err)
	}

	timestamp, err := parseTimestamp(at)
	if err != nil {
		return nil, fmt.Errorf("time: %w", err)
	}

	return &domain.LedgerEntry{
		EntryID:      entryID,
		Account:      sealed,
		AccountKeyID: keyID,
		Debit:        debitAmount,
		Credit:       creditAmount,
		Time:         timestamp,
	}, nil
}

func (uc *MaterializeUseCase) persist(ctx context.Context, entries []*domain.LedgerEntry) error {
	for _, e := range entries {
		e.ID = 0
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := uc.entryRepo.SaveAll(ctx, tx, entries); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *MaterializeUseCase) retry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

func parseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrMalformedAmount, s)
	}

	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %q is negative", domain.ErrMalformedAmount, s)
	}

	return amount, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t.UTC(), nil
	}

	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedTimestamp, s)
}
