package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/cipherledger/internal/adapter/repository/memory"
	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
	"github.com/iho/cipherledger/internal/usecase"
)

type pipeline struct {
	store       *memory.Store
	repo        *memory.LedgerEntryRepository
	encoder     *usecase.EncodeUseCase
	materialize *usecase.MaterializeUseCase
	entries     *usecase.EntryUseCase
	keyring     *encryption.Keyring
}

func newPipeline(t *testing.T, ids usecase.IDGenerator) *pipeline {
	t.Helper()

	key := newTestKey(t)
	keyring := newTestKeyring(t)
	store := memory.NewStore()
	repo := memory.NewLedgerEntryRepository(store)

	return &pipeline{
		store:       store,
		repo:        repo,
		encoder:     usecase.NewEncodeUseCase(&key.PublicKey, ids, nil).WithClock(fixedClock),
		materialize: usecase.NewMaterializeUseCase(memory.NewTxManager(store), repo, nil, key, keyring, nil),
		entries:     usecase.NewEntryUseCase(repo, nil),
		keyring:     keyring,
	}
}

func TestPipeline_TransferEndToEnd(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, &sequentialIDs{})

	batch, err := p.encoder.Encode(ctx, domain.TransferIntent{
		SenderAccount:   "acc-1",
		ReceiverAccount: "acc-2",
		Amount:          decimal.RequireFromString("100.00"),
	})
	require.NoError(t, err)

	saved, err := p.materialize.Materialize(ctx, batch)
	require.NoError(t, err)
	require.Len(t, saved, domain.LegCount)
	assert.Equal(t, 2, p.store.Count())

	want := []struct {
		entryID       string
		debit, credit decimal.Decimal
	}{
		{"entry-1", decimal.NewFromInt(100), decimal.Zero},
		{"entry-2", decimal.Zero, decimal.NewFromInt(100)},
	}

	for _, w := range want {
		entry, err := p.entries.GetEntry(ctx, w.entryID)
		require.NoError(t, err)

		assert.True(t, entry.Debit.Equal(w.debit), "%s debit %s", w.entryID, entry.Debit)
		assert.True(t, entry.Credit.Equal(w.credit), "%s credit %s", w.entryID, entry.Credit)
		assert.True(t, entry.Time.Equal(fixedClock()))

		account, err := p.keyring.Open(entry.AccountKeyID, entry.Account)
		require.NoError(t, err)
		assert.Equal(t, "acc-1", account, "both legs are recorded against the sender")
	}
}

func TestPipeline_CollidingLegPersistsNothing(t *testing.T) {
	ctx := context.Background()
	ids := &sequentialIDs{}
	p := newPipeline(t, ids)

	first, err := p.encoder.Encode(ctx, domain.TransferIntent{
		SenderAccount: "acc-1", ReceiverAccount: "acc-2", Amount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	_, err = p.materialize.Materialize(ctx, first)
	require.NoError(t, err)

	// The next transfer reuses entry-2 for its credit leg.
	second, err := p.encoder.Encode(ctx, domain.TransferIntent{
		SenderAccount: "acc-3", ReceiverAccount: "acc-4", Amount: decimal.NewFromInt(20),
	})
	require.NoError(t, err)

	key := newTestKey(t)
	credit := decryptRecord(t, key, second.Records[domain.CreditLeg])
	credit.EntryID = "entry-2"
	second.Records[domain.CreditLeg] = encryptRecord(t, &key.PublicKey, credit)

	_, err = p.materialize.Materialize(ctx, second)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	assert.Equal(t, 2, p.store.Count())

	debitID := decryptRecord(t, key, second.Records[domain.DebitLeg]).EntryID
	_, err = p.repo.GetByEntryID(ctx, debitID)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound, "debit leg must not survive a failed credit leg")
}

func TestPipeline_ReplayedBatchConflicts(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, &sequentialIDs{})

	batch, err := p.encoder.Encode(ctx, domain.TransferIntent{
		SenderAccount: "acc-1", ReceiverAccount: "acc-2", Amount: decimal.NewFromInt(1),
	})
	require.NoError(t, err)

	_, err = p.materialize.Materialize(ctx, batch)
	require.NoError(t, err)

	_, err = p.materialize.Materialize(ctx, batch)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 2, p.store.Count())
}
