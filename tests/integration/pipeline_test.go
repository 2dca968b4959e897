package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/iho/cipherledger/internal/adapter/http"
	"github.com/iho/cipherledger/internal/adapter/http/dto"
	"github.com/iho/cipherledger/internal/adapter/http/handler"
	"github.com/iho/cipherledger/internal/adapter/relay"
	"github.com/iho/cipherledger/internal/adapter/repository/postgres"
	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
	"github.com/iho/cipherledger/internal/usecase"
	"github.com/iho/cipherledger/tests/testutil"
)

type stack struct {
	db          *testutil.TestDB
	encoder     *usecase.EncodeUseCase
	materialize *usecase.MaterializeUseCase
	entries     *usecase.EntryUseCase
	keyring     *encryption.Keyring
}

func newStack(t *testing.T) *stack {
	t.Helper()

	db := testutil.NewTestDB(t)
	t.Cleanup(db.Cleanup)
	db.TruncateAll(context.Background())

	key := testutil.TestKey(t)
	keyring := testutil.TestKeyring(t)
	repo := postgres.NewLedgerEntryRepository(db.Pool)

	return &stack{
		db:      db,
		encoder: usecase.NewEncodeUseCase(&key.PublicKey, postgres.NewULIDGenerator(), nil),
		materialize: usecase.NewMaterializeUseCase(
			postgres.NewTxManager(db.Pool), repo, postgres.NewRetrier(zerolog.Nop()), key, keyring, nil),
		entries: usecase.NewEntryUseCase(repo, nil),
		keyring: keyring,
	}
}

func TestPipeline_PersistsBothLegs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	s := newStack(t)

	batch, err := s.encoder.Encode(ctx, domain.TransferIntent{
		SenderAccount:   "acc-1",
		ReceiverAccount: "acc-2",
		Amount:          decimal.RequireFromString("100.00"),
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	saved, err := s.materialize.Materialize(ctx, batch)
	if err != nil {
		t.Fatalf("materialize failed: %v", err)
	}
	if len(saved) != domain.LegCount {
		t.Fatalf("expected %d entries, got %d", domain.LegCount, len(saved))
	}

	for _, e := range saved {
		if e.ID == 0 {
			t.Errorf("entry %s has no surrogate id", e.EntryID)
		}

		got, err := s.entries.GetEntry(ctx, e.EntryID)
		if err != nil {
			t.Fatalf("get entry failed: %v", err)
		}
		account, err := s.keyring.Open(got.AccountKeyID, got.Account)
		if err != nil {
			t.Fatalf("reveal failed: %v", err)
		}
		if account != "acc-1" {
			t.Errorf("expected sender account, got %q", account)
		}
	}

	if !saved[domain.DebitLeg].Debit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected debit: %s", saved[domain.DebitLeg].Debit)
	}
	if !saved[domain.CreditLeg].Credit.Equal(decimal.NewFromInt(100)) {
		t.Errorf("unexpected credit: %s", saved[domain.CreditLeg].Credit)
	}
	if !saved[domain.DebitLeg].Time.Equal(saved[domain.CreditLeg].Time) {
		t.Errorf("legs have different times")
	}
}

func TestPipeline_ReplayConflicts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	s := newStack(t)

	batch, err := s.encoder.Encode(ctx, domain.TransferIntent{
		SenderAccount: "acc-1",
		Amount:        decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	if _, err := s.materialize.Materialize(ctx, batch); err != nil {
		t.Fatalf("first materialize failed: %v", err)
	}

	_, err = s.materialize.Materialize(ctx, batch)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	if n := s.db.CountEntries(ctx); n != domain.LegCount {
		t.Errorf("expected %d entries after replay, got %d", domain.LegCount, n)
	}
}

func TestPipeline_HTTPLocalRelay(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	s := newStack(t)

	intake := usecase.NewIntakeUseCase(s.encoder, relay.NewLocalRelay(s.materialize), nil)
	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(intake, s.materialize, s.entries),
		HealthHandler:      handler.NewHealthHandler().WithCheck("postgres", s.db.Pool.Ping),
		Logger:             zerolog.Nop(),
	})

	amount := decimal.RequireFromString("42.50")
	body, _ := json.Marshal(dto.TransactionInfoRequest{
		AccountSender:   "acc-1",
		AccountReceiver: "acc-2",
		TransferAmount:  &amount,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/info", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Message string                     `json:"message"`
		Data    []*dto.TransactionResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Data) != domain.LegCount {
		t.Fatalf("expected %d entries, got %d", domain.LegCount, len(resp.Data))
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected ready, got %d", rec.Code)
	}
}
