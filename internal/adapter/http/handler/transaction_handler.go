package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cipherledger/internal/adapter/http/dto"
	"github.com/iho/cipherledger/internal/domain"
)

// IntakeService encodes and relays transfer intents.
type IntakeService interface {
	Submit(ctx context.Context, intent domain.TransferIntent) (json.RawMessage, error)
}

// MaterializeService persists encoded batches.
type MaterializeService interface {
	Materialize(ctx context.Context, batch domain.EncryptedFieldBatch) ([]*domain.LedgerEntry, error)
}

// EntryService reads persisted ledger entries.
type EntryService interface {
	GetEntry(ctx context.Context, entryID string) (*domain.LedgerEntry, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	intake       IntakeService
	materializer MaterializeService
	entries      EntryService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(intake IntakeService, materializer MaterializeService, entries EntryService) *TransactionHandler {
	return &TransactionHandler{
		intake:       intake,
		materializer: materializer,
		entries:      entries,
	}
}

// Info accepts a plaintext transfer instruction, encodes it and relays it.
// The relay response is written back unchanged.
func (h *TransactionHandler) Info(w http.ResponseWriter, r *http.Request) {
	var req dto.TransactionInfoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	body, err := h.intake.Submit(r.Context(), req.ToIntent())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeRawJSON(w, http.StatusOK, body)
}

// Create materializes an encoded transfer.
func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ListTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, err.Error())
		return
	}

	batch := req.ToBatch()
	if err := domain.ValidateBatch(batch); err != nil {
		writeDomainError(w, r, err)
		return
	}

	entries, err := h.materializer.Materialize(r.Context(), batch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.Success(dto.TransactionsFromDomain(entries)))
}

// Get retrieves a ledger entry by its entry identifier.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryID")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "missing entry ID")
		return
	}

	entry, err := h.entries.GetEntry(r.Context(), entryID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.Success(dto.TransactionFromDomain(entry)))
}
