package dto

import (
	"time"

	"github.com/iho/cipherledger/internal/domain"
)

// MessageSuccess is the message of every successful APIResponse.
const MessageSuccess = "Success"

// APIResponse wraps successful payloads.
type APIResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Success wraps data in an APIResponse.
func Success(data any) APIResponse {
	return APIResponse{Message: MessageSuccess, Data: data}
}

// TransactionResponse represents a persisted ledger entry. Account is the
// at-rest ciphertext; amounts keep their scale.
type TransactionResponse struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transactionID"`
	Account       string    `json:"account"`
	AccountKeyID  string    `json:"accountKeyID"`
	InDebt        string    `json:"inDebt"`
	Have          string    `json:"have"`
	Time          time.Time `json:"time"`
}

// TransactionFromDomain converts a domain ledger entry to response.
func TransactionFromDomain(e *domain.LedgerEntry) *TransactionResponse {
	return &TransactionResponse{
		ID:            e.ID,
		TransactionID: e.EntryID,
		Account:       e.Account,
		AccountKeyID:  e.AccountKeyID,
		InDebt:        domain.PlainAmount(e.Debit),
		Have:          domain.PlainAmount(e.Credit),
		Time:          e.Time.UTC(),
	}
}

// TransactionsFromDomain converts domain ledger entries to responses.
func TransactionsFromDomain(entries []*domain.LedgerEntry) []*TransactionResponse {
	result := make([]*TransactionResponse, len(entries))
	for i, e := range entries {
		result[i] = TransactionFromDomain(e)
	}
	return result
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error         string            `json:"error"`
	Message       string            `json:"message"`
	MessageFields map[string]string `json:"messageFields,omitempty"`
}

// HealthResponse represents health check response.
type HealthResponse struct {
	Status  string            `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}
