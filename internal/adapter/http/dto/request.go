package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/cipherledger/internal/domain"
)

// TransactionInfoRequest is a plaintext transfer instruction.
type TransactionInfoRequest struct {
	AccountSender   string           `json:"accountSender"`
	AccountReceiver string           `json:"accountReceiver"`
	TransferAmount  *decimal.Decimal `json:"transferAmount"`
}

// Validate checks required fields and the amount range.
func (r *TransactionInfoRequest) Validate() error {
	return domain.ValidateIntent(r.AccountSender, r.AccountReceiver, r.TransferAmount)
}

// ToIntent converts to a domain transfer intent. Call Validate first.
func (r *TransactionInfoRequest) ToIntent() domain.TransferIntent {
	intent := domain.TransferIntent{
		SenderAccount:   r.AccountSender,
		ReceiverAccount: r.AccountReceiver,
	}
	if r.TransferAmount != nil {
		intent.Amount = *r.TransferAmount
	}
	return intent
}

// TransactionRequest is one field-encrypted leg.
type TransactionRequest struct {
	TransactionID string `json:"transactionID"`
	Account       string `json:"account"`
	InDebt        string `json:"inDebt"`
	Have          string `json:"have"`
	Time          string `json:"time"`
}

// ListTransactionRequest carries the encrypted legs of one transfer.
type ListTransactionRequest struct {
	TransactionRequests []TransactionRequest `json:"transactionRequests"`
}

// ToBatch converts to a domain batch, preserving leg order.
func (r *ListTransactionRequest) ToBatch() domain.EncryptedFieldBatch {
	batch := domain.EncryptedFieldBatch{Records: make([]domain.EncryptedFieldRecord, len(r.TransactionRequests))}
	for i, tr := range r.TransactionRequests {
		batch.Records[i] = domain.EncryptedFieldRecord{
			EntryID: tr.TransactionID,
			Account: tr.Account,
			Debit:   tr.InDebt,
			Credit:  tr.Have,
			Time:    tr.Time,
		}
	}
	return batch
}

// ListTransactionRequestFromBatch converts a domain batch to its wire form.
func ListTransactionRequestFromBatch(batch domain.EncryptedFieldBatch) ListTransactionRequest {
	req := ListTransactionRequest{TransactionRequests: make([]TransactionRequest, len(batch.Records))}
	for i, rec := range batch.Records {
		req.TransactionRequests[i] = TransactionRequest{
			TransactionID: rec.EntryID,
			Account:       rec.Account,
			InDebt:        rec.Debit,
			Have:          rec.Credit,
			Time:          rec.Time,
		}
	}
	return req
}
