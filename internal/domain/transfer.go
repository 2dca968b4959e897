package domain

import (
	"github.com/shopspring/decimal"
)

// TransferIntent is a plaintext transfer instruction received at intake.
type TransferIntent struct {
	SenderAccount   string
	ReceiverAccount string
	Amount          decimal.Decimal
}

// EncryptedFieldRecord is one ledger leg in transit. Every field is an
// independent base64 RSA ciphertext.
type EncryptedFieldRecord struct {
	EntryID string `json:"transactionID"`
	Account string `json:"account"`
	Debit   string `json:"inDebt"`
	Credit  string `json:"have"`
	Time    string `json:"time"`
}

// EncryptedFieldBatch is the ordered pair of legs for one transfer.
// Records[0] is the debit leg and Records[1] the credit leg.
type EncryptedFieldBatch struct {
	Records []EncryptedFieldRecord `json:"transactionRequests"`
}

const (
	DebitLeg  = 0
	CreditLeg = 1
	LegCount  = 2
)

// PlainAmount renders d without an exponent, keeping its scale: 100.00
// stays "100.00" and 1E+3 becomes "1000".
func PlainAmount(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.StringFixed(0)
}
