package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ValidateIntent validates a plaintext transfer instruction. Accounts must be
// non-blank and the amount present and non-negative. Account length is bounded
// only by the RSA key, which EncryptField enforces.
func ValidateIntent(sender, receiver string, amount *decimal.Decimal) error {
	fields := make(map[string]string)

	if msg := validateAccount(sender, "AccountSender"); msg != "" {
		fields["accountSender"] = msg
	}

	if msg := validateAccount(receiver, "AccountReceiver"); msg != "" {
		fields["accountReceiver"] = msg
	}

	switch {
	case amount == nil:
		fields["transferAmount"] = "TransferAmount is required"
	case amount.IsNegative():
		fields["transferAmount"] = "transferAmount must be non-negative"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}

func validateAccount(account, label string) string {
	if strings.TrimSpace(account) == "" {
		return label + " is required"
	}
	return ""
}

// ValidateBatch checks that a batch is non-empty and every field is present.
func ValidateBatch(batch EncryptedFieldBatch) error {
	if len(batch.Records) == 0 {
		return NewValidationError("transactionRequests", "transactionRequests must not be empty")
	}

	fields := make(map[string]string)
	for i, rec := range batch.Records {
		required := []struct {
			name, label, value string
		}{
			{"transactionID", "TransactionID", rec.EntryID},
			{"account", "Account", rec.Account},
			{"inDebt", "InDebt", rec.Debit},
			{"have", "Have", rec.Credit},
			{"time", "Time", rec.Time},
		}
		for _, f := range required {
			if strings.TrimSpace(f.value) == "" {
				fields[fmt.Sprintf("transactionRequests[%d].%s", i, f.name)] = f.label + " is required"
			}
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}
