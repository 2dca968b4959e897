package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerEntry is a persisted leg of a double-entry transfer.
// Account holds the at-rest ciphertext, sealed under AccountKeyID.
type LedgerEntry struct {
	Time         time.Time
	EntryID      string
	Account      string
	AccountKeyID string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	ID           int64
}

// ApplyDefaults fills the values the store would default on insert.
func (e *LedgerEntry) ApplyDefaults(now time.Time) {
	if e.Time.IsZero() {
		e.Time = now
	}
}
