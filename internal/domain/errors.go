package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// Pipeline errors
	ErrKeyFormat          = errors.New("malformed key material")
	ErrCrypto             = errors.New("cryptographic operation failed")
	ErrMalformedAmount    = errors.New("malformed amount")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrConflict           = errors.New("entry identifier already exists")
	ErrRelay              = errors.New("relay failed")

	// Boundary errors
	ErrValidation    = errors.New("validation failed")
	ErrEntryNotFound = errors.New("ledger entry not found")
)

// Kind tags an error with its place in the taxonomy.
type Kind string

const (
	KindKeyFormat          Kind = "KEY_FORMAT"
	KindCrypto             Kind = "CRYPTO"
	KindMalformedAmount    Kind = "MALFORMED_AMOUNT"
	KindMalformedTimestamp Kind = "MALFORMED_TIMESTAMP"
	KindConflict           Kind = "CONFLICT"
	KindRelay              Kind = "RELAY"
	KindValidation         Kind = "VALIDATION_ERROR"
	KindNotFound           Kind = "NOT_FOUND"
	KindInternal           Kind = "INTERNAL"
)

// KindOf returns the taxonomy tag for err.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrKeyFormat):
		return KindKeyFormat
	case errors.Is(err, ErrCrypto):
		return KindCrypto
	case errors.Is(err, ErrMalformedAmount):
		return KindMalformedAmount
	case errors.Is(err, ErrMalformedTimestamp):
		return KindMalformedTimestamp
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrRelay):
		return KindRelay
	case errors.Is(err, ErrEntryNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// ValidationError carries per-field messages. It matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// RelayError describes a failed relay attempt.
type RelayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *RelayError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", ErrRelay, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: remote returned status %d: %s", ErrRelay, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s: %s", ErrRelay, e.Message)
	}
}

func (e *RelayError) Is(target error) bool {
	return target == ErrRelay
}

func (e *RelayError) Unwrap() error {
	return e.Err
}
