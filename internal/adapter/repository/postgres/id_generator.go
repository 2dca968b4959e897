package postgres

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/iho/cipherledger/internal/usecase"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct{}

// NewULIDGenerator creates a new ULIDGenerator.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.Make().String()
}

// UUIDGenerator generates random (v4) UUIDs, the format of entries
// written by earlier deployments.
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUIDGenerator.
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate generates a new UUID.
func (g *UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// NewIDGenerator returns the generator for format ("ulid" or "uuid").
func NewIDGenerator(format string) usecase.IDGenerator {
	if format == "uuid" {
		return NewUUIDGenerator()
	}
	return NewULIDGenerator()
}
