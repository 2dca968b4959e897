package testutil

import (
	"context"
	"crypto/rsa"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/cipherledger/internal/infrastructure/encryption"
	"github.com/iho/cipherledger/internal/infrastructure/postgres"
	"github.com/iho/cipherledger/internal/infrastructure/postgres/generated"
)

// TestDB provides isolated test database connections.
type TestDB struct {
	Pool    *pgxpool.Pool
	Queries *generated.Queries
	t       *testing.T
}

// NewTestDB connects to DATABASE_URL and applies the embedded migrations.
// The test is skipped when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	if err := postgres.RunMigrations(dbURL, "", zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, dbURL, 10, 1)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return &TestDB{
		Pool:    pool,
		Queries: generated.New(pool),
		t:       t,
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all ledger entries.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	if _, err := db.Pool.Exec(ctx, `TRUNCATE TABLE ledger_entries RESTART IDENTITY`); err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CountEntries returns the number of persisted ledger entries.
func (db *TestDB) CountEntries(ctx context.Context) int64 {
	db.t.Helper()

	n, err := db.Queries.CountLedgerEntries(ctx)
	if err != nil {
		db.t.Fatalf("failed to count entries: %v", err)
	}
	return n
}

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
	keyErr  error
)

// TestKey returns a process-wide RSA key pair.
func TestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	keyOnce.Do(func() {
		key, keyErr = encryption.GenerateKeyPair()
	})
	if keyErr != nil {
		t.Fatalf("failed to generate key: %v", keyErr)
	}
	return key
}

// TestKeyring returns a keyring with a single current key "v1".
func TestKeyring(t *testing.T) *encryption.Keyring {
	t.Helper()

	kr, err := encryption.ParseKeyring("v1", "0123456789abcdef", "")
	if err != nil {
		t.Fatalf("failed to build keyring: %v", err)
	}
	return kr
}
