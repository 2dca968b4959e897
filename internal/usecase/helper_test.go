package usecase_test

import (
	"crypto/rsa"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iho/cipherledger/internal/domain"
	"github.com/iho/cipherledger/internal/infrastructure/encryption"
)

const testAtRestKey = "1234567890abcdef"

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyErr  error
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	testKeyOnce.Do(func() {
		testKey, testKeyErr = encryption.GenerateKeyPair()
	})
	if testKeyErr != nil {
		t.Fatalf("failed to generate key: %v", testKeyErr)
	}

	return testKey
}

func newTestKeyring(t *testing.T) *encryption.Keyring {
	t.Helper()

	kr, err := encryption.ParseKeyring("v1", testAtRestKey, "")
	require.NoError(t, err)
	return kr
}

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 9, 30, 0, 123000000, time.UTC)
}

// sequentialIDs hands out entry-1, entry-2, ...
type sequentialIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequentialIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("entry-%d", g.n)
}

// plainRecord is a decrypted EncryptedFieldRecord.
type plainRecord struct {
	EntryID, Account, Debit, Credit, Time string
}

func decryptRecord(t *testing.T, key *rsa.PrivateKey, rec domain.EncryptedFieldRecord) plainRecord {
	t.Helper()

	open := func(ct string) string {
		pt, err := encryption.DecryptField(ct, key)
		require.NoError(t, err)
		return pt
	}

	return plainRecord{
		EntryID: open(rec.EntryID),
		Account: open(rec.Account),
		Debit:   open(rec.Debit),
		Credit:  open(rec.Credit),
		Time:    open(rec.Time),
	}
}

func encryptRecord(t *testing.T, pub *rsa.PublicKey, p plainRecord) domain.EncryptedFieldRecord {
	t.Helper()

	seal := func(pt string) string {
		ct, err := encryption.EncryptField(pt, pub)
		require.NoError(t, err)
		return ct
	}

	return domain.EncryptedFieldRecord{
		EntryID: seal(p.EntryID),
		Account: seal(p.Account),
		Debit:   seal(p.Debit),
		Credit:  seal(p.Credit),
		Time:    seal(p.Time),
	}
}
