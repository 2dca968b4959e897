package encryption

import (
	"crypto/rsa"
	"sync"
	"testing"
)

var (
	testKeyOnce sync.Once
	testKey     *rsa.PrivateKey
	testKeyErr  error
)

func newTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	testKeyOnce.Do(func() {
		testKey, testKeyErr = GenerateKeyPair()
	})
	if testKeyErr != nil {
		t.Fatalf("failed to generate key: %v", testKeyErr)
	}

	return testKey
}
