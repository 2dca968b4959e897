package encryption

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/iho/cipherledger/internal/domain"
)

// KeyBits is the RSA modulus size used for field encryption.
const KeyBits = 2048

// MaxFieldBytes returns the largest plaintext, in bytes, that fits a single
// PKCS#1 v1.5 block for pub.
func MaxFieldBytes(pub *rsa.PublicKey) int {
	return pub.Size() - 11
}

// EncryptField encrypts the UTF-8 bytes of plaintext with pub using
// PKCS#1 v1.5 padding and returns the base64 ciphertext. Padding is random,
// so equal plaintexts produce different ciphertexts.
func EncryptField(plaintext string, pub *rsa.PublicKey) (string, error) {
	if pub == nil {
		return "", fmt.Errorf("%w: public key is nil", domain.ErrKeyFormat)
	}

	out, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(plaintext))
	if err != nil {
		if errors.Is(err, rsa.ErrMessageTooLong) {
			return "", fmt.Errorf("%w: field is %d bytes, limit is %d", domain.ErrCrypto, len(plaintext), MaxFieldBytes(pub))
		}
		return "", fmt.Errorf("%w: encrypt field: %w", domain.ErrCrypto, err)
	}

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptField reverses EncryptField. Malformed base64, a ciphertext of the
// wrong length or a padding mismatch all fail with domain.ErrCrypto.
func DecryptField(ciphertext string, priv *rsa.PrivateKey) (string, error) {
	if priv == nil {
		return "", fmt.Errorf("%w: private key is nil", domain.ErrKeyFormat)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: decode field: %w", domain.ErrCrypto, err)
	}

	if len(raw) != priv.Size() {
		return "", fmt.Errorf("%w: ciphertext is %d bytes, key expects %d", domain.ErrCrypto, len(raw), priv.Size())
	}

	out, err := rsa.DecryptPKCS1v15(rand.Reader, priv, raw)
	if err != nil {
		return "", fmt.Errorf("%w: decrypt field: %w", domain.ErrCrypto, err)
	}

	return string(out), nil
}
