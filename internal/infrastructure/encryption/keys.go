package encryption

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"

	"github.com/iho/cipherledger/internal/domain"
)

// ParsePublicKey parses a base64 SubjectPublicKeyInfo (PKIX, DER) RSA key.
// PEM input is accepted as well.
func ParsePublicKey(encoded string) (*rsa.PublicKey, error) {
	der, err := decodeKeyMaterial(encoded, "PUBLIC KEY")
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse public key: %w", domain.ErrKeyFormat, err)
	}

	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: public key is %T, want RSA", domain.ErrKeyFormat, key)
	}

	if pub.N.BitLen() != KeyBits {
		return nil, fmt.Errorf("%w: public key is %d bits, want %d", domain.ErrKeyFormat, pub.N.BitLen(), KeyBits)
	}

	return pub, nil
}

// ParsePrivateKey parses a base64 PKCS#8 (DER) RSA private key.
// PEM input is accepted as well.
func ParsePrivateKey(encoded string) (*rsa.PrivateKey, error) {
	der, err := decodeKeyMaterial(encoded, "PRIVATE KEY")
	if err != nil {
		return nil, err
	}

	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %w", domain.ErrKeyFormat, err)
	}

	priv, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is %T, want RSA", domain.ErrKeyFormat, key)
	}

	if priv.N.BitLen() != KeyBits {
		return nil, fmt.Errorf("%w: private key is %d bits, want %d", domain.ErrKeyFormat, priv.N.BitLen(), KeyBits)
	}

	return priv, nil
}

// GenerateKeyPair creates a fresh RSA key pair of KeyBits.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: generate key: %w", domain.ErrCrypto, err)
	}
	return priv, nil
}

// EncodePublicKey renders pub as base64 PKIX DER, the form ParsePublicKey reads.
func EncodePublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("%w: marshal public key: %w", domain.ErrKeyFormat, err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

// EncodePrivateKey renders priv as base64 PKCS#8 DER, the form ParsePrivateKey reads.
func EncodePrivateKey(priv *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return "", fmt.Errorf("%w: marshal private key: %w", domain.ErrKeyFormat, err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func decodeKeyMaterial(encoded, pemType string) ([]byte, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("%w: empty key", domain.ErrKeyFormat)
	}

	if strings.HasPrefix(encoded, "-----BEGIN") {
		block, _ := pem.Decode([]byte(encoded))
		if block == nil || block.Type != pemType {
			return nil, fmt.Errorf("%w: expected PEM block %q", domain.ErrKeyFormat, pemType)
		}
		return block.Bytes, nil
	}

	der, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: decode key: %w", domain.ErrKeyFormat, err)
	}

	return der, nil
}
