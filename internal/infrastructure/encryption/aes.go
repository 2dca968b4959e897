package encryption

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/iho/cipherledger/internal/domain"
)

// IVSize is the length of the initialization vector prepended to every payload.
const IVSize = aes.BlockSize

// Absent is returned by EncryptAtRest for an empty plaintext.
const Absent = ""

// EncryptAtRest encrypts plaintext with AES-CBC under key and returns
// base64(IV || ciphertext). A fresh random IV is drawn for every call.
// An empty plaintext yields Absent and no error.
func EncryptAtRest(key []byte, plaintext string) (string, error) {
	if plaintext == "" {
		return Absent, nil
	}

	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)

	out := make([]byte, IVSize+len(padded))
	iv := out[:IVSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("%w: read iv: %w", domain.ErrCrypto, err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[IVSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// DecryptAtRest reverses EncryptAtRest. Absent decrypts to Absent.
func DecryptAtRest(key []byte, payload string) (string, error) {
	if payload == Absent {
		return Absent, nil
	}

	block, err := newBlock(key)
	if err != nil {
		return "", err
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: decode payload: %w", domain.ErrCrypto, err)
	}

	if len(raw) < IVSize+aes.BlockSize {
		return "", fmt.Errorf("%w: payload is %d bytes, shorter than iv and one block", domain.ErrCrypto, len(raw))
	}

	iv, body := raw[:IVSize], raw[IVSize:]
	if len(body)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext is not a multiple of the block size", domain.ErrCrypto)
	}

	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(unpadded), nil
}

func newBlock(key []byte) (cipher.Block, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: at-rest key is %d bytes, want 16, 24 or 32", domain.ErrKeyFormat, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrKeyFormat, err)
	}

	return block, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad padding", domain.ErrCrypto)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding", domain.ErrCrypto)
	}

	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: bad padding", domain.ErrCrypto)
		}
	}

	return data[:len(data)-n], nil
}
