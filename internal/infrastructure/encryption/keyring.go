package encryption

import (
	"fmt"
	"strings"

	"github.com/iho/cipherledger/internal/domain"
)

// Keyring holds the at-rest key used for new payloads plus older keys kept
// for reading rows sealed before a rotation. It is read-only after creation.
type Keyring struct {
	keys      map[string][]byte
	currentID string
}

// NewKeyring builds a keyring whose current key is keys[currentID].
func NewKeyring(currentID string, keys map[string][]byte) (*Keyring, error) {
	if currentID == "" {
		return nil, fmt.Errorf("%w: current key id is empty", domain.ErrKeyFormat)
	}

	copied := make(map[string][]byte, len(keys))
	for id, key := range keys {
		if _, err := newBlock(key); err != nil {
			return nil, fmt.Errorf("key %q: %w", id, err)
		}
		copied[id] = append([]byte(nil), key...)
	}

	if _, ok := copied[currentID]; !ok {
		return nil, fmt.Errorf("%w: current key %q not in keyring", domain.ErrKeyFormat, currentID)
	}

	return &Keyring{keys: copied, currentID: currentID}, nil
}

// ParseKeyring builds a keyring from configuration values. previous has the
// form "id1:key1,id2:key2"; keys are taken as raw bytes.
func ParseKeyring(currentID, currentKey, previous string) (*Keyring, error) {
	keys := map[string][]byte{currentID: []byte(currentKey)}

	for _, pair := range strings.Split(previous, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		id, key, ok := strings.Cut(pair, ":")
		if !ok || id == "" || key == "" {
			return nil, fmt.Errorf("%w: previous key entry %q must be id:key", domain.ErrKeyFormat, pair)
		}

		if id == currentID {
			return nil, fmt.Errorf("%w: previous key id %q shadows current key", domain.ErrKeyFormat, id)
		}

		keys[id] = []byte(key)
	}

	return NewKeyring(currentID, keys)
}

// CurrentID returns the id of the key used by Seal.
func (k *Keyring) CurrentID() string {
	return k.currentID
}

// Seal encrypts plaintext with the current key.
func (k *Keyring) Seal(plaintext string) (payload, keyID string, err error) {
	payload, err = EncryptAtRest(k.keys[k.currentID], plaintext)
	if err != nil {
		return "", "", err
	}
	return payload, k.currentID, nil
}

// Open decrypts a payload sealed under keyID.
func (k *Keyring) Open(keyID, payload string) (string, error) {
	key, ok := k.keys[keyID]
	if !ok {
		return "", fmt.Errorf("%w: unknown at-rest key %q", domain.ErrKeyFormat, keyID)
	}
	return DecryptAtRest(key, payload)
}
