package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/iho/cipherledger/internal/domain"
)

const entryKeyPrefix = "ledger_entry:"

// EntryCache implements usecase.EntryCache using Redis. Cached entries
// hold the at-rest account payload, never the plaintext account.
type EntryCache struct {
	client *redis.Client
	prefix string
}

// NewEntryCache creates a new EntryCache.
func NewEntryCache(client *redis.Client) *EntryCache {
	return &EntryCache{
		client: client,
		prefix: entryKeyPrefix,
	}
}

type cachedEntry struct {
	ID           int64     `json:"id"`
	EntryID      string    `json:"entry_id"`
	Account      string    `json:"account"`
	AccountKeyID string    `json:"account_key_id"`
	Debit        string    `json:"in_debt"`
	Credit       string    `json:"have"`
	Time         time.Time `json:"time"`
}

// Get returns the cached entry, or nil, nil on a miss.
func (c *EntryCache) Get(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	raw, err := c.client.Get(ctx, c.prefix+entryID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var ce cachedEntry
	if err := json.Unmarshal(raw, &ce); err != nil {
		return nil, fmt.Errorf("decode cached entry %s: %w", entryID, err)
	}

	debit, err := decimal.NewFromString(ce.Debit)
	if err != nil {
		return nil, fmt.Errorf("decode cached entry %s: in_debt: %w", entryID, err)
	}
	credit, err := decimal.NewFromString(ce.Credit)
	if err != nil {
		return nil, fmt.Errorf("decode cached entry %s: have: %w", entryID, err)
	}

	return &domain.LedgerEntry{
		ID:           ce.ID,
		EntryID:      ce.EntryID,
		Account:      ce.Account,
		AccountKeyID: ce.AccountKeyID,
		Debit:        debit,
		Credit:       credit,
		Time:         ce.Time.UTC(),
	}, nil
}

// Set stores entry with TTL.
func (c *EntryCache) Set(ctx context.Context, entry *domain.LedgerEntry, ttl time.Duration) error {
	raw, err := json.Marshal(cachedEntry{
		ID:           entry.ID,
		EntryID:      entry.EntryID,
		Account:      entry.Account,
		AccountKeyID: entry.AccountKeyID,
		Debit:        domain.PlainAmount(entry.Debit),
		Credit:       domain.PlainAmount(entry.Credit),
		Time:         entry.Time,
	})
	if err != nil {
		return err
	}

	return c.client.Set(ctx, c.prefix+entry.EntryID, raw, ttl).Err()
}

// Delete evicts an entry.
func (c *EntryCache) Delete(ctx context.Context, entryID string) error {
	return c.client.Del(ctx, c.prefix+entryID).Err()
}
