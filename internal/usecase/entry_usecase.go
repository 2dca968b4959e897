package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cipherledger/internal/domain"
)

// EntryUseCase handles ledger entry lookups.
type EntryUseCase struct {
	entryRepo LedgerEntryRepository
	cache     EntryCache
	cacheTTL  time.Duration
	cacheRec  CacheRecorder
}

// NewEntryUseCase creates a new EntryUseCase. cache may be nil.
func NewEntryUseCase(entryRepo LedgerEntryRepository, cache EntryCache) *EntryUseCase {
	return &EntryUseCase{
		entryRepo: entryRepo,
		cache:     cache,
		cacheTTL:  EntryCacheTTL,
	}
}

// WithCacheTTL sets how long looked-up entries stay cached.
func (uc *EntryUseCase) WithCacheTTL(ttl time.Duration) *EntryUseCase {
	if ttl > 0 {
		uc.cacheTTL = ttl
	}
	return uc
}

// WithCacheRecorder reports cache hits and misses to rec.
func (uc *EntryUseCase) WithCacheRecorder(rec CacheRecorder) *EntryUseCase {
	uc.cacheRec = rec
	return uc
}

// GetEntry returns the entry with the given entry identifier. Entries are
// immutable, so a cached copy is always current.
func (uc *EntryUseCase) GetEntry(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, entryID)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("entry_id", entryID).Msg("entry cache read failed")
		} else if cached != nil {
			uc.recordCache(true)
			return cached, nil
		}
		uc.recordCache(false)
	}

	entry, err := uc.entryRepo.GetByEntryID(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, entry, uc.cacheTTL); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("entry_id", entryID).Msg("entry cache write failed")
		}
	}

	return entry, nil
}

func (uc *EntryUseCase) recordCache(hit bool) {
	switch {
	case uc.cacheRec == nil:
	case hit:
		uc.cacheRec.CacheHit()
	default:
		uc.cacheRec.CacheMiss()
	}
}
