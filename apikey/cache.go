package apikey

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachingStore wraps a Store with an expiring LRU cache keyed by the
// digest of the plaintext key. Both successful lookups and not-found
// results are cached; backend errors never are, so a transiently
// unreachable store is not remembered as a permanent rejection.
type CachingStore struct {
	inner Store
	cache *expirable.LRU[string, cachedLookup]
}

type cachedLookup struct {
	record   *Record
	notFound bool
}

// NewCachingStore wraps inner with a cache of at most size entries that
// expire after ttl.
func NewCachingStore(inner Store, size int, ttl time.Duration) *CachingStore {
	return &CachingStore{
		inner: inner,
		cache: expirable.NewLRU[string, cachedLookup](size, nil, ttl),
	}
}

// Lookup serves from the cache when possible and falls through to the
// inner store otherwise.
func (s *CachingStore) Lookup(ctx context.Context, key string) (*Record, error) {
	digest := sha256.Sum256([]byte(key))
	cacheKey := hex.EncodeToString(digest[:])

	if hit, ok := s.cache.Get(cacheKey); ok {
		if hit.notFound {
			return nil, ErrNotFound
		}
		rec := *hit.record
		return &rec, nil
	}

	rec, err := s.inner.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.cache.Add(cacheKey, cachedLookup{notFound: true})
		}
		return nil, err
	}

	s.cache.Add(cacheKey, cachedLookup{record: rec})

	out := *rec
	return &out, nil
}
