package apikey

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix namespaces key records inside Redis.
const DefaultRedisKeyPrefix = "authware:apikey:"

// RedisStore looks API keys up in Redis. Records are stored as JSON
// under the SHA-256 digest of the plaintext key, so Redis never sees
// key material and lookups are digest-to-digest.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore builds a RedisStore on the given client. An empty
// prefix defaults to DefaultRedisKeyPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Lookup fetches and decodes the record for key. A missing entry maps
// to ErrNotFound; any transport error surfaces as-is so the validator
// reports the backend as unavailable rather than the key as invalid.
func (s *RedisStore) Lookup(ctx context.Context, key string) (*Record, error) {
	raw, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis lookup: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode key record: %w", err)
	}

	return &rec, nil
}

// Put stores the record for key. Intended for provisioning tooling and
// tests; the validator itself never writes.
func (s *RedisStore) Put(ctx context.Context, key string, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode key record: %w", err)
	}
	return s.client.Set(ctx, s.redisKey(key), raw, 0).Err()
}

func (s *RedisStore) redisKey(key string) string {
	digest := sha256.Sum256([]byte(key))
	return s.prefix + hex.EncodeToString(digest[:])
}
