package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
)

// StaticStore is an in-memory Store for keys fixed at process start.
// Plaintext keys are hashed at construction and never retained; lookups
// compare digests in constant time so the store does not leak key
// contents through timing side-channels.
type StaticStore struct {
	entries []staticEntry
}

type staticEntry struct {
	digest [sha256.Size]byte
	record Record
}

// StaticKey pairs a plaintext key with its record for NewStaticStore.
type StaticKey struct {
	Key    string
	Record Record
}

// NewStaticStore builds a StaticStore from the given keys.
func NewStaticStore(keys ...StaticKey) *StaticStore {
	s := &StaticStore{}
	for _, k := range keys {
		s.entries = append(s.entries, staticEntry{
			digest: sha256.Sum256([]byte(k.Key)),
			record: k.Record,
		})
	}
	return s
}

// Lookup scans every entry regardless of early matches so lookup time
// is independent of which entry, if any, matches.
func (s *StaticStore) Lookup(_ context.Context, key string) (*Record, error) {
	digest := sha256.Sum256([]byte(key))

	var found *Record
	for i := range s.entries {
		if subtle.ConstantTimeCompare(s.entries[i].digest[:], digest[:]) == 1 {
			found = &s.entries[i].record
		}
	}

	if found == nil {
		return nil, ErrNotFound
	}

	rec := *found
	return &rec, nil
}
