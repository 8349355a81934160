// Package apikey validates opaque API keys against an external key
// store and resolves the identity and scopes granted to each key.
package apikey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/authware/authware"
	"github.com/authware/authware/scope"
)

// ErrNotFound is the sentinel a Store returns when no record exists for
// the presented key. Any other Store error is treated as an unreachable
// backend, which is retryable and must not be reported to clients as a
// rejected credential.
var ErrNotFound = errors.New("api key not found")

// Record is the stored state of an API key: who it belongs to, what it
// may do, and whether it is still usable.
type Record struct {
	// Identity is the stable identifier of the key's owner.
	Identity string

	// Label is an optional display or account label.
	Label string

	// Scopes granted to the key.
	Scopes []scope.Scope

	// Revoked marks the key as administratively disabled.
	Revoked bool

	// ExpiresAt is the end of the key's validity window. The zero value
	// means the key does not expire.
	ExpiresAt time.Time
}

// Store is the lookup capability backing the validator. Implementations
// must return ErrNotFound when the key does not exist and an ordinary
// error when the backend cannot be reached; the two are mapped to
// different failure kinds.
//
// Implementations must not compare plaintext keys with variable-time
// equality; the provided stores compare SHA-256 digests instead.
type Store interface {
	Lookup(ctx context.Context, key string) (*Record, error)
}

// Validator validates API keys through a Store. It implements
// authware.CredentialValidator.
type Validator struct {
	store    Store
	registry *scope.Registry
	now      func() time.Time
}

// Option configures the Validator.
type Option func(*Validator) error

// WithStore sets the key store the validator looks keys up in
// (REQUIRED).
func WithStore(s Store) Option {
	return func(v *Validator) error {
		if s == nil {
			return errors.New("store cannot be nil")
		}
		v.store = s
		return nil
	}
}

// WithScopeRegistry sets the registry used to drop unregistered scopes
// from key records, keeping granted sets consistent with the bearer
// path.
func WithScopeRegistry(r *scope.Registry) Option {
	return func(v *Validator) error {
		if r == nil {
			return errors.New("scope registry cannot be nil")
		}
		v.registry = r
		return nil
	}
}

// New constructs a Validator with the supplied options. WithStore is
// required.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		now: time.Now,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if v.store == nil {
		return nil, errors.New("store is required, use WithStore")
	}

	return v, nil
}

// Validate looks the key up and resolves its identity and granted
// scopes. Failure mapping: unknown key is an invalid credential, a
// revoked or expired key is an expired credential, and an unreachable
// store (including context cancellation) is upstream_unavailable so
// legitimate callers are retried instead of denied.
func (v *Validator) Validate(ctx context.Context, key string) (authware.Identity, scope.Set, error) {
	if key == "" {
		return authware.Identity{}, nil, authware.NewFailure(
			authware.KindMalformedCredential, "API key is empty",
		)
	}

	rec, err := v.store.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return authware.Identity{}, nil, authware.NewFailure(
				authware.KindInvalidCredential, "API key is not recognized",
			)
		}
		return authware.Identity{}, nil, authware.WrapFailure(
			authware.KindUpstreamUnavailable, "key store is unreachable", err,
		)
	}

	if rec.Revoked {
		return authware.Identity{}, nil, authware.NewFailure(
			authware.KindCredentialExpired, "API key has been revoked",
		)
	}
	if !rec.ExpiresAt.IsZero() && v.now().After(rec.ExpiresAt) {
		return authware.Identity{}, nil, authware.NewFailure(
			authware.KindCredentialExpired, "API key has expired",
		)
	}

	granted := scope.NewSet(rec.Scopes...)
	if v.registry != nil {
		granted = v.registry.Filter(granted)
	}

	identity := authware.Identity{
		ID:    rec.Identity,
		Kind:  authware.IdentityKindAPIKey,
		Label: rec.Label,
	}

	return identity, granted, nil
}
