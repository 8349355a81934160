package validator

import (
	"errors"
	"fmt"
	"time"

	"github.com/authware/authware/scope"
)

// DefaultScopeClaim is the claim carrying space-delimited scopes
// (RFC 8693).
const DefaultScopeClaim = "scope"

// Option is how options for the Validator are set up. Options return
// errors to enable validation during construction.
type Option func(*Validator) error

// WithKeyFunc sets the function that provides the key for token
// verification. This is a required option.
//
// The keyFunc is called during token validation to retrieve the key(s)
// used to verify the token signature. For JWKS-based validation, use
// jwks.Provider.KeyFunc; for a fixed key, use jwks.StaticKeyFunc.
func WithKeyFunc(keyFunc KeyFunc) Option {
	return func(v *Validator) error {
		if keyFunc == nil {
			return errors.New("keyFunc cannot be nil")
		}
		v.keyFunc = keyFunc
		return nil
	}
}

// WithAlgorithm sets the signature algorithm tokens must use when the
// key material is a raw key. Ignored for jwk.Set key material, where
// the algorithm is inferred per key.
//
// Default: RS256
func WithAlgorithm(algorithm SignatureAlgorithm) Option {
	return func(v *Validator) error {
		if !allowedSigningAlgorithms[algorithm] {
			return fmt.Errorf("unsupported signature algorithm: %s", algorithm)
		}
		v.signatureAlgorithm = algorithm
		return nil
	}
}

// WithIssuer sets the expected issuer claim (iss). Tokens with a
// different issuer are rejected. Optional; no issuer check is performed
// when unset.
func WithIssuer(issuer string) Option {
	return func(v *Validator) error {
		if issuer == "" {
			return errors.New("issuer cannot be empty")
		}
		v.issuer = issuer
		return nil
	}
}

// WithAudience sets the expected audience claim (aud). The token must
// contain the audience. Optional; no audience check is performed when
// unset.
func WithAudience(audience string) Option {
	return func(v *Validator) error {
		if audience == "" {
			return errors.New("audience cannot be empty")
		}
		v.audience = audience
		return nil
	}
}

// WithClockSkew sets the leeway applied when comparing expiry and
// not-before claims against the current time, absorbing clock drift
// across distributed issuers.
//
// Default: no leeway
func WithClockSkew(skew time.Duration) Option {
	return func(v *Validator) error {
		if skew < 0 {
			return errors.New("clock skew cannot be negative")
		}
		v.allowedClockSkew = skew
		return nil
	}
}

// WithScopeRegistry sets the registry used to drop unregistered scopes
// from validated tokens.
func WithScopeRegistry(r *scope.Registry) Option {
	return func(v *Validator) error {
		if r == nil {
			return errors.New("scope registry cannot be nil")
		}
		v.registry = r
		return nil
	}
}

// WithScopeClaim overrides the claim name the space-delimited scope set
// is read from. The "scp" list form is always recognized as a fallback.
//
// Default: "scope"
func WithScopeClaim(name string) Option {
	return func(v *Validator) error {
		if name == "" {
			return errors.New("scope claim name cannot be empty")
		}
		v.scopeClaim = name
		return nil
	}
}
