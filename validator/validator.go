// Package validator verifies JWT bearer tokens and resolves the
// identity and granted scopes carried by their claims.
package validator

import (
	"context"
	"errors"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/authware/authware"
	"github.com/authware/authware/scope"
)

// SignatureAlgorithm is a signature algorithm.
type SignatureAlgorithm string

// Signature algorithms
const (
	EdDSA = SignatureAlgorithm("EdDSA")
	HS256 = SignatureAlgorithm("HS256") // HMAC using SHA-256
	HS384 = SignatureAlgorithm("HS384") // HMAC using SHA-384
	HS512 = SignatureAlgorithm("HS512") // HMAC using SHA-512
	RS256 = SignatureAlgorithm("RS256") // RSASSA-PKCS-v1.5 using SHA-256
	RS384 = SignatureAlgorithm("RS384") // RSASSA-PKCS-v1.5 using SHA-384
	RS512 = SignatureAlgorithm("RS512") // RSASSA-PKCS-v1.5 using SHA-512
	ES256 = SignatureAlgorithm("ES256") // ECDSA using P-256 and SHA-256
	ES384 = SignatureAlgorithm("ES384") // ECDSA using P-384 and SHA-384
	ES512 = SignatureAlgorithm("ES512") // ECDSA using P-521 and SHA-512
	PS256 = SignatureAlgorithm("PS256") // RSASSA-PSS using SHA256 and MGF1-SHA256
	PS384 = SignatureAlgorithm("PS384") // RSASSA-PSS using SHA384 and MGF1-SHA384
	PS512 = SignatureAlgorithm("PS512") // RSASSA-PSS using SHA512 and MGF1-SHA512
)

var allowedSigningAlgorithms = map[SignatureAlgorithm]bool{
	EdDSA: true,
	HS256: true,
	HS384: true,
	HS512: true,
	RS256: true,
	RS384: true,
	RS512: true,
	ES256: true,
	ES384: true,
	ES512: true,
	PS256: true,
	PS384: true,
	PS512: true,
}

// KeyFunc provides the key material used to verify token signatures.
// It may return a raw key (e.g. []byte, *rsa.PublicKey) matched against
// the configured algorithm, or a jwk.Set for rotated key sets. The
// context carries the inbound request's cancellation so remote key
// sources are not outlived.
type KeyFunc func(ctx context.Context) (any, error)

// Validator verifies bearer tokens. It implements
// authware.CredentialValidator. Each verification step is a distinct
// failure point mapped to its own failure kind: structural parse,
// signature, validity window, required claims.
type Validator struct {
	keyFunc            KeyFunc            // Required.
	signatureAlgorithm SignatureAlgorithm // Optional; inferred for jwk.Set key material.
	issuer             string             // Optional.
	audience           string             // Optional.
	allowedClockSkew   time.Duration      // Optional.
	registry           *scope.Registry    // Optional.
	scopeClaim         string             // Optional.
	now                func() time.Time
}

// New sets up a new Validator with the supplied options. WithKeyFunc is
// required.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		signatureAlgorithm: RS256,
		scopeClaim:         DefaultScopeClaim,
		now:                time.Now,
	}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if v.keyFunc == nil {
		return nil, errors.New("keyFunc is required, use WithKeyFunc")
	}

	return v, nil
}

// Validate verifies the passed in JWT and resolves its identity and
// granted scopes.
//
// The steps run strictly in order and short-circuit: a structurally
// malformed token never reaches signature verification, and a token
// with a bad signature never has its claims inspected. Unknown scopes
// inside the token are dropped, not treated as fatal, since tokens may
// be issued by an evolving authority.
func (v *Validator) Validate(ctx context.Context, tokenString string) (authware.Identity, scope.Set, error) {
	payload := []byte(tokenString)

	token, err := jwt.Parse(payload, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return authware.Identity{}, nil, authware.WrapFailure(
			authware.KindMalformedCredential, "bearer token is not a well-formed JWT", err,
		)
	}

	key, err := v.keyFunc(ctx)
	if err != nil {
		return authware.Identity{}, nil, authware.WrapFailure(
			authware.KindUpstreamUnavailable, "signing key source is unreachable", err,
		)
	}

	if err := v.verifySignature(payload, key); err != nil {
		return authware.Identity{}, nil, authware.WrapFailure(
			authware.KindInvalidSignature, "bearer token signature verification failed", err,
		)
	}

	if err := v.validateClaims(token); err != nil {
		return authware.Identity{}, nil, err
	}

	subject := token.Subject()
	if subject == "" {
		return authware.Identity{}, nil, authware.NewFailure(
			authware.KindMalformedCredential, "bearer token is missing the sub claim",
		)
	}

	granted, ok := v.grantedScopes(token)
	if !ok {
		return authware.Identity{}, nil, authware.NewFailure(
			authware.KindMalformedCredential, "bearer token is missing the scope claim",
		)
	}
	if v.registry != nil {
		granted = v.registry.Filter(granted)
	}

	identity := authware.Identity{
		ID:   subject,
		Kind: authware.IdentityKindJWTSubject,
	}
	if name, ok := token.Get("name"); ok {
		if label, ok := name.(string); ok {
			identity.Label = label
		}
	}

	return identity, granted, nil
}

// verifySignature checks the token signature against the configured key
// material. A jwk.Set is matched by key ID with the algorithm inferred
// from the key; anything else is used directly with the configured
// algorithm.
func (v *Validator) verifySignature(payload []byte, key any) error {
	if set, ok := key.(jwk.Set); ok {
		_, err := jws.Verify(payload, jws.WithKeySet(set,
			jws.WithInferAlgorithmFromKey(true),
			jws.WithRequireKid(false),
		))
		return err
	}

	_, err := jws.Verify(payload, jws.WithKey(jwa.SignatureAlgorithm(v.signatureAlgorithm), key))
	return err
}

// validateClaims checks the validity window with the configured clock
// skew leeway, plus the optional issuer and audience expectations.
func (v *Validator) validateClaims(token jwt.Token) error {
	opts := []jwt.ValidateOption{
		jwt.WithAcceptableSkew(v.allowedClockSkew),
		jwt.WithClock(jwt.ClockFunc(v.now)),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	if err := jwt.Validate(token, opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) || errors.Is(err, jwt.ErrTokenNotYetValid()) {
			return authware.WrapFailure(
				authware.KindCredentialExpired, "bearer token is outside its validity window", err,
			)
		}
		return authware.WrapFailure(
			authware.KindInvalidCredential, "bearer token claims were rejected", err,
		)
	}
	return nil
}

// grantedScopes reads the scope claim: either the configured claim as a
// space-delimited string (RFC 8693 "scope") or the "scp" list form.
func (v *Validator) grantedScopes(token jwt.Token) (scope.Set, bool) {
	if raw, ok := token.Get(v.scopeClaim); ok {
		if s, ok := raw.(string); ok {
			return scope.ParseSet(s), true
		}
	}

	if raw, ok := token.Get("scp"); ok {
		if list, ok := raw.([]interface{}); ok {
			granted := make(scope.Set, len(list))
			for _, item := range list {
				if s, ok := item.(string); ok {
					granted.Add(scope.Scope(s))
				}
			}
			return granted, true
		}
	}

	return nil, false
}
