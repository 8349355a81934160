package validator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authware/authware"
	"github.com/authware/authware/scope"
)

const (
	testIssuer   = "https://issuer.example.com/"
	testAudience = "orders-api"
	testSubject  = "user_1234"
)

var testSecret = []byte("your-256-bit-secret-is-just-enough")

func staticKeyFunc(key any) KeyFunc {
	return func(context.Context) (any, error) { return key, nil }
}

// mintToken signs an HS256 token with sane default claims, applying
// mutate before signing.
func mintToken(t *testing.T, secret []byte, mutate func(tok jwt.Token)) string {
	t.Helper()

	token, err := jwt.NewBuilder().
		Issuer(testIssuer).
		Subject(testSubject).
		Audience([]string{testAudience}).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Claim("scope", "read:orders write:orders").
		Build()
	require.NoError(t, err)

	if mutate != nil {
		mutate(token)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
	require.NoError(t, err)

	return string(signed)
}

func TestValidator_Validate(t *testing.T) {
	registry := scope.NewRegistry("read:orders", "write:orders")

	newValidator := func(t *testing.T, opts ...Option) *Validator {
		t.Helper()
		base := []Option{
			WithKeyFunc(staticKeyFunc(testSecret)),
			WithAlgorithm(HS256),
			WithIssuer(testIssuer),
			WithAudience(testAudience),
			WithScopeRegistry(registry),
		}
		v, err := New(append(base, opts...)...)
		require.NoError(t, err)
		return v
	}

	t.Run("it successfully validates a token", func(t *testing.T) {
		v := newValidator(t)

		identity, granted, err := v.Validate(context.Background(), mintToken(t, testSecret, nil))
		require.NoError(t, err)

		assert.Equal(t, authware.Identity{ID: testSubject, Kind: authware.IdentityKindJWTSubject}, identity)
		assert.Equal(t, scope.NewSet("read:orders", "write:orders"), granted)
	})

	t.Run("it picks up the name claim as the identity label", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Set("name", "Ada Lovelace"))
		})

		identity, _, err := v.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "Ada Lovelace", identity.Label)
	})

	t.Run("it drops scopes that are not registered", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Set("scope", "read:orders admin:everything"))
		})

		_, granted, err := v.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, scope.NewSet("read:orders"), granted)
	})

	t.Run("it accepts the scp list claim form", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Remove("scope"))
			require.NoError(t, tok.Set("scp", []string{"read:orders"}))
		})

		_, granted, err := v.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, scope.NewSet("read:orders"), granted)
	})

	t.Run("a malformed token never reaches signature verification", func(t *testing.T) {
		keyFuncCalled := false
		v, err := New(
			WithKeyFunc(func(context.Context) (any, error) {
				keyFuncCalled = true
				return testSecret, nil
			}),
			WithAlgorithm(HS256),
		)
		require.NoError(t, err)

		_, _, err = v.Validate(context.Background(), "not.a-jwt")
		assert.Equal(t, authware.KindMalformedCredential, authware.KindOf(err))
		assert.False(t, keyFuncCalled)
	})

	t.Run("a token signed with the wrong key fails signature verification", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, []byte("an-entirely-different-hmac-secret"), nil)

		_, _, err := v.Validate(context.Background(), token)
		assert.Equal(t, authware.KindInvalidSignature, authware.KindOf(err))
	})

	t.Run("an expired token within the clock skew leeway is accepted", func(t *testing.T) {
		v := newValidator(t, WithClockSkew(5*time.Second))

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Set(jwt.ExpirationKey, time.Now().Add(-time.Second)))
		})

		_, _, err := v.Validate(context.Background(), token)
		assert.NoError(t, err)
	})

	t.Run("an expired token without leeway is rejected as expired", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Set(jwt.ExpirationKey, time.Now().Add(-time.Second)))
		})

		_, _, err := v.Validate(context.Background(), token)
		assert.Equal(t, authware.KindCredentialExpired, authware.KindOf(err))
	})

	t.Run("a token that is not yet valid is rejected as expired", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Set(jwt.NotBeforeKey, time.Now().Add(time.Hour)))
		})

		_, _, err := v.Validate(context.Background(), token)
		assert.Equal(t, authware.KindCredentialExpired, authware.KindOf(err))
	})

	t.Run("a token with the wrong issuer is rejected as invalid", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Set(jwt.IssuerKey, "https://rogue.example.com/"))
		})

		_, _, err := v.Validate(context.Background(), token)
		assert.Equal(t, authware.KindInvalidCredential, authware.KindOf(err))
	})

	t.Run("a token with the wrong audience is rejected as invalid", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Set(jwt.AudienceKey, []string{"another-api"}))
		})

		_, _, err := v.Validate(context.Background(), token)
		assert.Equal(t, authware.KindInvalidCredential, authware.KindOf(err))
	})

	t.Run("a token without a subject is malformed", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Remove(jwt.SubjectKey))
		})

		_, _, err := v.Validate(context.Background(), token)
		assert.Equal(t, authware.KindMalformedCredential, authware.KindOf(err))
	})

	t.Run("a token without a scope claim is malformed", func(t *testing.T) {
		v := newValidator(t)

		token := mintToken(t, testSecret, func(tok jwt.Token) {
			require.NoError(t, tok.Remove("scope"))
		})

		_, _, err := v.Validate(context.Background(), token)
		assert.Equal(t, authware.KindMalformedCredential, authware.KindOf(err))
	})

	t.Run("an unreachable key source is upstream unavailable", func(t *testing.T) {
		v, err := New(
			WithKeyFunc(func(context.Context) (any, error) {
				return nil, errors.New("connection refused")
			}),
			WithAlgorithm(HS256),
		)
		require.NoError(t, err)

		_, _, err = v.Validate(context.Background(), mintToken(t, testSecret, nil))
		assert.Equal(t, authware.KindUpstreamUnavailable, authware.KindOf(err))
	})

	t.Run("it verifies against a jwk.Set with key ID matching", func(t *testing.T) {
		key, err := jwk.FromRaw(testSecret)
		require.NoError(t, err)
		require.NoError(t, key.Set(jwk.KeyIDKey, "k1"))
		require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.HS256))

		set := jwk.NewSet()
		require.NoError(t, set.AddKey(key))

		v, err := New(
			WithKeyFunc(staticKeyFunc(set)),
			WithScopeRegistry(registry),
		)
		require.NoError(t, err)

		identity, granted, err := v.Validate(context.Background(), mintToken(t, testSecret, nil))
		require.NoError(t, err)
		assert.Equal(t, testSubject, identity.ID)
		assert.Equal(t, scope.NewSet("read:orders", "write:orders"), granted)
	})
}

func TestNew(t *testing.T) {
	t.Run("it requires a keyFunc", func(t *testing.T) {
		_, err := New(WithAlgorithm(HS256))
		assert.Error(t, err)
	})

	t.Run("it rejects an unsupported algorithm", func(t *testing.T) {
		_, err := New(
			WithKeyFunc(staticKeyFunc(testSecret)),
			WithAlgorithm("none"),
		)
		assert.Error(t, err)
	})

	t.Run("it rejects a negative clock skew", func(t *testing.T) {
		_, err := New(
			WithKeyFunc(staticKeyFunc(testSecret)),
			WithClockSkew(-time.Second),
		)
		assert.Error(t, err)
	})
}
