package authware

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authware/authware/scope"
)

// fakeValidator scripts Validate responses and records calls.
type fakeValidator struct {
	identity Identity
	scopes   scope.Set
	err      error

	called   bool
	gotToken string
}

func (f *fakeValidator) Validate(_ context.Context, token string) (Identity, scope.Set, error) {
	f.called = true
	f.gotToken = token
	if f.err != nil {
		return Identity{}, nil, f.err
	}
	return f.identity, f.scopes, nil
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "authenticated")
})

func TestMiddleware_Protect(t *testing.T) {
	registry := scope.NewRegistry("read:orders", "write:orders")

	testCases := []struct {
		name            string
		policy          Policy
		headers         map[string]string
		bearerValidator *fakeValidator
		apiKeyValidator *fakeValidator

		expectStatusCode int
		expectKind       Kind
		expectBody       string
	}{
		{
			name:    "happy path via bearer",
			headers: map[string]string{"Authorization": "Bearer sometoken"},
			bearerValidator: &fakeValidator{
				identity: Identity{ID: "user_1", Kind: IdentityKindJWTSubject},
				scopes:   scope.NewSet("read:orders"),
			},
			policy:           Policy{RequiredScopes: []scope.Scope{"read:orders"}},
			expectStatusCode: http.StatusOK,
			expectBody:       "authenticated",
		},
		{
			name:    "happy path via api key",
			headers: map[string]string{"X-API-Key": "sk_live_abc"},
			apiKeyValidator: &fakeValidator{
				identity: Identity{ID: "acct_1", Kind: IdentityKindAPIKey},
				scopes:   scope.NewSet("read:orders"),
			},
			policy:           Policy{RequiredScopes: []scope.Scope{"read:orders"}},
			expectStatusCode: http.StatusOK,
			expectBody:       "authenticated",
		},
		{
			name:             "missing credential",
			policy:           Policy{},
			bearerValidator:  &fakeValidator{},
			expectStatusCode: http.StatusUnauthorized,
			expectKind:       KindMissingCredential,
		},
		{
			name:             "missing credential with anonymous access allowed",
			policy:           Policy{AllowAnonymous: true},
			bearerValidator:  &fakeValidator{},
			expectStatusCode: http.StatusOK,
			expectBody:       "authenticated",
		},
		{
			name:             "malformed authorization header",
			headers:          map[string]string{"Authorization": "sometoken"},
			bearerValidator:  &fakeValidator{},
			expectStatusCode: http.StatusBadRequest,
			expectKind:       KindMalformedCredential,
		},
		{
			name:    "insufficient scope",
			headers: map[string]string{"Authorization": "Bearer sometoken"},
			bearerValidator: &fakeValidator{
				identity: Identity{ID: "user_1"},
				scopes:   scope.NewSet("read:orders"),
			},
			policy:           Policy{RequiredScopes: []scope.Scope{"read:orders", "write:orders"}},
			expectStatusCode: http.StatusForbidden,
			expectKind:       KindInsufficientScope,
		},
		{
			name:    "validator failure kind is preserved",
			headers: map[string]string{"Authorization": "Bearer sometoken"},
			bearerValidator: &fakeValidator{
				err: NewFailure(KindCredentialExpired, "bearer token is outside its validity window"),
			},
			expectStatusCode: http.StatusUnauthorized,
			expectKind:       KindCredentialExpired,
		},
		{
			name:    "upstream unavailable maps to 503",
			headers: map[string]string{"Authorization": "Bearer sometoken"},
			bearerValidator: &fakeValidator{
				err: NewFailure(KindUpstreamUnavailable, "key store is unreachable"),
			},
			expectStatusCode: http.StatusServiceUnavailable,
			expectKind:       KindUpstreamUnavailable,
		},
		{
			name:             "api key presented but api key auth not enabled",
			headers:          map[string]string{"X-API-Key": "sk_live_abc"},
			bearerValidator:  &fakeValidator{},
			expectStatusCode: http.StatusUnauthorized,
			expectKind:       KindInvalidCredential,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := []Option{WithScopeRegistry(registry)}
			if tc.bearerValidator != nil {
				opts = append(opts, WithBearerValidator(tc.bearerValidator))
			}
			if tc.apiKeyValidator != nil {
				opts = append(opts, WithAPIKeyValidator(tc.apiKeyValidator))
			}

			m, err := New(opts...)
			require.NoError(t, err)

			ts := httptest.NewServer(m.MustProtect(tc.policy)(okHandler))
			defer ts.Close()

			req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
			require.NoError(t, err)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			res, err := ts.Client().Do(req)
			require.NoError(t, err)
			body, err := io.ReadAll(res.Body)
			res.Body.Close()
			require.NoError(t, err)

			assert.Equal(t, tc.expectStatusCode, res.StatusCode)
			if tc.expectKind != "" {
				assert.Contains(t, string(body), string(tc.expectKind))
				assert.Equal(t, "application/json", res.Header.Get("Content-Type"))
			} else {
				assert.Equal(t, tc.expectBody, string(body))
			}
		})
	}
}

func TestMiddleware_Protect_BearerTakesPrecedence(t *testing.T) {
	registry := scope.NewRegistry("read:orders")
	bearer := &fakeValidator{identity: Identity{ID: "user_1"}, scopes: scope.NewSet("read:orders")}
	apiKey := &fakeValidator{}

	m, err := New(
		WithScopeRegistry(registry),
		WithBearerValidator(bearer),
		WithAPIKeyValidator(apiKey),
	)
	require.NoError(t, err)

	ts := httptest.NewServer(m.MustProtect(Policy{})(okHandler))
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer sometoken")
	req.Header.Set("X-API-Key", "sk_live_abc")

	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.True(t, bearer.called)
	assert.Equal(t, "sometoken", bearer.gotToken)
	assert.False(t, apiKey.called, "key store path must never run when a bearer token is present")
}

func TestMiddleware_Protect_AttachesAuthContext(t *testing.T) {
	registry := scope.NewRegistry("read:orders")
	bearer := &fakeValidator{
		identity: Identity{ID: "user_1", Kind: IdentityKindJWTSubject, Label: "Ada"},
		scopes:   scope.NewSet("read:orders"),
	}

	m, err := New(WithScopeRegistry(registry), WithBearerValidator(bearer))
	require.NoError(t, err)

	var gotAC *AuthContext
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAC, _ = GetAuthContext(r.Context())
	})

	ts := httptest.NewServer(m.MustProtect(Policy{})(handler))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	req.Header.Set("Authorization", "Bearer sometoken")
	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	res.Body.Close()

	require.NotNil(t, gotAC)
	assert.Equal(t, "user_1", gotAC.Identity.ID)
	assert.True(t, gotAC.HasScope("read:orders"))
}

func TestMiddleware_Protect_AnonymousHasNoAuthContext(t *testing.T) {
	registry := scope.NewRegistry("read:orders")

	m, err := New(WithScopeRegistry(registry), WithBearerValidator(&fakeValidator{}))
	require.NoError(t, err)

	sawAuthContext := true
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuthContext = HasAuthContext(r.Context())
	})

	ts := httptest.NewServer(m.MustProtect(Policy{AllowAnonymous: true})(handler))
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL)
	require.NoError(t, err)
	res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.False(t, sawAuthContext)
}

func TestMiddleware_Protect_RejectsUnregisteredScope(t *testing.T) {
	registry := scope.NewRegistry("read:orders")

	m, err := New(WithScopeRegistry(registry), WithBearerValidator(&fakeValidator{}))
	require.NoError(t, err)

	_, err = m.Protect(Policy{RequiredScopes: []scope.Scope{"admin:everything"}})
	assert.ErrorContains(t, err, "not registered")

	assert.Panics(t, func() {
		m.MustProtect(Policy{RequiredScopes: []scope.Scope{"admin:everything"}})
	})
}

func TestMiddleware_Authenticate_RecoversNonFailureErrors(t *testing.T) {
	registry := scope.NewRegistry("read:orders")
	bearer := &fakeValidator{err: errors.New("raw library error")}

	m, err := New(WithScopeRegistry(registry), WithBearerValidator(bearer))
	require.NoError(t, err)

	_, err = m.Authenticate(context.Background(), Credential{Kind: CredentialKindBearer, Token: "x"}, Policy{})
	require.Error(t, err)
	assert.Equal(t, KindInvalidCredential, KindOf(err))
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestNew(t *testing.T) {
	registry := scope.NewRegistry()

	t.Run("it requires a scope registry", func(t *testing.T) {
		_, err := New(WithBearerValidator(&fakeValidator{}))
		assert.ErrorIs(t, err, ErrScopeRegistryNil)
	})

	t.Run("it requires at least one validator", func(t *testing.T) {
		_, err := New(WithScopeRegistry(registry))
		assert.ErrorIs(t, err, ErrNoValidator)
	})

	t.Run("it rejects nil option values", func(t *testing.T) {
		_, err := New(WithScopeRegistry(registry), WithBearerValidator(nil))
		assert.ErrorIs(t, err, ErrValidatorNil)
	})
}

// countingMetrics records counter increments per outcome tag.
type countingMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingMetrics) IncCounter(name string, tags map[string]string) {
	if name != MetricAuthRequests {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = make(map[string]int)
	}
	c.outcomes[tags["outcome"]]++
}

func (c *countingMetrics) ObserveHistogram(string, float64, map[string]string) {}

func TestMiddleware_Authenticate_EmitsMetrics(t *testing.T) {
	registry := scope.NewRegistry("read:orders")
	metrics := &countingMetrics{}

	m, err := New(
		WithScopeRegistry(registry),
		WithBearerValidator(&fakeValidator{identity: Identity{ID: "user_1"}, scopes: scope.NewSet()}),
		WithMetrics(metrics),
	)
	require.NoError(t, err)

	_, err = m.Authenticate(context.Background(), Credential{Kind: CredentialKindBearer, Token: "x"}, Policy{})
	require.NoError(t, err)

	_, err = m.Authenticate(context.Background(), Credential{}, Policy{})
	require.Error(t, err)

	assert.Equal(t, 1, metrics.outcomes["passed"])
	assert.Equal(t, 1, metrics.outcomes["rejected"])
}
