// Package jwks provides signing key sources for the JWT validator:
// a static key, a remote JWKS endpoint, and a caching wrapper that
// handles key rotation.
package jwks

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// StaticKeyFunc returns a key function that always yields the given key
// material. Use it for deployments with a fixed verification key.
func StaticKeyFunc(key any) func(ctx context.Context) (any, error) {
	return func(context.Context) (any, error) {
		return key, nil
	}
}

// Provider fetches JWKS from the configured URL on every call and
// exposes KeyFunc, which adheres to the keyFunc signature the Validator
// requires. Most likely you will want the CachingProvider instead, as
// it avoids refetching on every request and the potential rate limiting
// from your key authority.
type Provider struct {
	jwksURL string
	client  *http.Client
}

// NewProvider builds and returns a new *Provider. WithJWKSURL is
// required.
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	cfg := defaultProviderConfig()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if cfg.jwksURL == "" {
		return nil, fmt.Errorf("JWKS URL is required, use WithJWKSURL")
	}

	return &Provider{jwksURL: cfg.jwksURL, client: cfg.client}, nil
}

// KeyFunc fetches the key set. As long as the error is nil the returned
// type is jwk.Set.
func (p *Provider) KeyFunc(ctx context.Context) (any, error) {
	set, err := jwk.Fetch(ctx, p.jwksURL, jwk.WithHTTPClient(p.client))
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}
	return set, nil
}

// CachingProvider fetches JWKS through a refreshing cache, so signing
// key rotation is picked up without a restart. Lookups observe either
// the fully-old or fully-new key set, never a mix; the swap is atomic.
type CachingProvider struct {
	jwksURL string
	cache   *jwk.Cache
}

// NewCachingProvider builds and returns a new *CachingProvider. The
// context bounds the background refresh goroutine. WithJWKSURL is
// required.
func NewCachingProvider(ctx context.Context, opts ...ProviderOption) (*CachingProvider, error) {
	cfg := defaultProviderConfig()

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if cfg.jwksURL == "" {
		return nil, fmt.Errorf("JWKS URL is required, use WithJWKSURL")
	}

	cache := jwk.NewCache(ctx)
	err := cache.Register(cfg.jwksURL,
		jwk.WithHTTPClient(cfg.client),
		jwk.WithMinRefreshInterval(cfg.refreshInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("could not register JWKS URL: %w", err)
	}

	return &CachingProvider{jwksURL: cfg.jwksURL, cache: cache}, nil
}

// KeyFunc returns the cached key set, refreshing it when stale. As long
// as the error is nil the returned type is jwk.Set.
func (p *CachingProvider) KeyFunc(ctx context.Context) (any, error) {
	set, err := p.cache.Get(ctx, p.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}
	return set, nil
}

type providerConfig struct {
	jwksURL         string
	client          *http.Client
	refreshInterval time.Duration
}

func defaultProviderConfig() *providerConfig {
	return &providerConfig{
		client:          &http.Client{Timeout: 30 * time.Second},
		refreshInterval: 15 * time.Minute,
	}
}
