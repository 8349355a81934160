package jwks

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// ProviderOption configures Provider and CachingProvider construction.
type ProviderOption func(*providerConfig) error

// WithJWKSURL sets the JWKS endpoint to fetch verification keys from
// (REQUIRED).
func WithJWKSURL(rawURL string) ProviderOption {
	return func(cfg *providerConfig) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return err
		}
		if u.Scheme == "" || u.Host == "" {
			return errors.New("JWKS URL must be absolute")
		}
		cfg.jwksURL = rawURL
		return nil
	}
}

// WithHTTPClient sets the HTTP client used to reach the JWKS endpoint.
//
// Default: a client with a 30s timeout.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(cfg *providerConfig) error {
		if client == nil {
			return errors.New("HTTP client cannot be nil")
		}
		cfg.client = client
		return nil
	}
}

// WithRefreshInterval sets the minimum interval between JWKS refreshes
// for the CachingProvider.
//
// Default: 15 minutes.
func WithRefreshInterval(interval time.Duration) ProviderOption {
	return func(cfg *providerConfig) error {
		if interval <= 0 {
			return errors.New("refresh interval must be positive")
		}
		cfg.refreshInterval = interval
		return nil
	}
}
