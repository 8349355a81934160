package authware

import (
	"time"

	"github.com/joeshaw/envdecode"
)

// DefaultAPIKeyHeader is the API-key header recognized when no other
// header name is configured.
const DefaultAPIKeyHeader = "X-API-Key"

// Config carries the deployment-level validation settings. It is loaded
// once at process start and treated as read-only for the process
// lifetime; swap the whole Middleware to change it.
type Config struct {
	// APIKeyHeader is the header carrying opaque API keys.
	APIKeyHeader string `env:"AUTHWARE_API_KEY_HEADER,default=X-API-Key"`

	// ClockSkew is the leeway applied when comparing token expiry and
	// not-before claims against the current time. It absorbs clock
	// drift between the issuing authority and this process.
	ClockSkew time.Duration `env:"AUTHWARE_JWT_CLOCK_SKEW,default=5s"`

	// Issuer, when non-empty, is matched against the iss claim.
	Issuer string `env:"AUTHWARE_JWT_ISSUER"`

	// Audience, when non-empty, must be contained in the aud claim.
	Audience string `env:"AUTHWARE_JWT_AUDIENCE"`
}

// ConfigFromEnv loads Config from the environment, applying defaults for
// unset variables.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
