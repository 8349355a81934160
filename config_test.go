package authware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)

		assert.Equal(t, DefaultAPIKeyHeader, cfg.APIKeyHeader)
		assert.Equal(t, 5*time.Second, cfg.ClockSkew)
		assert.Empty(t, cfg.Issuer)
		assert.Empty(t, cfg.Audience)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("AUTHWARE_API_KEY_HEADER", "X-Service-Key")
		t.Setenv("AUTHWARE_JWT_CLOCK_SKEW", "30s")
		t.Setenv("AUTHWARE_JWT_ISSUER", "https://issuer.example.com/")
		t.Setenv("AUTHWARE_JWT_AUDIENCE", "orders-api")

		cfg, err := ConfigFromEnv()
		require.NoError(t, err)

		assert.Equal(t, "X-Service-Key", cfg.APIKeyHeader)
		assert.Equal(t, 30*time.Second, cfg.ClockSkew)
		assert.Equal(t, "https://issuer.example.com/", cfg.Issuer)
		assert.Equal(t, "orders-api", cfg.Audience)
	})
}
