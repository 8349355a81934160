package jwks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jwksServer(t *testing.T) *httptest.Server {
	t.Helper()

	key, err := jwk.FromRaw([]byte("your-256-bit-secret-is-just-enough"))
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "k1"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.HS256))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(key))

	body, err := json.Marshal(set)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)

	return server
}

func TestProvider_KeyFunc(t *testing.T) {
	server := jwksServer(t)

	provider, err := NewProvider(WithJWKSURL(server.URL))
	require.NoError(t, err)

	material, err := provider.KeyFunc(context.Background())
	require.NoError(t, err)

	set, ok := material.(jwk.Set)
	require.True(t, ok)
	assert.Equal(t, 1, set.Len())

	key, found := set.LookupKeyID("k1")
	require.True(t, found)
	assert.Equal(t, jwa.HS256.String(), key.Algorithm().String())
}

func TestProvider_KeyFunc_Unreachable(t *testing.T) {
	server := jwksServer(t)
	jwksURL := server.URL
	server.Close()

	provider, err := NewProvider(WithJWKSURL(jwksURL))
	require.NoError(t, err)

	_, err = provider.KeyFunc(context.Background())
	assert.Error(t, err)
}

func TestCachingProvider_KeyFunc(t *testing.T) {
	server := jwksServer(t)

	provider, err := NewCachingProvider(context.Background(), WithJWKSURL(server.URL))
	require.NoError(t, err)

	material, err := provider.KeyFunc(context.Background())
	require.NoError(t, err)

	set, ok := material.(jwk.Set)
	require.True(t, ok)
	assert.Equal(t, 1, set.Len())
}

func TestNewProvider_RequiresURL(t *testing.T) {
	_, err := NewProvider()
	assert.Error(t, err)

	_, err = NewCachingProvider(context.Background())
	assert.Error(t, err)
}

func TestStaticKeyFunc(t *testing.T) {
	keyFunc := StaticKeyFunc([]byte("secret"))

	material, err := keyFunc(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), material)
}
