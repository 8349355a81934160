// Package ginware adapts the authware middleware to the Gin framework.
package ginware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authware/authware"
)

// DefaultContextKey is the gin context key under which the AuthContext
// is stored.
const DefaultContextKey = "authware"

var (
	ErrMissingAuthContext = errors.New("no auth context found in gin context")
	ErrInvalidAuthContext = errors.New("invalid auth context type")
)

type ginMiddlewareConfig struct {
	errorHandler func(*gin.Context, error)
	contextKey   string
	extractor    authware.CredentialExtractor
}

// New creates a Gin middleware enforcing the given policy. The error is
// non-nil when the policy requires a scope that is not registered.
//
// The returned handler authenticates the request, stores the resulting
// AuthContext under the configured context key (and in the request
// context), and aborts the chain on rejection.
func New(m *authware.Middleware, policy authware.Policy, opts ...Option) (gin.HandlerFunc, error) {
	config := &ginMiddlewareConfig{
		errorHandler: defaultGinErrorHandler,
		contextKey:   DefaultContextKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := m.CheckPolicy(policy); err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		cred, err := extract(m, config, c.Request)
		if err != nil {
			config.errorHandler(c, err)
			c.Abort()
			return
		}

		ac, err := m.Authenticate(c.Request.Context(), cred, policy)
		if err != nil {
			config.errorHandler(c, err)
			c.Abort()
			return
		}

		if ac != nil {
			c.Set(config.contextKey, ac)
			c.Request = c.Request.Clone(authware.SetAuthContext(c.Request.Context(), ac))
		}

		c.Next()
	}, nil
}

// MustNew is like New but panics on a misdeclared policy. Intended for
// route construction at startup.
func MustNew(m *authware.Middleware, policy authware.Policy, opts ...Option) gin.HandlerFunc {
	handler, err := New(m, policy, opts...)
	if err != nil {
		panic(err)
	}
	return handler
}

func extract(m *authware.Middleware, config *ginMiddlewareConfig, r *http.Request) (authware.Credential, error) {
	if config.extractor != nil {
		return config.extractor(r)
	}
	return m.Extract(r)
}

func defaultGinErrorHandler(c *gin.Context, err error) {
	authware.DefaultErrorHandler(c.Writer, c.Request, err)
}

// GetAuthContext returns the AuthContext stored by the middleware, or an
// error when the request was not authenticated.
func GetAuthContext(c *gin.Context, contextKey string) (*authware.AuthContext, error) {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}
	value, exists := c.Get(contextKey)
	if !exists {
		return nil, ErrMissingAuthContext
	}

	ac, ok := value.(*authware.AuthContext)
	if !ok {
		return nil, ErrInvalidAuthContext
	}

	return ac, nil
}
