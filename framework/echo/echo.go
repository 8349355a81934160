// Package echoware adapts the authware middleware to the Echo framework.
package echoware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/authware/authware"
)

// DefaultContextKey is the echo context key under which the AuthContext
// is stored.
const DefaultContextKey = "authware"

// echoMiddlewareConfig holds all configuration for the middleware
type echoMiddlewareConfig struct {
	errorHandler func(echo.Context, error)
	contextKey   string
	extractor    authware.CredentialExtractor
}

// New creates an Echo middleware enforcing the given policy. The error
// is non-nil when the policy requires a scope that is not registered.
func New(m *authware.Middleware, policy authware.Policy, opts ...Option) (echo.MiddlewareFunc, error) {
	config := &echoMiddlewareConfig{
		errorHandler: defaultEchoErrorHandler,
		contextKey:   DefaultContextKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	if err := m.CheckPolicy(policy); err != nil {
		return nil, err
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cred, err := extract(m, config, c.Request())
			if err != nil {
				config.errorHandler(c, err)
				return nil
			}

			ac, err := m.Authenticate(c.Request().Context(), cred, policy)
			if err != nil {
				config.errorHandler(c, err)
				return nil
			}

			if ac != nil {
				c.Set(config.contextKey, ac)
				req := c.Request()
				c.SetRequest(req.Clone(authware.SetAuthContext(req.Context(), ac)))
			}

			return next(c)
		}
	}, nil
}

// MustNew is like New but panics on a misdeclared policy. Intended for
// route construction at startup.
func MustNew(m *authware.Middleware, policy authware.Policy, opts ...Option) echo.MiddlewareFunc {
	mw, err := New(m, policy, opts...)
	if err != nil {
		panic(err)
	}
	return mw
}

func extract(m *authware.Middleware, config *echoMiddlewareConfig, r *http.Request) (authware.Credential, error) {
	if config.extractor != nil {
		return config.extractor(r)
	}
	return m.Extract(r)
}

func defaultEchoErrorHandler(c echo.Context, err error) {
	authware.DefaultErrorHandler(c.Response(), c.Request(), err)
}

// GetAuthContext extracts the AuthContext from the Echo context. The
// boolean is false when the request was not authenticated.
func GetAuthContext(c echo.Context, contextKey string) (*authware.AuthContext, bool) {
	if contextKey == "" {
		contextKey = DefaultContextKey
	}
	value := c.Get(contextKey)
	if value == nil {
		return nil, false
	}

	ac, ok := value.(*authware.AuthContext)
	return ac, ok
}
