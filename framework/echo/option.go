package echoware

import (
	"github.com/labstack/echo/v4"

	"github.com/authware/authware"
)

// Option defines a functional option for configuring the middleware
type Option func(*echoMiddlewareConfig)

// WithErrorHandler sets a custom error handler for the middleware
func WithErrorHandler(handler func(echo.Context, error)) Option {
	return func(config *echoMiddlewareConfig) {
		config.errorHandler = handler
	}
}

// WithContextKey sets the echo context key the AuthContext is stored
// under
func WithContextKey(key string) Option {
	return func(config *echoMiddlewareConfig) {
		config.contextKey = key
	}
}

// WithCredentialExtractor overrides the middleware's credential
// extractor for routes built with this adapter
func WithCredentialExtractor(extractor authware.CredentialExtractor) Option {
	return func(config *echoMiddlewareConfig) {
		config.extractor = extractor
	}
}
