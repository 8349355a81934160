package ginware

import (
	"github.com/gin-gonic/gin"

	"github.com/authware/authware"
)

// Option defines a functional option for configuring the middleware
type Option func(*ginMiddlewareConfig)

// WithErrorHandler sets a custom error handler for the middleware
func WithErrorHandler(handler func(*gin.Context, error)) Option {
	return func(config *ginMiddlewareConfig) {
		config.errorHandler = handler
	}
}

// WithContextKey sets the gin context key the AuthContext is stored
// under
func WithContextKey(key string) Option {
	return func(config *ginMiddlewareConfig) {
		config.contextKey = key
	}
}

// WithCredentialExtractor overrides the middleware's credential
// extractor for routes built with this adapter
func WithCredentialExtractor(extractor authware.CredentialExtractor) Option {
	return func(config *ginMiddlewareConfig) {
		config.extractor = extractor
	}
}
