package grpc

import (
	"errors"

	"github.com/authware/authware"
)

// Option configures the interceptor.
type Option func(*Interceptor) error

// WithMiddleware sets the authware middleware driving authentication
// (REQUIRED).
func WithMiddleware(m *authware.Middleware) Option {
	return func(i *Interceptor) error {
		if m == nil {
			return errors.New("middleware cannot be nil")
		}
		i.middleware = m
		return nil
	}
}

// WithDefaultPolicy sets the policy applied to methods without a
// method-specific policy. The zero policy requires a valid credential
// and no particular scope.
func WithDefaultPolicy(p authware.Policy) Option {
	return func(i *Interceptor) error {
		i.defaultPolicy = p
		return nil
	}
}

// WithMethodPolicy registers a policy for one method. Methods are named
// in the format "/package.Service/Method".
func WithMethodPolicy(method string, p authware.Policy) Option {
	return func(i *Interceptor) error {
		if method == "" {
			return errors.New("method cannot be empty")
		}
		i.methodPolicies[method] = p
		return nil
	}
}

// WithCredentialExtractor sets a custom credential extractor. Default
// is MetadataCredentialExtractor over the "authorization" and
// "x-api-key" metadata keys.
func WithCredentialExtractor(extractor CredentialExtractor) Option {
	return func(i *Interceptor) error {
		if extractor == nil {
			return errors.New("credential extractor cannot be nil")
		}
		i.extractor = extractor
		return nil
	}
}

// WithErrorHandler sets a custom error handler. Default is
// DefaultErrorHandler which maps failure kinds to gRPC status codes.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *Interceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithExcludedMethods exempts specific methods from authentication,
// e.g. "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) error {
		for _, method := range methods {
			i.excluded[method] = true
		}
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor.
func WithLogger(logger authware.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}
