package authware

import (
	"errors"

	"github.com/authware/authware/scope"
)

// Configuration errors returned by New.
var (
	// ErrScopeRegistryNil is returned when no scope registry is configured.
	ErrScopeRegistryNil = errors.New("scope registry is required, use WithScopeRegistry")

	// ErrNoValidator is returned when neither an API key validator nor a
	// bearer validator is configured.
	ErrNoValidator = errors.New("at least one credential validator is required")

	// ErrValidatorNil is returned when a nil validator is passed to an option.
	ErrValidatorNil = errors.New("validator cannot be nil")

	// ErrExtractorNil is returned when a nil extractor is passed to an option.
	ErrExtractorNil = errors.New("credential extractor cannot be nil")

	// ErrErrorHandlerNil is returned when a nil error handler is passed to an option.
	ErrErrorHandlerNil = errors.New("error handler cannot be nil")
)

// Option configures the Middleware. Options return errors to enable
// validation during construction.
type Option func(*Middleware) error

// WithScopeRegistry sets the registry of scopes known to the deployment
// (REQUIRED). It backs both scope enforcement and the configuration-time
// validation of endpoint policies.
func WithScopeRegistry(r *scope.Registry) Option {
	return func(m *Middleware) error {
		if r == nil {
			return ErrScopeRegistryNil
		}
		m.registry = r
		return nil
	}
}

// WithBearerValidator sets the validator used for bearer credentials,
// typically a *validator.Validator.
func WithBearerValidator(v CredentialValidator) Option {
	return func(m *Middleware) error {
		if v == nil {
			return ErrValidatorNil
		}
		m.bearerValidator = v
		return nil
	}
}

// WithAPIKeyValidator sets the validator used for API key credentials,
// typically an *apikey.Validator.
func WithAPIKeyValidator(v CredentialValidator) Option {
	return func(m *Middleware) error {
		if v == nil {
			return ErrValidatorNil
		}
		m.apiKeyValidator = v
		return nil
	}
}

// WithAPIKeyHeader sets the header name the default extractor reads API
// keys from.
//
// Default: X-API-Key
func WithAPIKeyHeader(name string) Option {
	return func(m *Middleware) error {
		if name == "" {
			return errors.New("API key header name cannot be empty")
		}
		m.apiKeyHeader = name
		return nil
	}
}

// WithCredentialExtractor sets the function to extract the credential
// from the request.
//
// Default: HeaderCredentialExtractor with the configured API key header.
func WithCredentialExtractor(e CredentialExtractor) Option {
	return func(m *Middleware) error {
		if e == nil {
			return ErrExtractorNil
		}
		m.extractor = e
		return nil
	}
}

// WithErrorHandler sets the handler called when a request is rejected.
// See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Middleware) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		m.errorHandler = h
		return nil
	}
}

// WithLogger sets an optional logger for boundary logging. See the
// adapters NewLogrusLogger, NewZapLogger and NewZerologLogger.
func WithLogger(l Logger) Option {
	return func(m *Middleware) error {
		m.logger = l
		return nil
	}
}

// WithMetrics sets an optional Metrics sink for auth outcomes.
//
// Default: NoopMetrics
func WithMetrics(metrics Metrics) Option {
	return func(m *Middleware) error {
		if metrics == nil {
			return errors.New("metrics cannot be nil")
		}
		m.metrics = metrics
		return nil
	}
}

// WithTracer sets an optional Tracer spanning each authentication check.
//
// Default: NoopTracer
func WithTracer(t Tracer) Option {
	return func(m *Middleware) error {
		if t == nil {
			return errors.New("tracer cannot be nil")
		}
		m.tracer = t
		return nil
	}
}
