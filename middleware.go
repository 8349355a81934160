package authware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/authware/authware/scope"
)

// CredentialValidator validates a raw credential and resolves the
// identity and granted scopes behind it. Implementations must return
// *Failure values for every failure mode so no raw library or network
// errors cross the middleware boundary.
//
// The apikey and validator packages provide the two implementations
// selected by credential kind.
type CredentialValidator interface {
	Validate(ctx context.Context, credential string) (Identity, scope.Set, error)
}

// Policy is the per-endpoint scope declaration consumed by the
// middleware at dispatch time.
type Policy struct {
	// RequiredScopes must all be granted to the identity (AND
	// semantics, no partial credit). Empty means no scope is required.
	RequiredScopes []scope.Scope

	// AllowAnonymous lets requests without any credential through with
	// no AuthContext attached. Requests that do present a credential
	// are still fully validated.
	AllowAnonymous bool
}

// Middleware authenticates inbound requests and enforces scope
// requirements before they reach application logic. It is stateless per
// request and safe for concurrent use; configuration is fixed at
// construction time.
type Middleware struct {
	registry        *scope.Registry
	apiKeyValidator CredentialValidator
	bearerValidator CredentialValidator
	extractor       CredentialExtractor
	errorHandler    ErrorHandler
	logger          Logger
	metrics         Metrics
	tracer          Tracer
	apiKeyHeader    string
}

// New constructs a new Middleware instance with the supplied options.
// A scope registry and at least one credential validator are required.
//
// Example:
//
//	m, err := authware.New(
//	    authware.WithScopeRegistry(registry),
//	    authware.WithBearerValidator(jwtValidator),
//	    authware.WithAPIKeyValidator(keyValidator),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create middleware: %v", err)
//	}
func New(opts ...Option) (*Middleware, error) {
	m := &Middleware{
		apiKeyHeader: DefaultAPIKeyHeader,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid middleware configuration: %w", err)
	}

	m.applyDefaults()

	return m, nil
}

// validate ensures all required fields are set.
func (m *Middleware) validate() error {
	if m.registry == nil {
		return ErrScopeRegistryNil
	}
	if m.apiKeyValidator == nil && m.bearerValidator == nil {
		return ErrNoValidator
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (m *Middleware) applyDefaults() {
	if m.extractor == nil {
		m.extractor = HeaderCredentialExtractor(m.apiKeyHeader)
	}
	if m.errorHandler == nil {
		m.errorHandler = DefaultErrorHandler
	}
	if m.metrics == nil {
		m.metrics = &NoopMetrics{}
	}
	if m.tracer == nil {
		m.tracer = &NoopTracer{}
	}
}

// Protect returns an http middleware enforcing the given policy. The
// policy's required scopes are checked against the scope registry here,
// at route construction time: requiring an unregistered scope is a
// configuration error and must not surface as per-request rejections.
func (m *Middleware) Protect(p Policy) (func(http.Handler) http.Handler, error) {
	if err := m.CheckPolicy(p); err != nil {
		return nil, err
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.logger != nil {
				m.logger.Debugf("extracting credential: method=%s path=%s", r.Method, r.URL.Path)
			}

			cred, err := m.extractor(r)
			if err != nil {
				// An error here means a credential was presented but
				// incorrectly formed, not that it was missing.
				if m.logger != nil {
					m.logger.Warnf("failed to extract credential: %v", err)
				}
				m.reject(w, r, err)
				return
			}

			ac, err := m.Authenticate(r.Context(), cred, p)
			if err != nil {
				m.reject(w, r, err)
				return
			}

			// Anonymous pass: no AuthContext is attached, downstream
			// code sees the request as unauthenticated.
			if ac == nil {
				next.ServeHTTP(w, r)
				return
			}

			r = r.Clone(SetAuthContext(r.Context(), ac))
			next.ServeHTTP(w, r)
		})
	}, nil
}

// CheckPolicy reports whether every scope the policy requires is
// registered. Framework adapters call this at route construction so a
// misdeclared policy fails at startup rather than per request.
func (m *Middleware) CheckPolicy(p Policy) error {
	for _, sc := range p.RequiredScopes {
		if !m.registry.Validate(sc) {
			return fmt.Errorf("required scope %q is not registered", sc)
		}
	}
	return nil
}

// Extract runs the configured credential extractor against the request.
// A zero Credential with a nil error means no credential was presented.
func (m *Middleware) Extract(r *http.Request) (Credential, error) {
	return m.extractor(r)
}

// MustProtect is like Protect but panics when the policy requires an
// unregistered scope. Intended for route construction at startup.
func (m *Middleware) MustProtect(p Policy) func(http.Handler) http.Handler {
	mw, err := m.Protect(p)
	if err != nil {
		panic(err)
	}
	return mw
}

// Authenticate runs the transport-agnostic authentication sequence:
// validator dispatch by credential kind, then scope enforcement. It
// returns the AuthContext to attach, (nil, nil) for an anonymous pass,
// or a *Failure describing the rejection. Extraction happens on the
// transport side; extraction, validation and authorization for one
// request run strictly in sequence.
func (m *Middleware) Authenticate(ctx context.Context, cred Credential, p Policy) (ac *AuthContext, err error) {
	ctx, span := m.tracer.StartSpan(ctx, "authware.authenticate")
	start := time.Now()
	defer func() {
		outcome, kind := "passed", "none"
		if err != nil {
			outcome, kind = "rejected", string(KindOf(err))
		}
		span.SetTag("outcome", outcome)
		span.Finish()
		tags := map[string]string{"outcome": outcome, "kind": kind}
		m.metrics.IncCounter(MetricAuthRequests, tags)
		m.metrics.ObserveHistogram(MetricAuthDuration, time.Since(start).Seconds(), tags)
	}()

	if cred.IsZero() {
		if p.AllowAnonymous {
			if m.logger != nil {
				m.logger.Debugf("no credential provided, continuing anonymously")
			}
			return nil, nil
		}
		return nil, NewFailure(KindMissingCredential, "no credential was provided")
	}

	validator, err := m.validatorFor(cred.Kind)
	if err != nil {
		return nil, err
	}

	identity, granted, err := validator.Validate(ctx, cred.Token)
	if err != nil {
		if m.logger != nil {
			m.logger.Warnf("credential validation failed: %v", err)
		}
		var f *Failure
		if !errors.As(err, &f) {
			// Validators are expected to return Failures; anything else
			// is recovered here so it cannot cross the boundary raw.
			err = WrapFailure(KindInvalidCredential, "credential rejected", err)
		}
		return nil, err
	}

	required := scope.NewSet(p.RequiredScopes...)
	if !m.registry.IsSatisfied(required, granted) {
		missing := m.registry.Missing(required, granted)
		return nil, NewFailure(
			KindInsufficientScope,
			fmt.Sprintf("missing required scopes: %s", scope.NewSet(missing...)),
		)
	}

	if m.logger != nil {
		m.logger.Debugf("authenticated %s identity %q", identity.Kind, identity.ID)
	}

	return &AuthContext{Identity: identity, Scopes: granted}, nil
}

// validatorFor dispatches to the validator registered for the credential
// kind.
func (m *Middleware) validatorFor(kind CredentialKind) (CredentialValidator, error) {
	switch kind {
	case CredentialKindBearer:
		if m.bearerValidator == nil {
			return nil, NewFailure(KindInvalidCredential, "bearer token authentication is not enabled")
		}
		return m.bearerValidator, nil
	case CredentialKindAPIKey:
		if m.apiKeyValidator == nil {
			return nil, NewFailure(KindInvalidCredential, "API key authentication is not enabled")
		}
		return m.apiKeyValidator, nil
	default:
		return nil, NewFailure(KindMalformedCredential, fmt.Sprintf("unsupported credential kind %q", kind))
	}
}

// reject maps the failure to a response exactly once and stops further
// processing; downstream logic never runs for a rejected request.
func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	m.errorHandler(w, r, err)
}
