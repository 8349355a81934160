package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"

	"github.com/authware/authware"
)

// Interceptor enforces authentication and scope policies on gRPC
// servers. Each method is checked against its registered policy, or the
// default policy when none is registered. Excluded methods bypass
// authentication entirely.
type Interceptor struct {
	middleware     *authware.Middleware
	defaultPolicy  authware.Policy
	methodPolicies map[string]authware.Policy
	extractor      CredentialExtractor
	errorHandler   ErrorHandler
	excluded       map[string]bool
	logger         authware.Logger
}

// New creates a gRPC interceptor with the provided options. The
// WithMiddleware option is required. Every scope named by a method
// policy or the default policy must be registered; a misdeclared policy
// is a construction error.
func New(opts ...Option) (*Interceptor, error) {
	i := &Interceptor{
		methodPolicies: make(map[string]authware.Policy),
		errorHandler:   DefaultErrorHandler,
		excluded:       make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	if i.middleware == nil {
		return nil, errors.New("middleware is required, use WithMiddleware option")
	}
	if i.extractor == nil {
		i.extractor = MetadataCredentialExtractor(DefaultAPIKeyMetadataKey)
	}

	if err := i.middleware.CheckPolicy(i.defaultPolicy); err != nil {
		return nil, fmt.Errorf("invalid default policy: %w", err)
	}
	for method, p := range i.methodPolicies {
		if err := i.middleware.CheckPolicy(p); err != nil {
			return nil, fmt.Errorf("invalid policy for %s: %w", method, err)
		}
	}

	return i, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// authenticates requests and makes the AuthContext available in the
// handler context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excluded[info.FullMethod] {
			return handler(ctx, req)
		}

		ctx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(ctx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// authenticates streams and makes the AuthContext available in the
// stream context.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excluded[info.FullMethod] {
			return handler(srv, ss)
		}

		ctx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: ctx})
	}
}

// authenticate runs extraction, validation and scope enforcement for
// one call and returns the context to hand to the handler.
func (i *Interceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	policy := i.policyFor(method)

	cred, err := i.extractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Warnf("failed to extract credential: method=%s err=%v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	ac, err := i.middleware.Authenticate(ctx, cred, policy)
	if err != nil {
		if i.logger != nil {
			i.logger.Warnf("authentication failed: method=%s err=%v", method, err)
		}
		return ctx, i.errorHandler(err)
	}

	if ac != nil {
		ctx = authware.SetAuthContext(ctx, ac)
	}

	return ctx, nil
}

func (i *Interceptor) policyFor(method string) authware.Policy {
	if p, ok := i.methodPolicies[method]; ok {
		return p
	}
	return i.defaultPolicy
}

// wrappedServerStream wraps grpc.ServerStream with a custom context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context carrying the AuthContext.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
