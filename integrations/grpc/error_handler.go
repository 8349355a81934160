package grpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/authware/authware"
)

// ErrorHandler converts authentication failures to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps failure kinds to gRPC status codes the same
// way the HTTP handler maps them to status codes:
//
//	missing, invalid, bad signature, expired -> Unauthenticated
//	malformed                                -> InvalidArgument
//	insufficient scope                       -> PermissionDenied
//	upstream unavailable                     -> Unavailable
//
// Anything that is not a *Failure is reported as Internal without its
// message, so raw library or network errors never reach clients.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	var f *authware.Failure
	if !errors.As(err, &f) {
		return status.Error(codes.Internal, "authentication failed for an unexpected reason")
	}

	switch f.Kind {
	case authware.KindMalformedCredential:
		return status.Error(codes.InvalidArgument, f.Detail)
	case authware.KindInsufficientScope:
		return status.Error(codes.PermissionDenied, f.Detail)
	case authware.KindUpstreamUnavailable:
		return status.Error(codes.Unavailable, f.Detail)
	default:
		return status.Error(codes.Unauthenticated, f.Detail)
	}
}
