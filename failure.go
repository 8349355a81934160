package authware

import (
	"errors"
	"fmt"
)

// Kind identifies a class of authentication or authorization failure.
// Kinds are stable, machine-readable identifiers that are safe to return
// to clients.
type Kind string

const (
	// KindMissingCredential means no credential was presented and the
	// endpoint does not allow anonymous access.
	KindMissingCredential = Kind("missing_credential")

	// KindMalformedCredential means the presented token or key was
	// structurally invalid.
	KindMalformedCredential = Kind("malformed_credential")

	// KindInvalidCredential means the credential was well formed but not
	// recognized (unknown key, wrong issuer/audience).
	KindInvalidCredential = Kind("invalid_credential")

	// KindInvalidSignature means JWT signature verification failed.
	KindInvalidSignature = Kind("invalid_signature")

	// KindCredentialExpired means the token or key is outside its
	// validity window (expired, not yet valid, or revoked).
	KindCredentialExpired = Kind("credential_expired")

	// KindInsufficientScope means the identity is valid but lacks a
	// required scope.
	KindInsufficientScope = Kind("insufficient_scope")

	// KindUpstreamUnavailable means an external collaborator (key store,
	// signing key source) could not be reached. This is the only kind a
	// caller may legitimately retry.
	KindUpstreamUnavailable = Kind("upstream_unavailable")
)

// ErrAuthFailed is a sentinel all Failure values match via errors.Is.
var ErrAuthFailed = errors.New("authentication failed")

// Failure is the typed outcome produced instead of an identity when
// validation or authorization does not succeed. Detail is client-facing
// and must never carry internal state; the underlying cause (if any) is
// reachable through Unwrap for logging at the boundary.
type Failure struct {
	Kind   Kind
	Detail string
	cause  error
}

// NewFailure builds a Failure with a client-facing detail string.
func NewFailure(kind Kind, detail string) *Failure {
	return &Failure{Kind: kind, Detail: detail}
}

// WrapFailure builds a Failure that records cause for the boundary logs
// while exposing only detail to the client.
func WrapFailure(kind Kind, detail string, cause error) *Failure {
	return &Failure{Kind: kind, Detail: detail, cause: cause}
}

// Error returns a string representation of the failure.
func (f *Failure) Error() string {
	if f.cause != nil {
		return fmt.Sprintf("%s: %s: %s", f.Kind, f.Detail, f.cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// Is allows the failure to support equality to ErrAuthFailed.
func (f *Failure) Is(target error) bool {
	return target == ErrAuthFailed
}

// Unwrap exposes the underlying cause, if any.
func (f *Failure) Unwrap() error {
	return f.cause
}

// KindOf extracts the failure kind from err. It returns the zero Kind for
// errors that are not Failures.
func KindOf(err error) Kind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}
