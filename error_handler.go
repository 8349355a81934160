package authware

import (
	"encoding/json"
	"errors"
	"net/http"
)

// ErrorHandler is a handler which is called when a request is rejected
// by the Middleware. The err can be inspected with errors.As to obtain
// the *Failure and its Kind. The default handler maps every failure kind
// to its protocol status and writes a structured JSON body. If you
// implement your own ErrorHandler you MUST take the failure kinds into
// consideration as not properly responding to them could result in the
// Middleware not functioning as intended.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorBody is the structured error body returned to clients on
// rejection. Detail never carries internal state.
type ErrorBody struct {
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
}

// StatusCode returns the HTTP status for a failure kind. Unknown kinds
// map to 500.
func StatusCode(kind Kind) int {
	switch kind {
	case KindMissingCredential:
		return http.StatusUnauthorized
	case KindMalformedCredential:
		return http.StatusBadRequest
	case KindInvalidCredential:
		return http.StatusUnauthorized
	case KindInvalidSignature:
		return http.StatusUnauthorized
	case KindCredentialExpired:
		return http.StatusUnauthorized
	case KindInsufficientScope:
		return http.StatusForbidden
	case KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DefaultErrorHandler is the default error handler implementation for
// the Middleware. If an error handler is not provided via the
// WithErrorHandler option this will be used.
//
// The mapping is deterministic: each failure kind has exactly one status
// code, and the body always contains the kind and a client-facing
// detail. Errors that are not Failures are reported as a generic 500 so
// no internal error text leaks to the client.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	var f *Failure
	if !errors.As(err, &f) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"kind":"internal_error","detail":"Something went wrong while checking the request credentials."}`))
		return
	}

	status := StatusCode(f.Kind)
	if status == http.StatusUnauthorized {
		// RFC 6750 wants a challenge alongside 401 responses.
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	}

	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorBody{Kind: f.Kind, Detail: f.Detail})
}
